package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// timeoutClient bounds every call and reports failures as *UpstreamError.
type timeoutClient struct {
	next    Client
	timeout time.Duration
}

// WithTimeout wraps client so each call runs under its own deadline.
// A non-positive d uses DefaultTimeout. There are no retries.
func WithTimeout(client Client, d time.Duration) Client {
	if d <= 0 {
		d = DefaultTimeout
	}
	return &timeoutClient{next: client, timeout: d}
}

func (c *timeoutClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.call(ctx, "generate_content", func(ctx context.Context) (string, error) {
		return c.next.GenerateContent(ctx, prompt, tier)
	})
}

func (c *timeoutClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.call(ctx, "generate_json", func(ctx context.Context) (string, error) {
		return c.next.GenerateJSON(ctx, prompt, tier)
	})
}

func (c *timeoutClient) GetModel(tier ModelTier) string {
	return c.next.GetModel(tier)
}

func (c *timeoutClient) Close() error {
	return c.next.Close()
}

func (c *timeoutClient) call(ctx context.Context, op string, fn func(context.Context) (string, error)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := fn(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return "", &UpstreamError{Op: op, Cause: err}
	}
	return out, nil
}
