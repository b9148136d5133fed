package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTimeout_PassesThrough(t *testing.T) {
	mock := &MockLLMClient{
		GenerateContentFunc: func(ctx context.Context, prompt string, _ ModelTier) (string, error) {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			return "echo: " + prompt, nil
		},
	}

	client := WithTimeout(mock, time.Second)
	out, err := client.GenerateContent(context.Background(), "hi", TierLite)
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", out)
	assert.Equal(t, "mock-model", client.GetModel(TierLite))
}

func TestWithTimeout_WrapsErrors(t *testing.T) {
	cause := errors.New("quota exhausted")
	mock := &MockLLMClient{
		GenerateJSONFunc: func(context.Context, string, ModelTier) (string, error) {
			return "", cause
		},
	}

	_, err := WithTimeout(mock, time.Second).GenerateJSON(context.Background(), "p", TierStandard)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "generate_json", upstream.Op)
	assert.ErrorIs(t, err, cause)
	assert.False(t, upstream.Timeout())
}

func TestWithTimeout_Deadline(t *testing.T) {
	mock := &MockLLMClient{
		GenerateContentFunc: func(ctx context.Context, _ string, _ ModelTier) (string, error) {
			<-ctx.Done()
			return "", errors.New("request aborted")
		},
	}

	_, err := WithTimeout(mock, 10*time.Millisecond).GenerateContent(context.Background(), "slow", TierAdvanced)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.True(t, upstream.Timeout())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWithTimeout_DefaultDuration(t *testing.T) {
	c := WithTimeout(&MockLLMClient{}, 0).(*timeoutClient)
	assert.Equal(t, DefaultTimeout, c.timeout)
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), DefaultConfig(), "  ")
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "api_key", cfgErr.Field)
}

func TestNewClient_UnknownProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "openai"
	_, err := NewClient(context.Background(), cfg, "key")
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "provider", cfgErr.Field)
}
