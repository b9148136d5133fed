package llm

import (
	"context"
	"errors"
	"fmt"
)

// UpstreamError reports a failed or timed-out collaborator call.
// A pipeline that receives one aborts without persisting anything.
type UpstreamError struct {
	Op    string
	Cause error
}

func (e *UpstreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("upstream %s failed: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("upstream %s failed", e.Op)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// Timeout reports whether the call ran out of time.
func (e *UpstreamError) Timeout() bool {
	return errors.Is(e.Cause, context.DeadlineExceeded)
}

// ConfigError reports a missing or invalid collaborator setting.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("llm config error in %s: %s", e.Field, e.Message)
}
