package coaching

import (
	"errors"

	"github.com/jonathan/hiring-coach/internal/llm"
)

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong
// password. The two cases are not distinguished.
var ErrInvalidCredentials = errors.New("invalid email or password")

func upstream(op string, err error) error {
	var ue *llm.UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	return &llm.UpstreamError{Op: op, Cause: err}
}
