package openai

import (
	"context"
	"errors"
	"fmt"
)

// UpstreamError is a non-2xx response from the completions endpoint. Body
// carries the upstream response text as diagnostic detail.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("openai: upstream status %d: %s", e.StatusCode, e.Body)
}

// AsUpstream unwraps err to an *UpstreamError, if it is one.
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// IsTimeout reports whether err was caused by a per-call deadline expiring.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
