package upstream

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidURL is returned when the target is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid target URL")
	// ErrDomainNotAllowed is returned when ALLOWED_DOMAINS is set and the
	// target host does not match any entry.
	ErrDomainNotAllowed = errors.New("domain not allowed")
)

// StatusError reports an upstream response outside the 2xx range.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d", e.URL, e.StatusCode)
}

// DecodeError reports a body that could not be inflated according to its
// Content-Encoding.
type DecodeError struct {
	Encoding string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s body: %v", e.Encoding, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
