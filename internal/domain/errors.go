package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport covers network failures, timeouts, non-2xx replies and
	// non-JSON bodies. Retryable: a single occurrence does not settle the job.
	ErrTransport = errors.New("upstream transport failure")

	// ErrUpstreamContract means the provider answered with parseable JSON
	// that carries neither a job id nor an asset URL. Not retryable.
	ErrUpstreamContract = errors.New("upstream contract violation")

	// ErrUnknownJob means the provider does not recognize the polled id.
	ErrUnknownJob = errors.New("unknown job")

	// ErrConfiguration means a non-simulator provider was selected without
	// the credentials it needs and fallback is disabled.
	ErrConfiguration = errors.New("provider configuration incomplete")
)

// ValidationError rejects malformed caller input before any network call.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Detail)
}

// IsValidation reports whether err is a caller input error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
