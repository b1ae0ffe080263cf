package services

import (
	"errors"
	"fmt"
)

// Domain errors the handlers translate to HTTP envelopes. Storage-level
// conflicts are reconciled inside the services and never escape.
var (
	ErrActiveRunExists    = errors.New("active run exists")
	ErrRunExists          = errors.New("run already exists; use /api/run/restart")
	ErrNoActiveRun        = errors.New("no active run; call /api/run/start (or /api/run/restart)")
	ErrNoActiveThread     = errors.New("no active thread; call /api/thread/start first")
	ErrActiveThreadExists = errors.New("another active thread exists; close it before creating a new one")
	ErrRunCompleted       = errors.New("run completed (no more threads can be created)")
	ErrStaleThread        = errors.New("thread_id must be current active thread")
	ErrThreadNotFound     = errors.New("thread not found")
	ErrCardNotFound       = errors.New("card not found")
	ErrWebhookRejected    = errors.New("webhook rejected")
)

// UpstreamError marks a dependency failure (OpenAI, Stripe, Memberstack)
// that should surface as 502 rather than 500.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream error: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func upstream(service string, err error) error {
	return &UpstreamError{Service: service, Err: err}
}
