package form

import "errors"

var (
	// ErrBusy is returned by Submit while a request is in flight.
	ErrBusy = errors.New("a request is already in flight")
	// ErrNothingToCopy is returned by Copy when no short link is shown.
	ErrNothingToCopy = errors.New("no short link to copy")
)

// ValidationError is raised locally before any request is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ClipboardError wraps a rejected clipboard write.
type ClipboardError struct {
	Err error
}

func (e *ClipboardError) Error() string {
	return "clipboard write failed: " + e.Err.Error()
}

func (e *ClipboardError) Unwrap() error {
	return e.Err
}
