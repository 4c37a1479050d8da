// Package clipboard writes text to the system clipboard.
package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available.
var ErrUnsupported = errors.New("clipboard is not supported on this system")

// writeAll is a package-level variable to allow mocking in tests.
var writeAll = clipboard.WriteAll

// unsupported reports whether the platform lacks a clipboard utility.
var unsupported = func() bool { return clipboard.Unsupported }

// System is the system clipboard.
type System struct{}

// WriteText copies text to the system clipboard.
func (System) WriteText(text string) error {
	if unsupported() {
		return ErrUnsupported
	}
	return writeAll(text)
}
