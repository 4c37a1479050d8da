package clipboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func mockClipboard(t *testing.T, isUnsupported bool, write func(string) error) {
	t.Helper()

	oldWrite, oldUnsupported := writeAll, unsupported
	writeAll = write
	unsupported = func() bool { return isUnsupported }
	t.Cleanup(func() {
		writeAll, unsupported = oldWrite, oldUnsupported
	})
}

func TestSystem_WriteText(t *testing.T) {
	var got string
	mockClipboard(t, false, func(text string) error {
		got = text
		return nil
	})

	assert.NoError(t, System{}.WriteText("http://sho.rt/abc123"))
	assert.Equal(t, "http://sho.rt/abc123", got)
}

func TestSystem_WriteText_Error(t *testing.T) {
	mockClipboard(t, false, func(string) error {
		return errors.New("exec: xclip not found")
	})

	assert.EqualError(t, System{}.WriteText("x"), "exec: xclip not found")
}

func TestSystem_WriteText_Unsupported(t *testing.T) {
	called := false
	mockClipboard(t, true, func(string) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, System{}.WriteText("x"), ErrUnsupported)
	assert.False(t, called)
}
