package clipboard

import (
	"errors"
	"testing"
)

func TestWrite(t *testing.T) {
	// Needs a clipboard; an uninitialized write must fail cleanly instead of panicking.
	err := Write("10,10,90,40")
	if err != nil && !errors.Is(err, ErrNotInitialized) {
		t.Logf("Failed to write to clipboard: %v", err)
	}
}
