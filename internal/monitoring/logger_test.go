package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...any) {
		got = fmt.Sprintf(format, v...)
	})
	Logf("cycle %d failed", 7)
	if got != "cycle 7 failed" {
		t.Errorf("captured log = %q, want \"cycle 7 failed\"", got)
	}

	// Nil installs a no-op rather than a nil function.
	SetLogger(nil)
	if Logf == nil {
		t.Fatal("Logf is nil after SetLogger(nil)")
	}
	Logf("must not panic")

	got = ""
	SetLogger(func(format string, v ...any) { got = format })
	Logf("back on")
	if got != "back on" {
		t.Error("replacement logger not active after no-op")
	}
}

func TestLogfDefault(t *testing.T) {
	if Logf == nil {
		t.Error("Logf is nil by default")
	}
}
