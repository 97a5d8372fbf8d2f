package logging

import "testing"

func TestNew(t *testing.T) {
	for _, encoding := range []string{"console", "json"} {
		logger, err := New("info", encoding)
		if err != nil {
			t.Fatalf("unexpected error for %s encoding: %v", encoding, err)
		}
		if logger == nil {
			t.Fatalf("expected logger instance")
		}
		_ = logger.Sync()
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("chatty", "json"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
