package utils

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func quietLogger() *Logger {
	var buf bytes.Buffer
	return NewLoggerTo(&buf, &buf)
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: quietLogger()}

	calls := 0
	err := r.Do(context.Background(), "flaky", func() error {
		calls++
		if calls < 3 {
			return errors.New("boom")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
}

func TestRetrySingleAttempt(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 0, BaseDelay: time.Millisecond, Logger: quietLogger()}
	sentinel := errors.New("not found")

	calls := 0
	err := r.Do(context.Background(), "download", func() error {
		calls++
		return sentinel
	})
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("error should wrap the last failure, got %v", err)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 5, BaseDelay: time.Hour, Logger: quietLogger()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := r.Do(ctx, "cancelled", func() error {
		calls++
		return errors.New("boom")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
}

func TestLoggerDebugToggle(t *testing.T) {
	var out bytes.Buffer
	l := NewLoggerTo(&out, &out)

	l.Debug("hidden %d", 1)
	if out.Len() != 0 {
		t.Errorf("debug output should be suppressed, got %q", out.String())
	}

	l.SetLevel("debug")
	l.Debug("shown %d", 2)
	if !strings.Contains(out.String(), "shown 2") {
		t.Errorf("debug output missing, got %q", out.String())
	}
}
