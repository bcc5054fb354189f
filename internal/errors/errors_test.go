package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestKindAndMessageThroughWrapping(t *testing.T) {
	cause := stderrors.New("dial tcp: connection refused")
	e := Wrap(TransportFailure, "Connection failed", cause)
	wrapped := fmt.Errorf("connect: %w", e)

	if got := KindOf(wrapped); got != TransportFailure {
		t.Errorf("KindOf() = %q, want %q", got, TransportFailure)
	}
	if got := MessageOf(wrapped); got != "Connection failed" {
		t.Errorf("MessageOf() = %q, want %q", got, "Connection failed")
	}
	if !stderrors.Is(wrapped, cause) {
		t.Error("wrapped cause is not reachable through errors.Is")
	}
}

func TestForeignErrors(t *testing.T) {
	if got := KindOf(stderrors.New("x")); got != "" {
		t.Errorf("KindOf(foreign) = %q, want empty", got)
	}
	if got := MessageOf(stderrors.New("plain")); got != "plain" {
		t.Errorf("MessageOf(foreign) = %q, want %q", got, "plain")
	}
	if got := MessageOf(nil); got != "" {
		t.Errorf("MessageOf(nil) = %q, want empty", got)
	}
}

func TestErrorString(t *testing.T) {
	if got := New(RemoteFailure, "auth rejected").Error(); got != "remote_failure: auth rejected" {
		t.Errorf("Error() = %q", got)
	}
}
