package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFromStatusMapsUnauthorizedToAuth(t *testing.T) {
	err := FromStatus(http.StatusUnauthorized, "Invalid email or password")
	if err.Kind != KindAuth {
		t.Fatalf("unexpected kind: got %v want %v", err.Kind, KindAuth)
	}

	err = FromStatus(http.StatusBadGateway, "upstream failed")
	if err.Kind != KindNetwork {
		t.Fatalf("unexpected kind: got %v want %v", err.Kind, KindNetwork)
	}
}

func TestKindOfFollowsWrapping(t *testing.T) {
	base := Validation("password must be at least %d characters", 6)
	wrapped := fmt.Errorf("failed to change password: %w", base)

	if KindOf(wrapped) != KindValidation {
		t.Fatalf("expected validation kind, got %v", KindOf(wrapped))
	}
	if !Is(wrapped, KindValidation) {
		t.Fatal("Is should match wrapped kind")
	}
	if Is(nil, KindValidation) {
		t.Fatal("nil error must not match any kind")
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Fatal("plain errors should be unknown")
	}
}

func TestUserMessageFallsBack(t *testing.T) {
	if got := UserMessage(FromStatus(500, "Database error"), "generic"); got != "Database error" {
		t.Fatalf("unexpected message: %q", got)
	}
	if got := UserMessage(Transport(errors.New("dial tcp: refused")), "generic"); got != "generic" {
		t.Fatalf("unexpected message: %q", got)
	}
	if got := UserMessage(errors.New("boom"), "generic"); got != "generic" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestErrorString(t *testing.T) {
	err := FromStatus(404, "Session not found")
	want := "NetworkOrServerError (HTTP 404): Session not found"
	if err.Error() != want {
		t.Fatalf("got %q want %q", err.Error(), want)
	}
}
