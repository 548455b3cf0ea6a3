package apperr_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tazhibayda/user-service/internal/apperr"
)

func TestPartialError(t *testing.T) {
	pe := &apperr.PartialError{
		Op: "follow",
		Sides: []apperr.Side{
			{Name: "user.followers", Applied: true},
			{Name: "follower.following", Err: errors.New("connection reset")},
		},
	}

	if got := pe.Applied(); len(got) != 1 || got[0] != "user.followers" {
		t.Fatalf("applied: %v", got)
	}
	if got := pe.Failed(); len(got) != 1 || got[0] != "follower.following" {
		t.Fatalf("failed: %v", got)
	}
	msg := pe.Error()
	if !strings.Contains(msg, "follow partially applied") || !strings.Contains(msg, "connection reset") {
		t.Fatalf("message: %s", msg)
	}

	// must be reachable through wrapping
	wrapped := fmt.Errorf("handler: %w", pe)
	var out *apperr.PartialError
	if !errors.As(wrapped, &out) {
		t.Fatal("errors.As failed")
	}
}

func TestInvalidInput(t *testing.T) {
	err := apperr.Invalid("Phone number is invalid!")
	if !apperr.IsInvalid(err) {
		t.Fatal("IsInvalid = false")
	}
	if err.Error() != "Phone number is invalid!" {
		t.Fatalf("message: %s", err.Error())
	}
	if apperr.IsInvalid(apperr.ErrNotFound) {
		t.Fatal("sentinel misclassified as invalid input")
	}
}

func TestUpstreamUnwrap(t *testing.T) {
	cause := errors.New("broker down")
	err := &apperr.Upstream{Op: "publish", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatal("unwrap lost the cause")
	}
}
