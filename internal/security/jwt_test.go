package security_test

import (
	"testing"
	"time"

	"github.com/tazhibayda/user-service/internal/security"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := security.MakeAccess("s3cret", "507f1f77bcf86cd799439011", "alice", security.AccessTTL)
	if err != nil {
		t.Fatal(err)
	}

	c, err := security.ParseAccess("s3cret", tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.ID != "507f1f77bcf86cd799439011" || c.Username != "alice" {
		t.Fatalf("claims mismatch: %#v", c)
	}

	// expiry must be ~2h out
	left := time.Until(c.ExpiresAt.Time)
	if left < time.Hour+55*time.Minute || left > 2*time.Hour {
		t.Fatalf("unexpected ttl: %v", left)
	}
}

func TestAccessTokenWrongSecret(t *testing.T) {
	tok, err := security.MakeAccess("s3cret", "id", "alice", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := security.ParseAccess("other", tok); err == nil {
		t.Fatal("token accepted with wrong secret")
	}
}

func TestAccessTokenExpired(t *testing.T) {
	tok, err := security.MakeAccess("s3cret", "id", "alice", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := security.ParseAccess("s3cret", tok); err == nil {
		t.Fatal("expired token accepted")
	}
}
