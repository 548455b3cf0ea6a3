package security_test

import (
	"testing"

	"github.com/tazhibayda/user-service/internal/security"
)

func TestPasswordHashAndCheck(t *testing.T) {
	hash, err := security.HashPassword("StrongP@ss1")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "StrongP@ss1" {
		t.Fatal("password stored in clear")
	}
	if !security.CheckPassword(hash, "StrongP@ss1") {
		t.Fatal("correct password rejected")
	}
	if security.CheckPassword(hash, "wrongpass") {
		t.Fatal("wrong password accepted")
	}
}
