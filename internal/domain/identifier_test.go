package domain_test

import (
	"testing"

	"github.com/tazhibayda/user-service/internal/domain"
)

func TestParseIdentifier(t *testing.T) {
	oid := "507f1f77bcf86cd799439011"

	id, err := domain.ParseIdentifier("internal", oid)
	if err != nil || id.Kind != domain.KindInternal {
		t.Fatalf("internal: %v %v", id, err)
	}
	if _, err := id.ObjectID(); err != nil {
		t.Fatal(err)
	}

	if _, err := domain.ParseIdentifier("internal", "108585564133871651964"); err == nil {
		t.Fatal("non-hex accepted as internal")
	}

	id, err = domain.ParseIdentifier("external", "108585564133871651964")
	if err != nil || id.Kind != domain.KindExternal {
		t.Fatalf("external: %v %v", id, err)
	}

	// untagged values fall back on format, not length
	id, _ = domain.ParseIdentifier("", oid)
	if id.Kind != domain.KindInternal {
		t.Fatalf("untagged hex should be internal, got %v", id.Kind)
	}
	id, _ = domain.ParseIdentifier("", "google-sub-123")
	if id.Kind != domain.KindExternal {
		t.Fatalf("untagged non-hex should be external, got %v", id.Kind)
	}

	if _, err := domain.ParseIdentifier("weird", oid); err == nil {
		t.Fatal("unknown kind accepted")
	}
	if _, err := domain.ParseIdentifier("internal", "  "); err == nil {
		t.Fatal("blank identifier accepted")
	}
}
