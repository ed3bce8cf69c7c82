package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/talentgrid/competency-backend/internal/types"
)

func TestParseIdentityExisting(t *testing.T) {
	id := uuid.New()
	identity, err := ParseIdentity(id.String())
	if err != nil {
		t.Fatalf("ParseIdentity: %v", err)
	}
	existing, ok := identity.(ExistingIdentity)
	if !ok {
		t.Fatalf("expected ExistingIdentity, got %T", identity)
	}
	if existing.ID != id {
		t.Fatalf("existing id: want=%s got=%s", id, existing.ID)
	}
	if identity.WireID() != id.String() {
		t.Fatalf("wire id: want=%s got=%s", id, identity.WireID())
	}
}

func TestParseIdentityProvisional(t *testing.T) {
	wire := types.NewProvisionalID()
	identity, err := ParseIdentity(wire)
	if err != nil {
		t.Fatalf("ParseIdentity: %v", err)
	}
	if _, ok := identity.(ProvisionalIdentity); !ok {
		t.Fatalf("expected ProvisionalIdentity, got %T", identity)
	}
	if identity.WireID() != wire {
		t.Fatalf("wire id round-trip: want=%s got=%s", wire, identity.WireID())
	}
}

func TestParseIdentityMalformed(t *testing.T) {
	for _, wire := range []string{"", "abc", "12345"} {
		if _, err := ParseIdentity(wire); err == nil {
			t.Fatalf("ParseIdentity(%q): expected error", wire)
		}
	}
}

func TestNewProvisionalIdentityIsProvisionalOnWire(t *testing.T) {
	identity := NewProvisionalIdentity()
	if !types.IsProvisionalID(identity.WireID()) {
		t.Fatalf("minted identity not marked provisional on the wire: %q", identity.WireID())
	}
}
