package services

import (
  "fmt"

  "github.com/google/uuid"

  "github.com/talentgrid/competency-backend/internal/types"
)

// Identity is the resolved identity of a candidate competency: either an
// already-persisted catalog row or a provisional draft that does not exist
// yet. Keeping the two cases apart at the type level means persistence code
// can never mistake a draft for a real id; only the wire format flattens the
// union back into a marker-prefixed string.
type Identity interface {
  WireID() string
  isIdentity()
}

type ExistingIdentity struct {
  ID uuid.UUID
}

func (e ExistingIdentity) WireID() string { return e.ID.String() }
func (ExistingIdentity) isIdentity()      {}

type ProvisionalIdentity struct {
  // Ref carries the provisional marker prefix, e.g. "new-<uuid>".
  Ref string
}

func (p ProvisionalIdentity) WireID() string { return p.Ref }
func (ProvisionalIdentity) isIdentity()      {}

func NewProvisionalIdentity() ProvisionalIdentity {
  return ProvisionalIdentity{Ref: types.NewProvisionalID()}
}

// ParseIdentity reconstructs the tagged union from a wire id.
func ParseIdentity(wireID string) (Identity, error) {
  if types.IsProvisionalID(wireID) {
    return ProvisionalIdentity{Ref: wireID}, nil
  }
  id, ok := types.ParsePersistedID(wireID)
  if !ok {
    return nil, fmt.Errorf("malformed competency id %q", wireID)
  }
  return ExistingIdentity{ID: id}, nil
}
