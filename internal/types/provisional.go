package types

import (
  "strings"

  "github.com/google/uuid"
)

// ProvisionalIDPrefix marks competency ids that have not been persisted yet.
// Persisted ids are bare UUIDs, so the prefix can never collide with a real id
// and a prefixed id must never be written to storage.
const ProvisionalIDPrefix = "new-"

func NewProvisionalID() string {
  return ProvisionalIDPrefix + uuid.NewString()
}

func IsProvisionalID(id string) bool {
  return strings.HasPrefix(id, ProvisionalIDPrefix)
}

// ParsePersistedID parses a wire id that must refer to an existing competency.
func ParsePersistedID(id string) (uuid.UUID, bool) {
  if IsProvisionalID(id) {
    return uuid.Nil, false
  }
  parsed, err := uuid.Parse(id)
  if err != nil {
    return uuid.Nil, false
  }
  return parsed, true
}
