package types

import (
  "fmt"

  "github.com/google/uuid"
)

// EntityKind identifies which kind of entity a competency is linked to.
type EntityKind string

const (
  EntityKindPerson EntityKind = "person"
  EntityKindCourse EntityKind = "course"
)

func ParseEntityKind(s string) (EntityKind, error) {
  switch EntityKind(s) {
  case EntityKindPerson, EntityKindCourse:
    return EntityKind(s), nil
  }
  return "", fmt.Errorf("unknown entity kind %q", s)
}

// EntityRef addresses the person or course competencies are attached to.
type EntityRef struct {
  Kind EntityKind `json:"kind"`
  ID   uuid.UUID  `json:"id"`
}

func (r EntityRef) String() string {
  return string(r.Kind) + ":" + r.ID.String()
}
