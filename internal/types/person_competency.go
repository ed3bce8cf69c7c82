package types

import (
  "time"

  "github.com/google/uuid"
)

type PersonCompetency struct {
  ID           uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  PersonID     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_person_competency,priority:1" json:"person_id"`
  Person       *Person      `gorm:"constraint:OnDelete:CASCADE;foreignKey:PersonID;references:ID" json:"person,omitempty"`
  CompetencyID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_person_competency,priority:2" json:"competency_id"`
  Competency   *Competency  `gorm:"constraint:OnDelete:RESTRICT;foreignKey:CompetencyID;references:ID" json:"competency,omitempty"`
  Proficiency  *Proficiency `gorm:"column:proficiency" json:"proficiency,omitempty"`
  CreatedAt    time.Time    `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt    time.Time    `gorm:"not null;default:now()" json:"updated_at"`
}

func (PersonCompetency) TableName() string {
  return "person_competency"
}
