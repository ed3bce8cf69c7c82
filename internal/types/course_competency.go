package types

import (
  "time"

  "github.com/google/uuid"
)

type CourseCompetency struct {
  ID           uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  CourseID     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_course_competency,priority:1" json:"course_id"`
  Course       *Course      `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
  CompetencyID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_course_competency,priority:2" json:"competency_id"`
  Competency   *Competency  `gorm:"constraint:OnDelete:RESTRICT;foreignKey:CompetencyID;references:ID" json:"competency,omitempty"`
  Proficiency  *Proficiency `gorm:"column:proficiency" json:"proficiency,omitempty"`
  CreatedAt    time.Time    `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt    time.Time    `gorm:"not null;default:now()" json:"updated_at"`
}

func (CourseCompetency) TableName() string {
  return "course_competency"
}
