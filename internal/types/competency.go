package types

import (
  "time"

  "github.com/google/uuid"
)

type Competency struct {
  ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  Name        string         `gorm:"not null;column:name" json:"name"`
  Type        CompetencyType `gorm:"not null;column:type;index" json:"type"`
  Description string         `gorm:"column:description" json:"description"`
  CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Competency) TableName() string {
  return "competency"
}
