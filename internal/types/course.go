package types

import (
  "time"

  "github.com/google/uuid"
)

type Course struct {
  ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  Title       string    `gorm:"not null;column:title" json:"title"`
  Description string    `gorm:"column:description" json:"description"`
  CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt   time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Course) TableName() string {
  return "course"
}
