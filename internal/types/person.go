package types

import (
  "time"

  "github.com/google/uuid"
)

type Person struct {
  ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  FirstName string    `gorm:"not null;column:first_name" json:"first_name"`
  LastName  string    `gorm:"not null;column:last_name" json:"last_name"`
  Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
  CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Person) TableName() string {
  return "person"
}

func (p *Person) FullName() string {
  return p.FirstName + " " + p.LastName
}
