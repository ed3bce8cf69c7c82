package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
)

const (
  ExtractionRunStatusRunning   = "running"
  ExtractionRunStatusSucceeded = "succeeded"
  ExtractionRunStatusFailed    = "failed"
  ExtractionRunStatusCancelled = "cancelled"
)

// ExtractionRun is the audit trail of one extraction invocation.
type ExtractionRun struct {
  ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  EntityKind     EntityKind     `gorm:"not null;column:entity_kind" json:"entity_kind"`
  EntityID       uuid.UUID      `gorm:"type:uuid;not null;index;column:entity_id" json:"entity_id"`
  Status         string         `gorm:"not null;column:status" json:"status"`
  CandidateCount int            `gorm:"column:candidate_count" json:"candidate_count"`
  DroppedCount   int            `gorm:"column:dropped_count" json:"dropped_count"`
  Error          string         `gorm:"column:error" json:"error,omitempty"`
  Metadata       datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`
  CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ExtractionRun) TableName() string {
  return "extraction_run"
}
