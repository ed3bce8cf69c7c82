package types

import (
  "time"

  "github.com/google/uuid"
  "github.com/pgvector/pgvector-go"
)

// EmbeddingDimensions matches OpenAI text-embedding-3-small.
const EmbeddingDimensions = 1536

type CompetencyEmbedding struct {
  ID           uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  CompetencyID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"competency_id"`
  Competency   *Competency     `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompetencyID;references:ID" json:"competency,omitempty"`
  Embedding    pgvector.Vector `gorm:"type:vector(1536);column:embedding" json:"-"`
  Model        string          `gorm:"column:model" json:"model"`
  CreatedAt    time.Time       `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt    time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (CompetencyEmbedding) TableName() string {
  return "competency_embedding"
}
