package repos

import (
  "context"

  "github.com/google/uuid"
  "github.com/pgvector/pgvector-go"
  "gorm.io/gorm"
  "gorm.io/gorm/clause"

  "github.com/talentgrid/competency-backend/internal/logger"
  "github.com/talentgrid/competency-backend/internal/types"
)

// Neighbor is one similarity-search hit against the embedding store.
type Neighbor struct {
  CompetencyID uuid.UUID `gorm:"column:competency_id"`
  Similarity   float64   `gorm:"column:similarity"`
}

type CompetencyEmbeddingRepo interface {
  Upsert(ctx context.Context, tx *gorm.DB, embeddings []*types.CompetencyEmbedding) error
  GetByCompetencyIDs(ctx context.Context, tx *gorm.DB, competencyIDs []uuid.UUID) ([]*types.CompetencyEmbedding, error)
  HasEmbedding(ctx context.Context, tx *gorm.DB, competencyID uuid.UUID) (bool, error)
  NearestNeighbors(ctx context.Context, tx *gorm.DB, vector pgvector.Vector, excludeID *uuid.UUID, minSimilarity float64, limit int) ([]*Neighbor, error)
}

type competencyEmbeddingRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCompetencyEmbeddingRepo(db *gorm.DB, baseLog *logger.Logger) CompetencyEmbeddingRepo {
  repoLog := baseLog.With("repo", "CompetencyEmbeddingRepo")
  return &competencyEmbeddingRepo{db: db, log: repoLog}
}

func (r *competencyEmbeddingRepo) Upsert(ctx context.Context, tx *gorm.DB, embeddings []*types.CompetencyEmbedding) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(embeddings) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).
    Clauses(clause.OnConflict{
      Columns:   []clause.Column{{Name: "competency_id"}},
      DoUpdates: clause.AssignmentColumns([]string{"embedding", "model", "updated_at"}),
    }).
    Create(&embeddings).Error
}

func (r *competencyEmbeddingRepo) GetByCompetencyIDs(ctx context.Context, tx *gorm.DB, competencyIDs []uuid.UUID) ([]*types.CompetencyEmbedding, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.CompetencyEmbedding
  if len(competencyIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("competency_id IN ?", competencyIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *competencyEmbeddingRepo) HasEmbedding(ctx context.Context, tx *gorm.DB, competencyID uuid.UUID) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.CompetencyEmbedding{}).
    Where("competency_id = ?", competencyID).
    Count(&count).Error; err != nil {
    return false, err
  }
  return count > 0, nil
}

// NearestNeighbors runs a cosine nearest-neighbor scan over stored embeddings.
// Rows without a stored embedding never appear (they have no row here), and
// ties are broken by competency id so ranking stays deterministic.
func (r *competencyEmbeddingRepo) NearestNeighbors(ctx context.Context, tx *gorm.DB, vector pgvector.Vector, excludeID *uuid.UUID, minSimilarity float64, limit int) ([]*Neighbor, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  query := `
    SELECT ce.competency_id, 1 - (ce.embedding <=> ?) AS similarity
    FROM competency_embedding ce
    WHERE 1 - (ce.embedding <=> ?) >= ?
  `
  args := []interface{}{vector, vector, minSimilarity}
  if excludeID != nil {
    query += ` AND ce.competency_id <> ?`
    args = append(args, *excludeID)
  }
  query += `
    ORDER BY similarity DESC, ce.competency_id ASC
    LIMIT ?
  `
  args = append(args, limit)

  var results []*Neighbor
  if err := transaction.WithContext(ctx).Raw(query, args...).Scan(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
