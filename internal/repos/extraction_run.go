package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/talentgrid/competency-backend/internal/logger"
  "github.com/talentgrid/competency-backend/internal/types"
)

type ExtractionRunRepo interface {
  Create(ctx context.Context, tx *gorm.DB, runs []*types.ExtractionRun) ([]*types.ExtractionRun, error)
  UpdateStatus(ctx context.Context, tx *gorm.DB, runID uuid.UUID, status string, candidateCount, droppedCount int, errMsg string) error
  GetByEntity(ctx context.Context, tx *gorm.DB, entityKind types.EntityKind, entityID uuid.UUID) ([]*types.ExtractionRun, error)
}

type extractionRunRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewExtractionRunRepo(db *gorm.DB, baseLog *logger.Logger) ExtractionRunRepo {
  repoLog := baseLog.With("repo", "ExtractionRunRepo")
  return &extractionRunRepo{db: db, log: repoLog}
}

func (r *extractionRunRepo) Create(ctx context.Context, tx *gorm.DB, runs []*types.ExtractionRun) ([]*types.ExtractionRun, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(runs) == 0 {
    return []*types.ExtractionRun{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&runs).Error; err != nil {
    return nil, err
  }
  return runs, nil
}

func (r *extractionRunRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, runID uuid.UUID, status string, candidateCount, droppedCount int, errMsg string) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  return transaction.WithContext(ctx).
    Model(&types.ExtractionRun{}).
    Where("id = ?", runID).
    Updates(map[string]interface{}{
      "status":          status,
      "candidate_count": candidateCount,
      "dropped_count":   droppedCount,
      "error":           errMsg,
    }).Error
}

func (r *extractionRunRepo) GetByEntity(ctx context.Context, tx *gorm.DB, entityKind types.EntityKind, entityID uuid.UUID) ([]*types.ExtractionRun, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.ExtractionRun
  if err := transaction.WithContext(ctx).
    Where("entity_kind = ? AND entity_id = ?", entityKind, entityID).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
