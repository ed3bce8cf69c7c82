package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/talentgrid/competency-backend/internal/logger"
  apperr "github.com/talentgrid/competency-backend/internal/pkg/errors"
  "github.com/talentgrid/competency-backend/internal/types"
)

type PersonCompetencyRepo interface {
  Create(ctx context.Context, tx *gorm.DB, links []*types.PersonCompetency) ([]*types.PersonCompetency, error)
  GetByPersonIDs(ctx context.Context, tx *gorm.DB, personIDs []uuid.UUID) ([]*types.PersonCompetency, error)
  Exists(ctx context.Context, tx *gorm.DB, personID, competencyID uuid.UUID) (bool, error)
  Delete(ctx context.Context, tx *gorm.DB, personID, competencyID uuid.UUID) error
}

type personCompetencyRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPersonCompetencyRepo(db *gorm.DB, baseLog *logger.Logger) PersonCompetencyRepo {
  repoLog := baseLog.With("repo", "PersonCompetencyRepo")
  return &personCompetencyRepo{db: db, log: repoLog}
}

func (r *personCompetencyRepo) Create(ctx context.Context, tx *gorm.DB, links []*types.PersonCompetency) ([]*types.PersonCompetency, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(links) == 0 {
    return []*types.PersonCompetency{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&links).Error; err != nil {
    if isUniqueViolation(err) {
      return nil, apperr.ErrDuplicateLink
    }
    return nil, err
  }
  return links, nil
}

func (r *personCompetencyRepo) GetByPersonIDs(ctx context.Context, tx *gorm.DB, personIDs []uuid.UUID) ([]*types.PersonCompetency, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.PersonCompetency
  if len(personIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Preload("Competency").
    Where("person_id IN ?", personIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *personCompetencyRepo) Exists(ctx context.Context, tx *gorm.DB, personID, competencyID uuid.UUID) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.PersonCompetency{}).
    Where("person_id = ? AND competency_id = ?", personID, competencyID).
    Count(&count).Error; err != nil {
    return false, err
  }
  return count > 0, nil
}

func (r *personCompetencyRepo) Delete(ctx context.Context, tx *gorm.DB, personID, competencyID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  result := transaction.WithContext(ctx).
    Where("person_id = ? AND competency_id = ?", personID, competencyID).
    Delete(&types.PersonCompetency{})
  if result.Error != nil {
    return result.Error
  }
  if result.RowsAffected == 0 {
    return apperr.ErrNotFound
  }
  return nil
}
