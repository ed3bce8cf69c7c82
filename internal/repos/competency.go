package repos

import (
  "context"
  "errors"

  "github.com/google/uuid"
  "github.com/jackc/pgx/v5/pgconn"
  "gorm.io/gorm"

  "github.com/talentgrid/competency-backend/internal/logger"
  apperr "github.com/talentgrid/competency-backend/internal/pkg/errors"
  "github.com/talentgrid/competency-backend/internal/types"
)

type CompetencyRepo interface {
  Create(ctx context.Context, tx *gorm.DB, competencies []*types.Competency) ([]*types.Competency, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Competency, error)
  GetByNameAndType(ctx context.Context, tx *gorm.DB, name string, ctype types.CompetencyType) (*types.Competency, error)
  List(ctx context.Context, tx *gorm.DB) ([]*types.Competency, error)
}

type competencyRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCompetencyRepo(db *gorm.DB, baseLog *logger.Logger) CompetencyRepo {
  repoLog := baseLog.With("repo", "CompetencyRepo")
  return &competencyRepo{db: db, log: repoLog}
}

func isUniqueViolation(err error) bool {
  var pgErr *pgconn.PgError
  return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *competencyRepo) Create(ctx context.Context, tx *gorm.DB, competencies []*types.Competency) ([]*types.Competency, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(competencies) == 0 {
    return []*types.Competency{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&competencies).Error; err != nil {
    if isUniqueViolation(err) {
      return nil, apperr.ErrNameConflict
    }
    return nil, err
  }
  return competencies, nil
}

func (r *competencyRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Competency, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Competency
  if len(ids) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *competencyRepo) GetByNameAndType(ctx context.Context, tx *gorm.DB, name string, ctype types.CompetencyType) (*types.Competency, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var result types.Competency
  err := transaction.WithContext(ctx).
    Where("LOWER(name) = LOWER(?) AND type = ?", name, ctype).
    First(&result).Error
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, apperr.ErrNotFound
    }
    return nil, err
  }
  return &result, nil
}

func (r *competencyRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Competency, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Competency
  if err := transaction.WithContext(ctx).
    Order("type, LOWER(name)").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
