package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/talentgrid/competency-backend/internal/logger"
  apperr "github.com/talentgrid/competency-backend/internal/pkg/errors"
  "github.com/talentgrid/competency-backend/internal/types"
)

type CourseCompetencyRepo interface {
  Create(ctx context.Context, tx *gorm.DB, links []*types.CourseCompetency) ([]*types.CourseCompetency, error)
  GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.CourseCompetency, error)
  Exists(ctx context.Context, tx *gorm.DB, courseID, competencyID uuid.UUID) (bool, error)
  Delete(ctx context.Context, tx *gorm.DB, courseID, competencyID uuid.UUID) error
}

type courseCompetencyRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCourseCompetencyRepo(db *gorm.DB, baseLog *logger.Logger) CourseCompetencyRepo {
  repoLog := baseLog.With("repo", "CourseCompetencyRepo")
  return &courseCompetencyRepo{db: db, log: repoLog}
}

func (r *courseCompetencyRepo) Create(ctx context.Context, tx *gorm.DB, links []*types.CourseCompetency) ([]*types.CourseCompetency, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(links) == 0 {
    return []*types.CourseCompetency{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&links).Error; err != nil {
    if isUniqueViolation(err) {
      return nil, apperr.ErrDuplicateLink
    }
    return nil, err
  }
  return links, nil
}

func (r *courseCompetencyRepo) GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.CourseCompetency, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.CourseCompetency
  if len(courseIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Preload("Competency").
    Where("course_id IN ?", courseIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *courseCompetencyRepo) Exists(ctx context.Context, tx *gorm.DB, courseID, competencyID uuid.UUID) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.CourseCompetency{}).
    Where("course_id = ? AND competency_id = ?", courseID, competencyID).
    Count(&count).Error; err != nil {
    return false, err
  }
  return count > 0, nil
}

func (r *courseCompetencyRepo) Delete(ctx context.Context, tx *gorm.DB, courseID, competencyID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  result := transaction.WithContext(ctx).
    Where("course_id = ? AND competency_id = ?", courseID, competencyID).
    Delete(&types.CourseCompetency{})
  if result.Error != nil {
    return result.Error
  }
  if result.RowsAffected == 0 {
    return apperr.ErrNotFound
  }
  return nil
}
