package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/talentgrid/competency-backend/internal/logger"
  "github.com/talentgrid/competency-backend/internal/types"
)

type CourseRepo interface {
  Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Course, error)
  List(ctx context.Context, tx *gorm.DB) ([]*types.Course, error)
}

type courseRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
  repoLog := baseLog.With("repo", "CourseRepo")
  return &courseRepo{db: db, log: repoLog}
}

func (r *courseRepo) Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(courses) == 0 {
    return []*types.Course{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&courses).Error; err != nil {
    return nil, err
  }
  return courses, nil
}

func (r *courseRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Course, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Course
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

func (r *courseRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Course, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Course
  if err := transaction.WithContext(ctx).
    Order("title").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
