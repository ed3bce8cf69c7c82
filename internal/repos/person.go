package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/talentgrid/competency-backend/internal/logger"
  apperr "github.com/talentgrid/competency-backend/internal/pkg/errors"
  "github.com/talentgrid/competency-backend/internal/types"
)

type PersonRepo interface {
  Create(ctx context.Context, tx *gorm.DB, persons []*types.Person) ([]*types.Person, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Person, error)
  List(ctx context.Context, tx *gorm.DB) ([]*types.Person, error)
  EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

type personRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPersonRepo(db *gorm.DB, baseLog *logger.Logger) PersonRepo {
  repoLog := baseLog.With("repo", "PersonRepo")
  return &personRepo{db: db, log: repoLog}
}

func (r *personRepo) Create(ctx context.Context, tx *gorm.DB, persons []*types.Person) ([]*types.Person, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(persons) == 0 {
    return []*types.Person{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&persons).Error; err != nil {
    if isUniqueViolation(err) {
      return nil, apperr.ErrConflict
    }
    return nil, err
  }
  return persons, nil
}

func (r *personRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Person, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Person
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

func (r *personRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Person, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Person
  if err := transaction.WithContext(ctx).
    Order("last_name, first_name").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *personRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.Person{}).
    Where("email = ?", email).
    Count(&count).Error; err != nil {
    return false, err
  }
  return count > 0, nil
}
