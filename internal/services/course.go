package services

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/talentgrid/competency-backend/internal/logger"
  apperr "github.com/talentgrid/competency-backend/internal/pkg/errors"
  "github.com/talentgrid/competency-backend/internal/repos"
  "github.com/talentgrid/competency-backend/internal/types"
)

type CourseService interface {
  Create(ctx context.Context, title, description string) (*types.Course, error)
  List(ctx context.Context) ([]*types.Course, error)
  GetByID(ctx context.Context, id uuid.UUID) (*types.Course, error)
  ListCompetencies(ctx context.Context, courseID uuid.UUID) ([]*types.CourseCompetency, error)
  ExistingCompetencyRefs(ctx context.Context, courseID uuid.UUID) ([]ExcludedCompetency, error)
  RemoveCompetency(ctx context.Context, courseID, competencyID uuid.UUID) error
}

type courseService struct {
  db  *gorm.DB
  log *logger.Logger

  courseRepo repos.CourseRepo
  linkRepo   repos.CourseCompetencyRepo
  notifier   CatalogNotifier
}

func NewCourseService(db *gorm.DB, baseLog *logger.Logger, courseRepo repos.CourseRepo, linkRepo repos.CourseCompetencyRepo, notifier CatalogNotifier) CourseService {
  return &courseService{
    db:         db,
    log:        baseLog.With("service", "CourseService"),
    courseRepo: courseRepo,
    linkRepo:   linkRepo,
    notifier:   notifier,
  }
}

func (s *courseService) Create(ctx context.Context, title, description string) (*types.Course, error) {
  if title == "" {
    return nil, fmt.Errorf("%w: course title is required", apperr.ErrInvalidArgument)
  }
  course := &types.Course{
    ID:          uuid.New(),
    Title:       title,
    Description: description,
  }
  if _, err := s.courseRepo.Create(ctx, nil, []*types.Course{course}); err != nil {
    return nil, err
  }
  return course, nil
}

func (s *courseService) List(ctx context.Context) ([]*types.Course, error) {
  return s.courseRepo.List(ctx, nil)
}

func (s *courseService) GetByID(ctx context.Context, id uuid.UUID) (*types.Course, error) {
  found, err := s.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
  if err != nil {
    return nil, err
  }
  if len(found) == 0 {
    return nil, fmt.Errorf("%w: course %s", apperr.ErrNotFound, id)
  }
  return found[0], nil
}

func (s *courseService) ListCompetencies(ctx context.Context, courseID uuid.UUID) ([]*types.CourseCompetency, error) {
  return s.linkRepo.GetByCourseIDs(ctx, nil, []uuid.UUID{courseID})
}

func (s *courseService) ExistingCompetencyRefs(ctx context.Context, courseID uuid.UUID) ([]ExcludedCompetency, error) {
  links, err := s.linkRepo.GetByCourseIDs(ctx, nil, []uuid.UUID{courseID})
  if err != nil {
    return nil, err
  }
  refs := make([]ExcludedCompetency, 0, len(links))
  for _, link := range links {
    if link.Competency == nil {
      continue
    }
    refs = append(refs, ExcludedCompetency{
      ID:   link.CompetencyID,
      Name: link.Competency.Name,
      Type: link.Competency.Type,
    })
  }
  return refs, nil
}

func (s *courseService) RemoveCompetency(ctx context.Context, courseID, competencyID uuid.UUID) error {
  if err := s.linkRepo.Delete(ctx, nil, courseID, competencyID); err != nil {
    return err
  }
  if s.notifier != nil {
    s.notifier.CompetencyUnlinked(types.EntityRef{Kind: types.EntityKindCourse, ID: courseID}, competencyID.String())
  }
  return nil
}
