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

type PersonService interface {
  Create(ctx context.Context, firstName, lastName, email string) (*types.Person, error)
  List(ctx context.Context) ([]*types.Person, error)
  GetByID(ctx context.Context, id uuid.UUID) (*types.Person, error)
  ListCompetencies(ctx context.Context, personID uuid.UUID) ([]*types.PersonCompetency, error)
  // ExistingCompetencyRefs feeds the extraction prompt exclusion list and the
  // reconciliation already-linked guard.
  ExistingCompetencyRefs(ctx context.Context, personID uuid.UUID) ([]ExcludedCompetency, error)
  RemoveCompetency(ctx context.Context, personID, competencyID uuid.UUID) error
}

type personService struct {
  db  *gorm.DB
  log *logger.Logger

  personRepo repos.PersonRepo
  linkRepo   repos.PersonCompetencyRepo
  notifier   CatalogNotifier
}

func NewPersonService(db *gorm.DB, baseLog *logger.Logger, personRepo repos.PersonRepo, linkRepo repos.PersonCompetencyRepo, notifier CatalogNotifier) PersonService {
  return &personService{
    db:         db,
    log:        baseLog.With("service", "PersonService"),
    personRepo: personRepo,
    linkRepo:   linkRepo,
    notifier:   notifier,
  }
}

func (s *personService) Create(ctx context.Context, firstName, lastName, email string) (*types.Person, error) {
  if firstName == "" || lastName == "" {
    return nil, fmt.Errorf("%w: first and last name are required", apperr.ErrInvalidArgument)
  }
  if email == "" {
    return nil, fmt.Errorf("%w: email is required", apperr.ErrInvalidArgument)
  }
  exists, err := s.personRepo.EmailExists(ctx, nil, email)
  if err != nil {
    return nil, err
  }
  if exists {
    return nil, fmt.Errorf("%w: email already in use", apperr.ErrConflict)
  }
  person := &types.Person{
    ID:        uuid.New(),
    FirstName: firstName,
    LastName:  lastName,
    Email:     email,
  }
  if _, err := s.personRepo.Create(ctx, nil, []*types.Person{person}); err != nil {
    return nil, err
  }
  return person, nil
}

func (s *personService) List(ctx context.Context) ([]*types.Person, error) {
  return s.personRepo.List(ctx, nil)
}

func (s *personService) GetByID(ctx context.Context, id uuid.UUID) (*types.Person, error) {
  found, err := s.personRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
  if err != nil {
    return nil, err
  }
  if len(found) == 0 {
    return nil, fmt.Errorf("%w: person %s", apperr.ErrNotFound, id)
  }
  return found[0], nil
}

func (s *personService) ListCompetencies(ctx context.Context, personID uuid.UUID) ([]*types.PersonCompetency, error) {
  return s.linkRepo.GetByPersonIDs(ctx, nil, []uuid.UUID{personID})
}

func (s *personService) ExistingCompetencyRefs(ctx context.Context, personID uuid.UUID) ([]ExcludedCompetency, error) {
  links, err := s.linkRepo.GetByPersonIDs(ctx, nil, []uuid.UUID{personID})
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

func (s *personService) RemoveCompetency(ctx context.Context, personID, competencyID uuid.UUID) error {
  if err := s.linkRepo.Delete(ctx, nil, personID, competencyID); err != nil {
    return err
  }
  if s.notifier != nil {
    s.notifier.CompetencyUnlinked(types.EntityRef{Kind: types.EntityKindPerson, ID: personID}, competencyID.String())
  }
  return nil
}
