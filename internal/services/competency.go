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

type CompetencyService interface {
  List(ctx context.Context) ([]*types.Competency, error)
  GetByID(ctx context.Context, id uuid.UUID) (*types.Competency, error)
  // Create is the PM-privileged catalog entry point; the embedding is written
  // eagerly so the new competency is immediately visible to similarity search.
  Create(ctx context.Context, name, typeName, description string) (*types.Competency, error)
}

type competencyService struct {
  db  *gorm.DB
  log *logger.Logger

  competencyRepo repos.CompetencyRepo
  embedder       EmbeddingService
  notifier       CatalogNotifier
}

func NewCompetencyService(db *gorm.DB, baseLog *logger.Logger, competencyRepo repos.CompetencyRepo, embedder EmbeddingService, notifier CatalogNotifier) CompetencyService {
  return &competencyService{
    db:             db,
    log:            baseLog.With("service", "CompetencyService"),
    competencyRepo: competencyRepo,
    embedder:       embedder,
    notifier:       notifier,
  }
}

func (s *competencyService) List(ctx context.Context) ([]*types.Competency, error) {
  return s.competencyRepo.List(ctx, nil)
}

func (s *competencyService) GetByID(ctx context.Context, id uuid.UUID) (*types.Competency, error) {
  found, err := s.competencyRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
  if err != nil {
    return nil, err
  }
  if len(found) == 0 {
    return nil, fmt.Errorf("%w: competency %s", apperr.ErrNotFound, id)
  }
  return found[0], nil
}

func (s *competencyService) Create(ctx context.Context, name, typeName, description string) (*types.Competency, error) {
  ctype, err := types.ParseCompetencyType(typeName)
  if err != nil {
    return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err)
  }
  draft := CandidateDraft{Name: name, Type: ctype, Description: description}
  if err := draft.Validate(); err != nil {
    return nil, err
  }

  vector, err := s.embedder.EmbedName(ctx, name)
  if err != nil {
    return nil, err
  }

  competency := &types.Competency{
    ID:          uuid.New(),
    Name:        name,
    Type:        ctype,
    Description: description,
  }
  err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if _, err := s.competencyRepo.Create(ctx, tx, []*types.Competency{competency}); err != nil {
      return err
    }
    return s.embedder.StoreEmbedding(ctx, tx, competency.ID, vector)
  })
  if err != nil {
    return nil, err
  }

  if s.notifier != nil {
    s.notifier.CompetencyCreated(competency)
  }
  return competency, nil
}
