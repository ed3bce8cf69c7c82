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

type CommitInput struct {
  Entity      types.EntityRef
  Identity    Identity
  Draft       *CandidateDraft
  Proficiency *types.Proficiency
}

type CommitResult struct {
  CompetencyID uuid.UUID
  Created      bool
}

// CompetencyAssigner materializes a reconciliation decision: create the
// competency if it is still provisional, then link it to the target entity.
type CompetencyAssigner interface {
  Commit(ctx context.Context, input CommitInput) (*CommitResult, error)
}

type assignmentService struct {
  db  *gorm.DB
  log *logger.Logger

  competencyRepo repos.CompetencyRepo
  personLinkRepo repos.PersonCompetencyRepo
  courseLinkRepo repos.CourseCompetencyRepo
  embedder       EmbeddingService
  notifier       CatalogNotifier
}

func NewAssignmentService(
  db *gorm.DB,
  baseLog *logger.Logger,
  competencyRepo repos.CompetencyRepo,
  personLinkRepo repos.PersonCompetencyRepo,
  courseLinkRepo repos.CourseCompetencyRepo,
  embedder EmbeddingService,
  notifier CatalogNotifier,
) CompetencyAssigner {
  return &assignmentService{
    db:             db,
    log:            baseLog.With("service", "AssignmentService"),
    competencyRepo: competencyRepo,
    personLinkRepo: personLinkRepo,
    courseLinkRepo: courseLinkRepo,
    embedder:       embedder,
    notifier:       notifier,
  }
}

func (s *assignmentService) Commit(ctx context.Context, input CommitInput) (*CommitResult, error) {
  competency, created, err := s.materialize(ctx, input)
  if err != nil {
    return nil, err
  }

  if input.Proficiency != nil && !competency.Type.SupportsProficiency() {
    return nil, fmt.Errorf("%w: competency type %s does not take a proficiency", apperr.ErrInvalidArgument, competency.Type)
  }

  // The link step runs outside the creation transaction on purpose: if it
  // fails, the freshly created competency is still a legitimate catalog
  // entry, and only the link needs retrying.
  if err := s.link(ctx, input.Entity, competency.ID, input.Proficiency); err != nil {
    return nil, err
  }

  if s.notifier != nil {
    if created {
      s.notifier.CompetencyCreated(competency)
    }
    s.notifier.CompetencyLinked(input.Entity, competency)
  }
  return &CommitResult{CompetencyID: competency.ID, Created: created}, nil
}

func (s *assignmentService) materialize(ctx context.Context, input CommitInput) (*types.Competency, bool, error) {
  switch identity := input.Identity.(type) {
  case ExistingIdentity:
    // Draft fields are irrelevant once an existing competency is chosen.
    found, err := s.competencyRepo.GetByIDs(ctx, nil, []uuid.UUID{identity.ID})
    if err != nil {
      return nil, false, err
    }
    if len(found) == 0 {
      return nil, false, fmt.Errorf("%w: competency %s", apperr.ErrNotFound, identity.ID)
    }
    return found[0], false, nil

  case ProvisionalIdentity:
    if input.Draft == nil {
      return nil, false, fmt.Errorf("%w: provisional commit needs draft fields", apperr.ErrInvalidArgument)
    }
    if err := input.Draft.Validate(); err != nil {
      return nil, false, err
    }

    // Embedding generation is a network call; keep it out of the transaction
    // so the row and its embedding are still written all-or-nothing.
    vector, err := s.embedder.EmbedName(ctx, input.Draft.Name)
    if err != nil {
      return nil, false, err
    }

    competency := &types.Competency{
      ID:          uuid.New(),
      Name:        input.Draft.Name,
      Type:        input.Draft.Type,
      Description: input.Draft.Description,
    }
    err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
      if _, err := s.competencyRepo.Create(ctx, tx, []*types.Competency{competency}); err != nil {
        return err
      }
      return s.embedder.StoreEmbedding(ctx, tx, competency.ID, vector)
    })
    if err != nil {
      return nil, false, err
    }
    s.log.Info("Competency created from provisional draft", "competencyID", competency.ID, "name", competency.Name, "type", competency.Type)
    return competency, true, nil

  default:
    return nil, false, fmt.Errorf("%w: unsupported identity", apperr.ErrInvalidArgument)
  }
}

func (s *assignmentService) link(ctx context.Context, entity types.EntityRef, competencyID uuid.UUID, proficiency *types.Proficiency) error {
  switch entity.Kind {
  case types.EntityKindPerson:
    exists, err := s.personLinkRepo.Exists(ctx, nil, entity.ID, competencyID)
    if err != nil {
      return err
    }
    if exists {
      return apperr.ErrDuplicateLink
    }
    _, err = s.personLinkRepo.Create(ctx, nil, []*types.PersonCompetency{{
      ID:           uuid.New(),
      PersonID:     entity.ID,
      CompetencyID: competencyID,
      Proficiency:  proficiency,
    }})
    return err

  case types.EntityKindCourse:
    exists, err := s.courseLinkRepo.Exists(ctx, nil, entity.ID, competencyID)
    if err != nil {
      return err
    }
    if exists {
      return apperr.ErrDuplicateLink
    }
    _, err = s.courseLinkRepo.Create(ctx, nil, []*types.CourseCompetency{{
      ID:           uuid.New(),
      CourseID:     entity.ID,
      CompetencyID: competencyID,
      Proficiency:  proficiency,
    }})
    return err

  default:
    return fmt.Errorf("%w: unknown entity kind %q", apperr.ErrInvalidArgument, string(entity.Kind))
  }
}
