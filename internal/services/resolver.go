package services

import (
  "context"
  "errors"
  "fmt"

  "github.com/google/uuid"

  "github.com/talentgrid/competency-backend/internal/logger"
  apperr "github.com/talentgrid/competency-backend/internal/pkg/errors"
  "github.com/talentgrid/competency-backend/internal/repos"
  "github.com/talentgrid/competency-backend/internal/types"
)

// CandidateDraft is the raw competency proposal coming out of the model.
type CandidateDraft struct {
  Name        string               `json:"name"`
  Type        types.CompetencyType `json:"type"`
  Description string               `json:"description"`
}

func (d CandidateDraft) Validate() error {
  if d.Name == "" {
    return fmt.Errorf("%w: competency name is required", apperr.ErrInvalidArgument)
  }
  if !d.Type.Valid() {
    return fmt.Errorf("%w: unknown competency type %q", apperr.ErrInvalidArgument, string(d.Type))
  }
  return nil
}

// IdentityResolver decides whether a candidate is an existing competency, a
// near-duplicate of one, or genuinely new.
type IdentityResolver interface {
  Resolve(ctx context.Context, draft CandidateDraft) (Identity, []SimilarOption, error)
}

type identityResolver struct {
  log            *logger.Logger
  competencyRepo repos.CompetencyRepo
  embedder       EmbeddingService
  index          SimilarityIndex
}

func NewIdentityResolver(baseLog *logger.Logger, competencyRepo repos.CompetencyRepo, embedder EmbeddingService, index SimilarityIndex) IdentityResolver {
  return &identityResolver{
    log:            baseLog.With("service", "IdentityResolver"),
    competencyRepo: competencyRepo,
    embedder:       embedder,
    index:          index,
  }
}

func (r *identityResolver) Resolve(ctx context.Context, draft CandidateDraft) (Identity, []SimilarOption, error) {
  if err := draft.Validate(); err != nil {
    return nil, nil, err
  }

  existing, err := r.competencyRepo.GetByNameAndType(ctx, nil, draft.Name, draft.Type)
  if err != nil && !errors.Is(err, apperr.ErrNotFound) {
    return nil, nil, fmt.Errorf("exact match lookup for %q: %w", draft.Name, err)
  }
  if existing != nil {
    // An exact (name, type) match is already resolved; no alternatives are
    // suggested. A missing embedding is repaired here so the row can take
    // part in future similarity queries.
    if backfillErr := r.embedder.EnsureEmbedding(ctx, existing); backfillErr != nil {
      r.log.Warn("Embedding backfill failed for exact match", "competencyID", existing.ID, "name", existing.Name, "error", backfillErr)
    }
    return ExistingIdentity{ID: existing.ID}, []SimilarOption{}, nil
  }

  vector, err := r.embedder.EmbedName(ctx, draft.Name)
  if err != nil {
    return nil, nil, err
  }

  // The provisional identity has no stored vector, so there is nothing to
  // exclude from the neighbor scan.
  identity := NewProvisionalIdentity()

  neighbors, err := r.index.NearestNeighbors(ctx, vector, nil, MinSimilarity, MaxSimilarOptions)
  if err != nil {
    return nil, nil, fmt.Errorf("similarity query for %q: %w", draft.Name, err)
  }

  options, err := r.hydrateOptions(ctx, neighbors)
  if err != nil {
    return nil, nil, err
  }
  return identity, options, nil
}

func (r *identityResolver) hydrateOptions(ctx context.Context, neighbors []*repos.Neighbor) ([]SimilarOption, error) {
  if len(neighbors) == 0 {
    return []SimilarOption{}, nil
  }
  ids := make([]uuid.UUID, 0, len(neighbors))
  for _, n := range neighbors {
    ids = append(ids, n.CompetencyID)
  }
  competencies, err := r.competencyRepo.GetByIDs(ctx, nil, ids)
  if err != nil {
    return nil, fmt.Errorf("hydrate similar options: %w", err)
  }
  byID := make(map[uuid.UUID]*types.Competency, len(competencies))
  for _, c := range competencies {
    byID[c.ID] = c
  }

  options := make([]SimilarOption, 0, len(neighbors))
  for _, n := range neighbors {
    c, ok := byID[n.CompetencyID]
    if !ok {
      // Embedding row outlived its competency; skip rather than surface a
      // dangling id.
      r.log.Warn("Similarity hit without competency row", "competencyID", n.CompetencyID)
      continue
    }
    options = append(options, SimilarOption{
      ID:          c.ID,
      Name:        c.Name,
      Type:        c.Type,
      Description: c.Description,
      Similarity:  n.Similarity,
    })
  }
  return options, nil
}
