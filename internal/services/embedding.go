package services

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "github.com/pgvector/pgvector-go"
  "golang.org/x/sync/singleflight"
  "gorm.io/gorm"

  "github.com/talentgrid/competency-backend/internal/logger"
  "github.com/talentgrid/competency-backend/internal/repos"
  "github.com/talentgrid/competency-backend/internal/types"
  "github.com/talentgrid/competency-backend/internal/utils"
)

// EmbeddingService turns competency names into vectors and keeps the stored
// embeddings of the catalog complete.
type EmbeddingService interface {
  EmbedName(ctx context.Context, name string) ([]float32, error)
  StoreEmbedding(ctx context.Context, tx *gorm.DB, competencyID uuid.UUID, vector []float32) error
  // EnsureEmbedding backfills a missing embedding for an existing competency.
  // Idempotent; concurrent calls for the same competency collapse into one.
  EnsureEmbedding(ctx context.Context, competency *types.Competency) error
}

type embeddingService struct {
  log           *logger.Logger
  ai            OpenAIClient
  embeddingRepo repos.CompetencyEmbeddingRepo
  model         string

  backfill singleflight.Group
}

func NewEmbeddingService(baseLog *logger.Logger, ai OpenAIClient, embeddingRepo repos.CompetencyEmbeddingRepo) EmbeddingService {
  return &embeddingService{
    log:           baseLog.With("service", "EmbeddingService"),
    ai:            ai,
    embeddingRepo: embeddingRepo,
    model:         utils.GetEnv("OPENAI_EMBED_MODEL", "text-embedding-3-small", nil),
  }
}

func (s *embeddingService) EmbedName(ctx context.Context, name string) ([]float32, error) {
  vectors, err := s.ai.Embed(ctx, []string{name})
  if err != nil {
    return nil, fmt.Errorf("embed %q: %w", name, err)
  }
  if len(vectors) != 1 {
    return nil, fmt.Errorf("embed %q: got %d vectors", name, len(vectors))
  }
  if len(vectors[0]) != types.EmbeddingDimensions {
    return nil, fmt.Errorf("embed %q: got %d dimensions, want %d", name, len(vectors[0]), types.EmbeddingDimensions)
  }
  return vectors[0], nil
}

func (s *embeddingService) StoreEmbedding(ctx context.Context, tx *gorm.DB, competencyID uuid.UUID, vector []float32) error {
  embedding := &types.CompetencyEmbedding{
    ID:           uuid.New(),
    CompetencyID: competencyID,
    Embedding:    pgvector.NewVector(vector),
    Model:        s.model,
  }
  return s.embeddingRepo.Upsert(ctx, tx, []*types.CompetencyEmbedding{embedding})
}

func (s *embeddingService) EnsureEmbedding(ctx context.Context, competency *types.Competency) error {
  if competency == nil {
    return fmt.Errorf("competency required")
  }
  _, err, _ := s.backfill.Do(competency.ID.String(), func() (interface{}, error) {
    has, err := s.embeddingRepo.HasEmbedding(ctx, nil, competency.ID)
    if err != nil {
      return nil, err
    }
    if has {
      return nil, nil
    }
    vector, err := s.EmbedName(ctx, competency.Name)
    if err != nil {
      return nil, err
    }
    s.log.Info("Backfilling missing competency embedding", "competencyID", competency.ID, "name", competency.Name)
    return nil, s.StoreEmbedding(ctx, nil, competency.ID, vector)
  })
  return err
}
