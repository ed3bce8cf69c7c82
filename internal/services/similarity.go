package services

import (
  "context"

  "github.com/google/uuid"
  "github.com/pgvector/pgvector-go"

  "github.com/talentgrid/competency-backend/internal/logger"
  "github.com/talentgrid/competency-backend/internal/repos"
  "github.com/talentgrid/competency-backend/internal/types"
)

// SimilarOption is an existing competency surfaced as a possible duplicate of
// a candidate, with its cosine similarity to the candidate's name embedding.
type SimilarOption struct {
  ID          uuid.UUID            `json:"id"`
  Name        string               `json:"name"`
  Type        types.CompetencyType `json:"type"`
  Description string               `json:"description"`
  Similarity  float64              `json:"similarity"`
}

// SimilarityIndex answers nearest-neighbor queries over the competency
// catalog. Competencies without a stored embedding are invisible to it; the
// storage engine behind it is swappable without touching the resolver.
type SimilarityIndex interface {
  NearestNeighbors(ctx context.Context, vector []float32, excludeID *uuid.UUID, minSimilarity float64, limit int) ([]*repos.Neighbor, error)
}

type similarityIndex struct {
  log           *logger.Logger
  embeddingRepo repos.CompetencyEmbeddingRepo
}

func NewSimilarityIndex(baseLog *logger.Logger, embeddingRepo repos.CompetencyEmbeddingRepo) SimilarityIndex {
  return &similarityIndex{
    log:           baseLog.With("service", "SimilarityIndex"),
    embeddingRepo: embeddingRepo,
  }
}

func (s *similarityIndex) NearestNeighbors(ctx context.Context, vector []float32, excludeID *uuid.UUID, minSimilarity float64, limit int) ([]*repos.Neighbor, error) {
  if limit <= 0 {
    return []*repos.Neighbor{}, nil
  }
  return s.embeddingRepo.NearestNeighbors(ctx, nil, pgvector.NewVector(vector), excludeID, minSimilarity, limit)
}
