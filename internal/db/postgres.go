package db

import (
  "fmt"

  "gorm.io/driver/postgres"
  "gorm.io/gorm"

  "github.com/talentgrid/competency-backend/internal/logger"
  "github.com/talentgrid/competency-backend/internal/types"
  "github.com/talentgrid/competency-backend/internal/utils"
)

type PostgresService struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
  postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
  postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
  postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
  postgresName := utils.GetEnv("POSTGRES_NAME", "competency", log)

  dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

  log.Info("Connecting to Postgres...")
  db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
  })
  if err != nil {
    log.Error("Failed to connect to Postgres", "error", err)
    return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
  }

  if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
    log.Error("Failed to enable uuid-ossp extension", "error", err)
    return nil, fmt.Errorf("Failed to enable uuid-ossp extension: %w", err)
  }
  if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error; err != nil {
    log.Error("Failed to enable pgvector extension", "error", err)
    return nil, fmt.Errorf("Failed to enable pgvector extension: %w", err)
  }
  serviceLog.Info("Postgres extensions enabled")

  return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Auto migrating postgres tables...")
  err := s.db.AutoMigrate(
    &types.Person{},
    &types.Course{},
    &types.Competency{},
    &types.CompetencyEmbedding{},
    &types.PersonCompetency{},
    &types.CourseCompetency{},
    &types.ExtractionRun{},
  )
  if err != nil {
    s.log.Error("Auto migration failed for postgres tables", "error", err)
    return err
  }

  // Competency names are unique case-insensitively per type; GORM tags cannot
  // express the LOWER() expression index.
  if err := s.db.Exec(`
    CREATE UNIQUE INDEX IF NOT EXISTS idx_competency_name_type
    ON "competency" (LOWER("name"), "type")
  `).Error; err != nil {
    return fmt.Errorf("Failed to create idx_competency_name_type: %w", err)
  }

  if err := s.db.Exec(`
    CREATE INDEX IF NOT EXISTS idx_competency_embedding_cosine
    ON "competency_embedding" USING hnsw ("embedding" vector_cosine_ops)
  `).Error; err != nil {
    // Brute-force scans still work on small catalogs; index creation can fail
    // on pgvector builds without HNSW.
    s.log.Warn("Failed to create hnsw index on competency_embedding", "error", err)
  }
  return nil
}

func (s *PostgresService) DB() *gorm.DB {
  return s.db
}
