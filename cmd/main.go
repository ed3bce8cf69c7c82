package main

import (
  "context"
  "fmt"
  "os"

  "github.com/talentgrid/competency-backend/internal/clients/redis"
  "github.com/talentgrid/competency-backend/internal/db"
  "github.com/talentgrid/competency-backend/internal/handlers"
  "github.com/talentgrid/competency-backend/internal/logger"
  "github.com/talentgrid/competency-backend/internal/repos"
  "github.com/talentgrid/competency-backend/internal/server"
  "github.com/talentgrid/competency-backend/internal/services"
  "github.com/talentgrid/competency-backend/internal/sse"
  "github.com/talentgrid/competency-backend/internal/utils"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Error("Postgres auto migration failed", "error", err)
    os.Exit(1)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  competencyRepo := repos.NewCompetencyRepo(thePG, log)
  embeddingRepo := repos.NewCompetencyEmbeddingRepo(thePG, log)
  personRepo := repos.NewPersonRepo(thePG, log)
  courseRepo := repos.NewCourseRepo(thePG, log)
  personCompetencyRepo := repos.NewPersonCompetencyRepo(thePG, log)
  courseCompetencyRepo := repos.NewCourseCompetencyRepo(thePG, log)
  extractionRunRepo := repos.NewExtractionRunRepo(thePG, log)

  // SSE
  log.Info("Setting up SSE hub now...")
  sseHub := sse.NewSSEHub(log)

  sseBus, err := redis.NewSSEBus(log)
  if err != nil {
    log.Warn("Redis SSE bus unavailable, catalog events stay node-local", "error", err)
    sseBus = nil
  } else {
    if err := sseBus.StartForwarder(context.Background(), sseHub.Broadcast); err != nil {
      log.Warn("Could not start Redis SSE forwarder", "error", err)
    }
  }

  // Services
  log.Info("Setting up Services from main...")
  openaiClient, err := services.NewOpenAIClient(log)
  if err != nil {
    log.Error("Could not init OpenAIClient", "error", err)
    os.Exit(1)
  }
  notifier := services.NewCatalogNotifier(log, sseHub, sseBus)
  embeddingService := services.NewEmbeddingService(log, openaiClient, embeddingRepo)
  similarityIndex := services.NewSimilarityIndex(log, embeddingRepo)
  resolver := services.NewIdentityResolver(log, competencyRepo, embeddingService, similarityIndex)
  assignmentService := services.NewAssignmentService(thePG, log, competencyRepo, personCompetencyRepo, courseCompetencyRepo, embeddingService, notifier)
  reconciliationService := services.NewReconciliationService(log, assignmentService, resolver)
  extractionService := services.NewExtractionService(log, openaiClient, resolver, reconciliationService, extractionRunRepo)
  competencyService := services.NewCompetencyService(thePG, log, competencyRepo, embeddingService, notifier)
  personService := services.NewPersonService(thePG, log, personRepo, personCompetencyRepo, notifier)
  courseService := services.NewCourseService(thePG, log, courseRepo, courseCompetencyRepo, notifier)

  // Handlers
  log.Info("Setting up handlers from main...")
  competencyHandler := handlers.NewCompetencyHandler(competencyService)
  personHandler := handlers.NewPersonHandler(personService)
  courseHandler := handlers.NewCourseHandler(courseService)
  extractionHandler := handlers.NewExtractionHandler(log, extractionService, personService, courseService)
  reconcileHandler := handlers.NewReconcileHandler(reconciliationService)
  sseHandler := handlers.NewSSEHandler(log, sseHub)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    CompetencyHandler: competencyHandler,
    PersonHandler:     personHandler,
    CourseHandler:     courseHandler,
    ExtractionHandler: extractionHandler,
    ReconcileHandler:  reconcileHandler,
    SSEHandler:        sseHandler,
  })

  port := utils.GetEnv("PORT", "8080", log)
  log.Info("Server listening", "port", port)
  if err := router.Run(":" + port); err != nil {
    log.Error("Server failed", "error", err)
  }
}
