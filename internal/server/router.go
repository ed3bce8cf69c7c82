package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"

  "github.com/talentgrid/competency-backend/internal/handlers"
)

type RouterConfig struct {
  CompetencyHandler *handlers.CompetencyHandler
  PersonHandler     *handlers.PersonHandler
  CourseHandler     *handlers.CourseHandler
  ExtractionHandler *handlers.ExtractionHandler
  ReconcileHandler  *handlers.ReconcileHandler
  SSEHandler        *handlers.SSEHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
      "http://localhost:80",
      "http://localhost:3000",
      "http://localhost:5174",
    },
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

  router.GET("/healthcheck", handlers.HealthCheck)

  api := router.Group("/api")
  {
    // Catalog
    api.GET("/competencies", cfg.CompetencyHandler.List)
    api.POST("/competencies", cfg.CompetencyHandler.Create)
    api.GET("/competencies/:id", cfg.CompetencyHandler.Get)

    // People
    api.POST("/persons", cfg.PersonHandler.Create)
    api.GET("/persons", cfg.PersonHandler.List)
    api.GET("/persons/:id", cfg.PersonHandler.Get)
    api.GET("/persons/:id/competencies", cfg.PersonHandler.ListCompetencies)
    api.DELETE("/persons/:id/competencies/:competencyId", cfg.PersonHandler.RemoveCompetency)
    api.POST("/persons/:id/competencies/extract", cfg.ExtractionHandler.ExtractForPerson)

    // Courses
    api.POST("/courses", cfg.CourseHandler.Create)
    api.GET("/courses", cfg.CourseHandler.List)
    api.GET("/courses/:id", cfg.CourseHandler.Get)
    api.GET("/courses/:id/competencies", cfg.CourseHandler.ListCompetencies)
    api.DELETE("/courses/:id/competencies/:competencyId", cfg.CourseHandler.RemoveCompetency)
    api.POST("/courses/:id/competencies/extract", cfg.ExtractionHandler.ExtractForCourse)

    // Reconciliation
    reconcile := api.Group("/reconciliation/:entityKind/:entityId")
    {
      reconcile.GET("", cfg.ReconcileHandler.List)
      reconcile.DELETE("", cfg.ReconcileHandler.EndSession)
      reconcile.POST("/items/:candidateId/select", cfg.ReconcileHandler.SelectOption)
      reconcile.POST("/items/:candidateId/draft", cfg.ReconcileHandler.EditDraft)
      reconcile.POST("/items/:candidateId/proficiency", cfg.ReconcileHandler.SetProficiency)
      reconcile.POST("/items/:candidateId/ignore", cfg.ReconcileHandler.Ignore)
      reconcile.POST("/items/:candidateId/restore", cfg.ReconcileHandler.Restore)
      reconcile.POST("/items/:candidateId/commit", cfg.ReconcileHandler.Commit)
    }

    // SSE
    api.GET("/sse/stream", cfg.SSEHandler.SSEStream)
  }

  return router
}
