package handlers

import (
  "encoding/json"
  "fmt"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/talentgrid/competency-backend/internal/logger"
  "github.com/talentgrid/competency-backend/internal/services"
  "github.com/talentgrid/competency-backend/internal/types"
)

type ExtractionHandler struct {
  log               *logger.Logger
  extractionService services.ExtractionService
  personService     services.PersonService
  courseService     services.CourseService
}

func NewExtractionHandler(log *logger.Logger, extractionService services.ExtractionService, personService services.PersonService, courseService services.CourseService) *ExtractionHandler {
  return &ExtractionHandler{
    log:               log.With("handler", "ExtractionHandler"),
    extractionService: extractionService,
    personService:     personService,
    courseService:     courseService,
  }
}

type extractRequest struct {
  Content     string `json:"content" binding:"required"`
  ContextHint string `json:"contextHint"`
}

func (h *ExtractionHandler) ExtractForPerson(c *gin.Context) {
  personID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid person id"))
    return
  }
  person, err := h.personService.GetByID(c.Request.Context(), personID)
  if err != nil {
    RespondMappedError(c, err)
    return
  }
  exclude, err := h.personService.ExistingCompetencyRefs(c.Request.Context(), personID)
  if err != nil {
    RespondMappedError(c, err)
    return
  }
  h.extract(c, types.EntityRef{Kind: types.EntityKindPerson, ID: personID}, person.FullName(), exclude)
}

func (h *ExtractionHandler) ExtractForCourse(c *gin.Context) {
  courseID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid course id"))
    return
  }
  course, err := h.courseService.GetByID(c.Request.Context(), courseID)
  if err != nil {
    RespondMappedError(c, err)
    return
  }
  exclude, err := h.courseService.ExistingCompetencyRefs(c.Request.Context(), courseID)
  if err != nil {
    RespondMappedError(c, err)
    return
  }
  h.extract(c, types.EntityRef{Kind: types.EntityKindCourse, ID: courseID}, course.Title, exclude)
}

// extract streams the extraction events to the single caller as SSE. The
// stream carries info events while candidates resolve and exactly one
// terminal result or error event.
func (h *ExtractionHandler) extract(c *gin.Context, entity types.EntityRef, entityName string, exclude []services.ExcludedCompetency) {
  var req extractRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }

  flusher, ok := c.Writer.(http.Flusher)
  if !ok {
    RespondError(c, http.StatusInternalServerError, "streaming_unsupported", fmt.Errorf("streaming unsupported"))
    return
  }

  c.Writer.Header().Set("Content-Type", "text/event-stream")
  c.Writer.Header().Set("Cache-Control", "no-cache")
  c.Writer.Header().Set("Connection", "keep-alive")
  c.Writer.Header().Set("X-Accel-Buffering", "no")
  c.Writer.WriteHeader(http.StatusOK)
  flusher.Flush()

  ctx := c.Request.Context()
  events := h.extractionService.Extract(ctx, services.ExtractionRequest{
    Content:             req.Content,
    ContextHint:         req.ContextHint,
    EntityName:          entityName,
    Entity:              entity,
    ExcludeCompetencies: exclude,
  })

  for event := range events {
    payload, err := json.Marshal(event)
    if err != nil {
      h.log.Warn("Failed to marshal extraction event", "error", err)
      continue
    }
    if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", payload); err != nil {
      h.log.Debug("Extraction stream write failed, caller gone", "entity", entity.String(), "error", err)
      return
    }
    flusher.Flush()
  }
}
