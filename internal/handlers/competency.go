package handlers

import (
  "fmt"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/talentgrid/competency-backend/internal/services"
)

type CompetencyHandler struct {
  competencyService services.CompetencyService
}

func NewCompetencyHandler(competencyService services.CompetencyService) *CompetencyHandler {
  return &CompetencyHandler{competencyService: competencyService}
}

func (h *CompetencyHandler) List(c *gin.Context) {
  competencies, err := h.competencyService.List(c.Request.Context())
  if err != nil {
    RespondMappedError(c, err)
    return
  }
  RespondOK(c, gin.H{"competencies": competencies})
}

func (h *CompetencyHandler) Get(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid competency id"))
    return
  }
  competency, err := h.competencyService.GetByID(c.Request.Context(), id)
  if err != nil {
    RespondMappedError(c, err)
    return
  }
  RespondOK(c, competency)
}

type createCompetencyRequest struct {
  Name        string `json:"name" binding:"required"`
  Type        string `json:"type" binding:"required"`
  Description string `json:"description"`
}

func (h *CompetencyHandler) Create(c *gin.Context) {
  var req createCompetencyRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  competency, err := h.competencyService.Create(c.Request.Context(), req.Name, req.Type, req.Description)
  if err != nil {
    RespondMappedError(c, err)
    return
  }
  RespondCreated(c, competency)
}
