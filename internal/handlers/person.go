package handlers

import (
  "fmt"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/talentgrid/competency-backend/internal/services"
)

type PersonHandler struct {
  personService services.PersonService
}

func NewPersonHandler(personService services.PersonService) *PersonHandler {
  return &PersonHandler{personService: personService}
}

type createPersonRequest struct {
  FirstName string `json:"first_name" binding:"required"`
  LastName  string `json:"last_name" binding:"required"`
  Email     string `json:"email" binding:"required"`
}

func (h *PersonHandler) Create(c *gin.Context) {
  var req createPersonRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  person, err := h.personService.Create(c.Request.Context(), req.FirstName, req.LastName, req.Email)
  if err != nil {
    RespondMappedError(c, err)
    return
  }
  RespondCreated(c, person)
}

func (h *PersonHandler) List(c *gin.Context) {
  persons, err := h.personService.List(c.Request.Context())
  if err != nil {
    RespondMappedError(c, err)
    return
  }
  RespondOK(c, gin.H{"persons": persons})
}

func (h *PersonHandler) Get(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid person id"))
    return
  }
  person, err := h.personService.GetByID(c.Request.Context(), id)
  if err != nil {
    RespondMappedError(c, err)
    return
  }
  RespondOK(c, person)
}

func (h *PersonHandler) ListCompetencies(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid person id"))
    return
  }
  links, err := h.personService.ListCompetencies(c.Request.Context(), id)
  if err != nil {
    RespondMappedError(c, err)
    return
  }
  RespondOK(c, gin.H{"competencies": links})
}

func (h *PersonHandler) RemoveCompetency(c *gin.Context) {
  personID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid person id"))
    return
  }
  competencyID, err := uuid.Parse(c.Param("competencyId"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid competency id"))
    return
  }
  if err := h.personService.RemoveCompetency(c.Request.Context(), personID, competencyID); err != nil {
    RespondMappedError(c, err)
    return
  }
  c.Status(http.StatusNoContent)
}
