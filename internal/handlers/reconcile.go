package handlers

import (
  "fmt"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/talentgrid/competency-backend/internal/services"
  "github.com/talentgrid/competency-backend/internal/types"
)

type ReconcileHandler struct {
  reconciler services.ReconciliationService
}

func NewReconcileHandler(reconciler services.ReconciliationService) *ReconcileHandler {
  return &ReconcileHandler{reconciler: reconciler}
}

func (h *ReconcileHandler) entityRef(c *gin.Context) (types.EntityRef, bool) {
  kind, err := types.ParseEntityKind(c.Param("entityKind"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_entity_kind", err)
    return types.EntityRef{}, false
  }
  id, err := uuid.Parse(c.Param("entityId"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid entity id"))
    return types.EntityRef{}, false
  }
  return types.EntityRef{Kind: kind, ID: id}, true
}

func (h *ReconcileHandler) candidateID(c *gin.Context) (uuid.UUID, bool) {
  id, err := uuid.Parse(c.Param("candidateId"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid candidate id"))
    return uuid.Nil, false
  }
  return id, true
}

func (h *ReconcileHandler) List(c *gin.Context) {
  entity, ok := h.entityRef(c)
  if !ok {
    return
  }
  includeIgnored := c.Query("includeIgnored") == "true"
  items, err := h.reconciler.List(entity, includeIgnored)
  if err != nil {
    RespondMappedError(c, err)
    return
  }
  RespondOK(c, gin.H{"items": items})
}

type selectOptionRequest struct {
  OptionID string `json:"optionId" binding:"required"`
}

func (h *ReconcileHandler) SelectOption(c *gin.Context) {
  entity, ok := h.entityRef(c)
  if !ok {
    return
  }
  candidateID, ok := h.candidateID(c)
  if !ok {
    return
  }
  var req selectOptionRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  if err := h.reconciler.SelectOption(entity, candidateID, req.OptionID); err != nil {
    RespondMappedError(c, err)
    return
  }
  c.Status(http.StatusNoContent)
}

func (h *ReconcileHandler) EditDraft(c *gin.Context) {
  entity, ok := h.entityRef(c)
  if !ok {
    return
  }
  candidateID, ok := h.candidateID(c)
  if !ok {
    return
  }
  var edit services.DraftEdit
  if err := c.ShouldBindJSON(&edit); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  if err := h.reconciler.EditDraft(entity, candidateID, edit); err != nil {
    RespondMappedError(c, err)
    return
  }
  c.Status(http.StatusNoContent)
}

type setProficiencyRequest struct {
  Proficiency string `json:"proficiency" binding:"required"`
}

func (h *ReconcileHandler) SetProficiency(c *gin.Context) {
  entity, ok := h.entityRef(c)
  if !ok {
    return
  }
  candidateID, ok := h.candidateID(c)
  if !ok {
    return
  }
  var req setProficiencyRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  proficiency, err := types.ParseProficiency(req.Proficiency)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_proficiency", err)
    return
  }
  if err := h.reconciler.SetProficiency(entity, candidateID, proficiency); err != nil {
    RespondMappedError(c, err)
    return
  }
  c.Status(http.StatusNoContent)
}

func (h *ReconcileHandler) Ignore(c *gin.Context) {
  entity, ok := h.entityRef(c)
  if !ok {
    return
  }
  candidateID, ok := h.candidateID(c)
  if !ok {
    return
  }
  if err := h.reconciler.Ignore(entity, candidateID); err != nil {
    RespondMappedError(c, err)
    return
  }
  c.Status(http.StatusNoContent)
}

func (h *ReconcileHandler) Restore(c *gin.Context) {
  entity, ok := h.entityRef(c)
  if !ok {
    return
  }
  candidateID, ok := h.candidateID(c)
  if !ok {
    return
  }
  if err := h.reconciler.Restore(entity, candidateID); err != nil {
    RespondMappedError(c, err)
    return
  }
  c.Status(http.StatusNoContent)
}

func (h *ReconcileHandler) Commit(c *gin.Context) {
  entity, ok := h.entityRef(c)
  if !ok {
    return
  }
  candidateID, ok := h.candidateID(c)
  if !ok {
    return
  }
  item, err := h.reconciler.Commit(c.Request.Context(), entity, candidateID)
  if err != nil {
    RespondMappedError(c, err)
    return
  }
  RespondOK(c, item)
}

func (h *ReconcileHandler) EndSession(c *gin.Context) {
  entity, ok := h.entityRef(c)
  if !ok {
    return
  }
  h.reconciler.EndSession(entity)
  c.Status(http.StatusNoContent)
}
