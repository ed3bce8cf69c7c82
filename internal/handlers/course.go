package handlers

import (
  "fmt"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/talentgrid/competency-backend/internal/services"
)

type CourseHandler struct {
  courseService services.CourseService
}

func NewCourseHandler(courseService services.CourseService) *CourseHandler {
  return &CourseHandler{courseService: courseService}
}

type createCourseRequest struct {
  Title       string `json:"title" binding:"required"`
  Description string `json:"description"`
}

func (h *CourseHandler) Create(c *gin.Context) {
  var req createCourseRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return
  }
  course, err := h.courseService.Create(c.Request.Context(), req.Title, req.Description)
  if err != nil {
    RespondMappedError(c, err)
    return
  }
  RespondCreated(c, course)
}

func (h *CourseHandler) List(c *gin.Context) {
  courses, err := h.courseService.List(c.Request.Context())
  if err != nil {
    RespondMappedError(c, err)
    return
  }
  RespondOK(c, gin.H{"courses": courses})
}

func (h *CourseHandler) Get(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid course id"))
    return
  }
  course, err := h.courseService.GetByID(c.Request.Context(), id)
  if err != nil {
    RespondMappedError(c, err)
    return
  }
  RespondOK(c, course)
}

func (h *CourseHandler) ListCompetencies(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid course id"))
    return
  }
  links, err := h.courseService.ListCompetencies(c.Request.Context(), id)
  if err != nil {
    RespondMappedError(c, err)
    return
  }
  RespondOK(c, gin.H{"competencies": links})
}

func (h *CourseHandler) RemoveCompetency(c *gin.Context) {
  courseID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid course id"))
    return
  }
  competencyID, err := uuid.Parse(c.Param("competencyId"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid competency id"))
    return
  }
  if err := h.courseService.RemoveCompetency(c.Request.Context(), courseID, competencyID); err != nil {
    RespondMappedError(c, err)
    return
  }
  c.Status(http.StatusNoContent)
}
