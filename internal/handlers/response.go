package handlers

import (
  "errors"
  "net/http"

  "github.com/gin-gonic/gin"

  apperr "github.com/talentgrid/competency-backend/internal/pkg/errors"
)

type APIError struct {
  Message string `json:"message"`
  Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
  Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
  msg := "unknown error"
  if err != nil {
    msg = err.Error()
  }
  c.JSON(status, ErrorEnvelope{
    Error: APIError{
      Message: msg,
      Code:    code,
    },
  })
}

// RespondMappedError translates the service-layer sentinels into HTTP codes
// so individual handlers do not repeat the mapping.
func RespondMappedError(c *gin.Context, err error) {
  switch {
  case errors.Is(err, apperr.ErrNotFound):
    RespondError(c, http.StatusNotFound, "not_found", err)
  case errors.Is(err, apperr.ErrDuplicateLink):
    RespondError(c, http.StatusConflict, "already_linked", err)
  case errors.Is(err, apperr.ErrNameConflict):
    RespondError(c, http.StatusConflict, "name_conflict", err)
  case errors.Is(err, apperr.ErrConflict):
    RespondError(c, http.StatusConflict, "conflict", err)
  case errors.Is(err, apperr.ErrInvalidArgument):
    RespondError(c, http.StatusBadRequest, "invalid_argument", err)
  default:
    RespondError(c, http.StatusInternalServerError, "internal", err)
  }
}

func RespondOK(c *gin.Context, payload any) {
  c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
  c.JSON(http.StatusCreated, payload)
}
