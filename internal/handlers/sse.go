package handlers

import (
  "github.com/gin-gonic/gin"

  "github.com/talentgrid/competency-backend/internal/logger"
  "github.com/talentgrid/competency-backend/internal/sse"
)

type SSEHandler struct {
  log *logger.Logger
  hub *sse.SSEHub
}

func NewSSEHandler(log *logger.Logger, hub *sse.SSEHub) *SSEHandler {
  return &SSEHandler{
    log: log.With("handler", "SSEHandler"),
    hub: hub,
  }
}

// SSEStream opens one long-lived connection subscribed to the catalog
// channel plus any extra channels given via the query string.
func (h *SSEHandler) SSEStream(c *gin.Context) {
  client := h.hub.NewSSEClient()
  h.hub.AddChannel(client, sse.ChannelCatalog)
  for _, channel := range c.QueryArray("channel") {
    h.hub.AddChannel(client, channel)
  }
  defer h.hub.CloseClient(client)

  h.hub.ServeHTTP(c.Writer, c.Request, client)
}
