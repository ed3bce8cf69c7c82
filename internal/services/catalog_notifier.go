package services

import (
  "context"
  "time"

  "github.com/talentgrid/competency-backend/internal/clients/redis"
  "github.com/talentgrid/competency-backend/internal/logger"
  "github.com/talentgrid/competency-backend/internal/sse"
  "github.com/talentgrid/competency-backend/internal/types"
)

// CatalogNotifier pushes catalog change events to subscribed SSE clients,
// locally and across instances when a Redis bus is configured.
type CatalogNotifier interface {
  CompetencyCreated(competency *types.Competency)
  CompetencyLinked(entity types.EntityRef, competency *types.Competency)
  CompetencyUnlinked(entity types.EntityRef, competencyID string)
}

type catalogNotifier struct {
  log *logger.Logger
  hub *sse.SSEHub
  bus redis.SSEBus
}

func NewCatalogNotifier(baseLog *logger.Logger, hub *sse.SSEHub, bus redis.SSEBus) CatalogNotifier {
  return &catalogNotifier{
    log: baseLog.With("service", "CatalogNotifier"),
    hub: hub,
    bus: bus,
  }
}

func (n *catalogNotifier) send(event sse.SSEEvent, data any) {
  msg := sse.SSEMessage{
    Channel: sse.ChannelCatalog,
    Event:   event,
    Data:    data,
  }
  if n.hub != nil {
    n.hub.Broadcast(msg)
  }
  if n.bus != nil {
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := n.bus.Publish(ctx, msg); err != nil {
      n.log.Warn("Failed to publish catalog event to bus", "event", string(event), "error", err)
    }
  }
}

func (n *catalogNotifier) CompetencyCreated(competency *types.Competency) {
  n.send(sse.SSEEventCompetencyCreated, competency)
}

func (n *catalogNotifier) CompetencyLinked(entity types.EntityRef, competency *types.Competency) {
  n.send(sse.SSEEventCompetencyLinked, map[string]any{
    "entity":     entity,
    "competency": competency,
  })
}

func (n *catalogNotifier) CompetencyUnlinked(entity types.EntityRef, competencyID string) {
  n.send(sse.SSEEventCompetencyUnlinked, map[string]any{
    "entity":       entity,
    "competencyId": competencyID,
  })
}
