package redis

import (
  "context"
  "encoding/json"
  "fmt"
  "strings"
  "time"

  goredis "github.com/redis/go-redis/v9"

  "github.com/talentgrid/competency-backend/internal/logger"
  "github.com/talentgrid/competency-backend/internal/sse"
  "github.com/talentgrid/competency-backend/internal/utils"
)

// SSEBus fans hub messages out across instances so every node's SSE clients
// see catalog changes regardless of which node handled the write.
type SSEBus interface {
  Publish(ctx context.Context, msg sse.SSEMessage) error
  StartForwarder(ctx context.Context, onMsg func(m sse.SSEMessage)) error
  Close() error
}

type sseBus struct {
  log     *logger.Logger
  rdb     *goredis.Client
  channel string
}

func NewSSEBus(log *logger.Logger) (SSEBus, error) {
  if log == nil {
    return nil, fmt.Errorf("logger required")
  }

  addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "", log))
  if addr == "" {
    return nil, fmt.Errorf("missing REDIS_ADDR")
  }
  channel := strings.TrimSpace(utils.GetEnv("REDIS_CHANNEL", "catalog-sse", log))

  rdb := goredis.NewClient(&goredis.Options{
    Addr:        addr,
    DialTimeout: 5 * time.Second,
  })

  ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
  defer cancel()
  if err := rdb.Ping(ctx).Err(); err != nil {
    _ = rdb.Close()
    return nil, fmt.Errorf("redis ping: %w", err)
  }

  return &sseBus{
    log:     log.With("service", "RedisSSEBus"),
    rdb:     rdb,
    channel: channel,
  }, nil
}

func (b *sseBus) Publish(ctx context.Context, msg sse.SSEMessage) error {
  payload, err := json.Marshal(msg)
  if err != nil {
    return fmt.Errorf("marshal sse message: %w", err)
  }
  return b.rdb.Publish(ctx, b.channel, payload).Err()
}

func (b *sseBus) StartForwarder(ctx context.Context, onMsg func(m sse.SSEMessage)) error {
  if onMsg == nil {
    return fmt.Errorf("onMsg required")
  }
  sub := b.rdb.Subscribe(ctx, b.channel)
  if _, err := sub.Receive(ctx); err != nil {
    _ = sub.Close()
    return fmt.Errorf("redis subscribe: %w", err)
  }

  go func() {
    defer func() { _ = sub.Close() }()
    ch := sub.Channel()
    for {
      select {
      case <-ctx.Done():
        return
      case raw, ok := <-ch:
        if !ok {
          return
        }
        var msg sse.SSEMessage
        if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
          b.log.Warn("Dropping malformed bus message", "error", err)
          continue
        }
        onMsg(msg)
      }
    }
  }()
  return nil
}

func (b *sseBus) Close() error {
  return b.rdb.Close()
}
