package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/hearthplan/homeplan-backend/internal/logger"
	"github.com/hearthplan/homeplan-backend/internal/recurrence"
)

// OccurrenceCache holds a child's expanded occurrences so calendar-heavy
// capacity and conflict queries do not re-expand every imported event. It is
// strictly a performance layer: a miss (or no redis at all) means the caller
// recomputes, and every calendar write invalidates the child's key.
type OccurrenceCache interface {
	Get(ctx context.Context, childID uuid.UUID) ([]recurrence.Occurrence, bool)
	Set(ctx context.Context, childID uuid.UUID, occs []recurrence.Occurrence)
	Invalidate(ctx context.Context, childID uuid.UUID)
	Close() error
}

type occurrenceCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewOccurrenceCache(log *logger.Logger) (OccurrenceCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

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

	return &occurrenceCache{
		log: log.With("service", "OccurrenceCache"),
		rdb: rdb,
		ttl: 10 * time.Minute,
	}, nil
}

func cacheKey(childID uuid.UUID) string {
	return "occurrences:" + childID.String()
}

func (c *occurrenceCache) Get(ctx context.Context, childID uuid.UUID) ([]recurrence.Occurrence, bool) {
	if c == nil || c.rdb == nil || childID == uuid.Nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, cacheKey(childID)).Bytes()
	if err != nil {
		return nil, false
	}
	var occs []recurrence.Occurrence
	if err := json.Unmarshal(raw, &occs); err != nil {
		c.log.Warn("dropping undecodable occurrence cache entry", "child_id", childID, "error", err)
		_ = c.rdb.Del(ctx, cacheKey(childID)).Err()
		return nil, false
	}
	return occs, true
}

func (c *occurrenceCache) Set(ctx context.Context, childID uuid.UUID, occs []recurrence.Occurrence) {
	if c == nil || c.rdb == nil || childID == uuid.Nil {
		return
	}
	raw, err := json.Marshal(occs)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(childID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("occurrence cache set failed", "child_id", childID, "error", err)
	}
}

func (c *occurrenceCache) Invalidate(ctx context.Context, childID uuid.UUID) {
	if c == nil || c.rdb == nil || childID == uuid.Nil {
		return
	}
	if err := c.rdb.Del(ctx, cacheKey(childID)).Err(); err != nil {
		c.log.Warn("occurrence cache invalidation failed", "child_id", childID, "error", err)
	}
}

func (c *occurrenceCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
