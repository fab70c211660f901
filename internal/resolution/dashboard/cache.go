package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

// Cache keeps serialized views in redis, one key per goal. All failures
// degrade to a rebuild, the cache never fails a read.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		rdb: rdb,
		ttl: ttl,
	}
}

func viewKey(goalID string) string {
	return fmt.Sprintf("dashboard::goal::%s", goalID)
}

func (c *Cache) GetView(ctx context.Context, goalID string) (*View, bool) {
	payload, err := c.rdb.Get(ctx, viewKey(goalID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warnf("dashboard cache get for goal [%s]: %s", goalID, err)
		}
		return nil, false
	}

	var view View
	if err := json.Unmarshal(payload, &view); err != nil {
		log.Warnf("dashboard cache unmarshal for goal [%s]: %s", goalID, err)
		return nil, false
	}
	return &view, true
}

func (c *Cache) SetView(ctx context.Context, goalID string, view *View) {
	payload, err := json.Marshal(view)
	if err != nil {
		log.Warnf("dashboard cache marshal for goal [%s]: %s", goalID, err)
		return
	}
	if err := c.rdb.Set(ctx, viewKey(goalID), payload, c.ttl).Err(); err != nil {
		log.Warnf("dashboard cache set for goal [%s]: %s", goalID, err)
	}
}

func (c *Cache) Invalidate(ctx context.Context, goalID string) {
	if err := c.rdb.Del(ctx, viewKey(goalID)).Err(); err != nil {
		log.Warnf("dashboard cache invalidate for goal [%s]: %s", goalID, err)
	}
}
