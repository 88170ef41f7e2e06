package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DetailCache 缓存 unit 明细视图（cache-aside）。
// 同一份 JSON 写在 unit id 和序列号两个键下，查哪个都命中；
// 任何触及该 unit 的写路径提交后调 InvalidateUnit。
type DetailCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDetailCache(rdb *redis.Client, ttl time.Duration) *DetailCache {
	return &DetailCache{rdb: rdb, ttl: ttl}
}

func idKey(unitID string) string     { return fmt.Sprintf("tc:detail:id:%s", unitID) }
func serialKey(serial string) string { return fmt.Sprintf("tc:detail:sn:%s", serial) }

func (c *DetailCache) enabled() bool { return c != nil && c.rdb != nil }

// Get 用 id 或序列号查；未命中或 redis 不可用都按 miss 处理。
func (c *DetailCache) Get(ctx context.Context, key string, out any) bool {
	if !c.enabled() {
		return false
	}
	b, err := c.rdb.Get(ctx, idKey(key)).Bytes()
	if err != nil {
		b, err = c.rdb.Get(ctx, serialKey(key)).Bytes()
	}
	if err != nil {
		return false
	}
	return json.Unmarshal(b, out) == nil
}

func (c *DetailCache) Set(ctx context.Context, unitID, serial string, v any) {
	if !c.enabled() {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, idKey(unitID), b, c.ttl)
	pipe.Set(ctx, serialKey(serial), b, c.ttl)
	_, _ = pipe.Exec(ctx)
}

func (c *DetailCache) InvalidateUnit(ctx context.Context, unitID, serial string) {
	if !c.enabled() {
		return
	}
	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, idKey(unitID))
	if serial != "" {
		pipe.Del(ctx, serialKey(serial))
	}
	_, _ = pipe.Exec(ctx)
}
