package searchstats

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-product-search/internal/redisx"
)

// RedisDeduper remembers processed event ids for redisx.TTLDedup.
type RedisDeduper struct {
	R       *redis.Client
	Service string
}

func (d *RedisDeduper) Claim(ctx context.Context, eventID string) (bool, error) {
	return redisx.Claim(ctx, d.R, fmt.Sprintf(redisx.KeyDedup, d.Service, eventID), redisx.TTLDedup)
}
