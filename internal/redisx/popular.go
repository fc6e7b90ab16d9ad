package redisx

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

type TermCount struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// PopularTerms counts searched terms in a sorted set.
type PopularTerms struct{ R *redis.Client }

func (p *PopularTerms) Incr(ctx context.Context, term string) error {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	if err := p.R.ZIncrBy(ctx, KeyPopularTerms, 1, term).Err(); err != nil {
		return fmt.Errorf("count term: %w", err)
	}
	return nil
}

// Top returns the n most searched terms, highest count first.
func (p *PopularTerms) Top(ctx context.Context, n int) ([]TermCount, error) {
	if n <= 0 {
		return []TermCount{}, nil
	}
	zs, err := p.R.ZRevRangeWithScores(ctx, KeyPopularTerms, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("top terms: %w", err)
	}
	out := make([]TermCount, 0, len(zs))
	for _, z := range zs {
		term, _ := z.Member.(string)
		out = append(out, TermCount{Term: term, Count: int64(z.Score)})
	}
	return out, nil
}
