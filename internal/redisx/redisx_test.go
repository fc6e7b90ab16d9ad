package redisx

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *Revocations, *PopularTerms) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := New(mr.Addr())
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, &Revocations{R: rdb}, &PopularTerms{R: rdb}
}

func TestRevocations(t *testing.T) {
	mr, rev, _ := newTestClient(t)
	ctx := context.Background()

	ok, err := rev.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, rev.Revoke(ctx, "abc", time.Now().Add(time.Minute)))
	ok, err = rev.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = rev.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, rev.Revoke(ctx, "old", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists("revoked:old"))
}

func TestPopularTerms(t *testing.T) {
	_, _, pop := newTestClient(t)
	ctx := context.Background()

	for _, term := range []string{"Phone", "phone ", "case", "phone", "cable", "case", "  "} {
		require.NoError(t, pop.Incr(ctx, term))
	}

	top, err := pop.Top(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []TermCount{{Term: "phone", Count: 3}, {Term: "case", Count: 2}}, top)

	none, err := pop.Top(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestClaim(t *testing.T) {
	mr, rev, _ := newTestClient(t)
	ctx := context.Background()

	won, err := Claim(ctx, rev.R, "dedup:stats:1", time.Hour)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = Claim(ctx, rev.R, "dedup:stats:1", time.Hour)
	require.NoError(t, err)
	assert.False(t, won)
	assert.True(t, mr.Exists("dedup:stats:1"))
}
