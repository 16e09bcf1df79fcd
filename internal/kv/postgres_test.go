package kv

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Needs DATABASE_URL pointing at a Postgres instance; skipped otherwise.
func TestPostgresRoundTrip(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := ConnectPostgres(ctx, url)
	require.NoError(t, err)
	defer p.Close()
	require.NoError(t, p.EnsureSchema(ctx))

	key := "friendgraph-test:" + uuid.NewString()
	defer p.pool.Exec(context.Background(), `DELETE FROM kv_store WHERE key=$1`, key)

	_, ok, err := p.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, p.Set(ctx, key, `["1"]`))
	require.NoError(t, p.Set(ctx, key, `["1","2"]`))
	v, ok, err := p.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["1","2"]`, v)
}
