package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Without Init every helper must degrade to a no-op instead of panicking,
// so the service layer keeps working when the cache is down.
func TestHelpersWithoutClient(t *testing.T) {
	require.NoError(t, BlacklistToken(context.Background(), "token", time.Minute))

	revoked, err := IsTokenBlacklisted(context.Background(), "token")
	require.NoError(t, err)
	assert.False(t, revoked)

	var doc struct{ Name string }
	hit, err := GetCachedDocument(context.Background(), "key", &doc)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, SetCachedDocument(context.Background(), "key", doc, time.Minute))
	InvalidateDocument(context.Background(), "key")
}
