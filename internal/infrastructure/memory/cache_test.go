package memory_test

import (
	"context"
	"sort"
	"testing"

	"github.com/ironforge/gym-membership/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetSetDeleteKeys(t *testing.T) {
	ctx := context.Background()
	c := memory.NewCache()

	buf := []byte("v1")
	require.NoError(t, c.Set(ctx, "p_a", buf, 0))
	buf[0] = 'x'
	got, ok, err := c.Get(ctx, "p_a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1", string(got), "stored value is isolated from the caller's buffer")

	require.NoError(t, c.Set(ctx, "p_b", []byte("v2"), 0))
	require.NoError(t, c.Set(ctx, "q_c", []byte("v3"), 0))
	keys, err := c.Keys(ctx, "p_")
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"p_a", "p_b"}, keys)

	require.NoError(t, c.Delete(ctx, "p_a"))
	require.NoError(t, c.Delete(ctx, "p_a"))
	_, ok, _ = c.Get(ctx, "p_a")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())
}
