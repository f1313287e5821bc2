package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageCountsEntriesPerResource(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveMatchDict(ctx, "1", map[string]int{"id": 1}, SaveOptions{}))
	require.NoError(t, store.SaveMatchDict(ctx, "2", map[string]int{"id": 2}, SaveOptions{}))
	require.NoError(t, store.SaveMatchDicts(ctx, "17", "22/23", 0, []any{}, SaveOptions{}))
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "match_dict", ".cache-123"), []byte("partial"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "stray.json"), []byte("{}"), 0o644))

	usage, err := store.Usage(ctx)
	require.NoError(t, err)
	assert.Len(t, usage, 2)
	assert.Equal(t, 2, usage["match_dict"].Entries)
	assert.Positive(t, usage["match_dict"].Bytes)
	assert.Equal(t, 1, usage["match_dicts"].Entries)
}
