package bootstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdbootconf/internal/bootstore"
	"sdbootconf/testutil"
)

func TestGeneratedTree_RoundTrip(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	s := bootstore.New(root)
	gen := testutil.NewEntryGenerator(2024)
	require.NoError(t, gen.Populate(s, 25))

	_, err := s.WriteAll(ctx, bootstore.WriteOptions{})
	require.NoError(t, err)

	loaded, err := bootstore.Load(ctx, root)
	require.NoError(t, err)
	assert.ElementsMatch(t, gen.IDs(), loaded.IDs())

	for _, want := range s.Entries() {
		got, ok := loaded.Entry(want.ID)
		require.True(t, ok, want.ID)
		assert.True(t, got.Equal(want), "entry %s:\nwant:\n%s\ngot:\n%s", want.ID, want, got)
	}

	diffs, err := loaded.Diff(ctx, bootstore.WriteOptions{Prune: true})
	require.NoError(t, err)
	for _, d := range diffs {
		assert.False(t, d.Changed(), d.Path)
	}
}
