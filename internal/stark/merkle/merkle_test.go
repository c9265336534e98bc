package merkle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticearc/stark/internal/stark/hashfn"
)

func leaves(n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = []byte{byte(i), byte(i >> 8)}
	}
	return out
}

func TestBatchOpenVerifyRoundTrip(t *testing.T) {
	data := leaves(16)
	tree, err := New(hashfn.SHA256, data)
	require.NoError(t, err)
	require.Equal(t, 4, tree.Depth())

	indices := []int{1, 3, 7, 15}
	opening, err := tree.BatchOpen(indices, data)
	require.NoError(t, err)
	require.Len(t, opening.LevelCounts, tree.Depth())

	ok, err := Verify(hashfn.SHA256, tree.Root(), opening)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyRejectsTamperedValue(t *testing.T) {
	data := leaves(8)
	tree, err := New(hashfn.SHA256, data)
	require.NoError(t, err)

	opening, err := tree.BatchOpen([]int{2, 5}, data)
	require.NoError(t, err)
	opening.Values[0] = []byte{0xFF, 0xFF}

	ok, err := Verify(hashfn.SHA256, tree.Root(), opening)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyRejectsTamperedSibling(t *testing.T) {
	data := leaves(8)
	tree, err := New(hashfn.SHA256, data)
	require.NoError(t, err)

	opening, err := tree.BatchOpen([]int{0}, data)
	require.NoError(t, err)
	require.NotEmpty(t, opening.Nodes)
	opening.Nodes[0] = append([]byte(nil), opening.Nodes[0]...)
	opening.Nodes[0][0] ^= 0xFF

	ok, err := Verify(hashfn.SHA256, tree.Root(), opening)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNewRejectsNonPowerOfTwo(t *testing.T) {
	_, err := New(hashfn.SHA256, leaves(3))
	require.Error(t, err)
}
