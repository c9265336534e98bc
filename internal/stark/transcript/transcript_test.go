package transcript

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticearc/stark/internal/stark/field"
	"github.com/latticearc/stark/internal/stark/hashfn"
)

func testField(t *testing.T) *field.Field {
	t.Helper()
	f, err := field.NewFromUint64(2013265921)
	require.NoError(t, err)
	return f
}

func TestDeterministic(t *testing.T) {
	f := testField(t)
	mkChallenges := func() []field.Element {
		tr, err := New(hashfn.SHA256, []byte("seed"))
		require.NoError(t, err)
		require.NoError(t, tr.Absorb([]byte("root-a")))
		vals, err := tr.ChallengeFields(f, 4)
		require.NoError(t, err)
		return vals
	}
	a := mkChallenges()
	b := mkChallenges()
	for i := range a {
		require.True(t, a[i].Equal(b[i]))
	}
}

func TestDifferentAbsorbOrderDiverges(t *testing.T) {
	f := testField(t)
	tr1, err := New(hashfn.SHA256, []byte("seed"))
	require.NoError(t, err)
	require.NoError(t, tr1.Absorb([]byte("trace-root")))
	require.NoError(t, tr1.Absorb([]byte("composition-root")))
	c1, err := tr1.ChallengeField(f)
	require.NoError(t, err)

	tr2, err := New(hashfn.SHA256, []byte("seed"))
	require.NoError(t, err)
	require.NoError(t, tr2.Absorb([]byte("composition-root")))
	require.NoError(t, tr2.Absorb([]byte("trace-root")))
	c2, err := tr2.ChallengeField(f)
	require.NoError(t, err)

	require.False(t, c1.Equal(c2))
}

func TestChallengeIndexSetExcludesStrideAndDedups(t *testing.T) {
	tr, err := New(hashfn.SHA256, []byte("seed"))
	require.NoError(t, err)

	idx, err := tr.ChallengeIndexSet(64, 20, 8)
	require.NoError(t, err)
	require.Len(t, idx, 20)

	seen := map[int]bool{}
	for _, i := range idx {
		require.False(t, seen[i], "duplicate index %d", i)
		seen[i] = true
		require.NotZero(t, i%8, "index %d is a multiple of stride", i)
	}
}
