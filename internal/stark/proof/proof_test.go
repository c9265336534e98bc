package proof

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticearc/stark/internal/stark/field"
	"github.com/latticearc/stark/internal/stark/hashfn"
	"github.com/latticearc/stark/internal/stark/merkle"
)

func leafBytes(n, size int, f *field.Field) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = f.FromUint64(uint64(i + 1)).Bytes()
		if len(out[i]) != size {
			panic("unexpected leaf size")
		}
	}
	return out
}

func multiLeafBytes(n, registerCount int, f *field.Field) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		var buf []byte
		for r := 0; r < registerCount; r++ {
			buf = append(buf, f.FromUint64(uint64(i*registerCount+r+1)).Bytes()...)
		}
		out[i] = buf
	}
	return out
}

func TestSerializeParseRoundTrip(t *testing.T) {
	f, err := field.NewFromUint64(2013265921)
	require.NoError(t, err)

	const (
		registerCount   = 2
		evalDomainSize  = 16
		foldingFactor   = 4
		remainderThresh = 8
		layerCount      = 1
	)

	traceData := multiLeafBytes(evalDomainSize, registerCount, f)
	traceTree, err := merkle.New(hashfn.SHA256, traceData)
	require.NoError(t, err)
	traceOpening, err := traceTree.BatchOpen([]int{0, 5, 9}, traceData)
	require.NoError(t, err)

	compData := leafBytes(evalDomainSize, f.ByteSize(), f)
	compTree, err := merkle.New(hashfn.SHA256, compData)
	require.NoError(t, err)
	compOpening, err := compTree.BatchOpen([]int{0, 5, 9}, compData)
	require.NoError(t, err)

	layerData := leafBytes(evalDomainSize, f.ByteSize(), f)
	layerTree, err := merkle.New(hashfn.SHA256, layerData)
	require.NoError(t, err)
	layerOpening, err := layerTree.BatchOpen([]int{0, 1, 2, 3}, layerData)
	require.NoError(t, err)

	p := &Proof{
		TraceRoot:          traceTree.Root(),
		CompositionRoot:    compTree.Root(),
		TraceOpening:       traceOpening,
		CompositionOpening: compOpening,
		FRILayers: []FRILayerProof{
			{Root: layerTree.Root(), Opening: layerOpening},
		},
		Remainder: field.Vector{f.FromUint64(1), f.FromUint64(2), f.FromUint64(3), f.FromUint64(4)},
	}

	out, err := Serialize(p, f, registerCount)
	require.NoError(t, err)

	size, err := SizeOf(p, f, registerCount)
	require.NoError(t, err)
	require.Equal(t, len(out), size)

	parsed, err := Parse(out, f, registerCount, evalDomainSize, foldingFactor, remainderThresh)
	require.NoError(t, err)

	require.Equal(t, p.TraceRoot, parsed.TraceRoot)
	require.Equal(t, p.CompositionRoot, parsed.CompositionRoot)
	require.Equal(t, p.TraceOpening.Values, parsed.TraceOpening.Values)
	require.Equal(t, p.TraceOpening.Nodes, parsed.TraceOpening.Nodes)
	require.Equal(t, p.TraceOpening.LevelCounts, parsed.TraceOpening.LevelCounts)
	require.Len(t, parsed.FRILayers, layerCount)
	require.Equal(t, p.FRILayers[0].Root, parsed.FRILayers[0].Root)
	require.Len(t, parsed.Remainder, 4)
	for i := range p.Remainder {
		require.True(t, p.Remainder[i].Equal(parsed.Remainder[i]))
	}
}

func TestParseRejectsTrailingBytes(t *testing.T) {
	f, err := field.NewFromUint64(2013265921)
	require.NoError(t, err)

	const evalDomainSize = 16
	traceData := multiLeafBytes(evalDomainSize, 1, f)
	tree, err := merkle.New(hashfn.SHA256, traceData)
	require.NoError(t, err)
	opening, err := tree.BatchOpen([]int{0}, traceData)
	require.NoError(t, err)

	p := &Proof{
		TraceRoot:          tree.Root(),
		CompositionRoot:    tree.Root(),
		TraceOpening:       opening,
		CompositionOpening: opening,
		Remainder:          field.Vector{f.FromUint64(1)},
	}
	out, err := Serialize(p, f, 1)
	require.NoError(t, err)

	_, err = Parse(append(out, 0xAB), f, 1, evalDomainSize, 4, 8)
	require.Error(t, err)
}

func TestWriteCount256Convention(t *testing.T) {
	b, err := writeCount256(256)
	require.NoError(t, err)
	require.Equal(t, byte(0), b)
	require.Equal(t, 256, readCount256(b))

	b, err = writeCount256(1)
	require.NoError(t, err)
	require.Equal(t, byte(1), b)

	_, err = writeCount256(0)
	require.Error(t, err)
	_, err = writeCount256(257)
	require.Error(t, err)
}
