// Package query derives pseudorandom query positions from the transcript
// and opens trace, composition, and FRI-layer Merkle commitments at those
// positions, per spec.md §4.6.
package query

import (
	"fmt"
	"sort"

	"github.com/latticearc/stark/internal/stark/field"
	"github.com/latticearc/stark/internal/stark/fri"
	"github.com/latticearc/stark/internal/stark/lde"
	"github.com/latticearc/stark/internal/stark/merkle"
	"github.com/latticearc/stark/internal/stark/transcript"
)

// TraceLeaves builds the per-index leaf bytes for the extended trace Merkle
// commitment: the concatenation of one value from each register at domain
// index i, per spec.md §4.4.
func TraceLeaves(ext *lde.Extended) [][]byte {
	N := ext.EvalDomain.Size()
	R := len(ext.Evaluations)
	out := make([][]byte, N)
	for i := 0; i < N; i++ {
		var buf []byte
		for r := 0; r < R; r++ {
			buf = append(buf, ext.Evaluations[r][i].Bytes()...)
		}
		out[i] = buf
	}
	return out
}

// CompositionLeaves builds one leaf per composition evaluation.
func CompositionLeaves(composition field.Vector) [][]byte {
	out := make([][]byte, len(composition))
	for i, v := range composition {
		out[i] = v.Bytes()
	}
	return out
}

// FRILayerLeaves builds the leaf bytes for one FRI layer's evaluations.
func FRILayerLeaves(evals field.Vector) [][]byte {
	out := make([][]byte, len(evals))
	for i, v := range evals {
		out[i] = v.Bytes()
	}
	return out
}

// DeriveIndices draws `count` distinct query indices in [0, N), excluding
// multiples of excludeStride (the extension factor E), per spec.md §4.6.
func DeriveIndices(t *transcript.Transcript, N, count, excludeStride int) ([]int, error) {
	idx, err := t.ChallengeIndexSet(N, count, excludeStride)
	if err != nil {
		return nil, fmt.Errorf("query: deriving indices: %w", err)
	}
	return idx, nil
}

// WithNeighbors returns the sorted, deduplicated set of {i, (i+E) mod N} for
// every queried index i. Exported so the verifier can reconstruct the exact
// index order the prover's trace opening used (indices are not themselves
// serialized; both sides re-derive them identically).
func WithNeighbors(indices []int, stride, N int) []int {
	seen := map[int]bool{}
	for _, i := range indices {
		seen[i] = true
		seen[(i+stride)%N] = true
	}
	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// OpenTrace batch-opens the extended trace commitment at every queried
// index and its stride-E neighbor.
func OpenTrace(tree *merkle.Tree, leaves [][]byte, indices []int, stride, N int) (*merkle.BatchOpening, error) {
	all := WithNeighbors(indices, stride, N)
	return tree.BatchOpen(all, leaves)
}

// OpenComposition batch-opens the composition commitment at every queried
// index.
func OpenComposition(tree *merkle.Tree, leaves [][]byte, indices []int) (*merkle.BatchOpening, error) {
	return tree.BatchOpen(indices, leaves)
}

// LayerOpening is one FRI layer's batch opening for a query set, alongside
// the folded-position bookkeeping needed to re-derive each original query's
// coset at this layer.
type LayerOpening struct {
	LayerSize int
	Opening   *merkle.BatchOpening
}

// LayerQueryIndices returns the sorted, deduplicated set of coset member
// indices any of `indices` (the original FRI query indices, unfolded) needs
// opened at a layer of the given size, for a fold of the given factor.
// Exported so the verifier can reconstruct, without a fri.Result, the exact
// index set the prover's per-layer opening used.
func LayerQueryIndices(indices []int, layerSize, foldingFactor int) []int {
	needed := map[int]bool{}
	for _, i := range indices {
		folded := i % layerSize
		for _, c := range fri.CosetIndices(folded, layerSize, foldingFactor) {
			needed[c] = true
		}
	}
	all := make([]int, 0, len(needed))
	for i := range needed {
		all = append(all, i)
	}
	sort.Ints(all)
	return all
}

// OpenFRILayers opens every FRI layer's coset for each queried index,
// propagating the index through each fold (index mod N/f^l), per spec.md
// §4.6.
func OpenFRILayers(result *fri.Result, indices []int) ([]LayerOpening, error) {
	out := make([]LayerOpening, len(result.Layers))
	for l, layer := range result.Layers {
		n := layer.Domain.Size()
		all := LayerQueryIndices(indices, n, result.FoldingFactor)
		leaves := FRILayerLeaves(layer.Evaluations)
		opening, err := layer.Tree.BatchOpen(all, leaves)
		if err != nil {
			return nil, fmt.Errorf("query: opening FRI layer %d: %w", l, err)
		}
		out[l] = LayerOpening{LayerSize: n, Opening: opening}
	}
	return out, nil
}
