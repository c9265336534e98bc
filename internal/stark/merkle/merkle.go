// Package merkle builds a binary Merkle tree over a fixed-size leaf list and
// produces/verifies batch openings for arbitrary index sets, grounded on the
// teacher's single-index core.MerkleTree but generalized to the classic
// batch-proof shape the query engine needs (one minimal sibling set shared
// across many queried indices, rather than one path per index).
package merkle

import (
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/latticearc/stark/internal/stark/hashfn"
)

// Tree is a binary Merkle tree over hashed leaves.
type Tree struct {
	alg    hashfn.Algorithm
	leaves [][]byte // hashed leaves
	levels [][][]byte
	depth  int
}

// New builds a tree over raw leaf byte-strings (pre-hash). len(data) must be
// a power of two. Leaf hashing runs as one fork-join region (ambient
// parallelism per spec.md §5).
func New(alg hashfn.Algorithm, data [][]byte) (*Tree, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("merkle: cannot build tree over zero leaves")
	}
	if len(data)&(len(data)-1) != 0 {
		return nil, fmt.Errorf("merkle: leaf count %d must be a power of two", len(data))
	}

	leaves := make([][]byte, len(data))
	g := new(errgroup.Group)
	const shardSize = 256
	for start := 0; start < len(data); start += shardSize {
		start := start
		end := start + shardSize
		if end > len(data) {
			end = len(data)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				h, err := hashfn.Digest(alg, data[i])
				if err != nil {
					return err
				}
				leaves[i] = h
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("merkle: hashing leaves: %w", err)
	}

	levels := [][][]byte{leaves}
	current := leaves
	depth := 0
	for len(current) > 1 {
		next := make([][]byte, len(current)/2)
		for i := 0; i < len(current); i += 2 {
			h, err := hashfn.Digest(alg, current[i], current[i+1])
			if err != nil {
				return nil, err
			}
			next[i/2] = h
		}
		levels = append(levels, next)
		current = next
		depth++
	}

	return &Tree{alg: alg, leaves: leaves, levels: levels, depth: depth}, nil
}

// Root returns the tree's root digest.
func (t *Tree) Root() []byte { return t.levels[len(t.levels)-1][0] }

// Depth returns the tree height (log2 of leaf count).
func (t *Tree) Depth() int { return t.depth }

// NumLeaves returns the number of leaves.
func (t *Tree) NumLeaves() int { return len(t.leaves) }

// BatchOpening is the minimal node set needed to verify a set of queried
// leaves against the root, shared across all queried indices.
type BatchOpening struct {
	Indices     []int
	Values      [][]byte // raw (pre-hash) leaf bytes at Indices, caller-supplied
	Nodes       [][]byte // minimal sibling digests, concatenated level by level
	LevelCounts []int    // Nodes[i] count contributed by each tree level, for column framing
	Depth       int
}

// BatchOpen returns the opened raw leaves (from data, as supplied to New)
// and the minimal sibling-node set required to verify all of them.
func (t *Tree) BatchOpen(indices []int, data [][]byte) (*BatchOpening, error) {
	if len(data) != len(t.leaves) {
		return nil, fmt.Errorf("merkle: BatchOpen: data length %d != leaf count %d", len(data), len(t.leaves))
	}
	values := make([][]byte, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(t.leaves) {
			return nil, fmt.Errorf("merkle: BatchOpen: index %d out of range [0, %d)", idx, len(t.leaves))
		}
		values[i] = data[idx]
	}

	needed := map[int]bool{}
	for _, idx := range indices {
		needed[idx] = true
	}

	var nodes [][]byte
	var levelCounts []int
	currentNeeded := needed
	for level := 0; level < len(t.levels)-1; level++ {
		currentLevel := t.levels[level]
		nextNeeded := map[int]bool{}
		siblingsThisLevel := map[int]bool{}
		for idx := range currentNeeded {
			sibling := idx ^ 1
			if !currentNeeded[sibling] {
				siblingsThisLevel[sibling] = true
			}
			nextNeeded[idx/2] = true
		}
		siblingIdxs := make([]int, 0, len(siblingsThisLevel))
		for idx := range siblingsThisLevel {
			siblingIdxs = append(siblingIdxs, idx)
		}
		sort.Ints(siblingIdxs)
		for _, idx := range siblingIdxs {
			nodes = append(nodes, currentLevel[idx])
		}
		levelCounts = append(levelCounts, len(siblingIdxs))
		currentNeeded = nextNeeded
	}

	return &BatchOpening{Indices: indices, Values: values, Nodes: nodes, LevelCounts: levelCounts, Depth: t.depth}, nil
}

// Verify checks a batch opening against a root. Each raw value is hashed
// with alg (as New hashes leaves) before authentication.
func Verify(alg hashfn.Algorithm, root []byte, opening *BatchOpening) (bool, error) {
	if len(opening.Indices) != len(opening.Values) {
		return false, fmt.Errorf("merkle: verify: indices/values length mismatch")
	}

	hashed := make(map[int][]byte, len(opening.Indices))
	for i, idx := range opening.Indices {
		h, err := hashfn.Digest(alg, opening.Values[i])
		if err != nil {
			return false, err
		}
		hashed[idx] = h
	}

	nodeCursor := 0
	current := hashed
	levelSize := 1 << opening.Depth
	for level := 0; level < opening.Depth; level++ {
		needed := map[int]bool{}
		for idx := range current {
			needed[idx] = true
		}
		siblingsThisLevel := map[int]bool{}
		for idx := range needed {
			sibling := idx ^ 1
			if !needed[sibling] {
				siblingsThisLevel[sibling] = true
			}
		}
		siblingIdxs := make([]int, 0, len(siblingsThisLevel))
		for idx := range siblingsThisLevel {
			siblingIdxs = append(siblingIdxs, idx)
		}
		sort.Ints(siblingIdxs)
		siblingValue := make(map[int][]byte, len(siblingIdxs))
		for _, idx := range siblingIdxs {
			if nodeCursor >= len(opening.Nodes) {
				return false, fmt.Errorf("merkle: verify: ran out of sibling nodes")
			}
			siblingValue[idx] = opening.Nodes[nodeCursor]
			nodeCursor++
		}

		next := map[int][]byte{}
		seenParents := map[int]bool{}
		for idx, h := range current {
			parent := idx / 2
			if seenParents[parent] {
				continue
			}
			seenParents[parent] = true
			var left, right []byte
			if idx%2 == 0 {
				left = h
				if sib, ok := current[idx+1]; ok {
					right = sib
				} else {
					right = siblingValue[idx+1]
				}
			} else {
				right = h
				if sib, ok := current[idx-1]; ok {
					left = sib
				} else {
					left = siblingValue[idx-1]
				}
			}
			if left == nil || right == nil {
				return false, fmt.Errorf("merkle: verify: missing sibling at level %d", level)
			}
			parentHash, err := hashfn.Digest(alg, left, right)
			if err != nil {
				return false, err
			}
			next[parent] = parentHash
		}
		current = next
		levelSize /= 2
		_ = levelSize
	}

	if len(current) != 1 {
		return false, fmt.Errorf("merkle: verify: did not converge to a single root")
	}
	for _, h := range current {
		return bytesEqual(h, root), nil
	}
	return false, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
