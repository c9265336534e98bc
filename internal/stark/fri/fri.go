// Package fri implements the FRI (Fast Reed-Solomon Interactive Oracle
// Proof) low-degree test: recursive folding by a configurable power-of-two
// folding factor f (commonly 4, generalizing the teacher's f=2 binary fold),
// per-layer Merkle commitment, and a verbatim remainder once the layer size
// drops to the configured threshold, per spec.md §4.5.
package fri

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/latticearc/stark/internal/stark/field"
	"github.com/latticearc/stark/internal/stark/hashfn"
	"github.com/latticearc/stark/internal/stark/merkle"
	"github.com/latticearc/stark/internal/stark/transcript"
)

// Layer is one folding round: the evaluations at this round's domain size,
// the domain itself, and the Merkle tree committing to those evaluations.
type Layer struct {
	Domain      *field.Domain
	Evaluations field.Vector
	Tree        *merkle.Tree
	Challenge   field.Element // the folding challenge that produced the NEXT layer
}

// Result is the prover-side state for one FRI run: every non-remainder
// layer (with its tree, kept so the query engine can open it later) plus
// the verbatim remainder evaluations and the domain they live on.
type Result struct {
	Layers          []Layer
	Remainder       field.Vector
	RemainderDomain *field.Domain
	FoldingFactor   int
}

// Roots returns the Merkle root of every non-remainder layer, in fold order.
func (r *Result) Roots() [][]byte {
	out := make([][]byte, len(r.Layers))
	for i, l := range r.Layers {
		out[i] = l.Tree.Root()
	}
	return out
}

// Prove folds codeword (evaluations of the composition polynomial over
// domain) down to the remainder threshold, committing each layer's
// evaluations and drawing a folding challenge from the transcript after
// every commit.
func Prove(f *field.Field, codeword field.Vector, domain *field.Domain, foldingFactor, remainderThreshold int, alg hashfn.Algorithm, t *transcript.Transcript) (*Result, error) {
	if foldingFactor <= 0 || foldingFactor&(foldingFactor-1) != 0 {
		return nil, fmt.Errorf("fri: folding factor %d must be a power of two", foldingFactor)
	}
	if len(codeword) != domain.Size() {
		return nil, fmt.Errorf("fri: codeword length %d != domain size %d", len(codeword), domain.Size())
	}

	var layers []Layer
	currentEvals := codeword
	currentDomain := domain

	for currentDomain.Size() > remainderThreshold {
		tree, err := commitLayer(alg, currentEvals)
		if err != nil {
			return nil, fmt.Errorf("fri: committing layer of size %d: %w", currentDomain.Size(), err)
		}
		if err := t.Absorb(tree.Root()); err != nil {
			return nil, fmt.Errorf("fri: absorbing layer root: %w", err)
		}
		challenge, err := t.ChallengeField(f)
		if err != nil {
			return nil, fmt.Errorf("fri: drawing folding challenge: %w", err)
		}

		nextDomain, err := currentDomain.Subsample(foldingFactor)
		if err != nil {
			return nil, fmt.Errorf("fri: computing next layer domain: %w", err)
		}
		nextEvals, err := fold(f, currentDomain, currentEvals, foldingFactor, challenge)
		if err != nil {
			return nil, fmt.Errorf("fri: folding: %w", err)
		}

		layers = append(layers, Layer{Domain: currentDomain, Evaluations: currentEvals, Tree: tree, Challenge: challenge})
		currentDomain = nextDomain
		currentEvals = nextEvals
	}

	return &Result{Layers: layers, Remainder: currentEvals, RemainderDomain: currentDomain, FoldingFactor: foldingFactor}, nil
}

func commitLayer(alg hashfn.Algorithm, evals field.Vector) (*merkle.Tree, error) {
	leaves := make([][]byte, len(evals))
	g := new(errgroup.Group)
	const shard = 512
	for start := 0; start < len(evals); start += shard {
		start := start
		end := start + shard
		if end > len(evals) {
			end = len(evals)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				leaves[i] = evals[i].Bytes()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return merkle.New(alg, leaves)
}

// fold computes the next FRI layer from the current one: for each coset of
// `factor` points sharing the same x^factor value, interpolate the
// degree-(factor-1) polynomial through those points and evaluate it at
// challenge.
func fold(f *field.Field, domain *field.Domain, evals field.Vector, factor int, challenge field.Element) (field.Vector, error) {
	n := domain.Size()
	groupSize := n / factor
	out := make(field.Vector, groupSize)

	for i := 0; i < groupSize; i++ {
		xs := make(field.Vector, factor)
		ys := make(field.Vector, factor)
		for j := 0; j < factor; j++ {
			idx := i + j*groupSize
			xs[j] = domain.At(idx)
			ys[j] = evals[idx]
		}
		poly, err := field.Interpolate(f, xs, ys)
		if err != nil {
			return nil, fmt.Errorf("interpolating coset %d: %w", i, err)
		}
		out[i] = poly.Eval(challenge)
	}
	return out, nil
}

// CosetIndices returns the domain indices making up the coset containing
// index i at layer size n, folding factor f.
func CosetIndices(index, n, factor int) []int {
	groupSize := n / factor
	base := index % groupSize
	out := make([]int, factor)
	for j := 0; j < factor; j++ {
		out[j] = base + j*groupSize
	}
	return out
}
