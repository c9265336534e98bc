// Package lde interpolates each trace column into a polynomial over the
// base subdomain and evaluates it on the extended evaluation domain, per
// spec.md §4.2.
package lde

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/latticearc/stark/internal/stark/field"
)

// MinBaseLength is the smallest allowed base trace length (spec.md §4.2).
const MinBaseLength = 8

// Extended holds, per register column, the interpolating polynomial and its
// evaluations over the extended domain.
type Extended struct {
	BaseDomain     *field.Domain
	EvalDomain     *field.Domain
	Polynomials    []field.Polynomial // one per register, degree < S
	Evaluations    field.Matrix       // Evaluations[r] has EvalDomain.Size() entries
}

// Build interpolates and extends every column of trace. trace has R rows of
// S entries each (S a power of two, >= MinBaseLength). extensionFactor E
// must be a power of two and E*S must not exceed maxDomainSize.
func Build(f *field.Field, trace field.Matrix, extensionFactor, maxDomainSize int) (*Extended, error) {
	if len(trace) == 0 {
		return nil, fmt.Errorf("lde: empty trace")
	}
	S := len(trace[0])
	if S < MinBaseLength || S&(S-1) != 0 {
		return nil, fmt.Errorf("lde: base length %d must be a power of two >= %d", S, MinBaseLength)
	}
	if extensionFactor <= 0 || extensionFactor&(extensionFactor-1) != 0 {
		return nil, fmt.Errorf("lde: extension factor %d must be a power of two", extensionFactor)
	}
	N := S * extensionFactor
	if N > maxDomainSize {
		return nil, fmt.Errorf("lde: evaluation domain size %d exceeds configured maximum %d", N, maxDomainSize)
	}

	baseDomain, err := field.NewDomain(f, S)
	if err != nil {
		return nil, fmt.Errorf("lde: base domain: %w", err)
	}
	evalDomain, err := field.NewDomain(f, N)
	if err != nil {
		return nil, fmt.Errorf("lde: evaluation domain: %w", err)
	}

	R := len(trace)
	polys := make([]field.Polynomial, R)
	evals := make(field.Matrix, R)

	g := new(errgroup.Group)
	for r := 0; r < R; r++ {
		r := r
		g.Go(func() error {
			poly, err := field.Interpolate(f, baseDomain.Points(), trace[r])
			if err != nil {
				return fmt.Errorf("lde: interpolating register %d: %w", r, err)
			}
			polys[r] = poly
			evals[r] = poly.EvalDomain(evalDomain.Points())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Extended{BaseDomain: baseDomain, EvalDomain: evalDomain, Polynomials: polys, Evaluations: evals}, nil
}

// CheckSubsampling verifies that the extended evaluations at stride E
// reproduce the original base trace, per spec.md §8's quantified invariant.
func (e *Extended) CheckSubsampling(trace field.Matrix, extensionFactor int) error {
	S := e.BaseDomain.Size()
	for r := range trace {
		for i := 0; i < S; i++ {
			got := e.Evaluations[r][i*extensionFactor]
			if !got.Equal(trace[r][i]) {
				return fmt.Errorf("lde: subsampling mismatch at register %d step %d", r, i)
			}
		}
	}
	return nil
}
