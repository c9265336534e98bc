// Package compose computes and combines transition- and boundary-constraint
// quotients into a single composition polynomial, per spec.md §4.3.
//
// Degree-bound convention (spec.md §9's third Open Question, resolved): the
// transition-quotient degree bound used both for degree equalization and for
// the FRI low-degree claim is d_max * S (not (d_max-1)*S + 1). This value is
// also absorbed into the transcript seed as DegreeBound so prover and
// verifier can never silently disagree on the convention.
package compose

import (
	"fmt"

	"github.com/latticearc/stark/internal/stark/air"
	"github.com/latticearc/stark/internal/stark/field"
	"github.com/latticearc/stark/internal/stark/lde"
	"github.com/latticearc/stark/internal/stark/transcript"
)

// DegreeBound returns the transition-quotient degree bound: d_max * S.
func DegreeBound(program air.AIR) int {
	return program.MaxConstraintDegree() * program.StepCount()
}

// Composer evaluates and combines constraint quotients over the extended
// domain.
type Composer struct {
	field           *field.Field
	program         air.AIR
	ext             *lde.Extended
	extensionFactor int
	assertions      []air.Assertion
	staticPolys     []field.Polynomial
}

// New builds a Composer from an already-extended trace.
func New(f *field.Field, program air.AIR, ext *lde.Extended, extensionFactor int, assertions []air.Assertion) (*Composer, error) {
	staticPolys, err := NewStaticPolys(f, program, ext.BaseDomain)
	if err != nil {
		return nil, err
	}
	return &Composer{field: f, program: program, ext: ext, extensionFactor: extensionFactor, assertions: assertions, staticPolys: staticPolys}, nil
}

// NewStaticPolys interpolates every static register's closed-form
// polynomial over baseDomain. Shared by the prover's Composer and the
// verifier, which has no full extended trace to build a Composer from but
// must recompute the identical static values at queried points.
func NewStaticPolys(f *field.Field, program air.AIR, baseDomain *field.Domain) ([]field.Polynomial, error) {
	statics := program.StaticRegisters()
	staticPolys := make([]field.Polynomial, len(statics))
	for i, s := range statics {
		poly, err := s.Interpolate(f, baseDomain.Points())
		if err != nil {
			return nil, fmt.Errorf("compose: static register %d: %w", i, err)
		}
		staticPolys[i] = poly
	}
	return staticPolys, nil
}

// StaticRow evaluates every static register polynomial at x.
func StaticRow(staticPolys []field.Polynomial, x field.Element) []field.Element {
	out := make([]field.Element, len(staticPolys))
	for j, p := range staticPolys {
		out[j] = p.Eval(x)
	}
	return out
}

// staticRow evaluates every static register at extended-domain index i.
func (c *Composer) staticRow(i int) []field.Element {
	return StaticRow(c.staticPolys, c.ext.EvalDomain.At(i))
}

// TransitionQuotients evaluates every transition constraint over the
// extended domain and returns its quotient-by-Z_S evaluations, one vector
// per constraint.
func (c *Composer) TransitionQuotients() ([]field.Vector, error) {
	S := c.program.StepCount()
	N := c.ext.EvalDomain.Size()
	E := c.extensionFactor
	C := c.program.ConstraintCount()
	R := c.program.RegisterCount()

	raw := make([]field.Vector, C)
	for k := 0; k < C; k++ {
		raw[k] = make(field.Vector, N)
	}

	for i := 0; i < N; i++ {
		current := make([]field.Element, R)
		next := make([]field.Element, R)
		for r := 0; r < R; r++ {
			current[r] = c.ext.Evaluations[r][i]
			next[r] = c.ext.Evaluations[r][(i+E)%N]
		}
		vals, err := c.program.Evaluate(current, next, c.staticRow(i))
		if err != nil {
			return nil, fmt.Errorf("compose: evaluating transition constraints at index %d: %w", i, err)
		}
		if len(vals) != C {
			return nil, fmt.Errorf("compose: AIR returned %d constraint values, want %d", len(vals), C)
		}
		for k := 0; k < C; k++ {
			raw[k][i] = vals[k]
		}
	}

	degBound := DegreeBound(c.program)
	quotients := make([]field.Vector, C)
	for k := 0; k < C; k++ {
		q, err := quotientByVanishing(c.field, c.ext.EvalDomain, raw[k], degBound, S)
		if err != nil {
			return nil, fmt.Errorf("compose: dividing transition constraint %d by Z_S: %w", k, err)
		}
		quotients[k] = q
	}
	return quotients, nil
}

// GroupAssertions partitions assertions by register and returns the
// distinct registers in ascending order, the deterministic order both the
// prover's BoundaryQuotients and the verifier's local recomputation rely on.
func GroupAssertions(assertions []air.Assertion) ([]int, map[int][]air.Assertion) {
	byRegister := map[int][]air.Assertion{}
	for _, a := range assertions {
		byRegister[a.Register] = append(byRegister[a.Register], a)
	}
	registers := make([]int, 0, len(byRegister))
	for r := range byRegister {
		registers = append(registers, r)
	}
	for i := 1; i < len(registers); i++ {
		for j := i; j > 0 && registers[j-1] > registers[j]; j-- {
			registers[j-1], registers[j] = registers[j], registers[j-1]
		}
	}
	return registers, byRegister
}

// TermCount returns C + the number of distinct asserted registers: the
// number of quotient terms the composition linearly combines.
func TermCount(program air.AIR, assertions []air.Assertion) int {
	registers, _ := GroupAssertions(assertions)
	return program.ConstraintCount() + len(registers)
}

// TermDegrees returns, in prover order (transition terms, then boundary
// terms), the raw degree of each quotient term.
func TermDegrees(program air.AIR, assertions []air.Assertion) []int {
	C := program.ConstraintCount()
	S := program.StepCount()
	degBound := DegreeBound(program)
	registers, _ := GroupAssertions(assertions)
	out := make([]int, C+len(registers))
	for i := 0; i < C; i++ {
		out[i] = degBound - S
	}
	for i := C; i < len(out); i++ {
		out[i] = S - 1
	}
	return out
}

// DrawWeights draws the 2*termCount transcript-field weights used to
// linearly combine quotient terms, matching the order Composer.Compose
// draws them in.
func DrawWeights(t *transcript.Transcript, f *field.Field, termCount int) ([]field.Element, error) {
	weights, err := t.ChallengeFields(f, 2*termCount)
	if err != nil {
		return nil, fmt.Errorf("compose: drawing composition weights: %w", err)
	}
	return weights, nil
}

// BoundaryPolynomial interpolates B_r(x) for one register's assertions and
// returns its root set Z_r's factors, shared between the prover's
// BoundaryQuotients and the verifier's local recomputation at queried
// points.
func BoundaryPolynomial(f *field.Field, evalDomain *field.Domain, extensionFactor int, asserts []air.Assertion) (field.Polynomial, []field.Element, error) {
	roots := make([]field.Element, len(asserts))
	xs := make(field.Vector, len(asserts))
	ys := make(field.Vector, len(asserts))
	for i, a := range asserts {
		root := evalDomain.At(a.Step * extensionFactor)
		roots[i] = root
		xs[i] = root
		ys[i] = a.Value
	}
	poly, err := field.Interpolate(f, xs, ys)
	if err != nil {
		return field.Polynomial{}, nil, fmt.Errorf("compose: interpolating boundary polynomial: %w", err)
	}
	return poly, roots, nil
}

// BoundaryQuotients builds, for every register carrying at least one
// assertion, the (T_r(x) - B_r(x)) / Z_r(x) evaluation vector over the
// extended domain.
func (c *Composer) BoundaryQuotients() ([]field.Vector, []int, error) {
	registers, byRegister := GroupAssertions(c.assertions)
	N := c.ext.EvalDomain.Size()
	out := make([]field.Vector, len(registers))

	for idx, r := range registers {
		asserts := byRegister[r]
		boundaryPoly, roots, err := BoundaryPolynomial(c.field, c.ext.EvalDomain, c.extensionFactor, asserts)
		if err != nil {
			return nil, nil, fmt.Errorf("compose: register %d: %w", r, err)
		}

		numerator := make(field.Vector, N)
		for i := 0; i < N; i++ {
			x := c.ext.EvalDomain.At(i)
			numerator[i] = c.ext.Evaluations[r][i].Sub(boundaryPoly.Eval(x))
		}

		degBound := c.ext.BaseDomain.Size() - 1
		q, err := quotientByRoots(c.field, c.ext.EvalDomain, numerator, degBound, roots)
		if err != nil {
			return nil, nil, fmt.Errorf("compose: dividing boundary quotient for register %d: %w", r, err)
		}
		out[idx] = q
	}
	return out, registers, nil
}

// Compose draws 2*(C+len(boundaryQuotients)) weights from the transcript and
// linearly combines every transition and boundary quotient (each combined
// with its degree-equalization term) into a single composition evaluation
// vector over the extended domain, per spec.md §4.3.
func (c *Composer) Compose(t *transcript.Transcript) (field.Vector, error) {
	transitionQ, err := c.TransitionQuotients()
	if err != nil {
		return nil, err
	}
	boundaryQ, _, err := c.BoundaryQuotients()
	if err != nil {
		return nil, err
	}

	terms := append(append([]field.Vector{}, transitionQ...), boundaryQ...)
	degBound := DegreeBound(c.program)
	termDegrees := TermDegrees(c.program, c.assertions)

	weights, err := DrawWeights(t, c.field, len(terms))
	if err != nil {
		return nil, err
	}

	N := c.ext.EvalDomain.Size()
	result := make(field.Vector, N)
	zero := c.field.Zero()
	for i := range result {
		result[i] = zero
	}

	for k, term := range terms {
		alpha := weights[2*k]
		beta := weights[2*k+1]
		shift := degBound - termDegrees[k]
		for i := 0; i < N; i++ {
			x := c.ext.EvalDomain.At(i)
			shifted := x.ExpInt(int64(shift)).Mul(term[i])
			result[i] = result[i].Add(alpha.Mul(term[i])).Add(beta.Mul(shifted))
		}
	}
	return result, nil
}

// quotientByVanishing computes numerator/Z_S evaluations over domain, by
// interpolating numerator from the first (degBound+1) domain points into a
// polynomial, dividing exactly by (x^subgroupSize - 1), and evaluating the
// quotient back over the full domain.
func quotientByVanishing(f *field.Field, domain *field.Domain, numerator field.Vector, degBound, subgroupSize int) (field.Vector, error) {
	sampleCount := degBound + 1
	if sampleCount > domain.Size() {
		sampleCount = domain.Size()
	}
	xs := domain.Points()[:sampleCount]
	ys := numerator[:sampleCount]
	poly, err := field.Interpolate(f, xs, ys)
	if err != nil {
		return nil, err
	}
	quotient, err := poly.DivideByVanishing(subgroupSize, f.One())
	if err != nil {
		return nil, err
	}
	return quotient.EvalDomain(domain.Points()), nil
}

// quotientByRoots computes numerator/prod(x-roots) evaluations over domain,
// analogous to quotientByVanishing but for a boundary polynomial's divisor.
func quotientByRoots(f *field.Field, domain *field.Domain, numerator field.Vector, degBound int, roots []field.Element) (field.Vector, error) {
	sampleCount := degBound + 1
	if sampleCount > domain.Size() {
		sampleCount = domain.Size()
	}
	xs := domain.Points()[:sampleCount]
	ys := numerator[:sampleCount]
	poly, err := field.Interpolate(f, xs, ys)
	if err != nil {
		return nil, err
	}
	quotient, err := poly.DivideByRoots(roots)
	if err != nil {
		return nil, err
	}
	return quotient.EvalDomain(domain.Points()), nil
}
