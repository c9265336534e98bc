package air

import (
	"fmt"

	"github.com/latticearc/stark/internal/stark/field"
)

// StaticKind is the closed tagged-union of static register shapes, per
// spec.md §9's "Polymorphism" redesign note ("a closed set ... model as a
// tagged sum and dispatch by match; avoid open-world inheritance").
type StaticKind int

const (
	// Cyclic repeats a fixed-length pattern of values across the trace.
	Cyclic StaticKind = iota
	// Stretched places a fixed-length pattern at spaced-out positions,
	// zero elsewhere (a "sparse" register).
	Stretched
	// Input interpolates a caller-supplied table of input values.
	Input
)

// StaticRegister is a deterministic function from step index to field
// element, closed-form evaluable at any point of the evaluation domain.
type StaticRegister struct {
	Kind    StaticKind
	Values  []field.Element // the base pattern (Cyclic/Stretched) or full input table (Input)
	Spacing int             // Stretched only: distance between nonzero positions
}

// NewCyclic builds a register that repeats values cyclically across the base
// trace (values[i % len(values)]).
func NewCyclic(values []field.Element) StaticRegister {
	return StaticRegister{Kind: Cyclic, Values: values}
}

// NewStretched builds a register whose nonzero positions are spaced `spacing`
// apart, cycling through values at each nonzero position.
func NewStretched(values []field.Element, spacing int) StaticRegister {
	return StaticRegister{Kind: Stretched, Values: values, Spacing: spacing}
}

// NewInput builds a register directly from a full per-step input table.
func NewInput(values []field.Element) StaticRegister {
	return StaticRegister{Kind: Input, Values: values}
}

// AtStep returns the static register's declared value at a base-domain step,
// used to validate polynomial agreement with the declared table.
func (s StaticRegister) AtStep(zero field.Element, step int) field.Element {
	switch s.Kind {
	case Cyclic:
		if len(s.Values) == 0 {
			return zero
		}
		return s.Values[step%len(s.Values)]
	case Stretched:
		if s.Spacing <= 0 || len(s.Values) == 0 {
			return zero
		}
		if step%s.Spacing != 0 {
			return zero
		}
		return s.Values[(step/s.Spacing)%len(s.Values)]
	case Input:
		if step < 0 || step >= len(s.Values) {
			return zero
		}
		return s.Values[step]
	default:
		return zero
	}
}

// Interpolate builds the closed-form polynomial for this static register
// over the given base domain, so it can be evaluated at any point of the
// extended evaluation domain.
func (s StaticRegister) Interpolate(f *field.Field, baseDomain field.Vector) (field.Polynomial, error) {
	values := make(field.Vector, len(baseDomain))
	zero := f.Zero()
	for i := range baseDomain {
		values[i] = s.AtStep(zero, i)
	}
	poly, err := field.Interpolate(f, baseDomain, values)
	if err != nil {
		return field.Polynomial{}, fmt.Errorf("air: interpolating static register: %w", err)
	}
	return poly, nil
}
