// Package air defines the external AIR-evaluator contract: the boundary
// between this prover/verifier core and the (out-of-scope) AIR front-end
// that compiles a user program into a callable transition evaluator and
// static register tables, per spec.md §1 and §6.
package air

import (
	"math/big"

	"github.com/latticearc/stark/internal/stark/field"
)

// AIR is the compiled, callable contract a program must satisfy to be
// proved: a transition evaluator plus static register tables, over a fixed
// field, register count, constraint count, and step count.
type AIR interface {
	// FieldModulus is the prime defining the AIR's field.
	FieldModulus() *big.Int

	// RegisterCount is R, the trace width.
	RegisterCount() int

	// ConstraintCount is C, the number of transition-constraint polynomials.
	ConstraintCount() int

	// StepCount is S, the base trace length (a power of two, >= 8).
	StepCount() int

	// MaxConstraintDegree is d_max, the declared maximum constraint degree.
	MaxConstraintDegree() int

	// Advance computes row_{i+1} from row_i and the static values at step i.
	// Used by the prover's trace builder.
	Advance(row []field.Element, static []field.Element) ([]field.Element, error)

	// Evaluate computes the vector of C transition-constraint evaluations
	// given the current row, the next-in-base-domain row, and the static
	// register values at the evaluation point. Used by both prover (on the
	// extended domain) and verifier (locally, at queried points).
	Evaluate(current, next []field.Element, static []field.Element) ([]field.Element, error)

	// StaticRegisters describes every static register's closed-form table,
	// in register order.
	StaticRegisters() []StaticRegister

	// InitialState is T[:,0], the trace's starting row.
	InitialState() []field.Element
}

// Assertion claims T[Register][Step] = Value, per spec.md §3's data model.
type Assertion struct {
	Step     int
	Register int
	Value    field.Element
}

// Validate checks an assertion's indices against an AIR's shape.
func (a Assertion) Validate(program AIR) error {
	if a.Step < 0 || a.Step >= program.StepCount() {
		return &ShapeError{Kind: "step", Value: a.Step, Bound: program.StepCount()}
	}
	if a.Register < 0 || a.Register >= program.RegisterCount() {
		return &ShapeError{Kind: "register", Value: a.Register, Bound: program.RegisterCount()}
	}
	return nil
}

// ShapeError reports an assertion or input referencing an out-of-range
// register or step, per spec.md §7's InputShapeError.
type ShapeError struct {
	Kind  string
	Value int
	Bound int
}

func (e *ShapeError) Error() string {
	return "air: " + e.Kind + " " + itoa(e.Value) + " out of range [0, " + itoa(e.Bound) + ")"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
