// Package trace executes an AIR's transition function step by step over the
// base trace length, producing the register-by-step matrix, per spec.md
// §4.1.
package trace

import (
	"fmt"

	"github.com/latticearc/stark/internal/stark/air"
	"github.com/latticearc/stark/internal/stark/field"
)

// ExecutionError reports a fatal failure of the transition function at a
// specific step, per spec.md §7's TraceExecutionError.
type ExecutionError struct {
	Step  int
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("trace: transition failed at step %d: %v", e.Step, e.Cause)
}
func (e *ExecutionError) Unwrap() error { return e.Cause }

// Build executes program.Advance for S-1 steps starting from the AIR's
// declared initial state, returning T[R][S] in register-major (column)
// form: Columns[r][i] = T[register r][step i].
func Build(program air.AIR) (field.Matrix, error) {
	S := program.StepCount()
	R := program.RegisterCount()
	statics := program.StaticRegisters()

	f, err := field.New(program.FieldModulus())
	if err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}
	zero := f.Zero()

	rows := make([][]field.Element, S)
	rows[0] = append([]field.Element(nil), program.InitialState()...)
	if len(rows[0]) != R {
		return nil, fmt.Errorf("trace: initial state width %d != register count %d", len(rows[0]), R)
	}

	for i := 0; i < S-1; i++ {
		staticRow := make([]field.Element, len(statics))
		for j, s := range statics {
			staticRow[j] = s.AtStep(zero, i)
		}
		next, err := program.Advance(rows[i], staticRow)
		if err != nil {
			return nil, &ExecutionError{Step: i, Cause: err}
		}
		if len(next) != R {
			return nil, &ExecutionError{Step: i, Cause: fmt.Errorf("advance returned width %d, want %d", len(next), R)}
		}
		rows[i+1] = next
	}

	columns := make(field.Matrix, R)
	for r := 0; r < R; r++ {
		col := make(field.Vector, S)
		for i := 0; i < S; i++ {
			col[i] = rows[i][r]
		}
		columns[r] = col
	}
	return columns, nil
}
