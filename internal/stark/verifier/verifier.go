// Package verifier reconstructs the transcript, re-derives every
// pseudorandom challenge, and checks Merkle openings, local constraint
// recomposition, and FRI fold/remainder consistency, per spec.md §4.8.
package verifier

import (
	"fmt"
	"time"

	"github.com/latticearc/stark/internal/stark/air"
	"github.com/latticearc/stark/internal/stark/compose"
	"github.com/latticearc/stark/internal/stark/config"
	"github.com/latticearc/stark/internal/stark/field"
	"github.com/latticearc/stark/internal/stark/fri"
	"github.com/latticearc/stark/internal/stark/merkle"
	"github.com/latticearc/stark/internal/stark/obslog"
	"github.com/latticearc/stark/internal/stark/proof"
	"github.com/latticearc/stark/internal/stark/query"
	"github.com/latticearc/stark/internal/stark/transcript"
)

// FailedCheck names the specific verification step that rejected a proof,
// per spec.md §7's VerificationError "discriminant naming the failed check".
type FailedCheck string

const (
	FramingError           FailedCheck = "FramingError"
	MerkleOpeningFailed    FailedCheck = "MerkleOpeningFailed"
	CompositionMismatch    FailedCheck = "CompositionMismatch"
	FriFoldInconsistent    FailedCheck = "FriFoldInconsistent"
	RemainderDegreeTooHigh FailedCheck = "RemainderDegreeTooHigh"
)

// VerificationError is the rejection type Verify returns when the proof
// fails a check; rejection is atomic, per spec.md §4.8 and §7. An invalid
// config, an out-of-range assertion, or a failing AIR evaluation is returned
// as its own error type instead.
type VerificationError struct {
	Check FailedCheck
	Msg   string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verifier: %s: %s", e.Check, e.Msg)
}

func rejectf(check FailedCheck, format string, args ...interface{}) error {
	return &VerificationError{Check: check, Msg: fmt.Sprintf(format, args...)}
}

// Verify parses and checks a serialized proof against an AIR program and
// assertion set, per spec.md §4.8's nine-step procedure. Any failing proof
// check returns a *VerificationError; config and assertion-shape errors are
// returned as *config.ConfigurationError and *air.ShapeError. A nil return
// means the proof is accepted.
func Verify(program air.AIR, assertions []air.Assertion, proofBytes []byte, cfg *config.Verifier) error {
	log := obslog.Logger().With().Int("registers", program.RegisterCount()).Logger()
	start := time.Now()

	if err := cfg.Validate(); err != nil {
		return err
	}
	for i, a := range assertions {
		if err := a.Validate(program); err != nil {
			return fmt.Errorf("verifier: assertion %d: %w", i, err)
		}
	}

	f, err := field.New(program.FieldModulus())
	if err != nil {
		return err
	}

	S := program.StepCount()
	E := cfg.ExtensionFactor
	N := S * E
	R := program.RegisterCount()

	// Step 1: parse the proof; reject malformed framing.
	p, err := proof.Parse(proofBytes, f, R, N, cfg.FRIFoldingFactor, cfg.FRIRemainderThreshold)
	if err != nil {
		return rejectf(FramingError, "%v", err)
	}

	// Step 2: seed transcript with domain separator and public parameters.
	seed, err := air.DomainSeparator(cfg.HashAlgorithm, program, E, assertions)
	if err != nil {
		return err
	}
	t, err := transcript.New(cfg.HashAlgorithm, seed)
	if err != nil {
		return err
	}

	// Step 3: absorb trace_root; derive composition weights (drawn in the
	// same position Composer.Compose draws them: immediately after the
	// trace root, before the composition root can even be computed, since
	// the composition evaluations the root commits to are this weighted
	// combination's output).
	if err := t.Absorb(p.TraceRoot); err != nil {
		return err
	}
	termCount := compose.TermCount(program, assertions)
	weights, err := compose.DrawWeights(t, f, termCount)
	if err != nil {
		return err
	}
	termDegrees := compose.TermDegrees(program, assertions)
	degBound := compose.DegreeBound(program)

	if err := t.Absorb(p.CompositionRoot); err != nil {
		return err
	}

	// Step 4: for each FRI layer root, absorb and derive the next folding
	// challenge.
	foldChallenges := make([]field.Element, len(p.FRILayers))
	for i, layer := range p.FRILayers {
		if err := t.Absorb(layer.Root); err != nil {
			return err
		}
		c, err := t.ChallengeField(f)
		if err != nil {
			return err
		}
		foldChallenges[i] = c
	}

	// Step 5: derive query indices identically to the prover.
	exeIndices, err := query.DeriveIndices(t, N, cfg.ExeQueryCount, E)
	if err != nil {
		return err
	}
	friIndices, err := query.DeriveIndices(t, N, cfg.FRIQueryCount, E)
	if err != nil {
		return err
	}

	// Step 6: verify Merkle openings on trace and composition commitments.
	traceOpening := p.TraceOpening
	traceOpening.Indices = query.WithNeighbors(exeIndices, E, N)
	ok, err := merkle.Verify(cfg.HashAlgorithm, p.TraceRoot, traceOpening)
	if err != nil {
		return rejectf(MerkleOpeningFailed, "trace: %v", err)
	}
	if !ok {
		return rejectf(MerkleOpeningFailed, "trace opening does not authenticate against trace_root")
	}

	compOpening := p.CompositionOpening
	compOpening.Indices = append([]int(nil), exeIndices...)
	ok, err = merkle.Verify(cfg.HashAlgorithm, p.CompositionRoot, compOpening)
	if err != nil {
		return rejectf(MerkleOpeningFailed, "composition: %v", err)
	}
	if !ok {
		return rejectf(MerkleOpeningFailed, "composition opening does not authenticate against composition_root")
	}

	layerSize := N
	for l, layer := range p.FRILayers {
		layer.Opening.Indices = query.LayerQueryIndices(friIndices, layerSize, cfg.FRIFoldingFactor)
		ok, err := merkle.Verify(cfg.HashAlgorithm, layer.Root, layer.Opening)
		if err != nil {
			return rejectf(MerkleOpeningFailed, "FRI layer %d: %v", l, err)
		}
		if !ok {
			return rejectf(MerkleOpeningFailed, "FRI layer %d opening does not authenticate against its root", l)
		}
		layerSize /= cfg.FRIFoldingFactor
	}

	// Step 7: recompute local constraint composition at each queried index
	// and compare against the opened composition value.
	baseDomain, err := field.NewDomain(f, S)
	if err != nil {
		return err
	}
	evalDomain, err := field.NewDomain(f, N)
	if err != nil {
		return err
	}
	staticPolys, err := compose.NewStaticPolys(f, program, baseDomain)
	if err != nil {
		return err
	}
	registers, byRegister := compose.GroupAssertions(assertions)
	boundaryPolys := make([]field.Polynomial, len(registers))
	boundaryRoots := make([][]field.Element, len(registers))
	for i, r := range registers {
		poly, roots, err := compose.BoundaryPolynomial(f, evalDomain, E, byRegister[r])
		if err != nil {
			return err
		}
		boundaryPolys[i] = poly
		boundaryRoots[i] = roots
	}

	traceValues := valueMap(traceOpening)
	compValues := valueMap(compOpening)
	elemSize := f.ByteSize()

	for _, i := range exeIndices {
		curBytes, ok := traceValues[i]
		if !ok {
			return rejectf(MerkleOpeningFailed, "missing opened trace row at index %d", i)
		}
		nextBytes, ok := traceValues[(i+E)%N]
		if !ok {
			return rejectf(MerkleOpeningFailed, "missing opened trace row at index %d", (i+E)%N)
		}
		current := decodeRow(f, curBytes, R, elemSize)
		next := decodeRow(f, nextBytes, R, elemSize)

		x := evalDomain.At(i)
		staticRow := compose.StaticRow(staticPolys, x)
		rawConstraints, err := program.Evaluate(current, next, staticRow)
		if err != nil {
			return fmt.Errorf("verifier: evaluating constraints at index %d: %w", i, err)
		}
		if len(rawConstraints) != program.ConstraintCount() {
			return rejectf(CompositionMismatch, "AIR returned %d constraint values, want %d", len(rawConstraints), program.ConstraintCount())
		}

		zs := x.ExpInt(int64(S)).Sub(f.One())
		zsInv, err := zs.Inv()
		if err != nil {
			return rejectf(CompositionMismatch, "queried index %d lies on the base-domain vanishing set", i)
		}

		result := f.Zero()
		for k, c := range rawConstraints {
			term := c.Mul(zsInv)
			shift := degBound - termDegrees[k]
			alpha := weights[2*k]
			beta := weights[2*k+1]
			shifted := x.ExpInt(int64(shift)).Mul(term)
			result = result.Add(alpha.Mul(term)).Add(beta.Mul(shifted))
		}

		C := program.ConstraintCount()
		for bi, r := range registers {
			zr := field.VanishingAtRoots(f, boundaryRoots[bi], x)
			zrInv, err := zr.Inv()
			if err != nil {
				return rejectf(CompositionMismatch, "queried index %d lies on register %d's boundary vanishing set", i, r)
			}
			term := current[r].Sub(boundaryPolys[bi].Eval(x)).Mul(zrInv)
			k := C + bi
			shift := degBound - termDegrees[k]
			alpha := weights[2*k]
			beta := weights[2*k+1]
			shifted := x.ExpInt(int64(shift)).Mul(term)
			result = result.Add(alpha.Mul(term)).Add(beta.Mul(shifted))
		}

		openedBytes, ok := compValues[i]
		if !ok {
			return rejectf(MerkleOpeningFailed, "missing opened composition value at index %d", i)
		}
		opened := f.FromBytes(openedBytes)
		if !result.Equal(opened) {
			return rejectf(CompositionMismatch, "recomputed composition differs from opened value at index %d", i)
		}
	}

	// Step 8: verify FRI fold consistency at every layer for every query.
	layerDomains := make([]*field.Domain, len(p.FRILayers)+1)
	layerDomains[0] = evalDomain
	for l := 1; l < len(layerDomains); l++ {
		d, err := layerDomains[l-1].Subsample(cfg.FRIFoldingFactor)
		if err != nil {
			return err
		}
		layerDomains[l] = d
	}

	layerValueMaps := make([]map[int][]byte, len(p.FRILayers))
	for l, layer := range p.FRILayers {
		layerValueMaps[l] = valueMap(layer.Opening)
	}

	for _, i := range friIndices {
		for l := range p.FRILayers {
			n := layerDomains[l].Size()
			folded := i % n
			coset := fri.CosetIndices(folded, n, cfg.FRIFoldingFactor)
			xs := make(field.Vector, len(coset))
			ys := make(field.Vector, len(coset))
			for ci, c := range coset {
				xs[ci] = layerDomains[l].At(c)
				b, ok := layerValueMaps[l][c]
				if !ok {
					return rejectf(MerkleOpeningFailed, "missing opened FRI layer %d value at index %d", l, c)
				}
				ys[ci] = f.FromBytes(b)
			}

			nextPos := i % layerDomains[l+1].Size()
			var nextVal field.Element
			if l+1 < len(p.FRILayers) {
				b, ok := layerValueMaps[l+1][nextPos]
				if !ok {
					return rejectf(MerkleOpeningFailed, "missing opened FRI layer %d value at index %d", l+1, nextPos)
				}
				nextVal = f.FromBytes(b)
			} else {
				if nextPos < 0 || nextPos >= len(p.Remainder) {
					return rejectf(FriFoldInconsistent, "remainder position %d out of range", nextPos)
				}
				nextVal = p.Remainder[nextPos]
			}

			okFold, err := fri.VerifyFold(f, xs, ys, foldChallenges[l], nextVal)
			if err != nil {
				return rejectf(FriFoldInconsistent, "layer %d: %v", l, err)
			}
			if !okFold {
				return rejectf(FriFoldInconsistent, "layer %d fold does not match next-layer value at query index %d", l, i)
			}
		}
	}

	// Step 9: confirm the remainder is a polynomial of bounded degree.
	remainderDomain := layerDomains[len(layerDomains)-1]
	okDegree, err := fri.VerifyRemainder(f, remainderDomain, p.Remainder, cfg.FRIRemainderThreshold, cfg.FRIFoldingFactor)
	if err != nil {
		return rejectf(RemainderDegreeTooHigh, "%v", err)
	}
	if !okDegree {
		return rejectf(RemainderDegreeTooHigh, "remainder degree exceeds T_rem/f")
	}

	log.Debug().Dur("took", time.Since(start)).Msg("verify complete")
	return nil
}

func valueMap(o *merkle.BatchOpening) map[int][]byte {
	m := make(map[int][]byte, len(o.Indices))
	for i, idx := range o.Indices {
		m[idx] = o.Values[i]
	}
	return m
}

func decodeRow(f *field.Field, row []byte, registerCount, elemSize int) []field.Element {
	out := make([]field.Element, registerCount)
	for r := 0; r < registerCount; r++ {
		out[r] = f.FromBytes(row[r*elemSize : (r+1)*elemSize])
	}
	return out
}
