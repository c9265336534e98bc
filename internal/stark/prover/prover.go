// Package prover orchestrates the full proving pipeline: trace, LDE, trace
// commit, composition, composition commit, FRI, query, serialize, per
// spec.md §2's "Dataflow (prove)".
package prover

import (
	"context"
	"fmt"
	"time"

	"github.com/latticearc/stark/internal/stark/air"
	"github.com/latticearc/stark/internal/stark/compose"
	"github.com/latticearc/stark/internal/stark/config"
	"github.com/latticearc/stark/internal/stark/field"
	"github.com/latticearc/stark/internal/stark/fri"
	"github.com/latticearc/stark/internal/stark/lde"
	"github.com/latticearc/stark/internal/stark/merkle"
	"github.com/latticearc/stark/internal/stark/obslog"
	"github.com/latticearc/stark/internal/stark/proof"
	"github.com/latticearc/stark/internal/stark/query"
	"github.com/latticearc/stark/internal/stark/trace"
	"github.com/latticearc/stark/internal/stark/transcript"
)

// Cancelled reports external cancellation observed at a phase boundary,
// per spec.md §5 and §7.
type Cancelled struct{ Phase string }

func (e *Cancelled) Error() string { return "prover: cancelled before phase " + e.Phase }

func checkCancelled(ctx context.Context, phase string) error {
	select {
	case <-ctx.Done():
		return &Cancelled{Phase: phase}
	default:
		return nil
	}
}

// Prove runs the complete pipeline and returns the serialized proof bytes.
// Cancellation is polled only between phase boundaries, per spec.md §5.
func Prove(ctx context.Context, program air.AIR, assertions []air.Assertion, cfg *config.Prover) ([]byte, error) {
	log := obslog.Logger().With().
		Int("registers", program.RegisterCount()).
		Int("steps", program.StepCount()).
		Str("hash", string(cfg.HashAlgorithm)).
		Logger()
	start := time.Now()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for i, a := range assertions {
		if err := a.Validate(program); err != nil {
			return nil, fmt.Errorf("prover: assertion %d: %w", i, err)
		}
	}

	f, err := field.New(program.FieldModulus())
	if err != nil {
		return nil, fmt.Errorf("prover: %w", err)
	}

	if err := checkCancelled(ctx, "trace"); err != nil {
		return nil, err
	}
	phaseStart := time.Now()
	columns, err := trace.Build(program)
	if err != nil {
		return nil, err
	}
	log.Debug().Dur("took", time.Since(phaseStart)).Msg("trace built")

	if err := checkCancelled(ctx, "lde"); err != nil {
		return nil, err
	}
	phaseStart = time.Now()
	maxDomainSize := cfg.MaxDomainSize
	if maxDomainSize == 0 {
		maxDomainSize = config.DefaultMaxDomainSize
	}
	ext, err := lde.Build(f, columns, cfg.ExtensionFactor, maxDomainSize)
	if err != nil {
		return nil, err
	}
	log.Debug().Dur("took", time.Since(phaseStart)).Int("domainSize", ext.EvalDomain.Size()).Msg("LDE built")

	if err := checkCancelled(ctx, "commit-trace"); err != nil {
		return nil, err
	}
	phaseStart = time.Now()
	traceLeaves := query.TraceLeaves(ext)
	traceTree, err := merkle.New(cfg.HashAlgorithm, traceLeaves)
	if err != nil {
		return nil, fmt.Errorf("prover: committing trace: %w", err)
	}
	log.Debug().Dur("took", time.Since(phaseStart)).Msg("trace committed")

	seed, err := air.DomainSeparator(cfg.HashAlgorithm, program, cfg.ExtensionFactor, assertions)
	if err != nil {
		return nil, fmt.Errorf("prover: deriving domain separator: %w", err)
	}
	t, err := transcript.New(cfg.HashAlgorithm, seed)
	if err != nil {
		return nil, fmt.Errorf("prover: %w", err)
	}
	if err := t.Absorb(traceTree.Root()); err != nil {
		return nil, fmt.Errorf("prover: absorbing trace root: %w", err)
	}

	if err := checkCancelled(ctx, "compose"); err != nil {
		return nil, err
	}
	phaseStart = time.Now()
	composer, err := compose.New(f, program, ext, cfg.ExtensionFactor, assertions)
	if err != nil {
		return nil, fmt.Errorf("prover: %w", err)
	}
	compositionEvals, err := composer.Compose(t)
	if err != nil {
		return nil, fmt.Errorf("prover: composing constraints: %w", err)
	}
	log.Debug().Dur("took", time.Since(phaseStart)).Msg("composition built")

	if err := checkCancelled(ctx, "commit-composition"); err != nil {
		return nil, err
	}
	compLeaves := query.CompositionLeaves(compositionEvals)
	compositionTree, err := merkle.New(cfg.HashAlgorithm, compLeaves)
	if err != nil {
		return nil, fmt.Errorf("prover: committing composition: %w", err)
	}
	if err := t.Absorb(compositionTree.Root()); err != nil {
		return nil, fmt.Errorf("prover: absorbing composition root: %w", err)
	}

	if err := checkCancelled(ctx, "fri"); err != nil {
		return nil, err
	}
	phaseStart = time.Now()
	friResult, err := fri.Prove(f, compositionEvals, ext.EvalDomain, cfg.FRIFoldingFactor, cfg.FRIRemainderThreshold, cfg.HashAlgorithm, t)
	if err != nil {
		return nil, fmt.Errorf("prover: FRI: %w", err)
	}
	log.Debug().Dur("took", time.Since(phaseStart)).Int("layers", len(friResult.Layers)).Msg("FRI folded")

	if err := checkCancelled(ctx, "query"); err != nil {
		return nil, err
	}
	N := ext.EvalDomain.Size()
	exeIndices, err := query.DeriveIndices(t, N, cfg.ExeQueryCount, cfg.ExtensionFactor)
	if err != nil {
		return nil, err
	}
	friIndices, err := query.DeriveIndices(t, N, cfg.FRIQueryCount, cfg.ExtensionFactor)
	if err != nil {
		return nil, err
	}

	traceOpening, err := query.OpenTrace(traceTree, traceLeaves, exeIndices, cfg.ExtensionFactor, N)
	if err != nil {
		return nil, fmt.Errorf("prover: opening trace queries: %w", err)
	}
	compositionOpening, err := query.OpenComposition(compositionTree, compLeaves, exeIndices)
	if err != nil {
		return nil, fmt.Errorf("prover: opening composition queries: %w", err)
	}
	layerOpenings, err := query.OpenFRILayers(friResult, friIndices)
	if err != nil {
		return nil, fmt.Errorf("prover: opening FRI layers: %w", err)
	}

	friLayers := make([]proof.FRILayerProof, len(friResult.Layers))
	for i, l := range friResult.Layers {
		friLayers[i] = proof.FRILayerProof{Root: l.Tree.Root(), Opening: layerOpenings[i].Opening}
	}

	p := &proof.Proof{
		TraceRoot:          traceTree.Root(),
		CompositionRoot:    compositionTree.Root(),
		TraceOpening:       traceOpening,
		CompositionOpening: compositionOpening,
		FRILayers:          friLayers,
		Remainder:          friResult.Remainder,
	}

	if err := checkCancelled(ctx, "serialize"); err != nil {
		return nil, err
	}
	out, err := proof.Serialize(p, f, program.RegisterCount())
	if err != nil {
		return nil, fmt.Errorf("prover: serializing: %w", err)
	}

	log.Info().Dur("took", time.Since(start)).Int("bytes", len(out)).Msg("prove complete")
	return out, nil
}
