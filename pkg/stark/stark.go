package stark

import (
	"context"
	"errors"

	"github.com/latticearc/stark/internal/stark/air"
	"github.com/latticearc/stark/internal/stark/config"
	"github.com/latticearc/stark/internal/stark/proof"
	"github.com/latticearc/stark/internal/stark/prover"
	"github.com/latticearc/stark/internal/stark/verifier"
)

// Prove builds a trace from program's initial state and transition
// function, extends it, composes its constraints, folds the result with
// FRI, and serializes a proof asserting every claim in assertions holds.
//
// Cancellation via ctx is observed only between phases (trace, LDE,
// commit, compose, FRI, query, serialize), per spec.md §5.
func Prove(ctx context.Context, program AIR, assertions []Assertion, cfg *ProverConfig) ([]byte, error) {
	if cfg == nil {
		cfg = DefaultProverConfig()
	}
	out, err := prover.Prove(ctx, program, assertions, cfg)
	if err != nil {
		return nil, translateProveErr(err)
	}
	return out, nil
}

// Verify parses proofBytes and checks every Merkle opening, recomputed
// composition value, FRI fold, and remainder-degree bound against program
// and assertions, returning nil only if every check passes.
func Verify(program AIR, assertions []Assertion, proofBytes []byte, cfg *VerifierConfig) error {
	if cfg == nil {
		cfg = DefaultVerifierConfig()
	}
	if err := verifier.Verify(program, assertions, proofBytes, cfg); err != nil {
		return translateVerifyErr(err)
	}
	return nil
}

func translateProveErr(err error) error {
	var cfgErr *config.ConfigurationError
	if errors.As(err, &cfgErr) {
		return wrap(ErrConfiguration, cfgErr.Error(), err)
	}
	var shapeErr *air.ShapeError
	if errors.As(err, &shapeErr) {
		return wrap(ErrInputShape, shapeErr.Error(), err)
	}
	var cancelErr *prover.Cancelled
	if errors.As(err, &cancelErr) {
		return wrap(ErrCancelled, cancelErr.Error(), err)
	}
	var serErr *proof.SerializationError
	if errors.As(err, &serErr) {
		return wrap(ErrSerialization, serErr.Error(), err)
	}
	return wrap(ErrTraceExecution, "prove failed", err)
}

func translateVerifyErr(err error) error {
	var cfgErr *config.ConfigurationError
	if errors.As(err, &cfgErr) {
		return wrap(ErrConfiguration, cfgErr.Error(), err)
	}
	var serErr *proof.SerializationError
	if errors.As(err, &serErr) {
		return wrap(ErrSerialization, serErr.Error(), err)
	}
	var verErr *verifier.VerificationError
	if errors.As(err, &verErr) {
		return wrap(ErrVerification, verErr.Error(), err)
	}
	return wrap(ErrVerification, "verification failed", err)
}
