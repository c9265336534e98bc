package stark

import (
	"math/big"

	"github.com/latticearc/stark/internal/stark/air"
	"github.com/latticearc/stark/internal/stark/config"
	"github.com/latticearc/stark/internal/stark/field"
	"github.com/latticearc/stark/internal/stark/hashfn"
)

// AIR is the contract a program must satisfy to be proved: a transition
// evaluator plus static register tables over a fixed field, register
// count, constraint count, and step count.
type AIR = air.AIR

// Assertion claims a register's value at a base-domain step.
type Assertion = air.Assertion

// StaticRegister is a deterministic, closed-form function from step index
// to field element.
type StaticRegister = air.StaticRegister

// Element is a value in a prover/verifier's prime field.
type Element = field.Element

// Field is the prime field an AIR is defined over.
type Field = field.Field

// HashAlgorithm selects the 256-bit hash used for Merkle commitments and
// the Fiat-Shamir transcript.
type HashAlgorithm = hashfn.Algorithm

const (
	SHA256     = hashfn.SHA256
	Blake2s256 = hashfn.Blake2s256
)

// ProverConfig holds every parameter the prover needs beyond the AIR and
// assertions themselves.
type ProverConfig = config.Prover

// VerifierConfig mirrors ProverConfig; both sides must agree on every
// parameter.
type VerifierConfig = config.Verifier

// DefaultProverConfig returns a ProverConfig with the documented defaults.
func DefaultProverConfig() *ProverConfig { return config.DefaultProver() }

// DefaultVerifierConfig returns a VerifierConfig with the documented
// defaults.
func DefaultVerifierConfig() *VerifierConfig { return config.DefaultVerifier() }

// NewCyclic builds a static register that repeats values cyclically across
// the base trace.
func NewCyclic(values []Element) StaticRegister { return air.NewCyclic(values) }

// NewStretched builds a static register whose nonzero positions are spaced
// `spacing` apart, cycling through values at each nonzero position.
func NewStretched(values []Element, spacing int) StaticRegister {
	return air.NewStretched(values, spacing)
}

// NewInput builds a static register directly from a full per-step input
// table.
func NewInput(values []Element) StaticRegister { return air.NewInput(values) }

// NewField creates a prime field for the given modulus. The modulus must
// be greater than 2.
func NewField(modulus *big.Int) (*Field, error) { return field.New(modulus) }
