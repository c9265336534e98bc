// Package stark provides a transparent, post-quantum-style STARK prover
// and verifier: trace execution, low-degree extension, constraint
// composition, FRI, and a compact binary proof format.
//
// # Features
//
//   - Compiled AIR contract: transition evaluator, static register tables,
//     declared constraint degree
//   - Pluggable 256-bit hash (SHA-256 or Blake2s-256) for both Merkle
//     commitments and the Fiat-Shamir transcript
//   - Generalized FRI with a configurable power-of-two folding factor
//   - Batch Merkle openings over minimal sibling sets
//   - Deterministic, derandomized public-coin transcript
//
// # Quick Start
//
// Generating and verifying a proof:
//
//	cfg := stark.DefaultProverConfig()
//	proofBytes, err := stark.Prove(context.Background(), program, assertions, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	vcfg := stark.DefaultVerifierConfig()
//	if err := stark.Verify(program, assertions, proofBytes, vcfg); err != nil {
//		log.Fatal(err)
//	}
//
// # Architecture
//
//   - pkg/stark/: public API (this package)
//   - internal/stark/: private implementation (not importable)
package stark
