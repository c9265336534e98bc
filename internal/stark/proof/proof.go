// Package proof defines the Proof data structure and its compact binary
// framing, per spec.md §4.7: roots, batch Merkle proofs, FRI layer proofs,
// and the remainder, packed with bounded variable-length length bytes.
package proof

import (
	"github.com/latticearc/stark/internal/stark/field"
	"github.com/latticearc/stark/internal/stark/merkle"
)

// MaxArrayLength is the largest array length the "0 means 256" length-byte
// convention can express.
const MaxArrayLength = 256

// MaxColumnLength is the largest sibling-node column length the framing
// accepts. The column length byte is written as-is (no "0 means 256"
// convention applies here).
const MaxColumnLength = 127

// MaxFRILayers is the largest FRI layer count the one-byte layer-count
// field can express.
const MaxFRILayers = 255

// FRILayerProof is one FRI layer's commitment root plus the batch opening
// of its queried coset.
type FRILayerProof struct {
	Root    []byte
	Opening *merkle.BatchOpening
}

// Proof is the complete artifact produced by prove and consumed by verify,
// per spec.md §3's Proof entity.
type Proof struct {
	TraceRoot          []byte
	CompositionRoot    []byte
	TraceOpening       *merkle.BatchOpening
	CompositionOpening *merkle.BatchOpening
	FRILayers          []FRILayerProof
	Remainder          field.Vector
}
