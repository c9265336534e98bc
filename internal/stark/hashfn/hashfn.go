// Package hashfn exposes the single 256-bit hash abstraction the transcript
// and Merkle committer are built on, selectable at configuration time
// between SHA-256 and Blake2s-256, per spec.md §6's hash_algorithm knob.
package hashfn

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/blake2s"
)

// Algorithm names a supported 256-bit hash primitive.
type Algorithm string

const (
	SHA256     Algorithm = "sha256"
	Blake2s256 Algorithm = "blake2s256"
)

// DigestSize is the fixed output width of every supported algorithm.
const DigestSize = 32

// Hasher is an incremental-absorb, fixed-output hash instance.
type Hasher interface {
	Absorb(data []byte)
	Finalize() []byte
}

// New constructs a fresh Hasher for the given algorithm.
func New(alg Algorithm) (Hasher, error) {
	switch alg {
	case SHA256:
		h := sha256.New()
		return &stdHasher{h: h}, nil
	case Blake2s256:
		h, err := blake2s.New256(nil)
		if err != nil {
			return nil, fmt.Errorf("hashfn: blake2s256: %w", err)
		}
		return &stdHasher{h: h}, nil
	default:
		return nil, fmt.Errorf("hashfn: unsupported algorithm %q", alg)
	}
}

// Digest is a one-shot convenience wrapper around New+Absorb+Finalize.
func Digest(alg Algorithm, data ...[]byte) ([]byte, error) {
	h, err := New(alg)
	if err != nil {
		return nil, err
	}
	for _, d := range data {
		h.Absorb(d)
	}
	return h.Finalize(), nil
}

// Valid reports whether alg names a supported algorithm.
func Valid(alg Algorithm) bool {
	return alg == SHA256 || alg == Blake2s256
}

type stdHasher struct {
	h interface {
		Write(p []byte) (int, error)
		Sum(b []byte) []byte
	}
}

func (s *stdHasher) Absorb(data []byte) { _, _ = s.h.Write(data) }
func (s *stdHasher) Finalize() []byte   { return s.h.Sum(nil) }

// LeafHash hashes the concatenation of several canonical byte encodings into
// a single digest — the batched "leaf_hash(row)" specialization called out
// in spec.md §9's hash-abstraction redesign note.
func LeafHash(alg Algorithm, columns ...[]byte) ([]byte, error) {
	h, err := New(alg)
	if err != nil {
		return nil, err
	}
	for _, c := range columns {
		h.Absorb(c)
	}
	return h.Finalize(), nil
}
