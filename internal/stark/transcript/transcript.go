// Package transcript implements the append-only Fiat-Shamir public-coin
// channel: a deterministic sponge seeded by a domain separator, absorbing
// commitments and parameters, and emitting field-element and index-set
// challenges, per spec.md §4's Transcript component and §9's "Transcript"
// redesign note. Generalizes the teacher's utils.Channel (hardcoded to one
// hash by string switch) into a channel built on the hashfn.Hasher plugin.
package transcript

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/latticearc/stark/internal/stark/field"
	"github.com/latticearc/stark/internal/stark/hashfn"
)

// Transcript is a single-owner, sequential Fiat-Shamir channel.
type Transcript struct {
	alg     hashfn.Algorithm
	digest  []byte
	counter uint64
}

// New seeds a transcript from a domain separator.
func New(alg hashfn.Algorithm, domainSeparator []byte) (*Transcript, error) {
	digest, err := hashfn.Digest(alg, []byte("latticearc-stark-transcript-v1"), domainSeparator)
	if err != nil {
		return nil, fmt.Errorf("transcript: seeding: %w", err)
	}
	return &Transcript{alg: alg, digest: digest}, nil
}

// Absorb appends a byte string (a commitment root, a parameter encoding) to
// the transcript state: state <- H(state || data).
func (t *Transcript) Absorb(data []byte) error {
	next, err := hashfn.Digest(t.alg, t.digest, data)
	if err != nil {
		return fmt.Errorf("transcript: absorb: %w", err)
	}
	t.digest = next
	t.counter = 0
	return nil
}

// State returns the current digest (for debugging/logging only).
func (t *Transcript) State() []byte { return append([]byte(nil), t.digest...) }

func (t *Transcript) nextDraw() ([]byte, error) {
	var ctr [8]byte
	binary.BigEndian.PutUint64(ctr[:], t.counter)
	t.counter++
	return hashfn.Digest(t.alg, t.digest, ctr[:])
}

// ChallengeField draws a single field element by hashing digest||counter and
// reducing modulo the field's prime.
func (t *Transcript) ChallengeField(f *field.Field) (field.Element, error) {
	draw, err := t.nextDraw()
	if err != nil {
		return field.Element{}, fmt.Errorf("transcript: challenge field element: %w", err)
	}
	return f.FromBytes(draw), nil
}

// ChallengeFields draws `count` independent field-element challenges.
func (t *Transcript) ChallengeFields(f *field.Field, count int) ([]field.Element, error) {
	out := make([]field.Element, count)
	for i := range out {
		c, err := t.ChallengeField(f)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// ChallengeIndex draws a single pseudorandom index in [0, N), rejecting
// multiples of excludeStride (0 disables rejection) to avoid base-domain
// leakage per spec.md §4.6. Retries up to maxAttempts times.
func (t *Transcript) ChallengeIndex(N, excludeStride, maxAttempts int) (int, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		draw, err := t.nextDraw()
		if err != nil {
			return 0, fmt.Errorf("transcript: challenge index: %w", err)
		}
		v := new(big.Int).SetBytes(draw)
		idx := int(new(big.Int).Mod(v, big.NewInt(int64(N))).Int64())
		if excludeStride > 0 && idx%excludeStride == 0 {
			continue
		}
		return idx, nil
	}
	return 0, fmt.Errorf("transcript: challenge index: exceeded %d attempts", maxAttempts)
}

// ChallengeIndexSet draws `count` distinct pseudorandom indices in [0, N),
// excluding multiples of excludeStride, with a hard cap on total attempts
// per spec.md §4.6 ("Hard cap attempts (e.g., 1000*k) and fail if exceeded").
func (t *Transcript) ChallengeIndexSet(N, count, excludeStride int) ([]int, error) {
	seen := make(map[int]bool, count)
	out := make([]int, 0, count)
	maxAttempts := 1000 * count
	attempts := 0
	for len(out) < count {
		if attempts >= maxAttempts {
			return nil, fmt.Errorf("transcript: challenge index set: exceeded %d attempts deriving %d indices", maxAttempts, count)
		}
		attempts++
		draw, err := t.nextDraw()
		if err != nil {
			return nil, fmt.Errorf("transcript: challenge index set: %w", err)
		}
		v := new(big.Int).SetBytes(draw)
		idx := int(new(big.Int).Mod(v, big.NewInt(int64(N))).Int64())
		if excludeStride > 0 && idx%excludeStride == 0 {
			continue
		}
		if seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, idx)
	}
	return out, nil
}
