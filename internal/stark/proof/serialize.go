package proof

import (
	"fmt"

	"github.com/latticearc/stark/internal/stark/field"
	"github.com/latticearc/stark/internal/stark/hashfn"
	"github.com/latticearc/stark/internal/stark/merkle"
)

// SerializationError reports malformed or out-of-bound proof framing.
type SerializationError struct {
	Reason string
}

func (e *SerializationError) Error() string { return "proof: serialization: " + e.Reason }

func serErr(format string, args ...interface{}) error {
	return &SerializationError{Reason: fmt.Sprintf(format, args...)}
}

// Serialize packs a Proof into its compact binary layout, per spec.md §4.7.
// registerCount is R, the number of trace columns (needed to frame trace
// leaves, which are concatenations of R field elements).
func Serialize(p *Proof, f *field.Field, registerCount int) ([]byte, error) {
	var buf []byte

	if len(p.TraceRoot) != hashfn.DigestSize || len(p.CompositionRoot) != hashfn.DigestSize {
		return nil, serErr("root length must be %d bytes", hashfn.DigestSize)
	}
	buf = append(buf, p.TraceRoot...)
	buf = append(buf, p.CompositionRoot...)

	traceLeafSize := registerCount * f.ByteSize()
	tracePart, err := writeBatchProof(p.TraceOpening, traceLeafSize)
	if err != nil {
		return nil, fmt.Errorf("proof: serializing trace opening: %w", err)
	}
	buf = append(buf, tracePart...)

	compPart, err := writeBatchProof(p.CompositionOpening, f.ByteSize())
	if err != nil {
		return nil, fmt.Errorf("proof: serializing composition opening: %w", err)
	}
	buf = append(buf, compPart...)

	if len(p.FRILayers) > MaxFRILayers {
		return nil, serErr("FRI layer count %d exceeds max %d", len(p.FRILayers), MaxFRILayers)
	}
	buf = append(buf, byte(len(p.FRILayers)))
	for i, layer := range p.FRILayers {
		if len(layer.Root) != hashfn.DigestSize {
			return nil, serErr("FRI layer %d root length must be %d bytes", i, hashfn.DigestSize)
		}
		buf = append(buf, layer.Root...)
		layerPart, err := writeBatchProof(layer.Opening, f.ByteSize())
		if err != nil {
			return nil, fmt.Errorf("proof: serializing FRI layer %d opening: %w", i, err)
		}
		buf = append(buf, layerPart...)
	}

	remLen, err := writeCount256(len(p.Remainder))
	if err != nil {
		return nil, fmt.Errorf("proof: serializing remainder: %w", err)
	}
	buf = append(buf, remLen)
	for _, e := range p.Remainder {
		buf = append(buf, e.Bytes()...)
	}

	return buf, nil
}

// writeBatchProof frames a Merkle batch opening: a count-prefixed array of
// fixed-width leaf values, followed by one length-prefixed sibling column
// per tree level, followed by a one-byte tree depth.
func writeBatchProof(o *merkle.BatchOpening, leafSize int) ([]byte, error) {
	var buf []byte

	countByte, err := writeCount256(len(o.Values))
	if err != nil {
		return nil, fmt.Errorf("opened-leaf count: %w", err)
	}
	buf = append(buf, countByte)
	for i, v := range o.Values {
		if len(v) != leafSize {
			return nil, serErr("opened leaf %d has length %d, want %d", i, len(v), leafSize)
		}
		buf = append(buf, v...)
	}

	cursor := 0
	for level, count := range o.LevelCounts {
		if count > MaxColumnLength {
			return nil, serErr("sibling column at level %d has length %d, exceeds max %d", level, count, MaxColumnLength)
		}
		buf = append(buf, byte(count))
		for i := 0; i < count; i++ {
			buf = append(buf, o.Nodes[cursor]...)
			cursor++
		}
	}

	if o.Depth < 0 || o.Depth > 255 {
		return nil, serErr("tree depth %d out of byte range", o.Depth)
	}
	buf = append(buf, byte(o.Depth))

	return buf, nil
}

// writeCount256 applies the "0 means 256" convention: n must be in [1,256].
func writeCount256(n int) (byte, error) {
	if n < 1 || n > MaxArrayLength {
		return 0, serErr("array length %d out of range [1,%d]", n, MaxArrayLength)
	}
	if n == MaxArrayLength {
		return 0, nil
	}
	return byte(n), nil
}

func readCount256(b byte) int {
	if b == 0 {
		return MaxArrayLength
	}
	return int(b)
}

// SizeOf returns the exact byte length Serialize would produce, without
// allocating the buffer, per spec.md §4.7's pure size_of contract.
func SizeOf(p *Proof, f *field.Field, registerCount int) (int, error) {
	size := 2 * hashfn.DigestSize

	traceLeafSize := registerCount * f.ByteSize()
	n, err := sizeOfBatchProof(p.TraceOpening, traceLeafSize)
	if err != nil {
		return 0, err
	}
	size += n

	n, err = sizeOfBatchProof(p.CompositionOpening, f.ByteSize())
	if err != nil {
		return 0, err
	}
	size += n

	if len(p.FRILayers) > MaxFRILayers {
		return 0, serErr("FRI layer count %d exceeds max %d", len(p.FRILayers), MaxFRILayers)
	}
	size += 1
	for _, layer := range p.FRILayers {
		size += hashfn.DigestSize
		n, err := sizeOfBatchProof(layer.Opening, f.ByteSize())
		if err != nil {
			return 0, err
		}
		size += n
	}

	if len(p.Remainder) < 1 || len(p.Remainder) > MaxArrayLength {
		return 0, serErr("remainder length %d out of range [1,%d]", len(p.Remainder), MaxArrayLength)
	}
	size += 1 + len(p.Remainder)*f.ByteSize()

	return size, nil
}

func sizeOfBatchProof(o *merkle.BatchOpening, leafSize int) (int, error) {
	if len(o.Values) < 1 || len(o.Values) > MaxArrayLength {
		return 0, serErr("opened-leaf count %d out of range [1,%d]", len(o.Values), MaxArrayLength)
	}
	size := 1 + len(o.Values)*leafSize
	for level, count := range o.LevelCounts {
		if count > MaxColumnLength {
			return 0, serErr("sibling column at level %d has length %d, exceeds max %d", level, count, MaxColumnLength)
		}
		size += 1 + count*hashfn.DigestSize
	}
	size += 1 // depth byte
	return size, nil
}
