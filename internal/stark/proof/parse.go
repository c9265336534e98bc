package proof

import (
	"github.com/latticearc/stark/internal/stark/field"
	"github.com/latticearc/stark/internal/stark/hashfn"
	"github.com/latticearc/stark/internal/stark/merkle"
)

// Parse reconstructs a Proof from its binary framing, per spec.md §4.7.
//
// Merkle tree depths are not self-describing from the byte stream alone
// (the depth byte trails the columns it counts): depths are derived from
// the public evaluation-domain size and FRI parameters, the same way the
// verifier derives query indices, and the trailing depth byte is checked
// against that derivation rather than driving parsing.
func Parse(data []byte, f *field.Field, registerCount, evalDomainSize, foldingFactor, remainderThreshold int) (*Proof, error) {
	r := &reader{data: data}

	traceRoot, err := r.take(hashfn.DigestSize)
	if err != nil {
		return nil, err
	}
	compositionRoot, err := r.take(hashfn.DigestSize)
	if err != nil {
		return nil, err
	}

	traceDepth := log2(evalDomainSize)
	traceLeafSize := registerCount * f.ByteSize()
	traceOpening, err := r.readBatchProof(traceLeafSize, traceDepth)
	if err != nil {
		return nil, err
	}

	compOpening, err := r.readBatchProof(f.ByteSize(), traceDepth)
	if err != nil {
		return nil, err
	}

	layerCountByte, err := r.byteVal()
	if err != nil {
		return nil, err
	}
	layerCount := int(layerCountByte)

	layerSize := evalDomainSize
	layers := make([]FRILayerProof, layerCount)
	for i := 0; i < layerCount; i++ {
		if layerSize <= remainderThreshold {
			return nil, serErr("FRI layer %d present but domain already at/below remainder threshold", i)
		}
		root, err := r.take(hashfn.DigestSize)
		if err != nil {
			return nil, err
		}
		opening, err := r.readBatchProof(f.ByteSize(), log2(layerSize))
		if err != nil {
			return nil, err
		}
		layers[i] = FRILayerProof{Root: root, Opening: opening}
		layerSize /= foldingFactor
	}

	remLenByte, err := r.byteVal()
	if err != nil {
		return nil, err
	}
	remLen := readCount256(remLenByte)
	remainder := make(field.Vector, remLen)
	for i := 0; i < remLen; i++ {
		b, err := r.take(f.ByteSize())
		if err != nil {
			return nil, err
		}
		remainder[i] = f.FromBytes(b)
	}

	if !r.exhausted() {
		return nil, serErr("trailing bytes after proof: %d remaining", len(r.data)-r.cursor)
	}

	return &Proof{
		TraceRoot:          traceRoot,
		CompositionRoot:    compositionRoot,
		TraceOpening:       traceOpening,
		CompositionOpening: compOpening,
		FRILayers:          layers,
		Remainder:          remainder,
	}, nil
}

type reader struct {
	data   []byte
	cursor int
}

func (r *reader) take(n int) ([]byte, error) {
	if r.cursor+n > len(r.data) {
		return nil, serErr("unexpected end of buffer: need %d bytes at offset %d, have %d", n, r.cursor, len(r.data)-r.cursor)
	}
	out := r.data[r.cursor : r.cursor+n]
	r.cursor += n
	return out, nil
}

func (r *reader) byteVal() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) exhausted() bool { return r.cursor == len(r.data) }

// readBatchProof reads a count-prefixed leaf array followed by `depth`
// length-prefixed sibling columns and a trailing depth byte, checked
// against the expected depth.
func (r *reader) readBatchProof(leafSize, expectedDepth int) (*merkle.BatchOpening, error) {
	countByte, err := r.byteVal()
	if err != nil {
		return nil, err
	}
	count := readCount256(countByte)

	values := make([][]byte, count)
	for i := 0; i < count; i++ {
		v, err := r.take(leafSize)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	var nodes [][]byte
	levelCounts := make([]int, expectedDepth)
	for level := 0; level < expectedDepth; level++ {
		colLen, err := r.byteVal()
		if err != nil {
			return nil, err
		}
		if int(colLen) > MaxColumnLength {
			return nil, serErr("sibling column at level %d has length %d, exceeds max %d", level, colLen, MaxColumnLength)
		}
		levelCounts[level] = int(colLen)
		for i := 0; i < int(colLen); i++ {
			n, err := r.take(hashfn.DigestSize)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		}
	}

	depthByte, err := r.byteVal()
	if err != nil {
		return nil, err
	}
	if int(depthByte) != expectedDepth {
		return nil, serErr("tree depth byte %d does not match expected depth %d", depthByte, expectedDepth)
	}

	return &merkle.BatchOpening{Values: values, Nodes: nodes, LevelCounts: levelCounts, Depth: expectedDepth}, nil
}

func log2(n int) int {
	d := 0
	for n > 1 {
		n >>= 1
		d++
	}
	return d
}
