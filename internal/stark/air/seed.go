package air

import (
	"encoding/binary"

	"github.com/latticearc/stark/internal/stark/hashfn"
)

// DomainSeparator derives the transcript seed from every public parameter
// the prover and verifier must agree on before any challenge is drawn:
// field modulus, R, C, S, the extension factor, d_max, the composition
// degree bound d_max*S, static register descriptors, and the assertion set,
// per spec.md §4.8 step 2.
func DomainSeparator(alg hashfn.Algorithm, program AIR, extensionFactor int, assertions []Assertion) ([]byte, error) {
	var buf []byte
	buf = append(buf, program.FieldModulus().Bytes()...)
	buf = appendUint32(buf, uint32(program.RegisterCount()))
	buf = appendUint32(buf, uint32(program.ConstraintCount()))
	buf = appendUint32(buf, uint32(program.StepCount()))
	buf = appendUint32(buf, uint32(extensionFactor))
	buf = appendUint32(buf, uint32(program.MaxConstraintDegree()))
	buf = appendUint32(buf, uint32(program.MaxConstraintDegree()*program.StepCount()))

	for _, s := range program.StaticRegisters() {
		buf = append(buf, byte(s.Kind))
		buf = appendUint32(buf, uint32(s.Spacing))
		for _, v := range s.Values {
			buf = append(buf, v.Bytes()...)
		}
	}

	for _, a := range assertions {
		buf = appendUint32(buf, uint32(a.Step))
		buf = appendUint32(buf, uint32(a.Register))
		buf = append(buf, a.Value.Bytes()...)
	}

	return hashfn.Digest(alg, buf)
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}
