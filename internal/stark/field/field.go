// Package field implements modular arithmetic over a configurable prime
// field, vector/matrix element-wise operations, and the power-cycle and
// PRNG helpers the rest of the prover/verifier pipeline is built on.
package field

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Field is a prime field Z/pZ for a caller-supplied modulus p.
type Field struct {
	modulus *big.Int
}

// Element is a value in [0, p) for the field it was created from.
type Element struct {
	field *Field
	value *big.Int
}

// New creates a field for the given modulus. The modulus must be > 2.
func New(modulus *big.Int) (*Field, error) {
	if modulus.Cmp(big.NewInt(2)) <= 0 {
		return nil, fmt.Errorf("field: modulus must be greater than 2")
	}
	return &Field{modulus: new(big.Int).Set(modulus)}, nil
}

// NewFromUint64 creates a field from a uint64 modulus.
func NewFromUint64(modulus uint64) (*Field, error) {
	return New(new(big.Int).SetUint64(modulus))
}

// Modulus returns a copy of the field's modulus.
func (f *Field) Modulus() *big.Int { return new(big.Int).Set(f.modulus) }

// ByteSize returns the canonical element encoding width: ceil(log2(p)/8)
// rounded up to a multiple of 8 bytes, per the data-model element size rule.
func (f *Field) ByteSize() int {
	bits := f.modulus.BitLen()
	bytes := (bits + 7) / 8
	if rem := bytes % 8; rem != 0 {
		bytes += 8 - rem
	}
	if bytes == 0 {
		bytes = 8
	}
	return bytes
}

// Equal reports whether two fields share the same modulus.
func (f *Field) Equal(other *Field) bool {
	return f.modulus.Cmp(other.modulus) == 0
}

// Elem reduces an arbitrary big.Int into a field element.
func (f *Field) Elem(v *big.Int) Element {
	normalized := new(big.Int).Mod(v, f.modulus)
	return Element{field: f, value: normalized}
}

// FromInt64 builds an element from a signed constant.
func (f *Field) FromInt64(v int64) Element { return f.Elem(big.NewInt(v)) }

// FromUint64 builds an element from an unsigned constant.
func (f *Field) FromUint64(v uint64) Element { return f.Elem(new(big.Int).SetUint64(v)) }

// FromBytes reduces a big-endian byte string into a field element.
func (f *Field) FromBytes(b []byte) Element { return f.Elem(new(big.Int).SetBytes(b)) }

// Zero is the additive identity.
func (f *Field) Zero() Element { return Element{field: f, value: big.NewInt(0)} }

// One is the multiplicative identity.
func (f *Field) One() Element { return Element{field: f, value: big.NewInt(1)} }

// Random draws a uniformly random element using a cryptographic source.
func (f *Field) Random() (Element, error) {
	v, err := rand.Int(rand.Reader, f.modulus)
	if err != nil {
		return Element{}, fmt.Errorf("field: random element: %w", err)
	}
	return f.Elem(v), nil
}

// PRNG derives `count` field elements deterministically from a seed, by
// hashing seed||counter with SHA-256 and reducing modulo p. This is the
// `prng(seed, count) -> vec` contract of the field adapter.
func (f *Field) PRNG(seed []byte, count int) []Element {
	out := make([]Element, count)
	for i := 0; i < count; i++ {
		out[i] = f.Elem(expandSeed(seed, i, f.ByteSize()*2))
	}
	return out
}

// Field returns the field this element belongs to.
func (e Element) Field() *Field { return e.field }

// Big returns a copy of the element's value.
func (e Element) Big() *big.Int { return new(big.Int).Set(e.value) }

// Bytes returns the big-endian canonical encoding at the field's byte size.
func (e Element) Bytes() []byte {
	size := e.field.ByteSize()
	raw := e.value.Bytes()
	if len(raw) >= size {
		return raw[len(raw)-size:]
	}
	out := make([]byte, size)
	copy(out[size-len(raw):], raw)
	return out
}

func (e Element) mustSameField(other Element) {
	if !e.field.Equal(other.field) {
		panic("field: operands belong to different fields")
	}
}

// Add returns e + other.
func (e Element) Add(other Element) Element {
	e.mustSameField(other)
	return e.field.Elem(new(big.Int).Add(e.value, other.value))
}

// Sub returns e - other.
func (e Element) Sub(other Element) Element {
	e.mustSameField(other)
	return e.field.Elem(new(big.Int).Sub(e.value, other.value))
}

// Neg returns -e.
func (e Element) Neg() Element {
	return e.field.Elem(new(big.Int).Neg(e.value))
}

// Mul returns e * other.
func (e Element) Mul(other Element) Element {
	e.mustSameField(other)
	return e.field.Elem(new(big.Int).Mul(e.value, other.value))
}

// Square returns e * e.
func (e Element) Square() Element { return e.Mul(e) }

// Inv returns the multiplicative inverse of e. Errors on zero.
func (e Element) Inv() (Element, error) {
	if e.IsZero() {
		return Element{}, fmt.Errorf("field: inverse of zero")
	}
	inv := new(big.Int).ModInverse(e.value, e.field.modulus)
	if inv == nil {
		return Element{}, fmt.Errorf("field: no inverse exists")
	}
	return e.field.Elem(inv), nil
}

// Div returns e / other.
func (e Element) Div(other Element) (Element, error) {
	e.mustSameField(other)
	inv, err := other.Inv()
	if err != nil {
		return Element{}, fmt.Errorf("field: division: %w", err)
	}
	return e.Mul(inv), nil
}

// Exp returns e raised to a non-negative exponent.
func (e Element) Exp(exponent *big.Int) Element {
	return e.field.Elem(new(big.Int).Exp(e.value, exponent, e.field.modulus))
}

// ExpInt is a convenience wrapper for small non-negative exponents.
func (e Element) ExpInt(exponent int64) Element {
	return e.Exp(big.NewInt(exponent))
}

// Equal reports value equality within the same field.
func (e Element) Equal(other Element) bool {
	if !e.field.Equal(other.field) {
		return false
	}
	return e.value.Cmp(other.value) == 0
}

// IsZero reports whether e is the additive identity.
func (e Element) IsZero() bool { return e.value.Sign() == 0 }

// IsOne reports whether e is the multiplicative identity.
func (e Element) IsOne() bool { return e.value.Cmp(big.NewInt(1)) == 0 }

// String renders the element's decimal value.
func (e Element) String() string { return e.value.String() }

func expandSeed(seed []byte, counter int, outLen int) *big.Int {
	acc := make([]byte, 0, len(seed)+8)
	acc = append(acc, seed...)
	acc = append(acc, byte(counter>>24), byte(counter>>16), byte(counter>>8), byte(counter))
	digest := sum256(acc)
	for len(digest) < outLen {
		digest = append(digest, sum256(digest)...)
	}
	return new(big.Int).SetBytes(digest[:outLen])
}
