package field

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func testField(t *testing.T) *Field {
	t.Helper()
	f, err := NewFromUint64(2013265921) // Baby Bear: 15*2^27+1
	require.NoError(t, err)
	return f
}

func TestArithmeticRoundTrip(t *testing.T) {
	f := testField(t)
	a := f.FromUint64(17)
	b := f.FromUint64(5)

	require.True(t, a.Add(b).Sub(b).Equal(a))
	require.True(t, a.Mul(b).Equal(b.Mul(a)))

	quotient, err := a.Div(b)
	require.NoError(t, err)
	require.True(t, quotient.Mul(b).Equal(a))
}

func TestInverse(t *testing.T) {
	f := testField(t)
	a := f.FromUint64(123456)
	inv, err := a.Inv()
	require.NoError(t, err)
	require.True(t, a.Mul(inv).IsOne())

	_, err = f.Zero().Inv()
	require.Error(t, err)
}

func TestBytesRoundTrip(t *testing.T) {
	f := testField(t)
	a := f.FromUint64(987654321)
	b := f.FromBytes(a.Bytes())
	require.True(t, a.Equal(b))
	require.Len(t, a.Bytes(), f.ByteSize())
}

func TestPRNGDeterministic(t *testing.T) {
	f := testField(t)
	a := f.PRNG([]byte("seed"), 8)
	b := f.PRNG([]byte("seed"), 8)
	require.Len(t, a, 8)
	for i := range a {
		require.True(t, a[i].Equal(b[i]))
	}
}

func TestNewRejectsSmallModulus(t *testing.T) {
	_, err := New(big.NewInt(2))
	require.Error(t, err)
}

func TestDomainPowerCycleAndSubsample(t *testing.T) {
	f := testField(t)
	d, err := NewDomain(f, 16)
	require.NoError(t, err)
	require.Equal(t, 16, d.Size())
	require.True(t, d.At(0).IsOne())
	require.True(t, d.At(16).Equal(d.At(0)))

	sub, err := d.Subsample(4)
	require.NoError(t, err)
	require.Equal(t, 4, sub.Size())
	require.True(t, sub.At(0).Equal(d.At(0)))
	require.True(t, sub.At(1).Equal(d.At(4)))
}

func TestInterpolateEvalRoundTrip(t *testing.T) {
	f := testField(t)
	d, err := NewDomain(f, 8)
	require.NoError(t, err)

	ys := make(Vector, 8)
	for i := range ys {
		ys[i] = f.FromUint64(uint64(i*i + 1))
	}

	poly, err := Interpolate(f, d.Points(), ys)
	require.NoError(t, err)
	for i, x := range d.Points() {
		require.True(t, poly.Eval(x).Equal(ys[i]))
	}
}
