package field

import (
	"fmt"
	"math/big"
)

// Polynomial is a dense coefficient-form polynomial over a field.
type Polynomial struct {
	field *Field
	coeff []Element // coeff[i] is the coefficient of x^i
}

// NewPolynomial builds a polynomial from coefficients, trimming leading zeros.
func NewPolynomial(field *Field, coeff []Element) Polynomial {
	end := len(coeff)
	for end > 1 && coeff[end-1].IsZero() {
		end--
	}
	out := make([]Element, end)
	copy(out, coeff[:end])
	if len(out) == 0 {
		out = []Element{field.Zero()}
	}
	return Polynomial{field: field, coeff: out}
}

// ZeroPolynomial returns the additive identity polynomial.
func ZeroPolynomial(field *Field) Polynomial {
	return Polynomial{field: field, coeff: []Element{field.Zero()}}
}

// Degree returns len(coeff)-1, with the zero polynomial reporting degree 0.
func (p Polynomial) Degree() int { return len(p.coeff) - 1 }

// Coefficients returns a copy of the coefficient list, low-degree first.
func (p Polynomial) Coefficients() []Element {
	out := make([]Element, len(p.coeff))
	copy(out, p.coeff)
	return out
}

// Coefficient returns the coefficient of x^degree, or zero if out of range.
func (p Polynomial) Coefficient(degree int) Element {
	if degree < 0 || degree >= len(p.coeff) {
		return p.field.Zero()
	}
	return p.coeff[degree]
}

// Eval evaluates the polynomial at a single point via Horner's method.
func (p Polynomial) Eval(x Element) Element {
	acc := p.field.Zero()
	for i := len(p.coeff) - 1; i >= 0; i-- {
		acc = acc.Mul(x).Add(p.coeff[i])
	}
	return acc
}

// EvalDomain evaluates the polynomial at every point of domain.
func (p Polynomial) EvalDomain(domain Vector) Vector {
	out := make(Vector, len(domain))
	for i, x := range domain {
		out[i] = p.Eval(x)
	}
	return out
}

// Add returns p + other.
func (p Polynomial) Add(other Polynomial) Polynomial {
	n := len(p.coeff)
	if len(other.coeff) > n {
		n = len(other.coeff)
	}
	out := make([]Element, n)
	for i := 0; i < n; i++ {
		out[i] = p.Coefficient(i).Add(other.Coefficient(i))
	}
	return NewPolynomial(p.field, out)
}

// Sub returns p - other.
func (p Polynomial) Sub(other Polynomial) Polynomial {
	n := len(p.coeff)
	if len(other.coeff) > n {
		n = len(other.coeff)
	}
	out := make([]Element, n)
	for i := 0; i < n; i++ {
		out[i] = p.Coefficient(i).Sub(other.Coefficient(i))
	}
	return NewPolynomial(p.field, out)
}

// Mul returns p * other, via schoolbook convolution.
func (p Polynomial) Mul(other Polynomial) Polynomial {
	out := make([]Element, len(p.coeff)+len(other.coeff)-1)
	for i := range out {
		out[i] = p.field.Zero()
	}
	for i, a := range p.coeff {
		if a.IsZero() {
			continue
		}
		for j, b := range other.coeff {
			out[i+j] = out[i+j].Add(a.Mul(b))
		}
	}
	return NewPolynomial(p.field, out)
}

// ScalarMul returns p scaled by a constant.
func (p Polynomial) ScalarMul(scalar Element) Polynomial {
	out := make([]Element, len(p.coeff))
	for i, c := range p.coeff {
		out[i] = c.Mul(scalar)
	}
	return NewPolynomial(p.field, out)
}

// ShiftUp returns x^shift * p (used for degree-equalization terms).
func (p Polynomial) ShiftUp(shift int) Polynomial {
	if shift <= 0 {
		return p
	}
	out := make([]Element, len(p.coeff)+shift)
	for i := 0; i < shift; i++ {
		out[i] = p.field.Zero()
	}
	copy(out[shift:], p.coeff)
	return NewPolynomial(p.field, out)
}

// DivideByVanishing divides p by the vanishing polynomial x^n - root for a
// subgroup of size n with the given generator's n-th power equal to root
// (root is typically 1 for a full subgroup, or a coset shift). It requires
// exact division (remainder zero) and is used for X^S - 1 style divisors.
func (p Polynomial) DivideByVanishing(n int, root Element) (Polynomial, error) {
	// Divides by (x^n - root) using synthetic division specialized for a
	// binomial divisor: if p = sum c_i x^i, the quotient q satisfies
	// q_i = c_{i+n} + root * q_{i+n} computed top-down.
	if len(p.coeff) <= n {
		for _, c := range p.coeff {
			if !c.IsZero() {
				return Polynomial{}, fmt.Errorf("field: DivideByVanishing: nonzero remainder")
			}
		}
		return ZeroPolynomial(p.field), nil
	}
	deg := p.Degree()
	quotient := make([]Element, deg-n+1)
	remainder := make([]Element, n)
	work := p.Coefficients()
	for i := deg; i >= n; i-- {
		q := work[i]
		quotient[i-n] = q
		work[i-n] = work[i-n].Add(q.Mul(root))
	}
	copy(remainder, work[:n])
	for _, r := range remainder {
		if !r.IsZero() {
			return Polynomial{}, fmt.Errorf("field: DivideByVanishing: nonzero remainder")
		}
	}
	return NewPolynomial(p.field, quotient), nil
}

// Interpolate builds the unique polynomial of degree < len(xs) with
// p(xs[i]) = ys[i], using Lagrange interpolation. xs must be distinct.
func Interpolate(f *Field, xs, ys Vector) (Polynomial, error) {
	if len(xs) != len(ys) {
		return Polynomial{}, fmt.Errorf("field: interpolate: length mismatch %d != %d", len(xs), len(ys))
	}
	n := len(xs)
	if n == 0 {
		return Polynomial{}, fmt.Errorf("field: interpolate: empty input")
	}

	// Master polynomial M(x) = prod (x - xs[i]).
	master := NewPolynomial(f, []Element{f.One()})
	for _, x := range xs {
		master = master.Mul(NewPolynomial(f, []Element{x.Neg(), f.One()}))
	}

	result := ZeroPolynomial(f)
	for i := 0; i < n; i++ {
		// Numerator: M(x) / (x - xs[i]), via synthetic division.
		numerator, err := master.DivideByLinear(xs[i])
		if err != nil {
			return Polynomial{}, fmt.Errorf("field: interpolate: %w", err)
		}
		denom := numerator.Eval(xs[i])
		if denom.IsZero() {
			return Polynomial{}, fmt.Errorf("field: interpolate: duplicate x at index %d", i)
		}
		invDenom, err := denom.Inv()
		if err != nil {
			return Polynomial{}, fmt.Errorf("field: interpolate: %w", err)
		}
		term := numerator.ScalarMul(ys[i].Mul(invDenom))
		result = result.Add(term)
	}
	return result, nil
}

// DivideByLinear divides p by (x - root) exactly using synthetic division;
// returns an error if the remainder (p(root)) is nonzero.
func (p Polynomial) DivideByLinear(root Element) (Polynomial, error) {
	deg := p.Degree()
	if deg < 0 {
		return ZeroPolynomial(p.field), nil
	}
	quotient := make([]Element, deg)
	work := p.Coefficients()
	carry := p.field.Zero()
	for i := deg; i >= 1; i-- {
		quotient[i-1] = work[i].Add(carry)
		carry = quotient[i-1].Mul(root)
	}
	remainder := work[0].Add(carry)
	if !remainder.IsZero() {
		return Polynomial{}, fmt.Errorf("field: DivideByLinear: nonzero remainder")
	}
	return NewPolynomial(p.field, quotient), nil
}

// DivideByRoots divides p exactly by prod (x - roots[i]) via repeated
// synthetic division, erroring if any step has a nonzero remainder.
func (p Polynomial) DivideByRoots(roots []Element) (Polynomial, error) {
	q := p
	for _, r := range roots {
		next, err := q.DivideByLinear(r)
		if err != nil {
			return Polynomial{}, fmt.Errorf("field: DivideByRoots: %w", err)
		}
		q = next
	}
	return q, nil
}

// VanishingAtRoots evaluates prod (x - roots[i]) at x.
func VanishingAtRoots(f *Field, roots []Element, x Element) Element {
	acc := f.One()
	for _, r := range roots {
		acc = acc.Mul(x.Sub(r))
	}
	return acc
}

// FindGenerator locates a generator of the unique cyclic subgroup of order n
// dividing p-1, by trial exponentiation of small candidates. n must divide
// p-1 exactly and must be a power of two (the only subgroup order this
// codebase ever constructs a domain for).
//
// g^n = candidate^(p-1) = 1 (mod p) for every candidate coprime to p by
// Fermat's little theorem, regardless of g's actual order, so checking
// g^n == 1 alone accepts elements of any divisor order of n, not just n
// itself. For power-of-two n, order exactly n is confirmed by additionally
// rejecting g^(n/2) == 1.
func (f *Field) FindGenerator(n int) (Element, error) {
	if n <= 0 || n&(n-1) != 0 {
		return Element{}, fmt.Errorf("field: subgroup order %d must be a power of two", n)
	}
	pMinus1 := new(big.Int).Sub(f.modulus, big.NewInt(1))
	nBig := big.NewInt(int64(n))
	q, rem := new(big.Int).QuoRem(pMinus1, nBig, new(big.Int))
	if rem.Sign() != 0 {
		return Element{}, fmt.Errorf("field: subgroup order %d does not divide p-1", n)
	}
	for candidate := int64(2); candidate < 1<<20; candidate++ {
		g := f.FromInt64(candidate).Exp(q)
		if g.IsOne() {
			continue
		}
		if !g.ExpInt(int64(n)).IsOne() {
			continue
		}
		if n > 1 && g.ExpInt(int64(n/2)).IsOne() {
			continue
		}
		return g, nil
	}
	return Element{}, fmt.Errorf("field: no generator of order %d found", n)
}
