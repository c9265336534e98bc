package fri

import (
	"fmt"

	"github.com/latticearc/stark/internal/stark/field"
)

// VerifyFold checks that the opened coset (xs, ys) interpolates to a
// polynomial whose evaluation at challenge equals nextValue, per spec.md
// §4.5/§4.8's fold-consistency check.
func VerifyFold(f *field.Field, xs, ys field.Vector, challenge, nextValue field.Element) (bool, error) {
	poly, err := field.Interpolate(f, xs, ys)
	if err != nil {
		return false, fmt.Errorf("fri: verify fold: %w", err)
	}
	return poly.Eval(challenge).Equal(nextValue), nil
}

// VerifyRemainder interpolates the remainder evaluations over their domain
// and confirms the resulting polynomial has degree strictly below
// threshold/foldingFactor, per spec.md §4.5/§4.8.
func VerifyRemainder(f *field.Field, domain *field.Domain, remainder field.Vector, threshold, foldingFactor int) (bool, error) {
	if len(remainder) != domain.Size() {
		return false, fmt.Errorf("fri: verify remainder: length %d != domain size %d", len(remainder), domain.Size())
	}
	poly, err := field.Interpolate(f, domain.Points(), remainder)
	if err != nil {
		return false, fmt.Errorf("fri: verify remainder: %w", err)
	}
	maxDegree := threshold / foldingFactor
	// A polynomial interpolated from domain.Size() points whose true degree
	// is < maxDegree has all coefficients at index >= maxDegree equal to
	// zero; NewPolynomial already trims trailing zero coefficients, so it
	// suffices to check the trimmed degree directly.
	return poly.Degree() < maxDegree, nil
}
