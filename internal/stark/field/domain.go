package field

import "fmt"

// Domain is the cyclic group of N-th roots of unity used as an evaluation
// domain, generated by a fixed root-of-unity generator.
type Domain struct {
	field     *Field
	generator Element
	size      int
	points    Vector
}

// NewDomain builds the cyclic evaluation domain of the given size (must be a
// power of two, and size must divide field.Modulus()-1).
func NewDomain(f *Field, size int) (*Domain, error) {
	if size <= 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("field: domain size %d must be a power of two", size)
	}
	g, err := f.FindGenerator(size)
	if err != nil {
		return nil, fmt.Errorf("field: building domain of size %d: %w", size, err)
	}
	return &Domain{field: f, generator: g, size: size, points: f.GetPowerCycle(g, size)}, nil
}

// Size returns the number of points in the domain.
func (d *Domain) Size() int { return d.size }

// Generator returns the domain's generator (a primitive size-th root of unity).
func (d *Domain) Generator() Element { return d.generator }

// Points returns the domain's points, [1, g, g^2, ..., g^(size-1)].
func (d *Domain) Points() Vector { return d.points }

// At returns the i-th point (index reduced modulo size).
func (d *Domain) At(i int) Element { return d.points[((i%d.size)+d.size)%d.size] }

// Subsample returns the sub-domain obtained by taking every stride-th point,
// itself a cyclic domain of size size/stride generated by generator^stride.
func (d *Domain) Subsample(stride int) (*Domain, error) {
	if stride <= 0 || d.size%stride != 0 {
		return nil, fmt.Errorf("field: subsample stride %d does not divide domain size %d", stride, d.size)
	}
	subSize := d.size / stride
	subGen := d.generator.ExpInt(int64(stride))
	return &Domain{field: d.field, generator: subGen, size: subSize, points: d.field.GetPowerCycle(subGen, subSize)}, nil
}

// VanishingEval evaluates Z_H(x) = x^|H| - 1 for the cyclic subgroup of
// size subgroupSize, at every point of this domain.
func (d *Domain) VanishingEval(subgroupSize int) Vector {
	out := make(Vector, d.size)
	for i, x := range d.points {
		out[i] = x.ExpInt(int64(subgroupSize)).Sub(d.field.One())
	}
	return out
}
