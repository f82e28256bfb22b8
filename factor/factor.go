package factor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Factor is a dense table of non-negative weights over an ordered tuple of
// Variable handles. Cells start unset; every cell must be written before
// the factor is consumed. A factor over zero variables is a scalar.
type Factor struct {
	vars    []*Variable
	strides []int
	cells   []float64
}

// New creates a factor over the given variable tuple with all cells unset.
//
// Complexity: O(Π |domain_i|) cell initialization.
func New(vars ...*Variable) (*Factor, error) {
	// 1) Validate the tuple: no nils, no repeats.
	seen := make(map[*Variable]struct{}, len(vars))
	for i, v := range vars {
		if v == nil {
			return nil, fmt.Errorf("%w: position %d", ErrNilVariable, i)
		}
		if _, dup := seen[v]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateVariable, v.Element().Name())
		}
		seen[v] = struct{}{}
	}

	// 2) Row-major strides; total size is the domain-size product.
	size := 1
	strides := make([]int, len(vars))
	for i := len(vars) - 1; i >= 0; i-- {
		strides[i] = size
		size *= vars[i].Size()
	}

	// 3) NaN marks unset cells so accidental reads are detectable.
	f := &Factor{
		vars:    append([]*Variable(nil), vars...),
		strides: strides,
		cells:   make([]float64, size),
	}
	for i := range f.cells {
		f.cells[i] = math.NaN()
	}

	return f, nil
}

// Variables returns a copy of the ordered variable tuple.
func (f *Factor) Variables() []*Variable {
	return append([]*Variable(nil), f.vars...)
}

// Size returns the number of cells.
func (f *Factor) Size() int { return len(f.cells) }

// Contains reports whether v participates in the factor.
func (f *Factor) Contains(v *Variable) bool {
	for _, fv := range f.vars {
		if fv == v {
			return true
		}
	}

	return false
}

// offset maps fully specified coordinates to a flat cell index.
func (f *Factor) offset(coords []int) (int, error) {
	if len(coords) != len(f.vars) {
		return 0, fmt.Errorf("%w: got %d coords, want %d", ErrDimension, len(coords), len(f.vars))
	}
	off := 0
	for i, c := range coords {
		if c < 0 || c >= f.vars[i].Size() {
			return 0, fmt.Errorf("%w: coord %d=%d outside domain of %q",
				ErrDimension, i, c, f.vars[i].Element().Name())
		}
		off += c * f.strides[i]
	}

	return off, nil
}

// Set writes the non-negative weight w at the fully specified coordinates.
func (f *Factor) Set(coords []int, w float64) error {
	if w < 0 || math.IsNaN(w) {
		return fmt.Errorf("%w: %g", ErrNegativeWeight, w)
	}
	off, err := f.offset(coords)
	if err != nil {
		return err
	}
	f.cells[off] = w

	return nil
}

// At reads the weight at the fully specified coordinates; reading an unset
// cell is an error, never an implicit zero.
func (f *Factor) At(coords []int) (float64, error) {
	off, err := f.offset(coords)
	if err != nil {
		return 0, err
	}
	w := f.cells[off]
	if math.IsNaN(w) {
		return 0, fmt.Errorf("%w: coords %v", ErrUnsetCell, coords)
	}

	return w, nil
}

// Complete verifies that every cell has been set.
func (f *Factor) Complete() error {
	for i, w := range f.cells {
		if math.IsNaN(w) {
			return fmt.Errorf("%w: flat index %d of %d", ErrUnsetCell, i, len(f.cells))
		}
	}

	return nil
}

// Normalize scales the factor in place so its cells sum to 1.
func (f *Factor) Normalize() error {
	if err := f.Complete(); err != nil {
		return err
	}
	total := floats.Sum(f.cells)
	if total <= 0 {
		return ErrZeroNormalizer
	}
	floats.Scale(1/total, f.cells)

	return nil
}

// Product returns the factor product f·g over the union of their variable
// tuples (f's order first, then g's variables not in f).
//
// Complexity: O(Π |domain_i|) over the union tuple.
func (f *Factor) Product(g *Factor) (*Factor, error) {
	// 1) Union tuple.
	union := f.Variables()
	for _, v := range g.vars {
		if !f.Contains(v) {
			union = append(union, v)
		}
	}
	out, err := New(union...)
	if err != nil {
		return nil, err
	}

	// 2) Precompute each operand's coordinate positions in the union.
	fPos := positions(union, f.vars)
	gPos := positions(union, g.vars)

	// 3) Walk the union table with an odometer, multiplying operand cells.
	coords := make([]int, len(union))
	fCoords := make([]int, len(f.vars))
	gCoords := make([]int, len(g.vars))
	for {
		for i, p := range fPos {
			fCoords[i] = coords[p]
		}
		for i, p := range gPos {
			gCoords[i] = coords[p]
		}
		fw, err := f.At(fCoords)
		if err != nil {
			return nil, err
		}
		gw, err := g.At(gCoords)
		if err != nil {
			return nil, err
		}
		if err := out.Set(coords, fw*gw); err != nil {
			return nil, err
		}
		if !advanceCoords(coords, union) {
			break
		}
	}

	return out, nil
}

// SumOut marginalizes v out of the factor, returning a factor over the
// remaining tuple (possibly a scalar).
func (f *Factor) SumOut(v *Variable) (*Factor, error) {
	if v == nil {
		return nil, ErrNilVariable
	}
	pos := -1
	for i, fv := range f.vars {
		if fv == v {
			pos = i

			break
		}
	}
	if pos < 0 {
		return nil, fmt.Errorf("%w: %q", ErrVariableNotInFactor, v.Element().Name())
	}

	rest := make([]*Variable, 0, len(f.vars)-1)
	rest = append(rest, f.vars[:pos]...)
	rest = append(rest, f.vars[pos+1:]...)
	out, err := New(rest...)
	if err != nil {
		return nil, err
	}

	coords := make([]int, len(rest))
	full := make([]int, len(f.vars))
	for {
		sum := 0.0
		for k := 0; k < v.Size(); k++ {
			copy(full[:pos], coords[:pos])
			full[pos] = k
			copy(full[pos+1:], coords[pos:])
			w, err := f.At(full)
			if err != nil {
				return nil, err
			}
			sum += w
		}
		if err := out.Set(coords, sum); err != nil {
			return nil, err
		}
		if !advanceCoords(coords, rest) {
			break
		}
	}

	return out, nil
}

// positions maps each of sub's variables to its index in union.
func positions(union, sub []*Variable) []int {
	pos := make([]int, len(sub))
	for i, sv := range sub {
		for j, uv := range union {
			if sv == uv {
				pos[i] = j

				break
			}
		}
	}

	return pos
}

// advanceCoords increments the odometer over the variables' domains; false
// on wraparound. A zero-length tuple wraps immediately (scalar factor).
func advanceCoords(coords []int, vars []*Variable) bool {
	for i := len(coords) - 1; i >= 0; i-- {
		coords[i]++
		if coords[i] < vars[i].Size() {
			return true
		}
		coords[i] = 0
	}

	return false
}
