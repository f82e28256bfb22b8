// Package factor provides the tabular-factor layer consumed by exact
// inference engines: memoized Variable handles over finite element domains,
// dense Factor tables, and capability-dispatched factor construction from
// elements.
//
// A Context is the per-run memoization table mapping element identity to
// its canonical Variable handle. It replaces the process-wide table of the
// original design: every factor-construction call receives the Context
// explicitly, so concurrent inference runs are independent by construction
// and sharing a Context across runs is an explicit opt-in. Access to the
// table is mutex-guarded to preserve the one-handle-per-element invariant
// under concurrent elimination.
//
// Factors are dense: every cell must be written before it is read, and an
// unset cell is ErrUnsetCell, never an implicit zero. Factors need not be
// normalized; normalization is the elimination engine's responsibility.
//
// Errors (sentinel):
//
//	– ErrNilContext          if a nil *Context is passed.
//	– ErrNilVariable         if a nil *Variable is passed.
//	– ErrDuplicateVariable   if a factor is built over a repeated variable.
//	– ErrEmptyDomain         if an element enumerates an empty support.
//	– ErrValueNotInDomain    if a value is absent from a variable's domain.
//	– ErrDimension           if cell coordinates do not match the variable tuple.
//	– ErrNegativeWeight      if a cell is assigned a negative or NaN weight.
//	– ErrUnsetCell           if an unset cell is read or left behind.
//	– ErrVariableNotInFactor if SumOut names a variable the factor lacks.
//	– ErrZeroNormalizer      if a factor normalizes to total weight zero.
package factor

import "errors"

// Sentinel errors for variable memoization and factor tables.
var (
	// ErrNilContext indicates a nil *Context was passed.
	ErrNilContext = errors.New("factor: context is nil")

	// ErrNilVariable indicates a nil *Variable was passed.
	ErrNilVariable = errors.New("factor: variable is nil")

	// ErrDuplicateVariable indicates a factor over a repeated variable.
	ErrDuplicateVariable = errors.New("factor: duplicate variable in tuple")

	// ErrEmptyDomain indicates an element with an empty enumerated support.
	ErrEmptyDomain = errors.New("factor: empty domain")

	// ErrValueNotInDomain indicates a value outside a variable's domain.
	ErrValueNotInDomain = errors.New("factor: value not in domain")

	// ErrDimension indicates coordinates not matching the variable tuple.
	ErrDimension = errors.New("factor: coordinate dimension mismatch")

	// ErrNegativeWeight indicates a negative or NaN cell weight.
	ErrNegativeWeight = errors.New("factor: cell weight must be non-negative")

	// ErrUnsetCell indicates a cell that was read or finalized before being set.
	ErrUnsetCell = errors.New("factor: unset cell")

	// ErrVariableNotInFactor indicates SumOut of an absent variable.
	ErrVariableNotInFactor = errors.New("factor: variable not in factor")

	// ErrZeroNormalizer indicates a factor with zero total weight.
	ErrZeroNormalizer = errors.New("factor: zero normalizer")
)
