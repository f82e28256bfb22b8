// Package eliminate implements exact posterior queries by variable
// elimination over tabular factors.
//
// The solver collects one factor per element in the query's relevant
// closure (the ancestor closure of the query plus all observed elements),
// adds an evidence factor per observation, then eliminates every
// non-query variable by the standard collect-multiply-marginalize step.
// Elimination order is deterministic (ascending element name); for the
// small discrete models this core targets, order heuristics are not worth
// their complexity.
//
// Complexity: O(Π |domain_i|) over the largest intermediate factor; for a
// chain-structured model this is the product of adjacent domain sizes.
//
// Errors (sentinel):
//
//	– ErrNilQuery             if the query element is nil.
//	– ErrInconsistentEvidence if the evidence has zero joint probability.
package eliminate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/katalvlaran/provar/element"
	"github.com/katalvlaran/provar/factor"
)

// Sentinel errors for the elimination solver.
var (
	// ErrNilQuery indicates a nil query element.
	ErrNilQuery = errors.New("eliminate: query element is nil")

	// ErrInconsistentEvidence indicates evidence with zero joint probability.
	ErrInconsistentEvidence = errors.New("eliminate: evidence has zero probability")
)

// Solver answers exact posterior queries over one variable-memoization
// context. By default each Solver owns a fresh context; WithContext shares
// one across solvers for cooperating runs.
type Solver struct {
	ctx *factor.Context
}

// Option configures a Solver.
type Option func(*Solver)

// WithContext shares an existing variable-memoization context, so factors
// built by cooperating solvers agree on variable handles.
func WithContext(ctx *factor.Context) Option {
	return func(s *Solver) { s.ctx = ctx }
}

// New creates a Solver.
func New(opts ...Option) *Solver {
	s := &Solver{}
	for _, opt := range opts {
		opt(s)
	}
	if s.ctx == nil {
		s.ctx = factor.NewContext()
	}

	return s
}

// Context returns the solver's variable-memoization context.
func (s *Solver) Context() *factor.Context { return s.ctx }

// Posterior computes the exact posterior distribution of query given all
// evidence observed in its universe, in the query's domain order.
func (s *Solver) Posterior(query element.Element) ([]element.Weighted, error) {
	// 1) Validate and order the relevant closure; cycles surface here.
	if query == nil {
		return nil, ErrNilQuery
	}
	u := query.Universe()
	roots := append([]element.Element{query}, u.Observed()...)
	order, err := element.TopoSort(roots...)
	if err != nil {
		return nil, err
	}

	// 2) One local factor per element, plus one evidence factor per
	//    observation. All share the solver's context, so any element
	//    appearing in several factors resolves to the same handle.
	var factors []*factor.Factor
	for _, e := range order {
		fs, err := factor.FromElement(s.ctx, e)
		if err != nil {
			return nil, err
		}
		factors = append(factors, fs...)
		if obs, ok := u.Observation(e); ok {
			ev, err := factor.Evidence(s.ctx, e, obs)
			if err != nil {
				return nil, err
			}
			factors = append(factors, ev)
		}
	}

	queryVar, err := s.ctx.Variable(query)
	if err != nil {
		return nil, err
	}

	// 3) Deterministic elimination order over all non-query variables.
	elim := collectVariables(factors, queryVar)

	// 4) Eliminate: collect the factors mentioning v, multiply, sum v out.
	for _, v := range elim {
		var related []*factor.Factor
		var rest []*factor.Factor
		for _, f := range factors {
			if f.Contains(v) {
				related = append(related, f)
			} else {
				rest = append(rest, f)
			}
		}
		if len(related) == 0 {
			continue
		}
		prod, err := product(related)
		if err != nil {
			return nil, err
		}
		summed, err := prod.SumOut(v)
		if err != nil {
			return nil, err
		}
		factors = append(rest, summed)
	}

	// 5) Multiply what remains (factors over the query variable and
	//    scalars), then normalize into the posterior.
	final, err := product(factors)
	if err != nil {
		return nil, err
	}
	if err := final.Normalize(); err != nil {
		if errors.Is(err, factor.ErrZeroNormalizer) {
			return nil, fmt.Errorf("%w: query %q", ErrInconsistentEvidence, query.Name())
		}

		return nil, err
	}

	// 6) Read the marginal in domain order.
	return readMarginal(final, queryVar)
}

// collectVariables gathers every variable of the given factors except keep,
// ordered by element name for determinism.
func collectVariables(factors []*factor.Factor, keep *factor.Variable) []*factor.Variable {
	seen := make(map[*factor.Variable]struct{})
	var out []*factor.Variable
	for _, f := range factors {
		for _, v := range f.Variables() {
			if v == keep {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Element().Name() < out[j].Element().Name()
	})

	return out
}

// product multiplies the given factors left to right. An empty list yields
// the scalar unit factor.
func product(factors []*factor.Factor) (*factor.Factor, error) {
	if len(factors) == 0 {
		unit, err := factor.New()
		if err != nil {
			return nil, err
		}
		if err := unit.Set(nil, 1.0); err != nil {
			return nil, err
		}

		return unit, nil
	}
	acc := factors[0]
	for _, f := range factors[1:] {
		next, err := acc.Product(f)
		if err != nil {
			return nil, err
		}
		acc = next
	}

	return acc, nil
}

// readMarginal extracts the single-variable marginal of queryVar from the
// final normalized factor.
func readMarginal(final *factor.Factor, queryVar *factor.Variable) ([]element.Weighted, error) {
	vars := final.Variables()
	if len(vars) != 1 || vars[0] != queryVar {
		return nil, fmt.Errorf("eliminate: internal: final factor over %d variables", len(vars))
	}
	domain := queryVar.Domain()
	out := make([]element.Weighted, len(domain))
	for i, v := range domain {
		w, err := final.At([]int{i})
		if err != nil {
			return nil, err
		}
		out[i] = element.Weighted{Prob: w, Value: v}
	}

	return out, nil
}
