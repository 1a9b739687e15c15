// Package cpsat adapts github.com/irfansharif/solver's CP-SAT bindings
// behind a small domain-shaped surface. Everything downstream of this
// package only ever sees Model, BoolVar and Result.
package cpsat

import (
	"time"

	solver "github.com/irfansharif/solver"
)

// BoolVar is a single CP-SAT boolean decision variable (or its
// negation, for Not()).
type BoolVar struct {
	lit  solver.Literal
	name string
}

// Not returns the logical negation of b, reusing the same underlying
// variable (no new variable is created).
func (b BoolVar) Not() BoolVar {
	return BoolVar{lit: b.lit.Not(), name: "not(" + b.name + ")"}
}

// Name returns the variable's debug name, for diagnostics.
func (b BoolVar) Name() string { return b.name }

// Model owns exactly one underlying CP-SAT model instance for the
// lifetime of one solve. Nothing outside the Solver Driver retains a
// Model past the call that produced its Result.
type Model struct {
	m *solver.Model
}

// NewModel constructs an empty model.
func NewModel(name string) *Model {
	return &Model{m: solver.NewModel(name)}
}

// NewBoolVar creates a fresh boolean decision variable.
func (m *Model) NewBoolVar(name string) BoolVar {
	return BoolVar{lit: m.m.NewLiteral(name), name: name}
}

func toLits(vars []BoolVar) []solver.Literal {
	lits := make([]solver.Literal, len(vars))
	for i, v := range vars {
		lits[i] = v.lit
	}
	return lits
}

// AddExactlyOne constrains exactly one of vars to be true.
func (m *Model) AddExactlyOne(vars ...BoolVar) {
	if len(vars) == 0 {
		return
	}
	m.m.AddExactlyOne(toLits(vars)...)
}

// AddAtMostOne constrains at most one of vars to be true.
func (m *Model) AddAtMostOne(vars ...BoolVar) {
	if len(vars) < 2 {
		return
	}
	m.m.AddAtMostOne(toLits(vars)...)
}

// AddBoolOr constrains at least one of vars to be true (a disjunction
// of literals, so callers pass Not() themselves to express implication:
// ¬a ∨ b encodes a => b).
func (m *Model) AddBoolOr(vars ...BoolVar) {
	if len(vars) == 0 {
		return
	}
	m.m.AddBoolOr(toLits(vars)...)
}

// Fix pins a boolean variable to a constant value.
func (m *Model) Fix(v BoolVar, value bool) {
	if value {
		m.AddBoolOr(v)
	} else {
		m.AddBoolOr(v.Not())
	}
}

// AddImplication adds a => b.
func (m *Model) AddImplication(a, b BoolVar) {
	m.AddBoolOr(a.Not(), b)
}

// ReifyAnd introduces a fresh boolean z such that z <=> (a AND b),
// using the standard three-clause reification:
//
//	z => a        (¬z ∨ a)
//	z => b        (¬z ∨ b)
//	a ∧ b => z    (¬a ∨ ¬b ∨ z)
func (m *Model) ReifyAnd(name string, a, b BoolVar) BoolVar {
	z := m.NewBoolVar(name)
	m.AddBoolOr(z.Not(), a)
	m.AddBoolOr(z.Not(), b)
	m.AddBoolOr(a.Not(), b.Not(), z)
	return z
}

// WeightedTerm is one addend of a linear objective: weight * var.
type WeightedTerm struct {
	Var    BoolVar
	Weight int64
}

// Minimize sets the objective to the weighted sum of terms.
func (m *Model) Minimize(terms []WeightedTerm) {
	expr := solver.LinearExpr{}
	for _, t := range terms {
		expr = expr.Add(t.Var.lit, t.Weight)
	}
	m.m.Minimize(expr)
}

// SolveStatus is the terminal state CP-SAT returned.
type SolveStatus int

const (
	StatusUnknown SolveStatus = iota
	StatusOptimal
	StatusFeasible
	StatusInfeasible
	StatusError
)

// Result is a decoded CP-SAT solve outcome.
type Result struct {
	status SolveStatus
	raw    solver.Result
}

// Status reports the terminal solve status.
func (r Result) Status() SolveStatus { return r.status }

// Feasible reports whether a usable (optimal or sub-optimal feasible)
// assignment is present in the result.
func (r Result) Feasible() bool {
	return r.status == StatusOptimal || r.status == StatusFeasible
}

// BoolValue returns the decoded value of v in a feasible result.
func (r Result) BoolValue(v BoolVar) bool {
	return r.raw.BooleanValue(v.lit)
}

// Solve runs the portfolio search with the given wall-clock budget and
// worker count, returning the decoded terminal result. The only
// blocking call in the whole engine — everything upstream is
// single-threaded, deterministic model construction.
func (m *Model) Solve(budget time.Duration, workers int) Result {
	raw := m.m.Solve(solver.WithTimeLimit(budget), solver.WithNumWorkers(workers))

	var status SolveStatus
	switch {
	case raw.Optimal():
		status = StatusOptimal
	case raw.Feasible():
		status = StatusFeasible
	case raw.Infeasible():
		status = StatusInfeasible
	default:
		status = StatusError
	}
	return Result{status: status, raw: raw}
}
