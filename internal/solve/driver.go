// Package solve is the Solver Driver: it assembles the weighted
// objective from the Constraint Compiler's penalty terms, runs the
// CP-SAT search under a time budget and worker count, and — on an
// infeasible result — drives the bisection infeasibility diagnostic
// that localizes which hard constraint families are blocking a
// solution by disabling them singly, then in pairs, then in triples.
package solve

import (
	"time"

	"go.uber.org/zap"

	"github.com/udp-edt/timetable-cpsat/internal/constraints"
	"github.com/udp-edt/timetable-cpsat/internal/cpsat"
	"github.com/udp-edt/timetable-cpsat/internal/model"
	"github.com/udp-edt/timetable-cpsat/internal/store"
	"github.com/udp-edt/timetable-cpsat/internal/variables"
)

// Outcome is the terminal result of one Run: either a feasible
// cpsat.Result ready for the Assignment Extractor, or a Diagnosis
// explaining why none was found.
type Outcome struct {
	Result    cpsat.Result
	Vars      *variables.Set
	Status    model.Status
	Diagnosis *Diagnosis
}

// Diagnosis is the bisection result: the smallest family combination
// that, when disabled, makes the instance feasible — or nil if even
// disabling three families at once never did.
type Diagnosis struct {
	DisabledFamilies []constraints.Family
}

// Run builds one model, compiles every family except forceDisabled,
// solves it, and — only on infeasibility — launches the bisection
// diagnostic (which disables families beyond forceDisabled on top).
// forceDisabled is normally empty; it exists for an operator manually
// probing a specific family via the CLI's --disable-family flag.
func Run(inst *store.Instance, log *zap.Logger, forceDisabled []constraints.Family) Outcome {
	res, vars := solveOnce(inst, forceDisabled)
	if res.Feasible() {
		return Outcome{Result: res, Vars: vars, Status: model.StatusOK}
	}

	if res.Status() == cpsat.StatusUnknown {
		log.Warn("solve exhausted its time budget with no feasible solution and no infeasibility proof")
		return Outcome{Result: res, Status: model.StatusSolverTimeout}
	}
	if res.Status() == cpsat.StatusError {
		log.Error("solver engine reported an internal error")
		return Outcome{Result: res, Status: model.StatusSolverError}
	}

	log.Warn("solve infeasible with all hard families enabled, starting bisection diagnostic")
	diag := bisect(inst, log, forceDisabled)
	if diag == nil {
		return Outcome{Result: res, Status: model.StatusSolverInfeasible}
	}
	return Outcome{Result: res, Status: model.StatusSolverInfeasible, Diagnosis: diag}
}

// solveOnce builds one fresh model+variable set with the given
// families disabled and solves it — a model is single-use in CP-SAT,
// so every trial gets its own.
func solveOnce(inst *store.Instance, disabled []constraints.Family) (cpsat.Result, *variables.Set) {
	m := cpsat.NewModel("timetable")
	vars := variables.Build(m, inst)
	compiler := constraints.New(m, inst, vars, disabled)
	penalties := compiler.Compile()

	var terms []cpsat.WeightedTerm
	terms = append(terms, penalties.Capacity...)
	terms = append(terms, penalties.Late...)
	terms = append(terms, penalties.Medium...)
	m.Minimize(terms)

	return m.Solve(inst.Config.TimeBudget, inst.Config.Workers), vars
}

// bisect reproduces original_source/app.py's test_combination loop:
// try every single family, then every pair, then every triple, each
// capped at a bisection-scoped time budget.
func bisect(inst *store.Instance, log *zap.Logger, forceDisabled []constraints.Family) *Diagnosis {
	budget := bisectionBudget(inst.Config.TimeBudget)
	trial := func(combo []constraints.Family) bool {
		disabled := append(append([]constraints.Family{}, forceDisabled...), combo...)
		res, _ := solveOnceWithBudget(inst, disabled, budget)
		return res.Feasible()
	}

	families := constraints.AllFamilies

	log.Info("bisection step 1: single families")
	for _, f := range families {
		if trial([]constraints.Family{f}) {
			log.Info("bisection found single blocking family", zap.String("family", string(f)))
			return &Diagnosis{DisabledFamilies: []constraints.Family{f}}
		}
	}

	log.Info("bisection step 2: pairs of families")
	for i := 0; i < len(families); i++ {
		for j := i + 1; j < len(families); j++ {
			combo := []constraints.Family{families[i], families[j]}
			if trial(combo) {
				log.Info("bisection found blocking pair", zap.Strings("families", familyNames(combo)))
				return &Diagnosis{DisabledFamilies: combo}
			}
		}
	}

	log.Info("bisection step 3: triples of families")
	for i := 0; i < len(families); i++ {
		for j := i + 1; j < len(families); j++ {
			for k := j + 1; k < len(families); k++ {
				combo := []constraints.Family{families[i], families[j], families[k]}
				if trial(combo) {
					log.Info("bisection found blocking triple", zap.Strings("families", familyNames(combo)))
					return &Diagnosis{DisabledFamilies: combo}
				}
			}
		}
	}

	log.Warn("bisection exhausted singles, pairs and triples without finding a feasible combination")
	return nil
}

func solveOnceWithBudget(inst *store.Instance, disabled []constraints.Family, budget time.Duration) (cpsat.Result, *variables.Set) {
	scoped := *inst
	scoped.Config.TimeBudget = budget
	return solveOnce(&scoped, disabled)
}

// bisectionBudget keeps each trial well under the full run's budget —
// a bisection pass may run dozens of trials, so it must not spend the
// full budget on every one.
func bisectionBudget(full time.Duration) time.Duration {
	trial := full / 5
	if trial < 10*time.Second {
		trial = 10 * time.Second
	}
	if trial > 60*time.Second {
		trial = 60 * time.Second
	}
	return trial
}

func familyNames(fs []constraints.Family) []string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = string(f)
	}
	return names
}
