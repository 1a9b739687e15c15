// Package engine wires the pipeline: Entity Store -> Feasibility
// Diagnostic -> Variable Builder -> Constraint Compiler -> Solver
// Driver -> Assignment Extractor, behind one Run entry point.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/udp-edt/timetable-cpsat/internal/assignment"
	"github.com/udp-edt/timetable-cpsat/internal/constraints"
	"github.com/udp-edt/timetable-cpsat/internal/diagnostic"
	"github.com/udp-edt/timetable-cpsat/internal/model"
	"github.com/udp-edt/timetable-cpsat/internal/solve"
	"github.com/udp-edt/timetable-cpsat/internal/store"
)

// Result is the full outcome the CLI reports and maps to an exit code.
type Result struct {
	Status     model.Status
	Diagnostic diagnostic.Report
	Solve      solve.Outcome
	Run        *assignment.Run // nil unless Status == model.StatusOK
}

// Options carries the per-run inputs the CLI passes besides the Config:
// the week to schedule and the forced-disabled families for manual
// diagnostic runs. Time budget and worker overrides are applied to the
// Config itself before Run is called.
type Options struct {
	WeekID int

	// DisabledFamilies forces the given hard constraint families off
	// for the primary solve, for manual infeasibility probing via the
	// CLI. Normally empty.
	DisabledFamilies []constraints.Family
}

// Run executes one full pipeline pass for weekID against src.
func Run(ctx context.Context, src store.Source, cfg model.Config, opts Options, log *zap.Logger) (Result, error) {
	log.Info("loading entity store", zap.Int("week_id", opts.WeekID))
	inst, err := store.Load(ctx, src, cfg, opts.WeekID)
	if err != nil {
		log.Error("entity store load failed", zap.Error(err))
		return Result{Status: model.StatusDataError}, fmt.Errorf("loading instance: %w", err)
	}

	log.Info("running feasibility diagnostic")
	diagRep := diagnostic.Run(inst, log)
	if diagRep.Infeasible() {
		log.Warn("static feasibility diagnostic found problems, proceeding to solve anyway to localize the full picture")
	}

	log.Info("building variables and compiling constraints, then solving",
		zap.Duration("time_budget", inst.Config.TimeBudget),
		zap.Int("workers", inst.Config.Workers),
	)
	outcome := solve.Run(inst, log, opts.DisabledFamilies)

	res := Result{Status: outcome.Status, Diagnostic: diagRep, Solve: outcome}
	if diagRep.Infeasible() && outcome.Status != model.StatusOK {
		res.Status = model.StatusStaticInfeasible
	}

	if outcome.Status == model.StatusOK {
		run := assignment.Extract(inst, outcome.Vars, outcome.Result)
		res.Run = &run
		log.Info("solve succeeded", zap.String("run_id", run.RunID), zap.Int("assignments", len(run.Assignments)))
	} else {
		log.Warn("solve did not produce a feasible assignment", zap.String("status", statusName(outcome.Status)))
	}

	return res, nil
}

func statusName(s model.Status) string {
	switch s {
	case model.StatusOK:
		return "ok"
	case model.StatusStaticInfeasible:
		return "static_infeasible"
	case model.StatusSolverInfeasible:
		return "solver_infeasible"
	case model.StatusSolverTimeout:
		return "solver_timeout"
	case model.StatusSolverError:
		return "solver_error"
	default:
		return "data_error"
	}
}
