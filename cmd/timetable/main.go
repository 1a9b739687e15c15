// Command timetable is the CLI entry point: load -> run -> report -> exit.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/udp-edt/timetable-cpsat/internal/config"
	"github.com/udp-edt/timetable-cpsat/internal/constraints"
	"github.com/udp-edt/timetable-cpsat/internal/engine"
	"github.com/udp-edt/timetable-cpsat/internal/logging"
	"github.com/udp-edt/timetable-cpsat/internal/model"
	"github.com/udp-edt/timetable-cpsat/internal/store"
)

type disabledFamiliesFlag []constraints.Family

func (d *disabledFamiliesFlag) String() string {
	names := make([]string, len(*d))
	for i, f := range *d {
		names[i] = string(f)
	}
	return strings.Join(names, ",")
}

func (d *disabledFamiliesFlag) Set(value string) error {
	*d = append(*d, constraints.Family(value))
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	week := flag.Int("week", -1, "ISO week id to schedule (required)")
	dataDir := flag.String("data-dir", "data/input", "directory containing rooms.csv, teachers.json, groups.json, sessions.json, availability.json")
	timeBudget := flag.Duration("time-budget", 0, "override the solver time budget (e.g. 2m); 0 keeps the configured default")
	workers := flag.Int("workers", 0, "override the solver worker count; 0 keeps the configured default")
	var disabledFamilies disabledFamiliesFlag
	flag.Var(&disabledFamilies, "disable-family", "disable a constraint family by name (repeatable); for manual infeasibility probing")
	flag.Parse()

	if *week < 0 {
		fmt.Fprintln(os.Stderr, "timetable: --week is required")
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "timetable: loading configuration: %v\n", err)
		return 2
	}

	log, err := logging.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "timetable: constructing logger: %v\n", err)
		return 2
	}
	defer log.Sync()

	modelCfg := cfg.ModelConfig()
	if *timeBudget > 0 {
		modelCfg.TimeBudget = *timeBudget
	}
	if *workers > 0 {
		modelCfg.Workers = *workers
	}

	src := store.NewFileSource(*dataDir, modelCfg.Days, modelCfg.SlotsPerDay, modelCfg.LunchWindow)

	opts := engine.Options{WeekID: *week, DisabledFamilies: []constraints.Family(disabledFamilies)}

	result, err := engine.Run(context.Background(), src, modelCfg, opts, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "timetable: %v\n", err)
		return result.Status.ExitCode()
	}

	report(result)
	return result.Status.ExitCode()
}

func report(result engine.Result) {
	switch result.Status {
	case model.StatusOK:
		fmt.Printf("solved: run %s, %d sessions assigned\n", result.Run.RunID, len(result.Run.Assignments))
	case model.StatusStaticInfeasible:
		fmt.Println("feasibility diagnostic found problems before the solver ran:")
		for _, p := range result.Diagnostic.NoValidStart {
			fmt.Printf("  - session %s (duration %d) has no valid start in the slot grid\n", p.ExternalID, p.Duration)
		}
		for _, p := range result.Diagnostic.NoAdequateRoom {
			fmt.Printf("  - session %s needs %d seats, largest room holds %d\n", p.ExternalID, p.GroupSize, p.MaxRoom)
		}
		for _, p := range result.Diagnostic.GroupOverbooked {
			fmt.Printf("  - group %s needs %d slots, only %d usable\n", p.GroupName, p.Required, p.UsableSlots)
		}
	case model.StatusSolverInfeasible:
		fmt.Println("solver proved infeasibility with all hard families enabled")
		if result.Solve.Diagnosis != nil {
			fmt.Printf("bisection diagnostic: disabling %v made the instance feasible\n", result.Solve.Diagnosis.DisabledFamilies)
		} else {
			fmt.Println("bisection diagnostic exhausted singles, pairs and triples without finding a feasible combination")
		}
	case model.StatusSolverTimeout:
		fmt.Println("solver exhausted its time budget with no feasible solution and no infeasibility proof")
	case model.StatusSolverError:
		fmt.Println("solver engine reported an internal error")
	}
}
