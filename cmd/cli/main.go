package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/limaJavier/allocation/internal/config"
	"github.com/limaJavier/allocation/internal/csvio"
	"github.com/limaJavier/allocation/internal/logger"
	"github.com/limaJavier/allocation/pkg/model"
	"github.com/limaJavier/allocation/pkg/sat"
	"go.uber.org/zap"
)

const (
	exitSuccess       = 0
	exitInput         = 1
	exitInfeasible    = 2
	exitIndeterminate = 3
)

var (
	validSolvers = []string{"gini", "kissat", "minisat"}
	// Keys of the external solvers in the executables file
	executableKeys = map[string]string{
		"kissat":  "kissatPath",
		"minisat": "minisatPath",
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one allocation and returns the process exit code
func run(ctx context.Context, args []string, stderr io.Writer) int {
	errLog := log.New(stderr, "", 0)

	// Define arguments
	flags := flag.NewFlagSet("allocate", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var output string
	flags.StringVar(&output, "o", "", "Path of the assignments CSV, where \"course_assignments.csv\" is the default")
	flags.StringVar(&output, "output", "", "Same as -o")
	fixture := flags.Bool("fixture", false, "Read the bundled fixture data set instead of the real one")
	solverName := flags.String("solver", "", "Solver to use. Allowed values are: \"gini\", \"kissat\", \"minisat\", where \"gini\" is the default")
	timeout := flags.Duration("timeout", 0, "Stop searching after this long and keep the best allocation found, where SOLVER.TIMEOUT (5m unless configured) is the default")
	modelPath := flags.String("model", "", "Also write the pseudo-boolean model in OPB format to this path")
	configPath := flags.String("config", "", "Configuration file (yaml, json or toml)")
	if err := flags.Parse(args); err != nil {
		return exitInput
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		errLog.Printf("cannot load configuration: %v", err)
		return exitInput
	}
	if output != "" {
		cfg.Output = output
	}
	if *solverName != "" {
		cfg.Solver.Name = strings.ToLower(*solverName)
	}
	if *timeout > 0 {
		cfg.Solver.Timeout = *timeout
	}

	// Validate arguments
	if !slices.Contains(validSolvers, cfg.Solver.Name) {
		errLog.Printf("%v is not a valid solver", cfg.Solver.Name)
		return exitInput
	} else if cfg.Solver.Timeout < 0 {
		errLog.Printf("timeout must not be negative: %v", cfg.Solver.Timeout)
		return exitInput
	}

	zapLogger, err := logger.New(cfg)
	if err != nil {
		errLog.Printf("cannot build logger: %v", err)
		return exitInput
	}
	defer zapLogger.Sync()

	// Extract input
	sections, preferences, held, clashes := cfg.Input.Paths(*fixture)
	input, err := csvio.LoadInput(sections, preferences, held, clashes, cfg.Allocation, zapLogger)
	if err != nil {
		zapLogger.Error("cannot load input", zap.Error(err))
		return exitInput
	}

	if *modelPath != "" {
		opb := model.BuildModel(input, cfg.Allocation).PB.ToOPB()
		if err := os.WriteFile(*modelPath, []byte(opb), 0666); err != nil {
			zapLogger.Error("cannot write model", zap.String("file", *modelPath), zap.Error(err))
			return exitInput
		}
		zapLogger.Info("model written", zap.String("file", *modelPath))
	}

	// Initialize engines
	optimizer, err := newOptimizer(cfg.Solver)
	if err != nil {
		zapLogger.Error("cannot initialize solver", zap.String("solver", cfg.Solver.Name), zap.Error(err))
		return exitInput
	}
	allocator := model.NewSATAllocator(optimizer, cfg.Allocation, zapLogger)

	if cfg.Solver.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Solver.Timeout)
		defer cancel()
	}

	// Build allocation
	start := time.Now()
	allocation, err := allocator.Allocate(ctx, input)
	switch {
	case errors.Is(err, model.ErrInfeasible):
		zapLogger.Error("allocation is infeasible, nothing was written", zap.Uint64("variables", allocation.Variables), zap.Int("constraints", allocation.Constraints))
		return exitInfeasible
	case errors.Is(err, model.ErrIndeterminate):
		zapLogger.Error("solver gave no answer, nothing was written", zap.Error(err))
		return exitIndeterminate
	case err != nil:
		zapLogger.Error("cannot allocate", zap.Error(err))
		return exitInput
	}

	// Verify allocation correctness
	if err := allocator.Verify(allocation.Assignment, input); err != nil {
		zapLogger.Error("allocation failed verification, nothing was written", zap.Error(err))
		return exitIndeterminate
	}

	if err := csvio.ExportAssignments(cfg.Output, allocation.Assignment, cfg.Allocation.MaxCourses, input.Label); err != nil {
		zapLogger.Error("cannot write assignments", zap.Error(err))
		return exitInput
	}

	statistics := model.ComputeStatistics(allocation.Assignment, input.Preferences, input.Clashes, input.Held)
	zapLogger.Info("allocation written",
		zap.String("file", cfg.Output),
		zap.Int("objective", allocation.Objective),
		zap.Bool("optimal", allocation.Optimal),
		zap.Uint64("variables", allocation.Variables),
		zap.Int("constraints", allocation.Constraints),
		zap.Duration("elapsed", time.Since(start)),
		statistics.Field(),
	)
	return exitSuccess
}

func newOptimizer(solver config.SolverConfig) (sat.Optimizer, error) {
	if solver.Name == "gini" {
		return sat.NewGiniOptimizer(), nil
	}

	sat.ConfigPath = solver.Executables
	path, err := sat.ExecutablePath(executableKeys[solver.Name])
	if err != nil {
		return nil, err
	}
	var decider sat.SATSolver
	switch solver.Name {
	case "kissat":
		decider = sat.NewKissatSolver(path)
	case "minisat":
		decider = sat.NewMinisatSolver(path)
	default:
		return nil, fmt.Errorf("unknown solver %v", solver.Name)
	}
	return sat.NewLinearSearchOptimizer(decider), nil
}
