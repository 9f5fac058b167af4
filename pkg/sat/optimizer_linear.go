package sat

import (
	"context"
	"slices"

	"github.com/go-air/gini/z"
)

type linearSearchOptimizer struct {
	solver SATSolver
}

// NewLinearSearchOptimizer compiles the PB into CNF once and asks solver for ever better models. Every call gets the base
// instance, the gates of the objective bound under test and a unit clause asserting that bound
func NewLinearSearchOptimizer(solver SATSolver) Optimizer {
	return &linearSearchOptimizer{solver: solver}
}

func (optimizer *linearSearchOptimizer) Optimize(ctx context.Context, pb PB) (Result, error) {
	if err := pb.Validate(); err != nil {
		return Result{Status: Unknown}, err
	}

	e := encode(pb)
	collector := &cnfCollector{}
	e.load(collector)

	return maximize(ctx, e, func(bound int) (int, []bool, error) {
		goal := e.require(collector, e.atLeast(bound))
		instance := collector.snapshot(e)
		instance.Clauses = append(slices.Clip(instance.Clauses), []int64{int64(goal.Dimacs())})

		solution, err := optimizer.solver.Solve(ctx, instance)
		if err != nil {
			return 0, nil, err
		} else if solution == nil {
			return -1, nil, nil
		}

		table := solution.Values(instance.Variables)
		return 1, e.values(func(m z.Lit) bool {
			if m.IsPos() {
				return table[m.Var()]
			}
			return !table[m.Var()]
		}), nil
	})
}
