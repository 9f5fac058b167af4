package sat

import (
	"context"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

// How often a background solve is checked for completion or cancellation
const giniPollInterval = 10 * time.Millisecond

type giniSolver struct{}

// NewGiniSolver returns an in-process CDCL solver
func NewGiniSolver() SATSolver {
	return &giniSolver{}
}

func (solver *giniSolver) Solve(ctx context.Context, sat SAT) (SATSolution, error) {
	g := gini.NewVc(int(sat.Variables), len(sat.Clauses))
	for _, clause := range sat.Clauses {
		for _, literal := range clause {
			g.Add(z.Dimacs2Lit(int(literal)))
		}
		g.Add(z.LitNull)
	}

	switch giniSolve(ctx, g) {
	case 1:
		solution := make(SATSolution, 0, sat.Variables)
		for v := uint64(1); v <= sat.Variables; v++ {
			literal := int64(v)
			if !giniValue(g, z.Var(v).Pos()) {
				literal = -literal
			}
			solution = append(solution, literal)
		}
		return solution, nil
	case -1:
		return nil, nil
	}
	return nil, ctx.Err()
}

type giniOptimizer struct{}

// NewGiniOptimizer returns an in-process optimizer which keeps a single incremental gini instance and tries objective
// bounds through assumptions
func NewGiniOptimizer() Optimizer {
	return &giniOptimizer{}
}

func (optimizer *giniOptimizer) Optimize(ctx context.Context, pb PB) (Result, error) {
	if err := pb.Validate(); err != nil {
		return Result{Status: Unknown}, err
	}

	e := encode(pb)
	g := gini.NewV(e.circuit.Len())
	e.load(g)

	return maximize(ctx, e, func(bound int) (int, []bool, error) {
		g.Assume(e.require(g, e.atLeast(bound)))
		switch giniSolve(ctx, g) {
		case 1:
			return 1, e.values(func(m z.Lit) bool { return giniValue(g, m) }), nil
		case -1:
			return -1, nil, nil
		}
		return 0, nil, ctx.Err()
	})
}

// giniSolve runs g in the background until it answers (1 sat, -1 unsat) or ctx is done (0)
func giniSolve(ctx context.Context, g *gini.Gini) int {
	if ctx.Err() != nil {
		return 0
	}

	run := g.GoSolve()
	ticker := time.NewTicker(giniPollInterval)
	defer ticker.Stop()
	for {
		if result, done := run.Test(); done {
			return result
		}
		select {
		case <-ctx.Done():
			return run.Stop()
		case <-ticker.C:
		}
	}
}

// Variables never mentioned in a clause are unknown to gini and read as false
func giniValue(g *gini.Gini, m z.Lit) bool {
	if m.Var() > g.MaxVar() {
		return false
	}
	return g.Value(m)
}
