package sat

import "context"

type SATSolver interface {
	// Returns a solution of the SAT instance if satisfiable, else returns nil (these are valid outputs where error shall be nil).
	// Cancelling the context aborts the search and returns the context's error
	Solve(ctx context.Context, sat SAT) (SATSolution, error)
}
