package sat

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

type kissatSolver struct {
	path string
}

// NewKissatSolver runs the kissat executable at path, feeding the instance through standard input
func NewKissatSolver(path string) SATSolver {
	return &kissatSolver{path: path}
}

func (solver *kissatSolver) Solve(ctx context.Context, sat SAT) (SATSolution, error) {
	cmd := exec.CommandContext(ctx, solver.path, "-q", "--relaxed")
	cmd.Stdin = strings.NewReader(sat.ToDIMACS())

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	} else if cmd.ProcessState == nil {
		return nil, fmt.Errorf("cannot start %v: %w", solver.path, err)
	}
	switch code := cmd.ProcessState.ExitCode(); {
	case code == exitUnsatisfiable:
		return nil, nil
	case err != nil && code != exitSatisfiable:
		return nil, fmt.Errorf("an error occurred during kissat execution: %v : %v", err, stderr.String())
	}

	return parseSolution(stdOut.String())
}
