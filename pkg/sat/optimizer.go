package sat

import (
	"context"
	"fmt"
)

type Status int

const (
	// The solver could not determine an answer (canceled, timed out or failed)
	Unknown Status = iota
	Satisfiable
	Unsatisfiable
)

func (status Status) String() string {
	switch status {
	case Satisfiable:
		return "SATISFIABLE"
	case Unsatisfiable:
		return "UNSATISFIABLE"
	}
	return "UNKNOWN"
}

type Result struct {
	Status Status
	// Optimal is set when the search proved that no better objective exists
	Optimal   bool
	Objective int
	// Values[v] is the truth value of variable v (Values[0] is unused). Only meaningful when Status is Satisfiable
	Values []bool
}

// Value returns the truth value of a DIMACS-style literal under the result's model
func (result Result) Value(literal int64) bool {
	if literal < 0 {
		return !result.Values[-literal]
	}
	return result.Values[literal]
}

type Optimizer interface {
	// Optimize maximizes the objective of pb. If ctx is done after a model was found, the best model so far is returned
	// as Satisfiable but not Optimal; if no model was found, the result is Unknown and ctx's error is returned
	Optimize(ctx context.Context, pb PB) (Result, error)
}

// search shared by the optimizers: decide(bound) answers whether a model with objective >= bound exists and returns
// that model. The first bound is 0 and later bounds bisect the range between the best model and the largest objective
func maximize(ctx context.Context, e *encoding, decide func(bound int) (int, []bool, error)) (Result, error) {
	result := Result{Status: Unknown}
	// A better model can only have an objective within [low, high]
	low, high := 0, e.maximum
	bound := 0
	for {
		status, values, err := decide(bound)
		if err != nil {
			if result.Status == Satisfiable && ctx.Err() != nil {
				return result, nil // Deadline hit after a feasible model: keep it
			}
			return Result{Status: Unknown}, err
		}

		switch status {
		case -1:
			if result.Status == Unknown {
				return Result{Status: Unsatisfiable}, nil
			}
			high = bound - 1
		case 1:
			result.Status = Satisfiable
			result.Values = values
			result.Objective = objectiveOf(e, values)
			low = result.Objective + 1
		default:
			if result.Status == Satisfiable {
				return result, nil
			}
			if err := ctx.Err(); err != nil {
				return Result{Status: Unknown}, err
			}
			return Result{Status: Unknown}, fmt.Errorf("solver returned an undetermined answer")
		}

		if low > high {
			result.Optimal = true
			return result, nil
		}
		bound = low + (high-low)/2
	}
}

func objectiveOf(e *encoding, values []bool) int {
	objective := 0
	for _, term := range e.terms {
		if (term.Literal > 0 && values[term.Literal]) || (term.Literal < 0 && !values[-term.Literal]) {
			objective += term.Weight
		}
	}
	return objective
}
