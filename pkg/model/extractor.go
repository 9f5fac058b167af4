package model

import (
	"fmt"
	"slices"

	"github.com/limaJavier/allocation/pkg/sat"
)

// ExtractAssignment decodes a solver result into rosters: the chosen sections of each student merged with the held
// ones, sorted by course then section number. Every student of the model gets an entry, possibly empty
func ExtractAssignment(model Model, result sat.Result, held HeldSections) (Assignment, error) {
	switch result.Status {
	case sat.Unsatisfiable:
		return nil, ErrInfeasible
	case sat.Satisfiable:
	default:
		return nil, fmt.Errorf("%w: solver answered %v", ErrIndeterminate, result.Status)
	}
	if uint64(len(result.Values)) <= model.PB.Variables {
		return nil, fmt.Errorf("%w: solver returned %d values for %d variables", ErrIndeterminate, len(result.Values), model.PB.Variables)
	}

	selected := model.Selected(result.Value)
	assignment := make(Assignment, len(model.Students))
	for _, student := range model.Students {
		roster := make([]Section, 0, len(held[student])+len(selected[student]))
		roster = append(append(roster, held[student]...), selected[student]...)
		slices.SortFunc(roster, CompareSections)
		assignment[student] = slices.CompactFunc(roster, func(a, b Section) bool { return a == b })
	}
	return assignment, nil
}
