package sat

import (
	"fmt"
	"strings"
)

// SATSolution lists the literals of a satisfying assignment in DIMACS notation
type SATSolution []int64

// SAT is a CNF instance whose variables are numbered from 1 to Variables
type SAT struct {
	Variables uint64
	Clauses   [][]int64
}

func (s SAT) ToDIMACS() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "p cnf %d %d\n", s.Variables, len(s.Clauses))
	for _, clause := range s.Clauses {
		for _, literal := range clause {
			fmt.Fprintf(&builder, "%d ", literal)
		}
		builder.WriteString("0\n")
	}
	return builder.String()
}

// Values expands the solution into a truth table indexed by variable (index 0 is unused)
func (solution SATSolution) Values(variables uint64) []bool {
	values := make([]bool, variables+1)
	for _, literal := range solution {
		if literal > 0 && uint64(literal) <= variables {
			values[literal] = true
		}
	}
	return values
}
