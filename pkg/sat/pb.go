package sat

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type ConstraintKind int

const (
	// At least one literal is true
	ClauseKind ConstraintKind = iota
	// No more than Bound literals are true
	AtMostKind
	// Exactly Bound literals are true
	ExactlyKind
)

func (kind ConstraintKind) String() string {
	switch kind {
	case ClauseKind:
		return "clause"
	case AtMostKind:
		return "at-most"
	case ExactlyKind:
		return "exactly"
	}
	return fmt.Sprintf("kind(%d)", int(kind))
}

// Constraint is a cardinality constraint over DIMACS-style literals. A clause is the cardinality constraint "at least one"
type Constraint struct {
	Kind     ConstraintKind
	Literals []int64
	Bound    int
}

// Term contributes Weight to the objective whenever Literal is true
type Term struct {
	Literal int64
	Weight  int
}

// PB is a pseudo-boolean optimization problem: boolean variables, cardinality constraints and a linear objective to be maximized
type PB struct {
	Variables   uint64
	Constraints []Constraint
	Objective   []Term
	// Ceiling, when positive, is an upper bound of the objective known to the caller. The search stops as soon as a
	// model reaches it
	Ceiling int
}

func Clause(literals ...int64) Constraint {
	return Constraint{Kind: ClauseKind, Literals: literals, Bound: 1}
}

func AtMost(literals []int64, bound int) Constraint {
	return Constraint{Kind: AtMostKind, Literals: literals, Bound: bound}
}

func Exactly(literals []int64, bound int) Constraint {
	return Constraint{Kind: ExactlyKind, Literals: literals, Bound: bound}
}

// Implies encodes a => b
func Implies(a, b int64) Constraint {
	return Clause(-a, b)
}

// Nand forbids a and b from being simultaneously true
func Nand(a, b int64) Constraint {
	return Clause(-a, -b)
}

// False forces the literal to be false
func False(a int64) Constraint {
	return Clause(-a)
}

// NewVariable allocates a fresh variable and returns its positive literal
func (pb *PB) NewVariable() int64 {
	pb.Variables++
	return int64(pb.Variables)
}

func (pb *PB) Add(constraints ...Constraint) {
	pb.Constraints = append(pb.Constraints, constraints...)
}

func (pb *PB) Maximize(literal int64, weight int) {
	pb.Objective = append(pb.Objective, Term{Literal: literal, Weight: weight})
}

// Validate checks that every literal refers to an allocated variable and that bounds and weights are non-negative
func (pb PB) Validate() error {
	valid := func(literal int64) bool {
		return literal != 0 && uint64(abs(literal)) <= pb.Variables
	}
	for i, constraint := range pb.Constraints {
		if constraint.Bound < 0 {
			return fmt.Errorf("constraint %d (%v) has a negative bound: %d", i, constraint.Kind, constraint.Bound)
		}
		if literal, found := lo.Find(constraint.Literals, func(literal int64) bool { return !valid(literal) }); found {
			return fmt.Errorf("constraint %d (%v) references unknown literal %d", i, constraint.Kind, literal)
		}
	}
	if pb.Ceiling < 0 {
		return fmt.Errorf("negative objective ceiling: %d", pb.Ceiling)
	}
	for i, term := range pb.Objective {
		if !valid(term.Literal) {
			return fmt.Errorf("objective term %d references unknown literal %d", i, term.Literal)
		} else if term.Weight < 0 {
			return fmt.Errorf("objective term %d has a negative weight: %d", i, term.Weight)
		}
	}
	return nil
}

// Evaluate returns the objective value reached by values and whether values satisfy every constraint
func (pb PB) Evaluate(values []bool) (objective int, satisfied bool) {
	truth := func(literal int64) bool {
		if literal > 0 {
			return values[literal]
		}
		return !values[-literal]
	}

	satisfied = lo.EveryBy(pb.Constraints, func(constraint Constraint) bool {
		count := lo.CountBy(constraint.Literals, truth)
		switch constraint.Kind {
		case ClauseKind:
			return count >= 1
		case AtMostKind:
			return count <= constraint.Bound
		default:
			return count == constraint.Bound
		}
	})
	objective = lo.SumBy(pb.Objective, func(term Term) int {
		if truth(term.Literal) {
			return term.Weight
		}
		return 0
	})
	return objective, satisfied
}

// ToOPB renders the problem in the OPB format of the pseudo-boolean competitions. The objective is negated since OPB minimizes
func (pb PB) ToOPB() string {
	var builder strings.Builder
	opbLiteral := func(literal int64) string {
		if literal < 0 {
			return fmt.Sprintf("~x%d", -literal)
		}
		return fmt.Sprintf("x%d", literal)
	}

	fmt.Fprintf(&builder, "* #variable= %d #constraint= %d\n", pb.Variables, len(pb.Constraints))
	if len(pb.Objective) > 0 {
		builder.WriteString("min:")
		for _, term := range pb.Objective {
			fmt.Fprintf(&builder, " %+d %v", -term.Weight, opbLiteral(term.Literal))
		}
		builder.WriteString(" ;\n")
	}
	for _, constraint := range pb.Constraints {
		coefficient, relation, bound := 1, ">=", constraint.Bound
		switch constraint.Kind {
		case AtMostKind:
			coefficient, bound = -1, -constraint.Bound
		case ExactlyKind:
			relation = "="
		}
		for _, literal := range constraint.Literals {
			fmt.Fprintf(&builder, "%+d %v ", coefficient, opbLiteral(literal))
		}
		fmt.Fprintf(&builder, "%v %d ;\n", relation, bound)
	}
	return builder.String()
}

func abs(value int64) int64 {
	if value < 0 {
		return -value
	}
	return value
}
