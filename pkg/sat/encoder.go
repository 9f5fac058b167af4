package sat

import (
	"math/bits"

	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/samber/lo"
)

// encoding compiles a PB into a combinational circuit: clauses are kept as they are, cardinality constraints and the
// objective become sorting networks whose outputs are asserted (constraints) or assumed (objective bounds)
type encoding struct {
	circuit *logic.C
	inputs  []z.Lit // inputs[v] is the circuit literal of PB variable v (inputs[0] is unused)
	clauses [][]z.Lit
	units   []z.Lit
	terms   []Term
	maximum int // Largest reachable objective value

	// The objective divided by scale is summed in base 2: digits[i] sorts the literals whose scaled weight has bit i set
	// together with the carries of digits[i-1]. The last digit keeps its whole count
	scale  int
	digits []*logic.CardSort

	mark []int8 // Circuit nodes already handed to a solver
}

func encode(pb PB) *encoding {
	e := &encoding{
		circuit: logic.NewCCap(int(pb.Variables) + 2),
		inputs:  make([]z.Lit, pb.Variables+1),
		terms:   pb.Objective,
	}
	for v := uint64(1); v <= pb.Variables; v++ {
		e.inputs[v] = e.circuit.Lit()
	}

	for _, constraint := range pb.Constraints {
		literals := lo.Map(constraint.Literals, func(literal int64, _ int) z.Lit { return e.lit(literal) })
		switch constraint.Kind {
		case ClauseKind:
			e.clauses = append(e.clauses, literals)
		case AtMostKind:
			if constraint.Bound >= len(literals) {
				continue // Can never be violated
			}
			e.units = append(e.units, e.circuit.CardSort(literals).Leq(constraint.Bound))
		case ExactlyKind:
			card := e.circuit.CardSort(literals)
			e.units = append(e.units, card.Leq(constraint.Bound), card.Geq(constraint.Bound))
		}
	}

	e.sumObjective(pb.Objective)
	if pb.Ceiling > 0 {
		e.maximum = min(e.maximum, pb.Ceiling)
	}
	return e
}

func (e *encoding) sumObjective(terms []Term) {
	weighted := lo.Filter(terms, func(term Term, _ int) bool { return term.Weight > 0 })
	if len(weighted) == 0 {
		return
	}

	e.scale = lo.Reduce(weighted, func(divisor int, term Term, _ int) int { return gcd(divisor, term.Weight) }, 0)
	e.maximum = lo.SumBy(weighted, func(term Term) int { return term.Weight })
	width := bits.Len(uint(lo.Max(lo.Map(weighted, func(term Term, _ int) int { return term.Weight / e.scale }))))

	var carries []z.Lit
	for bit := range width {
		inputs := carries
		for _, term := range weighted {
			if (term.Weight/e.scale)>>bit&1 == 1 {
				inputs = append(inputs, e.lit(term.Literal))
			}
		}

		var digit *logic.CardSort
		if len(inputs) > 0 {
			digit = e.circuit.CardSort(inputs)
		}
		e.digits = append(e.digits, digit)

		// Every pair of true literals at this digit is one true literal at the next
		carries = nil
		if bit < width-1 {
			for count := 2; count <= len(inputs); count += 2 {
				carries = append(carries, digit.Geq(count))
			}
		}
	}
}

func (e *encoding) lit(literal int64) z.Lit {
	if literal < 0 {
		return e.inputs[-literal].Not()
	}
	return e.inputs[literal]
}

// atLeast returns a literal which is true iff the objective is greater than or equal to bound. The comparison gates are
// added to the circuit on demand, so the literal must go through require before a solver sees it
func (e *encoding) atLeast(bound int) z.Lit {
	if bound <= 0 {
		return e.circuit.T
	} else if len(e.digits) == 0 {
		return e.circuit.F
	}

	scaled := (bound + e.scale - 1) / e.scale
	top := len(e.digits) - 1
	quotient, remainder := scaled>>top, scaled&(1<<top-1)

	// Lower digits compared against the remainder from the least significant bit up
	lower := e.circuit.T
	for bit := range top {
		if remainder>>bit&1 == 1 {
			lower = e.circuit.And(e.odd(bit), lower)
		} else {
			lower = e.circuit.Or(e.odd(bit), lower)
		}
	}
	return e.circuit.Or(e.geq(top, quotient+1), e.circuit.And(e.geq(top, quotient), lower))
}

// geq is true iff at least count literals of digit are true
func (e *encoding) geq(digit, count int) z.Lit {
	if count <= 0 {
		return e.circuit.T
	} else if e.digits[digit] == nil {
		return e.circuit.F
	}
	return e.digits[digit].Geq(count)
}

// odd is true iff an odd number of literals of digit are true
func (e *encoding) odd(digit int) z.Lit {
	sorted := e.digits[digit]
	if sorted == nil {
		return e.circuit.F
	}
	exact := make([]z.Lit, 0, (sorted.N()+1)/2)
	for count := 1; count <= sorted.N(); count += 2 {
		exact = append(exact, e.circuit.And(sorted.Geq(count), sorted.Geq(count+1).Not()))
	}
	return e.circuit.Ors(exact...)
}

// load adds the clauses, the constraint networks and their assertions to dst
func (e *encoding) load(dst inter.Adder) {
	e.mark, _ = e.circuit.CnfSince(dst, nil, e.units...)
	for _, clause := range e.clauses {
		for _, literal := range clause {
			dst.Add(literal)
		}
		dst.Add(z.LitNull)
	}
	for _, unit := range e.units {
		dst.Add(unit)
		dst.Add(z.LitNull)
	}
}

// require adds to dst the part of the circuit behind m that dst has not seen yet
func (e *encoding) require(dst inter.Adder, m z.Lit) z.Lit {
	e.mark, _ = e.circuit.CnfSince(dst, e.mark, m)
	return m
}

// values reads the PB variables back from a circuit-level valuation
func (e *encoding) values(value func(z.Lit) bool) []bool {
	values := make([]bool, len(e.inputs))
	for v := 1; v < len(e.inputs); v++ {
		values[v] = value(e.inputs[v])
	}
	return values
}

// cnfCollector implements inter.Adder to materialize an encoding as a SAT instance
type cnfCollector struct {
	instance SAT
	current  []int64
}

func (collector *cnfCollector) Add(m z.Lit) {
	if m == z.LitNull {
		collector.instance.Clauses = append(collector.instance.Clauses, collector.current)
		collector.current = nil
		return
	}
	if variable := uint64(m.Var()); variable > collector.instance.Variables {
		collector.instance.Variables = variable
	}
	collector.current = append(collector.current, int64(m.Dimacs()))
}

// snapshot returns the clauses collected so far; variables created by the circuit but not mentioned in any clause
// are still declared
func (collector *cnfCollector) snapshot(e *encoding) SAT {
	instance := collector.instance
	if variables := uint64(e.circuit.Len() - 1); variables > instance.Variables {
		instance.Variables = variables
	}
	return instance
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
