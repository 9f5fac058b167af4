package sat

import (
	"testing"

	"github.com/go-air/gini/z"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

// The objective bound literal must agree with the weighted sum under every valuation of the terms
func TestAtLeast(t *testing.T) {
	cases := map[string][]int{
		"unit weights":   {1, 1, 1, 1},
		"rank weights":   {11, 9, 7, 4, 3},
		"common divisor": {6, 9, 12},
		"sparse bits":    {1, 16, 5},
		"single term":    {4},
	}

	for name, weights := range cases {
		t.Run(name, func(t *testing.T) {
			//** Arrange
			pb := PB{Variables: uint64(len(weights))}
			for i, weight := range weights {
				pb.Maximize(int64(i+1), weight)
			}
			e := encode(pb)
			maximum := lo.Sum(weights)
			goals := lo.Times(maximum+2, func(bound int) z.Lit { return e.atLeast(bound) })

			assert.Equal(t, maximum, e.maximum)
			for mask := range 1 << len(weights) {
				//** Act
				values := make([]bool, e.circuit.Len())
				objective := 0
				for i, weight := range weights {
					if mask>>i&1 == 1 {
						values[e.inputs[i+1].Var()] = true
						objective += weight
					}
				}
				e.circuit.Eval(values)

				//** Assert
				for bound, goal := range goals {
					holds := values[goal.Var()] == goal.IsPos()
					assert.Equal(t, objective >= bound, holds, "valuation %b, bound %d", mask, bound)
				}
			}
		})
	}
}

func TestEncodeCeiling(t *testing.T) {
	pb := PB{Variables: 2, Ceiling: 5}
	pb.Maximize(1, 4)
	pb.Maximize(2, 6)

	assert.Equal(t, 5, encode(pb).maximum)
	pb.Ceiling = 20
	assert.Equal(t, 10, encode(pb).maximum)
}
