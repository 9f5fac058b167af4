package sat

import (
	"context"
	"math/rand"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGini(t *testing.T) {
	solver := NewGiniSolver()
	t.Run("Satisfiable instances", func(t *testing.T) {
		satisfiableExecution(t, solver)
	})
	t.Run("Unsatisfiable instances", func(t *testing.T) {
		unsatisfiableExecution(t, solver)
	})
}

func TestKissat(t *testing.T) {
	path, err := ExecutablePath("kissatPath")
	if err != nil {
		t.Skipf("kissat is not configured: %v", err)
	}
	solver := NewKissatSolver(path)
	t.Run("Satisfiable instances", func(t *testing.T) {
		satisfiableExecution(t, solver)
	})
	t.Run("Unsatisfiable instances", func(t *testing.T) {
		unsatisfiableExecution(t, solver)
	})
}

func TestMinisat(t *testing.T) {
	path, err := ExecutablePath("minisatPath")
	if err != nil {
		t.Skipf("minisat is not configured: %v", err)
	}
	solver := NewMinisatSolver(path)
	t.Run("Satisfiable instances", func(t *testing.T) {
		satisfiableExecution(t, solver)
	})
	t.Run("Unsatisfiable instances", func(t *testing.T) {
		unsatisfiableExecution(t, solver)
	})
}

func TestGiniCancellation(t *testing.T) {
	//** Arrange
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	//** Act
	solution, err := NewGiniSolver().Solve(ctx, plantedInstance(rand.New(rand.NewSource(1)), 20, 80))

	//** Assert
	assert.Nil(t, solution)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseSolution(t *testing.T) {
	t.Run("Competition output", func(t *testing.T) {
		solution, err := parseSolution("c comment\ns SATISFIABLE\nv 1 -2 3\nv -4 0\n")
		require.NoError(t, err)
		assert.Equal(t, SATSolution{1, -2, 3, -4}, solution)
	})
	t.Run("Invalid literal", func(t *testing.T) {
		_, err := parseSolution("v 1 x 0\n")
		assert.Error(t, err)
	})
	t.Run("Minisat output", func(t *testing.T) {
		solution, err := (&minisatSolver{}).parseSolution("SAT\n-1 2 0\n")
		require.NoError(t, err)
		assert.Equal(t, SATSolution{-1, 2}, solution)
	})
}

func TestToDIMACS(t *testing.T) {
	sat := SAT{Variables: 3, Clauses: [][]int64{{1, -2}, {3}}}
	assert.Equal(t, "p cnf 3 2\n1 -2 0\n3 0\n", sat.ToDIMACS())
}

func TestValues(t *testing.T) {
	assert.Equal(t, []bool{false, true, false, true}, SATSolution{1, -2, 3}.Values(3))
}

func satisfiableExecution(t *testing.T, solver SATSolver) {
	random := rand.New(rand.NewSource(42))
	for i := range 20 {
		//** Arrange
		sat := plantedInstance(random, 10+i*5, 40+i*20)

		//** Act
		solution, err := solver.Solve(context.Background(), sat)

		//** Assert
		require.NoError(t, err)
		require.NotNil(t, solution)
		assert.True(t, assertSATSolution(sat, solution), "instance %d", i)
	}
}

func unsatisfiableExecution(t *testing.T, solver SATSolver) {
	instances := []SAT{
		{Variables: 1, Clauses: [][]int64{{1}, {-1}}},
		// Pigeonhole: 3 pigeons, 2 holes. Variable 2*p+h+1 places pigeon p in hole h
		{Variables: 6, Clauses: [][]int64{
			{1, 2}, {3, 4}, {5, 6},
			{-1, -3}, {-1, -5}, {-3, -5},
			{-2, -4}, {-2, -6}, {-4, -6},
		}},
	}
	for _, sat := range instances {
		solution, err := solver.Solve(context.Background(), sat)
		require.NoError(t, err)
		assert.Nil(t, solution)
	}
}

// plantedInstance generates a random 3-CNF which is satisfied by a hidden random assignment
func plantedInstance(random *rand.Rand, variables, clauses int) SAT {
	hidden := lo.Times(variables+1, func(_ int) bool { return random.Intn(2) == 0 })
	sat := SAT{Variables: uint64(variables)}
	for len(sat.Clauses) < clauses {
		clause := lo.Times(3, func(_ int) int64 {
			literal := int64(random.Intn(variables) + 1)
			if random.Intn(2) == 0 {
				return -literal
			}
			return literal
		})
		if lo.SomeBy(clause, func(literal int64) bool { return hidden[abs(literal)] == (literal > 0) }) {
			sat.Clauses = append(sat.Clauses, clause)
		}
	}
	return sat
}

func assertSATSolution(satInstance SAT, satSolution SATSolution) bool {
	// Make sure there are no duplicates nor contradictions
	literals := make(map[int64]bool)
	for _, literal := range satSolution {
		if literals[literal] || literals[-literal] {
			return false
		}
		literals[literal] = true
	}

	// Check that all clauses are satisfied
	for _, clause := range satInstance.Clauses {
		if !lo.SomeBy(clause, func(literal int64) bool { return literals[literal] }) {
			return false
		}
	}
	return true
}

