package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/limaJavier/allocation/pkg/model"
	"github.com/limaJavier/allocation/pkg/sat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const timeLimit = 30 * time.Second

var smallInstance = InstanceParameters{
	Students:          8,
	Courses:           6,
	SectionsPerCourse: 2,
	Preferred:         5,
	Slack:             2,
	ClashGroups:       2,
	HeldRatio:         0.2,
}

func TestGenerateInstance(t *testing.T) {
	config := model.DefaultConfig()

	t.Run("Instance is consistent", func(t *testing.T) {
		//** Act
		instance, input := generateInstance(rand.New(rand.NewSource(7)), smallInstance, config, "random-1")

		//** Assert
		require.NoError(t, input.Validate())
		assert.Equal(t, "random-1", instance.Name)
		assert.Equal(t, 12, instance.Sections)
		assert.Len(t, input.Capacities, 12)
		assert.Equal(t, 8*5*2, instance.Preferences)
		assert.Len(t, input.Preferences.Students(), 8)
		for _, student := range input.Preferences.Students() {
			assert.Len(t, input.Preferences.CoursesOf(student), 5)
		}
		for _, edge := range input.Clashes.Edges() {
			assert.True(t, input.Clashes.Clash(edge[1], edge[0]))
			assert.Contains(t, input.Capacities, edge[0])
		}
	})

	t.Run("Same seed, same instance", func(t *testing.T) {
		_, first := generateInstance(rand.New(rand.NewSource(3)), smallInstance, config, "a")
		_, second := generateInstance(rand.New(rand.NewSource(3)), smallInstance, config, "a")

		assert.Equal(t, first.Capacities, second.Capacities)
		assert.Equal(t, first.Held, second.Held)
		assert.Equal(t, first.Clashes.Edges(), second.Clashes.Edges())
	})
}

func TestMeasure(t *testing.T) {
	config := model.DefaultConfig()
	random := rand.New(rand.NewSource(11))
	gini := namedOptimizer{name: "gini", optimizer: sat.NewGiniOptimizer()}
	linear := namedOptimizer{name: "gini-linear", optimizer: sat.NewLinearSearchOptimizer(sat.NewGiniSolver())}

	for index := range 5 {
		instance, input := generateInstance(random, smallInstance, config, fmt.Sprintf("random-%d", index+1))
		t.Run(instance.Name, func(t *testing.T) {
			//** Act
			incremental := measure(gini, instance, input, config, timeLimit)
			search := measure(linear, instance, input, config, timeLimit)

			//** Assert
			assert.Equal(t, incremental.Result, search.Result)
			assert.Equal(t, incremental.Objective, search.Objective)
			assert.Equal(t, incremental.Variables, search.Variables)
			assert.Contains(t, []string{"solved", "infeasible"}, incremental.Result)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		allocation model.Allocation
		err        error
		expected   ResultType
	}{
		{name: "Optimal", allocation: model.Allocation{Optimal: true}, expected: solved},
		{name: "Interrupted", allocation: model.Allocation{Optimal: false}, expected: timeout},
		{name: "Infeasible", err: model.ErrInfeasible, expected: infeasible},
		{name: "Deadline", err: fmt.Errorf("%w: %w", model.ErrIndeterminate, context.DeadlineExceeded), expected: timeout},
		{name: "Failure", err: fmt.Errorf("%w: %w", model.ErrIndeterminate, errors.New("broken pipe")), expected: failed},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, classify(test.allocation, test.err))
		})
	}
}

func TestToCsv(t *testing.T) {
	//** Arrange
	path := filepath.Join(t.TempDir(), "benchmark_results.csv")
	results := []*BenchmarkResult{
		{Solver: "gini", Instance: "random-1", Students: 8, Duration: 12, Objective: 40, Optimal: true, Result: "solved"},
	}

	//** Act
	err := toCsv(path, results)

	//** Assert
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Solver,Instance,Students,Courses,Sections,Preferences,Variables,Constraints,Duration(ms),Objective,Optimal,Result\n"+
		"gini,random-1,8,0,0,0,0,0,12,40,true,solved\n", string(content))
}
