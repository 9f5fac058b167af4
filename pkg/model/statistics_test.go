package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStatistics(t *testing.T) {
	a, b, c, h := Section{"A-1", 1}, Section{"B-1", 1}, Section{"C-1", 1}, Section{"H-1", 1}

	t.Run("Zero weight assignments", func(t *testing.T) {
		//** Arrange
		preferences := NewEmptyPreferenceIndex()
		preferences.Set("s1", a, 0)
		preferences.Set("s2", b, 9)
		preferences.Set("s2", c, 7)
		held := HeldSections{"s3": {h}}
		assignment := Assignment{
			"s1": {a},
			"s2": {b, c},
			"s3": {h},
			"s4": {},
		}

		//** Act
		statistics := ComputeStatistics(assignment, preferences, NewClashGraph(), held)

		//** Assert
		assert.Equal(t, Statistics{
			TotalStudents:              4,
			AlreadyTakenStudents:       1,
			EligibleStudents:           3,
			StudentsWithNewAssignments: 2,
			StudentsWithPrefNew:        1,
			StudentsWithoutPrefNew:     1,
			TotalNewCoursesAssigned:    3,
			TotalPrefWeightAssignedNew: 16,
			AvgWeightPerNewAssignment:  16.0 / 3,
			AvgWeightPerEligible:       16.0 / 3,
			AvgWeightPerStudentWithNew: 8,
			TotalClashesFoundNew:       0,
		}, statistics)
	})

	t.Run("Clashes and held sections", func(t *testing.T) {
		//** Arrange
		preferences := NewEmptyPreferenceIndex()
		preferences.Set("s1", a, 11)
		preferences.Set("s1", b, 9)
		preferences.Set("s1", c, 7)
		clashes := NewClashGraph()
		clashes.Add(a, b)
		clashes.Add(b, c)
		clashes.Add(a, h)
		held := HeldSections{"s1": {h}}

		//** Act
		statistics := ComputeStatistics(Assignment{"s1": {a, b, c, h}}, preferences, clashes, held)

		//** Assert
		// Only clashes among new sections count, each once
		assert.Equal(t, 2, statistics.TotalClashesFoundNew)
		assert.Equal(t, 3, statistics.TotalNewCoursesAssigned)
		assert.Equal(t, 27, statistics.TotalPrefWeightAssignedNew)
		assert.Zero(t, statistics.EligibleStudents)
		assert.Zero(t, statistics.AvgWeightPerEligible)
	})

	t.Run("Empty assignment", func(t *testing.T) {
		statistics := ComputeStatistics(Assignment{}, NewEmptyPreferenceIndex(), NewClashGraph(), HeldSections{})
		assert.Equal(t, Statistics{}, statistics)
	})
}

// The objective credits a course with its best candidate while statistics weigh the realized section
func TestObjectiveAndRealizedWeightDiverge(t *testing.T) {
	for name, optimizer := range optimizers() {
		t.Run(name, func(t *testing.T) {
			//** Arrange
			config := DefaultConfig()
			config.MaxCourses = 1
			input := newInput(t, config, map[string]int{"A-1-1": 1, "A-1-2": 1}, []ranked{
				{"s1", "A-1-1", 1}, {"s1", "A-1-2", 3},
				{"s2", "A-1-1", 1},
			})

			//** Act
			allocation, err := NewSATAllocator(optimizer, config, nil).Allocate(context.Background(), input)
			require.NoError(t, err)
			statistics := ComputeStatistics(allocation.Assignment, input.Preferences, input.Clashes, input.Held)

			//** Assert
			assert.Equal(t, []Section{{"A-1", 2}}, allocation.Assignment["s1"])
			assert.Equal(t, []Section{{"A-1", 1}}, allocation.Assignment["s2"])
			assert.Equal(t, 22, allocation.Objective)
			assert.Equal(t, 18, statistics.TotalPrefWeightAssignedNew)
		})
	}
}
