package model

import (
	"maps"
	"slices"

	"github.com/limaJavier/allocation/pkg/sat"
)

// constraintState is shared read-only by every constraint family
type constraintState struct {
	input  Input
	config Config
	model  *Model
}

// buildConstraints runs every family on its own goroutine and concatenates their output in family order
func buildConstraints(state constraintState, families []func(state constraintState) []sat.Constraint) []sat.Constraint {
	type familyOutput struct {
		index       int
		constraints []sat.Constraint
	}

	constraintsChannel := make(chan familyOutput) // Channel to collect constraints
	for index, family := range families {
		go func() {
			constraintsChannel <- familyOutput{index: index, constraints: family(state)}
		}()
	}

	outputs := make([][]sat.Constraint, len(families))
	for range families {
		output := <-constraintsChannel
		outputs[output.index] = output.constraints
	}
	close(constraintsChannel)

	return slices.Concat(outputs...)
}

// Section-chosen => course-chosen, course-chosen => OR(section-chosen) and, if configured, at most one section per course
func linkConstraints(state constraintState) []sat.Constraint {
	constraints := make([]sat.Constraint, 0)
	for _, student := range state.model.Students {
		for _, course := range state.model.coursesOf[student] {
			key := StudentCourse{Student: student, Course: course}
			courseVariable, sectionVariables := state.model.Courses[key], state.model.sectionVariables(key)

			for _, sectionVariable := range sectionVariables {
				constraints = append(constraints, sat.Implies(sectionVariable, courseVariable))
			}
			constraints = append(constraints, sat.Clause(append([]int64{-courseVariable}, sectionVariables...)...))

			if state.config.SingleSectionPerCourse && len(sectionVariables) > 1 {
				constraints = append(constraints, sat.AtMost(sectionVariables, 1))
			}
		}
	}
	return constraints
}

// A student with feasible courses takes exactly as many as needed to reach MaxCourses; one already there takes none
func loadConstraints(state constraintState) []sat.Constraint {
	constraints := make([]sat.Constraint, 0)
	for _, student := range state.model.Students {
		variables := state.model.courseVariables(student)
		if len(variables) == 0 {
			continue
		}

		held := len(state.input.Held[student])
		if held >= state.config.MaxCourses {
			for _, variable := range variables {
				constraints = append(constraints, sat.False(variable))
			}
			continue
		}
		constraints = append(constraints, sat.Exactly(variables, state.config.MaxCourses-held))
	}
	return constraints
}

// No section takes more students than its capacity
func capacityConstraints(state constraintState) []sat.Constraint {
	variables := make(map[Section][]int64)
	for _, student := range state.model.Students {
		for _, course := range state.model.coursesOf[student] {
			for _, section := range state.model.Candidates[StudentCourse{Student: student, Course: course}] {
				variables[section] = append(variables[section], state.model.Sections[StudentSection{Student: student, Section: section}])
			}
		}
	}

	constraints := make([]sat.Constraint, 0)
	for _, section := range slices.SortedFunc(maps.Keys(variables), CompareSections) {
		capacity := state.input.Capacities[section]
		switch {
		case capacity <= 0:
			for _, variable := range variables[section] {
				constraints = append(constraints, sat.False(variable))
			}
		case len(variables[section]) > capacity: // Otherwise the constraint can never bind
			constraints = append(constraints, sat.AtMost(variables[section], capacity))
		}
	}
	return constraints
}

// Two clashing candidates of a student are never both chosen; a candidate clashing with a held section is never chosen
func clashConstraints(state constraintState) []sat.Constraint {
	constraints := make([]sat.Constraint, 0)
	for _, student := range state.model.Students {
		held := state.input.Held[student]
		candidates := make([]Section, 0)
		for _, course := range state.model.coursesOf[student] {
			candidates = append(candidates, state.model.Candidates[StudentCourse{Student: student, Course: course}]...)
		}
		variable := func(section Section) int64 {
			return state.model.Sections[StudentSection{Student: student, Section: section}]
		}

		for i, section1 := range candidates {
			if state.input.Clashes.ClashesWithAny(section1, held) {
				constraints = append(constraints, sat.False(variable(section1)))
			}
			for _, section2 := range candidates[i+1:] {
				if state.input.Clashes.Clash(section1, section2) {
					constraints = append(constraints, sat.Nand(variable(section1), variable(section2)))
				}
			}
		}
	}
	return constraints
}
