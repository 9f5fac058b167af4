package model

import (
	"slices"

	"github.com/limaJavier/allocation/pkg/sat"
	"github.com/samber/lo"
)

type StudentCourse struct {
	Student StudentID
	Course  CourseCode
}

type StudentSection struct {
	Student StudentID
	Section Section
}

// Model is the pseudo-boolean formulation of an allocation together with the maps from domain pairs to variables
type Model struct {
	PB sat.PB
	// Course-chosen variable of every (student, course) with at least one candidate
	Courses map[StudentCourse]int64
	// Section-chosen variable of every candidate
	Sections map[StudentSection]int64
	// Candidate sections of every (student, course) in Courses, sorted
	Candidates map[StudentCourse][]Section
	Students   []StudentID

	coursesOf map[StudentID][]CourseCode // Courses with a variable, per student, sorted
}

// BuildModel formulates input as a PB: for every student either exactly MaxCourses sections (held + new) or no new
// section at all, no clashes within a roster, no section over capacity, and the sum of the best candidate weight of
// each chosen course maximized
func BuildModel(input Input, config Config) Model {
	model := Model{
		Courses:    make(map[StudentCourse]int64),
		Sections:   make(map[StudentSection]int64),
		Candidates: make(map[StudentCourse][]Section),
		Students:   input.Students(),
		coursesOf:  make(map[StudentID][]CourseCode),
	}

	//** Allocate variables
	weights := make(map[StudentID][]int)
	for _, student := range model.Students {
		for _, course := range input.Preferences.CoursesOf(student) {
			key := StudentCourse{Student: student, Course: course}
			candidates := candidateSections(input, student, course)
			if len(candidates) == 0 {
				continue // The course is infeasible for the student
			}

			model.Candidates[key] = candidates
			model.coursesOf[student] = append(model.coursesOf[student], course)
			model.Courses[key] = model.PB.NewVariable()
			for _, section := range candidates {
				model.Sections[StudentSection{Student: student, Section: section}] = model.PB.NewVariable()
			}

			// The course is worth its best candidate regardless of which section is realized
			weight := lo.Max(lo.Map(candidates, func(section Section, _ int) int {
				weight, _ := input.Preferences.Weight(student, section)
				return weight
			}))
			if weight > 0 {
				model.PB.Maximize(model.Courses[key], weight)
				weights[student] = append(weights[student], weight)
			}
		}
	}
	model.PB.Ceiling = objectiveCeiling(input, config, weights)

	//** Emit constraints
	state := constraintState{
		input:  input,
		config: config,
		model:  &model,
	}
	model.PB.Add(buildConstraints(state, []func(state constraintState) []sat.Constraint{
		linkConstraints,
		loadConstraints,
		capacityConstraints,
		clashConstraints,
	})...)

	return model
}

// objectiveCeiling bounds the objective by the heaviest courses each student may still take. A student takes either
// none or exactly the courses missing from its roster
func objectiveCeiling(input Input, config Config, weights map[StudentID][]int) int {
	ceiling := 0
	for student, courseWeights := range weights {
		need := config.MaxCourses - len(input.Held[student])
		if need <= 0 {
			continue
		}
		heaviest := slices.Sorted(slices.Values(courseWeights))
		slices.Reverse(heaviest)
		ceiling += lo.Sum(heaviest[:min(need, len(heaviest))])
	}
	return ceiling
}

// candidateSections returns the sections of course preferred by student that have seats and do not clash with a held
// section. Nothing is a candidate when the student already holds the course
func candidateSections(input Input, student StudentID, course CourseCode) []Section {
	if input.Held.HoldsCourse(student, course) {
		return nil
	}
	held := input.Held[student]
	return slices.DeleteFunc(slices.Clone(input.Preferences.Sections(student, course)), func(section Section) bool {
		return input.Capacities[section] <= 0 || input.Clashes.ClashesWithAny(section, held)
	})
}

// courseVariables returns the course-chosen variables of student in course order
func (model *Model) courseVariables(student StudentID) []int64 {
	return lo.Map(model.coursesOf[student], func(course CourseCode, _ int) int64 {
		return model.Courses[StudentCourse{Student: student, Course: course}]
	})
}

// sectionVariables returns the section-chosen variables of the candidates of key
func (model *Model) sectionVariables(key StudentCourse) []int64 {
	return lo.Map(model.Candidates[key], func(section Section, _ int) int64 {
		return model.Sections[StudentSection{Student: key.Student, Section: section}]
	})
}

// Selected returns the sections whose variable is true under value
func (model *Model) Selected(value func(literal int64) bool) map[StudentID][]Section {
	selected := make(map[StudentID][]Section)
	for key, variable := range model.Sections {
		if value(variable) {
			selected[key.Student] = append(selected[key.Student], key.Section)
		}
	}
	return selected
}
