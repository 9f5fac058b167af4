package model

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Verify checks assignment against input: rosters sorted and duplicate-free, held sections kept, new sections preferred
// and seated, no clashes, capacities respected and the load rule (exactly MaxCourses sections or no new one). Every
// violation found is reported
func Verify(assignment Assignment, input Input, config Config) error {
	violations := make([]error, 0)
	violate := func(format string, args ...any) {
		violations = append(violations, fmt.Errorf(format, args...))
	}

	occupancy := make(map[Section]int)
	for _, student := range assignment.Students() {
		roster := assignment[student]
		if !slices.IsSortedFunc(roster, CompareSections) {
			violate("roster of %v is not sorted", student)
		}
		if len(slices.CompactFunc(slices.Clone(roster), func(a, b Section) bool { return a == b })) != len(roster) {
			violate("roster of %v has duplicates", student)
		}

		for _, section := range input.Held[student] {
			if !slices.Contains(roster, section) {
				violate("held section %v of %v was dropped", section, student)
			}
		}

		for i, section := range roster {
			for _, other := range roster[i+1:] {
				if input.Clashes.Clash(section, other) {
					violate("%v has clashing sections %v and %v", student, section, other)
				}
				if config.SingleSectionPerCourse && section.Course == other.Course && section != other {
					violate("%v has two sections of course %v", student, section.Course)
				}
			}
		}

		added := assignment.New(student, input.Held)
		for _, section := range added {
			occupancy[section]++
			if _, ok := input.Preferences.Weight(student, section); !ok {
				violate("%v was assigned %v without preferring it", student, section)
			}
		}

		held := len(input.Held[student])
		switch {
		case len(added) == 0:
		case held >= config.MaxCourses:
			violate("%v already holds %d sections but was assigned %d more", student, held, len(added))
		case held+len(added) != config.MaxCourses:
			violate("%v holds %d sections and was assigned %d, expected a total of %d", student, held, len(added), config.MaxCourses)
		}
		if len(added) == 0 && held < config.MaxCourses && hasCandidates(input, student) {
			violate("%v has feasible courses but was assigned none", student)
		}
	}

	for _, section := range slices.SortedFunc(maps.Keys(occupancy), CompareSections) {
		if students := occupancy[section]; students > input.Capacities[section] {
			violate("section %v holds %d students over a capacity of %d", section, students, input.Capacities[section])
		}
	}

	return errors.Join(violations...)
}

func hasCandidates(input Input, student StudentID) bool {
	return slices.ContainsFunc(input.Preferences.CoursesOf(student), func(course CourseCode) bool {
		return len(candidateSections(input, student, course)) > 0
	})
}
