package model

import (
	"fmt"
	"maps"
	"slices"

	"github.com/samber/lo"
)

// HeldSections lists, per student, the sections assigned before this run
type HeldSections map[StudentID][]Section

// Add records section as held by student, keeping the list sorted and duplicate-free
func (held HeldSections) Add(student StudentID, section Section) {
	sections := held[student]
	position, found := slices.BinarySearchFunc(sections, section, CompareSections)
	if found {
		return
	}
	held[student] = slices.Insert(sections, position, section)
}

func (held HeldSections) Holds(student StudentID, section Section) bool {
	return slices.Contains(held[student], section)
}

func (held HeldSections) HoldsCourse(student StudentID, course CourseCode) bool {
	return slices.ContainsFunc(held[student], func(section Section) bool { return section.Course == course })
}

// Assignment maps every student to a sorted, duplicate-free roster (held and new sections)
type Assignment map[StudentID][]Section

func (assignment Assignment) Students() []StudentID {
	return slices.Sorted(maps.Keys(assignment))
}

// New returns the sections of student's roster which are not held
func (assignment Assignment) New(student StudentID, held HeldSections) []Section {
	return lo.Filter(assignment[student], func(section Section, _ int) bool { return !held.Holds(student, section) })
}

type Input struct {
	// Seats offered by each section. Sections absent from the map have no seats
	Capacities  map[Section]int
	Preferences PreferenceIndex
	Clashes     ClashGraph
	Held        HeldSections
	// Identifiers as spelled in the source data, used when writing rosters back
	Labels map[Section]string
}

// Students returns the union of students with preferences and students with held sections
func (input Input) Students() []StudentID {
	students := lo.Union(input.Preferences.Students(), slices.Collect(maps.Keys(input.Held)))
	slices.Sort(students)
	return students
}

func (input Input) Validate() error {
	for section, capacity := range input.Capacities {
		if capacity < 0 {
			return fmt.Errorf("section %v has a negative capacity: %v", section, capacity)
		}
	}
	return nil
}

// Label renders section the way the source data spells it
func (input Input) Label(section Section) string {
	if label, ok := input.Labels[section]; ok {
		return label
	}
	return section.Code()
}
