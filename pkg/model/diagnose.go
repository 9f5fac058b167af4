package model

import (
	"maps"
	"slices"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type ShortStudent struct {
	Student StudentID
	// Sections still needed to reach MaxCourses
	Need int
	// Courses with at least one candidate section
	Feasible int
}

// Diagnosis explains, as far as cheap checks allow, why no allocation exists
type Diagnosis struct {
	// Students with some feasible course but fewer than they need
	Short []ShortStudent
	// Students whose needed slots cannot all be seated even ignoring clashes and course uniqueness
	Unseated []StudentID
	// Set when the seat-matching probe was not run because the graph exceeds the configured limit
	ProbeSkipped bool
}

func (diagnosis Diagnosis) Empty() bool {
	return len(diagnosis.Short) == 0 && len(diagnosis.Unseated) == 0
}

func (diagnosis Diagnosis) Fields() []zap.Field {
	return []zap.Field{
		zap.Any("short", diagnosis.Short),
		zap.Any("unseated", diagnosis.Unseated),
		zap.Bool("probeSkipped", diagnosis.ProbeSkipped),
	}
}

type slot struct {
	student    StudentID
	candidates []Section
}

type seat struct {
	section Section
}

func Diagnose(input Input, config Config) Diagnosis {
	var diagnosis Diagnosis
	slots := make([]slot, 0)

	for _, student := range input.Students() {
		need := config.MaxCourses - len(input.Held[student])
		if need <= 0 {
			continue
		}

		feasible := 0
		candidates := make([]Section, 0)
		for _, course := range input.Preferences.CoursesOf(student) {
			if sections := candidateSections(input, student, course); len(sections) > 0 {
				feasible++
				candidates = append(candidates, sections...)
			}
		}

		if feasible == 0 {
			continue // Such a student simply gets nothing
		} else if feasible < need {
			diagnosis.Short = append(diagnosis.Short, ShortStudent{Student: student, Need: need, Feasible: feasible})
			continue
		}
		for range need {
			slots = append(slots, slot{student: student, candidates: candidates})
		}
	}

	seats := make([]seat, 0)
	for _, section := range slices.SortedFunc(maps.Keys(input.Capacities), CompareSections) {
		for range input.Capacities[section] {
			seats = append(seats, seat{section: section})
		}
	}

	if len(slots)*len(seats) > config.DiagnosisLimit {
		diagnosis.ProbeSkipped = true
		return diagnosis
	}
	diagnosis.Unseated = unseatedStudents(slots, seats)
	return diagnosis
}

// unseatedStudents runs a maximum bipartite matching between slots and seats and returns the students owning a slot
// left unmatched
func unseatedStudents(slots []slot, seats []seat) []StudentID {
	if len(slots) == 0 {
		return nil
	}

	neighbors := func(slotAny any, seatAny any) (bool, error) {
		return slices.Contains(slotAny.(slot).candidates, seatAny.(seat).section), nil
	}
	slotsAny, seatsAny := lo.Map(slots, func(s slot, _ int) any { return s }), lo.Map(seats, func(s seat, _ int) any { return s })

	graph, err := bipartitegraph.NewBipartiteGraph(slotsAny, seatsAny, neighbors)
	if err != nil {
		return nil
	}
	matching := graph.LargestMatching()
	if len(matching) == len(slots) {
		return nil
	}

	matched := make([]bool, len(slots))
	for _, edge := range matching {
		matched[edge.Node1] = true
	}
	unseated := make([]StudentID, 0)
	for index, slot := range slots {
		if !matched[index] {
			unseated = append(unseated, slot.student)
		}
	}
	return lo.Uniq(unseated)
}
