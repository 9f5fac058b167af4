package model

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Statistics measure an assignment over new sections only. Weights are those of the sections actually assigned, which
// may differ from the objective reported by the solver (that one credits each course with its best candidate)
type Statistics struct {
	TotalStudents              int     `json:"total_students"`
	AlreadyTakenStudents       int     `json:"already_taken_students"`
	EligibleStudents           int     `json:"eligible_students"`
	StudentsWithNewAssignments int     `json:"students_with_new_assignments"`
	StudentsWithPrefNew        int     `json:"students_with_pref_new"`
	StudentsWithoutPrefNew     int     `json:"students_without_pref_new"`
	TotalNewCoursesAssigned    int     `json:"total_new_courses_assigned"`
	TotalPrefWeightAssignedNew int     `json:"total_pref_weight_assigned_new"`
	AvgWeightPerNewAssignment  float64 `json:"avg_weight_per_new_assignment"`
	AvgWeightPerEligible       float64 `json:"avg_weight_per_eligible_student"`
	AvgWeightPerStudentWithNew float64 `json:"avg_weight_per_student_with_new_assignments"`
	TotalClashesFoundNew       int     `json:"total_clashes_found_new"`
}

func ComputeStatistics(assignment Assignment, preferences PreferenceIndex, clashes ClashGraph, held HeldSections) Statistics {
	var statistics Statistics

	for _, student := range assignment.Students() {
		statistics.TotalStudents++
		if len(held[student]) > 0 {
			statistics.AlreadyTakenStudents++
		}

		// Rosters are sorted, hence so is the filtered slice
		sections := assignment.New(student, held)
		if len(sections) == 0 {
			continue
		}
		statistics.StudentsWithNewAssignments++
		statistics.TotalNewCoursesAssigned += len(sections)

		weight := 0
		for i, section := range sections {
			sectionWeight, _ := preferences.Weight(student, section)
			weight += sectionWeight
			for _, other := range sections[i+1:] {
				if clashes.Clash(section, other) {
					statistics.TotalClashesFoundNew++
				}
			}
		}
		statistics.TotalPrefWeightAssignedNew += weight
		if weight > 0 {
			statistics.StudentsWithPrefNew++
		}
	}

	statistics.EligibleStudents = statistics.TotalStudents - statistics.AlreadyTakenStudents
	statistics.StudentsWithoutPrefNew = statistics.StudentsWithNewAssignments - statistics.StudentsWithPrefNew
	statistics.AvgWeightPerNewAssignment = ratio(statistics.TotalPrefWeightAssignedNew, statistics.TotalNewCoursesAssigned)
	statistics.AvgWeightPerEligible = ratio(statistics.TotalPrefWeightAssignedNew, statistics.EligibleStudents)
	statistics.AvgWeightPerStudentWithNew = ratio(statistics.TotalPrefWeightAssignedNew, statistics.StudentsWithNewAssignments)
	return statistics
}

func ratio(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}

// MarshalLogObject lets the statistics be logged as a single structured field
func (statistics Statistics) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddInt("total_students", statistics.TotalStudents)
	encoder.AddInt("already_taken_students", statistics.AlreadyTakenStudents)
	encoder.AddInt("eligible_students", statistics.EligibleStudents)
	encoder.AddInt("students_with_new_assignments", statistics.StudentsWithNewAssignments)
	encoder.AddInt("students_with_pref_new", statistics.StudentsWithPrefNew)
	encoder.AddInt("students_without_pref_new", statistics.StudentsWithoutPrefNew)
	encoder.AddInt("total_new_courses_assigned", statistics.TotalNewCoursesAssigned)
	encoder.AddInt("total_pref_weight_assigned_new", statistics.TotalPrefWeightAssignedNew)
	encoder.AddFloat64("avg_weight_per_new_assignment", statistics.AvgWeightPerNewAssignment)
	encoder.AddFloat64("avg_weight_per_eligible_student", statistics.AvgWeightPerEligible)
	encoder.AddFloat64("avg_weight_per_student_with_new_assignments", statistics.AvgWeightPerStudentWithNew)
	encoder.AddInt("total_clashes_found_new", statistics.TotalClashesFoundNew)
	return nil
}

var _ zapcore.ObjectMarshaler = Statistics{}

func (statistics Statistics) Field() zap.Field {
	return zap.Object("statistics", statistics)
}
