package model

import (
	"maps"
	"slices"

	"go.uber.org/zap"
)

// PreferenceRecord is a raw preference row. A positive Rank is converted through the rank table and a rank of 0 read
// from a rank column (Ranked) weighs nothing; otherwise Weight is taken as is when Weighted is set
type PreferenceRecord struct {
	Student  StudentID
	Course   CourseCode // Optional
	Section  string
	Rank     int
	Ranked   bool
	Weight   int
	Weighted bool
}

type preferenceKey struct {
	Student StudentID
	Section Section
}

// PreferenceIndex maps (student, section) to a weight. The course is part of the section
type PreferenceIndex struct {
	weights  map[preferenceKey]int
	sections map[StudentID]map[CourseCode][]Section
}

func NewEmptyPreferenceIndex() PreferenceIndex {
	return PreferenceIndex{
		weights:  make(map[preferenceKey]int),
		sections: make(map[StudentID]map[CourseCode][]Section),
	}
}

// NewPreferenceIndex normalizes records into weights. Malformed rows are skipped and on duplicate keys the last record
// wins, both with a warning
func NewPreferenceIndex(records []PreferenceRecord, config Config, logger *zap.Logger) PreferenceIndex {
	logger = orNop(logger)
	index := NewEmptyPreferenceIndex()

	for row, record := range records {
		fields := []zap.Field{zap.Int("row", row+1), zap.String("student", string(record.Student)), zap.String("section", record.Section)}

		section, err := ParseSection(record.Section)
		if err != nil {
			logger.Warn("skipping preference with malformed section", append(fields, zap.Error(err))...)
			continue
		} else if record.Course != "" && record.Course != section.Course {
			logger.Warn("skipping preference whose course disagrees with its section", append(fields, zap.String("course", string(record.Course)))...)
			continue
		} else if record.Student == "" {
			logger.Warn("skipping preference without student", fields...)
			continue
		}

		var weight int
		switch {
		case record.Rank > 0:
			var ok bool
			if weight, ok = config.Weight(record.Rank); !ok {
				logger.Debug("dropping preference beyond the rank table", append(fields, zap.Int("rank", record.Rank))...)
				continue
			}
		case record.Rank < 0:
			logger.Warn("skipping preference with negative rank", append(fields, zap.Int("rank", record.Rank))...)
			continue
		case record.Ranked:
			weight = 0 // Rank 0 is off the table but still a preference
		case record.Weighted && record.Weight >= 0:
			weight = record.Weight
		case record.Weighted:
			logger.Warn("skipping preference with negative weight", append(fields, zap.Int("weight", record.Weight))...)
			continue
		default:
			logger.Warn("skipping preference without rank or weight", fields...)
			continue
		}

		if previous, overwritten := index.Set(record.Student, section, weight); overwritten {
			logger.Warn("duplicate preference, keeping the last one", append(fields, zap.Int("previous", previous), zap.Int("weight", weight))...)
		}
	}
	return index
}

// Set stores weight for (student, section) and returns the replaced weight, if any
func (index *PreferenceIndex) Set(student StudentID, section Section, weight int) (previous int, overwritten bool) {
	if index.weights == nil {
		*index = NewEmptyPreferenceIndex()
	}
	key := preferenceKey{Student: student, Section: section}
	previous, overwritten = index.weights[key]
	index.weights[key] = weight
	if overwritten {
		return previous, true
	}

	if index.sections[student] == nil {
		index.sections[student] = make(map[CourseCode][]Section)
	}
	sections := index.sections[student][section.Course]
	position, _ := slices.BinarySearchFunc(sections, section, CompareSections)
	index.sections[student][section.Course] = slices.Insert(sections, position, section)
	return 0, false
}

func (index PreferenceIndex) Weight(student StudentID, section Section) (int, bool) {
	weight, ok := index.weights[preferenceKey{Student: student, Section: section}]
	return weight, ok
}

func (index PreferenceIndex) Students() []StudentID {
	return slices.Sorted(maps.Keys(index.sections))
}

func (index PreferenceIndex) Courses() []CourseCode {
	courses := make(map[CourseCode]struct{})
	for _, byCourse := range index.sections {
		for course := range byCourse {
			courses[course] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(courses))
}

// CoursesOf returns the courses in which student prefers at least one section, sorted
func (index PreferenceIndex) CoursesOf(student StudentID) []CourseCode {
	return slices.Sorted(maps.Keys(index.sections[student]))
}

// Sections returns the sections of course preferred by student, in ascending order
func (index PreferenceIndex) Sections(student StudentID, course CourseCode) []Section {
	return index.sections[student][course]
}

func (index PreferenceIndex) Len() int {
	return len(index.weights)
}
