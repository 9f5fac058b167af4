package model

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type StudentID string

type CourseCode string

// Section is a specific offering of a course. Identifiers look like "<PREFIX>-<NUMBER>-<SECTION>", e.g. "FC-101-2"
type Section struct {
	Course CourseCode
	Number int
}

// ParseSection splits an identifier on '-': the first two parts form the course code and the last one the section number
func ParseSection(code string) (Section, error) {
	parts := strings.Split(strings.TrimSpace(code), "-")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return Section{}, SectionFormatError{Code: code, Reason: "expected <PREFIX>-<NUMBER>-<SECTION>"}
	}
	number, err := strconv.Atoi(parts[2])
	if err != nil {
		return Section{}, SectionFormatError{Code: code, Reason: "section is not an integer"}
	}
	return Section{Course: CourseCode(parts[0] + "-" + parts[1]), Number: number}, nil
}

func (section Section) Code() string {
	return fmt.Sprintf("%v-%d", section.Course, section.Number)
}

func (section Section) String() string {
	return section.Code()
}

// CompareSections orders by course code, then by section number
func CompareSections(a, b Section) int {
	if c := cmp.Compare(a.Course, b.Course); c != 0 {
		return c
	}
	return cmp.Compare(a.Number, b.Number)
}

type Timing struct {
	Day   string
	Start string
	End   string
}

var timingPattern = regexp.MustCompile(`^(\w+)-\((\d{2}:\d{2})-(\d{2}:\d{2})\)$`)

// ParseTimings reads a comma separated list such as "Mon-(09:00-10:30), Wed-(09:00-10:30)"
func ParseTimings(timings string) ([]Timing, error) {
	result := make([]Timing, 0)
	for _, item := range strings.Split(timings, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		match := timingPattern.FindStringSubmatch(item)
		if match == nil {
			return nil, fmt.Errorf("invalid timing %q", item)
		}
		result = append(result, Timing{Day: match[1], Start: match[2], End: match[3]})
	}
	return result, nil
}
