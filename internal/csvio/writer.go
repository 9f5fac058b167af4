package csvio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/limaJavier/allocation/pkg/model"
)

const studentColumn = "Student"

func courseColumn(index int) string {
	return fmt.Sprintf("Course-%d", index+1)
}

// WriteAssignments renders one row per student in ascending order with width section columns, right-padded with empty
// fields. Sections are spelled through label. Rosters longer than width (students holding more sections than the
// maximum) widen the table
func WriteAssignments(out io.Writer, assignment model.Assignment, width int, label func(model.Section) string) error {
	writer := gocsv.DefaultCSVWriter(out)
	for _, roster := range assignment {
		width = max(width, len(roster))
	}

	header := []string{studentColumn}
	for index := range width {
		header = append(header, courseColumn(index))
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, student := range assignment.Students() {
		roster := assignment[student]
		row := make([]string, width+1)
		row[0] = string(student)
		for index, section := range roster {
			row[index+1] = label(section)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportAssignments writes the assignment to path. The file only appears once completely written
func ExportAssignments(path string, assignment model.Assignment, width int, label func(model.Section) string) error {
	temp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("cannot create output file: %w", err)
	}
	defer os.Remove(temp.Name())

	if err := WriteAssignments(temp, assignment, width, label); err != nil {
		temp.Close()
		return fmt.Errorf("cannot write %v: %w", path, err)
	}
	if err := temp.Close(); err != nil {
		return fmt.Errorf("cannot write %v: %w", path, err)
	}
	if err := os.Rename(temp.Name(), path); err != nil {
		return fmt.Errorf("cannot write %v: %w", path, err)
	}
	return nil
}

// ReadAssignments parses a file written by ExportAssignments back into an assignment
func ReadAssignments(path string) (model.Assignment, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %v: %w", path, err)
	}
	defer file.Close()

	rows, err := gocsv.CSVToMaps(file)
	if err != nil {
		return nil, fmt.Errorf("cannot parse %v: %w", path, err)
	}

	assignment := make(model.Assignment, len(rows))
	for index, row := range rows {
		student := model.StudentID(row[studentColumn])
		if student == "" {
			return nil, fmt.Errorf("%v: row %d has no student", path, index+2)
		}

		roster := make([]model.Section, 0)
		for column := 0; ; column++ {
			code, ok := row[courseColumn(column)]
			if !ok {
				break
			} else if code == "" {
				continue
			}
			section, err := model.ParseSection(code)
			if err != nil {
				return nil, fmt.Errorf("%v: row %d: %w", path, index+2, err)
			}
			roster = append(roster, section)
		}
		assignment[student] = roster
	}
	return assignment, nil
}
