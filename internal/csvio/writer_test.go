package csvio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/limaJavier/allocation/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAssignments(t *testing.T) {
	//** Arrange
	assignment := model.Assignment{
		"s2": {{Course: "FC-101", Number: 1}},
		"s1": {{Course: "FC-101", Number: 2}, {Course: "FC-102", Number: 1}},
		"s3": {},
	}
	labels := map[model.Section]string{{Course: "FC-101", Number: 1}: "FC-101-01"}
	label := func(section model.Section) string {
		if label, ok := labels[section]; ok {
			return label
		}
		return section.Code()
	}
	var out bytes.Buffer

	//** Act
	err := WriteAssignments(&out, assignment, 4, label)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, "Student,Course-1,Course-2,Course-3,Course-4\n"+
		"s1,FC-101-2,FC-102-1,,\n"+
		"s2,FC-101-01,,,\n"+
		"s3,,,,\n", out.String())
}

func TestExportAndReadAssignments(t *testing.T) {
	//** Arrange
	path := filepath.Join(t.TempDir(), "course_assignments.csv")
	input := model.Input{Labels: map[model.Section]string{{Course: "FC-101", Number: 1}: "FC-101-01"}}
	assignment := model.Assignment{
		"s1": {{Course: "FC-101", Number: 1}, {Course: "FC-102", Number: 3}, {Course: "FC-103", Number: 1}, {Course: "FC-104", Number: 2}},
		"s2": {{Course: "FC-102", Number: 3}},
		"s3": {},
	}

	//** Act
	err := ExportAssignments(path, assignment, 4, input.Label)
	require.NoError(t, err)
	reread, err := ReadAssignments(path)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, assignment, reread)
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary file left behind")
}

func TestReadAssignmentsErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadAssignments(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := writeFile(t, dir, "bad.csv", "Student,Course-1\ns1,nonsense\n")
	_, err = ReadAssignments(path)
	assert.Error(t, err)
}
