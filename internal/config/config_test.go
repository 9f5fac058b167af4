package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		//** Act
		cfg, err := Load("")

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, "course_assignments.csv", cfg.Output)
		assert.Equal(t, 4, cfg.Allocation.MaxCourses)
		assert.Equal(t, map[int]int{1: 11, 2: 9, 3: 7, 4: 4, 5: 3}, cfg.Allocation.RankWeights)
		assert.True(t, cfg.Allocation.SingleSectionPerCourse)
		assert.Equal(t, "gini", cfg.Solver.Name)
		assert.Equal(t, 5*time.Minute, cfg.Solver.Timeout)
		assert.Empty(t, cfg.Log.File)

		sections, preferences, held, clashes := cfg.Input.Paths(true)
		assert.Equal(t, filepath.Join("data", "fixture", "LS-detail.csv"), sections)
		assert.Equal(t, filepath.Join("data", "fixture", "preferences.csv"), preferences)
		assert.Equal(t, filepath.Join("data", "fixture", "already-taken.csv"), held)
		assert.Equal(t, filepath.Join("data", "fixture", "clashes.txt"), clashes)
	})

	t.Run("Environment", func(t *testing.T) {
		//** Arrange
		t.Setenv("ALLOC_ALLOCATION_MAX_COURSES", "3")
		t.Setenv("ALLOC_ALLOCATION_RANK_WEIGHTS", "1:5, 2:1")
		t.Setenv("ALLOC_SOLVER_NAME", "Kissat")
		t.Setenv("ALLOC_SOLVER_TIMEOUT", "90s")
		t.Setenv("ALLOC_LOG_FILE", "output/allocate.log")

		//** Act
		cfg, err := Load("")

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.Allocation.MaxCourses)
		assert.Equal(t, map[int]int{1: 5, 2: 1}, cfg.Allocation.RankWeights)
		assert.Equal(t, "kissat", cfg.Solver.Name)
		assert.Equal(t, 90*time.Second, cfg.Solver.Timeout)
		assert.Equal(t, "output/allocate.log", cfg.Log.File)
	})

	t.Run("Unlimited timeout", func(t *testing.T) {
		t.Setenv("ALLOC_SOLVER_TIMEOUT", "0")
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Zero(t, cfg.Solver.Timeout)
	})

	t.Run("Config file", func(t *testing.T) {
		//** Arrange
		path := filepath.Join(t.TempDir(), "allocation.yaml")
		content := "output: out.csv\ninput:\n  dir: /srv/data\nallocation:\n  max_courses: 2\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		//** Act
		cfg, err := Load(path)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, "out.csv", cfg.Output)
		assert.Equal(t, 2, cfg.Allocation.MaxCourses)
		sections, _, _, _ := cfg.Input.Paths(false)
		assert.Equal(t, filepath.Join("/srv/data", "LS-detail.csv"), sections)
	})

	t.Run("Invalid rank weights", func(t *testing.T) {
		t.Setenv("ALLOC_ALLOCATION_RANK_WEIGHTS", "1=11")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("Invalid timeout", func(t *testing.T) {
		for _, timeout := range []string{"10 minutes", "-1m"} {
			t.Setenv("ALLOC_SOLVER_TIMEOUT", timeout)

			_, err := Load("")

			assert.ErrorContains(t, err, "invalid solver timeout", timeout)
		}
	})

	t.Run("Missing config file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}
