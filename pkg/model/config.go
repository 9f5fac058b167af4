package model

import (
	"fmt"
	"maps"
	"slices"
)

type Config struct {
	// Number of sections (held + new) every eligible student must reach
	MaxCourses int
	// Preference rank to weight. Ranks above the largest key are dropped
	RankWeights map[int]int
	// Forbid two sections of the same course in one roster
	SingleSectionPerCourse bool
	// Largest slots*seats product for which the seat-matching probe of Diagnose runs
	DiagnosisLimit int
}

func DefaultConfig() Config {
	return Config{
		MaxCourses:             4,
		RankWeights:            map[int]int{1: 11, 2: 9, 3: 7, 4: 4, 5: 3},
		SingleSectionPerCourse: true,
		DiagnosisLimit:         4_000_000,
	}
}

func (config Config) Validate() error {
	if config.MaxCourses <= 0 {
		return fmt.Errorf("max courses must be positive: %v", config.MaxCourses)
	}
	for rank, weight := range config.RankWeights {
		if rank <= 0 {
			return fmt.Errorf("rank must be positive: %v", rank)
		} else if weight < 0 {
			return fmt.Errorf("weight of rank %v must not be negative: %v", rank, weight)
		}
	}
	return nil
}

// MaxRank returns the largest rank of the weight table (0 if the table is empty)
func (config Config) MaxRank() int {
	if len(config.RankWeights) == 0 {
		return 0
	}
	return slices.Max(slices.Collect(maps.Keys(config.RankWeights)))
}

// Weight converts a rank into a weight. Ranks outside the table's domain are rejected; gaps inside it weigh 0
func (config Config) Weight(rank int) (int, bool) {
	if rank <= 0 || rank > config.MaxRank() {
		return 0, false
	}
	return config.RankWeights[rank], true
}
