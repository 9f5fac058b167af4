package config

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/limaJavier/allocation/pkg/model"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	Input      InputConfig
	Output     string
	Allocation model.Config
	Solver     SolverConfig
	Log        LogConfig
}

// InputConfig names the source files, relative to Dir (or FixtureDir when the fixture set is selected)
type InputConfig struct {
	Dir         string
	FixtureDir  string
	Sections    string
	Preferences string
	Held        string
	Clashes     string
}

type SolverConfig struct {
	// gini, kissat or minisat
	Name    string
	Timeout time.Duration
	// JSON file with the paths of external solver executables
	Executables string
}

type LogConfig struct {
	Level  string
	Format string
	// Run log appended to besides stderr, none when empty
	File string
}

// Load reads the configuration from the environment (ALLOC_ prefixed, .env honoured) and from path when not empty
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ALLOC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("cannot read config file %v: %w", path, err)
			}
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Output = v.GetString("OUTPUT")

	cfg.Input = InputConfig{
		Dir:         v.GetString("INPUT.DIR"),
		FixtureDir:  v.GetString("INPUT.FIXTURE_DIR"),
		Sections:    v.GetString("INPUT.SECTIONS"),
		Preferences: v.GetString("INPUT.PREFERENCES"),
		Held:        v.GetString("INPUT.HELD"),
		Clashes:     v.GetString("INPUT.CLASHES"),
	}

	weights, err := parseRankWeights(v.GetString("ALLOCATION.RANK_WEIGHTS"))
	if err != nil {
		return nil, err
	}
	cfg.Allocation = model.Config{
		MaxCourses:             v.GetInt("ALLOCATION.MAX_COURSES"),
		RankWeights:            weights,
		SingleSectionPerCourse: v.GetBool("ALLOCATION.SINGLE_SECTION_PER_COURSE"),
		DiagnosisLimit:         v.GetInt("ALLOCATION.DIAGNOSIS_LIMIT"),
	}
	if err := cfg.Allocation.Validate(); err != nil {
		return nil, err
	}

	timeout, err := parseDuration(v.GetString("SOLVER.TIMEOUT"), 0)
	if err != nil {
		return nil, fmt.Errorf("invalid solver timeout: %w", err)
	}
	cfg.Solver = SolverConfig{
		Name:        strings.ToLower(v.GetString("SOLVER.NAME")),
		Timeout:     timeout,
		Executables: v.GetString("SOLVER.EXECUTABLES"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG.LEVEL"),
		Format: v.GetString("LOG.FORMAT"),
		File:   v.GetString("LOG.FILE"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := model.DefaultConfig()

	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("OUTPUT", "course_assignments.csv")

	v.SetDefault("INPUT.DIR", "data")
	v.SetDefault("INPUT.FIXTURE_DIR", filepath.Join("data", "fixture"))
	v.SetDefault("INPUT.SECTIONS", "LS-detail.csv")
	v.SetDefault("INPUT.PREFERENCES", "preferences.csv")
	v.SetDefault("INPUT.HELD", "already-taken.csv")
	v.SetDefault("INPUT.CLASHES", "clashes.txt")

	v.SetDefault("ALLOCATION.MAX_COURSES", defaults.MaxCourses)
	v.SetDefault("ALLOCATION.RANK_WEIGHTS", formatRankWeights(defaults.RankWeights))
	v.SetDefault("ALLOCATION.SINGLE_SECTION_PER_COURSE", defaults.SingleSectionPerCourse)
	v.SetDefault("ALLOCATION.DIAGNOSIS_LIMIT", defaults.DiagnosisLimit)

	v.SetDefault("SOLVER.NAME", "gini")
	v.SetDefault("SOLVER.TIMEOUT", "5m")
	v.SetDefault("SOLVER.EXECUTABLES", "config.json")

	v.SetDefault("LOG.LEVEL", "info")
	v.SetDefault("LOG.FORMAT", "console")
	v.SetDefault("LOG.FILE", "")
}

// Paths returns the source files of the real data set, or of the fixture set
func (cfg InputConfig) Paths(fixture bool) (sections, preferences, held, clashes string) {
	dir := cfg.Dir
	if fixture {
		dir = cfg.FixtureDir
	}
	return filepath.Join(dir, cfg.Sections), filepath.Join(dir, cfg.Preferences), filepath.Join(dir, cfg.Held), filepath.Join(dir, cfg.Clashes)
}

// parseRankWeights reads "1:11,2:9,3:7"
func parseRankWeights(raw string) (map[int]int, error) {
	weights := make(map[int]int)
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		rank, weight, found := strings.Cut(item, ":")
		if !found {
			return nil, fmt.Errorf("invalid rank weight %q: expected <rank>:<weight>", item)
		}
		rankValue, err := strconv.Atoi(strings.TrimSpace(rank))
		if err != nil {
			return nil, fmt.Errorf("invalid rank in %q: %w", item, err)
		}
		weightValue, err := strconv.Atoi(strings.TrimSpace(weight))
		if err != nil {
			return nil, fmt.Errorf("invalid weight in %q: %w", item, err)
		}
		weights[rankValue] = weightValue
	}
	return weights, nil
}

func formatRankWeights(weights map[int]int) string {
	items := make([]string, 0, len(weights))
	for _, rank := range slices.Sorted(maps.Keys(weights)) {
		items = append(items, fmt.Sprintf("%d:%d", rank, weights[rank]))
	}
	return strings.Join(items, ",")
}

// parseDuration reads a Go duration such as "90s" or "5m"; "0" means no limit
func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	} else if d < 0 {
		return 0, fmt.Errorf("negative duration %q", value)
	}
	return d, nil
}
