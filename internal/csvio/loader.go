package csvio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/limaJavier/allocation/pkg/model"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

// Accepted spellings of each column, compared after normalize
var (
	sectionColumns  = []string{"lscode", "section", "sectioncode", "code"}
	capacityColumns = []string{"availability", "capacity", "seats", "available"}
	timingColumns   = []string{"timingsforls", "timings", "timing"}
	studentColumns  = []string{"studentid", "student"}
	courseColumns   = []string{"coursecode", "course"}
	rankColumns     = []string{"courserank", "rank"}
	weightColumns   = []string{"weight"}
)

// Catalog holds what the section file tells about each section
type Catalog struct {
	Capacities map[model.Section]int
	// Nil when the file has no timing column
	Timings map[model.Section][]model.Timing
	// Identifiers as spelled in the file
	Labels map[model.Section]string
}

type sectionRow struct {
	Code     string `mapstructure:"code"`
	Capacity string `mapstructure:"capacity"`
	Timings  string `mapstructure:"timings"`
}

type preferenceRow struct {
	Student string `mapstructure:"student"`
	Course  string `mapstructure:"course"`
	Section string `mapstructure:"section"`
	Rank    string `mapstructure:"rank"`
	Weight  string `mapstructure:"weight"`
}

type heldRow struct {
	Student string `csv:"StudentId"`
	Section string `csv:"LSCode"`
}

// LoadSections reads capacities (and timings, when present) from the section file. A missing file or a missing
// identifier or capacity column is fatal; bad rows are skipped
func LoadSections(path string, logger *zap.Logger) (Catalog, error) {
	logger = orNop(logger)
	rows, columns, err := readRows(path, map[string][]string{
		"code":     sectionColumns,
		"capacity": capacityColumns,
		"timings":  timingColumns,
	})
	if err != nil {
		return Catalog{}, err
	} else if !columns["code"] || !columns["capacity"] {
		return Catalog{}, fmt.Errorf("%v: no section identifier or capacity column (accepted: %v / %v)", path, sectionColumns, capacityColumns)
	}

	catalog := Catalog{
		Capacities: make(map[model.Section]int),
		Labels:     make(map[model.Section]string),
	}
	if columns["timings"] {
		catalog.Timings = make(map[model.Section][]model.Timing)
	}

	for index, raw := range rows {
		fields := []zap.Field{zap.String("file", path), zap.Int("row", index+2)}
		var row sectionRow
		if err := mapstructure.Decode(raw, &row); err != nil {
			logger.Warn("skipping undecodable row", append(fields, zap.Error(err))...)
			continue
		}

		section, err := model.ParseSection(row.Code)
		if err != nil {
			logger.Warn("skipping section", append(fields, zap.Error(err))...)
			continue
		}
		capacity, err := parseInteger(row.Capacity)
		if err != nil || capacity < 0 {
			logger.Warn("skipping section with invalid capacity", append(fields, zap.String("section", row.Code), zap.String("capacity", row.Capacity))...)
			continue
		}
		if _, duplicate := catalog.Capacities[section]; duplicate {
			logger.Warn("duplicate section, keeping the last one", append(fields, zap.String("section", row.Code))...)
		}
		catalog.Capacities[section] = capacity
		catalog.Labels[section] = strings.TrimSpace(row.Code)

		if catalog.Timings != nil {
			timings, err := model.ParseTimings(row.Timings)
			if err != nil {
				logger.Warn("ignoring malformed timings", append(fields, zap.String("section", row.Code), zap.Error(err))...)
			}
			catalog.Timings[section] = timings
		}
	}
	return catalog, nil
}

// LoadPreferences reads ranked or weighted preferences. The file and its student, section and rank-or-weight columns
// are required
func LoadPreferences(path string, config model.Config, logger *zap.Logger) (model.PreferenceIndex, error) {
	logger = orNop(logger)
	rows, columns, err := readRows(path, map[string][]string{
		"student": studentColumns,
		"course":  courseColumns,
		"section": sectionColumns,
		"rank":    rankColumns,
		"weight":  weightColumns,
	})
	if err != nil {
		return model.PreferenceIndex{}, err
	} else if !columns["student"] || !columns["section"] || (!columns["rank"] && !columns["weight"]) {
		return model.PreferenceIndex{}, fmt.Errorf("%v: student, section and rank or weight columns are required", path)
	}

	records := make([]model.PreferenceRecord, 0, len(rows))
	for index, raw := range rows {
		var row preferenceRow
		if err := mapstructure.Decode(raw, &row); err != nil {
			logger.Warn("skipping undecodable row", zap.String("file", path), zap.Int("row", index+2), zap.Error(err))
			continue
		}

		record := model.PreferenceRecord{
			Student: model.StudentID(strings.TrimSpace(row.Student)),
			Course:  model.CourseCode(strings.TrimSpace(row.Course)),
			Section: row.Section,
		}
		if strings.TrimSpace(row.Rank) != "" {
			rank, err := parseInteger(row.Rank)
			if err != nil {
				logger.Warn("skipping preference with invalid rank", zap.String("file", path), zap.Int("row", index+2), zap.String("rank", row.Rank))
				continue
			}
			record.Rank, record.Ranked = rank, true
		} else if strings.TrimSpace(row.Weight) != "" {
			weight, err := parseInteger(row.Weight)
			if err != nil {
				logger.Warn("skipping preference with invalid weight", zap.String("file", path), zap.Int("row", index+2), zap.String("weight", row.Weight))
				continue
			}
			record.Weight, record.Weighted = weight, true
		}
		records = append(records, record)
	}

	return model.NewPreferenceIndex(records, config, logger), nil
}

// LoadHeld reads the sections students already hold. A missing file means nobody holds anything
func LoadHeld(path string, logger *zap.Logger) (model.HeldSections, error) {
	logger = orNop(logger)
	held := make(model.HeldSections)

	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("no held sections file, assuming none", zap.String("file", path))
		return held, nil
	} else if err != nil {
		return nil, fmt.Errorf("cannot open %v: %w", path, err)
	}
	defer file.Close()

	rows := []*heldRow{}
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("cannot parse %v: %w", path, err)
	}

	for index, row := range rows {
		section, err := model.ParseSection(row.Section)
		if err != nil || strings.TrimSpace(row.Student) == "" {
			logger.Warn("skipping held section", zap.String("file", path), zap.Int("row", index+2), zap.String("student", row.Student), zap.String("section", row.Section))
			continue
		}
		held.Add(model.StudentID(strings.TrimSpace(row.Student)), section)
	}
	return held, nil
}

var quoted = regexp.MustCompile(`'([^']*)'`)

// LoadClashGroups reads one group per line, each listing single-quoted section identifiers. The error wraps
// os.ErrNotExist when the file is missing
func LoadClashGroups(path string) ([][]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read clash groups: %w", err)
	}

	groups := make([][]string, 0)
	for _, line := range strings.Split(string(content), "\n") {
		matches := quoted.FindAllStringSubmatch(line, -1)
		if len(matches) == 0 {
			continue
		}
		group := make([]string, 0, len(matches))
		for _, match := range matches {
			group = append(group, match[1])
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// LoadInput assembles every source. Clashes come from the clash groups file, else from the section timings, else
// there are none (with a warning, since rosters may then overlap in time)
func LoadInput(sectionsPath, preferencesPath, heldPath, clashesPath string, config model.Config, logger *zap.Logger) (model.Input, error) {
	logger = orNop(logger)

	catalog, err := LoadSections(sectionsPath, logger)
	if err != nil {
		return model.Input{}, err
	}
	preferences, err := LoadPreferences(preferencesPath, config, logger)
	if err != nil {
		return model.Input{}, err
	}
	held, err := LoadHeld(heldPath, logger)
	if err != nil {
		return model.Input{}, err
	}

	input := model.Input{
		Capacities:  catalog.Capacities,
		Preferences: preferences,
		Held:        held,
		Labels:      catalog.Labels,
	}

	groups, err := LoadClashGroups(clashesPath)
	switch {
	case err == nil:
		input.Clashes = model.ClashesFromGroups(groups, logger)
	case !errors.Is(err, os.ErrNotExist):
		return model.Input{}, err
	case catalog.Timings != nil:
		input.Clashes = model.ClashesFromTimings(catalog.Timings)
	default:
		logger.Warn("no clash source, assuming no section clashes", zap.String("file", clashesPath))
		input.Clashes = model.NewClashGraph()
	}

	logger.Info("input loaded",
		zap.Int("sections", len(input.Capacities)),
		zap.Int("preferences", input.Preferences.Len()),
		zap.Int("students", len(input.Students())),
		zap.Int("studentsWithHeldSections", len(input.Held)),
		zap.Int("clashes", len(input.Clashes.Edges())),
	)
	return input, nil
}

// readRows loads a CSV file as maps keyed by canonical column names. columns reports which canonical names were found
func readRows(path string, synonyms map[string][]string) (rows []map[string]string, columns map[string]bool, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open %v: %w", path, err)
	}
	defer file.Close()

	raw, err := gocsv.CSVToMaps(file)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot parse %v: %w", path, err)
	}

	columns = make(map[string]bool)
	rows = make([]map[string]string, 0, len(raw))
	for _, record := range raw {
		row := make(map[string]string)
		for header, value := range record {
			if canonical, ok := canonicalColumn(header, synonyms); ok {
				row[canonical] = value
				columns[canonical] = true
			}
		}
		rows = append(rows, row)
	}
	return rows, columns, nil
}

func canonicalColumn(header string, synonyms map[string][]string) (string, bool) {
	normalized := normalize(header)
	for canonical, accepted := range synonyms {
		if slices.Contains(accepted, normalized) {
			return canonical, true
		}
	}
	return "", false
}

// normalize lowercases a header and drops spaces, underscores, dashes and a byte order mark
func normalize(header string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '\t', '\ufeff':
			return -1
		}
		return r
	}, strings.ToLower(header))
}

// parseInteger accepts integers, also when spelled as integral floats ("3.0")
func parseInteger(value string) (int, error) {
	value = strings.TrimSpace(value)
	if integer, err := strconv.Atoi(value); err == nil {
		return integer, nil
	}
	float, err := strconv.ParseFloat(value, 64)
	if err != nil || float != math.Trunc(float) {
		return 0, fmt.Errorf("not an integer: %q", value)
	}
	return int(float), nil
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
