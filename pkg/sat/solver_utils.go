package sat

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

// ConfigPath locates the JSON file mapping solver names (e.g. "kissatPath") to executables
var ConfigPath = "../../config.json"

// Exit codes shared by SAT competition solvers
const (
	exitSatisfiable   = 10
	exitUnsatisfiable = 20
)

// parseSolution collects the literals of the "v" lines of a competition-format answer
func parseSolution(solverOutput string) (SATSolution, error) {
	lines := lo.Filter(strings.Split(solverOutput, "\n"), func(line string, _ int) bool {
		return len(line) > 0 && line[0] == 'v'
	})
	return parseLiterals(lo.FlatMap(lines, func(line string, _ int) []string {
		return strings.Fields(line[1:])
	}))
}

func parseLiterals(fields []string) (SATSolution, error) {
	solution := make(SATSolution, 0, len(fields))
	for _, field := range fields {
		value, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid literal in solver output: %w", err)
		}
		if value != 0 {
			solution = append(solution, value)
		}
	}
	return solution, nil
}

// ExecutablePath reads the path registered under solver in the JSON file at ConfigPath
func ExecutablePath(solver string) (string, error) {
	bytes, err := os.ReadFile(ConfigPath)
	if err != nil {
		return "", fmt.Errorf("cannot read solver config: %w", err)
	}
	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return "", fmt.Errorf("cannot parse solver config %v: %w", ConfigPath, err)
	}

	var config map[string]string
	if err := mapstructure.Decode(inputJson, &config); err != nil {
		return "", fmt.Errorf("cannot decode solver config %v: %w", ConfigPath, err)
	}

	path, ok := config[solver]
	if !ok || path == "" {
		return "", fmt.Errorf("solver \"%v\" is not present in config", solver)
	}
	return path, nil
}
