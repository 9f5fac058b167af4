package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/limaJavier/allocation/pkg/model"
	"github.com/limaJavier/allocation/pkg/sat"
	"github.com/samber/lo"
)

type ResultType int

const (
	solved ResultType = iota
	infeasible
	timeout
	failed
)

var resultTypes = map[ResultType]string{
	solved:     "solved",
	infeasible: "infeasible",
	timeout:    "timeout",
	failed:     "failed",
}

// InstanceMetadata describes a generated instance
type InstanceMetadata struct {
	Name           string
	Students       int
	Courses        int
	Sections       int
	Preferences    int
	HeldSections   int
	ClashingGroups int
}

type InstanceParameters struct {
	Students          int
	Courses           int
	SectionsPerCourse int
	// Courses ranked by each student
	Preferred int
	// Expected seats offered over seats needed
	Slack       float64
	ClashGroups int
	HeldRatio   float64
}

type BenchmarkResult struct {
	Solver      string `csv:"Solver"`
	Instance    string `csv:"Instance"`
	Students    int    `csv:"Students"`
	Courses     int    `csv:"Courses"`
	Sections    int    `csv:"Sections"`
	Preferences int    `csv:"Preferences"`
	Variables   uint64 `csv:"Variables"`
	Constraints int    `csv:"Constraints"`
	Duration    int64  `csv:"Duration(ms)"`
	Objective   int    `csv:"Objective"`
	Optimal     bool   `csv:"Optimal"`
	Result      string `csv:"Result"`
}

type namedOptimizer struct {
	name      string
	optimizer sat.Optimizer
}

func main() {
	instancesPtr := flag.Int("instances", 5, "Number of random instances, where 5 is the default")
	studentsPtr := flag.Int("students", 60, "Students per instance, where 60 is the default")
	coursesPtr := flag.Int("courses", 10, "Courses per instance, where 10 is the default")
	sectionsPtr := flag.Int("sections", 3, "Sections per course, where 3 is the default")
	seedPtr := flag.Int64("seed", 1, "Random seed")
	timeoutPtr := flag.Duration("timeout", time.Minute, "Time limit per solver and instance")
	executablesPtr := flag.String("executables", "config.json", "JSON file with the paths of the external solvers; solvers missing from it are skipped")
	outFilePtr := flag.String("out", "benchmark_results.csv", "Path of the results CSV")
	flag.Parse()

	parameters := InstanceParameters{
		Students:          *studentsPtr,
		Courses:           *coursesPtr,
		SectionsPerCourse: *sectionsPtr,
		Preferred:         min(*coursesPtr, 6),
		Slack:             1.5,
		ClashGroups:       *coursesPtr / 2,
		HeldRatio:         0.1,
	}
	config := model.DefaultConfig()
	if parameters.Preferred < config.MaxCourses {
		log.Fatalf("at least %d courses are required", config.MaxCourses)
	}

	optimizers := getOptimizers(*executablesPtr)
	random := rand.New(rand.NewSource(*seedPtr))
	results := make([]*BenchmarkResult, 0, *instancesPtr*len(optimizers))

	for index := range *instancesPtr {
		instance, input := generateInstance(random, parameters, config, fmt.Sprintf("random-%d", index+1))
		for _, optimizer := range optimizers {
			fmt.Printf("Benchmarking instance \"%v\" with solver \"%v\"\n", instance.Name, optimizer.name)
			results = append(results, measure(optimizer, instance, input, config, *timeoutPtr))
		}
	}

	if err := toCsv(*outFilePtr, results); err != nil {
		log.Fatalf("cannot write results: %v", err)
	}
}

func getOptimizers(executables string) []namedOptimizer {
	optimizers := []namedOptimizer{
		{name: "gini", optimizer: sat.NewGiniOptimizer()},
		{name: "gini-linear", optimizer: sat.NewLinearSearchOptimizer(sat.NewGiniSolver())},
	}

	sat.ConfigPath = executables
	external := map[string]func(string) sat.SATSolver{
		"kissat":  sat.NewKissatSolver,
		"minisat": sat.NewMinisatSolver,
	}
	for _, name := range []string{"kissat", "minisat"} {
		path, err := sat.ExecutablePath(name + "Path")
		if err != nil {
			fmt.Printf("Skipping solver \"%v\": %v\n", name, err)
			continue
		}
		optimizers = append(optimizers, namedOptimizer{name: name, optimizer: sat.NewLinearSearchOptimizer(external[name](path))})
	}
	return optimizers
}

// generateInstance draws sections with random capacities, random clash groups, ranked preferences over distinct
// courses (every section of a preferred course shares its rank) and a few held sections
func generateInstance(random *rand.Rand, parameters InstanceParameters, config model.Config, name string) (InstanceMetadata, model.Input) {
	input := model.Input{
		Capacities: make(map[model.Section]int),
		Clashes:    model.NewClashGraph(),
		Held:       make(model.HeldSections),
	}

	courses := lo.Times(parameters.Courses, func(index int) model.CourseCode {
		return model.CourseCode(fmt.Sprintf("BM-%03d", index+1))
	})
	sections := make([]model.Section, 0, parameters.Courses*parameters.SectionsPerCourse)
	meanSeats := parameters.Slack * float64(parameters.Students*config.MaxCourses) / float64(max(1, len(courses)*parameters.SectionsPerCourse))
	for _, course := range courses {
		for number := range parameters.SectionsPerCourse {
			section := model.Section{Course: course, Number: number + 1}
			sections = append(sections, section)
			input.Capacities[section] = random.Intn(int(2*meanSeats) + 1)
		}
	}

	groups := make([][]string, 0, parameters.ClashGroups)
	for range parameters.ClashGroups {
		size := 2 + random.Intn(2)
		group := lo.Map(random.Perm(len(sections))[:min(size, len(sections))], func(index int, _ int) string {
			return sections[index].Code()
		})
		groups = append(groups, group)
	}
	input.Clashes = model.ClashesFromGroups(groups, nil)

	records := make([]model.PreferenceRecord, 0)
	for index := range parameters.Students {
		student := model.StudentID(fmt.Sprintf("st%04d", index+1))
		for rank, courseIndex := range random.Perm(len(courses))[:parameters.Preferred] {
			for number := range parameters.SectionsPerCourse {
				section := model.Section{Course: courses[courseIndex], Number: number + 1}
				records = append(records, model.PreferenceRecord{Student: student, Section: section.Code(), Rank: rank + 1})
			}
		}
		if random.Float64() < parameters.HeldRatio {
			input.Held.Add(student, sections[random.Intn(len(sections))])
		}
	}
	input.Preferences = model.NewPreferenceIndex(records, config, nil)

	heldSections := 0
	for _, held := range input.Held {
		heldSections += len(held)
	}
	instance := InstanceMetadata{
		Name:           name,
		Students:       len(input.Students()),
		Courses:        len(courses),
		Sections:       len(sections),
		Preferences:    input.Preferences.Len(),
		HeldSections:   heldSections,
		ClashingGroups: len(groups),
	}
	return instance, input
}

func measure(optimizer namedOptimizer, instance InstanceMetadata, input model.Input, config model.Config, limit time.Duration) *BenchmarkResult {
	ctx, cancel := context.WithTimeout(context.Background(), limit)
	defer cancel()

	allocator := model.NewSATAllocator(optimizer.optimizer, config, nil)
	start := time.Now()
	allocation, err := allocator.Allocate(ctx, input)
	duration := time.Since(start)

	result := &BenchmarkResult{
		Solver:      optimizer.name,
		Instance:    instance.Name,
		Students:    instance.Students,
		Courses:     instance.Courses,
		Sections:    instance.Sections,
		Preferences: instance.Preferences,
		Variables:   allocation.Variables,
		Constraints: allocation.Constraints,
		Duration:    duration.Milliseconds(),
		Objective:   allocation.Objective,
		Optimal:     allocation.Optimal,
		Result:      resultTypes[classify(allocation, err)],
	}
	if err == nil {
		if err := allocator.Verify(allocation.Assignment, input); err != nil {
			log.Fatalf("solver \"%v\" produced an invalid allocation for \"%v\": %v", optimizer.name, instance.Name, err)
		}
	}
	return result
}

func classify(allocation model.Allocation, err error) ResultType {
	switch {
	case errors.Is(err, model.ErrInfeasible):
		return infeasible
	case errors.Is(err, context.DeadlineExceeded):
		return timeout
	case err != nil:
		return failed
	case !allocation.Optimal:
		return timeout
	}
	return solved
}

func toCsv(path string, results []*BenchmarkResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create CSV file: %w", err)
	}
	defer file.Close()

	return gocsv.MarshalFile(&results, file)
}
