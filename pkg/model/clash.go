package model

import (
	"maps"
	"slices"

	"go.uber.org/zap"
)

// ClashGraph is a symmetric and irreflexive relation over sections that cannot be attended together
type ClashGraph struct {
	adjacency map[Section]map[Section]struct{}
}

func NewClashGraph() ClashGraph {
	return ClashGraph{adjacency: make(map[Section]map[Section]struct{})}
}

// Add marks a and b as clashing. A section never clashes with itself
func (graph *ClashGraph) Add(a, b Section) {
	if a == b {
		return
	}
	if graph.adjacency == nil {
		graph.adjacency = make(map[Section]map[Section]struct{})
	}
	link := func(from, to Section) {
		if graph.adjacency[from] == nil {
			graph.adjacency[from] = make(map[Section]struct{})
		}
		graph.adjacency[from][to] = struct{}{}
	}
	link(a, b)
	link(b, a)
}

func (graph ClashGraph) Clash(a, b Section) bool {
	_, ok := graph.adjacency[a][b]
	return ok
}

// ClashesWithAny reports whether section clashes with at least one of others
func (graph ClashGraph) ClashesWithAny(section Section, others []Section) bool {
	return slices.ContainsFunc(others, func(other Section) bool { return graph.Clash(section, other) })
}

func (graph ClashGraph) Neighbors(section Section) []Section {
	return slices.SortedFunc(maps.Keys(graph.adjacency[section]), CompareSections)
}

// Sections returns every section involved in at least one clash
func (graph ClashGraph) Sections() []Section {
	return slices.SortedFunc(maps.Keys(graph.adjacency), CompareSections)
}

// Edges lists each clash once, as an ordered pair (smaller section first)
func (graph ClashGraph) Edges() [][2]Section {
	edges := make([][2]Section, 0)
	for _, section := range graph.Sections() {
		for _, neighbor := range graph.Neighbors(section) {
			if CompareSections(section, neighbor) < 0 {
				edges = append(edges, [2]Section{section, neighbor})
			}
		}
	}
	return edges
}

// ClashesFromTimings relates two sections iff they share a timing with the same day and the same start time.
// End times are not compared
func ClashesFromTimings(timings map[Section][]Timing) ClashGraph {
	graph := NewClashGraph()
	sections := slices.SortedFunc(maps.Keys(timings), CompareSections)
	for i := range len(sections) - 1 {
		for j := i + 1; j < len(sections); j++ {
			if shareStart(timings[sections[i]], timings[sections[j]]) {
				graph.Add(sections[i], sections[j])
			}
		}
	}
	return graph
}

func shareStart(timings1, timings2 []Timing) bool {
	for _, timing1 := range timings1 {
		for _, timing2 := range timings2 {
			if timing1.Day == timing2.Day && timing1.Start == timing2.Start {
				return true
			}
		}
	}
	return false
}

// ClashesFromGroups relates every pair of sections within a group. Groups accumulate and unparseable identifiers are
// skipped
func ClashesFromGroups(groups [][]string, logger *zap.Logger) ClashGraph {
	logger = orNop(logger)
	graph := NewClashGraph()
	for line, group := range groups {
		sections := make([]Section, 0, len(group))
		for _, code := range group {
			section, err := ParseSection(code)
			if err != nil {
				logger.Warn("skipping clash group member", zap.Int("group", line+1), zap.Error(err))
				continue
			}
			sections = append(sections, section)
		}
		for i := range len(sections) - 1 {
			for j := i + 1; j < len(sections); j++ {
				graph.Add(sections[i], sections[j])
			}
		}
	}
	return graph
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
