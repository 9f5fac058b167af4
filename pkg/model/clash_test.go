package model

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestClashesFromTimings(t *testing.T) {
	//** Arrange
	a, b, c, d := Section{"A-1", 1}, Section{"B-1", 1}, Section{"C-1", 1}, Section{"D-1", 1}
	timings := map[Section][]Timing{
		a: {{"Mon", "09:00", "10:30"}, {"Wed", "09:00", "10:30"}},
		// Same day and start as a, different end
		b: {{"Wed", "09:00", "11:00"}},
		// Overlaps a but starts later
		c: {{"Mon", "09:30", "10:30"}},
		d: {{"Tue", "09:00", "10:30"}, {"Mon", "14:00", "15:00"}},
	}

	//** Act
	graph := ClashesFromTimings(timings)

	//** Assert
	assert.True(t, graph.Clash(a, b))
	assert.True(t, graph.Clash(b, a))
	assert.False(t, graph.Clash(a, c))
	assert.False(t, graph.Clash(a, d))
	assert.Equal(t, [][2]Section{{a, b}}, graph.Edges())
	assert.Equal(t, []Section{a, b}, graph.Sections())
}

func TestClashesFromGroups(t *testing.T) {
	//** Arrange
	core, logs := observer.New(zap.WarnLevel)
	groups := [][]string{
		{"A-1-1", "B-1-1", "C-1-1"},
		{"C-1-1", "D-1-1", "not-a-section"},
	}

	//** Act
	graph := ClashesFromGroups(groups, zap.New(core))

	//** Assert
	a, b, c, d := Section{"A-1", 1}, Section{"B-1", 1}, Section{"C-1", 1}, Section{"D-1", 1}
	assert.Equal(t, []Section{a, b, d}, graph.Neighbors(c))
	assert.True(t, graph.Clash(a, b))
	assert.False(t, graph.Clash(a, d))
	assert.Len(t, graph.Edges(), 4)
	assert.Equal(t, 1, logs.FilterMessage("skipping clash group member").Len())
}

func TestClashGraphSymmetry(t *testing.T) {
	random := rand.New(rand.NewSource(3))
	for range 20 {
		//** Arrange
		timings := make(map[Section][]Timing)
		for i := range 15 {
			section := Section{Course: CourseCode(fmt.Sprintf("C-%d", i%5)), Number: i}
			for range 1 + random.Intn(3) {
				timings[section] = append(timings[section], Timing{
					Day:   []string{"Mon", "Tue", "Wed"}[random.Intn(3)],
					Start: []string{"09:00", "11:00"}[random.Intn(2)],
					End:   "12:00",
				})
			}
		}

		//** Act
		graph := ClashesFromTimings(timings)

		//** Assert
		for section1 := range timings {
			assert.False(t, graph.Clash(section1, section1))
			for section2 := range timings {
				assert.Equal(t, graph.Clash(section1, section2), graph.Clash(section2, section1))
			}
		}
	}
}

func TestClashGraphAdd(t *testing.T) {
	var graph ClashGraph
	a, b := Section{"A-1", 1}, Section{"B-1", 1}

	graph.Add(a, a)
	assert.Empty(t, graph.Edges())

	graph.Add(a, b)
	graph.Add(b, a)
	assert.Equal(t, [][2]Section{{a, b}}, graph.Edges())
	assert.True(t, graph.ClashesWithAny(b, []Section{{"C-1", 1}, a}))
}
