package transform

import (
	"fmt"
	"slices"

	"github.com/matzehuels/taskweb/pkg/dag"
)

// Levels maps node IDs to their layout depth. Level 0 holds the nodes
// without dependencies.
type Levels map[string]int

// Max returns the highest level, or 0 if the map is empty.
func (l Levels) Max() int {
	maxLevel := 0
	for _, lvl := range l {
		maxLevel = max(maxLevel, lvl)
	}
	return maxLevel
}

// Of returns the level of id, defaulting to 0 for unknown IDs.
func (l Levels) Of(id string) int { return l[id] }

// Strategy selects the level assignment algorithm.
type Strategy string

const (
	// FirstVisit propagates levels forward from the roots and keeps the
	// first level a node receives. Cheap, order dependent, tolerant of cycles.
	FirstVisit Strategy = "first-visit"

	// LongestPath breaks cycles deterministically and places every node one
	// level below its deepest dependency.
	LongestPath Strategy = "longest-path"
)

// Strategies lists the supported strategies in display order.
var Strategies = []Strategy{LongestPath, FirstVisit}

// ParseStrategy converts a user-supplied name into a Strategy.
// The empty string selects [LongestPath].
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "":
		return LongestPath, nil
	case FirstVisit, LongestPath:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown level strategy %q (want %s or %s)", s, LongestPath, FirstVisit)
}

// Result is the outcome of [Assign].
type Result struct {
	Strategy Strategy
	Levels   Levels
	Cycles   [][]string  // strongly connected components, see FindCycles
	Broken   [][2]string // edges ignored to make the graph acyclic (LongestPath only)
}

// Assign computes levels for every node of g with the given strategy and
// stores them on the graph via [dag.DAG.SetLevels]. Cycles are always
// reported; only [LongestPath] removes edges, and it does so on a copy so g
// keeps every edge.
func Assign(g *dag.DAG, s Strategy) (Result, error) {
	res := Result{Strategy: s, Cycles: FindCycles(g)}
	switch s {
	case FirstVisit:
		res.Levels = AssignLevels(g)
	case LongestPath, "":
		res.Strategy = LongestPath
		res.Levels, res.Broken = AssignLongestPathLevels(g)
	default:
		return Result{}, fmt.Errorf("unknown level strategy %q", s)
	}
	g.SetLevels(res.Levels)
	return res, nil
}

// AssignLevels computes first-visit levels.
//
// Roots (nodes without dependencies) are visited in node order with floor 0.
// Visiting a node computes
//
//	level = max(floor, max(level(d)+1 for each dependency d))
//
// where unvisited dependencies count as level 0, then visits each dependent
// with floor level+1. A node that was already visited is skipped, so a node
// reached early through a short path keeps its lower level. Nodes left
// unvisited after the root pass (those only reachable through a cycle) are
// visited in node order with floor 0.
//
// The traversal uses an explicit stack and reproduces the visiting order of
// a depth-first recursion, so deep chains cannot exhaust the goroutine stack.
// Every node receives exactly one level and the function terminates on any
// input, cyclic or not.
func AssignLevels(g *dag.DAG) Levels {
	idx := newDependencyIndex(g)
	levels := make(Levels, g.NodeCount())
	visited := make(map[string]bool, g.NodeCount())

	type frame struct {
		id    string
		floor int
	}

	visit := func(start string) {
		stack := []frame{{id: start}}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[f.id] {
				continue
			}
			visited[f.id] = true

			level := f.floor
			for _, d := range idx.dependencies[f.id] {
				level = max(level, levels[d]+1)
			}
			levels[f.id] = level

			deps := idx.dependents[f.id]
			for i := len(deps) - 1; i >= 0; i-- {
				stack = append(stack, frame{id: deps[i], floor: level + 1})
			}
		}
	}

	ids := g.NodeIDs()
	for _, id := range ids {
		if len(idx.dependencies[id]) == 0 {
			visit(id)
		}
	}
	for _, id := range ids {
		if !visited[id] {
			visit(id)
		}
	}
	return levels
}

// AssignLongestPathLevels computes longest-path levels: every node sits one
// level below its deepest dependency. Cycles are broken first on a copy of g
// (see [BackEdges]); the ignored edges are returned in discovery order.
//
// The layering is a topological traversal (Kahn's algorithm):
//  1. Nodes with in-degree 0 start at level 0
//  2. Each processed node pushes its dependents to at least its level + 1
//  3. A dependent is queued once all of its dependencies are processed
//
// Time complexity is O(V + E).
func AssignLongestPathLevels(g *dag.DAG) (Levels, [][2]string) {
	acyclic := g.Clone()
	broken := BackEdges(acyclic)
	for _, e := range broken {
		acyclic.RemoveEdge(e[0], e[1])
	}

	nodes := acyclic.Nodes()
	inDegree := make(map[string]int, len(nodes))
	levels := make(Levels, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		degree := acyclic.InDegree(n.ID)
		inDegree[n.ID] = degree
		levels[n.ID] = 0
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range acyclic.Dependents(curr) {
			if lvl := levels[curr] + 1; lvl > levels[child] {
				levels[child] = lvl
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return levels, broken
}

// dependencyIndex holds the ordered distinct dependency and dependent sets
// of every node.
type dependencyIndex struct {
	dependencies map[string][]string
	dependents   map[string][]string
}

func newDependencyIndex(g *dag.DAG) dependencyIndex {
	idx := dependencyIndex{
		dependencies: make(map[string][]string, g.NodeCount()),
		dependents:   make(map[string][]string, g.NodeCount()),
	}
	for _, e := range g.Edges() {
		if !slices.Contains(idx.dependencies[e.To], e.From) {
			idx.dependencies[e.To] = append(idx.dependencies[e.To], e.From)
		}
		if !slices.Contains(idx.dependents[e.From], e.To) {
			idx.dependents[e.From] = append(idx.dependents[e.From], e.To)
		}
	}
	return idx
}
