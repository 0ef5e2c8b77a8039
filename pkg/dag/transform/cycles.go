package transform

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/matzehuels/taskweb/pkg/dag"
)

// BreakCycles removes the edges returned by [BackEdges] from g and reports
// how many distinct dependency pairs were removed. Parallel edges between a
// removed pair are removed together.
func BreakCycles(g *dag.DAG) int {
	backEdges := BackEdges(g)
	for _, e := range backEdges {
		g.RemoveEdge(e[0], e[1])
	}
	return len(backEdges)
}

// BackEdges finds the edges closing a cycle in a depth-first traversal that
// starts from the sources in node order and then from every node not yet
// reached. Removing them leaves g acyclic. The result is deterministic for a
// given insertion order and lists each (from, to) pair once.
func BackEdges(g *dag.DAG) [][2]string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, g.NodeCount())
	seen := make(map[[2]string]bool)
	var backEdges [][2]string

	type frame struct {
		id   string
		next int
	}

	dfs := func(start string) {
		color[start] = gray
		stack := []frame{{id: start}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := g.Dependents(top.id)
			if top.next == len(children) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			child := children[top.next]
			top.next++

			switch color[child] {
			case white:
				color[child] = gray
				stack = append(stack, frame{id: child})
			case gray:
				e := [2]string{top.id, child}
				if !seen[e] {
					seen[e] = true
					backEdges = append(backEdges, e)
				}
			}
		}
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	for _, id := range g.NodeIDs() {
		if color[id] == white {
			dfs(id)
		}
	}
	return backEdges
}

// FindCycles reports the cycles of g as strongly connected components with
// more than one node, plus single nodes with a self-loop. Each component
// lists its members in node order, and components are ordered by their
// first member.
func FindCycles(g *dag.DAG) [][]string {
	ids := g.NodeIDs()
	pos := dag.PosMap(ids)

	dg := simple.NewDirectedGraph()
	for i := range ids {
		dg.AddNode(simple.Node(int64(i)))
	}
	selfLoop := make(map[int]bool)
	for _, e := range g.Edges() {
		from, to := pos[e.From], pos[e.To]
		if from == to {
			selfLoop[from] = true
			continue
		}
		dg.SetEdge(simple.Edge{F: simple.Node(int64(from)), T: simple.Node(int64(to))})
	}

	var cycles [][]int
	for _, scc := range topo.TarjanSCC(dg) {
		members := make([]int, len(scc))
		for i, n := range scc {
			members[i] = int(n.ID())
		}
		if len(members) == 1 && !selfLoop[members[0]] {
			continue
		}
		slices.Sort(members)
		cycles = append(cycles, members)
	}
	slices.SortFunc(cycles, func(a, b []int) int { return a[0] - b[0] })

	result := make([][]string, len(cycles))
	for i, c := range cycles {
		result[i] = make([]string, len(c))
		for j, p := range c {
			result[i][j] = ids[p]
		}
	}
	return result
}
