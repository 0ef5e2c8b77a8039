package transform

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/taskweb/pkg/dag"
)

// genGraph draws a random graph over up to 12 nodes. When acyclic is set,
// edges only point from lower to higher node numbers.
func genGraph(t *rapid.T, acyclic bool) *dag.DAG {
	n := rapid.IntRange(1, 12).Draw(t, "nodes")
	edgeCount := rapid.IntRange(0, 3*n).Draw(t, "edges")

	g := dag.New(nil)
	for i := 0; i < n; i++ {
		g.EnsureNode(fmt.Sprintf("n%d", i))
	}
	for i := 0; i < edgeCount; i++ {
		from := rapid.IntRange(0, n-1).Draw(t, "from")
		to := rapid.IntRange(0, n-1).Draw(t, "to")
		if acyclic {
			if from == to {
				continue
			}
			from, to = min(from, to), max(from, to)
		}
		_ = g.AddEdge(dag.Edge{From: fmt.Sprintf("n%d", from), To: fmt.Sprintf("n%d", to)})
	}
	return g
}

func TestProperty_TotalCoverage(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := genGraph(t, false)
		for _, s := range Strategies {
			res, err := Assign(g, s)
			if err != nil {
				t.Fatalf("Assign(%s) error = %v", s, err)
			}
			if len(res.Levels) != g.NodeCount() {
				t.Fatalf("%s: %d levels for %d nodes", s, len(res.Levels), g.NodeCount())
			}
			for _, id := range g.NodeIDs() {
				lvl, ok := res.Levels[id]
				if !ok {
					t.Fatalf("%s: node %s has no level", s, id)
				}
				if lvl < 0 {
					t.Fatalf("%s: node %s has negative level %d", s, id, lvl)
				}
			}
		}
	})
}

func TestProperty_RootsAtLevelZero(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := genGraph(t, false)
		first := AssignLevels(g)
		longest, _ := AssignLongestPathLevels(g)
		for _, n := range g.Sources() {
			if first[n.ID] != 0 {
				t.Fatalf("first-visit level(%s) = %d, want 0", n.ID, first[n.ID])
			}
			if longest[n.ID] != 0 {
				t.Fatalf("longest-path level(%s) = %d, want 0", n.ID, longest[n.ID])
			}
		}
	})
}

func TestProperty_LongestPathMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := genGraph(t, true)
		levels, broken := AssignLongestPathLevels(g)
		if len(broken) != 0 {
			t.Fatalf("acyclic graph had broken edges %v", broken)
		}
		for _, e := range g.Edges() {
			if levels[e.To] <= levels[e.From] {
				t.Fatalf("level(%s)=%d not below level(%s)=%d", e.To, levels[e.To], e.From, levels[e.From])
			}
		}
	})
}

func TestProperty_BreakCyclesLeavesDAG(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := genGraph(t, false)
		BreakCycles(g)
		if err := g.Validate(); err != nil {
			t.Fatalf("Validate() after BreakCycles = %v", err)
		}
		if cycles := FindCycles(g); len(cycles) != 0 {
			t.Fatalf("FindCycles() after BreakCycles = %v", cycles)
		}
	})
}

func TestProperty_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := genGraph(t, false)
		a, b := AssignLevels(g), AssignLevels(g.Clone())
		for id, lvl := range a {
			if b[id] != lvl {
				t.Fatalf("level(%s) differs between runs: %d vs %d", id, lvl, b[id])
			}
		}
	})
}
