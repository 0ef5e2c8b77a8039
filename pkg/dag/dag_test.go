package dag

import (
	"errors"
	"slices"
	"testing"
)

func TestAddNode(t *testing.T) {
	g := New(nil)

	if err := g.AddNode(Node{ID: ""}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) = %v, want %v", err, ErrInvalidNodeID)
	}
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode(a) = %v", err)
	}
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(a) twice = %v, want %v", err, ErrDuplicateNodeID)
	}

	n, ok := g.Node("a")
	if !ok {
		t.Fatal("Node(a) not found")
	}
	if n.Meta == nil {
		t.Error("Node(a).Meta is nil, want empty map")
	}
}

func TestEnsureNode(t *testing.T) {
	g := New(nil)
	if !g.EnsureNode("a") {
		t.Error("EnsureNode(a) = false, want true")
	}
	if g.EnsureNode("a") {
		t.Error("EnsureNode(a) second call = true, want false")
	}
	if g.EnsureNode("") {
		t.Error("EnsureNode(empty) = true, want false")
	}
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount() = %d, want 1", g.NodeCount())
	}
}

func TestAddEdge(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})

	if err := g.AddEdge(Edge{From: "x", To: "b"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge(x→b) = %v, want %v", err, ErrUnknownSourceNode)
	}
	if err := g.AddEdge(Edge{From: "a", To: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge(a→x) = %v, want %v", err, ErrUnknownTargetNode)
	}
	if err := g.AddEdge(Edge{From: "a", To: "b", Type: "Other"}); err != nil {
		t.Fatalf("AddEdge(a→b) = %v", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "b", Type: "Other"}); err != nil {
		t.Fatalf("AddEdge(a→b) duplicate = %v", err)
	}

	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
	if got := g.Dependencies("b"); !slices.Equal(got, []string{"a", "a"}) {
		t.Errorf("Dependencies(b) = %v, want [a a]", got)
	}
	if g.InDegree("b") != 2 || g.OutDegree("a") != 2 {
		t.Errorf("InDegree(b)=%d OutDegree(a)=%d, want 2 and 2", g.InDegree("b"), g.OutDegree("a"))
	}

	g.RemoveEdge("a", "b")
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() after RemoveEdge = %d, want 0", g.EdgeCount())
	}
}

func TestNodesPreserveInsertionOrder(t *testing.T) {
	g := New(nil)
	ids := []string{"zeta", "alpha", "mid", "beta"}
	for _, id := range ids {
		_ = g.AddNode(Node{ID: id})
	}

	for i := 0; i < 5; i++ {
		var got []string
		for _, n := range g.Nodes() {
			got = append(got, n.ID)
		}
		if !slices.Equal(got, ids) {
			t.Fatalf("Nodes() order = %v, want %v", got, ids)
		}
	}
}

func TestLevels(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"a", "b", "c", "d"} {
		_ = g.AddNode(Node{ID: id})
	}
	g.SetLevels(map[string]int{"a": 0, "b": 1, "c": 1, "d": 3, "missing": 7})

	if got := g.LevelIDs(); !slices.Equal(got, []int{0, 1, 3}) {
		t.Errorf("LevelIDs() = %v, want [0 1 3]", got)
	}
	if g.MaxLevel() != 3 {
		t.Errorf("MaxLevel() = %d, want 3", g.MaxLevel())
	}
	if got := NodeIDsOf(g.NodesInLevel(1)); !slices.Equal(got, []string{"b", "c"}) {
		t.Errorf("NodesInLevel(1) = %v, want [b c]", got)
	}
	if New(nil).MaxLevel() != 0 {
		t.Error("MaxLevel() of empty graph should be 0")
	}
}

func TestSourcesAndSinks(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"a", "b", "c"} {
		_ = g.AddNode(Node{ID: id})
	}
	_ = g.AddEdge(Edge{From: "a", To: "b"})
	_ = g.AddEdge(Edge{From: "b", To: "c"})

	if got := NodeIDsOf(g.Sources()); !slices.Equal(got, []string{"a"}) {
		t.Errorf("Sources() = %v, want [a]", got)
	}
	if got := NodeIDsOf(g.Sinks()); !slices.Equal(got, []string{"c"}) {
		t.Errorf("Sinks() = %v, want [c]", got)
	}
}

func TestValidate(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"a", "b", "c"} {
		_ = g.AddNode(Node{ID: id})
	}
	_ = g.AddEdge(Edge{From: "a", To: "b"})
	_ = g.AddEdge(Edge{From: "b", To: "c"})
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	_ = g.AddEdge(Edge{From: "c", To: "a"})
	if err := g.Validate(); !errors.Is(err, ErrGraphHasCycle) {
		t.Errorf("Validate() = %v, want %v", err, ErrGraphHasCycle)
	}
}

func TestClone(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})
	_ = g.AddEdge(Edge{From: "a", To: "b", Type: "Other"})

	c := g.Clone()
	c.RemoveEdge("a", "b")
	n, _ := c.Node("a")
	n.Level = 5

	if g.EdgeCount() != 1 {
		t.Errorf("original EdgeCount() = %d, want 1", g.EdgeCount())
	}
	if orig, _ := g.Node("a"); orig.Level != 0 {
		t.Errorf("original Level = %d, want 0", orig.Level)
	}
	if !slices.Equal(c.NodeIDs(), g.NodeIDs()) {
		t.Errorf("Clone().NodeIDs() = %v, want %v", c.NodeIDs(), g.NodeIDs())
	}
}

func TestPosMap(t *testing.T) {
	m := PosMap([]string{"x", "y"})
	if m["x"] != 0 || m["y"] != 1 || len(m) != 2 {
		t.Errorf("PosMap() = %v", m)
	}
}
