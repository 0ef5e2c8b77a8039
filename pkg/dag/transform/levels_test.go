package transform

import (
	"testing"

	"github.com/matzehuels/taskweb/pkg/dag"
)

func buildGraph(edges ...[2]string) *dag.DAG {
	g := dag.New(nil)
	for _, e := range edges {
		g.EnsureNode(e[0])
		g.EnsureNode(e[1])
		_ = g.AddEdge(dag.Edge{From: e[0], To: e[1]})
	}
	return g
}

func assertLevels(t *testing.T, name string, got, want Levels) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("%s() = %v, want %v", name, got, want)
		return
	}
	for id, lvl := range want {
		if got[id] != lvl {
			t.Errorf("%s()[%s] = %d, want %d", name, id, got[id], lvl)
		}
	}
}

func TestAssignLevels(t *testing.T) {
	tests := []struct {
		name  string
		edges [][2]string
		want  Levels
	}{
		{
			name:  "diamond",
			edges: [][2]string{{"A", "B"}, {"B", "C"}, {"A", "D"}, {"D", "C"}},
			want:  Levels{"A": 0, "B": 1, "D": 1, "C": 2},
		},
		{
			name:  "chain",
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}},
			want:  Levels{"a": 0, "b": 1, "c": 2, "d": 3},
		},
		{
			name:  "two roots",
			edges: [][2]string{{"fund", "launch"}, {"hire", "launch"}},
			want:  Levels{"fund": 0, "hire": 0, "launch": 1},
		},
		{
			// D is reached from A before C is visited and keeps level 1.
			name:  "first visit wins",
			edges: [][2]string{{"A", "D"}, {"A", "B"}, {"B", "C"}, {"C", "D"}},
			want:  Levels{"A": 0, "D": 1, "B": 1, "C": 2},
		},
		{
			name:  "two-cycle",
			edges: [][2]string{{"A", "B"}, {"B", "A"}},
			want:  Levels{"A": 1, "B": 2},
		},
		{
			name:  "cycle below root",
			edges: [][2]string{{"r", "a"}, {"a", "b"}, {"b", "a"}},
			want:  Levels{"r": 0, "a": 1, "b": 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertLevels(t, "AssignLevels", AssignLevels(buildGraph(tt.edges...)), tt.want)
		})
	}
}

func TestAssignLevels_Isolated(t *testing.T) {
	g := dag.New(nil)
	g.EnsureNode("alone")
	assertLevels(t, "AssignLevels", AssignLevels(g), Levels{"alone": 0})
}

func TestAssignLevels_Empty(t *testing.T) {
	levels := AssignLevels(dag.New(nil))
	if len(levels) != 0 {
		t.Errorf("AssignLevels() = %v, want empty", levels)
	}
	if levels.Max() != 0 {
		t.Errorf("Max() = %d, want 0", levels.Max())
	}
}

func TestAssignLongestPathLevels(t *testing.T) {
	tests := []struct {
		name       string
		edges      [][2]string
		want       Levels
		wantBroken int
	}{
		{
			name:  "diamond",
			edges: [][2]string{{"A", "B"}, {"B", "C"}, {"A", "D"}, {"D", "C"}},
			want:  Levels{"A": 0, "B": 1, "D": 1, "C": 2},
		},
		{
			name:  "longest path wins",
			edges: [][2]string{{"A", "D"}, {"A", "B"}, {"B", "C"}, {"C", "D"}},
			want:  Levels{"A": 0, "B": 1, "C": 2, "D": 3},
		},
		{
			name:       "two-cycle",
			edges:      [][2]string{{"A", "B"}, {"B", "A"}},
			want:       Levels{"A": 0, "B": 1},
			wantBroken: 1,
		},
		{
			name:       "cycle below root",
			edges:      [][2]string{{"r", "a"}, {"a", "b"}, {"b", "a"}},
			want:       Levels{"r": 0, "a": 1, "b": 2},
			wantBroken: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildGraph(tt.edges...)
			levels, broken := AssignLongestPathLevels(g)
			assertLevels(t, "AssignLongestPathLevels", levels, tt.want)
			if len(broken) != tt.wantBroken {
				t.Errorf("broken = %v, want %d edges", broken, tt.wantBroken)
			}
			if g.EdgeCount() != len(tt.edges) {
				t.Errorf("EdgeCount() = %d, want %d (input must be untouched)", g.EdgeCount(), len(tt.edges))
			}
		})
	}
}

func TestAssign(t *testing.T) {
	g := buildGraph([2]string{"A", "B"}, [2]string{"B", "A"}, [2]string{"B", "C"})

	res, err := Assign(g, LongestPath)
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	if len(res.Cycles) != 1 {
		t.Errorf("Cycles = %v, want one cycle", res.Cycles)
	}
	if n, _ := g.Node("C"); n.Level != res.Levels["C"] {
		t.Errorf("node level = %d, want %d", n.Level, res.Levels["C"])
	}

	res, err = Assign(g, FirstVisit)
	if err != nil {
		t.Fatalf("Assign(FirstVisit) error = %v", err)
	}
	if len(res.Broken) != 0 {
		t.Errorf("FirstVisit Broken = %v, want none", res.Broken)
	}

	if _, err := Assign(g, Strategy("nope")); err == nil {
		t.Error("Assign(nope) error = nil, want error")
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"", LongestPath, false},
		{"longest-path", LongestPath, false},
		{"first-visit", FirstVisit, false},
		{"bfs", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStrategy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseStrategy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
