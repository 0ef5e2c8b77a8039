package graph

import (
	"reflect"
	"slices"
	"testing"

	"github.com/matzehuels/taskweb/pkg/errors"
)

func conns(pairs ...string) []Connection {
	var out []Connection
	for i := 0; i+2 < len(pairs); i += 3 {
		out = append(out, Connection{Source: pairs[i], Target: pairs[i+1], Type: pairs[i+2]})
	}
	return out
}

func TestBuild(t *testing.T) {
	in := conns(
		"A", "B", "Climate Action",
		"B", "C", "Other",
		"A", "D", "Climate Action",
		"D", "C", "Zero Hunger",
	)
	metrics := []Metric{
		{Task: "A", Fields: []Field{{"budget", 10}}},
		{Task: "A", Fields: []Field{{"budget", 20}}},
		{Task: "Z", Fields: []Field{{"budget", 30}}},
	}

	net := Build(in, metrics)

	if want := []string{"A", "B", "C", "D"}; !slices.Equal(net.Nodes, want) {
		t.Errorf("Nodes = %v, want %v", net.Nodes, want)
	}
	if want := []string{"Climate Action", "Other", "Zero Hunger"}; !slices.Equal(net.Types, want) {
		t.Errorf("Types = %v, want %v", net.Types, want)
	}
	if len(net.Links) != 4 || net.Links[3] != (Link{"D", "C", "Zero Hunger"}) {
		t.Errorf("Links = %v", net.Links)
	}
	if net.Graph.EdgeCount() != 4 {
		t.Errorf("Graph.EdgeCount() = %d, want 4", net.Graph.EdgeCount())
	}

	m, ok := net.Info.Lookup("A")
	if !ok {
		t.Fatal("Info[A] missing")
	}
	if v, _ := m.Get("budget"); v != 20 {
		t.Errorf("Info[A].budget = %v, want 20 (last write wins)", v)
	}
}

func TestBuild_UniqueNodes(t *testing.T) {
	in := conns(
		"a", "b", "x",
		"a", "b", "x",
		"b", "a", "y",
		"a", "a", "x",
	)
	net := Build(in, nil)
	if want := []string{"a", "b"}; !slices.Equal(net.Nodes, want) {
		t.Errorf("Nodes = %v, want %v", net.Nodes, want)
	}
	if len(net.Links) != 4 {
		t.Errorf("len(Links) = %d, want 4", len(net.Links))
	}
}

func TestBuild_MetricsOnlyTaskExcluded(t *testing.T) {
	net := Build(conns("a", "b", "x"), []Metric{{Task: "lonely"}})
	if slices.Contains(net.Nodes, "lonely") {
		t.Errorf("Nodes = %v, must not contain metrics-only task", net.Nodes)
	}
	if _, ok := net.Info.Lookup("lonely"); !ok {
		t.Error("Info should still hold the metric for lonely")
	}
}

func TestBuild_Idempotent(t *testing.T) {
	in := conns("a", "b", "x", "c", "a", "y", "b", "c", "x")
	metrics := []Metric{{Task: "a", Fields: []Field{{"k", "v"}}}}

	first, second := Build(in, metrics), Build(in, metrics)
	if !slices.Equal(first.Nodes, second.Nodes) {
		t.Errorf("Nodes differ: %v vs %v", first.Nodes, second.Nodes)
	}
	if !slices.Equal(first.Links, second.Links) {
		t.Errorf("Links differ: %v vs %v", first.Links, second.Links)
	}
	if !slices.Equal(first.Types, second.Types) {
		t.Errorf("Types differ: %v vs %v", first.Types, second.Types)
	}
	if !reflect.DeepEqual(first.Info, second.Info) {
		t.Errorf("Info differs: %v vs %v", first.Info, second.Info)
	}
}

func TestBuild_MalformedDegrades(t *testing.T) {
	in := []Connection{
		{Source: "a", Target: "b"},
		{Source: "", Target: "c", Type: "Other"},
		{Source: "d", Target: ""},
	}
	net := Build(in, nil)

	if want := []string{"a", "b", "c", "d"}; !slices.Equal(net.Nodes, want) {
		t.Errorf("Nodes = %v, want %v", net.Nodes, want)
	}
	if len(net.Links) != 3 {
		t.Errorf("len(Links) = %d, want 3", len(net.Links))
	}
	if net.Graph.EdgeCount() != 1 {
		t.Errorf("Graph.EdgeCount() = %d, want 1", net.Graph.EdgeCount())
	}
	if want := []string{"", "Other"}; !slices.Equal(net.Types, want) {
		t.Errorf("Types = %v, want %v", net.Types, want)
	}
	if got := net.Resolve(); len(got) != 1 {
		t.Errorf("Resolve() = %v, want 1 link", got)
	}
}

func TestResolve(t *testing.T) {
	net := Build(conns("a", "b", "x", "c", "a", "y"), nil)
	got := net.Resolve()
	want := []ResolvedLink{
		{Link: Link{"a", "b", "x"}, SourceIndex: 0, TargetIndex: 1},
		{Link: Link{"c", "a", "y"}, SourceIndex: 2, TargetIndex: 0},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}
	// Links are not touched by resolution.
	if net.Links[0].Source != "a" {
		t.Errorf("Links[0].Source = %q, want a", net.Links[0].Source)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      []Connection
		wantErr bool
	}{
		{"ok", conns("a", "b", "x"), false},
		{"untyped ok", []Connection{{Source: "a", Target: "b"}}, false},
		{"missing source", []Connection{{Target: "b"}}, true},
		{"missing target", []Connection{{Source: "a"}}, true},
		{"control char", []Connection{{Source: "a\x01", Target: "b"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidConnection) {
				t.Errorf("Validate() code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidConnection)
			}
		})
	}
}

func TestUntyped(t *testing.T) {
	in := []Connection{{Source: "a", Target: "b", Type: "x"}, {Source: "b", Target: "c"}}
	if got := Untyped(in); !slices.Equal(got, []int{2}) {
		t.Errorf("Untyped() = %v, want [2]", got)
	}
}
