package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/taskweb/pkg/graph"
)

func testLayout() graph.Layout {
	return graph.Layout{
		VizType: graph.VizTypeNodelink,
		Nodes: []graph.LayoutNode{
			{ID: "survey", Level: 0},
			{ID: "wells", Level: 1},
			{ID: "crops", Level: 1},
			{ID: "harvest", Level: 3},
		},
		Links: []graph.LayoutLink{
			{Source: "survey", Target: "wells", Type: "Clean Water and Sanitation", Color: "#2AADD2"},
			{Source: "survey", Target: "crops", Type: "Mystery"},
			{Source: "crops", Target: "harvest", Type: "Zero Hunger", Color: "#DDA63A"},
		},
		Colors: []graph.TypeColor{
			{Type: "Clean Water and Sanitation", Color: "#2AADD2"},
			{Type: "Mystery"},
			{Type: "Zero Hunger", Color: "#DDA63A"},
		},
	}
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(testLayout(), Options{})

	if !strings.Contains(dot, "digraph G") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	for _, id := range []string{"survey", "wells", "crops", "harvest"} {
		if !strings.Contains(dot, `"`+id+`" [label="`+id+`"]`) {
			t.Errorf("ToDOT() output missing node %s", id)
		}
	}
	if !strings.Contains(dot, `"survey" -> "wells"`) {
		t.Error("ToDOT() output missing edge")
	}
}

func TestToDOT_RanksByLevel(t *testing.T) {
	dot := ToDOT(testLayout(), Options{})

	for _, want := range []string{
		`{ rank=same; "survey"; }`,
		`{ rank=same; "wells"; "crops"; }`,
		`{ rank=same; "harvest"; }`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %s", want)
		}
	}
	if got := strings.Count(dot, "rank=same"); got != 3 {
		t.Errorf("rank groups = %d, want 3 (empty level 2 skipped)", got)
	}
}

func TestToDOT_EdgeColors(t *testing.T) {
	dot := ToDOT(testLayout(), Options{})

	if !strings.Contains(dot, `"survey" -> "wells" [tooltip="Clean Water and Sanitation", color="#2AADD2"];`) {
		t.Error("ToDOT() known type edge not coloured")
	}
	if !strings.Contains(dot, `"survey" -> "crops" [tooltip="Mystery"];`) {
		t.Error("ToDOT() unknown type edge should have no colour")
	}
}

func TestToDOT_Detailed(t *testing.T) {
	l := testLayout()
	l.Nodes[0].Metric = &graph.Metric{Task: "survey", Fields: []graph.Field{{Key: "owner", Value: "Ana"}}}

	dot := ToDOT(l, Options{Detailed: true})

	if !strings.Contains(dot, `label="survey\nlevel: 0\nowner: Ana"`) {
		t.Errorf("ToDOT() detailed output missing level or metric:\n%s", dot)
	}
	if !strings.Contains(dot, `label="harvest\nlevel: 3"`) {
		t.Error("ToDOT() detailed output missing level for task without metric")
	}
}

func TestToDOT_Legend(t *testing.T) {
	dot := ToDOT(testLayout(), Options{Legend: true})

	if !strings.Contains(dot, "subgraph cluster_legend") {
		t.Fatal("ToDOT() missing legend cluster")
	}
	if !strings.Contains(dot, `[label="Zero Hunger", fillcolor="#DDA63A"]`) {
		t.Error("ToDOT() legend missing coloured type")
	}
	if strings.Contains(dot, `label="Mystery"`) {
		t.Error("ToDOT() legend lists a type without colour")
	}
}

func TestFmtLabel_Simple(t *testing.T) {
	label := fmtLabel(graph.LayoutNode{ID: "test-node"}, false)
	if label != "test-node" {
		t.Errorf("fmtLabel() simple mode = %q, want %q", label, "test-node")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="10 20 800 600" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeViewBox([]byte(tt.svg))
			if string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(testLayout(), Options{Legend: true}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
	if !strings.Contains(string(svg), "survey") {
		t.Error("RenderSVG() output missing task label")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	_, err := RenderSVG(context.Background(), `not valid DOT {{{`)
	if err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}
