package scene

import (
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/taskweb/pkg/graph"
	"github.com/matzehuels/taskweb/pkg/layout"
	"github.com/matzehuels/taskweb/pkg/palette"
)

func testLayout() graph.Layout {
	survey := &graph.Metric{Task: "survey", Fields: []graph.Field{
		{Key: "owner", Value: "Ana"},
		{Key: "budget", Value: 1200},
	}}
	return graph.Layout{
		VizType: graph.VizTypeForce,
		Width:   1000,
		Height:  1000,
		Nodes: []graph.LayoutNode{
			{ID: "survey", Level: 0, X: 300, Y: 333.33, Metric: survey},
			{ID: "wells", Level: 1, X: 250, Y: 666.67},
			{ID: "crops", Level: 1, X: 400, Y: 666.67},
		},
		Links: []graph.LayoutLink{
			{Source: "survey", Target: "wells", Type: "Clean Water and Sanitation", Color: "#2AADD2"},
			{Source: "survey", Target: "crops", Type: "Mystery"},
		},
		Colors: []graph.TypeColor{
			{Type: "Clean Water and Sanitation", Color: "#2AADD2"},
			{Type: "Mystery"},
		},
	}
}

func TestRenderSVG_Structure(t *testing.T) {
	out := string(RenderSVG(testLayout()))

	for _, want := range []string{
		`class="taskweb"`,
		`viewBox="0 0 1000 1000"`,
		`style="max-width: 100%; height: auto; font: 14px sans-serif;"`,
		`transform="translate(50,0)"`,
		`<script type="text/javascript">`,
		`>Reset</text>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderSVG() missing %q", want)
		}
	}
	if got := strings.Count(out, `class="node"`); got != 3 {
		t.Errorf("node groups = %d, want 3", got)
	}
	if got := strings.Count(out, `class="link"`); got != 2 {
		t.Errorf("link paths = %d, want 2", got)
	}
}

func TestRenderSVG_LegendListsEveryCategory(t *testing.T) {
	p := palette.Default()
	out := string(RenderSVG(testLayout(), WithPalette(p)))

	for _, c := range p.Categories {
		if !strings.Contains(out, ">"+c.Name+"</text>") {
			t.Errorf("legend missing %q", c.Name)
		}
	}
	// legend origin: x = 1000-300+20, y = 500 - 13*30/2
	if !strings.Contains(out, `transform="translate(720,305)"`) {
		t.Error("legend not positioned right of the chart and vertically centred")
	}
}

func TestRenderSVG_Markers(t *testing.T) {
	out := string(RenderSVG(testLayout()))

	known := `id="arrow-Clean_Water_and_Sanitation"`
	if !strings.Contains(out, known) {
		t.Fatalf("RenderSVG() missing marker %s", known)
	}
	if !strings.Contains(out, `d="M0,-5L10,0L0,5" fill="#2AADD2"`) {
		t.Error("known type marker should be filled with its colour")
	}

	i := strings.Index(out, `id="arrow-Mystery"`)
	if i < 0 {
		t.Fatal("RenderSVG() missing marker for unknown type")
	}
	marker := out[i : i+strings.Index(out[i:], "</marker>")]
	if strings.Contains(marker, "fill=") {
		t.Errorf("unknown type marker has a fill: %s", marker)
	}
}

func TestRenderSVG_UnknownTypeLinkHasNoStroke(t *testing.T) {
	out := string(RenderSVG(testLayout()))
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, `url(#arrow-Mystery)`) && strings.Contains(line, "stroke=") {
			t.Errorf("unknown type link has a stroke: %s", line)
		}
	}
}

func TestRenderSVG_Panels(t *testing.T) {
	out := string(RenderSVG(testLayout()))

	if got := strings.Count(out, `class="node-panel"`); got != 1 {
		t.Fatalf("panels = %d, want 1 (only survey has a metric)", got)
	}
	for _, want := range []string{
		`data-node="0"`,
		`display="none"`,
		`translate(350,333.33)`,
		`>survey</text>`,
		`>owner:</tspan>`,
		` Ana`,
		`budget:`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("panel missing %q", want)
		}
	}
}

func TestRenderSVG_WithoutInteraction(t *testing.T) {
	out := string(RenderSVG(testLayout(), WithoutInteraction()))
	if strings.Contains(out, "<script") || strings.Contains(out, "node-panel") || strings.Contains(out, ">Reset<") {
		t.Error("WithoutInteraction() output still contains script, panels or reset button")
	}
}

func TestRenderSVG_EscapesIDs(t *testing.T) {
	l := graph.Layout{Width: 100, Height: 100, Nodes: []graph.LayoutNode{{ID: `a<b & "c"`}}}
	out := string(RenderSVG(l))
	if strings.Contains(out, `a<b`) {
		t.Error("RenderSVG() did not escape task id")
	}
	if !strings.Contains(out, `a&lt;b &amp; &#34;c&#34;`) {
		t.Error("RenderSVG() missing escaped data-id")
	}
}

func TestRenderSVG_LegendTextColor(t *testing.T) {
	out := string(RenderSVG(testLayout(), WithLegendTextColor("white")))
	if !strings.Contains(out, `dy="0.35em" fill="white"`) {
		t.Error("WithLegendTextColor() not applied")
	}
}

func TestRenderSVG_CustomMargin(t *testing.T) {
	m := layout.Margin{Top: 10, Right: 200, Left: 20}
	out := string(RenderSVG(testLayout(), WithMargin(m)))
	if !strings.Contains(out, `transform="translate(20,10)" data-left="20" data-top="10"`) {
		t.Error("WithMargin() not applied to chart group")
	}
}

func TestRenderHTML(t *testing.T) {
	out, err := RenderHTML(testLayout(), "Roadmap <2026>")
	if err != nil {
		t.Fatalf("RenderHTML() error: %v", err)
	}
	s := string(out)
	if !strings.HasPrefix(s, "<!DOCTYPE html>") {
		t.Error("RenderHTML() should start with a doctype")
	}
	if !strings.Contains(s, "<title>Roadmap &lt;2026&gt;</title>") {
		t.Error("RenderHTML() title not escaped")
	}
	if strings.Contains(s, "<?xml") {
		t.Error("RenderHTML() should drop the XML declaration")
	}
	if !strings.Contains(s, `<svg`) {
		t.Error("RenderHTML() missing svg")
	}
}

func TestArcPath(t *testing.T) {
	got := ArcPath(Point{0, 0}, Point{3, 4})
	want := "M0,0A5,5 0 0,1 3,4"
	if got != want {
		t.Errorf("ArcPath() = %q, want %q", got, want)
	}
}

func TestArcCenter(t *testing.T) {
	s, e := Point{10, 20}, Point{110, 60}
	r := math.Hypot(e.X-s.X, e.Y-s.Y)
	c, from, to := ArcCenter(s, e)

	for _, p := range []Point{s, e} {
		if d := math.Hypot(p.X-c.X, p.Y-c.Y); math.Abs(d-r) > 1e-9 {
			t.Errorf("distance from centre = %v, want %v", d, r)
		}
	}
	if math.Abs(to-from-math.Pi/3) > 1e-12 {
		t.Errorf("arc span = %v, want pi/3", to-from)
	}
	if x := c.X + r*math.Cos(to); math.Abs(x-e.X) > 1e-9 {
		t.Errorf("end angle reaches x = %v, want %v", x, e.X)
	}
}

func TestBuildPanel(t *testing.T) {
	m := graph.Metric{Task: "t", Fields: []graph.Field{
		{Key: "a", Value: "short"},
		{Key: "b", Value: strings.Repeat("word ", 60)},
		{Key: "c", Value: nil},
	}}
	p := BuildPanel(m, NewWrapper(PanelWidth-PanelPadding, FontSize))

	if p.Title != "t" {
		t.Errorf("Title = %q, want t", p.Title)
	}
	if len(p.Lines) != 3 {
		t.Fatalf("Lines = %d, want 3", len(p.Lines))
	}
	if p.Lines[0].Y != 20 || p.Lines[1].Y != 40 {
		t.Errorf("line Y = %v, %v, want 20, 40", p.Lines[0].Y, p.Lines[1].Y)
	}
	if len(p.Lines[1].Rows) < 2 {
		t.Fatalf("long value rows = %d, want wrapped", len(p.Lines[1].Rows))
	}
	wantC := 60 + float64(len(p.Lines[1].Rows)-1)*LineHeight*FontSize
	if math.Abs(p.Lines[2].Y-wantC) > 1e-9 {
		t.Errorf("line after wrapped field Y = %v, want %v", p.Lines[2].Y, wantC)
	}
	if p.Lines[2].Rows[0] != "c: null" {
		t.Errorf("nil value row = %q, want %q", p.Lines[2].Rows[0], "c: null")
	}
	if p.Height < PanelHeight {
		t.Errorf("Height = %v, want at least %v", p.Height, PanelHeight)
	}
}
