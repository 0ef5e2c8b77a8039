package pipeline

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/taskweb/pkg/cache"
	"github.com/matzehuels/taskweb/pkg/config"
	twerrors "github.com/matzehuels/taskweb/pkg/errors"
	"github.com/matzehuels/taskweb/pkg/graph"
)

func sampleInput() graph.Input {
	return graph.Input{
		Connections: []graph.Connection{
			{Source: "A", Target: "B", Type: "Zero Hunger"},
			{Source: "B", Target: "C", Type: "Climate Action"},
			{Source: "A", Target: "D", Type: "Other"},
			{Source: "D", Target: "C", Type: "Custom"},
		},
		Metrics: []graph.Metric{
			{Task: "B", Fields: []graph.Field{{Key: "owner", Value: "Ana"}}},
			{Task: "Z", Fields: []graph.Field{{Key: "owner", Value: "Ben"}}},
		},
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"html", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && twerrors.GetCode(err) != twerrors.ErrCodeInvalidFormat {
			t.Errorf("ValidateFormat(%q) code = %v, want %v", tt.format, twerrors.GetCode(err), twerrors.ErrCodeInvalidFormat)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateVizType(t *testing.T) {
	tests := []struct {
		vizType string
		wantErr bool
	}{
		{"force", false},
		{"nodelink", false},
		{"tower", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateVizType(tt.vizType)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateVizType(%q) error = %v, wantErr %v", tt.vizType, err, tt.wantErr)
		}
	}
}

func TestValidateStrategy(t *testing.T) {
	tests := []struct {
		strategy string
		wantErr  bool
	}{
		{"longest-path", false},
		{"first-visit", false},
		{"random", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateStrategy(tt.strategy)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStrategy(%q) error = %v, wantErr %v", tt.strategy, err, tt.wantErr)
		}
		if err != nil && twerrors.GetCode(err) != twerrors.ErrCodeInvalidStrategy {
			t.Errorf("ValidateStrategy(%q) code = %v", tt.strategy, twerrors.GetCode(err))
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() = %v", err)
	}
	if opts.VizType != DefaultVizType {
		t.Errorf("VizType = %q, want %q", opts.VizType, DefaultVizType)
	}
	if opts.Strategy != string(DefaultStrategy) {
		t.Errorf("Strategy = %q, want %q", opts.Strategy, DefaultStrategy)
	}
	if opts.Seed != DefaultSeed || opts.MaxTicks != DefaultMaxTicks {
		t.Errorf("Seed/MaxTicks = %d/%d", opts.Seed, opts.MaxTicks)
	}
	if opts.Layout == nil || opts.Layout.Width != 1000 {
		t.Errorf("Layout = %+v, want default 1000 wide canvas", opts.Layout)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != graph.FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discarding logger")
	}
}

func TestOptionsIsNodelink(t *testing.T) {
	opts := Options{}
	if opts.IsNodelink() {
		t.Error("Empty VizType should not be nodelink")
	}
	opts.VizType = "nodelink"
	if !opts.IsNodelink() {
		t.Error("nodelink VizType should be nodelink")
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Strategy = "first-visit"
	cfg.Layout.Width = 1200
	opts := FromConfig(cfg)
	if opts.Strategy != "first-visit" || opts.Layout.Width != 1200 {
		t.Errorf("FromConfig() = %+v", opts)
	}
	cfg.Layout.Width = 5
	if opts.Layout.Width != 1200 {
		t.Error("FromConfig() should copy the layout config")
	}
}

func TestBuild(t *testing.T) {
	net, warnings, err := Build(sampleInput(), *FromConfig(config.Default()).Palette)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if got := strings.Join(net.Nodes, ","); got != "A,B,C,D" {
		t.Errorf("Nodes = %s, want A,B,C,D", got)
	}

	joined := strings.Join(warnings, "\n")
	if !strings.Contains(joined, `"Custom"`) {
		t.Errorf("warnings should mention the unknown type Custom:\n%s", joined)
	}
	if !strings.Contains(joined, `"Z"`) {
		t.Errorf("warnings should mention the metrics-only task Z:\n%s", joined)
	}
}

func TestBuildRejectsMissingEndpoint(t *testing.T) {
	in := graph.Input{Connections: []graph.Connection{{Source: "a", Target: ""}}}
	_, _, err := Build(in, *FromConfig(config.Default()).Palette)
	if twerrors.GetCode(err) != twerrors.ErrCodeInvalidConnection {
		t.Errorf("Build() code = %v, want %v", twerrors.GetCode(err), twerrors.ErrCodeInvalidConnection)
	}
}

func TestGenerateLayout(t *testing.T) {
	net := graph.BuildInput(sampleInput())
	l, err := GenerateLayout(context.Background(), net, Options{})
	if err != nil {
		t.Fatalf("GenerateLayout() error: %v", err)
	}

	wantLevels := map[string]int{"A": 0, "B": 1, "D": 1, "C": 2}
	for id, want := range wantLevels {
		n, ok := l.Node(id)
		if !ok {
			t.Fatalf("Node(%s) missing", id)
		}
		if n.Level != want {
			t.Errorf("level(%s) = %d, want %d", id, n.Level, want)
		}
	}
	if l.MaxLevel != 2 || l.Strategy != "longest-path" || l.VizType != "force" {
		t.Errorf("layout header = %s/%s max %d", l.VizType, l.Strategy, l.MaxLevel)
	}
	if l.Ticks == 0 {
		t.Error("force layout should record ticks")
	}

	if b, _ := l.Node("B"); b.Metric == nil || b.Metric.Task != "B" {
		t.Errorf("B metric = %+v, want record", b.Metric)
	}
	if _, ok := l.Node("Z"); ok {
		t.Error("metrics-only task Z must not become a node")
	}

	if got := l.ColorOf("Zero Hunger"); got != "#DDA63A" {
		t.Errorf("ColorOf(Zero Hunger) = %q, want #DDA63A", got)
	}
	if got := l.ColorOf("Custom"); got != "" {
		t.Errorf("ColorOf(Custom) = %q, want empty", got)
	}
	if len(l.Colors) != 4 {
		t.Errorf("Colors = %d entries, want one per link type", len(l.Colors))
	}

	// deeper levels settle lower on average
	a, _ := l.Node("A")
	c, _ := l.Node("C")
	if a.Y >= c.Y {
		t.Errorf("A.Y = %.1f, C.Y = %.1f; want the root above the sink", a.Y, c.Y)
	}
}

func TestGenerateLayoutDeterministic(t *testing.T) {
	first, err := GenerateLayout(context.Background(), graph.BuildInput(sampleInput()), Options{Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	second, err := GenerateLayout(context.Background(), graph.BuildInput(sampleInput()), Options{Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	for i := range first.Nodes {
		a, b := first.Nodes[i], second.Nodes[i]
		if a.ID != b.ID || a.X != b.X || a.Y != b.Y {
			t.Errorf("node %s differs between runs: (%g, %g) vs (%g, %g)", a.ID, a.X, a.Y, b.X, b.Y)
		}
	}
}

func TestGenerateLayoutCycle(t *testing.T) {
	in := graph.Input{Connections: []graph.Connection{
		{Source: "A", Target: "B", Type: "Other"},
		{Source: "B", Target: "A", Type: "Other"},
	}}
	for _, strategy := range []string{"longest-path", "first-visit"} {
		t.Run(strategy, func(t *testing.T) {
			l, err := GenerateLayout(context.Background(), graph.BuildInput(in), Options{Strategy: strategy})
			if err != nil {
				t.Fatalf("GenerateLayout() error: %v", err)
			}
			if len(l.Nodes) != 2 {
				t.Errorf("Nodes = %d, want 2", len(l.Nodes))
			}
			if len(l.Cycles) != 1 {
				t.Errorf("Cycles = %v, want one cycle", l.Cycles)
			}
		})
	}
}

func TestGenerateLayoutNodelink(t *testing.T) {
	l, err := GenerateLayout(context.Background(), graph.BuildInput(sampleInput()), Options{VizType: "nodelink"})
	if err != nil {
		t.Fatalf("GenerateLayout() error: %v", err)
	}
	if !l.IsNodelink() || l.Ticks != 0 {
		t.Errorf("nodelink layout = %s with %d ticks", l.VizType, l.Ticks)
	}
}

func TestGenerateLayoutCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := GenerateLayout(ctx, graph.BuildInput(sampleInput()), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("GenerateLayout(cancelled) = %v, want context.Canceled", err)
	}
}

func TestSceneLayoutTracksSimulation(t *testing.T) {
	scene, err := NewScene(graph.BuildInput(sampleInput()), Options{})
	if err != nil {
		t.Fatalf("NewScene() error: %v", err)
	}
	scene.Simulation.Tick()
	scene.Simulation.Pin("A", 12, 34)
	scene.Simulation.Tick()

	l := scene.Layout()
	a, _ := l.Node("A")
	if a.X != 12 || a.Y != 34 {
		t.Errorf("A = (%g, %g), want pinned (12, 34)", a.X, a.Y)
	}
	if l.Ticks != 2 {
		t.Errorf("Ticks = %d, want 2", l.Ticks)
	}
}

func TestRender(t *testing.T) {
	l, err := GenerateLayout(context.Background(), graph.BuildInput(sampleInput()), Options{})
	if err != nil {
		t.Fatal(err)
	}

	artifacts, err := Render(context.Background(), l, Options{Formats: []string{"svg", "html", "json", "png", "dot"}})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if len(artifacts) != 5 {
		t.Fatalf("Render() returned %d artifacts, want 5", len(artifacts))
	}
	if !bytes.Contains(artifacts["svg"], []byte(`class="taskweb"`)) {
		t.Error("svg artifact is not a taskweb scene")
	}
	if !bytes.HasPrefix(artifacts["html"], []byte("<!DOCTYPE html>")) {
		t.Error("html artifact is not a page")
	}
	if !bytes.HasPrefix(artifacts["png"], []byte("\x89PNG")) {
		t.Error("png artifact has no PNG signature")
	}
	if !bytes.Contains(artifacts["dot"], []byte("rank=same")) {
		t.Error("dot artifact has no rank groups")
	}

	roundTrip, err := RenderFromLayoutData(context.Background(), artifacts["json"], Options{Formats: []string{"svg"}})
	if err != nil {
		t.Fatalf("RenderFromLayoutData() error: %v", err)
	}
	if !bytes.Equal(roundTrip["svg"], artifacts["svg"]) {
		t.Error("svg rendered from the json layout differs from the original")
	}
}

func TestRenderStatic(t *testing.T) {
	l, err := GenerateLayout(context.Background(), graph.BuildInput(sampleInput()), Options{})
	if err != nil {
		t.Fatal(err)
	}
	artifacts, err := Render(context.Background(), l, Options{Static: true})
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(artifacts["svg"], []byte("<script")) {
		t.Error("static svg should not embed the script")
	}
}

func TestRenderFromLayoutDataInvalid(t *testing.T) {
	_, err := RenderFromLayoutData(context.Background(), []byte("{"), Options{})
	if twerrors.GetCode(err) != twerrors.ErrCodeInvalidInput {
		t.Errorf("code = %v, want %v", twerrors.GetCode(err), twerrors.ErrCodeInvalidInput)
	}
}

func TestRunnerCaches(t *testing.T) {
	c, err := cache.NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()
	ctx := context.Background()
	opts := Options{Formats: []string{"svg", "json"}}

	first, err := r.Execute(ctx, sampleInput(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run CacheInfo = %+v, want misses", first.CacheInfo)
	}
	if first.Network == nil || len(first.Warnings) == 0 {
		t.Error("first run should carry the network and warnings")
	}

	second, err := r.Execute(ctx, sampleInput(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want hits", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts["svg"], second.Artifacts["svg"]) {
		t.Error("cached svg differs")
	}

	refreshed, err := r.Execute(ctx, sampleInput(), Options{Formats: []string{"svg"}, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheInfo.LayoutHit {
		t.Error("Refresh should bypass the layout cache")
	}

	other, err := r.Execute(ctx, sampleInput(), Options{Formats: []string{"svg"}, Seed: 3})
	if err != nil {
		t.Fatal(err)
	}
	if other.CacheInfo.LayoutHit {
		t.Error("a different seed should miss the layout cache")
	}
}

func TestRunnerInvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), sampleInput(), Options{Formats: []string{"gif"}})
	if twerrors.GetCode(err) != twerrors.ErrCodeInvalidFormat {
		t.Errorf("code = %v, want %v", twerrors.GetCode(err), twerrors.ErrCodeInvalidFormat)
	}
}

func TestHashInput(t *testing.T) {
	a := HashInput(sampleInput())
	if a != HashInput(sampleInput()) {
		t.Error("HashInput should be deterministic")
	}
	in := sampleInput()
	in.Connections[0].Type = "Other"
	if a == HashInput(in) {
		t.Error("HashInput should change with the input")
	}
}
