package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/taskweb/pkg/graph"
	"github.com/matzehuels/taskweb/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the level and metric fields in node labels.
	// When false, only the task id is shown.
	Detailed bool

	// Legend adds a cluster with one entry per coloured link type.
	Legend bool
}

// ToDOT converts a layout to Graphviz DOT format for node-link visualization.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Tasks sharing a level are placed on the same rank, so the diagram reads
// top to bottom in dependency order. Edges are coloured by link type; types
// without a colour use the Graphviz default.
func ToDOT(l graph.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"sans-serif\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [penwidth=1.5, arrowsize=0.7];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", n.ID, fmtLabel(n, opts.Detailed))
	}

	buf.WriteString("\n")
	for _, level := range levels(l) {
		buf.WriteString("  { rank=same;")
		for _, id := range level {
			fmt.Fprintf(&buf, " %q;", id)
		}
		buf.WriteString(" }\n")
	}

	buf.WriteString("\n")
	for _, e := range l.Links {
		if e.Source == "" || e.Target == "" {
			continue
		}
		attrs := []string{fmt.Sprintf("tooltip=%q", e.Type)}
		if e.Color != "" {
			attrs = append(attrs, fmt.Sprintf("color=%q", e.Color))
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	if opts.Legend {
		writeLegend(&buf, l.Colors)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// levels groups node ids by level in ascending level order, keeping node
// order within a level.
func levels(l graph.Layout) [][]string {
	var out [][]string
	for _, n := range l.Nodes {
		for len(out) <= n.Level {
			out = append(out, nil)
		}
		out[n.Level] = append(out[n.Level], n.ID)
	}
	nonEmpty := out[:0]
	for _, ids := range out {
		if len(ids) > 0 {
			nonEmpty = append(nonEmpty, ids)
		}
	}
	return nonEmpty
}

func fmtLabel(n graph.LayoutNode, detailed bool) string {
	if !detailed {
		return n.ID
	}

	parts := []string{fmt.Sprintf("level: %d", n.Level)}
	if n.Metric != nil {
		for _, f := range n.Metric.Fields {
			parts = append(parts, fmt.Sprintf("%s: %s", f.Key, f.String()))
		}
	}
	return n.ID + "\n" + strings.Join(parts, "\n")
}

func writeLegend(buf *bytes.Buffer, colors []graph.TypeColor) {
	buf.WriteString("\n  subgraph cluster_legend {\n")
	buf.WriteString("    label=\"Link types\";\n")
	buf.WriteString("    style=\"rounded\";\n")
	buf.WriteString("    node [shape=box, style=filled, fontcolor=white];\n")
	for i, c := range colors {
		if c.Color == "" {
			continue
		}
		fmt.Fprintf(buf, "    \"legend-%d\" [label=%q, fillcolor=%q];\n", i, c.Type, c.Color)
	}
	buf.WriteString("  }\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root element with one whose
// viewBox starts at the origin and whose size matches the viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
