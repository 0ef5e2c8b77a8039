// Package nodelink renders task networks as layered node-link diagrams.
//
// # Overview
//
// This package produces directed graph visualizations using Graphviz, where
// tasks appear as boxes connected by arrows. It's an alternative to the
// force diagram when a strict level-by-level reading is preferred: every
// level becomes one Graphviz rank.
//
// # Usage
//
// Convert a layout to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(l, nodelink.Options{Legend: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: node labels include the level and every metric field
//   - Legend: a cluster lists the coloured link types
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
