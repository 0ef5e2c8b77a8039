// Package render provides visualization rendering for task networks.
//
// # Overview
//
// This package contains the rendering pipeline that turns a settled
// [graph.Layout] into visual outputs. It provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Force diagrams (in [scene] and [raster] subpackages)
//   - Layered node-link diagrams (in [nodelink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). PDF output of both diagram
// types goes through [ToPDF].
//
//	svg := scene.RenderSVG(l, scene.WithPalette(p))
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// # Force Diagrams
//
// The [scene] subpackage draws the interactive force diagram: arc links with
// per-type arrowheads, labelled nodes, the legend, the reset control and the
// click panels with their wrapped metric lines. The output embeds a small
// script so the SVG stays interactive when opened in a browser.
//
// The [raster] subpackage draws the same diagram without interactivity
// directly into a PNG, so PNG export does not need librsvg.
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders the network with Graphviz, one rank per
// level, edges coloured by link type.
//
//	dot := nodelink.ToDOT(l, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [graph.Layout]: github.com/matzehuels/taskweb/pkg/graph.Layout
// [scene]: github.com/matzehuels/taskweb/pkg/render/scene
// [raster]: github.com/matzehuels/taskweb/pkg/render/raster
// [nodelink]: github.com/matzehuels/taskweb/pkg/render/nodelink
package render
