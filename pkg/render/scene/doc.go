// Package scene draws force layouts as interactive SVG.
//
// [RenderSVG] takes a settled [graph.Layout] and writes the diagram:
//
//   - links as clockwise circular arcs, stroked with their type colour and
//     ending in an arrowhead marker of the same colour
//   - tasks as small circles with a haloed label
//   - a legend listing every palette category
//   - a reset button
//   - one hidden detail panel per task with a metric record
//
// The document embeds a short script. Clicking a task reveals its panel
// (one at a time), tasks can be dragged with their links following, and the
// reset button hides panels and restores the settled positions. Use
// [WithoutInteraction] for static output.
//
// Panel values are wrapped with a [Wrapper] that measures text in the Go
// Regular font, so line breaks match what a browser shows closely enough
// without a browser.
//
// [RenderHTML] wraps the SVG in a page.
package scene
