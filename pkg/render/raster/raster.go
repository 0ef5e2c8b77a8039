// Package raster draws force layouts directly into PNG images.
//
// The picture matches the static SVG from the scene package (links, arrowheads,
// nodes, labels and the legend) but is painted with gg, so PNG export
// works without librsvg. Interactive parts (panels, reset button) are left
// out.
package raster

import (
	"bytes"
	"fmt"
	"math"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/taskweb/pkg/errors"
	"github.com/matzehuels/taskweb/pkg/graph"
	"github.com/matzehuels/taskweb/pkg/layout"
	"github.com/matzehuels/taskweb/pkg/palette"
	"github.com/matzehuels/taskweb/pkg/render/scene"
)

// DefaultScale renders at twice the canvas size.
const DefaultScale = 2.0

// Arrowhead geometry in pixels: the marker is 6 stroke widths wide over a
// 10 unit view box, and its reference point sits 10 units past the tip.
const (
	arrowUnit   = 6 * scene.LinkWidth / 10
	arrowLength = 10 * arrowUnit
	arrowHalf   = 5 * arrowUnit
	arrowInset  = 10 * arrowUnit
)

// unfilledMarker is what browsers paint for a marker path without fill.
const unfilledMarker = "#000000"

// Option configures PNG rendering.
type Option func(*renderer)

type renderer struct {
	palette    palette.Palette
	margin     layout.Margin
	scale      float64
	background string
	foreground string
}

// WithPalette sets the legend categories.
func WithPalette(p palette.Palette) Option { return func(r *renderer) { r.palette = p } }

// WithMargin sets the offset of the chart area within the canvas.
func WithMargin(m layout.Margin) Option { return func(r *renderer) { r.margin = m } }

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) Option { return func(r *renderer) { r.scale = s } }

// WithColors sets the background and the node and label colour.
func WithColors(background, foreground string) Option {
	return func(r *renderer) { r.background, r.foreground = background, foreground }
}

// RenderPNG paints a settled force layout.
func RenderPNG(l graph.Layout, opts ...Option) ([]byte, error) {
	r := renderer{
		palette:    palette.Default(),
		margin:     layout.DefaultConfig().Margin,
		scale:      DefaultScale,
		background: "#ffffff",
		foreground: "#000000",
	}
	for _, opt := range opts {
		opt(&r)
	}

	w := int(math.Ceil(l.Width * r.scale))
	h := int(math.Ceil(l.Height * r.scale))
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "canvas %vx%v at scale %v is empty", l.Width, l.Height, r.scale)
	}

	dc := gg.NewContext(w, h)
	dc.SetHexColor(r.background)
	dc.Clear()
	dc.Scale(r.scale, r.scale)

	dc.Push()
	dc.Translate(r.margin.Left, r.margin.Top)
	drawLinks(dc, l)
	if err := r.drawNodes(dc, l); err != nil {
		return nil, err
	}
	dc.Pop()

	if err := r.drawLegend(dc, l); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawLinks(dc *gg.Context, l graph.Layout) {
	idx := make(map[string]scene.Point, len(l.Nodes))
	for _, n := range l.Nodes {
		idx[n.ID] = scene.Point{X: n.X, Y: n.Y}
	}

	dc.SetLineWidth(scene.LinkWidth)
	for _, link := range l.Links {
		s, okS := idx[link.Source]
		t, okT := idx[link.Target]
		if !okS || !okT || s == t {
			continue
		}
		c, from, to := scene.ArcCenter(s, t)
		r := math.Hypot(t.X-s.X, t.Y-s.Y)

		if link.Color != "" {
			dc.NewSubPath()
			dc.DrawArc(c.X, c.Y, r, from, to)
			dc.SetHexColor(link.Color)
			dc.Stroke()
		}

		fill := link.Color
		if fill == "" {
			fill = unfilledMarker
		}
		drawArrow(dc, t, -math.Sin(to), math.Cos(to), fill)
	}
}

// drawArrow paints the arrowhead for a link ending at t with end tangent
// (dx, dy).
func drawArrow(dc *gg.Context, t scene.Point, dx, dy float64, color string) {
	tipX, tipY := t.X-arrowInset*dx, t.Y-arrowInset*dy
	baseX, baseY := tipX-arrowLength*dx, tipY-arrowLength*dy

	dc.NewSubPath()
	dc.MoveTo(tipX, tipY)
	dc.LineTo(baseX-arrowHalf*dy, baseY+arrowHalf*dx)
	dc.LineTo(baseX+arrowHalf*dy, baseY-arrowHalf*dx)
	dc.ClosePath()
	dc.SetHexColor(color)
	dc.Fill()
}

func (r *renderer) drawNodes(dc *gg.Context, l graph.Layout) error {
	face, err := gg.LoadFontFaceFromBytes(goregular.TTF, scene.FontSize)
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}
	dc.SetFontFace(face)

	for _, n := range l.Nodes {
		dc.DrawCircle(n.X, n.Y, scene.NodeRadius)
		dc.SetHexColor(r.foreground)
		dc.FillPreserve()
		dc.SetHexColor("#ffffff")
		dc.SetLineWidth(scene.NodeStroke)
		dc.Stroke()

		x, y := n.X+scene.LabelOffset, n.Y+0.31*scene.FontSize
		dc.SetHexColor(r.background)
		for _, off := range haloOffsets {
			dc.DrawString(n.ID, x+off[0], y+off[1])
		}
		dc.SetHexColor(r.foreground)
		dc.DrawString(n.ID, x, y)
	}
	return nil
}

var haloOffsets = [][2]float64{{-1, -1}, {0, -1.5}, {1, -1}, {-1.5, 0}, {1.5, 0}, {-1, 1}, {0, 1.5}, {1, 1}}

func (r *renderer) drawLegend(dc *gg.Context, l graph.Layout) error {
	face, err := gg.LoadFontFaceFromBytes(goregular.TTF, scene.LegendFontSize)
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}
	dc.SetFontFace(face)

	o := scene.LegendOrigin(l.Width, l.Height, r.margin, r.palette.Len())
	for i, c := range r.palette.Categories {
		x := o.X + scene.LegendIndent
		y := o.Y + scene.LegendItemY(i)
		dc.DrawRectangle(x, y, scene.LegendSwatch, scene.LegendSwatch)
		dc.SetHexColor(c.Color)
		dc.Fill()

		dc.SetHexColor(r.foreground)
		dc.DrawStringAnchored(c.Name, x+scene.LegendLabelX, y+scene.LegendSwatch/2, 0, 0.35)
	}
	return nil
}
