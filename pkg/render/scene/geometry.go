package scene

import (
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/taskweb/pkg/graph"
	"github.com/matzehuels/taskweb/pkg/layout"
)

// Drawing constants shared by the SVG and raster renderers.
const (
	FontSize       = 14
	LegendFontSize = 12

	NodeRadius  = 5
	NodeStroke  = 1.5
	LabelOffset = 10
	LabelHalo   = 3
	LinkWidth   = 1.5

	LegendItemHeight = 25
	LegendPadding    = 5
	LegendSwatch     = 20
	LegendIndent     = 100
	LegendGap        = 20
	LegendLabelX     = 28

	ButtonX      = 10
	ButtonY      = 10
	ButtonWidth  = 80
	ButtonHeight = 30
	ButtonRadius = 5
	ButtonLabel  = "Reset"

	PanelWidth       = 600
	PanelHeight      = 200
	PanelRadius      = 15
	PanelPadding     = 20
	PanelTitleY      = 20
	PanelLineSpacing = 20
	LineHeight       = 1.1 // em
)

// Point is a position in chart coordinates.
type Point struct{ X, Y float64 }

// ArcPath returns the path of a link drawn as a clockwise circular arc
// whose radius equals the distance between the endpoints.
func ArcPath(s, t Point) string {
	r := math.Hypot(t.X-s.X, t.Y-s.Y)
	return fmt.Sprintf("M%s,%sA%s,%s 0 0,1 %s,%s", num(s.X), num(s.Y), num(r), num(r), num(t.X), num(t.Y))
}

// ArcCenter returns the centre of the arc drawn by [ArcPath] and the
// angle of both endpoints around it. The arc spans a sixth of a turn.
func ArcCenter(s, t Point) (c Point, from, to float64) {
	dx, dy := t.X-s.X, t.Y-s.Y
	d := math.Hypot(dx, dy)
	if d == 0 {
		return s, 0, 0
	}
	h := d * math.Sqrt(3) / 2
	c = Point{X: (s.X+t.X)/2 - h*dy/d, Y: (s.Y+t.Y)/2 + h*dx/d}
	from = math.Atan2(s.Y-c.Y, s.X-c.X)
	return c, from, from + math.Pi/3
}

// LegendOrigin returns the top-left corner of the legend: right of the
// chart area, vertically centred on the canvas.
func LegendOrigin(width, height float64, m layout.Margin, items int) Point {
	return Point{
		X: width - m.Right + LegendGap,
		Y: height/2 - float64(items*(LegendItemHeight+LegendPadding))/2,
	}
}

// LegendItemY returns the offset of legend item i from the legend origin.
func LegendItemY(i int) float64 { return float64(i * (LegendItemHeight + LegendPadding)) }

// Panel is the detail card shown for a clicked task.
type Panel struct {
	Title  string
	Lines  []PanelLine
	Height float64
}

// PanelLine is one metric field. Rows holds the wrapped "key: value" text;
// the first row starts with Key.
type PanelLine struct {
	Key  string
	Y    float64
	Rows []string
}

// BuildPanel lays out the detail card for a metric record. Every field
// except the task id is listed in record order. A field that wraps pushes
// the following fields down, and the card grows to fit.
func BuildPanel(m graph.Metric, w *Wrapper) Panel {
	p := Panel{Title: m.Task}
	rowHeight := LineHeight * FontSize

	y := 0.0
	for _, f := range m.Fields {
		if f.Key == graph.TaskKey {
			continue
		}
		y += PanelLineSpacing
		rows := w.Wrap(f.Key + ": " + f.String())
		if len(rows) == 0 {
			rows = []string{f.Key + ":"}
		}
		p.Lines = append(p.Lines, PanelLine{Key: f.Key, Y: y, Rows: rows})
		y += float64(len(rows)-1) * rowHeight
	}
	p.Height = max(PanelHeight, y+2*PanelPadding)
	return p
}

// positions indexes layout nodes by id.
func positions(l graph.Layout) map[string]int {
	idx := make(map[string]int, len(l.Nodes))
	for i, n := range l.Nodes {
		idx[n.ID] = i
	}
	return idx
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100+0, 'f', -1, 64) // +0 drops negative zero
}
