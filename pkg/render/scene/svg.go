package scene

import (
	"bytes"
	_ "embed"
	"encoding/xml"
	"fmt"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/taskweb/pkg/graph"
	"github.com/matzehuels/taskweb/pkg/layout"
	"github.com/matzehuels/taskweb/pkg/palette"
)

//go:embed assets/interact.js
var interactJS string

//go:embed assets/scene.css
var sceneCSS string

const rootStyle = "max-width: 100%; height: auto; font: 14px sans-serif;"

// Option configures SVG rendering.
type Option func(*renderer)

type renderer struct {
	palette     palette.Palette
	margin      layout.Margin
	legendText  string
	interactive bool
	wrapper     *Wrapper
}

// WithPalette sets the legend categories. Link and marker colours come from
// the layout's colour scale.
func WithPalette(p palette.Palette) Option { return func(r *renderer) { r.palette = p } }

// WithMargin sets the offset of the chart area within the canvas.
func WithMargin(m layout.Margin) Option { return func(r *renderer) { r.margin = m } }

// WithLegendTextColor sets the fill of the legend labels.
func WithLegendTextColor(c string) Option { return func(r *renderer) { r.legendText = c } }

// WithWrapper sets the text wrapper used for panel lines.
func WithWrapper(w *Wrapper) Option { return func(r *renderer) { r.wrapper = w } }

// WithoutInteraction leaves out the script, the stylesheet, the reset button
// and the detail panels. Use it for documents that are converted to PDF or PNG.
func WithoutInteraction() Option { return func(r *renderer) { r.interactive = false } }

func newRenderer(opts ...Option) renderer {
	r := renderer{
		palette:     palette.Default(),
		margin:      layout.DefaultConfig().Margin,
		legendText:  "currentColor",
		interactive: true,
	}
	for _, opt := range opts {
		opt(&r)
	}
	if r.wrapper == nil && r.interactive {
		r.wrapper = NewWrapper(PanelWidth-PanelPadding, FontSize)
	}
	return r
}

// RenderSVG draws a settled force layout as a standalone SVG document.
func RenderSVG(l graph.Layout, opts ...Option) []byte {
	r := newRenderer(opts...)

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Startraw(
		`class="taskweb"`,
		fmt.Sprintf(`viewBox="0 0 %s %s"`, num(l.Width), num(l.Height)),
		fmt.Sprintf(`width="%s"`, num(l.Width)),
		fmt.Sprintf(`height="%s"`, num(l.Height)),
		fmt.Sprintf(`style="%s"`, rootStyle),
	)

	canvas.Group(
		`class="chart"`,
		fmt.Sprintf(`transform="translate(%s,%s)"`, num(r.margin.Left), num(r.margin.Top)),
		attr("data-left", num(r.margin.Left)),
		attr("data-top", num(r.margin.Top)),
	)
	renderMarkers(canvas, l)
	renderLinks(canvas, l)
	renderNodes(canvas, l)
	canvas.Gend()

	renderLegend(canvas, l, &r)

	if r.interactive {
		renderResetButton(canvas)
		renderPanels(canvas, l, &r)
		canvas.Style("text/css", sceneCSS)
		canvas.Script("text/javascript", interactJS)
	}

	canvas.End()
	return buf.Bytes()
}

// renderMarkers writes one arrowhead per link type. Types without a colour
// get a marker without fill.
func renderMarkers(canvas *svg.SVG, l graph.Layout) {
	if len(l.Colors) == 0 {
		return
	}
	canvas.Def()
	for _, c := range l.Colors {
		fmt.Fprintf(canvas.Writer,
			`<marker %s viewBox="0 -5 10 10" refX="20" refY="-0.5" markerWidth="6" markerHeight="6" orient="auto">`+"\n",
			attr("id", palette.MarkerID(c.Type)))
		if c.Color != "" {
			canvas.Path("M0,-5L10,0L0,5", attr("fill", c.Color))
		} else {
			canvas.Path("M0,-5L10,0L0,5")
		}
		canvas.MarkerEnd()
	}
	canvas.DefEnd()
}

func renderLinks(canvas *svg.SVG, l graph.Layout) {
	idx := positions(l)
	canvas.Group(`class="links"`, `fill="none"`, fmt.Sprintf(`stroke-width="%s"`, num(LinkWidth)))
	for _, link := range l.Links {
		si, okS := idx[link.Source]
		ti, okT := idx[link.Target]
		if !okS || !okT {
			continue
		}
		s, t := l.Nodes[si], l.Nodes[ti]
		attrs := []string{
			`class="link"`,
			attr("data-source", fmt.Sprint(si)),
			attr("data-target", fmt.Sprint(ti)),
			attr("marker-end", "url(#"+palette.MarkerID(link.Type)+")"),
		}
		if link.Color != "" {
			attrs = append(attrs, attr("stroke", link.Color))
		}
		canvas.Path(ArcPath(Point{s.X, s.Y}, Point{t.X, t.Y}), attrs...)
	}
	canvas.Gend()
}

func renderNodes(canvas *svg.SVG, l graph.Layout) {
	canvas.Group(`class="nodes"`, `fill="currentColor"`, `stroke-linecap="round"`, `stroke-linejoin="round"`)
	for i, n := range l.Nodes {
		canvas.Group(
			`class="node"`,
			attr("id", fmt.Sprintf("node-%d", i)),
			attr("data-id", n.ID),
			attr("data-level", fmt.Sprint(n.Level)),
			attr("data-x", num(n.X)),
			attr("data-y", num(n.Y)),
			fmt.Sprintf(`transform="translate(%s,%s)"`, num(n.X), num(n.Y)),
		)
		canvas.Title(n.ID)
		canvas.Text(LabelOffset, 0, n.ID, `dy="0.31em"`, `fill="none"`, `stroke="white"`, fmt.Sprintf(`stroke-width="%d"`, LabelHalo))
		canvas.Circle(0, 0, NodeRadius, `stroke="white"`, fmt.Sprintf(`stroke-width="%s"`, num(NodeStroke)))
		canvas.Text(LabelOffset, 0, n.ID, `dy="0.31em"`)
		canvas.Gend()
	}
	canvas.Gend()
}

// renderLegend lists every palette category, used or not.
func renderLegend(canvas *svg.SVG, l graph.Layout, r *renderer) {
	o := LegendOrigin(l.Width, l.Height, r.margin, r.palette.Len())
	canvas.Group(
		`class="legend"`,
		fmt.Sprintf(`transform="translate(%s,%s)"`, num(o.X), num(o.Y)),
		`font-family="sans-serif"`,
		fmt.Sprintf(`font-size="%d"`, LegendFontSize),
	)
	for i, c := range r.palette.Categories {
		canvas.Group(fmt.Sprintf(`transform="translate(%d,%s)"`, LegendIndent, num(LegendItemY(i))))
		canvas.Rect(0, 0, LegendSwatch, LegendSwatch, attr("fill", c.Color))
		canvas.Text(LegendLabelX, LegendSwatch/2, c.Name, `dy="0.35em"`, attr("fill", r.legendText))
		canvas.Gend()
	}
	canvas.Gend()
}

func renderResetButton(canvas *svg.SVG) {
	canvas.Group(`class="reset"`, `cursor="pointer"`, fmt.Sprintf(`transform="translate(%d,%d)"`, ButtonX, ButtonY))
	canvas.Roundrect(0, 0, ButtonWidth, ButtonHeight, ButtonRadius, ButtonRadius, `fill="white"`, `stroke="#666"`)
	canvas.Text(ButtonWidth/2, 20, ButtonLabel, `text-anchor="middle"`)
	canvas.Gend()
}

// renderPanels writes a hidden detail card for every task with a metric
// record. The script positions and reveals them on click.
func renderPanels(canvas *svg.SVG, l graph.Layout, r *renderer) {
	for i, n := range l.Nodes {
		if n.Metric == nil {
			continue
		}
		p := BuildPanel(*n.Metric, r.wrapper)
		canvas.Group(
			`class="node-panel"`,
			attr("data-node", fmt.Sprint(i)),
			`display="none"`,
			fmt.Sprintf(`transform="translate(%s,%s)"`, num(n.X+r.margin.Left), num(n.Y+r.margin.Top)),
		)
		canvas.Roundrect(0, 0, PanelWidth, int(p.Height), PanelRadius, PanelRadius, `fill="white"`, `stroke="black"`)
		canvas.Group(fmt.Sprintf(`transform="translate(%d,%d)"`, PanelPadding/2, PanelTitleY))
		canvas.Text(0, 0, p.Title, `fill="black"`, `font-weight="bold"`)
		for _, line := range p.Lines {
			renderPanelLine(canvas, line)
		}
		canvas.Gend()
		canvas.Gend()
	}
}

func renderPanelLine(canvas *svg.SVG, line PanelLine) {
	fmt.Fprintf(canvas.Writer, `<text x="0" %s fill="black">`, attr("y", num(line.Y)))
	prefix := strings.Join(strings.Fields(line.Key+":"), " ")
	for j, row := range line.Rows {
		dy := "0"
		if j > 0 {
			dy = fmt.Sprintf("%gem", LineHeight)
		}
		fmt.Fprintf(canvas.Writer, `<tspan x="0" dy="%s">`, dy)
		if j == 0 && strings.HasPrefix(row, prefix) {
			canvas.Span(prefix, `font-weight="bold"`)
			canvas.Span(strings.TrimPrefix(row, prefix))
		} else {
			canvas.Span(row)
		}
		fmt.Fprint(canvas.Writer, `</tspan>`)
	}
	canvas.TextEnd()
}

// attr formats an XML attribute with an escaped value.
func attr(name, value string) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteString(`="`)
	_ = xml.EscapeText(&b, []byte(value))
	b.WriteString(`"`)
	return b.String()
}
