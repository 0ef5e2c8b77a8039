package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/matzehuels/taskweb/pkg/interact"
	"github.com/matzehuels/taskweb/pkg/pipeline"
)

const (
	frameInterval = 30 * time.Millisecond
	dragStep      = 12.0 // layout units per arrow key
	maxLabelWidth = 18
	panelWidth    = 36
)

var (
	viewNodeStyle     = lipgloss.NewStyle().Foreground(colorWhite)
	viewSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	viewPinnedStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	viewLinkStyle     = lipgloss.NewStyle().Foreground(colorDim)
	viewPanelStyle    = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorCyan).
				Padding(0, 1)
)

// viewCommand opens the interactive terminal viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		metrics  string
		strategy string
		seed     uint64
	)

	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Explore a task diagram in the terminal",
		Long: `View runs the force simulation live in the terminal.

Keys:
  tab, shift+tab   select the next or previous task
  space            pick up or drop the selected task
  arrows, hjkl     move the picked-up task
  enter            show the metrics of the selected task
  esc              close the metrics panel
  r                reset the layout
  q                quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := loadInput(args[0], metrics)
			if err != nil {
				return err
			}

			opts := c.baseOptions()
			if strategy != "" {
				opts.Strategy = strategy
			}
			if cmd.Flags().Changed("seed") {
				opts.Seed = seed
			}
			if err := opts.ValidateForLayout(); err != nil {
				return err
			}

			net, warnings, err := pipeline.Build(in, *opts.Palette)
			if err != nil {
				return err
			}
			for _, w := range warnings {
				c.Logger.Warn(w)
			}
			scene, err := pipeline.NewScene(net, opts)
			if err != nil {
				return err
			}

			p := tea.NewProgram(newViewModel(scene), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&metrics, "metrics", "m", "", "metrics file (json or yaml)")
	cmd.Flags().StringVar(&strategy, "strategy", "", "level strategy: longest-path or first-visit")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed of the simulation")
	return cmd
}

// =============================================================================
// viewModel - live force diagram
// =============================================================================

type frameMsg time.Time

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

type viewModel struct {
	scene *pipeline.Scene
	ctrl  *interact.Controller
	ids   []string

	cursor  int
	holding string // task picked up with space
	pinX    float64
	pinY    float64

	panel    *interact.Panel
	viewport viewport.Model

	width, height int
	colors        map[string]lipgloss.Style
}

func newViewModel(scene *pipeline.Scene) *viewModel {
	m := &viewModel{
		scene:    scene,
		ids:      scene.Network.Nodes,
		viewport: viewport.New(panelWidth, 10),
		width:    100,
		height:   32,
		colors:   make(map[string]lipgloss.Style),
	}
	m.ctrl = interact.New(scene.Simulation, scene.Configurator, scene.Network.Info,
		interact.PanelFunc(m.showPanel))

	l := scene.Layout()
	for _, tc := range l.Colors {
		if tc.Color != "" {
			m.colors[tc.Type] = lipgloss.NewStyle().Foreground(lipgloss.Color(tc.Color))
		}
	}
	return m
}

func (m *viewModel) showPanel(p interact.Panel) {
	m.panel = &p
	m.viewport.SetContent(panelContent(p))
	m.viewport.GotoTop()
}

func (m *viewModel) Init() tea.Cmd {
	return nextFrame()
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if m.running() {
			m.scene.Simulation.Tick()
		}
		return m, nextFrame()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Height = max(3, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *viewModel) running() bool {
	return !m.scene.Simulation.Stable() || m.ctrl.Active() > 0
}

func (m *viewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		m.drop()
		return m, tea.Quit
	case "esc":
		m.panel = nil
		return m, nil
	case "tab":
		m.selectNext(1)
		return m, nil
	case "shift+tab":
		m.selectNext(-1)
		return m, nil
	case " ", "space":
		if m.holding != "" {
			m.drop()
		} else if id := m.selected(); id != "" && m.ctrl.DragStart(id) {
			pos, _ := m.scene.Simulation.Position(id)
			m.holding, m.pinX, m.pinY = id, pos.X, pos.Y
		}
		return m, nil
	case "enter":
		if id := m.selected(); id != "" {
			m.ctrl.Click(id)
		}
		return m, nil
	case "r":
		m.drop()
		m.ctrl.Reset()
		return m, nil
	}

	if m.holding != "" {
		if dx, dy, ok := arrowDelta(key); ok {
			m.pinX += dx * dragStep
			m.pinY += dy * dragStep
			m.ctrl.Drag(m.holding, m.pinX, m.pinY)
			return m, nil
		}
	}

	if m.panel != nil {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func arrowDelta(key string) (dx, dy float64, ok bool) {
	switch key {
	case "left", "h":
		return -1, 0, true
	case "right", "l":
		return 1, 0, true
	case "up", "k":
		return 0, -1, true
	case "down", "j":
		return 0, 1, true
	}
	return 0, 0, false
}

func (m *viewModel) selected() string {
	if len(m.ids) == 0 {
		return ""
	}
	return m.ids[m.cursor]
}

func (m *viewModel) selectNext(step int) {
	if len(m.ids) == 0 || m.holding != "" {
		return
	}
	m.cursor = (m.cursor + step + len(m.ids)) % len(m.ids)
}

func (m *viewModel) drop() {
	if m.holding != "" {
		m.ctrl.DragEnd(m.holding)
		m.holding = ""
	}
}

// =============================================================================
// Rendering
// =============================================================================

func (m *viewModel) View() string {
	header := styleTitle.Render("taskweb") + " " + styleDim.Render(fmt.Sprintf(
		"%d tasks · tick %d · alpha %.3f", len(m.ids), m.scene.Simulation.Ticks(), m.scene.Simulation.Alpha()))
	footer := styleDim.Render("tab select · space pick up · arrows move · enter metrics · r reset · q quit")

	cols, rows := m.width, max(4, m.height-2)
	var body string
	if m.panel != nil {
		cols = max(10, m.width-panelWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.canvas(cols, rows),
			viewPanelStyle.Render(m.viewport.View()))
	} else {
		body = m.canvas(cols, rows)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

type cell struct {
	r     rune // 0 marks the trailing half of a wide rune
	style *lipgloss.Style
}

// canvas draws links and tasks onto a character grid scaled from the
// layout's chart area.
func (m *viewModel) canvas(cols, rows int) string {
	grid := make([][]cell, rows)
	for i := range grid {
		grid[i] = make([]cell, cols)
		for j := range grid[i] {
			grid[i][j] = cell{r: ' '}
		}
	}

	cfg := m.scene.Configurator.Config()
	project := func(x, y float64) (int, int) {
		cx := int(math.Round(x / cfg.Width * float64(cols-1)))
		cy := int(math.Round(y / cfg.Height * float64(rows-1)))
		return clamp(cx, 0, cols-1), clamp(cy, 0, rows-1)
	}

	for _, l := range m.scene.Network.Resolve() {
		s, _ := m.scene.Simulation.Position(l.Source)
		t, _ := m.scene.Simulation.Position(l.Target)
		x0, y0 := project(s.X, s.Y)
		x1, y1 := project(t.X, t.Y)
		style := viewLinkStyle
		if cs, ok := m.colors[l.Type]; ok {
			style = cs
		}
		drawLine(grid, x0, y0, x1, y1, &style)
	}

	for i, id := range m.ids {
		pos, ok := m.scene.Simulation.Position(id)
		if !ok {
			continue
		}
		x, y := project(pos.X, pos.Y)
		style := &viewNodeStyle
		switch {
		case id == m.holding:
			style = &viewPinnedStyle
		case i == m.cursor:
			style = &viewSelectedStyle
		}
		grid[y][x] = cell{r: '●', style: style}
		putLabel(grid[y], x+2, runewidth.Truncate(id, maxLabelWidth, "…"), style)
	}

	var b strings.Builder
	for i, row := range grid {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeRow(&b, row)
	}
	return b.String()
}

// drawLine plots a link with Bresenham's algorithm, leaving cells that
// already hold a character untouched.
func drawLine(grid [][]cell, x0, y0, x1, y1 int, style *lipgloss.Style) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		if grid[y0][x0].r == ' ' {
			grid[y0][x0] = cell{r: '·', style: style}
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		if e2 := 2 * e; e2 >= dy {
			e += dy
			x0 += sx
		} else {
			e += dx
			y0 += sy
		}
	}
}

func putLabel(row []cell, x int, label string, style *lipgloss.Style) {
	for _, r := range label {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > len(row) {
			return
		}
		row[x] = cell{r: r, style: style}
		if w == 2 {
			row[x+1] = cell{r: 0, style: style}
		}
		x += w
	}
}

// writeRow renders a grid row, styling runs of equally styled cells at once.
func writeRow(b *strings.Builder, row []cell) {
	var (
		run   strings.Builder
		style *lipgloss.Style
	)
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if style != nil {
			b.WriteString(style.Render(run.String()))
		} else {
			b.WriteString(run.String())
		}
		run.Reset()
	}
	for _, c := range row {
		if c.r == 0 {
			continue
		}
		if c.style != style {
			flush()
			style = c.style
		}
		run.WriteRune(c.r)
	}
	flush()
}

func panelContent(p interact.Panel) string {
	var b strings.Builder
	b.WriteString(styleHighlight.Render(p.NodeID))
	b.WriteString("\n\n")
	keyWidth := 0
	for _, f := range p.Metric.Fields {
		keyWidth = max(keyWidth, runewidth.StringWidth(f.Key))
	}
	for _, f := range p.Metric.Fields {
		b.WriteString(styleDim.Render(runewidth.FillRight(f.Key, keyWidth)))
		b.WriteString("  ")
		b.WriteString(runewidth.Wrap(f.String(), panelWidth-keyWidth-4))
		b.WriteByte('\n')
	}
	if len(p.Metric.Fields) == 0 {
		b.WriteString(styleDim.Render("no metrics"))
	}
	return b.String()
}

func clamp(v, lo, hi int) int { return min(max(v, lo), hi) }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
