package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/matzehuels/taskweb/pkg/dag"
	"github.com/matzehuels/taskweb/pkg/dag/transform"
	"github.com/matzehuels/taskweb/pkg/graph"
	"github.com/matzehuels/taskweb/pkg/pipeline"
)

// levelsCommand prints the level of every task.
func (c *CLI) levelsCommand() *cobra.Command {
	var (
		strategy string
		metrics  string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "levels [file]",
		Short: "Print the level assigned to every task",
		Long: `Levels builds the task network and prints each task's level (its depth in
the dependency graph) along with detected cycles. With the longest-path
strategy the links ignored to break cycles are listed as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strategy == "" {
				strategy = c.Config.Strategy
			}
			if err := pipeline.ValidateStrategy(strategy); err != nil {
				return err
			}
			in, err := loadInput(args[0], metrics)
			if err != nil {
				return err
			}
			net, warnings, err := pipeline.Build(in, c.Config.Palette)
			if err != nil {
				return err
			}
			s, _ := transform.ParseStrategy(strategy)
			res, err := transform.Assign(net.Graph, s)
			if err != nil {
				return err
			}

			if asJSON {
				return printLevelsJSON(net, res)
			}
			printWarnings(warnings)
			fmt.Fprintln(out, renderLevelsTable(net.Graph, res))
			printLevelSummary(res)
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "", "level strategy: longest-path (default), first-visit")
	cmd.Flags().StringVarP(&metrics, "metrics", "m", "", "metrics document (json, yaml or csv)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print levels and cycles as JSON")
	return cmd
}

// levelRows lists tasks by level, then in first-seen order. Each row holds
// level, task, distinct dependencies and distinct dependents.
func levelRows(g *dag.DAG, res transform.Result) [][]string {
	nodes := g.Nodes()
	order := dag.PosMap(dag.NodeIDsOf(nodes))
	slices.SortStableFunc(nodes, func(a, b *dag.Node) int {
		return cmp.Or(cmp.Compare(res.Levels.Of(a.ID), res.Levels.Of(b.ID)), cmp.Compare(order[a.ID], order[b.ID]))
	})

	rows := make([][]string, len(nodes))
	for i, n := range nodes {
		rows[i] = []string{
			strconv.Itoa(res.Levels.Of(n.ID)),
			n.ID,
			strings.Join(distinct(g.Dependencies(n.ID)), ", "),
			strings.Join(distinct(g.Dependents(n.ID)), ", "),
		}
	}
	return rows
}

func distinct(ids []string) []string {
	var uniq []string
	for _, id := range ids {
		if !slices.Contains(uniq, id) {
			uniq = append(uniq, id)
		}
	}
	return uniq
}

func renderLevelsTable(g *dag.DAG, res transform.Result) string {
	rows := levelRows(g, res)
	cyclic := make(map[string]bool)
	for _, c := range res.Cycles {
		for _, id := range c {
			cyclic[id] = true
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Level", "Task", "Depends on", "Needed by").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return base.Inherit(styleHeader)
			}
			switch {
			case col == 0:
				return base.Foreground(colorCyan).Align(lipgloss.Right)
			case col == 1 && cyclic[rows[row][1]]:
				return base.Foreground(colorYellow)
			case col == 1:
				return base.Foreground(colorWhite)
			}
			return base.Foreground(colorGray)
		})
	return t.Render()
}

func printLevelSummary(res transform.Result) {
	printKeyValue("strategy", string(res.Strategy))
	printKeyValue("max level", strconv.Itoa(res.Levels.Max()))
	for _, c := range res.Cycles {
		printWarning("cycle: %s", strings.Join(c, " ↔ "))
	}
	for _, e := range res.Broken {
		printDetail("ignored %s %s %s", e[0], iconArrow, e[1])
	}
}

// levelsJSON is the --json output of the levels command.
type levelsJSON struct {
	Strategy string         `json:"strategy"`
	MaxLevel int            `json:"max_level"`
	Levels   []taskLevel    `json:"levels"`
	Cycles   [][]string     `json:"cycles,omitempty"`
	Broken   []graph.Link   `json:"broken,omitempty"`
	Types    map[string]int `json:"types"`
}

type taskLevel struct {
	Task  string `json:"task"`
	Level int    `json:"level"`
}

func printLevelsJSON(net *graph.Network, res transform.Result) error {
	doc := levelsJSON{
		Strategy: string(res.Strategy),
		MaxLevel: res.Levels.Max(),
		Cycles:   res.Cycles,
		Types:    make(map[string]int),
	}
	for _, id := range net.Nodes {
		doc.Levels = append(doc.Levels, taskLevel{Task: id, Level: res.Levels.Of(id)})
	}
	for _, e := range res.Broken {
		doc.Broken = append(doc.Broken, graph.Link{Source: e[0], Target: e[1]})
	}
	for _, l := range net.Links {
		doc.Types[l.Type]++
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
