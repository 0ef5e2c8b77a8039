package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/matzehuels/taskweb/pkg/palette"
)

// paletteCommand prints the link type colours in effect.
func (c *CLI) paletteCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Print the link type colours",
		Long: `Palette prints the link types that are drawn in colour, in legend order.
Types missing from the palette are drawn without colour. Override the
palette with [[palette.categories]] entries in the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(c.Config.Palette)
			}
			fmt.Fprintln(out, renderPaletteTable(c.Config.Palette))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the palette as JSON")
	return cmd
}

func renderPaletteTable(p palette.Palette) string {
	rows := make([][]string, p.Len())
	for i, cat := range p.Categories {
		rows[i] = []string{"  ", cat.Name, cat.Color, palette.MarkerID(cat.Name)}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Type", "Colour", "Marker").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return base.Inherit(styleHeader)
			case col == 0:
				return base.Background(lipgloss.Color(p.Categories[row].Color))
			case col == 1:
				return base.Foreground(colorWhite)
			}
			return base.Foreground(colorGray)
		}).
		Render()
}
