// Package palette maps link types to colours.
//
// A [Palette] is an ordered list of categories. The order is the legend
// order, and every category is listed in the legend whether or not a link
// uses it. Types missing from the palette have no colour: their links are
// drawn without stroke and their arrowheads without fill.
//
// [Default] returns the built-in palette of Sustainable Development Goal
// categories. Configuration files replace it (see pkg/config).
package palette

import (
	"regexp"

	"github.com/matzehuels/taskweb/pkg/errors"
)

// Category is one legend entry.
type Category struct {
	Name  string `json:"name" toml:"name" yaml:"name"`
	Color string `json:"color" toml:"color" yaml:"color"`
}

// Palette is an ordered category table.
type Palette struct {
	Categories []Category `json:"categories" toml:"categories" yaml:"categories"`
}

// Default returns the built-in palette.
func Default() Palette {
	return Palette{Categories: []Category{
		{"No Poverty", "#E5243B"},
		{"Zero Hunger", "#DDA63A"},
		{"Good Health and Well-Being", "#4C9F38"},
		{"Quality Education", "#C5192D"},
		{"Gender Equality", "#FF3A21"},
		{"Clean Water and Sanitation", "#2AADD2"},
		{"Affordable and Clean Energy", "#F9C802"},
		{"Climate Action", "#3F7E44"},
		{"Life on Land", "#56C02B"},
		{"Sustainable Cities and Communities", "#FFA600"},
		{"Other", "#A81D11"},
		{"Life Below Water", "#1F97D4"},
		{"Decent Work and Economic Growth", "#CF4A22"},
	}}
}

// Color returns the colour of a type and whether the type is known.
// When a name appears twice the first entry wins.
func (p Palette) Color(name string) (string, bool) {
	for _, c := range p.Categories {
		if c.Name == name {
			return c.Color, true
		}
	}
	return "", false
}

// Names returns the category names in legend order.
func (p Palette) Names() []string {
	names := make([]string, len(p.Categories))
	for i, c := range p.Categories {
		names[i] = c.Name
	}
	return names
}

// Len returns the number of categories.
func (p Palette) Len() int { return len(p.Categories) }

// Unknown returns the given types that have no colour, preserving order.
func (p Palette) Unknown(types []string) []string {
	var out []string
	for _, t := range types {
		if _, ok := p.Color(t); !ok {
			out = append(out, t)
		}
	}
	return out
}

// Validate checks that every category has a name and a hex colour.
func (p Palette) Validate() error {
	if len(p.Categories) == 0 {
		return errors.New(errors.ErrCodeInvalidPalette, "palette has no categories")
	}
	for i, c := range p.Categories {
		if c.Name == "" {
			return errors.New(errors.ErrCodeInvalidPalette, "category %d has no name", i+1)
		}
		if err := errors.ValidateColor(c.Color); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPalette, err, "category %q", c.Name)
		}
	}
	return nil
}

var markerUnsafe = regexp.MustCompile(`[\s&]`)

// MarkerID returns the SVG id of the arrowhead marker for a link type.
// Whitespace and ampersands are replaced by underscores.
func MarkerID(linkType string) string {
	return "arrow-" + markerUnsafe.ReplaceAllString(linkType, "_")
}
