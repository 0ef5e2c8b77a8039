package graph

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// =============================================================================
// Layout - Positioned Diagram Serialization
// =============================================================================

// Layout is the serialized form of a settled diagram. It is what the json
// output format writes and what the render cache stores, so a cached layout
// can be rendered into any other format without rerunning the simulation.
type Layout struct {
	VizType  string       `json:"viz_type"`
	Strategy string       `json:"strategy"`
	Width    float64      `json:"width"`
	Height   float64      `json:"height"`
	MaxLevel int          `json:"max_level"`
	Ticks    int          `json:"ticks"`
	Nodes    []LayoutNode `json:"nodes"`
	Links    []LayoutLink `json:"links"`
	Colors   []TypeColor  `json:"colors"`
	Cycles   [][]string   `json:"cycles,omitempty"`
}

// LayoutNode is a positioned task.
type LayoutNode struct {
	ID     string  `json:"id"`
	Level  int     `json:"level"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Metric *Metric `json:"metric,omitempty"`
}

// LayoutLink is a link between two positioned tasks.
type LayoutLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
	Color  string `json:"color,omitempty"`
}

// TypeColor is one entry of the colour scale.
type TypeColor struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

// Node returns the positioned node with the given id.
func (l *Layout) Node(id string) (LayoutNode, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return LayoutNode{}, false
}

// ColorOf returns the colour of a link type, or "" when the type is unknown.
func (l *Layout) ColorOf(t string) string {
	for _, c := range l.Colors {
		if c.Type == t {
			return c.Color
		}
	}
	return ""
}

// IsNodelink reports whether the layout is meant for the graphviz renderer.
func (l *Layout) IsNodelink() bool { return l.VizType == VizTypeNodelink }

// MarshalLayout encodes a layout as indented JSON.
func MarshalLayout(l Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteLayout(l, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteLayout writes a layout as indented JSON to w.
func WriteLayout(l Layout, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// UnmarshalLayout decodes a layout produced by [MarshalLayout].
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("decode: %w", err)
	}
	return l, nil
}
