package pipeline

import (
	"fmt"

	"github.com/matzehuels/taskweb/pkg/graph"
	"github.com/matzehuels/taskweb/pkg/palette"
)

// Build validates the connections and derives the task network.
//
// Malformed connections (empty or oversized endpoints) fail with an
// INVALID_CONNECTION error. Problems that only degrade the drawing are
// returned as warnings: untyped links, types missing from the palette and
// metric records for tasks that appear in no connection.
func Build(in graph.Input, p palette.Palette) (*graph.Network, []string, error) {
	if err := graph.Validate(in.Connections); err != nil {
		return nil, nil, err
	}
	net := graph.BuildInput(in)

	var warnings []string
	if idx := graph.Untyped(in.Connections); len(idx) > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"%d connection(s) without type (first: #%d) are drawn without colour", len(idx), idx[0]))
	}
	for _, t := range p.Unknown(net.Types) {
		if t != "" {
			warnings = append(warnings, fmt.Sprintf("link type %q is not in the palette and is drawn without colour", t))
		}
	}
	for _, m := range in.Metrics {
		if _, ok := net.Graph.Node(m.Task); !ok {
			warnings = append(warnings, fmt.Sprintf("metric record for %q ignored: the task is in no connection", m.Task))
		}
	}
	return net, warnings, nil
}
