package graph

import "github.com/matzehuels/taskweb/pkg/dag"

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Visualization types.
const (
	VizTypeForce    = "force"
	VizTypeNodelink = "nodelink"
)

// VizTypes lists the supported visualization types, default first.
var VizTypes = []string{VizTypeForce, VizTypeNodelink}

// Output formats.
const (
	FormatSVG  = "svg"
	FormatHTML = "html"
	FormatJSON = "json"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
)

// Formats lists the supported output formats, default first.
var Formats = []string{FormatSVG, FormatHTML, FormatJSON, FormatPNG, FormatPDF, FormatDOT}

// TaskKey is the metric field holding the task id. It is shown as the panel
// title and never as a field line.
const TaskKey = "task"

// =============================================================================
// Input records
// =============================================================================

// Connection is one raw dependency record: Source is a dependency of Target.
type Connection struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Type   string `json:"type" yaml:"type"`
}

// Input is the document taskweb renders: dependency connections plus
// optional per-task metrics.
type Input struct {
	Connections []Connection `json:"connections" yaml:"connections"`
	Metrics     []Metric     `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// =============================================================================
// Built network
// =============================================================================

// Link is one dependency as given in the input. Endpoints are task ids.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// ResolvedLink is a Link whose endpoints were found in the node list.
// SourceIndex and TargetIndex index into [Network.Nodes].
type ResolvedLink struct {
	Link
	SourceIndex int
	TargetIndex int
}

// NodeInfo maps task ids to their metric record.
type NodeInfo map[string]Metric

// Lookup returns the metric for id. Absence is valid.
func (n NodeInfo) Lookup(id string) (Metric, bool) {
	m, ok := n[id]
	return m, ok
}

// Network is the output of [Build].
type Network struct {
	Graph *dag.DAG // one node per distinct endpoint, one edge per well-formed link
	Nodes []string // distinct endpoints in first-seen order
	Links []Link   // one per input connection, input order
	Types []string // distinct link types in first-seen order
	Info  NodeInfo // task id -> metric, last write wins
}
