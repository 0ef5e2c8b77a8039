// Package graph turns raw dependency records into the task network that
// taskweb lays out, and defines the serialized layout format.
//
// # Input
//
// An [Input] holds connections and metrics:
//
//	{
//	  "connections": [{"source": "Survey", "target": "Wells", "type": "Clean Water and Sanitation"}],
//	  "metrics": [{"task": "Wells", "budget": 1200, "owner": "Ana"}]
//	}
//
// A connection's source is a dependency of its target. Metric fields other
// than "task" are shown in the node's detail panel in input order; [Metric]
// preserves that order through JSON and YAML.
//
// # Building
//
// [Build] derives the [Network]: distinct nodes in first-seen order, one
// link per connection, the distinct link types and the metric lookup.
// [Network.Resolve] produces links with resolved node indexes for the
// simulation. [Validate] is an optional strictness pass the pipeline runs
// before building.
//
// # Layout Serialization
//
// [Layout] is the positioned, settled diagram. It is written by the json
// output format and stored by the render cache:
//
//	data, _ := graph.MarshalLayout(layout)
//	parsed, _ := graph.UnmarshalLayout(data)
//
// # Constants
//
// This package is the single source of truth for output constants:
//
//	graph.VizTypeForce     // "force"
//	graph.VizTypeNodelink  // "nodelink"
//	graph.FormatSVG        // "svg", and the other Formats
package graph
