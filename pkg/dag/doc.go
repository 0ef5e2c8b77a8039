// Package dag provides the ordered, typed dependency graph behind taskweb
// diagrams.
//
// # Overview
//
// Nodes are tasks and edges are typed dependency relationships: for an edge
// From→To, From is a dependency of To and To is a dependent of From. The
// graph remembers insertion order for both nodes and edges, which keeps
// level assignment and rendering deterministic for a given input.
//
// # Basic Usage
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "design"})
//	g.AddNode(dag.Node{ID: "build"})
//	g.AddEdge(dag.Edge{From: "design", To: "build", Type: "Quality Education"})
//
// Query the structure with [DAG.Dependencies], [DAG.Dependents],
// [DAG.Sources] and [DAG.NodesInLevel]. Levels are assigned by the
// transform subpackage and stored with [DAG.SetLevels].
//
// # Cycles
//
// The graph accepts cycles on insertion because task data routinely contains
// them. [DAG.Validate] reports them, and the transform subpackage either
// tolerates them (first-visit level assignment) or breaks them
// deterministically (longest-path level assignment).
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Callers must synchronize
// access if multiple goroutines read or modify the same graph.
//
// [transform]: github.com/matzehuels/taskweb/pkg/dag/transform
package dag
