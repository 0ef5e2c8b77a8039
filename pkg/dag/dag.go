package dag

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	// All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidEdgeEndpoint is returned by [DAG.Validate] when an edge
	// references a node that doesn't exist. This indicates graph corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrGraphHasCycle is returned by [DAG.Validate] when a cycle is detected.
	// Cycles are detected using depth-first search with white/gray/black coloring.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes or the graph.
// Metadata maps are never nil - they are automatically initialized to empty
// maps when needed.
type Metadata map[string]any

// Node is a task in the dependency graph. Level is the layout depth assigned
// by the level assigners in the transform package; it is zero until
// [DAG.SetLevels] is called.
type Node struct {
	ID    string   // Unique identifier (also used as display label)
	Level int      // Layout depth (0 = no dependencies)
	Meta  Metadata // Arbitrary key-value metadata (never nil after AddNode)
}

// Edge is a typed dependency: From is a dependency of To.
type Edge struct {
	From string   // Dependency (link source)
	To   string   // Dependent (link target)
	Type string   // Relationship category, used for colouring
	Meta Metadata // Arbitrary key-value metadata (never nil after AddEdge)
}

// DAG is a directed dependency graph that remembers insertion order.
// Despite the name it does not reject cycles on insertion; use [DAG.Validate]
// to check acyclicity and the transform package to break cycles.
//
// The zero value is not usable - use New to create a valid DAG instance.
// DAG is not safe for concurrent use without external synchronization.
type DAG struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	outgoing map[string][]string // nodeID -> dependent IDs
	incoming map[string][]string // nodeID -> dependency IDs
	meta     Metadata
}

// New creates an empty DAG with optional graph-level metadata.
// The metadata parameter can be nil, in which case an empty map is created.
func New(meta Metadata) *DAG {
	if meta == nil {
		meta = Metadata{}
	}
	return &DAG{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map.
// The returned map is never nil and can be safely modified.
func (d *DAG) Meta() Metadata { return d.meta }

// AddNode appends a node to the graph. Returns ErrInvalidNodeID if the node
// ID is empty, or ErrDuplicateNodeID if a node with the same ID already
// exists. The node's Meta field is initialized to an empty map if nil.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	d.nodes[node.ID] = node
	d.order = append(d.order, node.ID)
	return nil
}

// EnsureNode adds a node with the given ID unless it already exists.
// It reports whether a node was added.
func (d *DAG) EnsureNode(id string) bool {
	if _, exists := d.nodes[id]; exists || id == "" {
		return false
	}
	_ = d.AddNode(Node{ID: id})
	return true
}

// SetLevels updates the level assignments for nodes.
// Nodes not present in the levels map retain their current level.
func (d *DAG) SetLevels(levels map[string]int) {
	for id, lvl := range levels {
		if n, ok := d.nodes[id]; ok {
			n.Level = lvl
		}
	}
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode if the From node doesn't exist, or
// ErrUnknownTargetNode if the To node doesn't exist. Multiple edges
// between the same nodes are allowed; each input connection is one edge.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

// RemoveEdge removes every edge from→to.
// No error is returned if the edge does not exist.
func (d *DAG) RemoveEdge(from, to string) {
	d.edges = slices.DeleteFunc(d.edges, func(e Edge) bool { return e.From == from && e.To == to })
	d.outgoing[from] = slices.DeleteFunc(d.outgoing[from], func(s string) bool { return s == to })
	d.incoming[to] = slices.DeleteFunc(d.incoming[to], func(s string) bool { return s == from })
}

// Clone returns a deep copy of the graph structure. Metadata maps are
// shared with the original.
func (d *DAG) Clone() *DAG {
	c := New(d.meta)
	for _, id := range d.order {
		n := *d.nodes[id]
		_ = c.AddNode(n)
	}
	for _, e := range d.edges {
		_ = c.AddEdge(e)
	}
	return c
}

// Nodes returns all nodes in insertion order. The returned slice contains
// pointers to the actual node structs, so modifications affect the graph.
func (d *DAG) Nodes() []*Node {
	nodes := make([]*Node, len(d.order))
	for i, id := range d.order {
		nodes[i] = d.nodes[id]
	}
	return nodes
}

// NodeIDs returns all node IDs in insertion order.
func (d *DAG) NodeIDs() []string { return slices.Clone(d.order) }

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Dependents returns the IDs the node has edges to, one entry per edge.
// The returned slice should not be modified.
func (d *DAG) Dependents(id string) []string { return d.outgoing[id] }

// Dependencies returns the IDs that have edges to the node, one entry per
// edge. The returned slice should not be modified.
func (d *DAG) Dependencies(id string) []string { return d.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
func (d *DAG) OutDegree(id string) int { return len(d.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (d *DAG) InDegree(id string) int { return len(d.incoming[id]) }

// Node returns the node with the given ID and true, or nil and false if not found.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// NodesInLevel returns the nodes assigned to the given level, in insertion order.
func (d *DAG) NodesInLevel(level int) []*Node {
	var result []*Node
	for _, id := range d.order {
		if n := d.nodes[id]; n.Level == level {
			result = append(result, n)
		}
	}
	return result
}

// LevelIDs returns all distinct levels in ascending order.
func (d *DAG) LevelIDs() []int {
	seen := make(map[int]struct{})
	for _, n := range d.nodes {
		seen[n.Level] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// MaxLevel returns the highest level, or 0 if the graph is empty.
func (d *DAG) MaxLevel() int {
	levels := d.LevelIDs()
	if len(levels) == 0 {
		return 0
	}
	return levels[len(levels)-1]
}

// Sources returns nodes with no incoming edges (tasks without dependencies),
// in insertion order.
func (d *DAG) Sources() []*Node {
	var sources []*Node
	for _, id := range d.order {
		if len(d.incoming[id]) == 0 {
			sources = append(sources, d.nodes[id])
		}
	}
	return sources
}

// Sinks returns nodes with no outgoing edges (tasks nothing depends on),
// in insertion order.
func (d *DAG) Sinks() []*Node {
	var sinks []*Node
	for _, id := range d.order {
		if len(d.outgoing[id]) == 0 {
			sinks = append(sinks, d.nodes[id])
		}
	}
	return sinks
}

// Validate checks graph integrity and returns nil if valid.
// Returns ErrInvalidEdgeEndpoint if an edge references a missing node,
// or ErrGraphHasCycle if a directed cycle exists.
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		_, okS := d.nodes[e.From]
		_, okD := d.nodes[e.To]
		if !okS || !okD {
			return ErrInvalidEdgeEndpoint
		}
	}
	return d.detectCycles()
}

func (d *DAG) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for _, id := range d.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// NodeIDsOf extracts the IDs of the given nodes, preserving order.
func NodeIDsOf(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

// PosMap creates a position lookup map from a slice of node IDs.
// The returned map maps each ID to its index in the slice.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}
