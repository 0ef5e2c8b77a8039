package graph

import (
	"slices"

	"github.com/matzehuels/taskweb/pkg/dag"
	"github.com/matzehuels/taskweb/pkg/errors"
)

// =============================================================================
// Building
// =============================================================================

// Build derives the task network from raw connections and metrics.
//
// Nodes are the distinct Source and Target values in first-seen order, so a
// task that only appears in metrics never becomes a node. Every connection
// becomes a [Link] in input order. Connections with an empty endpoint are
// kept as links but contribute neither nodes nor graph edges; see
// [Validate] for rejecting them up front.
//
// Build never fails and never mutates its arguments. Calling it twice with
// equal inputs yields equal networks.
func Build(conns []Connection, metrics []Metric) *Network {
	net := &Network{
		Graph: dag.New(nil),
		Links: make([]Link, 0, len(conns)),
		Info:  make(NodeInfo, len(metrics)),
	}

	for _, m := range metrics {
		if m.Task == "" {
			continue
		}
		net.Info[m.Task] = m
	}

	seenType := make(map[string]bool)
	for _, c := range conns {
		net.Graph.EnsureNode(c.Source)
		net.Graph.EnsureNode(c.Target)
		if c.Source != "" && c.Target != "" {
			_ = net.Graph.AddEdge(dag.Edge{From: c.Source, To: c.Target, Type: c.Type})
		}
		net.Links = append(net.Links, Link(c))
		if !seenType[c.Type] {
			seenType[c.Type] = true
			net.Types = append(net.Types, c.Type)
		}
	}

	net.Nodes = net.Graph.NodeIDs()
	return net
}

// BuildInput is shorthand for Build(in.Connections, in.Metrics).
func BuildInput(in Input) *Network { return Build(in.Connections, in.Metrics) }

// Resolve returns the links whose endpoints are both nodes, with their node
// indexes filled in. Links with an empty endpoint are skipped.
func (n *Network) Resolve() []ResolvedLink {
	pos := dag.PosMap(n.Nodes)
	out := make([]ResolvedLink, 0, len(n.Links))
	for _, l := range n.Links {
		s, okS := pos[l.Source]
		t, okT := pos[l.Target]
		if !okS || !okT {
			continue
		}
		out = append(out, ResolvedLink{Link: l, SourceIndex: s, TargetIndex: t})
	}
	return out
}

// HasType reports whether any link carries the given type.
func (n *Network) HasType(t string) bool { return slices.Contains(n.Types, t) }

// =============================================================================
// Validation
// =============================================================================

// Validate rejects connections with a missing or malformed endpoint.
// The error carries [errors.ErrCodeInvalidConnection] and names the first
// offending record (1-based).
func Validate(conns []Connection) error {
	for i, c := range conns {
		if c.Source == "" {
			return errors.New(errors.ErrCodeInvalidConnection, "connection %d: missing source", i+1)
		}
		if c.Target == "" {
			return errors.New(errors.ErrCodeInvalidConnection, "connection %d: missing target", i+1)
		}
		if err := errors.ValidateTaskID(c.Source); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConnection, err, "connection %d: bad source", i+1)
		}
		if err := errors.ValidateTaskID(c.Target); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConnection, err, "connection %d: bad target", i+1)
		}
	}
	return nil
}

// Untyped returns the 1-based positions of connections without a type.
// Such links render without colour.
func Untyped(conns []Connection) []int {
	var idx []int
	for i, c := range conns {
		if c.Type == "" {
			idx = append(idx, i+1)
		}
	}
	return idx
}
