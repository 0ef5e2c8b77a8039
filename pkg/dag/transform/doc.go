// Package transform computes layout levels for task dependency graphs.
//
// # Overview
//
// A level is the vertical layout depth of a task: tasks without
// dependencies sit at level 0 and dependents are placed below their
// dependencies. Levels are layout hints for the force simulation, which
// pulls each node toward a target height derived from its level.
//
// # Strategies
//
// [AssignLevels] implements the first-visit strategy. It walks forward from
// the roots and keeps the first level each node receives, so the result
// depends on traversal order and a node reached early through a short path
// may end up at or above one of its dependencies. It never fails on cycles.
//
// [AssignLongestPathLevels] implements the longest-path strategy. It breaks
// cycles on a copy of the graph with [BackEdges] and then layers the result
// with Kahn's algorithm, so every dependency sits strictly above its
// dependents for the edges that were kept.
//
// [Assign] dispatches on a [Strategy], stores the levels on the graph and
// reports cycles found by [FindCycles].
//
// # Cycle Breaking
//
// [BackEdges] runs an iterative depth-first search starting from the source
// nodes and then from any node not yet reached, in insertion order. The
// edges closing a cycle during that search are the back edges; removing
// them (see [BreakCycles]) leaves the graph acyclic. Because traversal
// follows insertion order the same input always breaks the same edges.
//
// # Usage
//
//	res, err := transform.Assign(g, transform.LongestPath)
//	if err != nil {
//		return err
//	}
//	for _, c := range res.Cycles {
//		logger.Warn("dependency cycle", "tasks", c)
//	}
package transform
