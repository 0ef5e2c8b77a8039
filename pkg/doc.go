// Package pkg provides the libraries behind taskweb, a tool that draws task
// dependencies as interactive force-directed diagrams.
//
// # Overview
//
// A document lists typed connections between tasks (source depends on
// nothing, target depends on source) plus optional per-task metrics.
// Tasks are assigned a level by dependency depth, a force simulation pulls
// each task toward the height of its level, and the settled positions are
// rendered as SVG, HTML, PNG, PDF, JSON or Graphviz DOT.
//
// # Architecture
//
//	JSON / YAML / CSV document
//	         ↓
//	    [io] package (read connections and metrics)
//	         ↓
//	    [graph] package (network of tasks, links and metrics)
//	         ↓
//	    [dag/transform] package (levels, cycles)
//	         ↓
//	    [layout] + [force] packages (level-driven simulation)
//	         ↓
//	    [render] packages (scene, raster, nodelink)
//
// [pipeline] runs these steps with caching, and [interact] routes drag,
// click and reset gestures to a live simulation.
//
// # Quick Start
//
//	in, _ := io.Import("tasks.json")
//	opts := pipeline.Options{Formats: []string{"svg"}}
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, _ := runner.Execute(ctx, in, opts)
//	os.WriteFile("tasks.svg", res.Artifacts["svg"], 0o644)
//
// # Main Packages
//
// [dag] - Ordered, typed dependency graph that accepts cycles.
//
// [dag/transform] - Level assignment (first-visit and longest-path) and
// cycle detection.
//
// [force] - Velocity Verlet force simulation with link, many-body and
// positioning forces.
//
// [layout] - Turns levels into simulation forces and resets them.
//
// [interact] - Drag, click and reset handling for a running simulation.
//
// [palette] - Link type colours and legend order.
//
// [graph] - Input documents, networks and serialized layouts.
//
// [render/scene] - Interactive SVG and HTML output.
//
// [render/raster] - PNG and PDF output.
//
// [render/nodelink] - Graphviz DOT and static node-link SVG output.
//
// [pipeline] - Orchestration with layout and artifact caching.
//
// [cache], [session] - Cache backends (file, redis, none) and stored renders.
//
// [config] - TOML or YAML configuration.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// [errors] - Error codes shared by the CLI and the HTTP server.
//
// [dag]: https://pkg.go.dev/github.com/matzehuels/taskweb/pkg/dag
// [dag/transform]: https://pkg.go.dev/github.com/matzehuels/taskweb/pkg/dag/transform
// [force]: https://pkg.go.dev/github.com/matzehuels/taskweb/pkg/force
// [layout]: https://pkg.go.dev/github.com/matzehuels/taskweb/pkg/layout
// [interact]: https://pkg.go.dev/github.com/matzehuels/taskweb/pkg/interact
// [palette]: https://pkg.go.dev/github.com/matzehuels/taskweb/pkg/palette
// [graph]: https://pkg.go.dev/github.com/matzehuels/taskweb/pkg/graph
// [io]: https://pkg.go.dev/github.com/matzehuels/taskweb/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/taskweb/pkg/render
// [render/scene]: https://pkg.go.dev/github.com/matzehuels/taskweb/pkg/render/scene
// [render/raster]: https://pkg.go.dev/github.com/matzehuels/taskweb/pkg/render/raster
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/taskweb/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/taskweb/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/taskweb/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/taskweb/pkg/session
// [config]: https://pkg.go.dev/github.com/matzehuels/taskweb/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/taskweb/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/taskweb/pkg/errors
package pkg
