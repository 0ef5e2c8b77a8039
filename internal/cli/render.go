package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taskweb/pkg/graph"
	taskio "github.com/matzehuels/taskweb/pkg/io"
	"github.com/matzehuels/taskweb/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
// Zero values leave the config file's settings in place.
type renderOpts struct {
	output   string  // output file (single format), base path, or "-" for stdout
	formats  string  // comma-separated output formats
	vizType  string  // force or nodelink
	strategy string  // level strategy
	metrics  string  // separate metrics document
	seed     uint64  // simulation seed
	maxTicks int     // simulation tick budget
	title    string  // html page title
	scale    float64 // png pixel density
	static   bool    // no script, panels or reset button
	detailed bool    // nodelink labels with level and metrics
	noCache  bool    // disable the artifact cache
	refresh  bool    // recompute even when cached
	watch    bool    // re-render when the input changes
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var ro renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a task dependency document",
		Long: `Render lays out the tasks of a JSON, YAML or CSV document and writes the
requested artifacts next to the input (or to --output).

Formats: svg (interactive, default), html, png, pdf, dot, json (the settled
layout, which other tools and the server can render again).`,
		Example: `  taskweb render tasks.yaml
  taskweb render tasks.json -f svg,png,json -o out/tasks
  taskweb render edges.csv --metrics metrics.csv --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], &ro)
		},
	}

	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (single format), base path (several), or - for stdout")
	cmd.Flags().StringVarP(&ro.formats, "format", "f", "", "output format(s): "+strings.Join(graph.Formats, ", ")+" (comma-separated)")
	cmd.Flags().StringVarP(&ro.vizType, "type", "t", "", "visualization type: force (default), nodelink")
	cmd.Flags().StringVar(&ro.strategy, "strategy", "", "level strategy: longest-path (default), first-visit")
	cmd.Flags().StringVarP(&ro.metrics, "metrics", "m", "", "metrics document (json, yaml or csv)")
	cmd.Flags().Uint64Var(&ro.seed, "seed", 0, "simulation seed")
	cmd.Flags().IntVar(&ro.maxTicks, "max-ticks", 0, "simulation tick budget")
	cmd.Flags().StringVar(&ro.title, "title", "", "html page title")
	cmd.Flags().Float64Var(&ro.scale, "scale", 0, "png pixel density")
	cmd.Flags().BoolVar(&ro.static, "static", false, "leave out the script, detail panels and reset button")
	cmd.Flags().BoolVar(&ro.detailed, "detailed", false, "show levels and metrics in nodelink labels")
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&ro.refresh, "refresh", false, "recompute cached layouts and artifacts")
	cmd.Flags().BoolVarP(&ro.watch, "watch", "w", false, "re-render whenever the input changes")

	return cmd
}

// renderOptions merges the flags over the config-derived defaults.
func (c *CLI) renderOptions(ro *renderOpts) pipeline.Options {
	opts := c.baseOptions()
	opts.Formats = parseFormats(ro.formats)
	if ro.vizType != "" {
		opts.VizType = ro.vizType
	}
	if ro.strategy != "" {
		opts.Strategy = ro.strategy
	}
	if ro.seed != 0 {
		opts.Seed = ro.seed
	}
	if ro.maxTicks != 0 {
		opts.MaxTicks = ro.maxTicks
	}
	if ro.title != "" {
		opts.Title = ro.title
	}
	if ro.scale != 0 {
		opts.Scale = ro.scale
	}
	opts.Static = ro.static
	opts.Detailed = ro.detailed
	opts.Refresh = ro.refresh
	return opts
}

func (c *CLI) runRender(ctx context.Context, input string, ro *renderOpts) error {
	opts := c.renderOptions(ro)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if ro.output == "-" && len(opts.Formats) != 1 {
		return fmt.Errorf("--output - needs exactly one format, got %d", len(opts.Formats))
	}

	runner, err := c.newRunner(ctx, ro.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	err = c.renderOnce(ctx, runner, input, ro, opts)
	if !ro.watch {
		return err
	}
	if err != nil {
		printError("%v", err)
	}

	paths := []string{input}
	if ro.metrics != "" {
		paths = append(paths, ro.metrics)
	}
	printInfo("Watching %s (ctrl+c to stop)", strings.Join(paths, ", "))
	opts.Refresh = false
	return watchFiles(ctx, c.Logger, paths, watchDebounce, func() {
		if err := c.renderOnce(ctx, runner, input, ro, opts); err != nil {
			printError("%v", err)
		}
	})
}

// renderOnce loads the input, runs the pipeline and writes the artifacts.
func (c *CLI) renderOnce(ctx context.Context, runner *pipeline.Runner, input string, ro *renderOpts, opts pipeline.Options) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	in, err := loadInput(input, ro.metrics)
	if err != nil {
		return err
	}
	logger.Debug("loaded input", "path", input, "connections", len(in.Connections), "metrics", len(in.Metrics))

	spin := newSpinner(ctx, "Laying out "+filepath.Base(input))
	if ro.output != "-" {
		spin.Start()
	}
	result, err := runner.Execute(ctx, in, opts)
	spin.Stop()
	if err != nil {
		return err
	}

	if ro.output == "-" {
		_, err := os.Stdout.Write(result.Artifacts[opts.Formats[0]])
		return err
	}

	printWarnings(result.Warnings)
	paths := outputPaths(ro.output, input, opts.Formats)
	for _, format := range opts.Formats {
		path := paths[format]
		if err := writeFile(path, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}
	printStats(result.Stats, result.CacheInfo)
	prog.done(fmt.Sprintf("Rendered %d artifact(s)", len(opts.Formats)))
	return nil
}

// loadInput reads the input document and, if given, a separate metrics
// document whose records are appended to the input's own.
func loadInput(input, metricsPath string) (graph.Input, error) {
	in, err := taskio.Import(input)
	if err != nil {
		return graph.Input{}, err
	}
	if metricsPath != "" {
		metrics, err := taskio.ImportMetrics(metricsPath)
		if err != nil {
			return graph.Input{}, err
		}
		in.Metrics = append(in.Metrics, metrics...)
	}
	return in, nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input. If output ends in
// an output format extension (.svg, .png, ...), that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if slices.Contains(graph.Formats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPaths maps each format to its file. A single format written to an
// explicit output path uses that path verbatim.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" && filepath.Ext(output) != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
