package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/taskweb/pkg/errors"
	"github.com/matzehuels/taskweb/pkg/graph"
	"github.com/matzehuels/taskweb/pkg/render"
	"github.com/matzehuels/taskweb/pkg/render/nodelink"
	"github.com/matzehuels/taskweb/pkg/render/raster"
	"github.com/matzehuels/taskweb/pkg/render/scene"
)

// Render encodes a layout in every requested format. Formats are rendered
// concurrently; the first failure cancels the rest.
func Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	if l.VizType == "" {
		l.VizType = opts.VizType
	}

	var (
		mu        sync.Mutex
		artifacts = make(map[string][]byte, len(opts.Formats))
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			data, err := renderFormat(ctx, l, format, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// RenderFromLayoutData renders output from serialized layout data, such as
// a json artifact written by an earlier run.
func RenderFromLayoutData(ctx context.Context, layoutData []byte, opts Options) (map[string][]byte, error) {
	l, err := graph.UnmarshalLayout(layoutData)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse layout")
	}
	if l.VizType != "" {
		opts.VizType = l.VizType
	}
	return Render(ctx, l, opts)
}

func renderFormat(ctx context.Context, l graph.Layout, format string, opts Options) ([]byte, error) {
	if format == graph.FormatJSON {
		return graph.MarshalLayout(l)
	}
	if l.IsNodelink() {
		return renderNodelink(ctx, l, format, opts)
	}
	return renderForce(ctx, l, format, opts)
}

func renderForce(ctx context.Context, l graph.Layout, format string, opts Options) ([]byte, error) {
	svgOpts := sceneOptions(opts)
	switch format {
	case graph.FormatSVG:
		if opts.Static {
			svgOpts = append(svgOpts, scene.WithoutInteraction())
		}
		return scene.RenderSVG(l, svgOpts...), nil
	case graph.FormatHTML:
		if opts.Static {
			svgOpts = append(svgOpts, scene.WithoutInteraction())
		}
		return scene.RenderHTML(l, opts.Title, svgOpts...)
	case graph.FormatPNG:
		return raster.RenderPNG(l,
			raster.WithPalette(*opts.Palette),
			raster.WithMargin(opts.Layout.Margin),
			raster.WithScale(opts.Scale),
		)
	case graph.FormatPDF:
		doc := scene.RenderSVG(l, append(svgOpts, scene.WithoutInteraction(), scene.WithLegendTextColor("black"))...)
		return render.ToPDF(ctx, doc)
	case graph.FormatDOT:
		return []byte(nodelink.ToDOT(l, nodelink.Options{Detailed: opts.Detailed, Legend: true})), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported force format %q", format)
}

func renderNodelink(ctx context.Context, l graph.Layout, format string, opts Options) ([]byte, error) {
	dot := nodelink.ToDOT(l, nodelink.Options{Detailed: opts.Detailed, Legend: true})
	switch format {
	case graph.FormatDOT:
		return []byte(dot), nil
	case graph.FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case graph.FormatHTML:
		doc, err := nodelink.RenderSVG(ctx, dot)
		if err != nil {
			return nil, err
		}
		return scene.WrapHTML(doc, opts.Title, l.Width)
	case graph.FormatPNG:
		return nodelink.RenderPNG(ctx, dot, opts.Scale)
	case graph.FormatPDF:
		return nodelink.RenderPDF(ctx, dot)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported nodelink format %q", format)
}

func sceneOptions(opts Options) []scene.Option {
	return []scene.Option{
		scene.WithPalette(*opts.Palette),
		scene.WithMargin(opts.Layout.Margin),
		scene.WithLegendTextColor(opts.LegendTextColor),
	}
}
