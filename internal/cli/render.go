package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codeatlas/pkg/cache"
	"github.com/matzehuels/codeatlas/pkg/config"
	"github.com/matzehuels/codeatlas/pkg/errors"
	"github.com/matzehuels/codeatlas/pkg/graph"
	"github.com/matzehuels/codeatlas/pkg/pipeline"
	"github.com/matzehuels/codeatlas/pkg/tree"
)

// renderCommand creates the render command for generating artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Render a code graph to DOT, SVG, or PNG",
		Long: `Render a code graph to DOT, SVG, or PNG.

The render command takes a graph.json file (produced by 'analyze') and
generates node-link artifacts using Graphviz. The json format writes the
document itself, which is useful for piping into other tools.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr, pipeline.FormatSVG)
			for _, f := range opts.Formats {
				if !pipeline.ValidFormats[f] {
					return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, dot, svg, png)", f)
				}
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, png, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include source locations in node labels")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cache")

	return cmd
}

// runRender loads the graph and renders the requested artifacts.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	doc, err := graph.ReadDocumentFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, config.CacheConfig{}, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts.SetLayoutDefaults()
	opts.Logger = c.Logger

	docBytes, err := graph.MarshalDocument(doc)
	if err != nil {
		return err
	}

	// Artifacts are keyed by the layout hash, so the layout stage runs (or
	// hits its own cache) before rendering.
	forest := tree.Build(doc.Nodes)
	l, _, err := runner.GenerateLayoutWithCacheInfo(ctx, forest, cache.Hash(docBytes), opts)
	if err != nil {
		return err
	}
	layoutBytes, err := graph.MarshalLayout(l)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, doc, docBytes, cache.Hash(layoutBytes), opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return writeArtifacts(artifacts, opts.Formats, input, output, len(doc.Nodes), len(doc.Edges), cacheHit)
}

// writeArtifacts writes one file per requested format. With a single format
// and an explicit -o path the artifact goes exactly there; otherwise file
// names derive from the base path plus the format extension.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string, nodes, edges int, cacheHit bool) error {
	base := basePath(output, input)

	printSuccess("Render complete")
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := base + "." + format
		if len(formats) == 1 && output != "" {
			path = output
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(nodes, edges, cacheHit)
	return nil
}
