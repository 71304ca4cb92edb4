package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codeatlas/pkg/cache"
	"github.com/matzehuels/codeatlas/pkg/config"
	"github.com/matzehuels/codeatlas/pkg/graph"
	"github.com/matzehuels/codeatlas/pkg/pipeline"
	"github.com/matzehuels/codeatlas/pkg/tree"
)

// layoutCommand creates the layout command for computing node placement.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute node placement for a code graph",
		Long: `Compute node placement for a code graph.

The layout command takes a graph.json file (produced by 'analyze') and
computes 2D placement for every node. Two engines are available:

  pack     nested circles, children packed inside their container (default)
  layered  nested boxes, one horizontal layer per containment depth

The output is a layout.json file consumed by viewers. Results are cached
locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&opts.Layout, "type", "t", "", "layout engine: pack (default), layered")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cache")

	return cmd
}

// runLayout loads the graph, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
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

	forest := tree.Build(doc.Nodes)
	docBytes, err := graph.MarshalDocument(doc)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", opts.Layout))
	spinner.Start()

	l, cacheHit, err := runner.GenerateLayoutWithCacheInfo(ctx, forest, cache.Hash(docBytes), opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}
	if err := graph.WriteLayoutFile(l, outputPath); err != nil {
		return err
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(doc.Nodes), len(doc.Edges), cacheHit)
	printNewline()
	printNextStep("Render", appName+" render "+input)

	return nil
}
