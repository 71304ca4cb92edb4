package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/codeatlas/pkg/config"
	"github.com/matzehuels/codeatlas/pkg/graph"
	"github.com/matzehuels/codeatlas/pkg/pipeline"
	"github.com/matzehuels/codeatlas/pkg/stats"
	"github.com/matzehuels/codeatlas/pkg/store"
)

// analyzeCommand creates the analyze command for extracting code graphs.
func (c *CLI) analyzeCommand() *cobra.Command {
	var (
		output   string
		noCache  bool
		mongoURI string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Extract a code graph from a source tree",
		Long: `Extract a code graph from a source tree.

The analyze command scans the directory for source files, detects the
dominant language (or uses --language), parses every file into entities
and raw references, and resolves cross-file references by name. The
output is a graph.json document consumed by the layout, render, serve,
and browse commands.

Per-repository defaults can be set in a .codeatlas.toml file at the root.
Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return c.runAnalyze(cmd.Context(), path, opts, output, noCache, mongoURI)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <dir>.graph.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&opts.Language, "language", "l", "", "force language instead of auto-detection")
	cmd.Flags().StringSliceVar(&opts.Exclude, "exclude", nil, "extra directory names to skip")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "parse workers (default: number of CPUs)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cache")
	cmd.Flags().StringVar(&mongoURI, "store", "", "MongoDB URI to persist the run (optional)")

	return cmd
}

// runAnalyze extracts, resolves, and writes the graph document.
func (c *CLI) runAnalyze(ctx context.Context, path string, opts pipeline.Options, output string, noCache bool, mongoURI string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if opts.Language == "" {
		opts.Language = cfg.Language
	}
	opts.Exclude = append(opts.Exclude, cfg.Exclude...)
	if output == "" {
		output = cfg.Output
	}
	opts.Path = path
	opts.Logger = c.Logger

	runner, err := c.newRunner(ctx, cfg.Cache, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Analyzing sources...")
	spinner.Start()

	analysis, cacheHit, err := runner.AnalyzeWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Analysis failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done(fmt.Sprintf("Analyzed %d entities", len(analysis.Nodes)))

	for _, f := range analysis.Failures {
		printWarning("Skipped %s: %v", f.Path, f.Err)
	}

	doc := analysis.Document
	doc.RunID = uuid.NewString()
	if abs, err := filepath.Abs(path); err == nil {
		doc.Root = abs
	}

	outputPath := output
	if outputPath == "" {
		base := filepath.Base(doc.Root)
		if base == "" || base == "." || base == string(filepath.Separator) {
			base = "graph"
		}
		outputPath = base + ".graph.json"
	}
	if err := graph.WriteDocumentFile(doc, outputPath); err != nil {
		return err
	}

	st := stats.Compute(doc, analysis.Resolution.Dropped)

	printSuccess("Analysis complete")
	printFile(outputPath)
	printStats(st.TotalNodes, st.TotalEdges, cacheHit)
	printDetail("language %s · resolved %d · reclassified %d · dropped %d",
		doc.Language, analysis.Resolution.Resolved, analysis.Resolution.Reclassified, analysis.Resolution.Dropped)

	if mongoURI != "" {
		if err := saveRun(ctx, mongoURI, doc); err != nil {
			printWarning("Store failed: %v", err)
		} else {
			printDetail("stored run %s", doc.RunID)
		}
	}

	printNewline()
	printNextStep("Layout", appName+" layout "+outputPath)
	return nil
}

// saveRun persists one analysis run to MongoDB.
func saveRun(ctx context.Context, uri string, doc graph.Document) error {
	st, err := store.NewMongoStore(ctx, uri)
	if err != nil {
		return err
	}
	defer st.Close(ctx)
	return st.Save(ctx, store.Record{
		RunID:    doc.RunID,
		Root:     doc.Root,
		Language: doc.Language,
		Document: doc,
	})
}
