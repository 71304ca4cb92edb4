package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codeatlas/pkg/graph"
	"github.com/matzehuels/codeatlas/pkg/store"
)

// defaultMongoURI is used when neither the flag nor the environment set one.
const defaultMongoURI = "mongodb://localhost:27017"

// runsCommand creates the runs command for inspecting stored analyses.
func (c *CLI) runsCommand() *cobra.Command {
	var mongoURI string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect analysis runs stored in MongoDB",
		Long: `Inspect analysis runs stored in MongoDB.

Runs are written by 'analyze --store <uri>'. The list subcommand shows
the most recent runs for a repository root; show exports one stored
document back to a graph.json file.`,
	}

	cmd.PersistentFlags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB URI (default: $CODEATLAS_MONGO_URI or "+defaultMongoURI+")")

	cmd.AddCommand(c.runsListCommand(&mongoURI))
	cmd.AddCommand(c.runsShowCommand(&mongoURI))

	return cmd
}

// runsListCommand creates the "runs list" subcommand.
func (c *CLI) runsListCommand(mongoURI *string) *cobra.Command {
	var limit int64

	cmd := &cobra.Command{
		Use:   "list <root>",
		Short: "List stored runs for a repository root, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), *mongoURI, func(ctx context.Context, st *store.MongoStore) error {
				recs, err := st.List(ctx, args[0], limit)
				if err != nil {
					return err
				}
				if len(recs) == 0 {
					printInfo("No stored runs for %s", args[0])
					return nil
				}
				for _, rec := range recs {
					printDetail("%s  %s  %s  %d nodes",
						rec.CreatedAt.Format("2006-01-02 15:04:05"),
						rec.RunID, rec.Language, len(rec.Document.Nodes))
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&limit, "limit", 20, "maximum runs to list")
	return cmd
}

// runsShowCommand creates the "runs show" subcommand.
func (c *CLI) runsShowCommand(mongoURI *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Export one stored run as a graph.json document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), *mongoURI, func(ctx context.Context, st *store.MongoStore) error {
				rec, err := st.Load(ctx, args[0])
				if err != nil {
					return err
				}
				if output == "" {
					return graph.WriteDocument(rec.Document, os.Stdout)
				}
				if err := graph.WriteDocumentFile(rec.Document, output); err != nil {
					return err
				}
				printSuccess("Exported run %s", rec.RunID)
				printFile(output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

// withStore connects to MongoDB, runs fn, and always disconnects.
func withStore(ctx context.Context, uri string, fn func(context.Context, *store.MongoStore) error) error {
	if uri == "" {
		uri = os.Getenv("CODEATLAS_MONGO_URI")
	}
	if uri == "" {
		uri = defaultMongoURI
	}
	st, err := store.NewMongoStore(ctx, uri)
	if err != nil {
		return fmt.Errorf("connect %s: %w", uri, err)
	}
	defer st.Close(ctx)
	return fn(ctx, st)
}
