package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/codeatlas/pkg/cache"
	"github.com/matzehuels/codeatlas/pkg/config"
	"github.com/matzehuels/codeatlas/pkg/graph"
	"github.com/matzehuels/codeatlas/pkg/pipeline"
	"github.com/matzehuels/codeatlas/pkg/stats"
	"github.com/matzehuels/codeatlas/pkg/tree"
)

const defaultAddr = ":8080"

// serveCommand creates the serve command exposing a graph over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve [graph.json]",
		Short: "Serve a code graph over HTTP",
		Long: `Serve a code graph over HTTP.

The serve command loads a graph.json file (produced by 'analyze') and
exposes it through a small JSON API:

  GET /healthz            liveness probe
  GET /api/graph          the full graph document
  GET /api/stats          summary statistics
  GET /api/layout?kind=   computed layout (pack or layered)

Layouts are computed on first request and cached.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable layout caching")

	return cmd
}

// runServe loads the graph and blocks serving it until the context ends.
func (c *CLI) runServe(ctx context.Context, input, addr string, noCache bool) error {
	doc, err := graph.ReadDocumentFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}
	docBytes, err := graph.MarshalDocument(doc)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, config.CacheConfig{}, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           c.newServeMux(doc, docBytes, runner),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	printInfo("Serving %s on http://localhost%s", input, addr)
	c.Logger.Info("server starting", "addr", addr, "nodes", len(doc.Nodes), "edges", len(doc.Edges))

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newServeMux builds the HTTP API for one loaded document.
func (c *CLI) newServeMux(doc graph.Document, docBytes []byte, runner *pipeline.Runner) http.Handler {
	forest := tree.Build(doc.Nodes)
	docHash := cache.Hash(docBytes)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(c.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/api/graph", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(docBytes)
	})

	r.Get("/api/stats", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(stats.Compute(doc, 0)); err != nil {
			c.Logger.Error("write stats", "err", err)
		}
	})

	r.Get("/api/layout", func(w http.ResponseWriter, req *http.Request) {
		kind := req.URL.Query().Get("kind")
		opts := pipeline.Options{Layout: kind}
		opts.SetLayoutDefaults()
		if !pipeline.ValidLayouts[opts.Layout] {
			http.Error(w, fmt.Sprintf("unknown layout kind: %q", kind), http.StatusBadRequest)
			return
		}

		l, _, err := runner.GenerateLayoutWithCacheInfo(req.Context(), forest, docHash, opts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data, err := graph.MarshalLayout(l)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	})

	return r
}

// requestLogger logs one line per request at debug level.
func (c *CLI) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)
		c.Logger.Debug("request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Microsecond))
	})
}
