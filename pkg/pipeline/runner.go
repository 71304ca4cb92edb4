package pipeline

import (
	"context"
	"encoding/json"
	"io/fs"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/codeatlas/pkg/cache"
	"github.com/matzehuels/codeatlas/pkg/errors"
	"github.com/matzehuels/codeatlas/pkg/graph"
	"github.com/matzehuels/codeatlas/pkg/layout/layered"
	"github.com/matzehuels/codeatlas/pkg/layout/pack"
	"github.com/matzehuels/codeatlas/pkg/observability"
	"github.com/matzehuels/codeatlas/pkg/render"
	"github.com/matzehuels/codeatlas/pkg/resolve"
	"github.com/matzehuels/codeatlas/pkg/stats"
	"github.com/matzehuels/codeatlas/pkg/tree"
)

// Runner executes the pipeline with caching between stages. Each stage is
// keyed by a content hash of its input, so a cache hit is always consistent
// with what the stage would have computed.
type Runner struct {
	cache cache.Cache
	keyer cache.Keyer
	log   *log.Logger
}

// NewRunner creates a pipeline runner. A nil cache disables caching, a nil
// keyer selects the default SHA-256 keyer, and a nil logger uses the global
// default.
func NewRunner(c cache.Cache, k cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if k == nil {
		k = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{cache: c, keyer: k, log: logger}
}

// Close releases the runner's cache backend.
func (r *Runner) Close() error {
	return r.cache.Close()
}

// Execute runs the complete pipeline: analyze, layout, render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	opts.Logger = r.log

	res := &Result{RunID: uuid.NewString()}
	r.log.Debug("pipeline start", "run_id", res.RunID, "path", opts.Path)

	start := time.Now()
	a, analyzeHit, err := r.AnalyzeWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	res.Timing.Analyze = time.Since(start)
	res.CacheInfo.AnalyzeHit = analyzeHit
	res.Document = a.Document
	res.Resolution = a.Resolution
	res.Failures = a.Failures

	docBytes, err := graph.MarshalDocument(a.Document)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal document")
	}
	res.DocumentHash = cache.Hash(docBytes)

	start = time.Now()
	l, layoutHit, err := r.GenerateLayoutWithCacheInfo(ctx, a.Forest, res.DocumentHash, opts)
	if err != nil {
		return nil, err
	}
	res.Timing.Layout = time.Since(start)
	res.CacheInfo.LayoutHit = layoutHit
	res.Layout = l

	layoutBytes, err := graph.MarshalLayout(l)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal layout")
	}

	start = time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, a.Document, docBytes, cache.Hash(layoutBytes), opts)
	if err != nil {
		return nil, err
	}
	res.Timing.Render = time.Since(start)
	res.CacheInfo.RenderHit = renderHit
	res.Artifacts = artifacts

	res.Stats = stats.Compute(a.Document, a.Resolution.Dropped)

	r.log.Debug("pipeline done",
		"run_id", res.RunID,
		"nodes", len(res.Document.Nodes),
		"edges", len(res.Document.Edges),
		"analyze", res.Timing.Analyze,
		"layout", res.Timing.Layout,
		"render", res.Timing.Render)
	return res, nil
}

// analysisEnvelope is the cached form of an analysis. Per-file failures are
// not cached: a hit means the sources are byte-identical to a prior run, so
// re-reporting its failures would only repeat old log lines.
type analysisEnvelope struct {
	Language   string         `json:"language"`
	SourceHash string         `json:"source_hash"`
	Document   graph.Document `json:"document"`
	Resolution resolve.Result `json:"resolution"`
}

// AnalyzeWithCacheInfo runs the analyze stage, consulting the cache keyed by
// a content hash over all matching source files. The bool reports a hit.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, opts Options) (*Analysis, bool, error) {
	if err := opts.ValidateForAnalyze(); err != nil {
		return nil, false, err
	}

	observability.Pipeline().OnAnalyzeStart(ctx, opts.Path, opts.Language)
	start := time.Now()
	a, hit, err := r.analyzeWithCache(ctx, opts)
	nodeCount := 0
	if a != nil {
		nodeCount = len(a.Nodes)
	}
	observability.Pipeline().OnAnalyzeComplete(ctx, opts.Path, opts.Language, nodeCount, time.Since(start), err)
	return a, hit, err
}

func (r *Runner) analyzeWithCache(ctx context.Context, opts Options) (*Analysis, bool, error) {
	if opts.Refresh {
		a, err := Analyze(ctx, opts)
		return a, false, err
	}

	fsys, adapter, files, err := scanSources(opts)
	if err != nil {
		return nil, false, err
	}
	if adapter == nil {
		a, err := Analyze(ctx, opts)
		return a, false, err
	}

	hashes := make([]string, len(files))
	for i, f := range files {
		content, err := fs.ReadFile(fsys, f)
		if err == nil {
			hashes[i] = cache.Hash(content)
		}
	}
	key := r.keyer.GraphKey(sourceHash(files, hashes), cache.GraphKeyOpts{Language: adapter.Language()})

	if data, hit, err := r.cache.Get(ctx, key); err == nil && hit {
		var env analysisEnvelope
		if err := json.Unmarshal(data, &env); err == nil {
			r.log.Debug("analysis cache hit", "key", key)
			observability.Cache().OnCacheHit(ctx, "graph")
			return &Analysis{
				Language:   env.Language,
				SourceHash: env.SourceHash,
				Nodes:      env.Document.Nodes,
				Forest:     tree.Build(env.Document.Nodes),
				Document:   env.Document,
				Resolution: env.Resolution,
			}, true, nil
		}
		_ = r.cache.Delete(ctx, key)
	}
	observability.Cache().OnCacheMiss(ctx, "graph")

	a, err := Analyze(ctx, opts)
	if err != nil {
		return nil, false, err
	}

	env := analysisEnvelope{
		Language:   a.Language,
		SourceHash: a.SourceHash,
		Document:   a.Document,
		Resolution: a.Resolution,
	}
	if data, err := json.Marshal(env); err == nil {
		if err := r.cache.Set(ctx, key, data, cache.TTLGraph); err != nil {
			r.log.Warn("analysis cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "graph", len(data))
		}
	}
	return a, false, nil
}

// GenerateLayoutWithCacheInfo computes node placement for the containment
// forest, consulting the cache keyed by the document content hash.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, f *tree.Forest, docHash string, opts Options) (graph.Layout, bool, error) {
	opts.SetLayoutDefaults()
	if !ValidLayouts[opts.Layout] {
		return graph.Layout{}, false, errors.New(errors.ErrCodeInvalidLayout, "invalid layout: %q (must be pack or layered)", opts.Layout)
	}

	key := r.keyer.LayoutKey(docHash, opts.LayoutKeyOpts())
	if !opts.Refresh {
		if data, hit, err := r.cache.Get(ctx, key); err == nil && hit {
			if l, err := graph.UnmarshalLayout(data); err == nil {
				r.log.Debug("layout cache hit", "key", key)
				observability.Cache().OnCacheHit(ctx, "layout")
				return l, true, nil
			}
			_ = r.cache.Delete(ctx, key)
		}
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	observability.Pipeline().OnLayoutStart(ctx, opts.Layout, f.Len())
	start := time.Now()
	l := computeLayout(opts.Layout, f)
	observability.Pipeline().OnLayoutComplete(ctx, opts.Layout, time.Since(start), nil)

	if data, err := graph.MarshalLayout(l); err == nil {
		if err := r.cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
			r.log.Warn("layout cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return l, false, nil
}

func computeLayout(kind string, f *tree.Forest) graph.Layout {
	switch kind {
	case graph.LayoutLayered:
		boxes := layered.Layout(f)
		return graph.Layout{
			Kind:   kind,
			Boxes:  boxes,
			Bounds: layered.Bounds(f, boxes),
		}
	default:
		return graph.Layout{
			Kind:    graph.LayoutPack,
			Circles: pack.Layout(f),
		}
	}
}

// RenderWithCacheInfo produces the requested artifacts. JSON artifacts are
// the serialized document itself; DOT, SVG, and PNG are cached per format
// keyed by the layout hash. The bool reports whether every cacheable format
// was served from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, doc graph.Document, docBytes []byte, layoutHash string, opts Options) (map[string][]byte, bool, error) {
	opts.SetRenderDefaults()

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	artifacts, allHit, err := r.renderWithCache(ctx, doc, docBytes, layoutHash, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, allHit, err
}

func (r *Runner) renderWithCache(ctx context.Context, doc graph.Document, docBytes []byte, layoutHash string, opts Options) (map[string][]byte, bool, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	allHit := true
	var dot string

	for _, format := range opts.Formats {
		if format == FormatJSON {
			artifacts[FormatJSON] = docBytes
			continue
		}
		if !ValidFormats[format] {
			return nil, false, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, dot, svg, png)", format)
		}

		key := r.keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.cache.Get(ctx, key); err == nil && hit {
				r.log.Debug("artifact cache hit", "format", format, "key", key)
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
		}
		allHit = false
		observability.Cache().OnCacheMiss(ctx, "artifact")

		if dot == "" {
			dot = render.ToDOT(doc, render.Options{Detailed: opts.Detailed})
		}

		var data []byte
		var err error
		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = render.RenderSVG(dot)
		case FormatPNG:
			data, err = render.RenderPNG(dot)
		}
		if err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
		if err := r.cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.log.Warn("artifact cache write failed", "format", format, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return artifacts, allHit, nil
}
