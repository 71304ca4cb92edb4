// Package pipeline provides the core analysis pipeline for codeatlas.
//
// This package implements the complete parse → resolve → layout → render
// pipeline shared by the CLI and the HTTP viewer. Centralizing it keeps
// behavior identical across entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Analyze: extract raw nodes/edges from every source file, aggregate,
//     and resolve cross-file references into a graph document
//  2. Layout: compute 2D placement (circle packing or layered tree)
//  3. Render: generate output artifacts (DOT, SVG, PNG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Determinism
//
// File parsing fans out over a worker pool, but results are aggregated in
// sorted file order into one combined node/edge set before resolution runs.
// Resolution needs the complete symbol indices: running it against a partial
// set would make output depend on scan-completion order. Everything after
// aggregation is a pure function of that set, so two runs over byte-identical
// input produce byte-identical documents and layouts.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Path: "./myrepo", Layout: graph.LayoutPack}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc := result.Document
package pipeline

import (
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/codeatlas/pkg/cache"
	"github.com/matzehuels/codeatlas/pkg/errors"
	"github.com/matzehuels/codeatlas/pkg/graph"
	"github.com/matzehuels/codeatlas/pkg/resolve"
	"github.com/matzehuels/codeatlas/pkg/stats"
)

// Format constants for render artifacts.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// ValidLayouts is the set of supported layout kinds.
var ValidLayouts = map[string]bool{
	graph.LayoutPack:    true,
	graph.LayoutLayered: true,
}

// DefaultLayout is the layout engine used when none is requested.
const DefaultLayout = graph.LayoutPack

// Options contains all configuration for the analysis pipeline.
// The struct supports JSON serialization for the HTTP viewer.
type Options struct {
	// Analyze options
	Path     string   `json:"path"`
	Language string   `json:"language,omitempty"` // force adapter; empty = detect
	Exclude  []string `json:"exclude,omitempty"`  // extra directory names to skip
	Workers  int      `json:"workers,omitempty"`  // parse workers; 0 = GOMAXPROCS
	Refresh  bool     `json:"refresh,omitempty"`  // bypass cache

	// Layout options
	Layout string `json:"layout,omitempty"` // "pack" or "layered"

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // include source locations in labels

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this pipeline execution.
	RunID string

	// Document is the resolved graph with containment tree.
	Document graph.Document

	// DocumentHash is the content hash of the serialized document.
	DocumentHash string

	// Layout is the computed placement.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats summarizes the graph and resolution coverage.
	Stats stats.Stats

	// Resolution reports the resolver's counters for this run.
	Resolution resolve.Result

	// Failures lists files that could not be parsed. Parse failures are
	// isolated: each failed file contributes only its file node.
	Failures []FileError

	// Timing holds per-stage durations.
	Timing Timing

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// FileError records one isolated per-file parse failure.
type FileError struct {
	Path string
	Err  error
}

// Timing contains pipeline execution durations.
type Timing struct {
	Analyze time.Duration
	Layout  time.Duration
	Render  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	AnalyzeHit bool
	LayoutHit  bool
	RenderHit  bool
}

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. Idempotent: repeated calls have no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForAnalyze(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if !ValidLayouts[o.Layout] {
		return errors.New(errors.ErrCodeInvalidLayout, "invalid layout: %q (must be pack or layered)", o.Layout)
	}
	for _, f := range o.Formats {
		if !ValidFormats[f] {
			return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, dot, svg, png)", f)
		}
	}
	o.validated = true
	return nil
}

// ValidateForAnalyze checks required fields for the analyze stage.
func (o *Options) ValidateForAnalyze() error {
	if o.Path == "" {
		return errors.New(errors.ErrCodeInvalidPath, "path is required")
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Layout == "" {
		o.Layout = DefaultLayout
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Kind: o.Layout}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Detailed: o.Detailed}
}
