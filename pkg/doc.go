// Package pkg provides the core libraries for Code Atlas source analysis.
//
// # Overview
//
// Code Atlas parses a source tree, builds an entity graph (files, classes,
// functions, methods and the calls, containment, inheritance and
// instantiation edges between them) and lays the containment hierarchy out
// for visualization. The pkg directory is organized into these areas:
//
//  1. [model] - Graph data model (nodes, edges, reference targets)
//  2. [parse] - Per-language source extractors
//  3. [resolve] - Cross-file name resolution
//  4. [tree] - Containment forest built from parent links
//  5. [layout] - Geometry engines (circle packing, layered tree)
//  6. [graph] - Serialization types for documents and layouts
//  7. [render] - DOT/SVG/PNG output
//  8. [pipeline] - Orchestration (analyze, layout, render) with caching
//  9. [cache], [store], [stats], [config], [errors] - Supporting infrastructure
//
// # Architecture
//
// The typical data flow through Code Atlas:
//
//	Source tree
//	     |
//	[parse] package (extract raw nodes and unresolved references)
//	     |
//	[resolve] package (bind references to declarations by name)
//	     |
//	[tree] + [graph] packages (containment forest, document assembly)
//	     |
//	[layout] + [render] packages (geometry, DOT/SVG/PNG)
//
// # Quick Start
//
// Run the full pipeline programmatically:
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "./myproject",
//	    Formats: []string{"json", "svg"},
//	})
//
// Or stage by stage:
//
//	a, err := pipeline.Analyze(ctx, pipeline.Options{Path: "./myproject"})
//	circles := pack.Layout(a.Forest)
//
// # Determinism
//
// Every stage is deterministic: the same source tree produces byte-identical
// documents, layouts and artifacts. Determinism is what makes the per-stage
// content-hash caching in [pipeline] sound.
package pkg
