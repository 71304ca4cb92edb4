package pipeline

import (
	"context"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/matzehuels/codeatlas/pkg/cache"
	"github.com/matzehuels/codeatlas/pkg/errors"
	"github.com/matzehuels/codeatlas/pkg/graph"
	"github.com/matzehuels/codeatlas/pkg/model"
	"github.com/matzehuels/codeatlas/pkg/parse"
	"github.com/matzehuels/codeatlas/pkg/parse/languages"
	"github.com/matzehuels/codeatlas/pkg/resolve"
	"github.com/matzehuels/codeatlas/pkg/tree"
)

// Analysis is the output of the analyze stage: the aggregated and resolved
// node/edge set with its containment forest and serialized document.
type Analysis struct {
	Language   string
	SourceHash string // content hash over all parsed files
	Nodes      []model.Node
	Forest     *tree.Forest
	Document   graph.Document
	Resolution resolve.Result
	Failures   []FileError
}

// Analyze runs the analyze stage against the directory tree at opts.Path.
//
// Files are parsed concurrently by a bounded worker pool, but aggregation is
// by sorted file position, so the combined node/edge set is identical across
// runs regardless of scheduling. Per-file parse failures are isolated: the
// file keeps its file node and is reported in Failures.
//
// A tree with zero matching source files is a valid terminal state and
// produces an empty document.
func Analyze(ctx context.Context, opts Options) (*Analysis, error) {
	if err := opts.ValidateForAnalyze(); err != nil {
		return nil, err
	}

	fsys, adapter, files, err := scanSources(opts)
	if err != nil {
		return nil, err
	}
	if adapter == nil {
		opts.Logger.Warn("no supported source files found", "path", opts.Path)
		return emptyAnalysis(), nil
	}
	opts.Logger.Info("scanning sources", "language", adapter.Language(), "files", len(files))

	results := parseAll(ctx, fsys, adapter, files, opts.Workers)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a := &Analysis{Language: adapter.Language()}

	// Aggregate in file order. This is the single write of the shared
	// node/edge set; everything downstream only reads it.
	var rawEdges []model.Edge
	hashes := make([]string, len(results))
	for i, fr := range results {
		a.Nodes = append(a.Nodes, fr.fileNode)
		a.Nodes = append(a.Nodes, fr.result.Nodes...)
		rawEdges = append(rawEdges, fr.result.Edges...)
		if fr.err != nil {
			a.Failures = append(a.Failures, FileError{Path: files[i], Err: fr.err})
			opts.Logger.Warn("parse failed", "file", files[i], "err", fr.err)
		}
		hashes[i] = fr.contentHash
	}
	a.SourceHash = sourceHash(files, hashes)

	// Resolution requires the complete symbol indices, hence it runs only
	// after every file has been aggregated.
	a.Resolution = resolve.Resolve(a.Nodes, rawEdges)
	a.Forest = tree.Build(a.Nodes)
	a.Document = graph.Build(a.Language, a.Forest, a.Nodes, a.Resolution.Edges)

	opts.Logger.Debug("resolution complete",
		"resolved", a.Resolution.Resolved,
		"reclassified", a.Resolution.Reclassified,
		"dropped", a.Resolution.Dropped)

	return a, nil
}

// fileResult is one file's parse output, slotted by file index so aggregation
// order never depends on worker scheduling.
type fileResult struct {
	fileNode    model.Node
	result      parse.Result
	contentHash string
	err         error
}

// parseAll parses every file with at most workers goroutines.
func parseAll(ctx context.Context, fsys fs.FS, adapter parse.Adapter, files []string, workers int) []fileResult {
	results := make([]fileResult, len(files))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = parseOne(fsys, adapter, files[i])
			}
		}()
	}

	for i := range files {
		if ctx.Err() != nil {
			break
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// parseOne reads and parses a single file. Every failure mode still yields
// the file node, so a broken file appears in the graph as an empty file.
func parseOne(fsys fs.FS, adapter parse.Adapter, path string) fileResult {
	fileID := model.FileID(path)
	fr := fileResult{
		fileNode: model.Node{
			ID:   fileID,
			Name: baseName(path),
			Kind: model.KindFile,
			File: path,
			Meta: model.Metadata{},
		},
	}

	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		fr.err = errors.Wrap(errors.ErrCodeParseFailed, err, "read %s", path)
		return fr
	}
	fr.contentHash = cache.Hash(content)

	res, err := adapter.ParseFile(content, fileID, path)
	if err != nil {
		fr.err = errors.Wrap(errors.ErrCodeParseFailed, err, "parse %s", path)
		return fr
	}
	fr.result = res
	return fr
}

// scanSources stats the analysis root, picks the language adapter, and
// enumerates the matching source files in sorted order. The adapter is nil
// when no registered language matches anything under the path.
func scanSources(opts Options) (fs.FS, parse.Adapter, []string, error) {
	info, err := os.Stat(opts.Path)
	if err != nil || !info.IsDir() {
		return nil, nil, nil, errors.New(errors.ErrCodeInvalidPath, "not a directory: %s", opts.Path)
	}
	fsys := os.DirFS(opts.Path)

	adapter, err := pickAdapter(fsys, opts)
	if err != nil || adapter == nil {
		return fsys, nil, nil, err
	}

	files, err := parse.Files(fsys, adapter.Extensions(), opts.Exclude)
	if err != nil {
		return nil, nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "scan %s", opts.Path)
	}
	return fsys, adapter, files, nil
}

// sourceHash combines per-file content hashes into one hash over the whole
// input set. Paths are part of the input, so renames invalidate it.
func sourceHash(files, hashes []string) string {
	var b strings.Builder
	for i, f := range files {
		b.WriteString(f)
		b.WriteByte(':')
		b.WriteString(hashes[i])
		b.WriteByte('\n')
	}
	return cache.Hash([]byte(b.String()))
}

// pickAdapter returns the forced adapter, or the detected one, or nil when
// nothing under the path matches a registered language.
func pickAdapter(fsys fs.FS, opts Options) (parse.Adapter, error) {
	if opts.Language != "" {
		adapter := languages.Find(opts.Language)
		if adapter == nil {
			return nil, errors.New(errors.ErrCodeInvalidLanguage,
				"unknown language: %q (available: %s)",
				opts.Language, strings.Join(parse.Names(languages.All), ", "))
		}
		return adapter, nil
	}

	adapter, counts, err := parse.Detect(fsys, languages.All, opts.Exclude)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "detect language")
	}
	if adapter != nil {
		opts.Logger.Debug("detected language", "language", adapter.Language(), "files", counts[adapter.Language()])
	}
	return adapter, nil
}

func emptyAnalysis() *Analysis {
	forest := tree.Build(nil)
	return &Analysis{
		Forest:   forest,
		Document: graph.Build("", forest, nil, nil),
	}
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
