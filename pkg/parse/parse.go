// Package parse defines the parser adapter contract: per-language extractors
// that turn source text into raw graph nodes and edges with unresolved
// placeholder targets. The resolve package later rewrites those placeholders
// into concrete edges.
//
// Adapters must be deterministic: parsing identical content twice yields
// identical node IDs and edge lists. A parse failure on one file never aborts
// a batch; the pipeline records the failure and the file contributes only its
// own file node.
package parse

import "github.com/matzehuels/codeatlas/pkg/model"

// Result holds the raw nodes and edges extracted from a single file.
// Node order is declaration order; it is preserved through aggregation and
// determines child order in the containment forest.
type Result struct {
	Nodes []model.Node
	Edges []model.Edge
}

// Adapter extracts code entities from source files of one language.
//
// Implementations must emit one node per declared class, interface, method,
// function, and import, and one edge per call, instantiation, inheritance
// clause, or interface implementation. References that cannot be bound
// locally get an unresolved target tagged with the observed call type.
type Adapter interface {
	// Language returns the adapter's identifier (e.g., "python", "java").
	Language() string

	// Extensions returns the file extensions this adapter handles,
	// including the leading dot.
	Extensions() []string

	// ParseFile extracts nodes and edges from one file. fileID is the ID of
	// the already-created file node and the scope for top-level declarations;
	// path is the file's path as recorded on source locations. The file node
	// itself is created by the caller, not the adapter.
	ParseFile(content []byte, fileID, path string) (Result, error)
}

// Find returns the adapter with the given language name, or nil.
func Find(name string, all []Adapter) Adapter {
	for _, a := range all {
		if a.Language() == name {
			return a
		}
	}
	return nil
}

// Names returns the language identifiers of all adapters, in order.
func Names(all []Adapter) []string {
	names := make([]string, len(all))
	for i, a := range all {
		names[i] = a.Language()
	}
	return names
}
