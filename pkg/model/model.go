// Package model defines the code graph value types: nodes for extracted code
// entities (files, classes, methods, functions, imports) and edges for the
// relations between them (containment, calls, instantiation, inheritance).
//
// Nodes are created once by a parser adapter and never deleted or mutated
// afterwards. Edges may have their target and kind rewritten exactly once,
// by the reference resolver (see the resolve package).
package model

import (
	"fmt"
	"maps"
	"path/filepath"
	"strings"
)

// NodeKind classifies an extracted code entity.
type NodeKind string

// Node kinds.
const (
	KindFile      NodeKind = "file"
	KindClass     NodeKind = "class"
	KindInterface NodeKind = "interface"
	KindMethod    NodeKind = "method"
	KindFunction  NodeKind = "function"
	KindImport    NodeKind = "import"
	KindVariable  NodeKind = "variable"
	KindModule    NodeKind = "module"
	KindPackage   NodeKind = "package"
)

// EdgeKind classifies a relation between two nodes.
type EdgeKind string

// Edge kinds. Contains mirrors the parent back-reference; the rest are
// reference edges produced from call, instantiation, and type clauses.
const (
	EdgeContains     EdgeKind = "contains"
	EdgeCalls        EdgeKind = "calls"
	EdgeInstantiates EdgeKind = "instantiates"
	EdgeInherits     EdgeKind = "inherits"
	EdgeImplements   EdgeKind = "implements"
)

// CallType tags an unresolved reference with the syntactic shape of the call
// site, so the resolver knows which symbol index to consult.
type CallType string

// Call types recorded by parser adapters.
const (
	CallFunction    CallType = "function"    // bare name: foo()
	CallMethod      CallType = "method"      // through a receiver: obj.foo()
	CallConstructor CallType = "constructor" // explicit construction: new Foo()
	CallStatic      CallType = "static"      // qualified by a type name: Foo.bar()
)

// Metadata stores arbitrary key-value pairs attached to nodes or edges.
// Maps are never nil on nodes and edges returned by parser adapters.
type Metadata map[string]any

// Clone returns a shallow copy of the metadata, or nil for nil input.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	maps.Copy(out, m)
	return out
}

// Node is an extracted code entity.
//
// The ID is deterministic: it is derived from the declaring file path, the
// declared name, and the declaration line, so re-parsing identical content
// yields identical IDs and same-named siblings never collide. IDs are never
// reused, deleted, or mutated after creation.
//
// Parent is a weak back-reference to the containing node's ID (file for
// classes, functions, and imports; class for methods). It is a lookup key,
// not ownership: the tree package materializes the containment forest from
// it in a second pass.
type Node struct {
	ID     string   `json:"id" bson:"id"`
	Name   string   `json:"name" bson:"name"`
	Kind   NodeKind `json:"kind" bson:"kind"`
	File   string   `json:"file" bson:"file"`
	Line   int      `json:"line" bson:"line"`
	Column int      `json:"column" bson:"column"`
	Parent string   `json:"parent,omitempty" bson:"parent,omitempty"`
	Meta   Metadata `json:"meta,omitempty" bson:"meta,omitempty"`
}

// Edge is a directed relation between two nodes. Source always denotes a real
// node; Target may be an unresolved placeholder until the resolver has run.
type Edge struct {
	Source string   `json:"source" bson:"source"`
	Target Target   `json:"target" bson:"target"`
	Kind   EdgeKind `json:"kind" bson:"kind"`
	Meta   Metadata `json:"meta,omitempty" bson:"meta,omitempty"`
}

// FileID returns the node ID for a file, which is its path relative to the
// analysis root with forward slashes.
func FileID(relPath string) string {
	return filepath.ToSlash(relPath)
}

// DeclID returns the deterministic node ID for a declaration: the scope ID
// (file or class), the declared name, and the declaration line.
func DeclID(scopeID, name string, line int) string {
	return fmt.Sprintf("%s::%s:%d", scopeID, name, line)
}

// QualifiedMethodName builds the "ClassName.methodName" key used by the
// resolver's method index.
func QualifiedMethodName(className, method string) string {
	return className + "." + method
}

// IsContainer reports whether nodes of this kind can contain other nodes in
// the containment forest. Used by layouts to pick padding and minimum sizes.
func (k NodeKind) IsContainer() bool {
	return k == KindFile || k == KindClass || k == KindInterface ||
		k == KindModule || k == KindPackage
}

// IsReference reports whether the edge kind is a reference relation, as
// opposed to structural containment.
func (k EdgeKind) IsReference() bool { return k != EdgeContains }

// String returns the kind as a plain string.
func (k NodeKind) String() string { return string(k) }

// String returns the kind as a plain string.
func (k EdgeKind) String() string { return string(k) }

// ShortName truncates a display name for rendering, appending an ellipsis
// when the name exceeds max runes.
func ShortName(name string, max int) string {
	if max <= 3 || len(name) <= max {
		return name
	}
	return strings.ToValidUTF8(name[:max-3], "") + "..."
}
