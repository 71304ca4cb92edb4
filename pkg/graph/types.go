package graph

import (
	"github.com/matzehuels/codeatlas/pkg/layout"
	"github.com/matzehuels/codeatlas/pkg/model"
	"github.com/matzehuels/codeatlas/pkg/tree"
)

// Layout kinds.
const (
	LayoutPack    = "pack"
	LayoutLayered = "layered"
)

// Document is the canonical serialization of a resolved code graph: a flat
// node list, a flat edge list, and the containment hierarchy as a nested
// tree. It is used for file export, the HTTP viewer, caching, and the mongo
// store.
//
// Contract: every node appears exactly once in Nodes and exactly once in the
// tree (under one parent, or in the Roots list); an edge appears in Edges iff
// both endpoints survived resolution.
type Document struct {
	Language string       `json:"language,omitempty" bson:"language,omitempty"`
	Root     string       `json:"root,omitempty" bson:"root,omitempty"`
	RunID    string       `json:"run_id,omitempty" bson:"run_id,omitempty"`
	Nodes    []model.Node `json:"nodes" bson:"nodes"`
	Edges    []Edge       `json:"edges" bson:"edges"`
	Roots    []TreeNode   `json:"tree" bson:"tree"`
}

// Edge is the flat serialized form of a resolved edge. Targets are plain
// node IDs here; unresolved placeholders never reach a Document.
type Edge struct {
	Source string         `json:"source" bson:"source"`
	Target string         `json:"target" bson:"target"`
	Kind   model.EdgeKind `json:"kind" bson:"kind"`
	Meta   model.Metadata `json:"meta,omitempty" bson:"meta,omitempty"`
}

// TreeNode is one node of the nested containment hierarchy. Children are in
// discovery order.
type TreeNode struct {
	ID       string     `json:"id" bson:"id"`
	Name     string     `json:"name" bson:"name"`
	Kind     string     `json:"kind" bson:"kind"`
	Children []TreeNode `json:"children,omitempty" bson:"children,omitempty"`
}

// Layout is the serialized output of a layout engine. Exactly one of Circles
// or Boxes is populated, matching Kind. Bounds carries the derived container
// boxes of the layered layout.
type Layout struct {
	Kind    string                   `json:"kind" bson:"kind"`
	Circles map[string]layout.Circle `json:"circles,omitempty" bson:"circles,omitempty"`
	Boxes   map[string]layout.Box    `json:"boxes,omitempty" bson:"boxes,omitempty"`
	Bounds  map[string]layout.Box    `json:"bounds,omitempty" bson:"bounds,omitempty"`
}

// Build assembles a Document from the resolved node/edge set and the
// containment forest. Node order and tree child order are discovery order;
// edge order is resolution output order, with containment edges first.
// Resolution must already have run: edges with non-resolved targets are
// skipped defensively.
func Build(language string, f *tree.Forest, nodes []model.Node, edges []model.Edge) Document {
	doc := Document{
		Language: language,
		Nodes:    nodes,
		Edges:    make([]Edge, 0, len(edges)),
	}

	for _, e := range f.ContainmentEdges() {
		doc.Edges = append(doc.Edges, Edge{Source: e.Source, Target: e.Target.ID(), Kind: e.Kind})
	}
	for _, e := range edges {
		if !e.Target.IsResolved() {
			continue
		}
		doc.Edges = append(doc.Edges, Edge{
			Source: e.Source,
			Target: e.Target.ID(),
			Kind:   e.Kind,
			Meta:   cleanMeta(e.Meta),
		})
	}

	for _, root := range f.Roots() {
		doc.Roots = append(doc.Roots, buildTree(f, root))
	}
	return doc
}

func buildTree(f *tree.Forest, id string) TreeNode {
	n, _ := f.Node(id)
	tn := TreeNode{ID: id, Name: n.Name, Kind: n.Kind.String()}
	for _, child := range f.Children(id) {
		tn.Children = append(tn.Children, buildTree(f, child))
	}
	return tn
}

// cleanMeta drops empty metadata maps so they serialize as absent.
func cleanMeta(m model.Metadata) model.Metadata {
	if len(m) == 0 {
		return nil
	}
	return m
}
