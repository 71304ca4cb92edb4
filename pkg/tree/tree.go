// Package tree materializes the containment forest from node parent
// back-references. The node set acts as an arena indexed by ID; the forest is
// built as a second pass over that arena producing a children index, so no
// node ever holds a dangling reference to another.
//
// Child order is node-discovery order, which makes every downstream layout
// reproducible across repeated runs on unchanged input.
package tree

import "github.com/matzehuels/codeatlas/pkg/model"

// Forest is the containment structure over a node arena. It is immutable
// after Build and safe for concurrent reads.
type Forest struct {
	nodes    []model.Node
	index    map[string]int      // node ID -> arena position
	children map[string][]string // parent ID -> child IDs, discovery order
	roots    []string            // root IDs, discovery order
}

// Build constructs the forest from nodes in discovery order.
//
// A node is a root if it has no parent ID or its parent ID does not resolve
// to a known node. The latter case is defensive promotion: an orphaned
// subtree surfaces at the top level instead of silently disappearing.
func Build(nodes []model.Node) *Forest {
	f := &Forest{
		nodes:    nodes,
		index:    make(map[string]int, len(nodes)),
		children: make(map[string][]string),
	}
	for i := range nodes {
		f.index[nodes[i].ID] = i
	}
	for i := range nodes {
		n := &nodes[i]
		if n.Parent == "" {
			f.roots = append(f.roots, n.ID)
			continue
		}
		if _, ok := f.index[n.Parent]; !ok {
			f.roots = append(f.roots, n.ID) // dangling parent: promote
			continue
		}
		f.children[n.Parent] = append(f.children[n.Parent], n.ID)
	}
	return f
}

// Roots returns root node IDs in discovery order.
// The returned slice is a read-only view.
func (f *Forest) Roots() []string { return f.roots }

// Children returns the ordered child IDs of a node, or nil for leaves and
// unknown IDs. The returned slice is a read-only view.
func (f *Forest) Children(id string) []string { return f.children[id] }

// Node returns the node with the given ID and true, or nil and false.
func (f *Forest) Node(id string) (*model.Node, bool) {
	i, ok := f.index[id]
	if !ok {
		return nil, false
	}
	return &f.nodes[i], true
}

// Len returns the number of nodes in the arena.
func (f *Forest) Len() int { return len(f.nodes) }

// Depth returns the containment depth of a node: 0 for roots, parent depth
// plus one otherwise. Diagnostic use only; it walks the parent chain each
// call. Unknown IDs report 0. The walk is bounded by the arena size, so a
// corrupted parent cycle terminates rather than spinning.
func (f *Forest) Depth(id string) int {
	depth := 0
	for steps := 0; steps < len(f.nodes); steps++ {
		i, ok := f.index[id]
		if !ok {
			break
		}
		parent := f.nodes[i].Parent
		if parent == "" {
			break
		}
		if _, ok := f.index[parent]; !ok {
			break // promoted root
		}
		depth++
		id = parent
	}
	return depth
}

// ContainmentEdges derives the contains edge list mirroring the forest's
// parent relationships, in discovery order of the child node.
func (f *Forest) ContainmentEdges() []model.Edge {
	var edges []model.Edge
	for i := range f.nodes {
		n := &f.nodes[i]
		if n.Parent == "" {
			continue
		}
		if _, ok := f.index[n.Parent]; !ok {
			continue // promoted root contributes no containment edge
		}
		edges = append(edges, model.Edge{
			Source: n.Parent,
			Target: model.Resolved(n.ID),
			Kind:   model.EdgeContains,
			Meta:   model.Metadata{},
		})
	}
	return edges
}

// Walk visits every node reachable from the roots in depth-first pre-order,
// children in discovery order. The visit callback receives the node and its
// containment depth.
func (f *Forest) Walk(visit func(n *model.Node, depth int)) {
	var rec func(id string, depth int)
	rec = func(id string, depth int) {
		n, ok := f.Node(id)
		if !ok {
			return
		}
		visit(n, depth)
		for _, child := range f.children[id] {
			rec(child, depth+1)
		}
	}
	for _, root := range f.roots {
		rec(root, 0)
	}
}
