// Package layered implements the strict layered tree layout.
//
// Like the circle-packing engine it runs two deterministic traversals: a
// post-order pass computes each subtree's box size bottom-up, then a
// pre-order pass centers children under their parent. Every node at
// containment depth d is placed at exactly y = 150·d, so a parent never
// shares a layer with its children.
package layered

import (
	"math"

	"github.com/matzehuels/codeatlas/pkg/layout"
	"github.com/matzehuels/codeatlas/pkg/model"
	"github.com/matzehuels/codeatlas/pkg/tree"
)

// Leaf box size and spacing constants.
const (
	leafWidth   = 150.0
	leafHeight  = 100.0
	siblingGap  = 50.0  // horizontal gap between sibling subtrees
	rootGap     = 100.0 // horizontal gap between root subtrees
	layerHeight = 150.0 // vertical distance between containment layers
)

// Kind-specific sizing applied on top of the children's combined extent.
const (
	fileWidthPad   = 100.0
	fileMinWidth   = 300.0
	fileHeightPad  = 200.0
	classWidthPad  = 80.0
	classMinWidth  = 250.0
	classHeightPad = 150.0
	otherMinWidth  = 150.0
	otherHeightPad = 100.0
)

// Container bounding-box padding, per direct containment layer.
const (
	fileBoundsPad  = 80.0
	classBoundsPad = 60.0
)

// size is the computed subtree extent for one node.
type size struct {
	width  float64 // full subtree width including the node's own padding
	height float64 // node box height (not the subtree's summed height)
}

// Layout computes a box per node. The result maps node ID to its placed box;
// an empty forest yields an empty map.
func Layout(f *tree.Forest) map[string]layout.Box {
	sizes := make(map[string]size, f.Len())
	for _, root := range f.Roots() {
		measure(f, root, sizes)
	}

	boxes := make(map[string]layout.Box, f.Len())

	// Roots line up left to right at the top layer, advancing by each
	// root's subtree width plus a fixed gap.
	x := 0.0
	for i, root := range f.Roots() {
		s := sizes[root]
		if i > 0 {
			x += rootGap
		}
		place(f, root, x+s.width/2, 0, sizes, boxes)
		x += s.width
	}
	return boxes
}

// measure is the post-order size pass.
func measure(f *tree.Forest, id string, sizes map[string]size) size {
	n, ok := f.Node(id)
	if !ok {
		return size{}
	}
	children := f.Children(id)

	if len(children) == 0 {
		s := size{width: leafWidth, height: leafHeight}
		sizes[id] = s
		return s
	}

	var base float64
	var maxChildHeight float64
	for i, c := range children {
		cs := measure(f, c, sizes)
		if i > 0 {
			base += siblingGap
		}
		base += cs.width
		maxChildHeight = math.Max(maxChildHeight, cs.height)
	}

	var s size
	switch n.Kind {
	case model.KindFile:
		s = size{width: math.Max(base+fileWidthPad, fileMinWidth), height: maxChildHeight + fileHeightPad}
	case model.KindClass, model.KindInterface:
		s = size{width: math.Max(base+classWidthPad, classMinWidth), height: maxChildHeight + classHeightPad}
	default:
		s = size{width: math.Max(base, otherMinWidth), height: maxChildHeight + otherHeightPad}
	}
	sizes[id] = s
	return s
}

// place is the pre-order placement pass. x is the node's center; y its layer.
func place(f *tree.Forest, id string, x, y float64, sizes map[string]size, out map[string]layout.Box) {
	s := sizes[id]
	out[id] = layout.Box{X: x, Y: y, Width: s.width, Height: s.height}

	children := f.Children(id)
	if len(children) == 0 {
		return
	}

	// Children are centered as a group under the parent, one layer down.
	var combined float64
	for i, c := range children {
		if i > 0 {
			combined += siblingGap
		}
		combined += sizes[c].width
	}

	childX := x - combined/2
	childY := y + layerHeight
	for _, c := range children {
		w := sizes[c].width
		place(f, c, childX+w/2, childY, sizes, out)
		childX += w + siblingGap
	}
}

// Bounds computes the rendering bounding box of every File and Class
// container from its direct children's placed boxes plus kind-dependent
// padding. Each containment layer is computed independently; the box does
// not recurse over the whole subtree. Containers without placed children are
// omitted.
func Bounds(f *tree.Forest, boxes map[string]layout.Box) map[string]layout.Box {
	bounds := make(map[string]layout.Box)

	f.Walk(func(n *model.Node, _ int) {
		var pad float64
		switch n.Kind {
		case model.KindFile:
			pad = fileBoundsPad
		case model.KindClass, model.KindInterface:
			pad = classBoundsPad
		default:
			return
		}

		children := f.Children(n.ID)
		if len(children) == 0 {
			return
		}

		left, top := math.Inf(1), math.Inf(1)
		right, bottom := math.Inf(-1), math.Inf(-1)
		placed := false
		for _, c := range children {
			b, ok := boxes[c]
			if !ok {
				continue
			}
			placed = true
			left = math.Min(left, b.Left())
			top = math.Min(top, b.Top())
			right = math.Max(right, b.Right())
			bottom = math.Max(bottom, b.Bottom())
		}
		if !placed {
			return
		}

		bounds[n.ID] = layout.Box{
			X:      (left + right) / 2,
			Y:      (top + bottom) / 2,
			Width:  right - left + 2*pad,
			Height: bottom - top + 2*pad,
		}
	})
	return bounds
}
