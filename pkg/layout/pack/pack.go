// Package pack implements the nested circle-packing layout.
//
// The layout is two deterministic traversals of the containment forest with
// no state retained between calls: a post-order pass computes every node's
// radius bottom-up, then a pre-order pass places centers top-down. For every
// non-root node the placement guarantees
//
//	distance(center, parentCenter) + radius <= parentRadius
//
// so children always render strictly inside their parent circle.
package pack

import (
	"math"

	"github.com/matzehuels/codeatlas/pkg/layout"
	"github.com/matzehuels/codeatlas/pkg/model"
	"github.com/matzehuels/codeatlas/pkg/tree"
)

// Leaf radii by node kind.
const (
	leafRadiusFile     = 40.0
	leafRadiusClass    = 25.0
	leafRadiusCallable = 15.0 // methods and functions
	leafRadiusOther    = 10.0
)

// Minimum radii for internal (container) nodes by kind, applied after the
// area estimate so tiny containers stay readable.
const (
	minRadiusFile  = 80.0
	minRadiusClass = 50.0
	minRadiusOther = 30.0
)

const (
	singleChildPadding = 30.0 // ring width around an only child
	multiChildPadding  = 20.0 // clearance added to the area estimate
	ringInset          = 10.0 // gap between the child ring and the parent rim
	ringClearance      = 20.0 // minimum ring radius beyond the largest child
	rootGap            = 50.0 // horizontal gap between root circles
)

// Layout computes a circle per node in the forest. The result maps node ID
// to its placed circle; an empty forest yields an empty map.
func Layout(f *tree.Forest) map[string]layout.Circle {
	radii := make(map[string]float64, f.Len())
	for _, root := range f.Roots() {
		measure(f, root, radii)
	}

	circles := make(map[string]layout.Circle, f.Len())

	// Roots go left to right along the baseline, each offset by its own
	// radius past the previous root's rim.
	x := 0.0
	for i, root := range f.Roots() {
		r := radii[root]
		if i > 0 {
			x += rootGap
		}
		x += r
		place(f, root, layout.Point{X: x, Y: 0}, radii, circles)
		x += r
	}
	return circles
}

// measure is the post-order radius pass.
func measure(f *tree.Forest, id string, radii map[string]float64) float64 {
	n, ok := f.Node(id)
	if !ok {
		return 0
	}
	children := f.Children(id)

	if len(children) == 0 {
		r := leafRadius(n.Kind)
		radii[id] = r
		return r
	}

	childRadii := make([]float64, len(children))
	for i, c := range children {
		childRadii[i] = measure(f, c, radii)
	}

	var r float64
	if len(children) == 1 {
		r = childRadii[0] + singleChildPadding
	} else {
		// Estimate the circle whose area equals the summed child areas,
		// then add the largest child and clearance so the ring placement
		// in the second pass has room.
		var area float64
		var maxChild float64
		for _, cr := range childRadii {
			area += math.Pi * cr * cr
			maxChild = math.Max(maxChild, cr)
		}
		r = math.Max(math.Sqrt(area/math.Pi)+maxChild+multiChildPadding, minRadius(n.Kind))
	}
	radii[id] = r
	return r
}

// place is the pre-order placement pass.
func place(f *tree.Forest, id string, center layout.Point, radii map[string]float64, out map[string]layout.Circle) {
	out[id] = layout.Circle{Center: center, Radius: radii[id]}

	children := f.Children(id)
	if len(children) == 0 {
		return
	}

	if len(children) == 1 {
		// An only child sits concentric with its parent.
		place(f, children[0], center, radii, out)
		return
	}

	var maxChild float64
	for _, c := range children {
		maxChild = math.Max(maxChild, radii[c])
	}

	// Ring radius: inset from the parent rim, but never so small that the
	// largest child would cross the parent boundary. The clamp keeps the
	// containment invariant even when the pass-1 estimate is tight.
	ring := math.Max(radii[id]-maxChild-ringInset, maxChild+ringClearance)

	step := 2 * math.Pi / float64(len(children))
	for i, c := range children {
		angle := step * float64(i)
		childCenter := layout.Point{
			X: center.X + ring*math.Cos(angle),
			Y: center.Y + ring*math.Sin(angle),
		}
		place(f, c, childCenter, radii, out)
	}
}

func leafRadius(kind model.NodeKind) float64 {
	switch kind {
	case model.KindFile:
		return leafRadiusFile
	case model.KindClass, model.KindInterface:
		return leafRadiusClass
	case model.KindMethod, model.KindFunction:
		return leafRadiusCallable
	default:
		return leafRadiusOther
	}
}

func minRadius(kind model.NodeKind) float64 {
	switch kind {
	case model.KindFile:
		return minRadiusFile
	case model.KindClass, model.KindInterface:
		return minRadiusClass
	default:
		return minRadiusOther
	}
}
