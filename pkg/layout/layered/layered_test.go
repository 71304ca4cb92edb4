package layered

import (
	"math"
	"testing"

	"github.com/matzehuels/codeatlas/pkg/model"
	"github.com/matzehuels/codeatlas/pkg/tree"
)

func fixtureForest() *tree.Forest {
	return tree.Build([]model.Node{
		{ID: "a.py", Name: "a.py", Kind: model.KindFile},
		{ID: "a.py::Foo:1", Name: "Foo", Kind: model.KindClass, Parent: "a.py"},
		{ID: "a.py::Foo:1::run:2", Name: "run", Kind: model.KindMethod, Parent: "a.py::Foo:1"},
		{ID: "a.py::Foo:1::stop:4", Name: "stop", Kind: model.KindMethod, Parent: "a.py::Foo:1"},
		{ID: "a.py::main:8", Name: "main", Kind: model.KindFunction, Parent: "a.py"},
		{ID: "b.py", Name: "b.py", Kind: model.KindFile},
	})
}

func TestLayoutPlacesEveryNode(t *testing.T) {
	f := fixtureForest()
	boxes := Layout(f)

	if len(boxes) != f.Len() {
		t.Fatalf("len(boxes) = %d, want %d", len(boxes), f.Len())
	}
}

// TestLayoutLayering verifies the strict layer rule: every node sits at
// exactly layerHeight times its containment depth.
func TestLayoutLayering(t *testing.T) {
	f := fixtureForest()
	boxes := Layout(f)

	f.Walk(func(n *model.Node, depth int) {
		want := layerHeight * float64(depth)
		if got := boxes[n.ID].Y; got != want {
			t.Errorf("%s y = %f, want %f (depth %d)", n.ID, got, want, depth)
		}
	})
}

func TestLayoutChildrenCenteredUnderParent(t *testing.T) {
	f := fixtureForest()
	boxes := Layout(f)

	f.Walk(func(n *model.Node, _ int) {
		children := f.Children(n.ID)
		if len(children) == 0 {
			return
		}
		left, right := math.Inf(1), math.Inf(-1)
		for _, c := range children {
			b := boxes[c]
			left = math.Min(left, b.Left())
			right = math.Max(right, b.Right())
		}
		groupCenter := (left + right) / 2
		if diff := math.Abs(groupCenter - boxes[n.ID].X); diff > 1e-9 {
			t.Errorf("%s children group center %f, parent x %f", n.ID, groupCenter, boxes[n.ID].X)
		}
	})
}

func TestLayoutSiblingsDoNotOverlap(t *testing.T) {
	f := fixtureForest()
	boxes := Layout(f)

	f.Walk(func(n *model.Node, _ int) {
		children := f.Children(n.ID)
		for i := 0; i < len(children); i++ {
			for j := i + 1; j < len(children); j++ {
				a, b := boxes[children[i]], boxes[children[j]]
				if a.Right() > b.Left() && b.Right() > a.Left() {
					t.Errorf("siblings %s and %s overlap horizontally", children[i], children[j])
				}
			}
		}
	})
}

func TestLayoutDeterministic(t *testing.T) {
	f := fixtureForest()
	a := Layout(f)
	b := Layout(f)

	for id, ba := range a {
		if bb := b[id]; ba != bb {
			t.Errorf("%s differs: %v vs %v", id, ba, bb)
		}
	}
}

func TestLayoutEmptyForest(t *testing.T) {
	boxes := Layout(tree.Build(nil))
	if len(boxes) != 0 {
		t.Errorf("len(boxes) = %d, want 0", len(boxes))
	}
}

func TestBoundsCoverChildren(t *testing.T) {
	f := fixtureForest()
	boxes := Layout(f)
	bounds := Bounds(f, boxes)

	// Leaf containers and non-containers get no bounds.
	if _, ok := bounds["b.py"]; ok {
		t.Error("childless file should have no bounds")
	}
	if _, ok := bounds["a.py::main:8"]; ok {
		t.Error("function should have no bounds")
	}

	for _, id := range []string{"a.py", "a.py::Foo:1"} {
		b, ok := bounds[id]
		if !ok {
			t.Errorf("missing bounds for %s", id)
			continue
		}
		for _, c := range f.Children(id) {
			cb := boxes[c]
			if cb.Left() < b.Left() || cb.Right() > b.Right() ||
				cb.Top() < b.Top() || cb.Bottom() > b.Bottom() {
				t.Errorf("child %s outside bounds of %s", c, id)
			}
		}
	}
}

func TestBoundsPaddingByKind(t *testing.T) {
	f := fixtureForest()
	boxes := Layout(f)
	bounds := Bounds(f, boxes)

	foo := bounds["a.py::Foo:1"]
	var left, right float64 = math.Inf(1), math.Inf(-1)
	for _, c := range f.Children("a.py::Foo:1") {
		left = math.Min(left, boxes[c].Left())
		right = math.Max(right, boxes[c].Right())
	}
	wantWidth := right - left + 2*classBoundsPad
	if math.Abs(foo.Width-wantWidth) > 1e-9 {
		t.Errorf("class bounds width = %f, want %f", foo.Width, wantWidth)
	}
}
