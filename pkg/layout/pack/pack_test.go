package pack

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
		{ID: "a.py::Bar:8", Name: "Bar", Kind: model.KindClass, Parent: "a.py"},
		{ID: "a.py::main:12", Name: "main", Kind: model.KindFunction, Parent: "a.py"},
		{ID: "b.py", Name: "b.py", Kind: model.KindFile},
		{ID: "b.py::helper:1", Name: "helper", Kind: model.KindFunction, Parent: "b.py"},
	})
}

func TestLayoutPlacesEveryNode(t *testing.T) {
	f := fixtureForest()
	circles := Layout(f)

	if len(circles) != f.Len() {
		t.Fatalf("len(circles) = %d, want %d", len(circles), f.Len())
	}
	for id, c := range circles {
		if c.Radius <= 0 {
			t.Errorf("%s radius = %f, want > 0", id, c.Radius)
		}
	}
}

// TestLayoutContainment verifies the core geometric guarantee: every child
// circle lies entirely inside its parent circle.
func TestLayoutContainment(t *testing.T) {
	f := fixtureForest()
	circles := Layout(f)

	const eps = 1e-9
	f.Walk(func(n *model.Node, _ int) {
		parent := circles[n.ID]
		for _, childID := range f.Children(n.ID) {
			child := circles[childID]
			dx := child.Center.X - parent.Center.X
			dy := child.Center.Y - parent.Center.Y
			dist := math.Hypot(dx, dy)
			if dist+child.Radius > parent.Radius+eps {
				t.Errorf("%s escapes %s: dist %f + r %f > parent r %f",
					childID, n.ID, dist, child.Radius, parent.Radius)
			}
		}
	})
}

func TestLayoutRootsDoNotOverlap(t *testing.T) {
	f := fixtureForest()
	circles := Layout(f)

	roots := f.Roots()
	for i := 0; i < len(roots); i++ {
		for j := i + 1; j < len(roots); j++ {
			a, b := circles[roots[i]], circles[roots[j]]
			dist := math.Hypot(a.Center.X-b.Center.X, a.Center.Y-b.Center.Y)
			if dist < a.Radius+b.Radius {
				t.Errorf("roots %s and %s overlap: dist %f < %f",
					roots[i], roots[j], dist, a.Radius+b.Radius)
			}
		}
	}
}

func TestLayoutSingleChildConcentric(t *testing.T) {
	f := tree.Build([]model.Node{
		{ID: "a.py", Name: "a.py", Kind: model.KindFile},
		{ID: "a.py::f:1", Name: "f", Kind: model.KindFunction, Parent: "a.py"},
	})
	circles := Layout(f)

	parent, child := circles["a.py"], circles["a.py::f:1"]
	if parent.Center != child.Center {
		t.Errorf("only child not concentric: parent %v, child %v", parent.Center, child.Center)
	}
	if parent.Radius <= child.Radius {
		t.Errorf("parent radius %f not larger than child %f", parent.Radius, child.Radius)
	}
}

func TestLayoutDeterministic(t *testing.T) {
	f := fixtureForest()
	a := Layout(f)
	b := Layout(f)

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for id, ca := range a {
		if cb := b[id]; ca != cb {
			t.Errorf("%s differs: %v vs %v", id, ca, cb)
		}
	}
}

func TestLayoutEmptyForest(t *testing.T) {
	circles := Layout(tree.Build(nil))
	if len(circles) != 0 {
		t.Errorf("len(circles) = %d, want 0", len(circles))
	}
}

func TestLeafRadiiByKind(t *testing.T) {
	if leafRadius(model.KindFile) <= leafRadius(model.KindClass) {
		t.Error("file leaves should be larger than class leaves")
	}
	if leafRadius(model.KindClass) <= leafRadius(model.KindMethod) {
		t.Error("class leaves should be larger than method leaves")
	}
	if leafRadius(model.KindImport) != leafRadiusOther {
		t.Errorf("import leaf radius = %f, want %f", leafRadius(model.KindImport), leafRadiusOther)
	}
}
