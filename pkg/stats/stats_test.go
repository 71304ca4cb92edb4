package stats

import (
	"testing"

	"github.com/matzehuels/codeatlas/pkg/graph"
	"github.com/matzehuels/codeatlas/pkg/model"
)

func fixtureDoc() graph.Document {
	return graph.Document{
		Language: "python",
		Nodes: []model.Node{
			{ID: "a.py", Kind: model.KindFile},
			{ID: "a.py::Foo:1", Kind: model.KindClass},
			{ID: "a.py::main:5", Kind: model.KindFunction},
			{ID: "b.py", Kind: model.KindFile},
		},
		Edges: []graph.Edge{
			{Source: "a.py", Target: "a.py::Foo:1", Kind: model.EdgeContains},
			{Source: "a.py", Target: "a.py::main:5", Kind: model.EdgeContains},
			{Source: "a.py::main:5", Target: "a.py::Foo:1", Kind: model.EdgeInstantiates},
		},
	}
}

func TestCompute(t *testing.T) {
	s := Compute(fixtureDoc(), 2)

	if s.Language != "python" {
		t.Errorf("Language = %q", s.Language)
	}
	if s.TotalNodes != 4 || s.TotalEdges != 3 {
		t.Errorf("totals = %d nodes, %d edges, want 4, 3", s.TotalNodes, s.TotalEdges)
	}
	if s.Unresolved != 2 {
		t.Errorf("Unresolved = %d, want 2", s.Unresolved)
	}
	if s.NodesByKind["file"] != 2 || s.NodesByKind["class"] != 1 || s.NodesByKind["function"] != 1 {
		t.Errorf("NodesByKind = %v", s.NodesByKind)
	}
	if s.EdgesByKind["contains"] != 2 || s.EdgesByKind["instantiates"] != 1 {
		t.Errorf("EdgesByKind = %v", s.EdgesByKind)
	}
	if s.AvgDegree != 1.5 { // 2*3/4
		t.Errorf("AvgDegree = %f, want 1.5", s.AvgDegree)
	}
}

func TestComputeComponents(t *testing.T) {
	// a.py's subtree is one component; b.py is isolated.
	s := Compute(fixtureDoc(), 0)
	if s.Components != 2 {
		t.Errorf("Components = %d, want 2", s.Components)
	}
}

func TestComputeComponentsFullyConnected(t *testing.T) {
	doc := fixtureDoc()
	doc.Edges = append(doc.Edges, graph.Edge{
		Source: "b.py", Target: "a.py::main:5", Kind: model.EdgeCalls,
	})

	s := Compute(doc, 0)
	if s.Components != 1 {
		t.Errorf("Components = %d, want 1", s.Components)
	}
}

func TestComputeIgnoresEdgesToUnknownNodes(t *testing.T) {
	doc := fixtureDoc()
	doc.Edges = append(doc.Edges, graph.Edge{
		Source: "b.py", Target: "ghost.py", Kind: model.EdgeCalls,
	})

	s := Compute(doc, 0)
	if s.Components != 2 {
		t.Errorf("Components = %d, want 2 (dangling edge must not union)", s.Components)
	}
}

func TestComputeEmptyDocument(t *testing.T) {
	s := Compute(graph.Document{}, 0)

	if s.TotalNodes != 0 || s.TotalEdges != 0 || s.AvgDegree != 0 || s.Components != 0 {
		t.Errorf("empty stats = %+v", s)
	}
}
