package resolve

import (
	"testing"

	"github.com/matzehuels/codeatlas/pkg/model"
)

// zooNodes is a two-file fixture: a class hierarchy in one file and a helper
// function in another.
func zooNodes() []model.Node {
	return []model.Node{
		{ID: "zoo.py", Name: "zoo.py", Kind: model.KindFile},
		{ID: "zoo.py::Animal:1", Name: "Animal", Kind: model.KindClass, Parent: "zoo.py"},
		{ID: "zoo.py::Animal:1::speak:2", Name: "speak", Kind: model.KindMethod, Parent: "zoo.py::Animal:1"},
		{ID: "zoo.py::Dog:5", Name: "Dog", Kind: model.KindClass, Parent: "zoo.py"},
		{ID: "util.py", Name: "util.py", Kind: model.KindFile},
		{ID: "util.py::helper:1", Name: "helper", Kind: model.KindFunction, Parent: "util.py"},
	}
}

func TestResolveFunctionCall(t *testing.T) {
	edges := []model.Edge{{
		Source: "zoo.py::Animal:1::speak:2",
		Target: model.Unresolved("helper", model.CallFunction),
		Kind:   model.EdgeCalls,
	}}

	res := Resolve(zooNodes(), edges)

	if res.Resolved != 1 || res.Dropped != 0 {
		t.Fatalf("Resolved = %d, Dropped = %d, want 1, 0", res.Resolved, res.Dropped)
	}
	e := res.Edges[0]
	if e.Target.ID() != "util.py::helper:1" || e.Kind != model.EdgeCalls {
		t.Errorf("edge = %s (%s), want util.py::helper:1 (calls)", e.Target.ID(), e.Kind)
	}
}

func TestResolveFunctionCallToClassBecomesInstantiates(t *testing.T) {
	edges := []model.Edge{{
		Source: "util.py::helper:1",
		Target: model.Unresolved("Dog", model.CallFunction),
		Kind:   model.EdgeCalls,
	}}

	res := Resolve(zooNodes(), edges)

	if res.Resolved != 1 || res.Reclassified != 1 {
		t.Fatalf("Resolved = %d, Reclassified = %d, want 1, 1", res.Resolved, res.Reclassified)
	}
	e := res.Edges[0]
	if e.Target.ID() != "zoo.py::Dog:5" || e.Kind != model.EdgeInstantiates {
		t.Errorf("edge = %s (%s), want zoo.py::Dog:5 (instantiates)", e.Target.ID(), e.Kind)
	}
}

func TestResolveMethodCall(t *testing.T) {
	edges := []model.Edge{{
		Source: "util.py::helper:1",
		Target: model.Unresolved("speak", model.CallMethod),
		Kind:   model.EdgeCalls,
		Meta:   model.Metadata{"receiver": "Animal"},
	}}

	res := Resolve(zooNodes(), edges)

	if res.Resolved != 1 {
		t.Fatalf("Resolved = %d, want 1", res.Resolved)
	}
	if got := res.Edges[0].Target.ID(); got != "zoo.py::Animal:1::speak:2" {
		t.Errorf("target = %s, want zoo.py::Animal:1::speak:2", got)
	}
}

func TestResolveMethodCallUnknownReceiverDrops(t *testing.T) {
	edges := []model.Edge{{
		Source: "util.py::helper:1",
		Target: model.Unresolved("speak", model.CallMethod),
		Kind:   model.EdgeCalls,
		Meta:   model.Metadata{"receiver": "obj"},
	}}

	res := Resolve(zooNodes(), edges)

	if res.Dropped != 1 || len(res.Edges) != 0 {
		t.Errorf("Dropped = %d, len(Edges) = %d, want 1, 0", res.Dropped, len(res.Edges))
	}
	if res.DroppedByType[model.CallMethod] != 1 {
		t.Errorf("DroppedByType = %v, want method:1", res.DroppedByType)
	}
}

func TestResolveConstructor(t *testing.T) {
	edges := []model.Edge{
		{
			Source: "util.py::helper:1",
			Target: model.Unresolved("Animal", model.CallConstructor),
			Kind:   model.EdgeCalls,
		},
		{
			// Inheritance clauses carry the constructor tag but keep their kind.
			Source: "zoo.py::Dog:5",
			Target: model.Unresolved("Animal", model.CallConstructor),
			Kind:   model.EdgeInherits,
		},
	}

	res := Resolve(zooNodes(), edges)

	if res.Resolved != 2 || res.Reclassified != 1 {
		t.Fatalf("Resolved = %d, Reclassified = %d, want 2, 1", res.Resolved, res.Reclassified)
	}
	if res.Edges[0].Kind != model.EdgeInstantiates {
		t.Errorf("call edge kind = %s, want instantiates", res.Edges[0].Kind)
	}
	if res.Edges[1].Kind != model.EdgeInherits {
		t.Errorf("inherits edge kind = %s, want inherits", res.Edges[1].Kind)
	}
}

func TestResolveStaticCall(t *testing.T) {
	edges := []model.Edge{{
		Source: "util.py::helper:1",
		Target: model.Unresolved("speak", model.CallStatic),
		Kind:   model.EdgeCalls,
		Meta:   model.Metadata{"qualifier": "Animal"},
	}}

	res := Resolve(zooNodes(), edges)

	if res.Resolved != 1 {
		t.Fatalf("Resolved = %d, want 1", res.Resolved)
	}
	if got := res.Edges[0].Target.ID(); got != "zoo.py::Animal:1::speak:2" {
		t.Errorf("target = %s, want zoo.py::Animal:1::speak:2", got)
	}
}

func TestResolveExternalTargetDrops(t *testing.T) {
	edges := []model.Edge{{
		Source: "zoo.py::Dog:5",
		Target: model.External("ABC"),
		Kind:   model.EdgeInherits,
	}}

	res := Resolve(zooNodes(), edges)

	if res.Dropped != 1 || len(res.Edges) != 0 {
		t.Errorf("Dropped = %d, len(Edges) = %d, want 1, 0", res.Dropped, len(res.Edges))
	}
}

func TestResolveResolvedPassesThrough(t *testing.T) {
	edges := []model.Edge{{
		Source: "zoo.py",
		Target: model.Resolved("util.py"),
		Kind:   model.EdgeCalls,
	}}

	res := Resolve(zooNodes(), edges)

	if res.Resolved != 0 || len(res.Edges) != 1 {
		t.Errorf("Resolved = %d, len(Edges) = %d, want 0, 1", res.Resolved, len(res.Edges))
	}
}

func TestResolveDoesNotModifyInput(t *testing.T) {
	edges := []model.Edge{{
		Source: "util.py::helper:1",
		Target: model.Unresolved("Dog", model.CallConstructor),
		Kind:   model.EdgeCalls,
	}}

	Resolve(zooNodes(), edges)

	if edges[0].Kind != model.EdgeCalls || edges[0].Target.State() != model.TargetUnresolved {
		t.Error("Resolve mutated the input edge slice")
	}
}

func TestBuildSymbolsFirstOccurrenceWins(t *testing.T) {
	nodes := []model.Node{
		{ID: "a.py", Name: "a.py", Kind: model.KindFile},
		{ID: "a.py::run:1", Name: "run", Kind: model.KindFunction, Parent: "a.py"},
		{ID: "b.py", Name: "b.py", Kind: model.KindFile},
		{ID: "b.py::run:1", Name: "run", Kind: model.KindFunction, Parent: "b.py"},
	}

	s := BuildSymbols(nodes)

	id, ok := s.Function("run")
	if !ok || id != "a.py::run:1" {
		t.Errorf("Function(run) = %q, %v, want a.py::run:1 (first declaration)", id, ok)
	}
}

func TestBuildSymbolsMethodIndexWalksToNearestClass(t *testing.T) {
	nodes := []model.Node{
		{ID: "a.py", Name: "a.py", Kind: model.KindFile},
		{ID: "a.py::Foo:1", Name: "Foo", Kind: model.KindClass, Parent: "a.py"},
		{ID: "a.py::Foo:1::run:2", Name: "run", Kind: model.KindMethod, Parent: "a.py::Foo:1"},
		// Method with a dangling parent never enters the index.
		{ID: "ghost::go:9", Name: "go", Kind: model.KindMethod, Parent: "missing"},
	}

	s := BuildSymbols(nodes)

	if id, ok := s.Method("Foo", "run"); !ok || id != "a.py::Foo:1::run:2" {
		t.Errorf("Method(Foo, run) = %q, %v", id, ok)
	}
	if _, ok := s.Method("", "go"); ok {
		t.Error("dangling method should not be indexed")
	}
}
