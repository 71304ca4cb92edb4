// Package resolve converts unresolved name references into concrete graph
// edges using purely name-based heuristics. There is no type system: lookups
// go through three symbol indices built once over the full node set, and
// references that cannot be bound are dropped and counted, never treated as
// errors (they are assumed to point at external libraries or dynamic
// dispatch).
//
// Resolution is a pure function of the aggregated node and edge set. Running
// it twice is a no-op: after the first pass no unresolved targets remain.
package resolve

import (
	"github.com/matzehuels/codeatlas/pkg/model"
)

// Result summarizes one resolution pass.
type Result struct {
	Edges         []model.Edge // surviving edges, both endpoints real nodes
	Resolved      int          // placeholders rewritten to concrete targets
	Reclassified  int          // calls edges rewritten to instantiates
	Dropped       int          // placeholders that did not resolve
	DroppedByType map[model.CallType]int
}

// Symbols holds the name indices used for resolution.
//
// Collision policy: the first occurrence by node-discovery order wins; later
// same-named declarations are shadowed. This is a documented heuristic
// limitation of name-based resolution, not an error.
type Symbols struct {
	functionsByName        map[string]string // name -> node ID
	classesByName          map[string]string // name -> node ID (classes and interfaces)
	methodsByQualifiedName map[string]string // "Class.method" -> node ID
}

// BuildSymbols indexes the node set. Nodes must be in discovery order;
// the index is insert-only so earlier declarations shadow later ones.
func BuildSymbols(nodes []model.Node) *Symbols {
	s := &Symbols{
		functionsByName:        make(map[string]string),
		classesByName:          make(map[string]string),
		methodsByQualifiedName: make(map[string]string),
	}

	byID := make(map[string]*model.Node, len(nodes))
	for i := range nodes {
		byID[nodes[i].ID] = &nodes[i]
	}

	for i := range nodes {
		n := &nodes[i]
		switch n.Kind {
		case model.KindFunction:
			putFirst(s.functionsByName, n.Name, n.ID)
		case model.KindClass, model.KindInterface:
			putFirst(s.classesByName, n.Name, n.ID)
		case model.KindMethod:
			if class := nearestClass(n, byID); class != nil {
				putFirst(s.methodsByQualifiedName, model.QualifiedMethodName(class.Name, n.Name), n.ID)
			}
		}
	}
	return s
}

// Function returns the node ID for a top-level function name.
func (s *Symbols) Function(name string) (string, bool) {
	id, ok := s.functionsByName[name]
	return id, ok
}

// Class returns the node ID for a class or interface name.
func (s *Symbols) Class(name string) (string, bool) {
	id, ok := s.classesByName[name]
	return id, ok
}

// Method returns the node ID for a "Class.method" qualified name.
func (s *Symbols) Method(class, name string) (string, bool) {
	id, ok := s.methodsByQualifiedName[model.QualifiedMethodName(class, name)]
	return id, ok
}

// Resolve rewrites unresolved edge targets against the given node set.
// Edges with already-resolved targets pass through untouched; edges whose
// placeholders cannot be bound are dropped and counted. The input slice is
// not modified.
func Resolve(nodes []model.Node, edges []model.Edge) Result {
	symbols := BuildSymbols(nodes)
	res := Result{
		Edges:         make([]model.Edge, 0, len(edges)),
		DroppedByType: make(map[model.CallType]int),
	}

	for _, e := range edges {
		switch e.Target.State() {
		case model.TargetResolved:
			res.Edges = append(res.Edges, e)
		case model.TargetExternal:
			// Known-external reference: dropped, counted like any other miss.
			res.Dropped++
		case model.TargetUnresolved:
			resolved, ok := resolveOne(symbols, &e)
			if !ok {
				res.Dropped++
				res.DroppedByType[e.Target.CallType()]++
				continue
			}
			if resolved.Kind == model.EdgeInstantiates && e.Kind == model.EdgeCalls {
				res.Reclassified++
			}
			res.Resolved++
			res.Edges = append(res.Edges, resolved)
		}
	}
	return res
}

// resolveOne dispatches one placeholder on its call type. It returns the
// rewritten edge and whether a binding was found.
func resolveOne(s *Symbols, e *model.Edge) (model.Edge, bool) {
	name := e.Target.Name()

	switch e.Target.CallType() {
	case model.CallFunction:
		if id, ok := s.Function(name); ok {
			return rewrite(e, id, e.Kind), true
		}
		// A bare call naming a class is a constructor call in disguise.
		if id, ok := s.Class(name); ok {
			return rewrite(e, id, model.EdgeInstantiates), true
		}

	case model.CallMethod:
		receiver, _ := e.Meta["receiver"].(string)
		if receiver == "" {
			break
		}
		if _, ok := s.Class(receiver); ok {
			if id, ok := s.Method(receiver, name); ok {
				return rewrite(e, id, e.Kind), true
			}
		}

	case model.CallConstructor:
		if id, ok := s.Class(name); ok {
			kind := e.Kind
			if kind == model.EdgeCalls {
				kind = model.EdgeInstantiates
			}
			return rewrite(e, id, kind), true
		}

	case model.CallStatic:
		qualifier, _ := e.Meta["qualifier"].(string)
		if qualifier == "" {
			break
		}
		if id, ok := s.Method(qualifier, name); ok {
			return rewrite(e, id, e.Kind), true
		}
	}

	return model.Edge{}, false
}

func rewrite(e *model.Edge, targetID string, kind model.EdgeKind) model.Edge {
	out := *e
	out.Target = model.Resolved(targetID)
	out.Kind = kind
	return out
}

// putFirst inserts only if the key is absent: first occurrence wins.
func putFirst(m map[string]string, key, id string) {
	if _, exists := m[key]; !exists {
		m[key] = id
	}
}

// nearestClass walks the parent chain to the closest class or interface
// ancestor. Returns nil when a method has no class ancestor (dangling or
// malformed parent chain); such methods simply never appear in the
// qualified-name index.
func nearestClass(n *model.Node, byID map[string]*model.Node) *model.Node {
	seen := 0
	for cur := n; cur.Parent != "" && seen <= len(byID); seen++ {
		parent, ok := byID[cur.Parent]
		if !ok {
			return nil
		}
		if parent.Kind == model.KindClass || parent.Kind == model.KindInterface {
			return parent
		}
		cur = parent
	}
	return nil
}
