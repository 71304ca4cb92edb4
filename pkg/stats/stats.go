// Package stats computes summary statistics over a resolved code graph:
// totals, per-kind breakdowns, average degree, and weakly connected
// components. These numbers back the CLI summary output and the viewer's
// stats endpoint.
package stats

import (
	"github.com/matzehuels/codeatlas/pkg/graph"
)

// Stats summarizes one analyzed graph.
type Stats struct {
	Language    string         `json:"language" bson:"language"`
	TotalNodes  int            `json:"total_nodes" bson:"total_nodes"`
	TotalEdges  int            `json:"total_edges" bson:"total_edges"`
	NodesByKind map[string]int `json:"nodes_by_kind" bson:"nodes_by_kind"`
	EdgesByKind map[string]int `json:"edges_by_kind" bson:"edges_by_kind"`
	Unresolved  int            `json:"unresolved_references" bson:"unresolved_references"`
	AvgDegree   float64        `json:"avg_degree" bson:"avg_degree"`
	Components  int            `json:"connected_components" bson:"connected_components"`
}

// Compute derives statistics from a document. unresolved is the number of
// references dropped during resolution, reported alongside the surviving
// graph so callers can judge resolution coverage.
func Compute(doc graph.Document, unresolved int) Stats {
	s := Stats{
		Language:    doc.Language,
		TotalNodes:  len(doc.Nodes),
		TotalEdges:  len(doc.Edges),
		NodesByKind: make(map[string]int),
		EdgesByKind: make(map[string]int),
		Unresolved:  unresolved,
	}

	for _, n := range doc.Nodes {
		s.NodesByKind[n.Kind.String()]++
	}
	for _, e := range doc.Edges {
		s.EdgesByKind[e.Kind.String()]++
	}

	if len(doc.Nodes) > 0 {
		// Each edge contributes one out- and one in-degree.
		s.AvgDegree = float64(2*len(doc.Edges)) / float64(len(doc.Nodes))
		s.Components = components(doc)
	}
	return s
}

// components counts weakly connected components with union-find.
func components(doc graph.Document) int {
	parent := make(map[string]string, len(doc.Nodes))
	for _, n := range doc.Nodes {
		parent[n.ID] = n.ID
	}

	var find func(string) string
	find = func(id string) string {
		if parent[id] != id {
			parent[id] = find(parent[id]) // path compression
		}
		return parent[id]
	}
	union := func(a, b string) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for _, e := range doc.Edges {
		if _, ok := parent[e.Source]; !ok {
			continue
		}
		if _, ok := parent[e.Target]; !ok {
			continue
		}
		union(e.Source, e.Target)
	}

	roots := make(map[string]bool)
	for id := range parent {
		roots[find(id)] = true
	}
	return len(roots)
}
