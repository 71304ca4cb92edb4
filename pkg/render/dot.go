// Package render produces node-link output from a resolved code graph: DOT
// text for Graphviz tooling, and SVG/PNG rasters via the embedded Graphviz
// engine. The core layout engines are independent of this package; DOT
// output lets Graphviz compute its own placement for quick inspection.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/codeatlas/pkg/graph"
	"github.com/matzehuels/codeatlas/pkg/model"
)

// Options configures node-link rendering.
type Options struct {
	// Detailed includes source location in node labels.
	// When false, only the entity name is shown.
	Detailed bool
	// ShowContainment includes contains edges (drawn dashed).
	// Reference edges are always drawn.
	ShowContainment bool
}

// nodeColors maps node kinds to Graphviz fill colors, mirroring the viewer's
// palette.
var nodeColors = map[model.NodeKind]string{
	model.KindFile:      "#FF6B6B",
	model.KindClass:     "#4ECDC4",
	model.KindInterface: "#00CED1",
	model.KindMethod:    "#45B7D1",
	model.KindFunction:  "#96CEB4",
	model.KindVariable:  "#FECA57",
	model.KindImport:    "#DDA0DD",
	model.KindModule:    "#98D8C8",
	model.KindPackage:   "#FFB6C1",
}

// ToDOT converts a resolved document to Graphviz DOT format.
// Node and edge order follow the document, so output is deterministic.
func ToDOT(doc graph.Document, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph codeatlas {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range doc.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range doc.Edges {
		if e.Kind == model.EdgeContains {
			if opts.ShowContainment {
				fmt.Fprintf(&buf, "  %q -> %q [style=dashed, color=grey];\n", e.Source, e.Target)
			}
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.Source, e.Target, e.Kind)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n model.Node, detailed bool) []string {
	label := model.ShortName(n.Name, 24)
	if detailed {
		label = fmt.Sprintf("%s\n%s:%d", label, n.File, n.Line)
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if color, ok := nodeColors[n.Kind]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", color))
	} else {
		attrs = append(attrs, `fillcolor="#CCCCCC"`)
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.PNG)
}

func renderFormat(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
