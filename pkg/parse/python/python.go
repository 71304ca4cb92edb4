// Package python implements the parser adapter for Python sources.
//
// The extractor is a line scanner with an indentation-based scope stack: it
// recognizes class and def declarations, imports, and call sites, without
// building a full syntax tree. This trades precision for speed and zero
// runtime dependencies; references it cannot classify are emitted as
// unresolved placeholders and left to the resolver's name heuristics.
package python

import (
	"regexp"
	"strings"

	"github.com/matzehuels/codeatlas/pkg/model"
	"github.com/matzehuels/codeatlas/pkg/parse"
)

// Adapter is the Python parser adapter.
var Adapter parse.Adapter = &adapter{}

type adapter struct{}

func (a *adapter) Language() string     { return "python" }
func (a *adapter) Extensions() []string { return []string{".py"} }

var (
	classRe  = regexp.MustCompile(`^class\s+([A-Za-z_]\w*)\s*(?:\(([^)]*)\))?\s*:`)
	defRe    = regexp.MustCompile(`^def\s+([A-Za-z_]\w*)\s*\(`)
	importRe = regexp.MustCompile(`^(?:import\s+([\w.]+)|from\s+([\w.]+)\s+import\b)`)
	callRe   = regexp.MustCompile(`(?:\b([A-Za-z_]\w*)\.)?\b([A-Za-z_]\w*)\s*\(`)
)

// pythonKeywords are names that look like call sites to the regex but are
// control flow or declarations.
var pythonKeywords = map[string]bool{
	"if": true, "elif": true, "while": true, "for": true, "return": true,
	"with": true, "assert": true, "del": true, "raise": true, "lambda": true,
	"def": true, "class": true, "yield": true, "not": true,
	"and": true, "or": true, "in": true, "is": true, "except": true,
}

// scope is one entry in the indentation stack.
type scope struct {
	indent    int
	nodeID    string
	kind      model.NodeKind
	className string // nearest class name, for self.method() receivers
}

// ParseFile extracts classes, methods, functions, imports, and call
// references from Python source. fileID scopes top-level declarations.
func (a *adapter) ParseFile(content []byte, fileID, path string) (parse.Result, error) {
	var res parse.Result
	lines := strings.Split(string(content), "\n")

	// The file itself is the outermost scope.
	stack := []scope{{indent: -1, nodeID: fileID, kind: model.KindFile}}

	for i, raw := range lines {
		line := i + 1
		trimmed := strings.TrimLeft(raw, " \t")
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		indent := len(raw) - len(trimmed)

		// Leave scopes the indentation has closed.
		for len(stack) > 1 && indent <= stack[len(stack)-1].indent {
			stack = stack[:len(stack)-1]
		}
		top := stack[len(stack)-1]

		switch {
		case classRe.MatchString(trimmed):
			m := classRe.FindStringSubmatch(trimmed)
			name := m[1]
			id := model.DeclID(fileID, name, line)
			res.Nodes = append(res.Nodes, model.Node{
				ID: id, Name: name, Kind: model.KindClass,
				File: path, Line: line, Column: indent,
				Parent: fileID, Meta: model.Metadata{},
			})
			for _, base := range splitBases(m[2]) {
				res.Edges = append(res.Edges, model.Edge{
					Source: id,
					Target: model.Unresolved(base, model.CallConstructor),
					Kind:   model.EdgeInherits,
					Meta:   model.Metadata{},
				})
			}
			stack = append(stack, scope{indent: indent, nodeID: id, kind: model.KindClass, className: name})

		case defRe.MatchString(trimmed):
			name := defRe.FindStringSubmatch(trimmed)[1]
			kind := model.KindFunction
			parent := fileID
			className := top.className
			if top.kind == model.KindClass {
				kind = model.KindMethod
				parent = top.nodeID
			} else if top.kind == model.KindMethod || top.kind == model.KindFunction {
				// Nested defs hang off the enclosing callable.
				kind = model.KindFunction
				parent = top.nodeID
			}
			id := model.DeclID(parent, name, line)
			res.Nodes = append(res.Nodes, model.Node{
				ID: id, Name: name, Kind: kind,
				File: path, Line: line, Column: indent,
				Parent: parent, Meta: model.Metadata{},
			})
			stack = append(stack, scope{indent: indent, nodeID: id, kind: kind, className: className})

		case importRe.MatchString(trimmed):
			if top.kind != model.KindFile {
				break // only record module-level imports
			}
			m := importRe.FindStringSubmatch(trimmed)
			name := m[1]
			if name == "" {
				name = m[2]
			}
			id := model.DeclID(fileID, "import."+name, line)
			res.Nodes = append(res.Nodes, model.Node{
				ID: id, Name: name, Kind: model.KindImport,
				File: path, Line: line, Column: indent,
				Parent: fileID, Meta: model.Metadata{},
			})

		default:
			res.Edges = append(res.Edges, extractCalls(trimmed, stack[len(stack)-1])...)
		}
	}

	return res, nil
}

// extractCalls emits one unresolved reference edge per call site on the line.
// The edge source is the innermost enclosing declaration (file at module level).
func extractCalls(line string, s scope) []model.Edge {
	var edges []model.Edge
	for _, m := range callRe.FindAllStringSubmatch(line, -1) {
		receiver, name := m[1], m[2]
		if pythonKeywords[name] {
			continue
		}

		var target model.Target
		meta := model.Metadata{}
		switch {
		case receiver == "self" || receiver == "cls":
			if s.className == "" {
				continue // self outside a class body: malformed, skip
			}
			target = model.Unresolved(name, model.CallMethod)
			meta["receiver"] = s.className
		case receiver != "" && isCapitalized(receiver):
			target = model.Unresolved(name, model.CallStatic)
			meta["qualifier"] = receiver
		case receiver != "":
			target = model.Unresolved(name, model.CallMethod)
			meta["receiver"] = receiver
		case isCapitalized(name):
			// Bare capitalized call is a constructor by Python convention.
			target = model.Unresolved(name, model.CallConstructor)
		default:
			target = model.Unresolved(name, model.CallFunction)
		}

		// Constructor call sites are still emitted as calls; the resolver
		// rewrites the kind to instantiates once the class is found.
		edges = append(edges, model.Edge{Source: s.nodeID, Target: target, Kind: model.EdgeCalls, Meta: meta})
	}
	return edges
}

func splitBases(list string) []string {
	var bases []string
	for _, b := range strings.Split(list, ",") {
		b = strings.TrimSpace(b)
		// Skip keyword arguments (metaclass=...) and empty entries.
		if b == "" || b == "object" || strings.ContainsAny(b, "=*") {
			continue
		}
		// Qualified bases (module.Class) resolve by their final component.
		if dot := strings.LastIndex(b, "."); dot >= 0 {
			b = b[dot+1:]
		}
		bases = append(bases, b)
	}
	return bases
}

func isCapitalized(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}
