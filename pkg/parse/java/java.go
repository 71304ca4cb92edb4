// Package java implements the parser adapter for Java sources.
//
// Extraction is regex-based with brace counting to track class and method
// scope. It recognizes package and import statements, class/interface/enum
// declarations with extends/implements clauses, method declarations, and
// call sites (new X(...), Qualifier.method(...), receiver.method(...), and
// bare method(...) calls).
package java

import (
	"regexp"
	"strings"

	"github.com/matzehuels/codeatlas/pkg/model"
	"github.com/matzehuels/codeatlas/pkg/parse"
)

// Adapter is the Java parser adapter.
var Adapter parse.Adapter = &adapter{}

type adapter struct{}

func (a *adapter) Language() string     { return "java" }
func (a *adapter) Extensions() []string { return []string{".java"} }

var (
	packageRe = regexp.MustCompile(`^\s*package\s+([\w.]+)\s*;`)
	importRe  = regexp.MustCompile(`^\s*import\s+(?:static\s+)?([\w.]+(?:\.\*)?)\s*;`)
	typeRe    = regexp.MustCompile(`(?:public\s+|abstract\s+|final\s+)*(class|interface|enum)\s+(\w+)(?:\s+extends\s+([\w.]+))?(?:\s+implements\s+([\w.,\s]+))?`)
	methodRe  = regexp.MustCompile(`(?:public\s+|private\s+|protected\s+)?(?:static\s+)?(?:final\s+)?(?:synchronized\s+)?(?:[\w<>\[\],.\s]+\s+)?(\w+)\s*\([^)]*\)\s*(?:throws\s+[\w.,\s]+)?\s*\{`)
	newRe     = regexp.MustCompile(`\bnew\s+([A-Z]\w*)\s*\(`)
	callSitRe = regexp.MustCompile(`(?:\b([A-Za-z_]\w*)\.)?\b([a-z]\w*)\s*\(`)
)

// javaControl filters control-flow keywords that match the method and call
// regexes.
var javaControl = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"return": true, "synchronized": true, "new": true, "super": true,
	"assert": true, "throw": true, "do": true, "else": true, "try": true,
}

// ParseFile extracts types, methods, imports, and references from Java source.
func (a *adapter) ParseFile(content []byte, fileID, path string) (parse.Result, error) {
	var res parse.Result
	lines := strings.Split(string(content), "\n")

	packageName := "default"
	if m := packageRe.FindStringSubmatch(string(content)); m != nil {
		packageName = m[1]
	}

	var stack []openScope
	depth := 0

	current := func() (openScope, bool) {
		if len(stack) == 0 {
			return openScope{}, false
		}
		return stack[len(stack)-1], true
	}

	for i, line := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "*") {
			depth += strings.Count(line, "{") - strings.Count(line, "}")
			continue
		}

		if m := importRe.FindStringSubmatch(line); m != nil {
			id := model.DeclID(fileID, "import."+m[1], lineNo)
			res.Nodes = append(res.Nodes, model.Node{
				ID: id, Name: m[1], Kind: model.KindImport,
				File: path, Line: lineNo,
				Parent: fileID, Meta: model.Metadata{},
			})
			continue
		}

		if m := typeRe.FindStringSubmatch(line); m != nil && !strings.Contains(line, "new ") {
			keyword, name := m[1], m[2]
			kind := model.KindClass
			if keyword == "interface" {
				kind = model.KindInterface
			}
			id := model.DeclID(fileID, name, lineNo)
			res.Nodes = append(res.Nodes, model.Node{
				ID: id, Name: name, Kind: kind,
				File: path, Line: lineNo,
				Parent: fileID,
				Meta:   model.Metadata{"package": packageName},
			})
			if m[3] != "" {
				res.Edges = append(res.Edges, model.Edge{
					Source: id,
					Target: model.Unresolved(simpleName(m[3]), model.CallConstructor),
					Kind:   model.EdgeInherits,
					Meta:   model.Metadata{},
				})
			}
			for _, intf := range strings.Split(m[4], ",") {
				if intf = strings.TrimSpace(intf); intf != "" {
					res.Edges = append(res.Edges, model.Edge{
						Source: id,
						Target: model.Unresolved(simpleName(intf), model.CallConstructor),
						Kind:   model.EdgeImplements,
						Meta:   model.Metadata{},
					})
				}
			}
			stack = append(stack, openScope{nodeID: id, kind: kind, className: name, depth: depth})
			depth += strings.Count(line, "{") - strings.Count(line, "}")
			continue
		}

		if sc, ok := current(); ok && (sc.kind == model.KindClass || sc.kind == model.KindInterface) {
			if m := methodRe.FindStringSubmatch(line); m != nil && !javaControl[m[1]] {
				id := model.DeclID(sc.nodeID, m[1], lineNo)
				res.Nodes = append(res.Nodes, model.Node{
					ID: id, Name: m[1], Kind: model.KindMethod,
					File: path, Line: lineNo,
					Parent: sc.nodeID, Meta: model.Metadata{},
				})
				stack = append(stack, openScope{nodeID: id, kind: model.KindMethod, className: sc.className, depth: depth})
				depth += strings.Count(line, "{") - strings.Count(line, "}")
				if depth <= stack[len(stack)-1].depth {
					// Single-line method body; the scope closed on the same line.
					stack = stack[:len(stack)-1]
				}
				continue
			}
		}

		res.Edges = append(res.Edges, extractReferences(trimmed, stack, fileID)...)

		depth += strings.Count(line, "{") - strings.Count(line, "}")
		for len(stack) > 0 && depth <= stack[len(stack)-1].depth {
			stack = stack[:len(stack)-1]
		}
	}

	return res, nil
}

// openScope tracks one open declaration on the brace-depth stack.
type openScope struct {
	nodeID    string
	kind      model.NodeKind
	className string
	depth     int // brace depth at which the scope opened
}

// extractReferences emits unresolved reference edges for all call sites on
// the line, sourced from the innermost open declaration (file outside any).
func extractReferences(line string, stack []openScope, fileID string) []model.Edge {
	source := fileID
	className := ""
	if len(stack) > 0 {
		source = stack[len(stack)-1].nodeID
		className = stack[len(stack)-1].className
	}

	var edges []model.Edge

	// new X(...) is an explicit constructor reference.
	consumed := map[int]bool{}
	for _, loc := range newRe.FindAllStringSubmatchIndex(line, -1) {
		name := line[loc[2]:loc[3]]
		edges = append(edges, model.Edge{
			Source: source,
			Target: model.Unresolved(name, model.CallConstructor),
			Kind:   model.EdgeCalls,
			Meta:   model.Metadata{},
		})
		consumed[loc[2]] = true
	}

	for _, m := range callSitRe.FindAllStringSubmatchIndex(line, -1) {
		nameStart := m[4]
		if consumed[nameStart] {
			continue
		}
		var receiver string
		if m[2] >= 0 {
			receiver = line[m[2]:m[3]]
		}
		name := line[m[4]:m[5]]
		if javaControl[name] || javaControl[receiver] {
			continue
		}

		meta := model.Metadata{}
		var target model.Target
		switch {
		case receiver == "this" || receiver == "":
			if className == "" {
				continue // call outside any type body, ignore
			}
			target = model.Unresolved(name, model.CallMethod)
			meta["receiver"] = className
		case isUpper(receiver):
			target = model.Unresolved(name, model.CallStatic)
			meta["qualifier"] = receiver
		default:
			target = model.Unresolved(name, model.CallMethod)
			meta["receiver"] = receiver
		}
		edges = append(edges, model.Edge{Source: source, Target: target, Kind: model.EdgeCalls, Meta: meta})
	}

	return edges
}

func simpleName(qualified string) string {
	qualified = strings.TrimSpace(qualified)
	if dot := strings.LastIndex(qualified, "."); dot >= 0 {
		return qualified[dot+1:]
	}
	return qualified
}

func isUpper(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}
