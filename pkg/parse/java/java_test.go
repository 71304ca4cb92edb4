package java

import (
	"testing"

	"github.com/matzehuels/codeatlas/pkg/model"
	"github.com/matzehuels/codeatlas/pkg/parse"
)

const zooSource = `package com.example;

import java.util.List;

public class Animal {
    public void speak() {
        Util.log();
    }
}

class Dog extends Animal implements Walker {
    public void bark() {
        speak();
        Animal a = new Animal();
    }
}
`

func parseZoo(t *testing.T) parse.Result {
	t.Helper()
	res, err := Adapter.ParseFile([]byte(zooSource), "Zoo.java", "Zoo.java")
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	return res
}

func TestParseFileNodes(t *testing.T) {
	res := parseZoo(t)

	want := []struct {
		id     string
		kind   model.NodeKind
		parent string
	}{
		{"Zoo.java::import.java.util.List:3", model.KindImport, "Zoo.java"},
		{"Zoo.java::Animal:5", model.KindClass, "Zoo.java"},
		{"Zoo.java::Animal:5::speak:6", model.KindMethod, "Zoo.java::Animal:5"},
		{"Zoo.java::Dog:11", model.KindClass, "Zoo.java"},
		{"Zoo.java::Dog:11::bark:12", model.KindMethod, "Zoo.java::Dog:11"},
	}
	if len(res.Nodes) != len(want) {
		t.Fatalf("len(Nodes) = %d, want %d: %+v", len(res.Nodes), len(want), res.Nodes)
	}
	for i, w := range want {
		n := res.Nodes[i]
		if n.ID != w.id || n.Kind != w.kind || n.Parent != w.parent {
			t.Errorf("Nodes[%d] = {%s %s parent=%s}, want {%s %s parent=%s}",
				i, n.ID, n.Kind, n.Parent, w.id, w.kind, w.parent)
		}
	}
}

func TestParseFileRecordsPackage(t *testing.T) {
	res := parseZoo(t)

	for _, n := range res.Nodes {
		if n.Kind == model.KindClass {
			if got := n.Meta["package"]; got != "com.example" {
				t.Errorf("class %s package = %v, want com.example", n.Name, got)
			}
		}
	}
}

func TestParseFileEdges(t *testing.T) {
	res := parseZoo(t)

	want := []struct {
		source   string
		name     string
		callType model.CallType
		kind     model.EdgeKind
	}{
		{"Zoo.java::Animal:5::speak:6", "log", model.CallStatic, model.EdgeCalls},
		{"Zoo.java::Dog:11", "Animal", model.CallConstructor, model.EdgeInherits},
		{"Zoo.java::Dog:11", "Walker", model.CallConstructor, model.EdgeImplements},
		{"Zoo.java::Dog:11::bark:12", "speak", model.CallMethod, model.EdgeCalls},
		{"Zoo.java::Dog:11::bark:12", "Animal", model.CallConstructor, model.EdgeCalls},
	}

	for _, w := range want {
		found := false
		for _, e := range res.Edges {
			if e.Source == w.source && e.Target.Name() == w.name &&
				e.Target.CallType() == w.callType && e.Kind == w.kind {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing edge %s -> %s (%s, %s)", w.source, w.name, w.callType, w.kind)
		}
	}
}

func TestParseFileBareCallUsesEnclosingClass(t *testing.T) {
	res := parseZoo(t)

	for _, e := range res.Edges {
		if e.Source == "Zoo.java::Dog:11::bark:12" && e.Target.Name() == "speak" {
			if got := e.Meta["receiver"]; got != "Dog" {
				t.Errorf("bare call receiver = %v, want Dog", got)
			}
			return
		}
	}
	t.Fatal("speak() edge not found")
}

func TestParseFileInterface(t *testing.T) {
	src := "package p;\n\npublic interface Walker {\n}\n"
	res, err := Adapter.ParseFile([]byte(src), "Walker.java", "Walker.java")
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(res.Nodes) != 1 || res.Nodes[0].Kind != model.KindInterface {
		t.Fatalf("Nodes = %+v, want single interface", res.Nodes)
	}
	if res.Nodes[0].Name != "Walker" {
		t.Errorf("Name = %q, want Walker", res.Nodes[0].Name)
	}
}

func TestSimpleName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Animal", "Animal"},
		{"com.example.Animal", "Animal"},
		{"  java.util.List ", "List"},
	}
	for _, tt := range tests {
		if got := simpleName(tt.in); got != tt.want {
			t.Errorf("simpleName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
