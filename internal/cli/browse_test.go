package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/codeatlas/pkg/model"
	"github.com/matzehuels/codeatlas/pkg/tree"
)

func browseFixture() *tree.Forest {
	return tree.Build([]model.Node{
		{ID: "a.py", Name: "a.py", Kind: model.KindFile},
		{ID: "a.py::Foo:1", Name: "Foo", Kind: model.KindClass, Parent: "a.py"},
		{ID: "a.py::Foo:1::run:2", Name: "run", Kind: model.KindMethod, Parent: "a.py::Foo:1"},
		{ID: "b.py", Name: "b.py", Kind: model.KindFile},
	})
}

func TestTreeModelInitialRows(t *testing.T) {
	m := newTreeModel(browseFixture())

	// Roots are expanded by default: both files plus a.py's class.
	if len(m.rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(m.rows))
	}
	if m.rows[0].id != "a.py" || m.rows[1].id != "a.py::Foo:1" || m.rows[2].id != "b.py" {
		t.Errorf("row order = %v, %v, %v", m.rows[0].id, m.rows[1].id, m.rows[2].id)
	}
	if m.rows[1].depth != 1 {
		t.Errorf("class depth = %d, want 1", m.rows[1].depth)
	}
}

func TestTreeModelExpandCollapse(t *testing.T) {
	m := newTreeModel(browseFixture())

	// Move to the class row and expand it.
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(treeModel)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(treeModel)

	if len(m.rows) != 4 {
		t.Fatalf("after expand len(rows) = %d, want 4", len(m.rows))
	}
	if m.rows[2].id != "a.py::Foo:1::run:2" {
		t.Errorf("expanded child = %q", m.rows[2].id)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(treeModel)
	if len(m.rows) != 3 {
		t.Errorf("after collapse len(rows) = %d, want 3", len(m.rows))
	}
}

func TestTreeModelCursorBounds(t *testing.T) {
	m := newTreeModel(browseFixture())

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(treeModel)
	if m.cursor != 0 {
		t.Errorf("cursor went above first row: %d", m.cursor)
	}

	for range 10 {
		next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m = next.(treeModel)
	}
	if m.cursor != len(m.rows)-1 {
		t.Errorf("cursor = %d, want last row %d", m.cursor, len(m.rows)-1)
	}
}

func TestTreeModelView(t *testing.T) {
	m := newTreeModel(browseFixture())
	out := m.View()
	if out == "" {
		t.Fatal("View() returned empty string")
	}
	for _, want := range []string{"a.py", "Foo", "b.py"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}
