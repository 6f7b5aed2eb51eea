package cli

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/bimtower/pkg/manifest"
	"github.com/matzehuels/bimtower/pkg/pipeline"
	"github.com/matzehuels/bimtower/pkg/scene"
)

func houseTree(t *testing.T) ElementTreeModel {
	t.Helper()
	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	m, err := runner.LoadDocument(context.Background(), manifest.SimpleHouse(), "simple-house")
	if err != nil {
		t.Fatal(err)
	}
	return NewElementTreeModel(m.Name, scene.Build(m.Snapshot))
}

func press(t *testing.T, m ElementTreeModel, keys ...tea.KeyMsg) ElementTreeModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(ElementTreeModel)
	}
	return m
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyDown  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
)

func TestElementTreeExpanded(t *testing.T) {
	m := houseTree(t)
	if len(m.rows) != 11 {
		t.Fatalf("rows = %d, want 11", len(m.rows))
	}
	if len(m.Roots) != 1 || m.Roots[0] != "project" {
		t.Errorf("roots = %v", m.Roots)
	}
	want := []treeRow{
		{"project", 0}, {"site", 1}, {"building", 2}, {"storey", 3},
		{"north-wall", 4}, {"south-wall", 4}, {"main-door", 5},
	}
	for i, w := range want {
		if m.rows[i] != w {
			t.Errorf("row %d = %+v, want %+v", i, m.rows[i], w)
		}
	}
}

func TestElementTreeNavigation(t *testing.T) {
	m := houseTree(t)

	m = press(t, m, keyUp)
	if m.Cursor != 0 {
		t.Errorf("cursor moved above the first row: %d", m.Cursor)
	}

	m = press(t, m, keyEnter)
	if len(m.rows) != 1 {
		t.Fatalf("collapsed root shows %d rows", len(m.rows))
	}
	m = press(t, m, keyDown)
	if m.Cursor != 0 {
		t.Errorf("cursor moved past the last row: %d", m.Cursor)
	}

	m = press(t, m, keyRight)
	if len(m.rows) != 11 {
		t.Fatalf("expanded root shows %d rows", len(m.rows))
	}

	m = press(t, m, keyDown, keyDown, keyDown, keyDown, keyDown)
	if it, _ := m.Selected(); it.ID != "south-wall" {
		t.Fatalf("selected %q, want south-wall", it.ID)
	}

	m = press(t, m, keyLeft)
	if len(m.rows) != 10 || !m.Collapsed["south-wall"] {
		t.Errorf("left should collapse south-wall, rows = %d", len(m.rows))
	}

	m = press(t, m, keyLeft)
	if it, _ := m.Selected(); it.ID != "storey" {
		t.Errorf("second left selected %q, want parent storey", it.ID)
	}
}

func TestElementTreeCollapseIsolated(t *testing.T) {
	before := houseTree(t)
	after := press(t, before, keyEnter)
	if len(before.Collapsed) != 0 {
		t.Error("Update mutated the previous model's collapsed set")
	}
	if !after.Collapsed["project"] {
		t.Error("project should be collapsed")
	}
}

func TestElementTreeView(t *testing.T) {
	m := press(t, houseTree(t), keyDown, keyDown, keyDown, keyDown)
	view := m.View()
	for _, want := range []string{"Simple house", "north-wall", "IfcWall", "absolute", "[5/11]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestElementTreeQuit(t *testing.T) {
	m := houseTree(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
