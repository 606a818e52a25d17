package cli

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/panecraft/pkg/config"
	"github.com/matzehuels/panecraft/pkg/design"
	pio "github.com/matzehuels/panecraft/pkg/io"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestEditor(t *testing.T) editorModel {
	t.Helper()
	dir := setupEnv(t)
	f := &designFile{
		path: filepath.Join(dir, "edit.json"),
		cfg:  config.Default(),
		doc:  &pio.Document{},
		tree: design.New(),
	}
	return newEditorModel(f)
}

// press sends keys to m in order and returns the resulting model and the
// command returned by the last key.
func press(t *testing.T, m editorModel, keys ...string) (editorModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(editorModel)
	}
	return m, cmd
}

func (m editorModel) constraints(t *testing.T) string {
	t.Helper()
	n, _ := m.file.tree.Node(m.file.tree.RootID())
	return formatConstraints(n.Constraints)
}

func TestEditorAdd(t *testing.T) {
	m := newTestEditor(t)

	m, _ = press(t, m, "a")
	if m.prompt != promptAdd || m.input.Value() != "paragraph" {
		t.Fatalf("prompt = %v, value = %q", m.prompt, m.input.Value())
	}
	m, _ = press(t, m, "enter")
	if got := m.constraints(t); got != "[Percentage(100)]" {
		t.Errorf("constraints = %s", got)
	}
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want the new node", m.cursor)
	}

	m, _ = press(t, m, "a", "ctrl+u", "block", "enter")
	if got := m.constraints(t); got != "[Percentage(80), Percentage(20)]" {
		t.Errorf("constraints = %s", got)
	}
	if n, _ := m.file.tree.Node(m.selected()); n.WidgetType() != design.Block {
		t.Errorf("selected %s, want the new block", n.Label())
	}

	m, _ = press(t, m, "a", "ctrl+u", "gauge", "enter")
	if !m.statusErr {
		t.Error("unknown widget type should set an error status")
	}
	if m.file.tree.Len() != 3 {
		t.Errorf("Len() = %d", m.file.tree.Len())
	}
}

func TestEditorPromptCancel(t *testing.T) {
	m := newTestEditor(t)
	m, _ = press(t, m, "a", "esc")
	if m.prompt != promptNone || m.file.tree.Len() != 1 {
		t.Errorf("prompt = %v, Len() = %d", m.prompt, m.file.tree.Len())
	}
}

func TestEditorTitle(t *testing.T) {
	m := newTestEditor(t)
	m, _ = press(t, m, "t")
	if !m.statusErr || m.prompt != promptNone {
		t.Error("editing the title of a layout should fail")
	}

	m, _ = press(t, m, "a", "enter", "t", "L", "o", "g", "s", "enter")
	n, _ := m.file.tree.Node(m.selected())
	if got := n.Label(); got != `Paragraph "Logs"` {
		t.Errorf("Label() = %q", got)
	}
	if !strings.Contains(m.View(), `Paragraph "Logs"`) {
		t.Error("outline does not show the new title")
	}
}

func TestEditorResize(t *testing.T) {
	m := newTestEditor(t)
	m, _ = press(t, m, "a", "enter", "a", "enter")

	m, _ = press(t, m, "k", "+")
	if got := m.constraints(t); got != "[Percentage(85), Percentage(15)]" {
		t.Errorf("after growing the first slot = %s", got)
	}
	m, _ = press(t, m, "j", "+")
	if got := m.constraints(t); got != "[Percentage(80), Percentage(20)]" {
		t.Errorf("after growing the last slot = %s", got)
	}
	m, _ = press(t, m, "-")
	if got := m.constraints(t); got != "[Percentage(85), Percentage(15)]" {
		t.Errorf("after shrinking the last slot = %s", got)
	}
}

func TestEditorMoveAndFlip(t *testing.T) {
	m := newTestEditor(t)
	m, _ = press(t, m, "a", "enter", "a", "ctrl+u", "block", "enter")
	block := m.selected()

	m, _ = press(t, m, "K")
	if _, idx, _ := m.file.tree.Parent(block); idx != 0 {
		t.Errorf("block index = %d after moving up", idx)
	}
	if m.selected() != block {
		t.Error("cursor did not follow the moved node")
	}

	m, _ = press(t, m, "o")
	root, _ := m.file.tree.Node(m.file.tree.RootID())
	if root.Direction != design.Horizontal {
		t.Errorf("root direction = %s", root.Direction)
	}
}

func TestEditorDeleteRoot(t *testing.T) {
	m := newTestEditor(t)
	m, _ = press(t, m, "d")
	if !m.statusErr {
		t.Error("deleting the root should set an error status")
	}

	m, _ = press(t, m, "a", "enter", "d")
	if m.statusErr || m.file.tree.Len() != 1 {
		t.Errorf("status = %q, Len() = %d", m.status, m.file.tree.Len())
	}
}

func TestEditorQuit(t *testing.T) {
	m := newTestEditor(t)
	if _, cmd := press(t, m, "q"); cmd == nil {
		t.Error("q on a clean design should quit")
	}

	m, _ = press(t, m, "a", "enter")
	m, cmd := press(t, m, "q")
	if cmd != nil || !m.confirmQuit {
		t.Fatal("q with unsaved changes should ask for confirmation")
	}
	if _, cmd = press(t, m, "q"); cmd == nil {
		t.Fatal("second q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("second q did not return tea.Quit")
	}
}

func TestEditorSave(t *testing.T) {
	m := newTestEditor(t)
	m, _ = press(t, m, "a", "enter", "w")
	if m.statusErr || m.file.tree.Dirty() {
		t.Fatalf("save failed: %s", m.status)
	}
	doc, err := pio.ImportJSON(m.file.path)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Nodes) != 2 {
		t.Errorf("saved %d nodes, want 2", len(doc.Nodes))
	}
}

func TestEditorView(t *testing.T) {
	m := newTestEditor(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 90, Height: 20})
	m = next.(editorModel)
	m, _ = press(t, m, "a", "enter")

	view := m.View()
	for _, want := range []string{appName, m.file.path + " *", "Layout(Vertical)", "Added "} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if lines := strings.Count(view, "\n") + 1; lines != 20 {
		t.Errorf("view has %d lines, want 20", lines)
	}
}
