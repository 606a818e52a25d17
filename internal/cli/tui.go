package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/panecraft/pkg/design"
	"github.com/matzehuels/panecraft/pkg/preview"
	"github.com/matzehuels/panecraft/pkg/project"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	resizeStep     = 5  // percentage points per +/- key press
	defaultTUIW    = 100
	defaultTUIH    = 30
	maxOutlineW    = 44
	editorChrome   = 4 // header, blank line, status, help
	addPromptHint  = "paragraph, list, table, block, input or layout"
	titleInputSize = 200
)

func (c *CLI) editCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit a design interactively",
		Long: `Open the design in a terminal editor with the tree on the left and a live
preview on the right.

Keys:
  ↑/↓ j/k   select a node          a       add a pane
  t ⏎       edit title             d       delete
  +/-       grow/shrink the slot   o       flip layout direction
  J/K       move down/up           w       save
  q         quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.openDesign(path)
			if err != nil {
				return err
			}
			final, err := tea.NewProgram(newEditorModel(f), tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			if m, ok := final.(editorModel); ok && m.file.tree.Dirty() {
				printWarning("Quit without saving changes to %s", path)
			}
			return nil
		},
	}

	addFileFlag(cmd, &path)
	return cmd
}

// =============================================================================
// editorModel - Interactive design editor
// =============================================================================

type promptKind int

const (
	promptNone promptKind = iota
	promptAdd
	promptTitle
)

// outlineRow is one line of the tree pane.
type outlineRow struct {
	id         string
	depth      int
	label      string
	constraint string
	layout     bool
}

// editorModel is the bubbletea model of the edit command.
type editorModel struct {
	file   *designFile
	rows   []outlineRow
	cursor int
	offset int

	width  int
	height int

	input  textinput.Model
	prompt promptKind

	status      string
	statusErr   bool
	confirmQuit bool
}

func newEditorModel(f *designFile) editorModel {
	in := textinput.New()
	in.CharLimit = titleInputSize
	in.Width = 40

	m := editorModel{file: f, input: in, width: defaultTUIW, height: defaultTUIH}
	m.refresh("")
	return m
}

func (m editorModel) Init() tea.Cmd {
	return nil
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.scroll()
	case tea.KeyMsg:
		if m.prompt != promptNone {
			return m.updatePrompt(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m editorModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key != "q" && key != "esc" {
		m.confirmQuit = false
	}

	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		if m.file.tree.Dirty() && !m.confirmQuit {
			m.confirmQuit = true
			m.fail(fmt.Errorf("unsaved changes: press q again to quit or w to save"))
			return m, nil
		}
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "a":
		m.open(promptAdd, "Add", "paragraph")
	case "t", "enter":
		n, _ := m.file.tree.Node(m.selected())
		if n.IsLayout() {
			m.fail(fmt.Errorf("layouts have no title"))
			break
		}
		heading := ""
		if n.Data != nil {
			heading = n.Data.Heading()
		}
		m.open(promptTitle, "Title", heading)
	case "d", "delete":
		id := m.selected()
		m.apply(func(t *design.Tree) error { return t.Delete(id) }, "", "Deleted "+id)
	case "+", "=":
		m.resize(resizeStep)
	case "-", "_":
		m.resize(-resizeStep)
	case "o":
		m.flip()
	case "K", "shift+up":
		m.shift(-1)
	case "J", "shift+down":
		m.shift(1)
	case "w", "ctrl+s":
		if err := m.file.save(); err != nil {
			m.fail(err)
		} else {
			m.info("Saved " + m.file.path)
		}
	}
	m.scroll()
	return m, nil
}

func (m editorModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.prompt = promptNone
		m.input.Blur()
		m.info("Cancelled")
		return m, nil
	case "enter":
		val := strings.TrimSpace(m.input.Value())
		kind := m.prompt
		m.prompt = promptNone
		m.input.Blur()
		switch kind {
		case promptAdd:
			m.add(val)
		case promptTitle:
			m.setTitle(val)
		}
		m.scroll()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// Commands
// =============================================================================

func (m *editorModel) open(kind promptKind, placeholder, value string) {
	m.prompt = kind
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

// apply runs fn on the tree, rebuilds the outline and selects the node
// with ID sel (or keeps the cursor when sel is empty).
func (m *editorModel) apply(fn func(t *design.Tree) error, sel, msg string) {
	if err := fn(m.file.tree); err != nil {
		m.fail(err)
		return
	}
	m.refresh(sel)
	m.info(msg)
}

func (m *editorModel) add(kind string) {
	tmpl, err := nodeTemplate(kind)
	if err != nil {
		m.fail(err)
		return
	}
	id, err := m.file.tree.Add(m.targetLayout(), tmpl)
	if err != nil {
		m.fail(err)
		return
	}
	m.refresh(id)
	m.info("Added " + id)
}

func (m *editorModel) setTitle(v string) {
	p := design.Props{Title: &v, Label: &v}
	if err := project.ValidateProps(p); err != nil {
		m.fail(err)
		return
	}
	id := m.selected()
	m.apply(func(t *design.Tree) error { return t.UpdateNodeProps(id, p) }, id, "Renamed "+id)
}

// resize grows the selected slot by delta points, taking them from the next
// slot, or from the previous one for the last slot.
func (m *editorModel) resize(delta float64) {
	id := m.selected()
	parent, idx, ok := m.file.tree.Parent(id)
	if !ok {
		m.fail(design.ErrRootImmutable)
		return
	}
	p, _ := m.file.tree.Node(parent)
	switch {
	case idx+1 < len(p.Constraints):
	case idx > 0:
		idx, delta = idx-1, -delta
	default:
		m.fail(fmt.Errorf("%s is the only pane in its layout", id))
		return
	}
	m.apply(func(t *design.Tree) error { return t.ResizeConstraint(parent, idx, delta) }, id, "Resized "+id)
}

func (m *editorModel) flip() {
	id := m.targetLayout()
	n, _ := m.file.tree.Node(id)
	dir := design.Horizontal
	if n.Direction == design.Horizontal {
		dir = design.Vertical
	}
	m.apply(func(t *design.Tree) error {
		return t.UpdateNodeProps(id, design.Props{Direction: &dir})
	}, m.selected(), fmt.Sprintf("%s is now %s", id, dir))
}

// shift moves the selected node by one position among its siblings.
func (m *editorModel) shift(by int) {
	id := m.selected()
	parent, idx, ok := m.file.tree.Parent(id)
	if !ok {
		m.fail(design.ErrRootImmutable)
		return
	}
	p, _ := m.file.tree.Node(parent)
	to := idx + by
	if to < 0 || to >= len(p.Children) {
		return
	}
	m.apply(func(t *design.Tree) error { return t.Move(id, parent, to) }, id, "Moved "+id)
}

// targetLayout is the selected node if it is a layout, else its parent.
func (m *editorModel) targetLayout() string {
	id := m.selected()
	if n, ok := m.file.tree.Node(id); ok && n.IsLayout() {
		return id
	}
	if p, _, ok := m.file.tree.Parent(id); ok {
		return p
	}
	return m.file.tree.RootID()
}

func (m *editorModel) selected() string {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return m.file.tree.RootID()
	}
	return m.rows[m.cursor].id
}

// refresh rebuilds the outline rows and moves the cursor to sel if given.
func (m *editorModel) refresh(sel string) {
	if sel == "" && m.cursor < len(m.rows) {
		sel = m.rows[m.cursor].id
	}
	m.rows = outlineRows(m.file.tree)
	m.cursor = min(m.cursor, len(m.rows)-1)
	for i, r := range m.rows {
		if r.id == sel {
			m.cursor = i
			break
		}
	}
}

// scroll keeps the cursor inside the visible part of the outline.
func (m *editorModel) scroll() {
	h := m.bodyHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
}

func (m *editorModel) info(msg string) {
	m.status, m.statusErr = msg, false
}

func (m *editorModel) fail(err error) {
	m.status, m.statusErr = err.Error(), true
}

func outlineRows(t *design.Tree) []outlineRow {
	var rows []outlineRow
	t.Walk(func(n design.Node, depth int) bool {
		r := outlineRow{id: n.ID, depth: depth, label: n.Label(), layout: n.IsLayout()}
		if parent, i, ok := t.Parent(n.ID); ok {
			if p, ok := t.Node(parent); ok && i < len(p.Constraints) {
				r.constraint = p.Constraints[i].String()
			}
		}
		rows = append(rows, r)
		return true
	})
	return rows
}

// =============================================================================
// View
// =============================================================================

func (m editorModel) bodyHeight() int {
	return max(m.height-editorChrome, 3)
}

func (m editorModel) View() string {
	var b strings.Builder

	title := appName + " · " + m.file.path
	if m.file.tree.Dirty() {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n\n")

	h := m.bodyHeight()
	outlineW := min(maxOutlineW, m.width/3)
	previewW := max(m.width-outlineW-1, 10)
	left := lipgloss.NewStyle().Width(outlineW).Height(h).MaxHeight(h).Render(m.viewOutline(outlineW))
	right := preview.Render(m.file.tree.Snapshot(), preview.Options{Width: previewW, Height: h})
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	b.WriteString("\n")

	switch {
	case m.prompt != promptNone:
		label := "Add " + listDimStyle.Render("("+addPromptHint+")")
		if m.prompt == promptTitle {
			label = "Title"
		}
		b.WriteString(label + " " + m.input.View())
	case m.statusErr:
		b.WriteString(styleIconError.Render(iconError) + " " + m.status)
	case m.status != "":
		b.WriteString(styleIconSuccess.Render(iconSuccess) + " " + m.status)
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ select  a add  t title  d delete  +/- resize  o flip  J/K move  w save  q quit"))

	return b.String()
}

func (m editorModel) viewOutline(width int) string {
	end := min(m.offset+m.bodyHeight(), len(m.rows))
	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		line := cursor + strings.Repeat("  ", r.depth) + r.label
		if r.constraint != "" {
			line += " " + listDimStyle.Render(r.constraint)
		}
		style := listNormalStyle
		switch {
		case i == m.cursor:
			style = listSelectedStyle
		case r.layout:
			style = StyleHighlight
		}
		lines = append(lines, style.MaxWidth(width).Render(line))
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
