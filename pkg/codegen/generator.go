package codegen

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/panecraft/pkg/design"
	"github.com/matzehuels/panecraft/pkg/observability"
)

const header = `use crossterm::{execute, terminal::{disable_raw_mode, enable_raw_mode, EnterAlternateScreen, LeaveAlternateScreen}, event::{self, Event, KeyCode}};
use ratatui::{prelude::*, widgets::*};
use std::io::{self, stdout};

fn main() -> io::Result<()> {
    // Setup terminal
    enable_raw_mode()?;
    let mut stdout = stdout();
    execute!(stdout, EnterAlternateScreen)?;
    let backend = CrosstermBackend::new(stdout);
    let mut terminal = Terminal::new(backend)?;

    // Main loop
    loop {
        terminal.draw(|f| {
            ui(f);
        })?;

        // Handle events
        if event::poll(std::time::Duration::from_millis(100))? {
            if let Event::Key(key) = event::read()? {
                if key.code == KeyCode::Char('q') {
                    break;
                }
            }
        }
    }

    // Restore terminal
    disable_raw_mode()?;
    execute!(terminal.backend_mut(), LeaveAlternateScreen)?;

    Ok(())
}

fn ui(f: &mut Frame) {
    let area = f.area();
`

const footer = "\n}\n"

const (
	bodyIndent   = "    "
	widgetIndent = bodyIndent + "    "
	frameVar     = "f"
)

// generator accumulates the ui function body.
type generator struct {
	buf   bytes.Buffer
	nodes map[string]*design.Node
	names map[string]bool
	seen  map[string]bool
	count int
}

// Generate returns the main.rs source for s.
func Generate(s design.Snapshot) string {
	start := time.Now()
	g := &generator{nodes: s.Nodes, names: make(map[string]bool), seen: make(map[string]bool)}
	g.buf.WriteString(header)
	g.node(s.RootID, "area")
	g.buf.WriteString(footer)
	out := g.buf.String()
	observability.Codegen().OnGenerate(g.count, len(out), time.Since(start))
	return out
}

func (g *generator) writef(format string, args ...any) {
	fmt.Fprintf(&g.buf, format, args...)
}

// node emits the code for id. Missing and already emitted nodes produce
// nothing.
func (g *generator) node(id, area string) {
	n, ok := g.nodes[id]
	if !ok || n == nil || g.seen[id] {
		return
	}
	g.seen[id] = true
	g.count++
	if n.IsLayout() {
		g.layout(id, n)
		return
	}
	g.widget(n, area)
}

// layout emits the split for n and then each child in slot order. Nested
// layouts shadow area with their slot before splitting it.
func (g *generator) layout(id string, n *design.Node) {
	if len(n.Children) == 0 {
		g.writef("%s// Empty layout\n", bodyIndent)
		return
	}
	name := g.layoutVar(id)
	dir := "Direction::Vertical"
	if n.Direction == design.Horizontal {
		dir = "Direction::Horizontal"
	}
	cs := make([]string, len(n.Constraints))
	for i, c := range n.Constraints {
		cs[i] = constraintExpr(c)
	}

	g.writef("%slet %s = Layout::default()\n", bodyIndent, name)
	g.writef("%s    .direction(%s)\n", bodyIndent, dir)
	g.writef("%s    .constraints([%s])\n", bodyIndent, strings.Join(cs, ", "))
	g.writef("%s    .split(area);\n\n", bodyIndent)

	for i, childID := range n.Children {
		child, ok := g.nodes[childID]
		if !ok || child == nil {
			continue
		}
		slot := fmt.Sprintf("%s[%d]", name, i)
		if child.IsLayout() {
			g.writef("%s// Nested layout %d\n", bodyIndent, i)
			g.writef("%slet area = %s;\n", bodyIndent, slot)
		}
		g.node(childID, slot)
	}
}

// layoutVar derives a Rust identifier from the first eight characters of id.
// Names already taken get a numeric suffix.
func (g *generator) layoutVar(id string) string {
	prefix := []rune(id)
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	var b strings.Builder
	b.WriteString("layout_")
	for _, r := range prefix {
		if r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	base := b.String()
	name := base
	for i := 2; g.names[name]; i++ {
		name = fmt.Sprintf("%s_%d", base, i)
	}
	g.names[name] = true
	return name
}

func (g *generator) widget(n *design.Node, area string) {
	if n.Data == nil {
		return
	}
	g.writef("%s%s.render_widget(\n", bodyIndent, frameVar)
	switch d := n.Data.(type) {
	case design.ParagraphData:
		g.paragraph(d)
	case design.ListData:
		g.list(d)
	case design.TableData:
		g.table(d)
	case design.BlockData:
		g.block(d)
	case design.InputData:
		g.input(d)
	}
	g.writef("%s    %s,\n", bodyIndent, area)
	g.writef("%s);\n\n", bodyIndent)
}

func constraintExpr(c design.Constraint) string {
	switch c.Kind {
	case design.KindLength:
		return fmt.Sprintf("Constraint::Length(%d)", c.Value)
	case design.KindMin:
		return fmt.Sprintf("Constraint::Min(%d)", c.Value)
	case design.KindMax:
		return fmt.Sprintf("Constraint::Max(%d)", c.Value)
	default:
		return fmt.Sprintf("Constraint::Percentage(%d)", c.Value)
	}
}
