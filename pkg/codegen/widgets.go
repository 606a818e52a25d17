package codegen

import (
	"strings"

	"github.com/matzehuels/panecraft/pkg/design"
)

var (
	defaultItems   = []string{"Item 1", "Item 2", "Item 3"}
	defaultHeaders = []string{"Column 1", "Column 2", "Column 3"}
	defaultRows    = [][]string{{"A", "B", "C"}}
)

const (
	defaultContent     = "Paragraph content"
	defaultBlockTitle  = "Block"
	defaultPlaceholder = "Enter text..."
)

func (g *generator) paragraph(d design.ParagraphData) {
	g.writef("%sParagraph::new(%s)\n", widgetIndent, quote(or(d.Content, defaultContent)))
	g.borderBlock(d.Title, d.Style, false)
	g.textStyle(d.Style, "Color::White")
}

func (g *generator) list(d design.ListData) {
	items := d.Items
	if len(items) == 0 {
		items = defaultItems
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = "ListItem::new(" + quote(it) + ")"
	}
	g.writef("%sList::new([%s])\n", widgetIndent, strings.Join(parts, ", "))
	g.borderBlock(d.Title, d.Style, false)
	g.textStyle(d.Style, "Color::White")
}

func (g *generator) table(d design.TableData) {
	headers := d.Headers
	if len(headers) == 0 {
		headers = defaultHeaders
	}
	rows := d.Rows
	if len(rows) == 0 {
		rows = defaultRows
	}
	rowExprs := make([]string, len(rows))
	for i, r := range rows {
		rowExprs[i] = "Row::new([" + cells(r) + "])"
	}
	widths := make([]string, len(headers))
	for i := range headers {
		widths[i] = "Constraint::Percentage(33)"
	}
	g.writef("%sTable::new([%s], [%s])\n", widgetIndent, strings.Join(rowExprs, ", "), strings.Join(widths, ", "))
	g.writef("%s    .header(Row::new([%s]).style(Style::default().bold()))\n", widgetIndent, cells(headers))
	g.borderBlock(d.Title, d.Style, false)
	g.textStyle(d.Style, "Color::White")
}

func (g *generator) block(d design.BlockData) {
	g.writef("%sBlock::default()\n", widgetIndent)
	g.writef("%s    .title(%s)\n", widgetIndent, quote(or(d.Title, defaultBlockTitle)))
	g.writef("%s    .borders(Borders::ALL)\n", widgetIndent)
	g.writef("%s    .border_type(%s)\n", widgetIndent, borderType(d.BorderStyle))
	g.writef("%s    .border_style(Style::default().fg(%s)),\n", widgetIndent, colorExpr(d.BorderColor, "Color::White"))
}

func (g *generator) input(d design.InputData) {
	g.writef("%sParagraph::new(%s)\n", widgetIndent, quote(or(d.Placeholder, defaultPlaceholder)))
	g.borderBlock(d.Label, d.Style, true)
	g.textStyle(d.Style, "Color::DarkGray")
}

// borderBlock emits a .block(...) wrapper when the widget has a title, has a
// visible border style, or always is set.
func (g *generator) borderBlock(title string, s design.Style, always bool) {
	if title == "" && !s.BorderStyle.Bordered() && !always {
		return
	}
	g.writef("%s    .block(Block::default()\n", widgetIndent)
	if title != "" {
		g.writef("%s        .title(%s)\n", widgetIndent, quote(title))
	}
	g.writef("%s        .borders(Borders::ALL)\n", widgetIndent)
	g.writef("%s        .border_type(%s)\n", widgetIndent, borderType(s.BorderStyle))
	g.writef("%s        .border_style(Style::default().fg(%s)))\n", widgetIndent, colorExpr(s.BorderColor, "Color::White"))
}

func (g *generator) textStyle(s design.Style, def string) {
	g.writef("%s    .style(Style::default().fg(%s)),\n", widgetIndent, colorExpr(s.TextColor, def))
}

func borderType(b design.BorderStyle) string {
	switch b {
	case design.BorderRounded:
		return "BorderType::Rounded"
	case design.BorderDouble:
		return "BorderType::Double"
	default:
		return "BorderType::Plain"
	}
}

func cells(vals []string) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = "Cell::from(" + quote(v) + ")"
	}
	return strings.Join(parts, ", ")
}

func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

var rustEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// EscapeString escapes s for use inside a Rust string literal.
func EscapeString(s string) string { return rustEscaper.Replace(s) }

func quote(s string) string { return `"` + EscapeString(s) + `"` }
