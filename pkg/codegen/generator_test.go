package codegen

import (
	"errors"
	"strings"
	"testing"

	"github.com/matzehuels/panecraft/pkg/design"
)

func snapshot(rootID string, nodes map[string]*design.Node) design.Snapshot {
	for id, n := range nodes {
		n.ID = id
	}
	return design.Snapshot{RootID: rootID, Nodes: nodes}
}

func vertical(children []string, cs ...design.Constraint) *design.Node {
	return &design.Node{Type: design.TypeLayout, Direction: design.Vertical, Children: children, Constraints: cs}
}

func widget(d design.WidgetData) *design.Node {
	return &design.Node{Type: design.TypeWidget, Data: d}
}

// body returns the generated ui function body without the fixed header.
func body(t *testing.T, s design.Snapshot) string {
	t.Helper()
	out := Generate(s)
	if !strings.HasPrefix(out, header) {
		t.Fatalf("output does not start with the program header:\n%s", out)
	}
	return strings.TrimPrefix(out, header)
}

func TestGenerateTitledParagraph(t *testing.T) {
	s := snapshot("root", map[string]*design.Node{
		"root": vertical([]string{"p1"}, design.Percentage(100)),
		"p1":   widget(design.ParagraphData{Title: "Hi"}),
	})
	want := `    let layout_root = Layout::default()
        .direction(Direction::Vertical)
        .constraints([Constraint::Percentage(100)])
        .split(area);

    f.render_widget(
        Paragraph::new("Paragraph content")
            .block(Block::default()
                .title("Hi")
                .borders(Borders::ALL)
                .border_type(BorderType::Plain)
                .border_style(Style::default().fg(Color::White)))
            .style(Style::default().fg(Color::White)),
        layout_root[0],
    );


}
`
	if got := body(t, s); got != want {
		t.Errorf("Generate() body =\n%s\nwant\n%s", got, want)
	}
}

func TestGenerateEmptyRoot(t *testing.T) {
	s := snapshot("root", map[string]*design.Node{"root": vertical(nil)})
	if got, want := body(t, s), "    // Empty layout\n\n}\n"; got != want {
		t.Errorf("Generate() body = %q, want %q", got, want)
	}
}

func TestGenerateNestedLayout(t *testing.T) {
	s := snapshot("4f1c2a9e-aaaa", map[string]*design.Node{
		"4f1c2a9e-aaaa": vertical([]string{"side-bar-01", "b"}, design.Length(3), design.Min(10)),
		"side-bar-01": {Type: design.TypeLayout, Direction: design.Horizontal,
			Children: []string{"l"}, Constraints: []design.Constraint{design.Max(40)}},
		"l": widget(design.ListData{Items: []string{"one"}}),
		"b": widget(design.BlockData{}),
	})
	got := body(t, s)
	for _, want := range []string{
		"let layout_4f1c2a9e = Layout::default()",
		".constraints([Constraint::Length(3), Constraint::Min(10)])",
		"    // Nested layout 0\n    let area = layout_4f1c2a9e[0];\n    let layout_side_bar = Layout::default()",
		".direction(Direction::Horizontal)",
		".constraints([Constraint::Max(40)])",
		`List::new([ListItem::new("one")])`,
		"        layout_side_bar[0],\n",
		`.title("Block")`,
		"        layout_4f1c2a9e[1],\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Generate() missing %q in:\n%s", want, got)
		}
	}
	if strings.Index(got, "layout_side_bar[0]") > strings.Index(got, "layout_4f1c2a9e[1]") {
		t.Error("children were not emitted in pre-order")
	}
}

func TestGenerateWidgetDefaults(t *testing.T) {
	tests := []struct {
		name string
		data design.WidgetData
		want []string
		not  []string
	}{
		{
			name: "paragraph",
			data: design.ParagraphData{},
			want: []string{`Paragraph::new("Paragraph content")`, ".style(Style::default().fg(Color::White)),"},
			not:  []string{".block("},
		},
		{
			name: "list",
			data: design.ListData{},
			want: []string{`List::new([ListItem::new("Item 1"), ListItem::new("Item 2"), ListItem::new("Item 3")])`},
			not:  []string{".block("},
		},
		{
			name: "table",
			data: design.TableData{},
			want: []string{
				`Table::new([Row::new([Cell::from("A"), Cell::from("B"), Cell::from("C")])], [Constraint::Percentage(33), Constraint::Percentage(33), Constraint::Percentage(33)])`,
				`.header(Row::new([Cell::from("Column 1"), Cell::from("Column 2"), Cell::from("Column 3")]).style(Style::default().bold()))`,
			},
		},
		{
			name: "block",
			data: design.BlockData{},
			want: []string{"Block::default()", `.title("Block")`, ".border_type(BorderType::Plain)", ".border_style(Style::default().fg(Color::White)),"},
			not:  []string{".style(Style::default().fg"},
		},
		{
			name: "input",
			data: design.InputData{},
			want: []string{`Paragraph::new("Enter text...")`, ".block(Block::default()", ".fg(Color::DarkGray)),"},
			not:  []string{".title("},
		},
		{
			name: "input label",
			data: design.InputData{Label: "Name", Placeholder: "you"},
			want: []string{`Paragraph::new("you")`, `.title("Name")`},
		},
		{
			name: "border without title",
			data: design.ListData{Style: design.Style{BorderStyle: design.BorderRounded, BorderColor: "#00ff00"}},
			want: []string{".block(Block::default()", ".border_type(BorderType::Rounded)", ".fg(Color::Rgb(0, 255, 0))))"},
			not:  []string{".title("},
		},
		{
			name: "none border with title",
			data: design.TableData{Title: "T", Style: design.Style{BorderStyle: design.BorderNone}},
			want: []string{`.title("T")`, ".border_type(BorderType::Plain)"},
		},
		{
			name: "text color",
			data: design.ParagraphData{Style: design.Style{TextColor: "#f80", BorderStyle: design.BorderDouble}},
			want: []string{".style(Style::default().fg(Color::Rgb(255, 136, 0))),", ".border_type(BorderType::Double)"},
		},
		{
			name: "bad color falls back",
			data: design.ParagraphData{Style: design.Style{TextColor: "red"}},
			want: []string{".style(Style::default().fg(Color::White)),"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := snapshot("r", map[string]*design.Node{
				"r": vertical([]string{"w"}, design.Percentage(100)),
				"w": widget(tt.data),
			})
			got := body(t, s)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("missing %q in:\n%s", w, got)
				}
			}
			for _, n := range tt.not {
				if strings.Contains(got, n) {
					t.Errorf("unexpected %q in:\n%s", n, got)
				}
			}
		})
	}
}

func TestGenerateEscapesStrings(t *testing.T) {
	s := snapshot("r", map[string]*design.Node{
		"r": vertical([]string{"w"}, design.Percentage(100)),
		"w": widget(design.ParagraphData{Title: `say "hi"`, Content: "a\\b\nc\td\re"}),
	})
	got := body(t, s)
	for _, want := range []string{`Paragraph::new("a\\b\nc\td\re")`, `.title("say \"hi\"")`} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %s in:\n%s", want, got)
		}
	}
}

func TestGenerateSkipsDanglingChildren(t *testing.T) {
	s := snapshot("r", map[string]*design.Node{
		"r": vertical([]string{"ghost", "w"}, design.Percentage(50), design.Percentage(50)),
		"w": widget(design.BlockData{Title: "real"}),
	})
	got := body(t, s)
	if strings.Contains(got, "r[0]") {
		t.Errorf("dangling child rendered:\n%s", got)
	}
	if !strings.Contains(got, "layout_r[1]") {
		t.Errorf("live child missing:\n%s", got)
	}
}

func TestGenerateMissingRoot(t *testing.T) {
	if got := body(t, design.Snapshot{RootID: "nope"}); got != footer {
		t.Errorf("Generate() body = %q, want %q", got, footer)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	tr := design.New()
	root := tr.RootID()
	l, _ := tr.Add(root, design.NewLayout(design.Horizontal))
	for range 3 {
		_, _ = tr.Add(l, design.NewWidget(design.TableData{Title: "t"}))
	}
	_, _ = tr.Add(root, design.NewWidget(design.InputData{}))

	first := Generate(tr.Snapshot())
	for range 10 {
		if got := Generate(tr.Snapshot()); got != first {
			t.Fatal("Generate() output differs between runs")
		}
	}
}

func TestLayoutVarCollisions(t *testing.T) {
	s := snapshot("abcdefgh-1", map[string]*design.Node{
		"abcdefgh-1": vertical([]string{"abcdefgh-2"}, design.Percentage(100)),
		"abcdefgh-2": vertical([]string{"w"}, design.Percentage(100)),
		"w":          widget(design.BlockData{}),
	})
	got := body(t, s)
	for _, want := range []string{"let layout_abcdefgh = ", "let layout_abcdefgh_2 = ", "layout_abcdefgh_2[0],"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b uint8
		wantErr bool
	}{
		{"#ffffff", 255, 255, 255, false},
		{"#000000", 0, 0, 0, false},
		{"#1a2B3c", 0x1a, 0x2b, 0x3c, false},
		{"#f80", 0xff, 0x88, 0x00, false},
		{"abc", 0xaa, 0xbb, 0xcc, false},
		{"#ffff", 0, 0, 0, true},
		{"#gggggg", 0, 0, 0, true},
		{"", 0, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, g, b, err := ParseHexColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHexColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidColor) {
					t.Errorf("error = %v, want ErrInvalidColor", err)
				}
				return
			}
			if r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("ParseHexColor(%q) = %d,%d,%d; want %d,%d,%d", tt.in, r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestEscapeString(t *testing.T) {
	tests := []struct{ in, want string }{
		{`plain`, `plain`},
		{`back\slash`, `back\\slash`},
		{`"quoted"`, `\"quoted\"`},
		{"tab\there", `tab\there`},
		{"line\r\n", `line\r\n`},
	}
	for _, tt := range tests {
		if got := EscapeString(tt.in); got != tt.want {
			t.Errorf("EscapeString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
