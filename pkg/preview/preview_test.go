package preview

import (
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/panecraft/pkg/design"
)

func TestSplit(t *testing.T) {
	P, L, Min, Max := design.Percentage, design.Length, design.Min, design.Max
	tests := []struct {
		name  string
		total int
		cs    []design.Constraint
		want  []int
	}{
		{"percentages", 100, []design.Constraint{P(80), P(20)}, []int{80, 20}},
		{"rounding goes last", 10, []design.Constraint{P(33), P(33), P(33)}, []int{3, 3, 4}},
		{"min grows", 20, []design.Constraint{L(3), Min(5), L(2)}, []int{3, 15, 2}},
		{"max capped", 20, []design.Constraint{L(3), Max(4), Max(20)}, []int{3, 4, 13}},
		{"overflow shrinks from back", 10, []design.Constraint{L(8), L(8)}, []int{8, 2}},
		{"only lengths", 10, []design.Constraint{L(3), L(3)}, []int{3, 7}},
		{"single", 7, []design.Constraint{P(100)}, []int{7}},
		{"zero total", 0, []design.Constraint{P(50), P(50)}, []int{0, 0}},
		{"empty", 10, nil, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.total, tt.cs)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Split(%d, %v) = %v, want %v", tt.total, tt.cs, got, tt.want)
			}
		})
	}
}

func TestSplitSumsToTotal(t *testing.T) {
	P, L, Min, Max := design.Percentage, design.Length, design.Min, design.Max
	sets := [][]design.Constraint{
		{P(64), P(16), P(20)},
		{L(3), P(50), Min(1), Max(10)},
		{Max(2), Max(2)},
		{L(100), P(5)},
	}
	for _, cs := range sets {
		for total := 1; total <= 120; total++ {
			sum := 0
			for _, v := range Split(total, cs) {
				if v < 0 {
					t.Fatalf("Split(%d, %v) has negative size", total, cs)
				}
				sum += v
			}
			if sum != total {
				t.Fatalf("Split(%d, %v) sums to %d", total, cs, sum)
			}
		}
	}
}

func plain() *lipgloss.Renderer {
	return lipgloss.NewRenderer(io.Discard)
}

// checkCanvas verifies the output is exactly w x h cells.
func checkCanvas(t *testing.T, out string, w, h int) []string {
	t.Helper()
	lines := strings.Split(out, "\n")
	if len(lines) != h {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), h, out)
	}
	for i, l := range lines {
		if got := lipgloss.Width(l); got != w {
			t.Fatalf("line %d is %d wide, want %d: %q", i, got, w, l)
		}
	}
	return lines
}

func sample(t *testing.T) design.Snapshot {
	t.Helper()
	tr := design.New()
	root := tr.RootID()
	if _, err := tr.Add(root, design.NewWidget(design.ParagraphData{Title: "Header", Content: "Welcome"})); err != nil {
		t.Fatal(err)
	}
	body, err := tr.Add(root, design.NewLayout(design.Horizontal))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Add(body, design.NewWidget(design.ListData{Items: []string{"alpha", "beta"}, Style: design.Style{BorderStyle: design.BorderRounded}})); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Add(body, design.NewWidget(design.TableData{Title: "Stats"})); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Add(root, design.NewWidget(design.InputData{Label: "Search"})); err != nil {
		t.Fatal(err)
	}
	return tr.Snapshot()
}

func TestRenderDimensions(t *testing.T) {
	s := sample(t)
	for _, size := range [][2]int{{80, 24}, {40, 12}, {120, 40}, {7, 5}, {1, 1}} {
		out := Render(s, Options{Width: size[0], Height: size[1], Renderer: plain()})
		checkCanvas(t, out, size[0], size[1])
	}
}

func TestRenderContent(t *testing.T) {
	out := Render(sample(t), Options{Width: 80, Height: 40, Renderer: plain()})
	for _, want := range []string{"Header", "Welcome", "• alpha", "• beta", "Stats", "Column 1 │ Column 2", "Search", "Enter text...", "╭", "┌"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEmptyRoot(t *testing.T) {
	tr := design.New()
	out := Render(tr.Snapshot(), Options{Width: 20, Height: 3, Renderer: plain()})
	lines := checkCanvas(t, out, 20, 3)
	if !strings.HasPrefix(lines[0], "empty layout") {
		t.Errorf("empty root = %q", out)
	}
}

func TestRenderMissingRoot(t *testing.T) {
	out := Render(design.Snapshot{RootID: "nope"}, Options{Width: 4, Height: 2, Renderer: plain()})
	if out != "    \n    " {
		t.Errorf("Render(missing root) = %q", out)
	}
}

func TestRenderDefaults(t *testing.T) {
	tr := design.New()
	if _, err := tr.Add(tr.RootID(), design.NewWidget(design.BlockData{})); err != nil {
		t.Fatal(err)
	}
	out := Render(tr.Snapshot(), Options{Renderer: plain()})
	checkCanvas(t, out, DefaultWidth, DefaultHeight)
	if !strings.Contains(out, "Block") {
		t.Errorf("default block title missing:\n%s", out)
	}
}

func TestOutline(t *testing.T) {
	ids := []string{"root", "p1", "l2", "b3"}
	tr := design.New(design.WithIDGenerator(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))
	root := tr.RootID()
	if _, err := tr.Add(root, design.NewWidget(design.ParagraphData{Title: "Hello"})); err != nil {
		t.Fatal(err)
	}
	l, _ := tr.Add(root, design.NewLayout(design.Horizontal))
	if _, err := tr.Add(l, design.NewWidget(design.BlockData{})); err != nil {
		t.Fatal(err)
	}

	got := Outline(tr.Snapshot(), PlainOutlineStyles())
	want := "Layout(Vertical)  " + root + "\n" +
		"├── Percentage(80)  Paragraph \"Hello\"  p1\n" +
		"└── Percentage(20)  Layout(Horizontal)  l2\n" +
		"    └── Percentage(100)  Block  b3\n"
	if got != want {
		t.Errorf("Outline() =\n%s\nwant\n%s", got, want)
	}
}
