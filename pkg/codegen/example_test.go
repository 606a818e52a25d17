package codegen_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/panecraft/pkg/codegen"
	"github.com/matzehuels/panecraft/pkg/design"
)

func ExampleGenerate() {
	t := design.New(design.WithIDGenerator(func() func() string {
		ids := []string{"main", "status"}
		return func() string {
			id := ids[0]
			ids = ids[1:]
			return id
		}
	}()))
	_, _ = t.Add(t.RootID(), design.NewWidget(design.BlockData{Title: "Status"}))

	src := codegen.Generate(t.Snapshot())
	for _, line := range strings.Split(src, "\n") {
		if strings.Contains(line, "layout_main") || strings.Contains(line, ".title(") {
			fmt.Println(strings.TrimSpace(line))
		}
	}
	// Output:
	// let layout_main = Layout::default()
	// .title("Status")
	// layout_main[0],
}

func ExampleParseHexColor() {
	r, g, b, _ := codegen.ParseHexColor("#1e90ff")
	fmt.Println(r, g, b)
	// Output:
	// 30 144 255
}
