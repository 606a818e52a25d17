package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/panecraft/pkg/codegen"
	"github.com/matzehuels/panecraft/pkg/config"
	"github.com/matzehuels/panecraft/pkg/design"
	pio "github.com/matzehuels/panecraft/pkg/io"
)

// rootAlias names the root layout in node arguments.
const rootAlias = "root"

// designFile is a design document opened for editing.
type designFile struct {
	path string
	cfg  *config.Config
	doc  *pio.Document
	tree *design.Tree
}

// addFileFlag registers the -f/--file flag shared by design commands.
func addFileFlag(cmd *cobra.Command, path *string) {
	cmd.Flags().StringVarP(path, "file", "f", defaultDesignFile, "design file")
}

// openDesign reads the design at path with the configured policy.
func (c *CLI) openDesign(path string) (*designFile, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	doc, err := pio.ImportJSON(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s does not exist (create it with `%s new -f %s`)", path, appName, path)
		}
		return nil, err
	}
	tree, err := design.Load(doc.Snapshot, design.WithPolicy(cfg.Policy))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Logger.Debug("design loaded", "file", path, "nodes", tree.Len())
	return &designFile{path: path, cfg: cfg, doc: doc, tree: tree}, nil
}

// save writes the tree back if it changed.
func (f *designFile) save() error {
	if !f.tree.Dirty() {
		return nil
	}
	f.doc.Snapshot = f.tree.Snapshot()
	if err := pio.ExportJSON(f.doc, f.path); err != nil {
		return err
	}
	f.tree.MarkClean()
	return nil
}

// resolve maps the "root" alias to the root ID unless a node is really
// called that.
func (f *designFile) resolve(id string) string {
	if id != rootAlias {
		return id
	}
	if _, ok := f.tree.Node(id); ok {
		return id
	}
	return f.tree.RootID()
}

// projectName is the document name, or the file name without extension.
func (f *designFile) projectName() string {
	if f.doc.Name != "" {
		return f.doc.Name
	}
	base := filepath.Base(f.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// crateName is the Cargo package name generated for the design.
func (f *designFile) crateName() string {
	return codegen.CrateName(f.projectName())
}

// editDesign opens path, applies fn and saves the result.
func (c *CLI) editDesign(path string, fn func(f *designFile) error) error {
	f, err := c.openDesign(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		return err
	}
	return f.save()
}

// =============================================================================
// Enum Parsing
// =============================================================================

var (
	directions      = []design.Direction{design.Vertical, design.Horizontal}
	borderStyles    = []design.BorderStyle{design.BorderNone, design.BorderPlain, design.BorderRounded, design.BorderDouble}
	constraintKinds = []design.ConstraintKind{design.KindPercentage, design.KindLength, design.KindMin, design.KindMax}
)

// parseEnum matches s case-insensitively against values.
func parseEnum[T ~string](what, s string, values []T) (T, error) {
	for _, v := range values {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = strings.ToLower(string(v))
	}
	var zero T
	return zero, fmt.Errorf("invalid %s: %q (must be one of: %s)", what, s, strings.Join(names, ", "))
}

func parseDirection(s string) (design.Direction, error) {
	switch strings.ToLower(s) {
	case "v":
		return design.Vertical, nil
	case "h":
		return design.Horizontal, nil
	}
	return parseEnum("direction", s, directions)
}

func parseWidgetType(s string) (design.WidgetType, error) {
	return parseEnum("widget type", s, design.WidgetTypes)
}

func parseBorderStyle(s string) (design.BorderStyle, error) {
	return parseEnum("border style", s, borderStyles)
}

func parseConstraintKind(s string) (design.ConstraintKind, error) {
	return parseEnum("constraint type", s, constraintKinds)
}
