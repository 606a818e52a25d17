package codegen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Crate versions pinned in generated manifests.
const (
	CrosstermVersion = "0.28"
	RatatuiVersion   = "0.29"
)

const defaultCrateName = "tui_app"

type cargoManifest struct {
	Package      cargoPackage      `toml:"package"`
	Dependencies map[string]string `toml:"dependencies"`
}

type cargoPackage struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Edition string `toml:"edition"`
}

// CargoManifest returns a Cargo.toml for a project with the given name.
func CargoManifest(projectName string) (string, error) {
	m := cargoManifest{
		Package: cargoPackage{
			Name:    CrateName(projectName),
			Version: "0.1.0",
			Edition: "2021",
		},
		Dependencies: map[string]string{
			"crossterm": CrosstermVersion,
			"ratatui":   RatatuiVersion,
		},
	}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(m); err != nil {
		return "", fmt.Errorf("encode Cargo.toml: %w", err)
	}
	return buf.String(), nil
}

// CrateName turns a project title into a valid crate name: lower case, with
// anything outside [a-z0-9_-] replaced by '_' and a leading digit prefixed by
// '_'.
func CrateName(projectName string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(projectName) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	name := b.String()
	if name == "" {
		return defaultCrateName
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}
