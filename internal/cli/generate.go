package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/matzehuels/panecraft/pkg/cache"
	"github.com/matzehuels/panecraft/pkg/codegen"
	"github.com/matzehuels/panecraft/pkg/design"
)

// errOutOfDate is returned by generate --check when a file differs.
var errOutOfDate = errors.New("generated files are out of date")

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	path    string // design file
	output  string // main.rs path, "-" or empty for stdout
	cargo   string // Cargo.toml path
	check   bool   // diff instead of writing
	noCache bool   // bypass the artifact cache
}

func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a ratatui program from a design",
		Long: `Generate the Rust source of a ratatui program that draws the design.

Without -o the source is written to stdout. --cargo also writes a Cargo.toml
for the project. With --check nothing is written: the command prints a
unified diff against the existing files and fails if they differ.`,
		Example: `  panecraft generate -o src/main.rs --cargo Cargo.toml
  panecraft generate -o src/main.rs --cargo Cargo.toml --check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.check && (opts.output == "" || opts.output == "-") {
				return fmt.Errorf("--check needs an output file (-o)")
			}
			return c.runGenerate(cmd.Context(), cmd.OutOrStdout(), &opts)
		},
	}

	addFileFlag(cmd, &opts.path)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "main.rs output file (default: stdout)")
	cmd.Flags().StringVar(&opts.cargo, "cargo", "", "also write a Cargo.toml to this path")
	cmd.Flags().BoolVar(&opts.check, "check", false, "diff against existing files instead of writing")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	return cmd
}

// outputFile is one generated file.
type outputFile struct {
	path string
	data []byte
}

func (c *CLI) runGenerate(ctx context.Context, stdout io.Writer, opts *generateOpts) error {
	ctx = withLogger(ctx, c.Logger)
	prog := newProgress(c.Logger)

	f, err := c.openDesign(opts.path)
	if err != nil {
		return err
	}
	arts, err := c.openArtifacts(ctx, f, opts.noCache)
	if err != nil {
		return err
	}
	defer arts.Close()

	snap := f.tree.Snapshot()
	src, cached, err := arts.load(ctx, snap, cache.ArtifactKeyOpts{Kind: cache.KindSource}, func() ([]byte, error) {
		return []byte(codegen.Generate(snap)), nil
	})
	if err != nil {
		return err
	}
	prog.step("source ready", "cached", cached, "bytes", len(src))
	files := []outputFile{{path: opts.output, data: src}}

	if opts.cargo != "" {
		name := f.projectName()
		manifest, _, err := arts.load(ctx, design.Snapshot{}, cache.ArtifactKeyOpts{Kind: cache.KindManifest, Name: codegen.CrateName(name)}, func() ([]byte, error) {
			out, err := codegen.CargoManifest(name)
			return []byte(out), err
		})
		if err != nil {
			return err
		}
		prog.step("manifest ready", "crate", codegen.CrateName(name))
		files = append(files, outputFile{path: opts.cargo, data: manifest})
	}

	if opts.check {
		return checkFiles(stdout, files)
	}

	for _, out := range files {
		if out.path == "" || out.path == "-" {
			if _, err := stdout.Write(out.data); err != nil {
				return err
			}
			continue
		}
		if err := writeFile(out.path, out.data); err != nil {
			return err
		}
		printFile(out.path)
	}
	if opts.output != "" && opts.output != "-" {
		printStats(len(snap.Nodes), len(src), cached)
	}
	prog.done("Generated " + f.crateName())
	return nil
}

// checkFiles prints a unified diff for every file whose content differs
// from the generated one.
func checkFiles(w io.Writer, files []outputFile) error {
	stale := 0
	for _, out := range files {
		current, err := os.ReadFile(out.path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if bytes.Equal(current, out.data) {
			continue
		}
		stale++
		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(current)),
			B:        difflib.SplitLines(string(out.data)),
			FromFile: out.path,
			ToFile:   out.path + " (generated)",
			Context:  3,
		})
		if err != nil {
			return err
		}
		fmt.Fprint(w, diff)
	}
	if stale > 0 {
		return fmt.Errorf("%w: %d of %d", errOutOfDate, stale, len(files))
	}
	printSuccess("Generated files are up to date")
	return nil
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// Artifact Cache
// =============================================================================

// artifacts loads generated files through the configured cache.
type artifacts struct {
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

func (c *CLI) openArtifacts(ctx context.Context, f *designFile, noCache bool) (*artifacts, error) {
	store, err := c.newCache(ctx, f.cfg, noCache)
	if err != nil {
		return nil, err
	}
	return &artifacts{cache: store, keyer: cache.NewDefaultKeyer(), ttl: f.cfg.Cache.TTL}, nil
}

// load returns the artifact for snap and whether it came from the cache.
func (a *artifacts) load(ctx context.Context, snap design.Snapshot, opts cache.ArtifactKeyOpts, gen func() ([]byte, error)) ([]byte, bool, error) {
	hash, err := cache.HashJSON(snap)
	if err != nil {
		return nil, false, err
	}
	computed := false
	data, err := cache.Load(ctx, a.cache, a.keyer.ArtifactKey(hash, opts), opts.Kind, a.ttl, func() ([]byte, error) {
		computed = true
		return gen()
	})
	if err != nil {
		return nil, false, err
	}
	loggerFromContext(ctx).Debug("artifact", "kind", opts.Kind, "cached", !computed, "bytes", len(data))
	return data, !computed, nil
}

func (a *artifacts) Close() error {
	return a.cache.Close()
}
