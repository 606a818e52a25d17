// Package pkg holds the Panecraft libraries.
//
// Panecraft edits nested terminal layouts and turns them into ratatui
// programs. The libraries are organized around the design tree:
//
//  1. [design] - the tree of layouts and widgets and every mutation on it
//  2. [codegen] - Rust main.rs and Cargo.toml generation
//  3. [preview] - terminal rendering and outlines of a design
//  4. [render/nodelink] - Graphviz diagrams of the tree
//  5. [project], [session], [cache] - persistence, identity and artifact caching
//  6. [config], [errors], [io], [observability] - configuration, error codes,
//     design files and hooks
//
// # Data flow
//
//	design.json / HTTP request
//	         ↓
//	    [design] Tree (Add, Move, UpdateConstraint, ...)
//	         ↓
//	    Snapshot
//	         ↓
//	    [codegen] / [preview] / [render/nodelink]
//	         ↓
//	    main.rs, Cargo.toml, terminal preview, SVG
//
// The command line lives in internal/cli and the HTTP API in internal/server.
//
// [design]: https://pkg.go.dev/github.com/matzehuels/panecraft/pkg/design
// [codegen]: https://pkg.go.dev/github.com/matzehuels/panecraft/pkg/codegen
// [preview]: https://pkg.go.dev/github.com/matzehuels/panecraft/pkg/preview
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/panecraft/pkg/render/nodelink
// [project]: https://pkg.go.dev/github.com/matzehuels/panecraft/pkg/project
// [session]: https://pkg.go.dev/github.com/matzehuels/panecraft/pkg/session
// [cache]: https://pkg.go.dev/github.com/matzehuels/panecraft/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/panecraft/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/panecraft/pkg/errors
// [io]: https://pkg.go.dev/github.com/matzehuels/panecraft/pkg/io
// [observability]: https://pkg.go.dev/github.com/matzehuels/panecraft/pkg/observability
package pkg
