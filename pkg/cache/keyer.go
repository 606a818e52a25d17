package cache

// Artifact kinds used in cache keys.
const (
	KindSource   = "main.rs"
	KindManifest = "cargo.toml"
	KindDOT      = "dot"
	KindSVG      = "svg"
)

// ArtifactKeyOpts are the generation inputs besides the design itself.
type ArtifactKeyOpts struct {
	Kind string `json:"kind"`
	Name string `json:"name,omitempty"` // crate name for manifests
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey returns the key for an artifact generated from the design
	// whose canonical JSON hashes to designHash.
	ArtifactKey(designHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey returns "artifact:<sha256(designHash, opts)>".
func (DefaultKeyer) ArtifactKey(designHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", designHash, opts)
}
