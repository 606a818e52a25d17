package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/panecraft/pkg/cache"
	"github.com/matzehuels/panecraft/pkg/design"
	"github.com/matzehuels/panecraft/pkg/project"
	"github.com/matzehuels/panecraft/pkg/session"
)

// isolate points every XDG directory at a temp dir and clears the
// environment overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv(EnvMongoURI, "")
	t.Setenv(EnvRedisAddr, "")
	return dir
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.Policy != design.DefaultPolicy() {
		t.Errorf("Policy = %+v, want %+v", c.Policy, design.DefaultPolicy())
	}
	if c.Storage.Backend != BackendFile {
		t.Errorf("Storage.Backend = %q, want %q", c.Storage.Backend, BackendFile)
	}
	if want := filepath.Join(dir, "data", AppName, "projects"); c.Storage.Dir != want {
		t.Errorf("Storage.Dir = %q, want %q", c.Storage.Dir, want)
	}
	if want := filepath.Join(dir, "cache", AppName); c.Cache.Dir != want {
		t.Errorf("Cache.Dir = %q, want %q", c.Cache.Dir, want)
	}
	if c.Session.TTL != session.DefaultTTL {
		t.Errorf("Session.TTL = %v, want %v", c.Session.TTL, session.DefaultTTL)
	}
	if c.Cache.TTL != cache.DefaultTTL {
		t.Errorf("Cache.TTL = %v, want %v", c.Cache.TTL, cache.DefaultTTL)
	}
	if c.Server.Addr != DefaultAddr || c.Server.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("Server = %+v", c.Server)
	}
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
[policy]
default_share = 25
min_share = 10

[storage]
backend = "memory"

[session]
backend = "redis"
redis_addr = "localhost:6379"
ttl = "2h"

[cache]
backend = "none"

[server]
addr = "127.0.0.1:9000"
no_auth = true
shutdown_timeout = "3s"
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := design.Policy{DefaultShare: 25, MoveShareCap: 50, MinShare: 10}
	if c.Policy != want {
		t.Errorf("Policy = %+v, want %+v", c.Policy, want)
	}
	if c.Storage.Backend != BackendMemory {
		t.Errorf("Storage.Backend = %q", c.Storage.Backend)
	}
	if c.Session.Backend != BackendRedis || c.Session.TTL != 2*time.Hour {
		t.Errorf("Session = %+v", c.Session)
	}
	if c.Cache.Backend != BackendNone {
		t.Errorf("Cache.Backend = %q", c.Cache.Backend)
	}
	if c.Server.Addr != "127.0.0.1:9000" || !c.Server.NoAuth || c.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("Server = %+v", c.Server)
	}
}

func TestLoadErrors(t *testing.T) {
	isolate(t)
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "[storage]\nbackendd = \"file\"\n", "unknown key"},
		{"bad backend", "[storage]\nbackend = \"sqlite\"\n", "storage.backend"},
		{"mongo without uri", "[storage]\nbackend = \"mongo\"\n", "mongo_uri"},
		{"redis session without addr", "[session]\nbackend = \"redis\"\n", "session.redis_addr"},
		{"redis cache without addr", "[cache]\nbackend = \"redis\"\n", "cache.redis_addr"},
		{"bad cache backend", "[cache]\nbackend = \"memcached\"\n", "cache.backend"},
		{"bad policy", "[policy]\nmin_share = 60\n", "min_share"},
		{"bad toml", "[storage\n", "read config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("Load() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load(missing explicit path) error = nil, want error")
	}
}

func TestLoadEnv(t *testing.T) {
	isolate(t)
	t.Setenv(EnvMongoURI, "mongodb://db:27017")
	t.Setenv(EnvRedisAddr, "cache:6379")

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.Storage.Backend != BackendMongo || c.Storage.MongoURI != "mongodb://db:27017" {
		t.Errorf("Storage = %+v", c.Storage)
	}
	if c.Storage.MongoDatabase != DefaultMongoDatabase {
		t.Errorf("Storage.MongoDatabase = %q", c.Storage.MongoDatabase)
	}
	if c.Session.RedisAddr != "cache:6379" || c.Cache.RedisAddr != "cache:6379" {
		t.Errorf("redis addr not applied: %+v %+v", c.Session, c.Cache)
	}

	// An explicit backend in the file wins over the env default.
	c, err = Load(writeConfig(t, "[storage]\nbackend = \"memory\"\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.Storage.Backend != BackendMemory {
		t.Errorf("Storage.Backend = %q, want memory", c.Storage.Backend)
	}
}

func TestValidateAndSetDefaultsIdempotent(t *testing.T) {
	isolate(t)
	c := Default()
	before := *c
	if err := c.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if *c != before {
		t.Errorf("second call changed config: %+v -> %+v", before, *c)
	}
}

func TestOpenBackends(t *testing.T) {
	dir := isolate(t)
	ctx := context.Background()
	c := Default()
	if want := filepath.Join(dir, "config", AppName, "sessions"); c.Session.Dir != want {
		t.Errorf("Session.Dir = %q, want %q", c.Session.Dir, want)
	}

	ps, err := c.OpenProjects(ctx)
	if err != nil {
		t.Fatalf("OpenProjects() error: %v", err)
	}
	defer ps.Close()
	if _, ok := ps.(*project.FileStore); !ok {
		t.Errorf("OpenProjects() = %T, want *project.FileStore", ps)
	}

	ss, err := c.OpenSessions(ctx)
	if err != nil {
		t.Fatalf("OpenSessions() error: %v", err)
	}
	defer ss.Close()
	if _, ok := ss.(*session.FileStore); !ok {
		t.Errorf("OpenSessions() = %T, want *session.FileStore", ss)
	}

	cc, err := c.OpenCache(ctx)
	if err != nil {
		t.Fatalf("OpenCache() error: %v", err)
	}
	defer cc.Close()
	if _, ok := cc.(*cache.FileCache); !ok {
		t.Errorf("OpenCache() = %T, want *cache.FileCache", cc)
	}

	c.Storage.Backend, c.Session.Backend, c.Cache.Backend = BackendMemory, BackendMemory, BackendNone
	ps, _ = c.OpenProjects(ctx)
	if _, ok := ps.(*project.MemoryStore); !ok {
		t.Errorf("OpenProjects(memory) = %T", ps)
	}
	ss, _ = c.OpenSessions(ctx)
	if _, ok := ss.(*session.MemoryStore); !ok {
		t.Errorf("OpenSessions(memory) = %T", ss)
	}
	cc, _ = c.OpenCache(ctx)
	if _, ok := cc.(*cache.NullCache); !ok {
		t.Errorf("OpenCache(none) = %T", cc)
	}
}
