// Package config loads Panecraft's TOML configuration.
//
// The file lives at $XDG_CONFIG_HOME/panecraft/config.toml (or
// ~/.config/panecraft/config.toml) unless a path is given. Every field has a
// default, so a missing default file is not an error. Environment variables
// override the file:
//
//	PANECRAFT_MONGO_URI    storage.mongo_uri (and selects the mongo backend)
//	PANECRAFT_REDIS_ADDR   session.redis_addr and cache.redis_addr
//
// Example:
//
//	[policy]
//	default_share = 20
//	move_share_cap = 50
//	min_share = 5
//
//	[storage]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[session]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/panecraft/pkg/cache"
	"github.com/matzehuels/panecraft/pkg/design"
	"github.com/matzehuels/panecraft/pkg/session"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Environment variables read by Load.
const (
	EnvMongoURI  = "PANECRAFT_MONGO_URI"
	EnvRedisAddr = "PANECRAFT_REDIS_ADDR"
)

// Defaults.
const (
	DefaultAddr            = ":8080"
	DefaultMongoDatabase   = "panecraft"
	DefaultShutdownTimeout = 10 * time.Second
)

// Config is the whole configuration file.
type Config struct {
	Policy  design.Policy `toml:"policy"`
	Storage StorageConfig `toml:"storage"`
	Session SessionConfig `toml:"session"`
	Cache   CacheConfig   `toml:"cache"`
	Server  ServerConfig  `toml:"server"`
}

// StorageConfig selects where projects are saved.
type StorageConfig struct {
	Backend       string `toml:"backend"` // file | mongo | memory
	Dir           string `toml:"dir"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// SessionConfig selects where sessions are kept.
type SessionConfig struct {
	Backend   string        `toml:"backend"` // file | redis | memory
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr"`
	TTL       time.Duration `toml:"ttl"`
}

// CacheConfig selects the generated-artifact cache.
type CacheConfig struct {
	Backend   string        `toml:"backend"` // file | redis | none
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr"`
	TTL       time.Duration `toml:"ttl"`
}

// ServerConfig configures `panecraft serve`.
type ServerConfig struct {
	Addr            string        `toml:"addr"`
	NoAuth          bool          `toml:"no_auth"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	_ = c.ValidateAndSetDefaults()
	return c
}

// Load reads path, or the default location when path is empty, applies the
// environment and validates the result. Only an explicitly named file must
// exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	c := &Config{}
	md, err := toml.DecodeFile(path, c)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
		}
	}

	c.applyEnv()
	if err := c.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if uri := os.Getenv(EnvMongoURI); uri != "" {
		c.Storage.MongoURI = uri
		if c.Storage.Backend == "" {
			c.Storage.Backend = BackendMongo
		}
	}
	if addr := os.Getenv(EnvRedisAddr); addr != "" {
		c.Session.RedisAddr = addr
		c.Cache.RedisAddr = addr
	}
}

// ValidateAndSetDefaults checks backend names and their required fields and
// fills in defaults. It is idempotent.
func (c *Config) ValidateAndSetDefaults() error {
	if err := c.Policy.ValidateAndSetDefaults(); err != nil {
		return err
	}

	s := &c.Storage
	if s.Backend == "" {
		s.Backend = BackendFile
	}
	switch s.Backend {
	case BackendFile:
		if s.Dir == "" {
			dir, err := DataDir()
			if err != nil {
				return err
			}
			s.Dir = filepath.Join(dir, "projects")
		}
	case BackendMongo:
		if s.MongoURI == "" {
			return fmt.Errorf("storage.mongo_uri is required for the mongo backend (or set %s)", EnvMongoURI)
		}
		if s.MongoDatabase == "" {
			s.MongoDatabase = DefaultMongoDatabase
		}
	case BackendMemory:
	default:
		return fmt.Errorf("invalid storage.backend: %q (must be one of: file, mongo, memory)", s.Backend)
	}

	ss := &c.Session
	if ss.Backend == "" {
		ss.Backend = BackendFile
	}
	switch ss.Backend {
	case BackendFile:
		if ss.Dir == "" {
			dir, err := ConfigDir()
			if err != nil {
				return err
			}
			ss.Dir = filepath.Join(dir, "sessions")
		}
	case BackendMemory:
	case BackendRedis:
		if ss.RedisAddr == "" {
			return fmt.Errorf("session.redis_addr is required for the redis backend (or set %s)", EnvRedisAddr)
		}
	default:
		return fmt.Errorf("invalid session.backend: %q (must be one of: file, redis, memory)", ss.Backend)
	}
	if ss.TTL <= 0 {
		ss.TTL = session.DefaultTTL
	}

	cc := &c.Cache
	if cc.Backend == "" {
		cc.Backend = BackendFile
	}
	switch cc.Backend {
	case BackendFile:
		if cc.Dir == "" {
			dir, err := CacheDir()
			if err != nil {
				return err
			}
			cc.Dir = dir
		}
	case BackendRedis:
		if cc.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend (or set %s)", EnvRedisAddr)
		}
	case BackendNone:
	default:
		return fmt.Errorf("invalid cache.backend: %q (must be one of: file, redis, none)", cc.Backend)
	}
	if cc.TTL <= 0 {
		cc.TTL = cache.DefaultTTL
	}

	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	return nil
}
