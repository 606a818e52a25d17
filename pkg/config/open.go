package config

import (
	"context"

	"github.com/matzehuels/panecraft/pkg/cache"
	"github.com/matzehuels/panecraft/pkg/project"
	"github.com/matzehuels/panecraft/pkg/session"
)

// OpenProjects opens the configured project store.
func (c *Config) OpenProjects(ctx context.Context) (project.Store, error) {
	switch c.Storage.Backend {
	case BackendMongo:
		return project.NewMongoStore(ctx, project.MongoConfig{
			URI:      c.Storage.MongoURI,
			Database: c.Storage.MongoDatabase,
		})
	case BackendMemory:
		return project.NewMemoryStore(), nil
	default:
		return project.NewFileStore(c.Storage.Dir)
	}
}

// OpenSessions opens the configured session store.
func (c *Config) OpenSessions(ctx context.Context) (session.Store, error) {
	switch c.Session.Backend {
	case BackendRedis:
		return session.NewRedisStore(ctx, session.RedisConfig{Addr: c.Session.RedisAddr})
	case BackendMemory:
		return session.NewMemoryStore(), nil
	default:
		return session.NewFileStore(c.Session.Dir)
	}
}

// OpenCache opens the configured artifact cache. A file cache that cannot be
// created degrades to no caching.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: c.Cache.RedisAddr, Prefix: AppName + ":cache:"})
	case BackendNone:
		return cache.NewNullCache(), nil
	default:
		fc, err := cache.NewFileCache(c.Cache.Dir)
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return fc, nil
	}
}
