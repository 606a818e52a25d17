// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about design mutations, code generation, cache lookups and
// storage calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the design and codegen
// packages stay free of any metrics framework.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetDesignHooks(&myDesignHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	err := mutate()
//	observability.Design().OnMutation("add", time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Design Hooks
// =============================================================================

// DesignHooks receives events from the design tree.
type DesignHooks interface {
	// OnMutation records one tree operation. err is nil when it was applied.
	OnMutation(op string, duration time.Duration, err error)
}

// =============================================================================
// Codegen Hooks
// =============================================================================

// CodegenHooks receives events from the code generator.
type CodegenHooks interface {
	// OnGenerate records one generation run.
	OnGenerate(nodeCount, size int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Storage Hooks
// =============================================================================

// StorageHooks receives events from project and session backends.
type StorageHooks interface {
	// OnStorageOp records one backend call, e.g. ("mongo", "project.get").
	OnStorageOp(ctx context.Context, backend, op string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopDesignHooks is a no-op implementation of DesignHooks.
type NoopDesignHooks struct{}

func (NoopDesignHooks) OnMutation(string, time.Duration, error) {}

// NoopCodegenHooks is a no-op implementation of CodegenHooks.
type NoopCodegenHooks struct{}

func (NoopCodegenHooks) OnGenerate(int, int, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopStorageHooks is a no-op implementation of StorageHooks.
type NoopStorageHooks struct{}

func (NoopStorageHooks) OnStorageOp(context.Context, string, string, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	designHooks  DesignHooks  = NoopDesignHooks{}
	codegenHooks CodegenHooks = NoopCodegenHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	storageHooks StorageHooks = NoopStorageHooks{}
	hooksMu      sync.RWMutex
)

// SetDesignHooks registers custom design hooks.
// This should be called once at application startup before any tree operations.
func SetDesignHooks(h DesignHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		designHooks = h
	}
}

// SetCodegenHooks registers custom code generator hooks.
func SetCodegenHooks(h CodegenHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		codegenHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetStorageHooks registers custom storage hooks.
func SetStorageHooks(h StorageHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storageHooks = h
	}
}

// Design returns the registered design hooks.
func Design() DesignHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return designHooks
}

// Codegen returns the registered code generator hooks.
func Codegen() CodegenHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return codegenHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Storage returns the registered storage hooks.
func Storage() StorageHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storageHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	designHooks = NoopDesignHooks{}
	codegenHooks = NoopCodegenHooks{}
	cacheHooks = NoopCacheHooks{}
	storageHooks = NoopStorageHooks{}
}
