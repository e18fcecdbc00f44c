// Package kv provides the persistent key-value backends that the event,
// session and theme stores write through to.
package kv

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/unievents/uni/internal/core"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	// Path is the data directory for file and sqlite backends.
	Path string
	// RedisURL is a redis:// URL or a plain host:port.
	RedisURL string
}

// ErrNotFound is returned by every backend's Get for an unset key.
var ErrNotFound = core.ErrNotFound

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("invalid key %q", key)
	}
	return nil
}

// Open returns the backend named by cfg.Backend. An empty backend means file.
func Open(cfg Config) (core.Storage, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileStore(cfg.Path)
	case BackendSQLite:
		return OpenSQLite(filepath.Join(cfg.Path, "uni.db"))
	case BackendRedis:
		return NewRedisStore(cfg.RedisURL)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: file, sqlite, redis, memory)", cfg.Backend)
	}
}
