package store

import "fmt"

// NewStore builds a backend by kind. dsn is the database path for sqlite
// and the server address for redis.
func NewStore(kind, dsn string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(dsn), nil
	case "redis":
		return NewRedisStore(dsn, ""), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}
