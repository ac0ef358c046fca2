package store

import "fmt"

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type OpenOptions struct {
	Backend string
	DBPath  string // sqlite; empty means DefaultDBPath
	Redis   RedisOptions
}

// Open returns the configured backend.
func Open(o OpenOptions) (Backend, error) {
	switch o.Backend {
	case "", BackendSQLite:
		path := o.DBPath
		if path == "" {
			var err error
			if path, err = DefaultDBPath(); err != nil {
				return nil, fmt.Errorf("resolve db path: %w", err)
			}
		}
		return New(path)
	case BackendRedis:
		return NewRedis(o.Redis)
	default:
		return nil, fmt.Errorf("unknown backend %q", o.Backend)
	}
}
