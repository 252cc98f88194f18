// Package graphstore abstracts the labeled property graph the engine
// indexes into. The core consumes the Driver/Session interfaces and issues
// parameterized Cypher statements; the bundled implementation is backed by
// the official Neo4j driver. Tests substitute in-memory fakes.
package graphstore

import (
	"context"
	"errors"
	"fmt"
)

// Record is one result row keyed by the query's return aliases.
type Record map[string]any

// Runner executes a read query and collects its records.
type Runner interface {
	// Run executes a parameterized query and returns all result records.
	Run(ctx context.Context, query string, params map[string]any) ([]Record, error)
}

// Writer executes a single statement inside its own write transaction.
// Statements issued by the engine are idempotent merges, so a run cut short
// leaves a well-formed prefix in the store.
type Writer interface {
	ExecuteWrite(ctx context.Context, query string, params map[string]any) error
}

// Session is a connected unit of work. Sessions are not safe for concurrent
// use; concurrent workers acquire one session each.
type Session interface {
	Runner
	Writer

	// Close releases the session. Safe to call more than once.
	Close(ctx context.Context) error
}

// Driver is a connected store handle acquired once at startup and passed
// explicitly to the components that need it.
type Driver interface {
	// Session acquires a new session.
	Session(ctx context.Context) (Session, error)

	// Close releases the driver and all underlying connections.
	Close(ctx context.Context) error

	// Info returns metadata about the store implementation.
	Info() StoreInfo
}

// StoreInfo describes the backing store. NativeClient exposes the
// underlying driver for operations the Driver interface does not cover.
type StoreInfo struct {
	Provider     string
	NativeClient any
}

// Config holds the connection parameters for Connect.
type Config struct {
	URI      string
	Username string
	Password string
}

func (c *Config) validate() error {
	if c == nil {
		return errors.New("store config cannot be nil")
	}
	if c.URI == "" {
		return errors.New("store uri cannot be empty")
	}
	return nil
}

// Connect opens a Neo4j-backed driver and verifies connectivity.
func Connect(ctx context.Context, cfg *Config) (Driver, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid store config: %w", err)
	}
	return connectNeo4j(ctx, cfg)
}
