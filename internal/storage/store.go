// Package storage is the single access point to persisted JSON documents.
//
// A document is a whole JSON value addressed by name, e.g. "projects" or "notes/park-siti".
// Writers replace documents wholesale. The contract assumes a single writer per document:
// two concurrent Replace calls on the same name race and the last one wins.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrInvalidName = errors.New("invalid document name")
)

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*(/[a-z0-9][a-z0-9_-]*)*$`)

// Store reads and replaces named documents.
type Store interface {
	// Read returns the document body or ErrNotFound.
	Read(ctx context.Context, name string) ([]byte, error)
	// Replace stores data as the whole new body of the document.
	Replace(ctx context.Context, name string, data []byte) error
	// Delete removes the document or returns ErrNotFound.
	Delete(ctx context.Context, name string) error
	Close() error
}

// Options select and configure a backend.
type Options struct {
	Backend       string
	DataDir       string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open returns the backend named by opts.Backend.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", "file":
		return NewFileStore(opts.DataDir)
	case "sqlite":
		return NewSQLiteStore(opts.SQLitePath)
	case "redis":
		return NewRedisStore(opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.RedisPrefix), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
}

// ValidateName rejects names that could escape the document namespace.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// ReadJSON decodes the named document into v.
func ReadJSON(ctx context.Context, s Store, name string, v any) error {
	data, err := s.Read(ctx, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse document %s: %w", name, err)
	}
	return nil
}

// WriteJSON replaces the named document with the indented JSON encoding of v.
func WriteJSON(ctx context.Context, s Store, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal document %s: %w", name, err)
	}
	return s.Replace(ctx, name, data)
}
