// Package fstore reads and writes the whole-document JSON collections backing
// the catalog and cart stores. Every write rewrites the full document.
package fstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// CorruptStateError reports a persisted document that could not be read or
// parsed.
type CorruptStateError struct {
	Path string
	Err  error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt document %s: %v", e.Path, e.Err)
}

func (e *CorruptStateError) Unwrap() error { return e.Err }

// PersistenceError reports a failed write of a persisted document.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Read loads the document at path into v and returns the raw bytes read.
// A missing document is not an error: found is false and v is untouched.
// Unreadable or unparsable content yields a *CorruptStateError and leaves v
// untouched.
func Read(path string, v any) (raw []byte, found bool, err error) {
	raw, err = os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &CorruptStateError{Path: path, Err: err}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, false, &CorruptStateError{Path: path, Err: err}
	}
	return raw, true, nil
}

// Write rewrites the document at path with v serialized as indented JSON and
// returns the exact bytes written.
func Write(path string, v any, indent string) ([]byte, error) {
	raw, err := json.MarshalIndent(v, "", indent)
	if err != nil {
		return nil, &PersistenceError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return nil, &PersistenceError{Path: path, Err: err}
	}
	return raw, nil
}
