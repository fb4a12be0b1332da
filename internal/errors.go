package internal

import "fmt"

// StorageError represents errors accessing a source's storage files
type StorageError struct {
	Path string
	Op   string // "open", "read", "scan"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ParseError represents errors parsing a single item from a source
type ParseError struct {
	Source Source
	Item   string // file path, storage key, or row identifier
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Item, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ResolveError represents errors locating storage for a project path
type ResolveError struct {
	ProjectPath string
	Base        string
	Err         error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve error [%s] under %s: %v", e.ProjectPath, e.Base, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}
