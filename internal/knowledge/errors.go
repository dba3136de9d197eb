package knowledge

import "fmt"

// PersistenceError means the storage medium could not be read or written.
// The in-memory knowledge base is still usable.
type PersistenceError struct {
	Key string
	Op  string // "load" or "save"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("knowledge base %q: %s failed: %v", e.Key, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// MalformedDataError means a stored record exists but cannot be parsed.
type MalformedDataError struct {
	Key string
	Err error
}

func (e *MalformedDataError) Error() string {
	return fmt.Sprintf("knowledge base %q: malformed record: %v", e.Key, e.Err)
}

func (e *MalformedDataError) Unwrap() error { return e.Err }
