package datacore

import (
	"fmt"

	"github.com/qwikbyte/datacore/internal/typemap"
)

// DeclarationError reports a repository that is wired up incorrectly: an
// entity prototype that cannot be described, a malformed dispatch table, a
// call to a method name that was never registered, or an argument count
// that does not match the declared parameter names. These are programming
// mistakes and surface at registration or at the call site, never later.
type DeclarationError struct {
	Repo   string
	Method string
	Reason string
}

func (e *DeclarationError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("repository %s: method %s: %s", e.Repo, e.Method, e.Reason)
	}
	return fmt.Sprintf("repository %s: %s", e.Repo, e.Reason)
}

// SchemaSyncError reports a failed catalog read or DDL statement while
// synchronizing an entity's table during registration. Registration logs it
// and proceeds, so the error is observable but non-fatal.
type SchemaSyncError struct {
	Table string
	Err   error
}

func (e *SchemaSyncError) Error() string {
	return fmt.Sprintf("schema sync for table %q: %v", e.Table, e.Err)
}

func (e *SchemaSyncError) Unwrap() error { return e.Err }

// ExecutionError reports a driver-level failure while running a registered
// method: acquiring a connection, executing the statement, or reading rows.
// The driver error is wrapped, not retried.
type ExecutionError struct {
	Method string
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("executing %s: %v", e.Method, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// SerializationError reports a value that could not cross the storage
// boundary in either direction. It is distinct from ExecutionError so
// callers can tell a bad value from a bad connection.
type SerializationError = typemap.SerializationError
