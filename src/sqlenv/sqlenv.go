// Package sqlenv is the flavor-agnostic SQL execution envelope: every
// action talks to a database exclusively through the Envelope
// interface, never through a driver-specific type. The one concrete
// implementation here is PgxEnvelope, which wraps a single pgx
// connection to a Postgres-family server. Grounded on the teacher's
// queryexecutor.Executor interface (storage-agnostic execution behind a
// narrow contract), adapted to wrap a network SQL driver instead of an
// in-process engine.
package sqlenv

import "context"

// SqlStatus is the coarse outcome of a query, after the envelope has
// classified the underlying driver error.
type SqlStatus int

const (
	// StatusSuccess means the query executed and the result is usable.
	StatusSuccess SqlStatus = iota
	// StatusError means the query failed in a way the connection can
	// recover from (constraint violation, syntax error, deadlock, ...).
	StatusError
	// StatusServerGone means the query failed because the connection
	// itself is no longer usable (network error, server restart,
	// connection reset) and the caller must Reconnect before retrying.
	StatusServerGone
)

func (s SqlStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	case StatusServerGone:
		return "server_gone"
	default:
		return "unknown"
	}
}

// ErrorInfo carries the classified detail of a non-success result.
type ErrorInfo struct {
	Code    string
	Message string
}

// QueryResult is the outcome of a single ExecuteQuery or
// QuerySingleValue call.
type QueryResult struct {
	Status       SqlStatus
	RowsAffected int64
	Value        string // populated by QuerySingleValue on success
	Err          *ErrorInfo
}

// Succeeded reports whether the query ran without error.
func (r QueryResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

// Envelope is the narrow contract every action executes SQL through.
// Implementations own connection lifecycle and flavor classification;
// callers never see a driver-specific error type.
type Envelope interface {
	// ExecuteQuery runs a statement that does not return rows.
	ExecuteQuery(ctx context.Context, query string) QueryResult
	// QuerySingleValue runs a statement expected to return exactly one
	// row with one column, and returns that value as a string in
	// QueryResult.Value.
	QuerySingleValue(ctx context.Context, query string) QueryResult
	// Reconnect tears down and re-establishes the underlying
	// connection. Called after a StatusServerGone result.
	Reconnect(ctx context.Context) error
	// ServerInfo reports the target flavor and version, used by
	// actions that must vary DDL syntax by flavor.
	ServerInfo(ctx context.Context) (ServerInfo, error)
	// HostInfo returns a short human-readable description of the
	// connection target, for logging.
	HostInfo() string
	// Close releases the underlying connection.
	Close() error
}
