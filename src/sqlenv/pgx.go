package sqlenv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// PgxEnvelope is the concrete Envelope implementation wrapping a single
// pgx connection, one per worker per spec.md §5's "each worker's SQL
// envelope is not shared" rule. Grounded on the teacher's narrow
// capability-wrapper style (bufferpool.BufferPool wrapping a disk
// manager) generalized from an in-process resource to a network one.
type PgxEnvelope struct {
	dsn  string
	conn *pgx.Conn
	log  *zap.SugaredLogger
}

// NewPgxEnvelope connects to dsn and returns a ready Envelope.
func NewPgxEnvelope(ctx context.Context, dsn string, log *zap.SugaredLogger) (*PgxEnvelope, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlenv: connect: %w", err)
	}
	return &PgxEnvelope{dsn: dsn, conn: conn, log: log}, nil
}

var _ Envelope = (*PgxEnvelope)(nil)

func (e *PgxEnvelope) ExecuteQuery(ctx context.Context, query string) QueryResult {
	start := time.Now()
	tag, err := e.conn.Exec(ctx, query)
	elapsed := time.Since(start)

	if err != nil {
		e.log.Errorw("query failed", "query", query, "elapsed", elapsed, "error", err)
		return classifyError(err)
	}

	e.log.Debugw("query succeeded", "query", query, "elapsed", elapsed, "rows_affected", tag.RowsAffected())
	return QueryResult{Status: StatusSuccess, RowsAffected: tag.RowsAffected()}
}

func (e *PgxEnvelope) QuerySingleValue(ctx context.Context, query string) QueryResult {
	row := e.conn.QueryRow(ctx, query)

	var value string
	if err := row.Scan(&value); err != nil {
		e.log.Errorw("single-value query failed", "query", query, "error", err)
		return classifyError(err)
	}
	return QueryResult{Status: StatusSuccess, Value: value}
}

func (e *PgxEnvelope) Reconnect(ctx context.Context) error {
	_ = e.conn.Close(ctx)

	conn, err := pgx.Connect(ctx, e.dsn)
	if err != nil {
		return fmt.Errorf("sqlenv: reconnect: %w", err)
	}
	e.conn = conn
	e.log.Infow("reconnected")
	return nil
}

func (e *PgxEnvelope) ServerInfo(ctx context.Context) (ServerInfo, error) {
	var version string
	row := e.conn.QueryRow(ctx, "SHOW server_version;")
	if err := row.Scan(&version); err != nil {
		return ServerInfo{}, fmt.Errorf("sqlenv: server info: %w", err)
	}

	return ServerInfo{Flavor: Postgres, Version: parseVersionMajor(version)}, nil
}

func (e *PgxEnvelope) HostInfo() string {
	cfg := e.conn.Config()
	return fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.Database)
}

func (e *PgxEnvelope) Close() error {
	return e.conn.Close(context.Background())
}

// classifyError applies spec.md §4.5's classification rule: connection
// loss maps to StatusServerGone, every other failure to StatusError.
func classifyError(err error) QueryResult {
	status := StatusError
	if isConnectionLost(err) {
		status = StatusServerGone
	}
	return QueryResult{
		Status: status,
		Err:    &ErrorInfo{Code: pgErrorCode(err), Message: err.Error()},
	}
}

func isConnectionLost(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func parseVersionMajor(version string) uint64 {
	var major uint64
	for _, r := range version {
		if r < '0' || r > '9' {
			break
		}
		major = major*10 + uint64(r-'0')
	}
	return major
}
