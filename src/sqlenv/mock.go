package sqlenv

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEnvelope is a testify mock double for Envelope, used by action and
// worker tests so they never need a live database connection.
type MockEnvelope struct {
	mock.Mock
}

var _ Envelope = (*MockEnvelope)(nil)

func (m *MockEnvelope) ExecuteQuery(ctx context.Context, query string) QueryResult {
	args := m.Called(ctx, query)
	return args.Get(0).(QueryResult)
}

func (m *MockEnvelope) QuerySingleValue(ctx context.Context, query string) QueryResult {
	args := m.Called(ctx, query)
	return args.Get(0).(QueryResult)
}

func (m *MockEnvelope) Reconnect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockEnvelope) ServerInfo(ctx context.Context) (ServerInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).(ServerInfo), args.Error(1)
}

func (m *MockEnvelope) HostInfo() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockEnvelope) Close() error {
	args := m.Called()
	return args.Error(0)
}

// Success builds a successful QueryResult, a convenience for tests stubbing
// ExecuteQuery/QuerySingleValue return values.
func Success(rowsAffected int64) QueryResult {
	return QueryResult{Status: StatusSuccess, RowsAffected: rowsAffected}
}

// Failure builds a classified-error QueryResult.
func Failure(code, message string, serverGone bool) QueryResult {
	status := StatusError
	if serverGone {
		status = StatusServerGone
	}
	return QueryResult{Status: status, Err: &ErrorInfo{Code: code, Message: message}}
}
