package action_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pstressdb/dbstress/src/action"
	"github.com/pstressdb/dbstress/src/prand"
	"github.com/pstressdb/dbstress/src/registry"
	"github.com/pstressdb/dbstress/src/sqlenv"
)

func TestCustomSql_NoInjectionRunsTemplateVerbatim(t *testing.T) {
	reg := registry.New(4)
	rng := prand.NewSeeded(1)

	var captured string
	sql := new(sqlenv.MockEnvelope)
	sql.On("ExecuteQuery", mock.Anything, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { captured = args.String(1) }).
		Return(sqlenv.Success(0))

	a := action.NewCustomSql("SELECT 1;", nil)
	err := a.Execute(context.Background(), reg, rng, sql)

	require.NoError(t, err)
	assert.Equal(t, "SELECT 1;", captured)
}

func TestCustomSql_TableInjectionSubstitutesRandomTableName(t *testing.T) {
	reg := registry.New(4)
	seedTables(t, reg, "orders")
	rng := prand.NewSeeded(1)

	var captured string
	sql := new(sqlenv.MockEnvelope)
	sql.On("ExecuteQuery", mock.Anything, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { captured = args.String(1) }).
		Return(sqlenv.Success(0))

	a := action.NewCustomSql("SELECT count(*) FROM {table};", []string{"table"})
	err := a.Execute(context.Background(), reg, rng, sql)

	require.NoError(t, err)
	assert.Equal(t, "SELECT count(*) FROM orders;", captured)
}

func TestNewCustomSql_PanicsOnUnsupportedInjectionPoint(t *testing.T) {
	assert.Panics(t, func() {
		action.NewCustomSql("SELECT {column};", []string{"column"})
	})
}

func TestCustomSql_ReturnsActionErrorOnSqlFailure(t *testing.T) {
	reg := registry.New(4)
	seedTables(t, reg, "orders")
	rng := prand.NewSeeded(1)

	sql := new(sqlenv.MockEnvelope)
	sql.On("ExecuteQuery", mock.Anything, mock.AnythingOfType("string")).Return(sqlenv.Failure("42P01", "missing table", false))

	a := action.NewCustomSql("SELECT * FROM {table};", []string{"table"})
	err := a.Execute(context.Background(), reg, rng, sql)

	assert.Error(t, err)
}
