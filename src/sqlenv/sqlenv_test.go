package sqlenv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pstressdb/dbstress/src/sqlenv"
)

func TestQueryResult_Succeeded(t *testing.T) {
	assert.True(t, sqlenv.Success(1).Succeeded())
	assert.False(t, sqlenv.Failure("08006", "gone", true).Succeeded())
}

func TestSqlStatus_String(t *testing.T) {
	assert.Equal(t, "success", sqlenv.StatusSuccess.String())
	assert.Equal(t, "error", sqlenv.StatusError.String())
	assert.Equal(t, "server_gone", sqlenv.StatusServerGone.String())
}

func TestFailure_ClassifiesStatusBySeverGoneFlag(t *testing.T) {
	assert.Equal(t, sqlenv.StatusServerGone, sqlenv.Failure("08006", "gone", true).Status)
	assert.Equal(t, sqlenv.StatusError, sqlenv.Failure("42601", "bad sql", false).Status)
}
