package sqlenv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pstressdb/dbstress/src/sqlenv"
)

func TestServerInfo_IsMySQLLike(t *testing.T) {
	for _, f := range []sqlenv.Flavor{sqlenv.PS, sqlenv.PXC, sqlenv.MySQL} {
		assert.True(t, sqlenv.ServerInfo{Flavor: f}.IsMySQLLike(), f.String())
	}
	assert.False(t, sqlenv.ServerInfo{Flavor: sqlenv.Postgres}.IsMySQLLike())
}

func TestServerInfo_IsPGLike(t *testing.T) {
	for _, f := range []sqlenv.Flavor{sqlenv.Postgres, sqlenv.PPG} {
		assert.True(t, sqlenv.ServerInfo{Flavor: f}.IsPGLike(), f.String())
	}
	assert.False(t, sqlenv.ServerInfo{Flavor: sqlenv.MySQL}.IsPGLike())
}

func TestServerInfo_MatchingAny_WildcardsAndExact(t *testing.T) {
	psInfo := sqlenv.ServerInfo{Flavor: sqlenv.PS}
	assert.True(t, psInfo.MatchingAny(sqlenv.AnyMySQL))
	assert.False(t, psInfo.MatchingAny(sqlenv.AnyPG))
	assert.True(t, psInfo.MatchingAny(sqlenv.PS))
	assert.False(t, psInfo.MatchingAny(sqlenv.PXC))
}

func TestServerInfo_AfterOrIs(t *testing.T) {
	info := sqlenv.ServerInfo{Flavor: sqlenv.MySQL, Version: 80}
	assert.True(t, info.AfterOrIs(sqlenv.AnyMySQL, 80))
	assert.True(t, info.AfterOrIs(sqlenv.AnyMySQL, 57))
	assert.False(t, info.AfterOrIs(sqlenv.AnyMySQL, 81))
	assert.False(t, info.AfterOrIs(sqlenv.Postgres, 1))
}

func TestServerInfo_Before(t *testing.T) {
	info := sqlenv.ServerInfo{Flavor: sqlenv.Postgres, Version: 14}
	assert.True(t, info.Before(sqlenv.AnyPG, 15))
	assert.False(t, info.Before(sqlenv.AnyPG, 14))
}

func TestServerInfo_Between(t *testing.T) {
	info := sqlenv.ServerInfo{Flavor: sqlenv.PXC, Version: 80}
	assert.True(t, info.Between(sqlenv.AnyMySQL, 57, 80))
	assert.False(t, info.Between(sqlenv.AnyMySQL, 81, 90))
	assert.False(t, info.Between(sqlenv.AnyPG, 1, 100))
}
