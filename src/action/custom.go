package action

import (
	"context"
	"fmt"
	"strings"

	"github.com/pstressdb/dbstress/src/errs"
	"github.com/pstressdb/dbstress/src/prand"
	"github.com/pstressdb/dbstress/src/registry"
	"github.com/pstressdb/dbstress/src/sqlenv"
)

// CustomSql runs a user-supplied template, substituting {name} markers
// per injectParams. Only "table" is a supported injection point today.
// Grounded on libpstress/src/action/custom.cpp's CustomSql.
type CustomSql struct {
	template     string
	injectParams []string
}

// NewCustomSql returns a CustomSql action. injectParams entries must all
// be "table"; any other name is rejected at construction, matching the
// source's constructor-time validation.
func NewCustomSql(template string, injectParams []string) *CustomSql {
	for _, p := range injectParams {
		if p != "table" {
			panic(fmt.Sprintf("custom sql: unsupported injection point %q", p))
		}
	}
	return &CustomSql{template: template, injectParams: injectParams}
}

func (a *CustomSql) Execute(ctx context.Context, reg *registry.Manager, rng *prand.Rand, sql sqlenv.Envelope) error {
	statement := a.template

	for _, inject := range a.injectParams {
		value, err := a.doInject(reg, rng, inject)
		if err != nil {
			return errs.NewActionError("custom_sql", err)
		}
		statement = strings.ReplaceAll(statement, "{"+inject+"}", value)
	}

	result := sql.ExecuteQuery(ctx, statement)
	if !result.Succeeded() {
		return errs.NewActionError("custom_sql", sqlFailure(result))
	}
	return nil
}

// doInject resolves a single injection point. "table" reproduces the
// source's out-of-range index draw (0..size() inclusive rather than
// 0..size()-1): an out-of-range index yields an empty handle from At,
// and the loop simply retries rather than guessing the intended bound.
func (a *CustomSql) doInject(reg *registry.Manager, rng *prand.Rand, point string) (string, error) {
	if point != "table" {
		return "", fmt.Errorf("unknown injection point: %s", point)
	}

	size := reg.Size()
	for {
		idx := rng.UintRange(0, size)
		if t := reg.At(idx); t != nil {
			return t.Name, nil
		}
	}
}
