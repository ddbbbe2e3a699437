package action

import "github.com/pstressdb/dbstress/src/registry"

// DefaultRegistry builds the action Registry every workload starts from
// unless it supplies its own, matching the weights in
// libpstress/src/action/action_registry.cpp's initializeDefaultRegisty
// plus the supplemental delete/update actions at lower weight.
func DefaultRegistry(cfg Config) *Registry {
	r := NewRegistry()

	must(r.Insert(Factory{
		Name:   "create_normal_table",
		Weight: 100,
		Build: func(c Config) Action {
			return NewCreateTable(c.Ddl, registry.TableNormal)
		},
	}))

	must(r.Insert(Factory{
		Name:   "drop_table",
		Weight: 100,
		Build: func(c Config) Action {
			return NewDropTable(c.Ddl)
		},
	}))

	must(r.Insert(Factory{
		Name:   "alter_table",
		Weight: 100,
		Build: func(c Config) Action {
			return NewAlterTable(c.Ddl, AllAlterSubcommands)
		},
	}))

	must(r.Insert(Factory{
		Name:   "insert_some_data",
		Weight: 1000,
		Build: func(c Config) Action {
			return NewInsertData(c.Dml, 10)
		},
	}))

	must(r.Insert(Factory{
		Name:   "delete_data",
		Weight: 50,
		Build: func(c Config) Action {
			return NewDeleteData(c.Dml)
		},
	}))

	must(r.Insert(Factory{
		Name:   "update_one_row",
		Weight: 200,
		Build: func(c Config) Action {
			return NewUpdateOneRow(c.Dml)
		},
	}))

	return r
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
