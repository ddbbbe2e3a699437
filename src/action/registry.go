package action

import (
	"sync"

	"github.com/pstressdb/dbstress/src/errs"
)

// Factory builds an Action from the shared Config. Build must allocate a
// fresh Action on every call; Factory values are returned by Registry
// methods by copy, never by interior reference, so a caller never holds a
// pointer that outlives the Registry's mutex.
type Factory struct {
	Name   string
	Build  func(Config) Action
	Weight int
}

// Registry is the named, weighted set of action factories described in
// spec.md §4.2. All operations are guarded by a single mutex; every
// accessor returns a self-contained value copy, never a borrowed
// reference into factories — the source's ActionRegistry::getReference
// defect this corrects.
type Registry struct {
	mu        sync.Mutex
	factories []Factory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Insert adds a factory. It fails if a factory with the same name already
// exists.
func (r *Registry) Insert(f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.factories {
		if existing.Name == f.Name {
			return errs.NewActionError(f.Name, errDuplicateFactory)
		}
	}
	r.factories = append(r.factories, f)
	return nil
}

// Remove deletes the named factory. It fails if no such factory exists.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, f := range r.factories {
		if f.Name == name {
			r.factories = append(r.factories[:i], r.factories[i+1:]...)
			return nil
		}
	}
	return errs.NewActionError(name, errFactoryNotFound)
}

// Lookup returns a copy of the named factory.
func (r *Registry) Lookup(name string) (Factory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.factories {
		if f.Name == name {
			return f, nil
		}
	}
	return Factory{}, errs.NewActionError(name, errFactoryNotFound)
}

// Has reports whether a factory with the given name exists.
func (r *Registry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.factories {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Size returns the number of registered factories.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.factories)
}

// TotalWeight returns the sum of every factory's weight.
func (r *Registry) TotalWeight() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0
	for _, f := range r.factories {
		total += f.Weight
	}
	return total
}

// LookupByWeightOffset performs the cumulative-weight scan: the first
// factory whose cumulative weight meets or exceeds offset wins.
func (r *Registry) LookupByWeightOffset(offset int) (Factory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accum := 0
	for _, f := range r.factories {
		accum += f.Weight
		if accum >= offset {
			return f, nil
		}
	}
	return Factory{}, errs.NewActionError("lookup_by_weight_offset", errWeightOffsetOutOfRange)
}

// Use bulk-replaces this Registry's factories with other's, atomically
// with respect to both registries' mutexes.
func (r *Registry) Use(other *Registry) {
	other.mu.Lock()
	snapshot := make([]Factory, len(other.factories))
	copy(snapshot, other.factories)
	other.mu.Unlock()

	r.mu.Lock()
	r.factories = snapshot
	r.mu.Unlock()
}

// MakeCustomSqlAction registers a CustomSql factory with no injections.
func (r *Registry) MakeCustomSqlAction(name, sql string, weight int) error {
	return r.Insert(Factory{
		Name:   name,
		Weight: weight,
		Build: func(cfg Config) Action {
			return NewCustomSql(sql, nil)
		},
	})
}

// MakeCustomTableSqlAction registers a CustomSql factory pre-configured
// with the {table} injection point.
func (r *Registry) MakeCustomTableSqlAction(name, sql string, weight int) error {
	return r.Insert(Factory{
		Name:   name,
		Weight: weight,
		Build: func(cfg Config) Action {
			return NewCustomSql(sql, []string{"table"})
		},
	})
}
