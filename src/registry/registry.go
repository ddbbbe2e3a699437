// Package registry implements the concurrent metadata registry: a
// fixed-capacity, slot-based catalog of Table snapshots that every
// worker consults to pick tables, mutate their schema representation,
// and serialize create/alter/drop handoffs without blocking readers or
// serializing unrelated DDL.
//
// The design is grounded on the teacher's bufferpool.Manager (a fixed
// array of frames, each behind its own bookkeeping, with atomic
// counters maintained only while holding the relevant lock) and on
// storage/systemcatalog's deep-copy-before-mutate Data.Copy idiom.
package registry

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/pstressdb/dbstress/src/errs"
	"github.com/pstressdb/dbstress/src/pkg/assert"
	"github.com/pstressdb/dbstress/src/pkg/dbg"
	"github.com/pstressdb/dbstress/src/pkg/utils"
)

// DebugLocksEnv, when set to any non-empty value, swaps every slot mutex
// for a dbg.LoggedMutex, tracing every lock/unlock with its caller stack.
// Off by default; the tracing overhead is not meant for a running stress
// test, only for chasing a suspected deadlock in the create/drop
// defragmentation dance.
const DebugLocksEnv = "DBSTRESS_DEBUG_LOCKS"

// mutex is the lock interface a slot uses, satisfied by both *sync.Mutex
// and *dbg.LoggedMutex.
type mutex interface {
	Lock()
	Unlock()
}

func newSlotMutex(idx int) mutex {
	if os.Getenv(DebugLocksEnv) != "" {
		return dbg.NewLoggedMutex(fmt.Sprintf("registry-slot-%d", idx))
	}
	return &sync.Mutex{}
}

// NPos is the sentinel index meaning "no such slot" — either an
// unassigned Reservation index, or a movedTo entry recording that a
// table was dropped rather than relocated.
const NPos = ^uint64(0)

// DefaultCapacity is the registry's default slot count.
const DefaultCapacity = 200

type slot struct {
	mu    mutex
	table atomic.Pointer[Table]
}

// Manager is the concurrent table catalog. Read access (Size, At) is
// lock-free; the three mutating operations each return a Reservation
// that must be completed or cancelled.
type Manager struct {
	capacity     uint64
	slots        []slot
	movedTo      []atomic.Uint64
	tableCount   atomic.Uint64
	reservedSize atomic.Uint64
}

// New returns an empty Manager with the given slot capacity.
func New(capacity int) *Manager {
	assert.Assert(capacity > 0, "registry capacity must be positive, got %d", capacity)

	m := &Manager{
		capacity: uint64(capacity),
		slots:    make([]slot, capacity),
		movedTo:  make([]atomic.Uint64, capacity),
	}
	for i := range m.slots {
		m.slots[i].mu = newSlotMutex(i)
	}
	for i := range m.movedTo {
		m.movedTo[i].Store(NPos)
	}
	return m
}

// Capacity returns the fixed slot count the registry was built with.
func (m *Manager) Capacity() int {
	return int(m.capacity)
}

// Size returns the number of occupied slots from the front: the
// registry's logical table count. Lock-free.
func (m *Manager) Size() uint64 {
	return m.tableCount.Load()
}

// ReservedSize returns the occupied slot count plus in-flight creations.
func (m *Manager) ReservedSize() uint64 {
	return m.reservedSize.Load()
}

// At returns the currently published Table handle at idx, or nil if the
// slot is empty or idx is out of range. May briefly return nil even for
// idx < Size() in a benign race; callers must tolerate this and loop, per
// the "no guessing intended bounds" open question.
func (m *Manager) At(idx uint64) *Table {
	if idx >= m.capacity {
		return nil
	}
	return m.slots[idx].table.Load()
}

// MovedTo returns the forward pointer recorded the last time the table
// previously at idx was relocated by a drop's defragmentation step, or
// NPos if none is recorded.
func (m *Manager) MovedTo(idx uint64) uint64 {
	if idx >= m.capacity {
		return NPos
	}
	return m.movedTo[idx].Load()
}

// Data returns a snapshot slice of every currently-published table
// handle, for callers that want to scan the whole catalog (e.g. seeding
// initial data for each table). The slice itself is a point-in-time
// copy; slots that are empty at the moment of the scan are skipped, so
// every entry is non-nil.
func (m *Manager) Data() []*Table {
	size := m.Size()
	out := make([]*Table, 0, size)
	for i := uint64(0); i < m.capacity; i++ {
		if t := m.At(i); t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Reservation is a scoped handle granting the right to publish or
// withdraw a single metadata mutation. It is "open" while it either
// holds a slot mutex (alter/drop) or has reserved capacity (create).
type Reservation struct {
	mgr   *Manager
	table *Table
	drop  bool
	index uint64
	// held pairs the locked slot mutex with the closure that releases it,
	// non-nil exactly while alter/drop holds a slot lock.
	held *utils.WithUnlock[mutex]
}

// holdSlot locks slot idx's mutex and returns the WithUnlock pairing it
// with its release.
func holdSlot(m *Manager, idx uint64) *utils.WithUnlock[mutex] {
	m.slots[idx].mu.Lock()
	mu := m.slots[idx].mu
	return &utils.WithUnlock[mutex]{
		Resource: mu,
		UnlockFn: func() error {
			mu.Unlock()
			return nil
		},
	}
}

// closedReservation is the zero-value sentinel returned when a mutation
// cannot begin: catalog full for create, or target slot empty for
// alter/drop.
func closedReservation() *Reservation {
	return &Reservation{index: NPos}
}

// Open reports whether this Reservation still grants the right to
// publish or withdraw a mutation.
func (r *Reservation) Open() bool {
	return r.mgr != nil && (r.held != nil || r.index == NPos)
}

// Index returns the slot index this Reservation targets. For an open
// create Reservation that has not yet completed, this is NPos.
func (r *Reservation) Index() uint64 {
	return r.index
}

// Table returns the mutable working copy this Reservation exposes: a
// freshly allocated Table for create, or a deep copy of the current
// snapshot for alter. For drop it is the snapshot about to be removed.
func (r *Reservation) Table() *Table {
	return r.table
}

// Complete publishes the Reservation's mutation. Double-complete and
// complete-after-cancel return a MetadataError.
func (r *Reservation) Complete() error {
	if r.mgr == nil {
		return errs.NewMetadataError("complete", "complete on invalid reservation")
	}
	if r.held == nil && r.index != NPos {
		return errs.NewMetadataError("complete", "double complete not allowed")
	}

	if r.index != NPos {
		if !r.drop {
			r.completeAlter()
		} else {
			r.completeDrop()
		}
	} else {
		r.completeCreate()
	}
	return nil
}

// Cancel withdraws the Reservation without publishing. Cancel after
// complete is a no-op.
func (r *Reservation) Cancel() {
	if r.index == NPos && r.mgr != nil {
		r.mgr.reservedSize.Add(NPos) // -1
	}
	r.mgr = nil
	r.table = nil
	r.index = NPos
	if r.held != nil {
		_ = r.held.Unlock()
		r.held = nil
	}
}

func (r *Reservation) completeAlter() {
	r.mgr.slots[r.index].table.Store(r.table)
	_ = r.held.Unlock()
	r.held = nil
}

// completeDrop implements §4.1.3: if this is the last occupied slot,
// publish empty and shrink; otherwise lock the current tail, move its
// snapshot into the vacated slot, and shrink from the tail instead.
func (r *Reservation) completeDrop() {
	for {
		next := r.mgr.tableCount.Load()
		assert.Assert(next > 0, "dropTable: registry unexpectedly empty while holding slot %d", r.index)
		last := next - 1

		if r.index == last {
			r.mgr.slots[r.index].table.Store(nil)
			r.mgr.tableCount.Add(NPos)
			r.mgr.reservedSize.Add(NPos)
			r.mgr.movedTo[r.index].Store(NPos)
			_ = r.held.Unlock()
			r.held = nil
			return
		}

		r.mgr.slots[last].mu.Lock()
		curLast := r.mgr.slots[last].table.Load()
		if curLast == nil || last != r.mgr.tableCount.Load()-1 {
			r.mgr.slots[last].mu.Unlock()
			continue
		}

		r.mgr.slots[r.index].table.Store(curLast)
		_ = r.held.Unlock()
		r.held = nil

		r.mgr.tableCount.Add(NPos)
		r.mgr.reservedSize.Add(NPos)
		r.mgr.slots[last].table.Store(nil)
		r.mgr.movedTo[last].Store(r.index)
		r.mgr.slots[last].mu.Unlock()
		return
	}
}

// completeCreate implements §4.1.1: acquire the tail mutex (serializing
// against concurrent create/drop), then the mutex for the next free
// slot, publish, and bump tableCount while holding both.
func (r *Reservation) completeCreate() {
	for {
		next := r.mgr.tableCount.Load()

		if next == 0 {
			r.mgr.slots[0].mu.Lock()
			if r.mgr.tableCount.Load() != 0 {
				r.mgr.slots[0].mu.Unlock()
				continue
			}
			r.mgr.slots[0].table.Store(r.table)
			r.mgr.tableCount.Add(1)
			r.mgr.slots[0].mu.Unlock()
			r.index = next
			return
		}

		last := next - 1
		r.mgr.slots[last].mu.Lock()
		curLast := r.mgr.slots[last].table.Load()
		if curLast == nil || next != r.mgr.tableCount.Load() {
			r.mgr.slots[last].mu.Unlock()
			continue
		}

		r.mgr.slots[next].mu.Lock()
		r.mgr.slots[next].table.Store(r.table)
		r.mgr.tableCount.Add(1)
		r.mgr.slots[next].mu.Unlock()
		r.mgr.slots[last].mu.Unlock()

		r.index = next
		return
	}
}

// CreateTable reserves capacity for a new table and returns a
// Reservation carrying a freshly allocated, empty Table snapshot for the
// caller to populate. If the registry is at capacity, the returned
// Reservation is not open.
func (m *Manager) CreateTable() *Reservation {
	res := m.reservedSize.Add(1)
	if res > m.capacity {
		m.reservedSize.Add(NPos) // undo
		return closedReservation()
	}

	return &Reservation{mgr: m, table: &Table{}, index: NPos}
}

// AlterTable locks slot idx and returns a Reservation exposing a deep
// copy of the current snapshot. If the slot is empty, the returned
// Reservation is not open.
func (m *Manager) AlterTable(idx uint64) *Reservation {
	if idx >= m.capacity {
		return closedReservation()
	}

	held := holdSlot(m, idx)
	cur := m.slots[idx].table.Load()
	if cur == nil {
		_ = held.Unlock()
		return closedReservation()
	}

	return &Reservation{
		mgr:   m,
		table: cur.Copy(),
		index: idx,
		held:  held,
	}
}

// DropTable locks slot idx and returns a Reservation exposing the
// snapshot about to be dropped. If the slot is empty, the returned
// Reservation is not open.
func (m *Manager) DropTable(idx uint64) *Reservation {
	if idx >= m.capacity {
		return closedReservation()
	}

	held := holdSlot(m, idx)
	cur := m.slots[idx].table.Load()
	if cur == nil {
		_ = held.Unlock()
		return closedReservation()
	}

	return &Reservation{
		mgr:   m,
		table: cur,
		drop:  true,
		index: idx,
		held:  held,
	}
}
