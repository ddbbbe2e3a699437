package registry_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pstressdb/dbstress/src/registry"
)

func newCol(name string) registry.Column {
	return registry.Column{Name: name, Type: registry.ColumnInt, PrimaryKey: true}
}

func TestCreateTable_PublishesAtIndexZero(t *testing.T) {
	mgr := registry.New(4)

	res := mgr.CreateTable()
	require.True(t, res.Open())
	res.Table().Name = "t0"
	res.Table().Columns = []registry.Column{newCol("id")}
	require.NoError(t, res.Complete())

	assert.EqualValues(t, 0, res.Index())
	assert.EqualValues(t, 1, mgr.Size())
	require.NotNil(t, mgr.At(0))
	assert.Equal(t, "t0", mgr.At(0).Name)
}

func TestCreateTable_SequentialIndexesAppend(t *testing.T) {
	mgr := registry.New(4)

	for i := 0; i < 3; i++ {
		res := mgr.CreateTable()
		require.True(t, res.Open())
		require.NoError(t, res.Complete())
		assert.EqualValues(t, i, res.Index())
	}
	assert.EqualValues(t, 3, mgr.Size())
}

func TestCreateTable_AtCapacityReturnsClosedReservation(t *testing.T) {
	mgr := registry.New(1)

	first := mgr.CreateTable()
	require.True(t, first.Open())
	require.NoError(t, first.Complete())

	second := mgr.CreateTable()
	assert.False(t, second.Open())
	assert.EqualValues(t, 1, mgr.ReservedSize())
}

func TestCreateTable_CancelReleasesReservedCapacity(t *testing.T) {
	mgr := registry.New(1)

	res := mgr.CreateTable()
	require.True(t, res.Open())
	res.Cancel()

	assert.EqualValues(t, 0, mgr.ReservedSize())
	assert.EqualValues(t, 0, mgr.Size())

	again := mgr.CreateTable()
	assert.True(t, again.Open())
}

func TestAlterTable_PublishesDeepCopyWithoutMutatingOriginal(t *testing.T) {
	mgr := registry.New(4)
	create := mgr.CreateTable()
	create.Table().Name = "orig"
	create.Table().Columns = []registry.Column{newCol("id")}
	require.NoError(t, create.Complete())

	original := mgr.At(0)

	alter := mgr.AlterTable(0)
	require.True(t, alter.Open())
	alter.Table().Columns = append(alter.Table().Columns, registry.Column{Name: "extra", Type: registry.ColumnText})
	require.NoError(t, alter.Complete())

	assert.Len(t, original.Columns, 1, "original snapshot must not observe the alter's mutation")
	assert.Len(t, mgr.At(0).Columns, 2)
}

func TestAlterTable_OnEmptySlotReturnsClosedReservation(t *testing.T) {
	mgr := registry.New(4)
	res := mgr.AlterTable(0)
	assert.False(t, res.Open())
}

func TestAlterTable_OutOfRangeIndexReturnsClosedReservation(t *testing.T) {
	mgr := registry.New(4)
	res := mgr.AlterTable(99)
	assert.False(t, res.Open())
}

func TestDropTable_LastSlotShrinksWithoutMove(t *testing.T) {
	mgr := registry.New(4)
	c0 := mgr.CreateTable()
	require.NoError(t, c0.Complete())
	c1 := mgr.CreateTable()
	require.NoError(t, c1.Complete())

	drop := mgr.DropTable(1)
	require.True(t, drop.Open())
	require.NoError(t, drop.Complete())

	assert.EqualValues(t, 1, mgr.Size())
	assert.Nil(t, mgr.At(1))
	assert.Equal(t, registry.NPos, mgr.MovedTo(1))
}

func TestDropTable_MidSlotMovesTailIntoVacatedSlot(t *testing.T) {
	mgr := registry.New(4)
	names := []string{"a", "b", "c"}
	for _, n := range names {
		res := mgr.CreateTable()
		res.Table().Name = n
		require.NoError(t, res.Complete())
	}

	drop := mgr.DropTable(0)
	require.True(t, drop.Open())
	assert.Equal(t, "a", drop.Table().Name)
	require.NoError(t, drop.Complete())

	assert.EqualValues(t, 2, mgr.Size())
	require.NotNil(t, mgr.At(0))
	assert.Equal(t, "c", mgr.At(0).Name, "tail table should have moved into the vacated slot")
	assert.Nil(t, mgr.At(2))
	assert.EqualValues(t, 0, mgr.MovedTo(2))
}

func TestDropTable_OnEmptySlotReturnsClosedReservation(t *testing.T) {
	mgr := registry.New(4)
	res := mgr.DropTable(0)
	assert.False(t, res.Open())
}

func TestReservation_DoubleCompleteReturnsError(t *testing.T) {
	mgr := registry.New(4)
	res := mgr.CreateTable()
	require.NoError(t, res.Complete())

	err := res.Complete()
	assert.Error(t, err)
}

func TestReservation_CancelThenCompleteReturnsError(t *testing.T) {
	mgr := registry.New(4)
	res := mgr.AlterTable(0)
	assert.False(t, res.Open())

	create := mgr.CreateTable()
	create.Cancel()
	err := create.Complete()
	assert.Error(t, err)
}

func TestNoHolesInvariant_AfterInterleavedCreatesAndDrops(t *testing.T) {
	mgr := registry.New(8)
	for i := 0; i < 5; i++ {
		res := mgr.CreateTable()
		require.NoError(t, res.Complete())
	}

	require.NoError(t, mgr.DropTable(2).Complete())
	require.NoError(t, mgr.DropTable(0).Complete())

	size := mgr.Size()
	assert.EqualValues(t, 3, size)
	for i := uint64(0); i < size; i++ {
		assert.NotNil(t, mgr.At(i), "slot %d below size() must be occupied", i)
	}
	for i := size; i < 8; i++ {
		assert.Nil(t, mgr.At(i), "slot %d at/above size() must be empty", i)
	}
}

func TestConcurrentCreates_NeverExceedCapacity(t *testing.T) {
	const capacity = 16
	mgr := registry.New(capacity)

	var wg sync.WaitGroup
	for i := 0; i < capacity*4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := mgr.CreateTable()
			if !res.Open() {
				return
			}
			_ = res.Complete()
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, mgr.Size(), uint64(capacity))
	assert.LessOrEqual(t, mgr.ReservedSize(), uint64(capacity))
}

func TestConcurrentDrops_OnDistinctSlotsConverge(t *testing.T) {
	const n = 10
	mgr := registry.New(n)
	for i := 0; i < n; i++ {
		res := mgr.CreateTable()
		require.NoError(t, res.Complete())
	}

	// A drop that moves the tail into its slot empties the tail's old
	// index, so a later drop of that index finds an empty slot and gets a
	// closed Reservation. Only the drops that completed shrink the catalog.
	var dropped atomic.Uint64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx uint64) {
			defer wg.Done()
			res := mgr.DropTable(idx)
			if res.Open() && res.Complete() == nil {
				dropped.Add(1)
			}
		}(uint64(i))
	}
	wg.Wait()

	size := mgr.Size()
	assert.EqualValues(t, n-dropped.Load(), size)
	for i := uint64(0); i < size; i++ {
		assert.NotNil(t, mgr.At(i), "slot %d below size() must be occupied", i)
	}
	for i := size; i < n; i++ {
		assert.Nil(t, mgr.At(i), "slot %d at/above size() must be empty", i)
	}
}

func TestDataSnapshot_ReflectsOnlyOccupiedSlots(t *testing.T) {
	mgr := registry.New(4)
	for i := 0; i < 3; i++ {
		res := mgr.CreateTable()
		require.NoError(t, res.Complete())
	}
	require.NoError(t, mgr.DropTable(1).Complete())

	data := mgr.Data()
	assert.Len(t, data, 2)
}

func TestNew_DebugLocksEnvUsesLoggedMutex(t *testing.T) {
	t.Setenv(registry.DebugLocksEnv, "1")

	mgr := registry.New(2)
	res := mgr.CreateTable()
	require.True(t, res.Open())
	require.NoError(t, res.Complete())
	assert.EqualValues(t, 1, mgr.Size())
}
