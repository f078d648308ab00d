package containers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeResource struct {
	Name string
	Size uint64
}

func TestPoolAddGet(t *testing.T) {
	pool := NewPool[fakeResource](false)

	id, gen := pool.Add(fakeResource{Name: "vertex", Size: 256})
	require.Equal(t, uint32(0), id)
	require.Equal(t, uint32(0), gen)

	got, ok := pool.Get(id, gen)
	require.True(t, ok)
	require.Equal(t, "vertex", got.Name)
	require.Equal(t, uint64(256), got.Size)

	require.Equal(t, 1, pool.Len())
	require.Equal(t, 1, pool.Live())
}

func TestPoolGetFailures(t *testing.T) {
	pool := NewPool[fakeResource](false)
	id, gen := pool.Add(fakeResource{Name: "index"})

	for testName, testCase := range map[string]struct {
		ID         uint32
		Generation uint32
	}{
		"TestOutOfRange":      {ID: 42, Generation: 0},
		"TestWrongGeneration": {ID: id, Generation: gen + 1},
	} {
		t.Run(testName, func(t *testing.T) {
			got, ok := pool.Get(testCase.ID, testCase.Generation)
			require.False(t, ok)
			require.Nil(t, got)
		})
	}
}

func TestPoolRemoveInvalidatesHandle(t *testing.T) {
	pool := NewPool[fakeResource](false)
	id, gen := pool.Add(fakeResource{Name: "uniform", Size: 64})

	evicted, ok := pool.Remove(id, gen)
	require.True(t, ok)
	require.Equal(t, "uniform", evicted.Name)
	require.Equal(t, 0, pool.Live())

	// The slot stays allocated but the old handle no longer resolves.
	require.Equal(t, 1, pool.Len())
	_, ok = pool.Get(id, gen)
	require.False(t, ok)

	// Double remove is a no-op.
	_, ok = pool.Remove(id, gen)
	require.False(t, ok)
}

func TestPoolAppendOnlyNeverReuses(t *testing.T) {
	pool := NewPool[fakeResource](false)
	first, firstGen := pool.Add(fakeResource{Name: "a"})
	pool.Remove(first, firstGen)

	second, _ := pool.Add(fakeResource{Name: "b"})
	require.Equal(t, uint32(1), second, "append-only pools must not reuse vacated slots")
	require.Equal(t, 2, pool.Len())
}

func TestPoolReuseBumpsGeneration(t *testing.T) {
	pool := NewPool[fakeResource](true)
	first, firstGen := pool.Add(fakeResource{Name: "old"})
	pool.Remove(first, firstGen)

	second, secondGen := pool.Add(fakeResource{Name: "new"})
	require.Equal(t, first, second, "reuse pools take the first vacated slot")
	require.Equal(t, firstGen+1, secondGen)

	// The stale handle must not resolve to the new occupant.
	got, ok := pool.Get(first, firstGen)
	require.False(t, ok)
	require.Nil(t, got)

	got, ok = pool.Get(second, secondGen)
	require.True(t, ok)
	require.Equal(t, "new", got.Name)
}

func TestPoolReusePrefersLowestSlot(t *testing.T) {
	pool := NewPool[fakeResource](true)
	ids := make([]uint32, 3)
	gens := make([]uint32, 3)
	for i, name := range []string{"a", "b", "c"} {
		ids[i], gens[i] = pool.Add(fakeResource{Name: name})
	}

	pool.Remove(ids[2], gens[2])
	pool.Remove(ids[0], gens[0])

	id, _ := pool.Add(fakeResource{Name: "d"})
	require.Equal(t, ids[0], id)
	require.Equal(t, 3, pool.Len(), "reuse must not grow the slot table")
}

func TestPoolEach(t *testing.T) {
	pool := NewPool[fakeResource](false)
	a, aGen := pool.Add(fakeResource{Name: "a"})
	pool.Add(fakeResource{Name: "b"})
	pool.Remove(a, aGen)

	var visited []string
	pool.Each(func(id uint32, value *fakeResource) bool {
		visited = append(visited, value.Name)
		return true
	})
	require.Equal(t, []string{"b"}, visited)
}
