package core_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/aretw0/cirrus/pkg/core"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: t0}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func seqIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("n%d", n)
	}
}

func TestStore_CreateInsertsAtHead(t *testing.T) {
	clock := newFakeClock()
	s := core.NewStore(clock.Now, seqIDs())

	a := s.Create("A", "first")
	clock.Advance(time.Second)
	b := s.Create("B", "second")

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)

	assert.False(t, a.Synced)
	assert.Equal(t, a.CreatedAt, a.UpdatedAt)
	assert.True(t, a.UpdatedAt.Equal(t0))
}

func TestStore_DefaultIDsAreUnique(t *testing.T) {
	s := core.NewStore(nil, nil)
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		n := s.Create("t", "c")
		require.NotEmpty(t, n.ID)
		require.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
	}
}

func TestStore_Update(t *testing.T) {
	clock := newFakeClock()
	s := core.NewStore(clock.Now, seqIDs())
	n := s.Create("Title", "Body")
	s.Confirm(n.ID, n.UpdatedAt, n)

	clock.Advance(time.Minute)
	got, err := s.Update(n.ID, core.Patch{Content: core.String("Edited")})
	require.NoError(t, err)
	assert.Equal(t, "Title", got.Title, "nil fields are left untouched")
	assert.Equal(t, "Edited", got.Content)
	assert.True(t, got.UpdatedAt.Equal(at(1)))
	assert.Equal(t, n.CreatedAt, got.CreatedAt)
	assert.False(t, got.Synced)
}

func TestStore_UpdateNeverMovesBackwards(t *testing.T) {
	clock := newFakeClock()
	s := core.NewStore(clock.Now, seqIDs())
	n := s.Create("T", "C")

	// Clock stands still, then goes back.
	u1, err := s.Update(n.ID, core.Patch{Title: core.String("1")})
	require.NoError(t, err)
	assert.True(t, u1.UpdatedAt.After(n.UpdatedAt))

	clock.Advance(-time.Hour)
	u2, err := s.Update(n.ID, core.Patch{Title: core.String("2")})
	require.NoError(t, err)
	assert.True(t, u2.UpdatedAt.After(u1.UpdatedAt))
}

func TestStore_UpdateMissingLeavesCollectionUnchanged(t *testing.T) {
	s := core.NewStore(nil, seqIDs())
	s.Create("A", "a")
	before := s.List()

	_, err := s.Update("missing", core.Patch{Title: core.String("x")})
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, before, s.List())
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	s := core.NewStore(nil, seqIDs())
	a := s.Create("A", "a")
	s.Create("B", "b")

	assert.True(t, s.Delete(a.ID))
	after := s.List()
	assert.False(t, s.Delete(a.ID))
	assert.Equal(t, after, s.List())
	assert.Equal(t, 1, s.Len())

	_, err := s.Get(a.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStore_ReplaceAllDropsDuplicates(t *testing.T) {
	s := core.NewStore(nil, nil)
	s.ReplaceAll([]core.Note{mk("a", "first", 1, true), mk("b", "b", 1, false), mk("a", "second", 2, false)})

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Title)
	assert.Len(t, s.Pending(), 1)
}

func TestStore_ListReturnsACopy(t *testing.T) {
	s := core.NewStore(nil, seqIDs())
	n := s.Create("A", "a")

	list := s.List()
	list[0].Title = "mutated"

	got, err := s.Get(n.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)
}

func TestStore_Confirm(t *testing.T) {
	clock := newFakeClock()
	s := core.NewStore(clock.Now, seqIDs())
	n := s.Create("A", "a")

	t.Run("applies the remote response when nothing changed", func(t *testing.T) {
		resp := n
		resp.Title = "A (server)"
		assert.True(t, s.Confirm(n.ID, n.UpdatedAt, resp))

		got, _ := s.Get(n.ID)
		assert.True(t, got.Synced)
		assert.Equal(t, "A (server)", got.Title)
	})

	t.Run("is ignored after a newer local edit", func(t *testing.T) {
		basis, _ := s.Get(n.ID)
		clock.Advance(time.Second)
		edited, err := s.Update(n.ID, core.Patch{Title: core.String("newer")})
		require.NoError(t, err)

		assert.False(t, s.Confirm(n.ID, basis.UpdatedAt, basis))
		got, _ := s.Get(n.ID)
		assert.Equal(t, edited, got)
	})

	t.Run("is ignored after a delete", func(t *testing.T) {
		cur, _ := s.Get(n.ID)
		s.Delete(n.ID)
		assert.False(t, s.Confirm(n.ID, cur.UpdatedAt, cur))
		assert.Equal(t, 0, s.Len())
	})

	t.Run("fills missing timestamps from the local copy", func(t *testing.T) {
		m := s.Create("B", "b")
		assert.True(t, s.Confirm(m.ID, m.UpdatedAt, core.Note{ID: m.ID, Title: "B"}))
		got, _ := s.Get(m.ID)
		assert.True(t, got.UpdatedAt.Equal(m.UpdatedAt))
		assert.True(t, got.CreatedAt.Equal(m.CreatedAt))
	})
}

func TestStore_Reconcile(t *testing.T) {
	s := core.NewStore(nil, seqIDs())
	s.Create("A", "a")

	var seen int
	out := s.Reconcile(func(local []core.Note) []core.Note {
		seen = len(local)
		return append(local, mk("r", "remote", 1, true))
	})
	assert.Equal(t, 1, seen)
	assert.Len(t, out, 2)
	assert.Equal(t, 2, s.Len())
}

func TestStore_ConcurrentMutations(t *testing.T) {
	s := core.NewStore(nil, nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				n := s.Create("t", "c")
				_, _ = s.Update(n.ID, core.Patch{Content: core.String("u")})
				_ = s.List()
				if j%2 == 0 {
					s.Delete(n.ID)
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 8*25, s.Len())
}

func testStore_Operations_Properties(t *rapid.T) {
	clock := newFakeClock()
	s := core.NewStore(clock.Now, nil)
	var ids []string

	steps := rapid.IntRange(1, 40).Draw(t, "steps")
	for i := 0; i < steps; i++ {
		clock.Advance(time.Duration(rapid.IntRange(-2, 2).Draw(t, "tick")) * time.Second)
		switch rapid.IntRange(0, 2).Draw(t, "op") {
		case 0:
			n := s.Create(rapid.StringMatching(`[a-z]{0,6}`).Draw(t, "title"), "")
			ids = append(ids, n.ID)
		case 1:
			if len(ids) == 0 {
				continue
			}
			id := rapid.SampledFrom(ids).Draw(t, "update")
			before, err := s.Get(id)
			n, uerr := s.Update(id, core.Patch{Title: core.String("u")})
			if err != nil {
				if uerr == nil {
					t.Fatalf("update of deleted %s succeeded", id)
				}
				continue
			}
			if !n.UpdatedAt.After(before.UpdatedAt) {
				t.Fatalf("UpdatedAt did not advance: %v -> %v", before.UpdatedAt, n.UpdatedAt)
			}
			if n.Synced {
				t.Fatalf("edited note marked synced")
			}
		case 2:
			if len(ids) == 0 {
				continue
			}
			s.Delete(rapid.SampledFrom(ids).Draw(t, "delete"))
		}
	}

	seen := map[string]bool{}
	for _, n := range s.List() {
		if seen[n.ID] {
			t.Fatalf("duplicate id %s", n.ID)
		}
		seen[n.ID] = true
		if n.UpdatedAt.Before(n.CreatedAt) {
			t.Fatalf("%s: UpdatedAt before CreatedAt", n.ID)
		}
	}
}

func TestStore_Operations_Properties(t *testing.T) {
	rapid.Check(t, testStore_Operations_Properties)
}
