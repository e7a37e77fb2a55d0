package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ditoo31/Dadu-RAP/internal/domain"
)

func seatUsers(t *testing.T, r *Room, ids ...domain.PlayerID) {
	t.Helper()
	for _, id := range ids {
		_, err := r.AddUser(id, "player "+string(id))
		require.NoError(t, err)
	}
}

func TestNormalizeOrderDropsStaleAndDuplicates(t *testing.T) {
	r := NewRoom("AB12")
	seatUsers(t, r, "a", "b")

	r.mu.Lock()
	r.order = append(r.order, "a", "ghost", "b")
	r.normalizeOrder()
	assert.Equal(t, []domain.PlayerID{"a", "b"}, r.order)
	r.mu.Unlock()
}

func TestNormalizeOrderFiltersAdmins(t *testing.T) {
	r := NewRoom("AB12")
	_, err := r.AddAdmin("boss", "Boss")
	require.NoError(t, err)
	seatUsers(t, r, "a")

	r.mu.Lock()
	r.order = append(r.order, "boss")
	r.normalizeOrder()
	assert.Equal(t, []domain.PlayerID{"a"}, r.order)
	r.mu.Unlock()
}

func TestFirstUser(t *testing.T) {
	r := NewRoom("AB12")

	r.mu.Lock()
	assert.Equal(t, domain.PlayerID(""), r.firstUser())
	r.mu.Unlock()

	seatUsers(t, r, "a", "b")

	r.mu.Lock()
	assert.Equal(t, domain.PlayerID("a"), r.firstUser())
	r.mu.Unlock()
}

func TestNextAfterCircular(t *testing.T) {
	r := NewRoom("AB12")
	seatUsers(t, r, "a", "b", "c")

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Equal(t, domain.PlayerID("b"), r.nextAfter("a"))
	assert.Equal(t, domain.PlayerID("c"), r.nextAfter("b"))
	assert.Equal(t, domain.PlayerID("a"), r.nextAfter("c"))
}

func TestNextAfterMissingIDRestartsAtHead(t *testing.T) {
	r := NewRoom("AB12")
	seatUsers(t, r, "a", "b")

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Equal(t, domain.PlayerID("a"), r.nextAfter("gone"))
}

func TestNextAfterSingleUserReturnsSelf(t *testing.T) {
	r := NewRoom("AB12")
	seatUsers(t, r, "a")

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Equal(t, domain.PlayerID("a"), r.nextAfter("a"))
}

func TestNextAfterEmptyOrder(t *testing.T) {
	r := NewRoom("AB12")

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Equal(t, domain.PlayerID(""), r.nextAfter("a"))
}

func TestMoveSwapsNeighbors(t *testing.T) {
	r := NewRoom("AB12")
	seatUsers(t, r, "a", "b", "c")

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.True(t, r.move("b", DirUp))
	assert.Equal(t, []domain.PlayerID{"b", "a", "c"}, r.order)
	assert.True(t, r.move("a", DirDown))
	assert.Equal(t, []domain.PlayerID{"b", "c", "a"}, r.order)
}

func TestMoveAtBoundaryIsNoop(t *testing.T) {
	r := NewRoom("AB12")
	seatUsers(t, r, "a", "b")

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.False(t, r.move("a", DirUp))
	assert.False(t, r.move("b", DirDown))
	assert.Equal(t, []domain.PlayerID{"a", "b"}, r.order)
}

func TestMoveUnknownID(t *testing.T) {
	r := NewRoom("AB12")
	seatUsers(t, r, "a")

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.False(t, r.move("ghost", DirDown))
}
