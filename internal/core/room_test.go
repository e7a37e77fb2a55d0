package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ditoo31/Dadu-RAP/internal/domain"
)

// checkTurnInvariant asserts that the turn pointer is either nil or a
// user-role player currently present in the room.
func checkTurnInvariant(t *testing.T, state StateDTO) {
	t.Helper()
	if state.Turn == nil {
		return
	}
	for _, p := range state.Players {
		if p.ID == *state.Turn {
			assert.Equal(t, domain.RoleUser, p.Role, "turn holder must be a user")
			return
		}
	}
	t.Fatalf("turn %q not present in players", *state.Turn)
}

func newRoomWithAdmin(t *testing.T) *Room {
	t.Helper()
	r := NewRoom("AB12")
	_, err := r.AddAdmin("admin", "Host")
	require.NoError(t, err)
	return r
}

func TestAddUserFirstJoinerTakesTurn(t *testing.T) {
	r := newRoomWithAdmin(t)

	state, err := r.AddUser("alice", "Alice")
	require.NoError(t, err)
	require.NotNil(t, state.Turn)
	assert.Equal(t, domain.PlayerID("alice"), *state.Turn)

	state, err = r.AddUser("bob", "Bob")
	require.NoError(t, err)
	require.NotNil(t, state.Turn)
	assert.Equal(t, domain.PlayerID("alice"), *state.Turn, "turn stays with the first joiner")
	assert.Equal(t, []domain.PlayerID{"alice", "bob"}, state.UserOrder)
	checkTurnInvariant(t, state)
}

func TestAddAdminLeavesTurnUnset(t *testing.T) {
	r := NewRoom("AB12")
	state, err := r.AddAdmin("admin", "Host")
	require.NoError(t, err)
	assert.Nil(t, state.Turn)
	assert.Empty(t, state.UserOrder)
}

func TestAddUserRejectsBlankName(t *testing.T) {
	r := newRoomWithAdmin(t)
	_, err := r.AddUser("alice", "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 1, r.PlayerCount())
}

func TestRollAdvancesTurnAndRecordsHistory(t *testing.T) {
	r := newRoomWithAdmin(t)
	seatUsers(t, r, "alice", "bob")

	ev, state, err := r.Roll("alice", "ev-1", 4, 1000)
	require.NoError(t, err)
	assert.Equal(t, 4, ev.Value)
	assert.Equal(t, "player alice", ev.Name)
	require.Len(t, state.History, 1)
	assert.Equal(t, domain.PlayerID("alice"), state.History[0].By)
	require.NotNil(t, state.Turn)
	assert.Equal(t, domain.PlayerID("bob"), *state.Turn)
	checkTurnInvariant(t, state)
}

func TestRollRotationIsCircular(t *testing.T) {
	r := newRoomWithAdmin(t)
	seatUsers(t, r, "a", "b", "c")

	order := []domain.PlayerID{"a", "b", "c"}
	for i, id := range order {
		_, state, err := r.Roll(id, fmt.Sprintf("ev-%d", i), 1+i, int64(i))
		require.NoError(t, err)
		checkTurnInvariant(t, state)
	}

	state := r.Snapshot()
	require.NotNil(t, state.Turn)
	assert.Equal(t, domain.PlayerID("a"), *state.Turn, "three rolls bring the turn back to the head")
}

func TestRollOutOfTurnFails(t *testing.T) {
	r := newRoomWithAdmin(t)
	seatUsers(t, r, "alice", "bob")

	_, _, err := r.Roll("bob", "ev-1", 3, 1000)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	state := r.Snapshot()
	assert.Empty(t, state.History, "failed roll must not record history")
	require.NotNil(t, state.Turn)
	assert.Equal(t, domain.PlayerID("alice"), *state.Turn)
}

func TestRollByAdminFails(t *testing.T) {
	r := newRoomWithAdmin(t)
	seatUsers(t, r, "alice")

	_, _, err := r.Roll("admin", "ev-1", 3, 1000)
	assert.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestRollSingleUserKeepsTurn(t *testing.T) {
	r := newRoomWithAdmin(t)
	seatUsers(t, r, "alice")

	_, state, err := r.Roll("alice", "ev-1", 6, 1000)
	require.NoError(t, err)
	require.NotNil(t, state.Turn)
	assert.Equal(t, domain.PlayerID("alice"), *state.Turn)
}

func TestHistoryCapNewestFirst(t *testing.T) {
	r := newRoomWithAdmin(t)
	seatUsers(t, r, "alice")

	for i := 0; i < HistoryLimit+5; i++ {
		_, _, err := r.Roll("alice", fmt.Sprintf("ev-%d", i), 1+i%6, int64(i))
		require.NoError(t, err)
	}

	state := r.Snapshot()
	require.Len(t, state.History, HistoryLimit)
	assert.Equal(t, fmt.Sprintf("ev-%d", HistoryLimit+4), state.History[0].ID, "newest first")
}

func TestSetTurn(t *testing.T) {
	r := newRoomWithAdmin(t)
	seatUsers(t, r, "alice", "bob")

	state, err := r.SetTurn("admin", "bob")
	require.NoError(t, err)
	require.NotNil(t, state.Turn)
	assert.Equal(t, domain.PlayerID("bob"), *state.Turn)
	checkTurnInvariant(t, state)
}

func TestSetTurnRequiresAdmin(t *testing.T) {
	r := newRoomWithAdmin(t)
	seatUsers(t, r, "alice", "bob")

	_, err := r.SetTurn("alice", "bob")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSetTurnUnknownTarget(t *testing.T) {
	r := newRoomWithAdmin(t)
	_, err := r.SetTurn("admin", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetTurnOnAdminFails(t *testing.T) {
	r := newRoomWithAdmin(t)
	seatUsers(t, r, "alice")

	_, err := r.SetTurn("admin", "admin")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	state := r.Snapshot()
	require.NotNil(t, state.Turn)
	assert.Equal(t, domain.PlayerID("alice"), *state.Turn, "state unchanged after failure")
}

func TestSetTurnRepairsMissingOrderEntry(t *testing.T) {
	r := newRoomWithAdmin(t)
	seatUsers(t, r, "alice", "bob")

	r.mu.Lock()
	r.dropFromOrder("bob")
	r.mu.Unlock()

	state, err := r.SetTurn("admin", "bob")
	require.NoError(t, err)
	assert.Contains(t, state.UserOrder, domain.PlayerID("bob"))
}

func TestMoveUserBoundaryFailsWithoutChange(t *testing.T) {
	r := newRoomWithAdmin(t)
	seatUsers(t, r, "alice", "bob", "carol")

	_, err := r.MoveUser("admin", "alice", DirUp)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	state := r.Snapshot()
	assert.Equal(t, []domain.PlayerID{"alice", "bob", "carol"}, state.UserOrder)
}

func TestMoveUserSwaps(t *testing.T) {
	r := newRoomWithAdmin(t)
	seatUsers(t, r, "alice", "bob", "carol")

	state, err := r.MoveUser("admin", "carol", DirUp)
	require.NoError(t, err)
	assert.Equal(t, []domain.PlayerID{"alice", "carol", "bob"}, state.UserOrder)
}

func TestMoveUserBadDirection(t *testing.T) {
	r := newRoomWithAdmin(t)
	seatUsers(t, r, "alice", "bob")

	_, err := r.MoveUser("admin", "alice", Direction("sideways"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestKickTurnHolderPassesToNextInOriginalOrder(t *testing.T) {
	r := newRoomWithAdmin(t)
	seatUsers(t, r, "alice", "bob", "carol")
	_, err := r.SetTurn("admin", "bob")
	require.NoError(t, err)

	state, empty, err := r.Kick("admin", "bob")
	require.NoError(t, err)
	assert.False(t, empty)
	assert.Equal(t, []domain.PlayerID{"alice", "carol"}, state.UserOrder)
	require.NotNil(t, state.Turn)
	assert.Equal(t, domain.PlayerID("carol"), *state.Turn, "next after bob in pre-removal order")
	checkTurnInvariant(t, state)
}

func TestKickLastUserInOrderWrapsToFirst(t *testing.T) {
	r := newRoomWithAdmin(t)
	seatUsers(t, r, "alice", "bob")
	_, err := r.SetTurn("admin", "bob")
	require.NoError(t, err)

	state, _, err := r.Kick("admin", "bob")
	require.NoError(t, err)
	require.NotNil(t, state.Turn)
	assert.Equal(t, domain.PlayerID("alice"), *state.Turn)
}

func TestKickSoleUserClearsTurn(t *testing.T) {
	r := newRoomWithAdmin(t)
	seatUsers(t, r, "alice")

	state, empty, err := r.Kick("admin", "alice")
	require.NoError(t, err)
	assert.False(t, empty, "admin keeps the room alive")
	assert.Nil(t, state.Turn)
}

func TestKickGuards(t *testing.T) {
	r := newRoomWithAdmin(t)
	seatUsers(t, r, "alice")

	_, _, err := r.Kick("alice", "admin")
	assert.ErrorIs(t, err, ErrForbidden)

	_, _, err = r.Kick("admin", "admin")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = r.Kick("admin", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	state := r.Snapshot()
	assert.Len(t, state.Players, 2, "failed kicks leave membership intact")
}

func TestRemoveTurnHolderReassigns(t *testing.T) {
	r := newRoomWithAdmin(t)
	seatUsers(t, r, "alice", "bob", "carol")

	state, empty := r.RemovePlayer("alice")
	assert.False(t, empty)
	require.NotNil(t, state.Turn)
	assert.Equal(t, domain.PlayerID("bob"), *state.Turn)
	checkTurnInvariant(t, state)
}

func TestRemoveLastUserLeavesTurnNil(t *testing.T) {
	r := newRoomWithAdmin(t)
	seatUsers(t, r, "alice")

	state, empty := r.RemovePlayer("alice")
	assert.False(t, empty, "room retained while the admin is present")
	assert.Nil(t, state.Turn)
	assert.Empty(t, state.UserOrder)
}

func TestRemoveEveryoneEmptiesRoom(t *testing.T) {
	r := newRoomWithAdmin(t)
	seatUsers(t, r, "alice")

	_, empty := r.RemovePlayer("alice")
	assert.False(t, empty)
	_, empty = r.RemovePlayer("admin")
	assert.True(t, empty)
}

func TestRemoveUnknownIDIsNoop(t *testing.T) {
	r := newRoomWithAdmin(t)
	seatUsers(t, r, "alice")

	state, empty := r.RemovePlayer("ghost")
	assert.False(t, empty)
	assert.Len(t, state.Players, 2)
}

func TestRemoveNonHolderKeepsTurn(t *testing.T) {
	r := newRoomWithAdmin(t)
	seatUsers(t, r, "alice", "bob")

	state, _ := r.RemovePlayer("bob")
	require.NotNil(t, state.Turn)
	assert.Equal(t, domain.PlayerID("alice"), *state.Turn)
}

func TestSnapshotPlayersInJoinOrder(t *testing.T) {
	r := newRoomWithAdmin(t)
	seatUsers(t, r, "alice", "bob")

	state := r.Snapshot()
	require.Len(t, state.Players, 3)
	assert.Equal(t, domain.PlayerID("admin"), state.Players[0].ID)
	assert.Equal(t, domain.RoleAdmin, state.Players[0].Role)
}

func TestNormalizedOrderMatchesUserSet(t *testing.T) {
	r := newRoomWithAdmin(t)
	seatUsers(t, r, "a", "b", "c")
	r.RemovePlayer("b")

	state := r.Snapshot()
	seen := make(map[domain.PlayerID]bool)
	for _, id := range state.UserOrder {
		assert.False(t, seen[id], "no duplicates in order")
		seen[id] = true
	}
	users := 0
	for _, p := range state.Players {
		if p.Role == domain.RoleUser {
			users++
			assert.True(t, seen[p.ID], "every user appears in order")
		}
	}
	assert.Len(t, state.UserOrder, users)
}
