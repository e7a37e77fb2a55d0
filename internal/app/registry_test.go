package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvictIfEmptyKeepsRepopulatedRoom(t *testing.T) {
	reg := NewRegistry(NewCodes(1))
	room := reg.CreateRoom()

	_, err := room.AddUser("alice", "Alice")
	require.NoError(t, err)

	assert.False(t, reg.EvictIfEmpty(room), "room regained a player before the eviction ran")
	assert.True(t, reg.Registered(room))

	room.RemovePlayer("alice")
	assert.True(t, reg.EvictIfEmpty(room))
	assert.False(t, reg.Registered(room))
}

func TestEvictIfEmptyIgnoresStaleRoom(t *testing.T) {
	reg := NewRegistry(NewCodes(1))
	room := reg.CreateRoom()
	require.True(t, reg.EvictIfEmpty(room))

	assert.False(t, reg.EvictIfEmpty(room))
	assert.False(t, reg.Registered(room))
}
