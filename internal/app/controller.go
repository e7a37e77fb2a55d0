package app

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Ditoo31/Dadu-RAP/internal/core"
	"github.com/Ditoo31/Dadu-RAP/internal/domain"
)

// Controller is the connection-facing API over rooms. Every mutating
// operation either completes its full mutation and returns the snapshot
// to broadcast, or fails before touching state. Delivery of snapshots
// is the adapter's job.
type Controller struct {
	Registry *Registry
	Codes    *Codes
}

func NewController(reg *Registry, codes *Codes) *Controller {
	return &Controller{Registry: reg, Codes: codes}
}

// CreateRoom opens a fresh room with the caller seated as admin. The
// caller leaves its previous room first; when that room survives, its
// snapshot comes back as prev so the members left behind can be told.
func (c *Controller) CreateRoom(id domain.PlayerID, name string) (state core.StateDTO, prev *core.StateDTO, err error) {
	if _, err := domain.CleanName(name); err != nil {
		return core.StateDTO{}, nil, core.Fail(core.ErrInvalidArgument, err.Error())
	}
	prev = c.leaveCurrent(id)
	room := c.Registry.CreateRoom()
	state, err = room.AddAdmin(id, name)
	if err != nil {
		c.Registry.EvictIfEmpty(room)
		return core.StateDTO{}, prev, err
	}
	c.Registry.EnterRoom(id, room.Code(), false)
	log.Info().Str("module", "app.controller").Str("id", string(id)).Str("code", string(room.Code())).Msg("room created")
	return state, prev, nil
}

// JoinRoom seats the caller as a user in an existing room. prev is the
// snapshot of the room the caller left behind, when one survived.
func (c *Controller) JoinRoom(id domain.PlayerID, codeRaw, name string) (state core.StateDTO, prev *core.StateDTO, err error) {
	room, ok := c.Registry.FindRoom(codeRaw)
	if !ok {
		return core.StateDTO{}, nil, core.Fail(core.ErrNotFound, "room not found")
	}
	if _, err := domain.CleanName(name); err != nil {
		return core.StateDTO{}, nil, core.Fail(core.ErrInvalidArgument, err.Error())
	}
	prev = c.leaveCurrent(id)
	state, err = room.AddUser(id, name)
	if err != nil {
		return core.StateDTO{}, prev, err
	}
	if !c.Registry.Registered(room) {
		// Lost the race with the eviction of the room's last player
		// between the lookup and the seat. The room is gone; undo.
		room.RemovePlayer(id)
		return core.StateDTO{}, prev, core.Fail(core.ErrNotFound, "room not found")
	}
	c.Registry.EnterRoom(id, room.Code(), false)
	return state, prev, nil
}

// ViewRoom subscribes the caller to a room's broadcasts without seating
// a player. prev works as in JoinRoom.
func (c *Controller) ViewRoom(id domain.PlayerID, codeRaw string) (core.StateDTO, *core.StateDTO, error) {
	room, ok := c.Registry.FindRoom(codeRaw)
	if !ok {
		return core.StateDTO{}, nil, core.Fail(core.ErrNotFound, "room not found")
	}
	prev := c.leaveCurrent(id)
	c.Registry.EnterRoom(id, room.Code(), true)
	if !c.Registry.Registered(room) {
		c.Registry.LeaveRoomBinding(id)
		return core.StateDTO{}, prev, core.Fail(core.ErrNotFound, "room not found")
	}
	return room.Snapshot(), prev, nil
}

// Roll throws the dice for the caller, which must hold the turn.
func (c *Controller) Roll(id domain.PlayerID) (domain.RollEvent, core.StateDTO, error) {
	room, err := c.memberRoom(id)
	if err != nil {
		return domain.RollEvent{}, core.StateDTO{}, err
	}
	return room.Roll(id, c.Codes.EventID(), c.Codes.Dice(), time.Now().UnixMilli())
}

// SetTurn hands the dice to an explicit user, admin only.
func (c *Controller) SetTurn(id, target domain.PlayerID) (core.StateDTO, error) {
	room, err := c.memberRoom(id)
	if err != nil {
		return core.StateDTO{}, err
	}
	return room.SetTurn(id, target)
}

// MoveUser reorders the rotation, admin only.
func (c *Controller) MoveUser(id, target domain.PlayerID, dir core.Direction) (core.StateDTO, error) {
	room, err := c.memberRoom(id)
	if err != nil {
		return core.StateDTO{}, err
	}
	return room.MoveUser(id, target, dir)
}

// Kick removes a user from the caller's room, admin only. The second
// return reports whether the room survived (and thus needs a broadcast).
func (c *Controller) Kick(id, target domain.PlayerID) (core.StateDTO, bool, error) {
	room, err := c.memberRoom(id)
	if err != nil {
		return core.StateDTO{}, false, err
	}
	state, empty, err := room.Kick(id, target)
	if err != nil {
		return core.StateDTO{}, false, err
	}
	c.Registry.LeaveRoomBinding(target)
	if empty {
		c.Registry.EvictIfEmpty(room)
	}
	return state, !empty, nil
}

// Leave drops the caller from its room. It is an idempotent no-op for
// connections that are not in any room. The second return reports
// whether the remaining members need a broadcast.
func (c *Controller) Leave(id domain.PlayerID) (core.StateDTO, bool) {
	code, viewer, ok := c.Registry.RoomOf(id)
	if !ok {
		return core.StateDTO{}, false
	}
	c.Registry.LeaveRoomBinding(id)
	if viewer {
		return core.StateDTO{}, false
	}
	room, ok := c.Registry.FindRoom(string(code))
	if !ok {
		return core.StateDTO{}, false
	}
	state, empty := room.RemovePlayer(id)
	if empty {
		c.Registry.EvictIfEmpty(room)
		return core.StateDTO{}, false
	}
	return state, true
}

// Disconnect runs the leave cleanup and releases the session binding.
// Fired by the transport before the connection id becomes invalid.
func (c *Controller) Disconnect(id domain.PlayerID) (core.StateDTO, bool) {
	state, broadcast := c.Leave(id)
	c.Registry.Unbind(id)
	log.Info().Str("module", "app.controller").Str("id", string(id)).Msg("disconnected")
	return state, broadcast
}

// leaveCurrent detaches the caller from its current room before it
// enters another one. It returns the old room's snapshot when that
// room survived and its members still need to hear about the exit.
func (c *Controller) leaveCurrent(id domain.PlayerID) *core.StateDTO {
	if _, _, ok := c.Registry.RoomOf(id); !ok {
		return nil
	}
	state, broadcast := c.Leave(id)
	if !broadcast {
		return nil
	}
	return &state
}

// memberRoom resolves the caller's room, rejecting viewers and
// connections that are not in any room.
func (c *Controller) memberRoom(id domain.PlayerID) (*core.Room, error) {
	code, viewer, ok := c.Registry.RoomOf(id)
	if !ok || viewer {
		return nil, core.Fail(core.ErrPreconditionFailed, "you are not in a room")
	}
	room, ok := c.Registry.FindRoom(string(code))
	if !ok {
		return nil, core.Fail(core.ErrPreconditionFailed, "you are not in a room")
	}
	return room, nil
}
