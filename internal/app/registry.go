package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Ditoo31/Dadu-RAP/internal/core"
	"github.com/Ditoo31/Dadu-RAP/internal/domain"
)

type sessionEntry struct {
	Conn   core.SignalConnection
	Room   domain.RoomCode
	Viewer bool
	Cancel context.CancelFunc
}

// Registry owns every live room and the binding between connection ids
// and the room they are subscribed to. Rooms enter the map on create
// and leave it only when their last player is gone.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[domain.RoomCode]*core.Room
	sessions map[domain.PlayerID]*sessionEntry
	codes    *Codes
}

func NewRegistry(codes *Codes) *Registry {
	return &Registry{
		rooms:    make(map[domain.RoomCode]*core.Room),
		sessions: make(map[domain.PlayerID]*sessionEntry),
		codes:    codes,
	}
}

func (r *Registry) BindSignal(id domain.PlayerID, conn core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &sessionEntry{Conn: conn, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("id", string(id)).Msg("bound signal")
}

func (r *Registry) Unbind(id domain.PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok {
		if e.Cancel != nil {
			e.Cancel()
		}
		delete(r.sessions, id)
	}
	log.Info().Str("module", "app.registry").Str("id", string(id)).Msg("unbind session")
}

func (r *Registry) Conn(id domain.PlayerID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[id]; ok {
		return e.Conn, true
	}
	return nil, false
}

// CreateRoom inserts a fresh empty room under a code no live room uses.
func (r *Registry) CreateRoom() *core.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	var code domain.RoomCode
	for {
		code = r.codes.RoomCode()
		if _, taken := r.rooms[code]; !taken {
			break
		}
	}
	room := core.NewRoom(code)
	r.rooms[code] = room
	log.Info().Str("module", "app.registry").Str("code", string(code)).Msg("room created")
	return room
}

func (r *Registry) FindRoom(raw string) (*core.Room, bool) {
	code := domain.NormalizeCode(raw)
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[code]
	return room, ok
}

// EvictIfEmpty removes the room from the registry once its last player
// is gone. This is the only deletion path; rooms never expire by time.
// Emptiness is read while the registry is locked, so a join that
// repopulated the room in the meantime keeps it alive.
func (r *Registry) EvictIfEmpty(room *core.Room) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.rooms[room.Code()]; !ok || cur != room {
		return false
	}
	if !room.Empty() {
		return false
	}
	delete(r.rooms, room.Code())
	log.Info().Str("module", "app.registry").Str("code", string(room.Code())).Msg("empty room evicted")
	return true
}

// Registered reports whether the room is still the live room mapped
// under its code.
func (r *Registry) Registered(room *core.Room) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cur, ok := r.rooms[room.Code()]
	return ok && cur == room
}

// EnterRoom subscribes the connection to a room's broadcasts. Viewers
// subscribe without a player record.
func (r *Registry) EnterRoom(id domain.PlayerID, code domain.RoomCode, viewer bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok {
		e.Room = code
		e.Viewer = viewer
	}
}

func (r *Registry) LeaveRoomBinding(id domain.PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok {
		e.Room = ""
		e.Viewer = false
	}
}

// RoomOf reports the room the connection is subscribed to and whether
// it is there as a viewer only.
func (r *Registry) RoomOf(id domain.PlayerID) (domain.RoomCode, bool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	if !ok || e.Room == "" {
		return "", false, false
	}
	return e.Room, e.Viewer, true
}

type regSnap struct {
	ID   domain.PlayerID
	Conn core.SignalConnection
}

// SubscribersOf lists every connection subscribed to a room code,
// players and viewers alike.
func (r *Registry) SubscribersOf(code domain.RoomCode) []regSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]regSnap, 0, len(r.sessions))
	for id, e := range r.sessions {
		if e.Room == code {
			out = append(out, regSnap{ID: id, Conn: e.Conn})
		}
	}
	return out
}

func (r *Registry) ListRooms() []core.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(r.rooms))
	for code, room := range r.rooms {
		out = append(out, core.RoomInfo{Code: code, PlayerCount: room.PlayerCount()})
	}
	return out
}
