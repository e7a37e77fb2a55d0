package core

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Ditoo31/Dadu-RAP/internal/domain"
)

// HistoryLimit caps how many roll events the public view exposes.
const HistoryLimit = 20

// Room is a threadsafe in-memory room. Each operation validates and
// mutates under one lock and returns the snapshot taken before the lock
// is released, so every broadcast payload is internally consistent.
// It never closes adapter-owned resources.
type Room struct {
	code domain.RoomCode

	mu      sync.Mutex
	players map[domain.PlayerID]*domain.Player
	order   []domain.PlayerID
	turn    domain.PlayerID // "" while no user holds the dice
	history []domain.RollEvent
}

func NewRoom(code domain.RoomCode) *Room {
	return &Room{
		code:    code,
		players: make(map[domain.PlayerID]*domain.Player),
	}
}

func (r *Room) Code() domain.RoomCode { return r.code }

func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

func (r *Room) Empty() bool { return r.PlayerCount() == 0 }

// AddAdmin seats the room creator. The admin never enters the rotation
// and never receives the turn.
func (r *Room) AddAdmin(id domain.PlayerID, name string) (StateDTO, error) {
	p, err := domain.NewPlayer(name, domain.RoleAdmin)
	if err != nil {
		return StateDTO{}, Fail(ErrInvalidArgument, err.Error())
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[id] = p
	log.Info().Str("module", "core.room").Str("code", string(r.code)).Str("id", string(id)).Msg("admin seated")
	return r.snapshotLocked(), nil
}

// AddUser joins a user, appends it to the rotation and hands it the
// turn when nobody holds the dice yet.
func (r *Room) AddUser(id domain.PlayerID, name string) (StateDTO, error) {
	p, err := domain.NewPlayer(name, domain.RoleUser)
	if err != nil {
		return StateDTO{}, Fail(ErrInvalidArgument, err.Error())
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[id] = p
	r.order = append(r.order, id)
	r.normalizeOrder()
	if r.turn == "" {
		r.turn = id
	}
	log.Info().Str("module", "core.room").Str("code", string(r.code)).Str("id", string(id)).Msg("user joined")
	return r.snapshotLocked(), nil
}

// Roll records the outcome for the turn holder and advances the turn.
// The event id and value come from the caller so the room stays free of
// randomness.
func (r *Room) Roll(id domain.PlayerID, eventID string, value int, now int64) (domain.RollEvent, StateDTO, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok || p.Role != domain.RoleUser {
		return domain.RollEvent{}, StateDTO{}, Fail(ErrPreconditionFailed, "only users can roll the dice")
	}
	if r.turn != id {
		return domain.RollEvent{}, StateDTO{}, Fail(ErrPreconditionFailed, "not your turn")
	}
	ev := domain.RollEvent{ID: eventID, By: id, Name: p.Name, Value: value, Time: now}
	r.history = append([]domain.RollEvent{ev}, r.history...)
	r.turn = r.nextAfter(id)
	log.Info().Str("module", "core.room").Str("code", string(r.code)).Str("id", string(id)).Int("value", value).Msg("rolled")
	return ev, r.snapshotLocked(), nil
}

// SetTurn hands the dice to an explicit user, on admin request.
func (r *Room) SetTurn(by, target domain.PlayerID) (StateDTO, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireAdminLocked(by); err != nil {
		return StateDTO{}, err
	}
	p, ok := r.players[target]
	if !ok {
		return StateDTO{}, Fail(ErrNotFound, "player not found")
	}
	if p.Role != domain.RoleUser {
		return StateDTO{}, Fail(ErrInvalidArgument, "only users can take a turn")
	}
	r.normalizeOrder()
	if r.indexOf(target) < 0 {
		r.order = append(r.order, target)
	}
	r.turn = target
	return r.snapshotLocked(), nil
}

// MoveUser shifts a user one slot up or down in the rotation.
func (r *Room) MoveUser(by, target domain.PlayerID, dir Direction) (StateDTO, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireAdminLocked(by); err != nil {
		return StateDTO{}, err
	}
	if dir != DirUp && dir != DirDown {
		return StateDTO{}, Fail(ErrInvalidArgument, "direction must be up or down")
	}
	p, ok := r.players[target]
	if !ok {
		return StateDTO{}, Fail(ErrNotFound, "player not found")
	}
	if p.Role != domain.RoleUser {
		return StateDTO{}, Fail(ErrInvalidArgument, "only users can be reordered")
	}
	if !r.move(target, dir) {
		return StateDTO{}, Fail(ErrPreconditionFailed, "already at the edge of the order")
	}
	return r.snapshotLocked(), nil
}

// Kick removes a user on admin request. The admin itself can never be
// kicked. Returns whether the room is empty afterwards.
func (r *Room) Kick(by, target domain.PlayerID) (StateDTO, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireAdminLocked(by); err != nil {
		return StateDTO{}, false, err
	}
	p, ok := r.players[target]
	if !ok {
		return StateDTO{}, false, Fail(ErrNotFound, "player not found")
	}
	if target == by {
		return StateDTO{}, false, Fail(ErrInvalidArgument, "admin cannot kick itself")
	}
	if p.Role == domain.RoleAdmin {
		return StateDTO{}, false, Fail(ErrInvalidArgument, "admin cannot be kicked")
	}
	r.removeLocked(target)
	log.Info().Str("module", "core.room").Str("code", string(r.code)).Str("id", string(target)).Msg("kicked")
	return r.snapshotLocked(), len(r.players) == 0, nil
}

// RemovePlayer drops a player on leave or disconnect. It is a no-op for
// unknown ids. Returns whether the room is empty afterwards.
func (r *Room) RemovePlayer(id domain.PlayerID) (StateDTO, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[id]; ok {
		r.removeLocked(id)
		log.Info().Str("module", "core.room").Str("code", string(r.code)).Str("id", string(id)).Msg("player removed")
	}
	return r.snapshotLocked(), len(r.players) == 0
}

// removeLocked is the single removal path shared by kick, leave and
// disconnect. The successor is computed before the deletion so the dice
// passes to the next user in the pre-removal order.
func (r *Room) removeLocked(id domain.PlayerID) {
	var next domain.PlayerID
	wasTurn := r.turn == id
	if wasTurn {
		next = r.nextAfter(id)
	}
	delete(r.players, id)
	r.dropFromOrder(id)
	if wasTurn {
		if next == id {
			// the leaver was the only user in rotation
			next = ""
		}
		r.turn = next
	}
	if r.turn == "" {
		r.turn = r.firstUser()
	}
}

func (r *Room) requireAdminLocked(id domain.PlayerID) error {
	p, ok := r.players[id]
	if !ok || p.Role != domain.RoleAdmin {
		return Fail(ErrForbidden, "admin only")
	}
	return nil
}

// Snapshot returns the public room view.
func (r *Room) Snapshot() StateDTO {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Room) snapshotLocked() StateDTO {
	r.normalizeOrder()
	players := make([]PlayerDTO, 0, len(r.players))
	for id, p := range r.players {
		players = append(players, PlayerDTO{ID: id, Name: p.Name, Role: p.Role})
	}
	sort.Slice(players, func(i, j int) bool {
		a, b := r.players[players[i].ID], r.players[players[j].ID]
		if a.JoinedAt.Equal(b.JoinedAt) {
			return players[i].ID < players[j].ID
		}
		return a.JoinedAt.Before(b.JoinedAt)
	})
	order := make([]domain.PlayerID, len(r.order))
	copy(order, r.order)
	hist := r.history
	if len(hist) > HistoryLimit {
		hist = hist[:HistoryLimit]
	}
	history := make([]domain.RollEvent, len(hist))
	copy(history, hist)
	dto := StateDTO{
		Code:      r.code,
		Players:   players,
		UserOrder: order,
		History:   history,
	}
	if r.turn != "" {
		turn := r.turn
		dto.Turn = &turn
	}
	return dto
}
