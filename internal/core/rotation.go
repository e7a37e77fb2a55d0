package core

import "github.com/Ditoo31/Dadu-RAP/internal/domain"

// Rotation helpers. All of them expect r.mu to be held.
//
// Membership can shrink through several independent paths (leave, kick,
// disconnect), so instead of repairing the order on every mutation the
// list is normalized at the start of every read that depends on
// position. Stale or duplicate entries heal themselves here.

type Direction string

const (
	DirUp   Direction = "up"
	DirDown Direction = "down"
)

// normalizeOrder drops ids that are gone or not users anymore, and
// collapses duplicates keeping the first occurrence.
func (r *Room) normalizeOrder() {
	seen := make(map[domain.PlayerID]bool, len(r.order))
	keep := r.order[:0]
	for _, id := range r.order {
		p, ok := r.players[id]
		if !ok || p.Role != domain.RoleUser || seen[id] {
			continue
		}
		seen[id] = true
		keep = append(keep, id)
	}
	r.order = keep
}

func (r *Room) firstUser() domain.PlayerID {
	r.normalizeOrder()
	if len(r.order) == 0 {
		return ""
	}
	return r.order[0]
}

// nextAfter returns the user following id in circular order. When id is
// not in the rotation anymore the rotation restarts from the head. For
// a single-user rotation it returns id itself.
func (r *Room) nextAfter(id domain.PlayerID) domain.PlayerID {
	r.normalizeOrder()
	if len(r.order) == 0 {
		return ""
	}
	idx := r.indexOf(id)
	if idx < 0 {
		return r.order[0]
	}
	return r.order[(idx+1)%len(r.order)]
}

// move swaps id with its neighbor. Returns false when id sits at the
// boundary already, or is not in the rotation.
func (r *Room) move(id domain.PlayerID, dir Direction) bool {
	r.normalizeOrder()
	idx := r.indexOf(id)
	if idx < 0 {
		return false
	}
	switch dir {
	case DirUp:
		if idx == 0 {
			return false
		}
		r.order[idx-1], r.order[idx] = r.order[idx], r.order[idx-1]
	case DirDown:
		if idx == len(r.order)-1 {
			return false
		}
		r.order[idx], r.order[idx+1] = r.order[idx+1], r.order[idx]
	default:
		return false
	}
	return true
}

func (r *Room) dropFromOrder(id domain.PlayerID) {
	keep := r.order[:0]
	for _, cur := range r.order {
		if cur != id {
			keep = append(keep, cur)
		}
	}
	r.order = keep
}

func (r *Room) indexOf(id domain.PlayerID) int {
	for i, cur := range r.order {
		if cur == id {
			return i
		}
	}
	return -1
}
