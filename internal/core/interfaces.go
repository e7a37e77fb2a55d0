package core

import "github.com/Ditoo31/Dadu-RAP/internal/domain"

// Frame is a raw outbound payload, already JSON-encoded.
type Frame []byte

// SignalConnection abstracts the system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// PlayerDTO is a read-only view for the wire (no transport fields).
type PlayerDTO struct {
	ID   domain.PlayerID `json:"id"`
	Name string          `json:"name"`
	Role domain.Role     `json:"role"`
}

// StateDTO is the public room view broadcast after every mutation.
// Turn is nil while no user holds the dice.
type StateDTO struct {
	Code      domain.RoomCode    `json:"code"`
	Players   []PlayerDTO        `json:"players"`
	UserOrder []domain.PlayerID  `json:"userOrder"`
	Turn      *domain.PlayerID   `json:"turn"`
	History   []domain.RollEvent `json:"history"`
}

type RoomInfo struct {
	Code        domain.RoomCode `json:"code"`
	PlayerCount int             `json:"player_count"`
}
