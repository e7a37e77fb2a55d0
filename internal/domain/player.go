// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
	"time"
)

const MaxNameLen = 36

var (
	ErrNameTooLong = errors.New("name too long")
	ErrNameEmpty   = errors.New("name empty")
)

// PlayerID is the connection identity assigned by the transport layer.
// The core only compares it for equality.
type PlayerID string

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type Player struct {
	Name     string    `json:"name"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"-"`
}

// NewPlayer is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewPlayer(name string, role Role) (*Player, error) {
	clean, err := CleanName(name)
	if err != nil {
		return nil, err
	}
	return &Player{Name: clean, Role: role, JoinedAt: time.Now()}, nil
}

// CleanName trims the display name and enforces the length bounds.
func CleanName(name string) (string, error) {
	clean := strings.TrimSpace(name)
	if len(clean) == 0 {
		return "", ErrNameEmpty
	}
	if len(clean) > MaxNameLen {
		return "", ErrNameTooLong
	}
	return clean, nil
}
