package domain

import "strings"

// RoomCode identifies a room. Codes are 4-char alphanumeric and
// case-insensitive; lookups normalize to uppercase.
type RoomCode string

const RoomCodeLen = 4

func NormalizeCode(raw string) RoomCode {
	return RoomCode(strings.ToUpper(strings.TrimSpace(raw)))
}
