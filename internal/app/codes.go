package app

import (
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/Ditoo31/Dadu-RAP/internal/domain"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Codes produces room codes and roll event ids. Room codes are short
// and human-typable; uniqueness against live rooms is the registry's
// job (it retries on collision).
type Codes struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewCodes(seed int64) *Codes {
	return &Codes{rng: rand.New(rand.NewSource(seed))}
}

func (c *Codes) RoomCode() domain.RoomCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	buf := make([]byte, domain.RoomCodeLen)
	for i := range buf {
		buf[i] = codeAlphabet[c.rng.Intn(len(codeAlphabet))]
	}
	return domain.RoomCode(buf)
}

func (c *Codes) EventID() string {
	return uuid.NewString()
}

// Dice returns a uniform value in [1,6].
func (c *Codes) Dice() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return 1 + c.rng.Intn(6)
}
