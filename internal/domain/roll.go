package domain

// RollEvent records a single dice outcome. Immutable once created.
type RollEvent struct {
	ID    string   `json:"id"`
	By    PlayerID `json:"by"`
	Name  string   `json:"name"`
	Value int      `json:"value"`
	Time  int64    `json:"time"`
}
