package domain

// Cursor is a purely ephemeral broadcast value. It is never stored and
// never replayed to late joiners.
type Cursor struct {
	UserID string  `json:"userId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Color  string  `json:"color"`
}
