package domain

import "math/rand"

// Member represents one participant's meta for a room.
// No transport or lifecycle logic here.
type Member struct {
	Color string
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(color string) *Member {
	return &Member{Color: color}
}

const colorDigits = "0123456789ABCDEF"

// RandomColor picks a display color for a new session, stable for the
// session's lifetime.
func RandomColor() string {
	b := make([]byte, 0, 7)
	b = append(b, '#')
	for i := 0; i < 6; i++ {
		b = append(b, colorDigits[rand.Intn(len(colorDigits))])
	}
	return string(b)
}
