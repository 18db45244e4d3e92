package domain

// RoomID is the externally supplied room key. Case-sensitive, not
// validated against any fixed set.
type RoomID string

type Room struct {
	ID RoomID
}
