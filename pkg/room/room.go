package room

// Room is a bookable meeting room.
type Room struct {
	Id   int
	Name string
}
