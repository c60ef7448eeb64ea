package booking

import (
	"context"
	"sort"
	"sync"
	"time"
)

type RepositoryStub struct {
	mu       sync.RWMutex
	rooms    map[int]string // roomId -> name
	bookings map[int]Booking
	nextId   int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		rooms:    make(map[int]string),
		bookings: make(map[int]Booking),
		nextId:   1,
	}
}

func (r *RepositoryStub) AddRoom(id int, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[id] = name
}

func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	original := make(map[int]Booking, len(r.bookings))
	for k, v := range r.bookings {
		original[k] = v
	}
	originalNextId := r.nextId
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.bookings = original
		r.nextId = originalNextId
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *RepositoryStub) InsertBooking(ctx context.Context, b Booking) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b.Id == 0 {
		b.Id = r.nextId
		r.nextId++
	} else if b.Id >= r.nextId {
		r.nextId = b.Id + 1
	}
	r.bookings[b.Id] = b
	return b.Id, nil
}

func (r *RepositoryStub) GetBooking(ctx context.Context, id int) (Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return Booking{}, ErrBookingNotFound
	}
	return b, nil
}

func (r *RepositoryStub) DeleteBooking(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[id]; !ok {
		return ErrBookingNotFound
	}
	delete(r.bookings, id)
	return nil
}

func (r *RepositoryStub) ListRoomBookings(ctx context.Context, from, to time.Time) ([]RoomBookings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomIds := make([]int, 0, len(r.rooms))
	for id := range r.rooms {
		roomIds = append(roomIds, id)
	}
	sort.Ints(roomIds)

	result := make([]RoomBookings, 0, len(roomIds))
	for _, roomId := range roomIds {
		rb := RoomBookings{RoomId: roomId, RoomName: r.rooms[roomId], Bookings: []Booking{}}
		for _, b := range r.bookings {
			if b.RoomId == roomId && b.StartTime.Before(to) && b.EndTime.After(from) {
				rb.Bookings = append(rb.Bookings, b)
			}
		}
		sort.Slice(rb.Bookings, func(i, j int) bool {
			return rb.Bookings[i].StartTime.Before(rb.Bookings[j].StartTime)
		})
		result = append(result, rb)
	}
	return result, nil
}

func (r *RepositoryStub) HasOverlap(ctx context.Context, roomId int, start, end time.Time, excludeId int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bookings {
		if b.RoomId != roomId || b.Id == excludeId {
			continue
		}
		if b.StartTime.Before(end) && b.EndTime.After(start) {
			return true, nil
		}
	}
	return false, nil
}

// Reset clears all bookings (useful between tests).
func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings = make(map[int]Booking)
	r.nextId = 1
}
