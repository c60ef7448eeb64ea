package room

import (
	"context"
	"sort"
	"sync"
)

type RepositoryStub struct {
	mu    sync.RWMutex
	rooms map[int]Room
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{rooms: make(map[int]Room)}
}

func (r *RepositoryStub) AddRoom(room Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[room.Id] = room
}

func (r *RepositoryStub) ListRooms(ctx context.Context) ([]Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		result = append(result, room)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Id < result[j].Id })
	return result, nil
}

func (r *RepositoryStub) GetRoom(ctx context.Context, id int) (Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	return room, nil
}
