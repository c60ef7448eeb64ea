package room

import (
	"context"
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type Repository interface {
	ListRooms(ctx context.Context) ([]Room, error)
	GetRoom(ctx context.Context, id int) (Room, error)
}

var ErrRoomNotFound = fmt.Errorf("room not found")

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) ListRooms(ctx context.Context) ([]Room, error) {
	query := `SELECT id, name FROM room ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query rooms: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	rooms := make([]Room, 0, 10)
	for rows.Next() {
		var room Room
		if err := rows.Scan(&room.Id, &room.Name); err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("could not read rooms: %w", err)
		log.Error(err)
		return nil, err
	}
	return rooms, nil
}

func (r *RepositoryImpl) GetRoom(ctx context.Context, id int) (Room, error) {
	query := `SELECT id, name FROM room WHERE id = $1`

	var room Room
	err := r.db.QueryRowContext(ctx, query, id).Scan(&room.Id, &room.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return Room{}, ErrRoomNotFound
		}
		err := fmt.Errorf("could not query room: %w", err)
		log.Error(err)
		return Room{}, err
	}
	return room, nil
}
