package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrBookingNotFound = fmt.Errorf("booking not found")

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	InsertBooking(ctx context.Context, b Booking) (int, error)
	GetBooking(ctx context.Context, id int) (Booking, error)
	DeleteBooking(ctx context.Context, id int) error
	// ListRoomBookings returns every room together with its bookings that
	// overlap [from, to). Rooms without bookings in the range are included
	// with an empty list.
	ListRoomBookings(ctx context.Context, from, to time.Time) ([]RoomBookings, error)
	// HasOverlap reports whether any booking in the room intersects
	// [start, end), ignoring the booking with excludeId (0 = none).
	HasOverlap(ctx context.Context, roomId int, start, end time.Time, excludeId int) (bool, error)
}

type RepositoryImpl struct {
	db *sql.DB
	tx *sql.Tx
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db, tx: nil}
}

// getQueryer returns the appropriate database interface for queries (either tx or db)
func (r *RepositoryImpl) getQueryer() interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *RepositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// The Rollback will be a no-op if the transaction was already committed
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	txRepo := &RepositoryImpl{db: r.db, tx: tx}

	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (r *RepositoryImpl) InsertBooking(ctx context.Context, b Booking) (int, error) {
	query := `INSERT INTO booking (room_id, start_time, end_time, booked_by)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`

	var bookedBy sql.NullString
	if b.BookedBy != "" {
		bookedBy = sql.NullString{String: b.BookedBy, Valid: true}
	}

	var id int
	err := r.getQueryer().QueryRowContext(ctx, query, b.RoomId, b.StartTime, b.EndTime, bookedBy).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not insert booking: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) GetBooking(ctx context.Context, id int) (Booking, error) {
	query := `SELECT id, room_id, start_time, end_time, booked_by FROM booking WHERE id = $1`

	b, err := scanBooking(r.getQueryer().QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Booking{}, ErrBookingNotFound
		}
		err := fmt.Errorf("could not query booking: %w", err)
		log.Error(err)
		return Booking{}, err
	}
	return b, nil
}

func (r *RepositoryImpl) DeleteBooking(ctx context.Context, id int) error {
	query := `DELETE FROM booking WHERE id = $1`

	res, err := r.getQueryer().ExecContext(ctx, query, id)
	if err != nil {
		err := fmt.Errorf("could not delete booking: %w", err)
		log.Error(err)
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *RepositoryImpl) ListRoomBookings(ctx context.Context, from, to time.Time) ([]RoomBookings, error) {
	query := `SELECT r.id, r.name, b.id, b.start_time, b.end_time, b.booked_by
	          FROM room r
	          LEFT JOIN booking b
	            ON b.room_id = r.id AND b.start_time < $2 AND b.end_time > $1
	          ORDER BY r.id, b.start_time`

	rows, err := r.getQueryer().QueryContext(ctx, query, from, to)
	if err != nil {
		err := fmt.Errorf("could not query room bookings: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var result []RoomBookings
	byRoom := make(map[int]int) // roomId -> index in result
	for rows.Next() {
		var roomId int
		var roomName string
		var bookingId sql.NullInt64
		var start, end sql.NullTime
		var bookedBy sql.NullString
		if err := rows.Scan(&roomId, &roomName, &bookingId, &start, &end, &bookedBy); err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}

		idx, ok := byRoom[roomId]
		if !ok {
			result = append(result, RoomBookings{RoomId: roomId, RoomName: roomName, Bookings: []Booking{}})
			idx = len(result) - 1
			byRoom[roomId] = idx
		}
		if bookingId.Valid {
			result[idx].Bookings = append(result[idx].Bookings, Booking{
				Id:        int(bookingId.Int64),
				RoomId:    roomId,
				StartTime: start.Time,
				EndTime:   end.Time,
				BookedBy:  bookedBy.String,
			})
		}
	}
	// A connection failure mid-iteration ends the loop without an error on
	// Scan; a truncated list must not pass as a complete one.
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("could not read room bookings: %w", err)
		log.Error(err)
		return nil, err
	}
	return result, nil
}

func (r *RepositoryImpl) HasOverlap(ctx context.Context, roomId int, start, end time.Time, excludeId int) (bool, error) {
	query := `SELECT COUNT(*) FROM booking
	          WHERE room_id = $1 AND start_time < $3 AND end_time > $2 AND id <> $4`

	var count int
	err := r.getQueryer().QueryRowContext(ctx, query, roomId, start, end, excludeId).Scan(&count)
	if err != nil {
		err := fmt.Errorf("could not query overlaps: %w", err)
		log.Error(err)
		return false, err
	}
	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (Booking, error) {
	var b Booking
	var bookedBy sql.NullString
	if err := row.Scan(&b.Id, &b.RoomId, &b.StartTime, &b.EndTime, &bookedBy); err != nil {
		return Booking{}, err
	}
	b.BookedBy = bookedBy.String
	return b, nil
}
