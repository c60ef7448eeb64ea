package room

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryStub(t *testing.T) {
	ctx := context.Background()

	t.Run("lists rooms ordered by id", func(t *testing.T) {
		stub := NewRepositoryStub()
		stub.AddRoom(Room{Id: 2, Name: "Room B"})
		stub.AddRoom(Room{Id: 1, Name: "Room A"})

		rooms, err := stub.ListRooms(ctx)

		require.NoError(t, err)
		require.Len(t, rooms, 2)
		assert.Equal(t, "Room A", rooms[0].Name)
		assert.Equal(t, "Room B", rooms[1].Name)
	})

	t.Run("gets a room by id", func(t *testing.T) {
		stub := NewRepositoryStub()
		stub.AddRoom(Room{Id: 1, Name: "Room A"})

		room, err := stub.GetRoom(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, "Room A", room.Name)
	})

	t.Run("returns not found for an unknown id", func(t *testing.T) {
		stub := NewRepositoryStub()

		_, err := stub.GetRoom(ctx, 9)

		assert.ErrorIs(t, err, ErrRoomNotFound)
	})
}

// brokenScanDriver serves one row and then drops the connection, the way a
// network failure surfaces mid-iteration: no Scan error, only rows.Err().
var errConnDropped = errors.New("connection dropped")

type brokenScanDriver struct{}

func (brokenScanDriver) Open(string) (driver.Conn, error) {
	return &brokenScanConn{}, nil
}

type brokenScanConn struct{}

func (c *brokenScanConn) Prepare(string) (driver.Stmt, error) { return nil, errConnDropped }
func (c *brokenScanConn) Close() error                        { return nil }
func (c *brokenScanConn) Begin() (driver.Tx, error)           { return nil, errConnDropped }

func (c *brokenScanConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	return &brokenScanRows{}, nil
}

type brokenScanRows struct {
	served bool
}

func (r *brokenScanRows) Columns() []string { return []string{"id", "name"} }
func (r *brokenScanRows) Close() error      { return nil }

func (r *brokenScanRows) Next(dest []driver.Value) error {
	if r.served {
		return errConnDropped
	}
	r.served = true
	copy(dest, []driver.Value{int64(1), "Room A"})
	return nil
}

func init() {
	sql.Register("room-broken-scan", brokenScanDriver{})
}

func TestRepositoryImpl_ListRooms_ConnectionLoss(t *testing.T) {
	t.Run("returns the failure instead of a truncated list", func(t *testing.T) {
		db, err := sql.Open("room-broken-scan", "")
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		rooms, err := repo.ListRooms(context.Background())

		require.ErrorIs(t, err, errConnDropped)
		assert.Nil(t, rooms)
	})
}
