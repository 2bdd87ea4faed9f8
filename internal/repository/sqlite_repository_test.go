package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendsync/server/internal/models"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testEmployee(t *testing.T, db *sql.DB, name, deviceUserID string) *models.Employee {
	t.Helper()
	e, err := models.NewEmployee(name, deviceUserID)
	require.NoError(t, err)
	require.NoError(t, NewEmployeeRepository(db).Add(context.Background(), e))
	return e
}

func TestDeviceRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("round-trip", func(t *testing.T) {
		repo := NewDeviceRepository(testDB(t))

		dev, err := models.NewDevice("front-door", "192.168.1.201", 4370, 5, "uface202")
		require.NoError(t, err)
		require.NoError(t, repo.Add(ctx, dev))

		got, err := repo.GetByID(ctx, dev.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, dev.Name, got.Name)
		assert.Equal(t, dev.Address, got.Address)
		assert.Equal(t, models.DeviceStatusDisconnected, got.Status)
		assert.Nil(t, got.LastSyncAt)
	})

	t.Run("missing device is nil, not an error", func(t *testing.T) {
		repo := NewDeviceRepository(testDB(t))

		got, err := repo.GetByID(ctx, "no-such-id")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("status and last-sync updates", func(t *testing.T) {
		repo := NewDeviceRepository(testDB(t))

		dev, err := models.NewDevice("front-door", "192.168.1.201", 4370, 5, "")
		require.NoError(t, err)
		require.NoError(t, repo.Add(ctx, dev))

		require.NoError(t, repo.UpdateStatus(ctx, dev.ID, models.DeviceStatusError))
		at := time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)
		require.NoError(t, repo.UpdateLastSync(ctx, dev.ID, at))

		got, err := repo.GetByID(ctx, dev.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DeviceStatusError, got.Status)
		require.NotNil(t, got.LastSyncAt)
		assert.Equal(t, at, got.LastSyncAt.UTC())
	})

	t.Run("duplicate address and port is rejected", func(t *testing.T) {
		repo := NewDeviceRepository(testDB(t))

		first, err := models.NewDevice("a", "192.168.1.201", 4370, 5, "")
		require.NoError(t, err)
		require.NoError(t, repo.Add(ctx, first))

		second, err := models.NewDevice("b", "192.168.1.201", 4370, 5, "")
		require.NoError(t, err)
		assert.Error(t, repo.Add(ctx, second))
	})

	t.Run("delete reports whether a row existed", func(t *testing.T) {
		repo := NewDeviceRepository(testDB(t))

		dev, err := models.NewDevice("front-door", "192.168.1.201", 4370, 5, "")
		require.NoError(t, err)
		require.NoError(t, repo.Add(ctx, dev))

		deleted, err := repo.Delete(ctx, dev.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, dev.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestEmployeeRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("lookup by device user id", func(t *testing.T) {
		db := testDB(t)
		repo := NewEmployeeRepository(db)
		want := testEmployee(t, db, "Amira", "7")

		got, err := repo.GetByDeviceUserID(ctx, "7")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want.ID, got.ID)

		missing, err := repo.GetByDeviceUserID(ctx, "99")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("device user id is unique", func(t *testing.T) {
		db := testDB(t)
		testEmployee(t, db, "Amira", "7")

		dup, err := models.NewEmployee("Impostor", "7")
		require.NoError(t, err)
		assert.Error(t, NewEmployeeRepository(db).Add(ctx, dup))
	})
}

func TestAttendanceEventRepository(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)

	t.Run("exists gates duplicates", func(t *testing.T) {
		db := testDB(t)
		repo := NewAttendanceEventRepository(db)
		emp := testEmployee(t, db, "Amira", "7")

		exists, err := repo.Exists(ctx, "7", at)
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, repo.Add(ctx, models.NewAttendanceEvent(emp.ID, "7", 0, models.PunchIn, at, "192.168.1.201")))

		exists, err = repo.Exists(ctx, "7", at)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("unique pair is enforced by the schema", func(t *testing.T) {
		db := testDB(t)
		repo := NewAttendanceEventRepository(db)
		emp := testEmployee(t, db, "Amira", "7")

		require.NoError(t, repo.Add(ctx, models.NewAttendanceEvent(emp.ID, "7", 0, models.PunchIn, at, "")))
		assert.Error(t, repo.Add(ctx, models.NewAttendanceEvent(emp.ID, "7", 0, models.PunchIn, at, "")))
	})

	t.Run("delete all reports the row count", func(t *testing.T) {
		db := testDB(t)
		repo := NewAttendanceEventRepository(db)
		emp := testEmployee(t, db, "Amira", "7")

		require.NoError(t, repo.Add(ctx, models.NewAttendanceEvent(emp.ID, "7", 0, models.PunchIn, at, "")))
		require.NoError(t, repo.Add(ctx, models.NewAttendanceEvent(emp.ID, "7", 0, models.PunchOut, at.Add(8*time.Hour), "")))

		deleted, err := repo.DeleteAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)

		count, err := repo.GetCount(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestAttendanceSessionRepository(t *testing.T) {
	ctx := context.Background()
	nine := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	five := time.Date(2024, 5, 6, 17, 0, 0, 0, time.UTC)

	t.Run("open, list and close", func(t *testing.T) {
		db := testDB(t)
		repo := NewAttendanceSessionRepository(db)
		emp := testEmployee(t, db, "Amira", "7")

		session := models.NewAttendanceSession(emp.ID, nine)
		require.NoError(t, repo.Add(ctx, session))

		open, err := repo.GetOpenForEmployee(ctx, emp.ID)
		require.NoError(t, err)
		require.Len(t, open, 1)
		assert.Equal(t, session.ID, open[0].ID)

		require.NoError(t, repo.Close(ctx, session.ID, five))

		open, err = repo.GetOpenForEmployee(ctx, emp.ID)
		require.NoError(t, err)
		assert.Empty(t, open)

		all, err := repo.GetForEmployee(ctx, emp.ID, 0, 10)
		require.NoError(t, err)
		require.Len(t, all, 1)
		require.NotNil(t, all[0].CheckOut)
		assert.Equal(t, five, all[0].CheckOut.UTC())
	})

	t.Run("second open session for an employee is rejected", func(t *testing.T) {
		db := testDB(t)
		repo := NewAttendanceSessionRepository(db)
		emp := testEmployee(t, db, "Amira", "7")

		require.NoError(t, repo.Add(ctx, models.NewAttendanceSession(emp.ID, nine)))
		assert.Error(t, repo.Add(ctx, models.NewAttendanceSession(emp.ID, nine.Add(time.Hour))))
	})

	t.Run("closing twice is a no-op", func(t *testing.T) {
		db := testDB(t)
		repo := NewAttendanceSessionRepository(db)
		emp := testEmployee(t, db, "Amira", "7")

		session := models.NewAttendanceSession(emp.ID, nine)
		require.NoError(t, repo.Add(ctx, session))
		require.NoError(t, repo.Close(ctx, session.ID, five))
		require.NoError(t, repo.Close(ctx, session.ID, five.Add(time.Hour)))

		all, err := repo.GetForEmployee(ctx, emp.ID, 0, 10)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, five, all[0].CheckOut.UTC())
	})
}
