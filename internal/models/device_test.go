package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDevice(t *testing.T) {
	t.Run("valid registration", func(t *testing.T) {
		d, err := NewDevice("Front Door", "192.168.1.201", 4370, 10, "uFace202")
		require.NoError(t, err)

		assert.NotEmpty(t, d.ID)
		assert.Equal(t, "Front Door", d.Name)
		assert.Equal(t, "192.168.1.201", d.Address)
		assert.Equal(t, 4370, d.Port)
		assert.Equal(t, "uface202", d.Model)
		assert.Equal(t, DeviceStatusDisconnected, d.Status)
		assert.Nil(t, d.LastSyncAt)
		assert.Equal(t, 10*time.Second, d.Timeout())
	})

	t.Run("empty address", func(t *testing.T) {
		_, err := NewDevice("Front Door", "  ", 4370, 10, "")
		assert.ErrorIs(t, err, ErrEmptyAddress)
	})

	t.Run("port out of range", func(t *testing.T) {
		for _, port := range []int{0, -1, 70000} {
			_, err := NewDevice("Front Door", "192.168.1.201", port, 10, "")
			assert.ErrorIs(t, err, ErrInvalidPort)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		d, err := NewDevice("", "192.168.1.201", 4370, 0, "")
		require.NoError(t, err)

		assert.Equal(t, "192.168.1.201", d.Name)
		assert.Equal(t, 30, d.TimeoutSeconds)
		assert.Equal(t, "other", d.Model)
	})
}

func TestNewEmployee(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		e, err := NewEmployee("Amira", "7")
		require.NoError(t, err)

		assert.NotEmpty(t, e.ID)
		assert.Equal(t, "Amira", e.Name)
		assert.Equal(t, "7", e.DeviceUserID)
	})

	t.Run("empty device user id", func(t *testing.T) {
		_, err := NewEmployee("Amira", " ")
		assert.ErrorIs(t, err, ErrEmptyDeviceUserID)
	})

	t.Run("blank name falls back to the device user id", func(t *testing.T) {
		e, err := NewEmployee("", "7")
		require.NoError(t, err)
		assert.Equal(t, "7", e.Name)
	})
}

func TestNewAttendanceEvent(t *testing.T) {
	at := time.Date(2024, 5, 6, 9, 0, 0, 123456789, time.FixedZone("PKT", 5*3600))

	e := NewAttendanceEvent("emp-1", "7", 1, PunchIn, at, "192.168.1.201")

	assert.Equal(t, time.Date(2024, 5, 6, 4, 0, 0, 0, time.UTC), e.PunchedAt)
	assert.Equal(t, PunchIn, e.Direction)
	assert.Equal(t, "192.168.1.201", e.Address)
}

func TestAttendanceSession(t *testing.T) {
	s := NewAttendanceSession("emp-1", time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC))

	assert.True(t, s.IsOpen())

	out := time.Date(2024, 5, 6, 17, 0, 0, 0, time.UTC)
	s.CheckOut = &out
	assert.False(t, s.IsOpen())
}
