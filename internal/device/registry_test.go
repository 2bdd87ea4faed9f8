package device

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDialer struct{}

func (stubDialer) Dial(context.Context, string, int, time.Duration, Credentials) (Session, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	t.Run("open returns the registered dialer", func(t *testing.T) {
		Register("testdriver", stubDialer{})

		d, err := Open("testdriver")
		require.NoError(t, err)
		assert.Equal(t, stubDialer{}, d)
		assert.Contains(t, Drivers(), "testdriver")
	})

	t.Run("unknown driver names the available ones", func(t *testing.T) {
		_, err := Open("nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown driver "nope"`)
	})

	t.Run("duplicate registration panics", func(t *testing.T) {
		Register("testdriver-dup", stubDialer{})
		assert.Panics(t, func() { Register("testdriver-dup", stubDialer{}) })
	})

	t.Run("nil dialer panics", func(t *testing.T) {
		assert.Panics(t, func() { Register("testdriver-nil", nil) })
	})
}
