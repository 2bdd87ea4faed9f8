package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeNormalizer(t *testing.T) {
	t.Run("interprets wall clock in the configured zone", func(t *testing.T) {
		n, err := NewTimeNormalizer("Asia/Karachi")
		require.NoError(t, err)

		got, err := n.Normalize("2024-05-06 09:00:00")
		require.NoError(t, err)

		// Karachi is UTC+5 year-round.
		assert.Equal(t, time.Date(2024, 5, 6, 4, 0, 0, 0, time.UTC), got)
		assert.Equal(t, time.UTC, got.Location())
	})

	t.Run("empty zone falls back to GMT", func(t *testing.T) {
		n, err := NewTimeNormalizer("")
		require.NoError(t, err)

		got, err := n.Normalize("2024-05-06 09:00:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC), got)
	})

	t.Run("rejects unknown zone names", func(t *testing.T) {
		_, err := NewTimeNormalizer("Mars/Olympus_Mons")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid timezone")
	})

	t.Run("rejects unparseable timestamps", func(t *testing.T) {
		n, err := NewTimeNormalizer("")
		require.NoError(t, err)

		_, err = n.Normalize("06/05/2024 9am")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unparseable punch timestamp")
	})

	t.Run("canonical form round-trips", func(t *testing.T) {
		n, err := NewTimeNormalizer("")
		require.NoError(t, err)

		instant, err := n.Normalize("2024-05-06 09:00:00")
		require.NoError(t, err)
		assert.Equal(t, "2024-05-06 09:00:00", n.Canonical(instant))

		again, err := n.Normalize(n.Canonical(instant))
		require.NoError(t, err)
		assert.Equal(t, instant, again)
	})
}
