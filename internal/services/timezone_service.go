package services

import (
	"fmt"
	"time"

	"github.com/attendsync/server/internal/device"
)

// TimeNormalizer converts the naive wall-clock timestamps terminals
// report into UTC instants. The raw value is interpreted in the
// configured zone; the result is truncated to whole seconds so it
// round-trips through the canonical "2006-01-02 15:04:05" form.
type TimeNormalizer struct {
	location *time.Location
}

// NewTimeNormalizer creates a normalizer for the given IANA zone name.
// An empty name falls back to GMT.
func NewTimeNormalizer(timezone string) (*TimeNormalizer, error) {
	if timezone == "" {
		timezone = "GMT"
	}
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return &TimeNormalizer{location: location}, nil
}

// Normalize parses a raw device timestamp as wall-clock time in the
// configured zone and returns the UTC instant. An unparseable timestamp
// is a fatal batch error for the caller.
func (n *TimeNormalizer) Normalize(raw string) (time.Time, error) {
	local, err := time.ParseInLocation(device.TimestampLayout, raw, n.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable punch timestamp %q: %w", raw, err)
	}
	return local.UTC().Truncate(time.Second), nil
}

// Canonical renders an instant in the canonical stored form
func (n *TimeNormalizer) Canonical(t time.Time) string {
	return t.UTC().Format(device.TimestampLayout)
}
