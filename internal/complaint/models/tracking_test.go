package models

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrackingNumber(t *testing.T) {
	submittedAt := time.Date(2025, 6, 10, 23, 30, 0, 0, time.UTC)

	format := regexp.MustCompile(`^CL-20250610-[A-Z0-9]{6}$`)
	number, err := NewTrackingNumber(submittedAt)
	require.NoError(t, err)
	assert.Regexp(t, format, number)
}

// The date segment is the UTC submission date, regardless of the zone the
// timestamp arrives in.
func TestNewTrackingNumberUsesUTCDate(t *testing.T) {
	zone := time.FixedZone("UTC+6", 6*3600)
	// 01:30 local on the 11th is 19:30 UTC on the 10th.
	submittedAt := time.Date(2025, 6, 11, 1, 30, 0, 0, zone)

	number, err := NewTrackingNumber(submittedAt)
	require.NoError(t, err)
	assert.Contains(t, number, "-20250610-")
}

func TestNewTrackingNumberVaries(t *testing.T) {
	submittedAt := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	seen := make(map[string]bool)
	for range 50 {
		number, err := NewTrackingNumber(submittedAt)
		require.NoError(t, err)
		seen[number] = true
	}
	// 50 draws from a 36^6 space; any repeat means the suffix is not random.
	assert.Len(t, seen, 50)
}
