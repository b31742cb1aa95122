package models

import (
	"crypto/rand"
	"fmt"
	"time"
)

// Tracking numbers are the citizen-facing identity of a complaint, shaped
// CL-YYYYMMDD-XXXXXX: the UTC submission date plus a crypto-random suffix.
// The internal uuid never leaves the API.

const (
	trackingPrefix    = "CL"
	trackingAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	trackingSuffixLen = 6
)

// NewTrackingNumber generates a tracking number for the given submission
// instant. Suffix collisions within a day are possible; the store's unique
// index is the arbiter and intake retries on conflict.
func NewTrackingNumber(submittedAt time.Time) (string, error) {
	buf := make([]byte, trackingSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate tracking number: %w", err)
	}
	suffix := make([]byte, trackingSuffixLen)
	for i, b := range buf {
		suffix[i] = trackingAlphabet[int(b)%len(trackingAlphabet)]
	}
	return fmt.Sprintf("%s-%s-%s", trackingPrefix, submittedAt.UTC().Format("20060102"), suffix), nil
}
