package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBreaker(t *testing.T) {
	b := New("webhook")

	assert.Equal(t, "webhook", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.False(t, b.IsOpen())
}

// apply feeds a sequence of outcomes ('f' failure, 's' success) and returns
// the breaker for follow-up assertions.
func apply(b *Breaker, outcomes string) *Breaker {
	for _, o := range outcomes {
		if o == 'f' {
			b.RecordFailure()
		} else {
			b.RecordSuccess()
		}
	}
	return b
}

func TestBreakerCounting(t *testing.T) {
	tests := []struct {
		name     string
		breaker  *Breaker
		outcomes string
		wantOpen bool
	}{
		{
			name:     "stays closed below the failure threshold",
			breaker:  New("dep", WithFailureThreshold(3)),
			outcomes: "ff",
			wantOpen: false,
		},
		{
			name:     "opens at the failure threshold",
			breaker:  New("dep", WithFailureThreshold(3)),
			outcomes: "fff",
			wantOpen: true,
		},
		{
			name:     "success while closed clears accumulated failures",
			breaker:  New("dep", WithFailureThreshold(3)),
			outcomes: "ffsff",
			wantOpen: false,
		},
		{
			name:     "closes after enough successes while open",
			breaker:  New("dep", WithFailureThreshold(1), WithSuccessThreshold(2)),
			outcomes: "fss",
			wantOpen: false,
		},
		{
			name:     "stays open below the success threshold",
			breaker:  New("dep", WithFailureThreshold(1), WithSuccessThreshold(2)),
			outcomes: "fs",
			wantOpen: true,
		},
		{
			name:     "failure while open clears accumulated successes",
			breaker:  New("dep", WithFailureThreshold(1), WithSuccessThreshold(3)),
			outcomes: "fssfss",
			wantOpen: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantOpen, apply(tt.breaker, tt.outcomes).IsOpen())
		})
	}
}

func TestBreakerVerdicts(t *testing.T) {
	t.Run("failures below the threshold keep the primary", func(t *testing.T) {
		b := New("dep", WithFailureThreshold(2))

		useFallback, change := b.RecordFailure()
		assert.False(t, useFallback)
		assert.Equal(t, Change{}, change)
	})

	t.Run("the tripping failure reports the transition once", func(t *testing.T) {
		b := New("dep", WithFailureThreshold(2))
		b.RecordFailure()

		useFallback, change := b.RecordFailure()
		require.True(t, useFallback)
		assert.Equal(t, Change{Opened: true}, change)

		// Further failures fall back without re-reporting.
		useFallback, change = b.RecordFailure()
		require.True(t, useFallback)
		assert.Equal(t, Change{}, change)
	})

	t.Run("the restoring success reports the transition once", func(t *testing.T) {
		b := New("dep", WithFailureThreshold(1), WithSuccessThreshold(2))
		b.RecordFailure()

		usePrimary, change := b.RecordSuccess()
		require.False(t, usePrimary)
		assert.Equal(t, Change{}, change)

		usePrimary, change = b.RecordSuccess()
		require.True(t, usePrimary)
		assert.Equal(t, Change{Closed: true}, change)
	})

	t.Run("success while closed keeps the primary silently", func(t *testing.T) {
		b := New("dep")

		usePrimary, change := b.RecordSuccess()
		assert.True(t, usePrimary)
		assert.Equal(t, Change{}, change)
	})
}

func TestBreakerReset(t *testing.T) {
	b := New("dep", WithFailureThreshold(1))
	b.RecordFailure()
	require.True(t, b.IsOpen())

	b.Reset()

	assert.False(t, b.IsOpen())
	assert.Equal(t, StateClosed, b.State())
}
