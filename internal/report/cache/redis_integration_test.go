//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cityline/internal/report/cache"
	"cityline/internal/report/models"
	"cityline/pkg/domain"
	"cityline/pkg/platform/sentinel"
	"cityline/pkg/testutil/containers"
)

func TestRedisCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	rc := containers.GetManager().GetRedis(t)
	require.NoError(t, rc.FlushAll(ctx))

	report := models.BuildReport(models.TimeframeWeek, time.Now().UTC().Truncate(time.Second), []models.InstitutionCounts{
		{
			InstitutionID:   domain.NewInstitutionID(),
			InstitutionName: "Colombo Municipal Council",
			Total:           4,
			Resolved:        2,
			OnTime:          1,
			ResolutionDays:  9,
		},
	})

	t.Run("miss before set", func(t *testing.T) {
		_, err := cache.NewRedis(rc.Client, time.Minute).Get(ctx, models.TimeframeWeek)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("round trip", func(t *testing.T) {
		c := cache.NewRedis(rc.Client, time.Minute)
		require.NoError(t, c.Set(ctx, report))

		got, err := c.Get(ctx, models.TimeframeWeek)
		require.NoError(t, err)
		assert.Equal(t, report.Timeframe, got.Timeframe)
		assert.True(t, report.GeneratedAt.Equal(got.GeneratedAt))
		require.Len(t, got.Institutions, 1)
		assert.Equal(t, report.Institutions[0], got.Institutions[0])
		assert.Equal(t, report.System, got.System)
	})

	t.Run("timeframes do not collide", func(t *testing.T) {
		c := cache.NewRedis(rc.Client, time.Minute)
		require.NoError(t, c.Set(ctx, report))

		_, err := c.Get(ctx, models.TimeframeYear)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("entries expire", func(t *testing.T) {
		c := cache.NewRedis(rc.Client, 50*time.Millisecond)
		require.NoError(t, c.Set(ctx, report))
		time.Sleep(120 * time.Millisecond)

		_, err := c.Get(ctx, models.TimeframeWeek)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
