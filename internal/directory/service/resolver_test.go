package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "cityline/pkg/domain-errors"
)

func TestResolve(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	colomboWater, err := svc.CreateInstitution(ctx, CreateInstitutionParams{
		Name: "Colombo Water", Province: "Western", District: "Colombo",
	})
	require.NoError(t, err)
	gampahaRoads, err := svc.CreateInstitution(ctx, CreateInstitutionParams{
		Name: "Gampaha Roads", Province: "Western", District: "Gampaha",
	})
	require.NoError(t, err)

	t.Run("exact district match wins", func(t *testing.T) {
		inst, err := svc.Resolve(ctx, "Western", "Gampaha")
		require.NoError(t, err)
		assert.Equal(t, gampahaRoads.ID, inst.ID)
	})

	t.Run("match is case-insensitive and trimmed", func(t *testing.T) {
		inst, err := svc.Resolve(ctx, "  western ", "COLOMBO")
		require.NoError(t, err)
		assert.Equal(t, colomboWater.ID, inst.ID)
	})

	t.Run("falls back to any institution in the province", func(t *testing.T) {
		inst, err := svc.Resolve(ctx, "Western", "Kalutara")
		require.NoError(t, err)
		// No Kalutara institution exists; the oldest Western one takes it.
		assert.Equal(t, colomboWater.ID, inst.ID)
	})

	t.Run("fails intake when no institution covers the province", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "Southern", "Galle")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("rejects blank location input", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "", "Colombo")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = svc.Resolve(ctx, "Western", "   ")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
