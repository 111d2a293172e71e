package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/sei-backend/internal/repository"
	"github.com/stemsi/sei-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ScoresDemoRoster(t *testing.T) {
	ctx := context.Background()
	stores := repository.NewMemoryStores()
	recalc := service.NewRiskRecalculationService(stores.Students, stores.Checkins, nil, zerolog.Nop())

	require.NoError(t, Load(ctx, stores, recalc, zerolog.Nop()))

	want := map[string]int{
		"student-1": 13,
		"student-2": 52,
		"student-3": 69,
		"student-4": 22,
		"student-5": 54,
	}
	for id, index := range want {
		s, err := stores.Students.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, index, s.RiskIndex, id)
	}

	interventions, err := stores.Interventions.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, interventions, 2)

	followUps, err := stores.FollowUps.List(ctx, "intervention-1")
	require.NoError(t, err)
	assert.Len(t, followUps, 2)
}

func TestLoad_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	stores := repository.NewMemoryStores()
	recalc := service.NewRiskRecalculationService(stores.Students, stores.Checkins, nil, zerolog.Nop())

	require.NoError(t, Load(ctx, stores, recalc, zerolog.Nop()))
	require.NoError(t, Load(ctx, stores, recalc, zerolog.Nop()))

	checkins, err := stores.Checkins.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, checkins, 10)
}
