package geo_test

import (
	"context"
	"testing"

	"dispatch/internal/adapters/out/geo"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimator_DistanceAndDuration(t *testing.T) {
	e, err := geo.NewEstimator(geo.Config{AverageSpeedKmh: 20, RoadFactor: 1, HandlingMinutes: 2})
	require.NoError(t, err)

	to := testkit.NorthOf(testkit.Origin, 10)
	km, minutes, err := e.DistanceAndDuration(context.Background(),
		testkit.Address(t, "A", &testkit.Origin), testkit.Address(t, "B", &to))

	require.NoError(t, err)
	assert.InDelta(t, 10, km, 0.05)
	assert.Equal(t, 32, minutes)
}

func TestEstimator_RoadFactorStretchesDistance(t *testing.T) {
	e, err := geo.NewEstimator(geo.DefaultConfig())
	require.NoError(t, err)

	to := testkit.NorthOf(testkit.Origin, 2)
	km, _, err := e.DistanceAndDuration(context.Background(),
		testkit.Address(t, "A", &testkit.Origin), testkit.Address(t, "B", &to))

	require.NoError(t, err)
	assert.InDelta(t, 2.6, km, 0.05)
}

func TestEstimator_MissingCoordinates(t *testing.T) {
	e, err := geo.NewEstimator(geo.DefaultConfig())
	require.NoError(t, err)

	_, _, err = e.DistanceAndDuration(context.Background(),
		testkit.Address(t, "A", nil), testkit.Address(t, "B", &testkit.Origin))

	assert.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestNewEstimator_RejectsBadConfig(t *testing.T) {
	tests := map[string]geo.Config{
		"zero speed":      {AverageSpeedKmh: 0, RoadFactor: 1},
		"shrinking roads": {AverageSpeedKmh: 20, RoadFactor: 0.5},
		"negative stop":   {AverageSpeedKmh: 20, RoadFactor: 1, HandlingMinutes: -1},
	}
	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := geo.NewEstimator(cfg)
			assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		})
	}
}
