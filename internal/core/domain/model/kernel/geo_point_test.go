package kernel_test

import (
	"math"
	"testing"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeoPoint(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
		wantErr  bool
	}{
		{name: "origin", lat: 0, lng: 0},
		{name: "santiago", lat: -33.4489, lng: -70.6693},
		{name: "poles and antimeridian", lat: 90, lng: -180},
		{name: "latitude too high", lat: 90.1, lng: 0, wantErr: true},
		{name: "longitude too low", lat: 0, lng: -180.5, wantErr: true},
		{name: "nan", lat: math.NaN(), lng: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := kernel.NewGeoPoint(tt.lat, tt.lng)
			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.lat, p.Lat(), 1e-12)
			assert.InDelta(t, tt.lng, p.Lng(), 1e-12)
		})
	}
}

func TestGeoPoint_DistanceTo(t *testing.T) {
	t.Run("same point is zero", func(t *testing.T) {
		p, _ := kernel.NewGeoPoint(-33.45, -70.66)
		assert.InDelta(t, 0, p.DistanceTo(p), 1e-9)
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		a, _ := kernel.NewGeoPoint(0, 0)
		b, _ := kernel.NewGeoPoint(1, 0)
		assert.InDelta(t, kernel.EarthRadiusKm*math.Pi/180, a.DistanceTo(b), 1e-6)
	})

	t.Run("symmetric", func(t *testing.T) {
		a, _ := kernel.NewGeoPoint(-33.4489, -70.6693)
		b, _ := kernel.NewGeoPoint(-33.0472, -71.6127)
		assert.InDelta(t, a.DistanceTo(b), b.DistanceTo(a), 1e-9)
		assert.InDelta(t, 98.0, a.DistanceTo(b), 5.0)
	})
}

func TestGeoPoint_IsEqual(t *testing.T) {
	a, _ := kernel.NewGeoPoint(1.5, 2.5)
	b, _ := kernel.NewGeoPoint(1.5, 2.5)
	c, _ := kernel.NewGeoPoint(1.5, 2.6)

	assert.True(t, a.IsEqual(b))
	assert.False(t, a.IsEqual(c))
	assert.Equal(t, "1.500000,2.500000", a.String())
}
