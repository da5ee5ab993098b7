package bid_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newBid(t *testing.T) *bid.Bid {
	t.Helper()
	b, err := bid.NewBid(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), kernel.MoneyFromInt(2000), bid.Times{}, now)
	require.NoError(t, err)
	return b
}

func TestNewBid(t *testing.T) {
	t.Run("pending on creation", func(t *testing.T) {
		b := newBid(t)
		require.NoError(t, b.Validate())
		assert.Equal(t, bid.StatusPending, b.Status())
		assert.Equal(t, now, b.CreatedAt())
	})

	t.Run("validates input", func(t *testing.T) {
		pickup := now.Add(2 * time.Hour)
		delivery := now.Add(time.Hour)

		_, err := bid.NewBid(kernel.UUID{}, kernel.NewUUID(), kernel.UUID{}, kernel.Money{},
			bid.Times{Pickup: &pickup, Delivery: &delivery}, now)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.ErrorContains(t, err, "courier id")
		assert.ErrorContains(t, err, "delivery precedes pickup")
	})

	t.Run("zero value", func(t *testing.T) {
		var b bid.Bid
		assert.ErrorIs(t, b.Validate(), bid.ErrBidIsNotConstructed)
	})
}

func TestBid_Settle(t *testing.T) {
	tests := []struct {
		name   string
		apply  func(*bid.Bid) error
		expect bid.Status
	}{
		{name: "accept", apply: func(b *bid.Bid) error { return b.Accept(now) }, expect: bid.StatusAccepted},
		{name: "reject", apply: func(b *bid.Bid) error { return b.Reject(now) }, expect: bid.StatusRejected},
		{name: "expire", apply: func(b *bid.Bid) error { return b.Expire(now) }, expect: bid.StatusExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBid(t)
			require.NoError(t, tt.apply(b))
			assert.Equal(t, tt.expect, b.Status())

			assert.ErrorIs(t, b.Accept(now), errs.ErrConflict)
			assert.ErrorIs(t, b.Reprice(kernel.MoneyFromInt(1), now), errs.ErrConflict)
		})
	}
}

func TestCounterOffer(t *testing.T) {
	t.Run("accept reprices the bid and keeps it pending", func(t *testing.T) {
		b := newBid(t)
		c, err := bid.NewCounterOffer(kernel.NewUUID(), b, kernel.MoneyFromInt(1700), " can you do 1700? ", now)
		require.NoError(t, err)
		assert.Equal(t, "can you do 1700?", c.Message())
		assert.True(t, c.OrderID().IsEqual(b.OrderID()))

		require.NoError(t, c.Accept(b, now.Add(time.Minute)))

		assert.Equal(t, bid.CounterAccepted, c.Status())
		assert.NotNil(t, c.ResolvedAt())
		assert.Equal(t, "1700.00", b.Price().String())
		assert.True(t, b.IsPending())
	})

	t.Run("decline leaves price", func(t *testing.T) {
		b := newBid(t)
		c, err := bid.NewCounterOffer(kernel.NewUUID(), b, kernel.MoneyFromInt(1700), "", now)
		require.NoError(t, err)

		require.NoError(t, c.Decline(b, now))
		assert.Equal(t, bid.CounterDeclined, c.Status())
		assert.Equal(t, "2000.00", b.Price().String())

		assert.ErrorIs(t, c.Accept(b, now), errs.ErrConflict)
	})

	t.Run("only on pending bids", func(t *testing.T) {
		b := newBid(t)
		require.NoError(t, b.Reject(now))

		_, err := bid.NewCounterOffer(kernel.NewUUID(), b, kernel.MoneyFromInt(1700), "", now)
		assert.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("bid closed before resolution", func(t *testing.T) {
		b := newBid(t)
		c, err := bid.NewCounterOffer(kernel.NewUUID(), b, kernel.MoneyFromInt(1700), "", now)
		require.NoError(t, err)
		require.NoError(t, b.Reject(now))

		assert.ErrorIs(t, c.Accept(b, now), errs.ErrConflict)
		assert.Equal(t, bid.CounterPending, c.Status())
	})

	t.Run("foreign bid", func(t *testing.T) {
		b := newBid(t)
		c, err := bid.NewCounterOffer(kernel.NewUUID(), b, kernel.MoneyFromInt(1700), "", now)
		require.NoError(t, err)

		assert.ErrorIs(t, c.Accept(newBid(t), now), errs.ErrObjectNotFound)
	})
}

func TestRestore(t *testing.T) {
	b := newBid(t)
	restored, err := bid.RestoreBid(b.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, b.Snapshot(), restored.Snapshot())

	s := b.Snapshot()
	s.Status = "won"
	_, err = bid.RestoreBid(s)
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)

	c, err := bid.NewCounterOffer(kernel.NewUUID(), b, kernel.MoneyFromInt(1), "", now)
	require.NoError(t, err)
	restoredCounter, err := bid.RestoreCounterOffer(c.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, c.Snapshot(), restoredCounter.Snapshot())
}
