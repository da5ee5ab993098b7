package remote_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"dispatch/internal/adapters/out/remote"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h http.HandlerFunc) remote.Config {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return remote.Config{BaseURL: srv.URL, APIKey: "secret", Timeout: time.Second}
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := remote.NewLedger(remote.Config{})
	assert.ErrorIs(t, err, remote.ErrNotConfigured)

	_, err = remote.NewRatings(remote.Config{BaseURL: "not a url"})
	assert.ErrorIs(t, err, remote.ErrNotConfigured)
}

func TestLedger_Settle(t *testing.T) {
	courierID, orderID := kernel.NewUUID(), kernel.NewUUID()
	var got map[string]any
	cfg := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/settlements", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"reference":"LDG-1"}`))
	})
	ledger, err := remote.NewLedger(cfg)
	require.NoError(t, err)

	receipt, err := ledger.Settle(context.Background(), orderID, map[kernel.UUID]kernel.Money{
		courierID: kernel.MoneyFromInt(8500),
	})

	require.NoError(t, err)
	assert.Equal(t, "LDG-1", receipt.Reference)
	assert.Equal(t, orderID.String(), got["order_id"])
	payouts := got["payouts"].([]any)
	require.Len(t, payouts, 1)
	assert.Equal(t, courierID.String(), payouts[0].(map[string]any)["courier_id"])
	assert.InDelta(t, 8500, payouts[0].(map[string]any)["amount"], 0.001)
}

func TestLedger_Settle_Failures(t *testing.T) {
	tests := map[string]struct {
		status int
		body   string
		want   error
	}{
		"server error":    {http.StatusBadGateway, `{}`, remote.ErrRequestFailed},
		"broken body":     {http.StatusOK, `{`, remote.ErrResponseInvalid},
		"empty reference": {http.StatusOK, `{"reference":""}`, remote.ErrResponseInvalid},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := serve(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			ledger, err := remote.NewLedger(cfg)
			require.NoError(t, err)

			_, err = ledger.Settle(context.Background(), kernel.NewUUID(), map[kernel.UUID]kernel.Money{
				kernel.NewUUID(): kernel.MoneyFromInt(1),
			})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRatings_AverageFor(t *testing.T) {
	rated, unrated, unknown := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()
	cfg := serve(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/couriers/" + rated.String() + "/rating":
			_, _ = w.Write([]byte(`{"average":4.6,"count":12}`))
		case "/couriers/" + unrated.String() + "/rating":
			_, _ = w.Write([]byte(`{"average":0,"count":0}`))
		default:
			http.NotFound(w, r)
		}
	})
	ratings, err := remote.NewRatings(cfg)
	require.NoError(t, err)
	ctx := context.Background()

	avg, ok, err := ratings.AverageFor(ctx, rated)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 4.6, avg, 1e-9)

	_, ok, err = ratings.AverageFor(ctx, unrated)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = ratings.AverageFor(ctx, unknown)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoyalty_Award(t *testing.T) {
	clientID, orderID := kernel.NewUUID(), kernel.NewUUID()
	cfg := serve(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "/awards", r.URL.Path)
		assert.Equal(t, clientID.String(), body["client_id"])
		assert.Equal(t, orderID.String(), body["order_id"])
		w.WriteHeader(http.StatusNoContent)
	})
	loyalty, err := remote.NewLoyalty(cfg)
	require.NoError(t, err)

	assert.NoError(t, loyalty.Award(context.Background(), clientID, orderID, kernel.MoneyFromInt(10000)))
}

func TestCommission_CachesAndFallsBack(t *testing.T) {
	var calls atomic.Int32
	var fail atomic.Bool
	cfg := serve(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "standard", r.URL.Query().Get("order_type"))
		_, _ = w.Write([]byte(`{"rate":"0.18"}`))
	})
	p, err := remote.NewCommission(cfg, decimal.RequireFromString("0.15"), time.Hour, nil)
	require.NoError(t, err)
	ctx := context.Background()

	rate, err := p.CommissionRate(ctx, order.TypeStandard)
	require.NoError(t, err)
	assert.Equal(t, "0.18", rate.String())

	rate, err = p.CommissionRate(ctx, order.TypeStandard)
	require.NoError(t, err)
	assert.Equal(t, "0.18", rate.String())
	assert.Equal(t, int32(1), calls.Load())

	fail.Store(true)
	rate, err = p.CommissionRate(ctx, order.TypeExpress)
	require.NoError(t, err)
	assert.Equal(t, "0.15", rate.String())
}

func TestCommission_Unconfigured(t *testing.T) {
	p, err := remote.NewCommission(remote.Config{}, decimal.RequireFromString("0.2"), time.Minute, nil)
	require.NoError(t, err)

	rate, err := p.CommissionRate(context.Background(), order.TypeCollaborative)
	require.NoError(t, err)
	assert.Equal(t, "0.2", rate.String())

	_, err = remote.NewCommission(remote.Config{}, decimal.NewFromInt(2), time.Minute, nil)
	assert.Error(t, err)
}

func TestGateway_ChannelAndPush(t *testing.T) {
	var paths []string
	var bodies []map[string]any
	cfg := serve(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		paths = append(paths, r.URL.Path)
		bodies = append(bodies, body)
		w.WriteHeader(http.StatusAccepted)
	})
	g, err := remote.NewGateway(cfg)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, g.Channel(order.ChannelSMS).Send(ctx, "+56911112222", "code 123456"))
	require.NoError(t, g.Push(ctx, ports.Notification{
		Kind:      ports.NotifyBidPlaced,
		Recipient: kernel.NewUUID(),
		OrderID:   kernel.NewUUID(),
	}))

	assert.Equal(t, []string{"/messages", "/push"}, paths)
	assert.Equal(t, "sms", bodies[0]["channel"])
	assert.Equal(t, "+56911112222", bodies[0]["destination"])
	assert.Equal(t, "bid_placed", bodies[1]["kind"])
}
