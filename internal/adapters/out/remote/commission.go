package remote

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type commissionResponse struct {
	Rate decimal.Decimal `json:"rate"`
}

type cachedRate struct {
	rate    decimal.Decimal
	fetched time.Time
}

// Commission implements ports.CommissionProvider. Rates are cached for ttl;
// when the service is unreachable the last known rate, then the fallback,
// is used.
type Commission struct {
	c        *client
	fallback decimal.Decimal
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.SugaredLogger

	mu    sync.Mutex
	cache map[order.Type]cachedRate
}

// NewCommission returns a provider. Without a configured service every
// order type pays the fallback rate.
func NewCommission(cfg Config, fallback decimal.Decimal, ttl time.Duration, logger *zap.SugaredLogger) (*Commission, error) {
	if fallback.IsNegative() || fallback.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("commission fallback %s outside [0, 1]", fallback)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	p := &Commission{
		fallback: fallback,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
		cache:    make(map[order.Type]cachedRate),
	}
	if cfg.Configured() {
		c, err := newClient(cfg)
		if err != nil {
			return nil, err
		}
		p.c = c
	}
	return p, nil
}

func (p *Commission) CommissionRate(ctx context.Context, orderType order.Type) (decimal.Decimal, error) {
	if p.c == nil {
		return p.fallback, nil
	}

	p.mu.Lock()
	cached, ok := p.cache[orderType]
	p.mu.Unlock()
	if ok && p.now().Sub(cached.fetched) < p.ttl {
		return cached.rate, nil
	}

	var resp commissionResponse
	err := p.c.getJSON(ctx, "/commission?order_type="+url.QueryEscape(string(orderType)), &resp)
	if err == nil && (resp.Rate.IsNegative() || resp.Rate.GreaterThan(decimal.NewFromInt(1))) {
		err = fmt.Errorf("%w: rate %s outside [0, 1]", ErrResponseInvalid, resp.Rate)
	}
	if err != nil {
		p.logger.Warnw("commission_fetch_failed", "order_type", string(orderType), "error", err)
		if ok {
			return cached.rate, nil
		}
		return p.fallback, nil
	}

	p.mu.Lock()
	p.cache[orderType] = cachedRate{rate: resp.Rate, fetched: p.now()}
	p.mu.Unlock()
	return resp.Rate, nil
}
