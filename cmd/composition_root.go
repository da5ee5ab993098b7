package cmd

import (
	"context"
	"errors"
	"fmt"

	dispatchhttp "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/in/worker"
	"dispatch/internal/adapters/out/authz"
	"dispatch/internal/adapters/out/codegen"
	"dispatch/internal/adapters/out/geo"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/queue"
	"dispatch/internal/adapters/out/ratelimit"
	"dispatch/internal/adapters/out/remote"
	"dispatch/internal/core/application/usecases/candidates"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"
	"dispatch/internal/pkg/clock"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CompositionRoot owns the long-lived collaborators and builds every handler
// from them.
type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	logger     *zap.SugaredLogger

	authz      *authz.Enforcer
	clock      ports.Clock
	geo        *geo.Estimator
	matcher    *services.Matcher
	loader     *candidates.Loader
	queue      *queue.Client
	redis      *redis.Client
	commission *remote.Commission
	ledger     *remote.Ledger
	loyalty    *remote.Loyalty
	gateway    *remote.Gateway
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *zap.SugaredLogger) (*CompositionRoot, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	enforcer, err := authz.New(gormDB, logger)
	if err != nil {
		return nil, fmt.Errorf("build authorizer: %w", err)
	}
	estimator, err := geo.NewEstimator(cfg.Geo.ToEstimator())
	if err != nil {
		return nil, fmt.Errorf("build geo estimator: %w", err)
	}
	matcher, err := services.NewMatcher(cfg.Matching.ToServices())
	if err != nil {
		return nil, fmt.Errorf("build matcher: %w", err)
	}

	fallback, err := cfg.Commission.Fallback()
	if err != nil {
		return nil, err
	}
	commission, err := remote.NewCommission(cfg.Services.Commission.ToRemote(), fallback, cfg.Commission.CacheTTL, logger)
	if err != nil {
		return nil, fmt.Errorf("build commission provider: %w", err)
	}
	ledger, err := remote.NewLedger(cfg.Services.Ledger.ToRemote())
	if err != nil {
		return nil, fmt.Errorf("build ledger client: %w", err)
	}
	loyalty, err := remote.NewLoyalty(cfg.Services.Loyalty.ToRemote())
	if err != nil {
		return nil, fmt.Errorf("build loyalty client: %w", err)
	}

	var ratings ports.RatingService
	if cfg.Services.Ratings.ToRemote().Configured() {
		r, err := remote.NewRatings(cfg.Services.Ratings.ToRemote())
		if err != nil {
			return nil, fmt.Errorf("build ratings client: %w", err)
		}
		ratings = r
	} else {
		logger.Warnw("ratings_service_not_configured", "default_rating", cfg.Matching.DefaultRating)
	}

	var gateway *remote.Gateway
	if cfg.Services.Gateway.ToRemote().Configured() {
		if gateway, err = remote.NewGateway(cfg.Services.Gateway.ToRemote()); err != nil {
			return nil, fmt.Errorf("build message gateway: %w", err)
		}
	} else {
		logger.Warnw("message_gateway_not_configured", "effect", "otp codes and pushes are not delivered")
	}

	var rdb *redis.Client
	if cfg.OTP.RateLimitEnabled {
		rdb = ratelimit.NewRedisClient(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	}

	return &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		logger:     logger,
		authz:      enforcer,
		clock:      clock.System{},
		geo:        estimator,
		matcher:    matcher,
		loader:     candidates.NewLoader(ratings, logger),
		queue:      queue.NewClient(cfg.Queue.ToQueue(cfg.Redis), logger),
		redis:      rdb,
		commission: commission,
		ledger:     ledger,
		loyalty:    loyalty,
		gateway:    gateway,
	}, nil
}

// Close releases the broker and Redis connections.
func (c *CompositionRoot) Close() error {
	var closeErrs []error
	if err := c.queue.Close(); err != nil {
		closeErrs = append(closeErrs, err)
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			closeErrs = append(closeErrs, err)
		}
	}
	return errors.Join(closeErrs...)
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) orderUoW() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) courierUoW() commands.CourierUoWFactory {
	return FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) notifier() ports.Notifier {
	return c.queue
}

// settlement hands completed orders to the worker, or settles them in the
// request when the queue is off.
func (c *CompositionRoot) settlement() ports.SettlementQueue {
	if c.queue.Enabled() {
		return c.queue
	}
	return inlineSettlement{settle: c.CreateSettleOrderCommandHandler()}
}

func (c *CompositionRoot) otpChannels() commands.OTPChannels {
	switch {
	case c.queue.Enabled():
		return commands.OTPChannels{
			SMS:   c.queue.OTPChannel(order.ChannelSMS),
			Email: c.queue.OTPChannel(order.ChannelEmail),
		}
	case c.gateway != nil:
		return commands.OTPChannels{
			SMS:   c.gateway.Channel(order.ChannelSMS),
			Email: c.gateway.Channel(order.ChannelEmail),
		}
	default:
		return commands.OTPChannels{}
	}
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.uow(), c.geo, c.authz, c.notifier(), c.clock, c.cfg.Matching.RadiusKm, c.logger)
}

func (c *CompositionRoot) CreateUpdateOrderCommandHandler() commands.UpdateOrderCommandHandler {
	return commands.NewUpdateOrderCommandHandler(c.orderUoW(), c.geo, c.authz, c.logger)
}

func (c *CompositionRoot) CreateChangeOrderStatusCommandHandler() commands.ChangeOrderStatusCommandHandler {
	return commands.NewChangeOrderStatusCommandHandler(c.uow(), c.authz, c.notifier(), c.settlement(), c.clock, c.logger)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.uow(), c.authz, c.notifier(), c.clock, c.logger)
}

func (c *CompositionRoot) CreatePlaceBidCommandHandler() commands.PlaceBidCommandHandler {
	return commands.NewPlaceBidCommandHandler(c.uow(), c.authz, c.notifier(), c.clock, c.logger)
}

func (c *CompositionRoot) CreateAcceptBidCommandHandler() commands.AcceptBidCommandHandler {
	return commands.NewAcceptBidCommandHandler(c.uow(), c.authz, c.notifier(), c.clock, c.logger)
}

func (c *CompositionRoot) CreateCounterOfferCommandHandler() commands.CounterOfferCommandHandler {
	return commands.NewCounterOfferCommandHandler(c.uow(), c.authz, c.notifier(), c.clock, c.logger)
}

func (c *CompositionRoot) CreateAutoAssignCourierCommandHandler() commands.AutoAssignCourierCommandHandler {
	return commands.NewAutoAssignCourierCommandHandler(c.uow(), c.matcher, c.loader, c.authz, c.notifier(), c.clock, c.logger)
}

func (c *CompositionRoot) CreateAssignPendingExpressCommandHandler() commands.AssignPendingExpressCommandHandler {
	return commands.NewAssignPendingExpressCommandHandler(c.uow(), c.CreateAutoAssignCourierCommandHandler(), c.logger)
}

func (c *CompositionRoot) CreateRecordTrackingCommandHandler() commands.RecordTrackingCommandHandler {
	return commands.NewRecordTrackingCommandHandler(c.uow(), c.authz, c.clock, c.logger)
}

func (c *CompositionRoot) CreateOTPCommandHandler() commands.OTPCommandHandler {
	return commands.NewOTPCommandHandler(c.orderUoW(), c.authz, codegen.Numeric{}, c.otpChannels(),
		c.cfg.OTP.Policy(), c.notifier(), c.clock, c.logger)
}

func (c *CompositionRoot) CreateCollaborativeCommandHandler() commands.CollaborativeCommandHandler {
	return commands.NewCollaborativeCommandHandler(c.uow(), c.authz, c.commission, c.ledger, c.notifier(), c.clock, c.logger)
}

func (c *CompositionRoot) CreateSettleOrderCommandHandler() commands.SettleOrderCommandHandler {
	return commands.NewSettleOrderCommandHandler(c.orderUoW(), c.commission, c.ledger, c.loyalty, c.notifier(), c.logger)
}

func (c *CompositionRoot) CreateRegisterCourierCommandHandler() commands.RegisterCourierCommandHandler {
	return commands.NewRegisterCourierCommandHandler(c.courierUoW(), c.authz, c.clock, c.logger)
}

func (c *CompositionRoot) CreateUpdateCourierPresenceCommandHandler() commands.UpdateCourierPresenceCommandHandler {
	return commands.NewUpdateCourierPresenceCommandHandler(c.courierUoW(), c.authz, c.clock, c.logger)
}

func (c *CompositionRoot) CreateExpireStalePresenceCommandHandler() commands.ExpireStalePresenceCommandHandler {
	return commands.NewExpireStalePresenceCommandHandler(c.courierUoW(), c.clock, c.logger)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.uowFactory, c.authz)
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateListBidsQueryHandler() queries.ListBidsQueryHandler {
	return queries.NewListBidsQueryHandler(c.uowFactory, c.authz)
}

func (c *CompositionRoot) CreateFindBestCouriersQueryHandler() queries.FindBestCouriersQueryHandler {
	return queries.NewFindBestCouriersQueryHandler(c.uowFactory, c.authz, c.matcher, c.loader, c.clock)
}

func (c *CompositionRoot) CreateListTrackingQueryHandler() queries.ListTrackingQueryHandler {
	return queries.NewListTrackingQueryHandler(c.gormDB, c.uowFactory, c.authz)
}

func (c *CompositionRoot) CreateListParticipantsQueryHandler() queries.ListParticipantsQueryHandler {
	return queries.NewListParticipantsQueryHandler(c.uowFactory, c.authz)
}

func (c *CompositionRoot) CreateComputeEarningsQueryHandler() queries.ComputeEarningsQueryHandler {
	return queries.NewComputeEarningsQueryHandler(c.uowFactory, c.authz, c.commission)
}

func (c *CompositionRoot) CreateListCouriersQueryHandler() queries.ListCouriersQueryHandler {
	return queries.NewListCouriersQueryHandler(c.gormDB, c.authz)
}

// CreateHTTPServer loads the API document and wires every handler behind it.
func (c *CompositionRoot) CreateHTTPServer(ctx context.Context) (*dispatchhttp.Server, error) {
	auth, err := dispatchhttp.NewAuthenticator(c.cfg.JWT.ToAuth())
	if err != nil {
		return nil, err
	}
	spec, err := dispatchhttp.LoadOpenAPI(ctx)
	if err != nil {
		return nil, err
	}

	h := dispatchhttp.Handlers{
		CreateOrder:     c.CreateCreateOrderCommandHandler(),
		UpdateOrder:     c.CreateUpdateOrderCommandHandler(),
		ChangeStatus:    c.CreateChangeOrderStatusCommandHandler(),
		CancelOrder:     c.CreateCancelOrderCommandHandler(),
		PlaceBid:        c.CreatePlaceBidCommandHandler(),
		AcceptBid:       c.CreateAcceptBidCommandHandler(),
		CounterOffers:   c.CreateCounterOfferCommandHandler(),
		AutoAssign:      c.CreateAutoAssignCourierCommandHandler(),
		RecordTracking:  c.CreateRecordTrackingCommandHandler(),
		OTP:             c.CreateOTPCommandHandler(),
		Collaborative:   c.CreateCollaborativeCommandHandler(),
		RegisterCourier: c.CreateRegisterCourierCommandHandler(),
		CourierPresence: c.CreateUpdateCourierPresenceCommandHandler(),

		GetOrder:         c.CreateGetOrderQueryHandler(),
		ListOrders:       c.CreateListOrdersQueryHandler(),
		ListBids:         c.CreateListBidsQueryHandler(),
		FindBestCouriers: c.CreateFindBestCouriersQueryHandler(),
		ListTracking:     c.CreateListTrackingQueryHandler(),
		ListParticipants: c.CreateListParticipantsQueryHandler(),
		ComputeEarnings:  c.CreateComputeEarningsQueryHandler(),
		ListCouriers:     c.CreateListCouriersQueryHandler(),
	}

	limiter := ratelimit.New(c.redis, c.cfg.OTP.RateRule())
	return dispatchhttp.NewServer(h, auth, spec, limiter, c.logger), nil
}

// CreateConsumer builds the task consumer. It returns nil when the queue is
// disabled.
func (c *CompositionRoot) CreateConsumer() *worker.Consumer {
	if !c.queue.Enabled() {
		return nil
	}
	channels := map[order.Channel]ports.OTPChannel{}
	var pusher worker.Pusher
	if c.gateway != nil {
		channels[order.ChannelSMS] = c.gateway.Channel(order.ChannelSMS)
		channels[order.ChannelEmail] = c.gateway.Channel(order.ChannelEmail)
		pusher = c.gateway
	}
	return worker.NewConsumer(pusher, c.CreateSettleOrderCommandHandler(), channels, c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		jobs.NewExpressAssignmentJob(
			c.CreateAssignPendingExpressCommandHandler(),
			c.cfg.Jobs.ExpressSchedule,
			c.cfg.Jobs.ExpressBatch,
			c.logger,
		),
		jobs.NewPresenceExpiryJob(
			c.CreateExpireStalePresenceCommandHandler(),
			c.cfg.Jobs.PresenceSchedule,
			c.cfg.Jobs.PresenceMaxSilence,
			c.cfg.Jobs.PresenceBatch,
			c.logger,
		),
	)
}

// inlineSettlement runs settlement in the caller's goroutine.
type inlineSettlement struct {
	settle commands.SettleOrderCommandHandler
}

func (s inlineSettlement) EnqueueSettlement(ctx context.Context, orderID kernel.UUID) error {
	cmd, err := commands.NewSettleOrderCommand(orderID)
	if err != nil {
		return err
	}
	return s.settle.Handle(ctx, cmd)
}

type FuncCourierUoWFactory func() commands.CourierUoW

func (f FuncCourierUoWFactory) Create() commands.CourierUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
