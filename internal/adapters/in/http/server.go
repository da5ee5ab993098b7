package http

import (
	"context"
	"net/http"
	"time"

	"dispatch/internal/adapters/out/ratelimit"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Handlers groups the use cases the HTTP adapter drives.
type Handlers struct {
	// Command handlers
	CreateOrder     commands.CreateOrderCommandHandler
	UpdateOrder     commands.UpdateOrderCommandHandler
	ChangeStatus    commands.ChangeOrderStatusCommandHandler
	CancelOrder     commands.CancelOrderCommandHandler
	PlaceBid        commands.PlaceBidCommandHandler
	AcceptBid       commands.AcceptBidCommandHandler
	CounterOffers   commands.CounterOfferCommandHandler
	AutoAssign      commands.AutoAssignCourierCommandHandler
	RecordTracking  commands.RecordTrackingCommandHandler
	OTP             commands.OTPCommandHandler
	Collaborative   commands.CollaborativeCommandHandler
	RegisterCourier commands.RegisterCourierCommandHandler
	CourierPresence commands.UpdateCourierPresenceCommandHandler

	// Query handlers
	GetOrder         queries.GetOrderQueryHandler
	ListOrders       queries.ListOrdersQueryHandler
	ListBids         queries.ListBidsQueryHandler
	FindBestCouriers queries.FindBestCouriersQueryHandler
	ListTracking     queries.ListTrackingQueryHandler
	ListParticipants queries.ListParticipantsQueryHandler
	ComputeEarnings  queries.ComputeEarningsQueryHandler
	ListCouriers     queries.ListCouriersQueryHandler
}

// RateLimiter is satisfied by ratelimit.Limiter.
type RateLimiter interface {
	Enabled() bool
	Allow(ctx context.Context, key string) (ratelimit.Decision, error)
}

// Config tunes the echo instance.
type Config struct {
	BodyLimit      string
	RequestTimeout time.Duration
}

// Server exposes the dispatch use cases over HTTP.
type Server struct {
	h       Handlers
	auth    *Authenticator
	spec    *OpenAPI
	otpRate RateLimiter
	logger  *zap.SugaredLogger
}

func NewServer(h Handlers, auth *Authenticator, spec *OpenAPI, otpRate RateLimiter, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Server{h: h, auth: auth, spec: spec, otpRate: otpRate, logger: logger}
}

// NewEcho builds the echo instance with middleware and every route.
func (s *Server) NewEcho(cfg Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewErrorHandler(s.logger)

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}
	if cfg.RequestTimeout > 0 {
		e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{Timeout: cfg.RequestTimeout}))
	}
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			fields := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				s.logger.Warnw("http_request", append(fields, "error", v.Error)...)
				return nil
			}
			s.logger.Debugw("http_request", fields...)
			return nil
		},
	}))

	s.Register(e)
	return e
}

// Register mounts the routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/health", s.Health)
	e.GET("/openapi.yaml", s.spec.Serve)

	api := e.Group("/api/v1", s.auth.Middleware(), s.spec.Validator())

	deliveries := api.Group("/deliveries")
	deliveries.POST("", s.CreateDelivery)
	deliveries.GET("", s.ListDeliveries)
	deliveries.POST("/collaborative", s.CreateCollaborativeDelivery)
	deliveries.GET("/:id", s.GetDelivery)
	deliveries.PUT("/:id", s.UpdateDelivery)
	deliveries.PUT("/:id/status", s.ChangeDeliveryStatus)
	deliveries.POST("/:id/cancel", s.CancelDelivery)

	deliveries.POST("/:id/bids", s.PlaceBid)
	deliveries.GET("/:id/bids", s.ListBids)
	deliveries.POST("/:id/bids/:bid_id/accept", s.AcceptBid)
	deliveries.POST("/:id/bids/:bid_id/counter-offers", s.CreateCounterOffer)
	deliveries.POST("/:id/counter-offers/:counter_id/resolve", s.ResolveCounterOffer)

	deliveries.GET("/:id/matches", s.FindBestCouriers)
	deliveries.POST("/:id/auto-assign", s.AutoAssignCourier)
	deliveries.POST("/:id/tracking", s.RecordTracking)
	deliveries.GET("/:id/tracking", s.ListTracking)

	otp := s.rateLimited("otp")
	deliveries.POST("/:id/otp", s.GenerateOTP, otp)
	deliveries.POST("/:id/otp/verify", s.VerifyOTP, otp)
	deliveries.POST("/:id/proof", s.RecordProof)

	deliveries.POST("/:id/collaborative/join", s.JoinCollaborative)
	deliveries.GET("/:id/collaborative", s.ListParticipants)
	deliveries.GET("/:id/collaborative/earnings", s.ComputeEarnings)
	deliveries.POST("/:id/collaborative/distribute", s.DistributeEarnings)
	deliveries.PUT("/:id/collaborative/:participant_id", s.UpdateParticipant)

	couriers := api.Group("/couriers")
	couriers.POST("", s.RegisterCourier)
	couriers.GET("", s.ListCouriers)
	couriers.PUT("/me/presence", s.UpdateCourierPresence)
}

// Health handles GET /health.
func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// rateLimited caps how often one caller may hit a route family.
func (s *Server) rateLimited(family string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if s.otpRate == nil || !s.otpRate.Enabled() {
				return next(c)
			}
			key := family + ":" + actorFrom(c).ID().String()
			decision, err := s.otpRate.Allow(c.Request().Context(), key)
			if err != nil {
				return err
			}
			if !decision.Allowed {
				return errs.NewRateLimitedError(family, decision.RetryAfter)
			}
			return next(c)
		}
	}
}
