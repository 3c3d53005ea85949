package orders

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/BearBump/OrderTrack/internal/apperr"
	"github.com/BearBump/OrderTrack/internal/broker/messages"
	"github.com/BearBump/OrderTrack/internal/logger"
	"github.com/BearBump/OrderTrack/internal/models"
	"github.com/BearBump/OrderTrack/internal/ratelimit"
	"github.com/BearBump/OrderTrack/internal/retry"
	"github.com/BearBump/OrderTrack/internal/session"
	"github.com/BearBump/OrderTrack/internal/status"
	"go.uber.org/zap"
)

const (
	msgOrderRequired    = "Order ID and email are required"
	msgInvalidEmail     = "Please enter a valid email address"
	msgTrackingRequired = "Tracking number and courier are required"
	msgNoOrderInSession = "No order in session, search for your order again"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Backend interface {
	GetOrder(ctx context.Context, orderID, email string) (*models.Order, error)
	GetTracking(ctx context.Context, trackingNumber, courier string) (*models.TrackingHistory, error)
	GetBanner(ctx context.Context) (*models.Banner, error)
}

type SessionStore interface {
	Get(ctx context.Context, sessionID, key string, out any) (bool, error)
	Set(ctx context.Context, sessionID, key string, value any) error
	SetIfPresent(ctx context.Context, sessionID, guardKey, key string, value any) (bool, error)
	Clear(ctx context.Context, sessionID string) error
}

type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type Config struct {
	TrackingRetries     int
	TrackingRetryDelay  time.Duration
	TrackingConcurrency int
	LookupTopic         string
}

func DefaultConfig() Config {
	return Config{
		TrackingRetries:     retry.DefaultMaxRetries,
		TrackingRetryDelay:  retry.DefaultInitialDelay,
		TrackingConcurrency: 10,
		LookupTopic:         "order.lookup",
	}
}

type Service struct {
	backend   Backend
	limiter   ratelimit.Limiter
	sessions  SessionStore
	publisher Publisher
	cfg       Config

	retryOpts []retry.Option
	now       func() time.Time
}

// New wires the service. limiter, sessions and publisher may be nil:
// lookups are then not limited, not remembered or not published.
func New(b Backend, limiter ratelimit.Limiter, sessions SessionStore, publisher Publisher, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.TrackingRetries < 0 {
		cfg.TrackingRetries = def.TrackingRetries
	}
	if cfg.TrackingRetryDelay <= 0 {
		cfg.TrackingRetryDelay = def.TrackingRetryDelay
	}
	if cfg.TrackingConcurrency <= 0 {
		cfg.TrackingConcurrency = def.TrackingConcurrency
	}
	if cfg.LookupTopic == "" {
		cfg.LookupTopic = def.LookupTopic
	}
	return &Service{
		backend:   b,
		limiter:   limiter,
		sessions:  sessions,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// WithRetryOptions appends options to every tracking retry, e.g. a test timer.
func (s *Service) WithRetryOptions(opts ...retry.Option) *Service {
	s.retryOpts = append(s.retryOpts, opts...)
	return s
}

type Result[T any] struct {
	Success bool          `json:"success"`
	Data    *T            `json:"data"`
	Error   *apperr.Error `json:"error,omitempty"`
}

func succeed[T any](v *T) Result[T] {
	return Result[T]{Success: true, Data: v}
}

func fail[T any](err error) Result[T] {
	return Result[T]{Success: false, Error: apperr.From(err)}
}

type GetOrderInput struct {
	OrderID string `json:"order_id"`
	Email   string `json:"email"`
}

func (in GetOrderInput) normalize() GetOrderInput {
	return GetOrderInput{OrderID: strings.TrimSpace(in.OrderID), Email: strings.TrimSpace(in.Email)}
}

func (in GetOrderInput) validate() error {
	if in.OrderID == "" || in.Email == "" {
		return apperr.Validation(msgOrderRequired)
	}
	if !emailRe.MatchString(in.Email) {
		return apperr.Validation(msgInvalidEmail)
	}
	return nil
}

type GetTrackingInput struct {
	TrackingNumber string `json:"tracking_number"`
	Courier        string `json:"courier"`
}

// GetOrder validates the input and fetches the order. It is not retried.
func (s *Service) GetOrder(ctx context.Context, in GetOrderInput) Result[models.Order] {
	in = in.normalize()
	if err := in.validate(); err != nil {
		return fail[models.Order](err)
	}
	o, err := s.backend.GetOrder(ctx, in.OrderID, in.Email)
	if err != nil {
		return fail[models.Order](err)
	}
	return succeed(o)
}

// GetTracking fetches one shipment history, retrying transient failures.
func (s *Service) GetTracking(ctx context.Context, in GetTrackingInput) Result[models.TrackingHistory] {
	number, courier := strings.TrimSpace(in.TrackingNumber), strings.TrimSpace(in.Courier)
	if number == "" || courier == "" {
		return fail[models.TrackingHistory](apperr.Validation(msgTrackingRequired))
	}

	opts := append([]retry.Option{
		retry.WithMaxRetries(s.cfg.TrackingRetries),
		retry.WithInitialDelay(s.cfg.TrackingRetryDelay),
		retry.WithRetryable(apperr.Retryable),
		retry.WithNotify(func(err error, next time.Duration) {
			logger.Log.Warn("tracking fetch failed, retrying",
				zap.String("tracking_number", number),
				zap.String("courier", courier),
				zap.Duration("next", next),
				zap.Error(err),
			)
		}),
	}, s.retryOpts...)

	h, err := retry.Do(ctx, func(ctx context.Context) (*models.TrackingHistory, error) {
		return s.backend.GetTracking(ctx, number, courier)
	}, opts...)
	if err != nil {
		return fail[models.TrackingHistory](err)
	}
	return succeed(h)
}

// GetBanner treats a 404 from the backend as "no banner configured".
func (s *Service) GetBanner(ctx context.Context) Result[models.Banner] {
	b, err := s.backend.GetBanner(ctx)
	if err != nil {
		if apperr.IsNotFound(err) {
			return Result[models.Banner]{Success: true}
		}
		return fail[models.Banner](err)
	}
	return succeed(b)
}

// Lookup is the search form flow: rate limit by email, fetch the order and
// remember it in the session.
func (s *Service) Lookup(ctx context.Context, sessionID string, in GetOrderInput) Result[models.Order] {
	in = in.normalize()
	if err := in.validate(); err != nil {
		s.publishLookup(ctx, in.OrderID, nil, err)
		return fail[models.Order](err)
	}

	if s.limiter != nil {
		res, err := s.limiter.Check(ctx, strings.ToLower(in.Email))
		switch {
		case err != nil:
			logger.Log.Error("rate limiter unavailable, allowing lookup", zap.Error(err))
		case !res.Allowed:
			rlErr := apperr.RateLimited(res.RemainingTime)
			s.publishLookup(ctx, in.OrderID, nil, rlErr)
			return fail[models.Order](rlErr)
		}
	}

	res := s.GetOrder(ctx, in)
	if !res.Success {
		s.publishLookup(ctx, in.OrderID, nil, res.Error)
		return res
	}

	if s.sessions != nil && sessionID != "" {
		if err := s.sessions.Clear(ctx, sessionID); err != nil {
			logger.Log.Warn("clear session", zap.Error(err))
		}
		if err := s.sessions.Set(ctx, sessionID, session.KeyCurrentOrder, res.Data); err != nil {
			logger.Log.Error("store order in session", zap.String("order_id", in.OrderID), zap.Error(err))
		}
	}
	s.publishLookup(ctx, in.OrderID, res.Data, nil)
	return res
}

type Shipment struct {
	TrackingNumber   string                  `json:"tracking_number"`
	TrackingProvider string                  `json:"tracking_provider"`
	CarrierLogo      string                  `json:"carrier_logo,omitempty"`
	History          *models.TrackingHistory `json:"history,omitempty"`
	Error            *apperr.Error           `json:"error,omitempty"`
}

type OrderDetails struct {
	Order           models.Order           `json:"order"`
	Shipments       []Shipment             `json:"shipments"`
	DisplayedStatus models.DisplayedStatus `json:"displayed_status"`
}

// Details loads the session order, fetches every shipment concurrently and
// derives the displayed status once all of them have settled. Shipments that
// failed are reported individually and do not take part in the status.
func (s *Service) Details(ctx context.Context, sessionID string) Result[OrderDetails] {
	if s.sessions == nil || sessionID == "" {
		return fail[OrderDetails](apperr.SessionMissing(msgNoOrderInSession))
	}
	var o models.Order
	found, err := s.sessions.Get(ctx, sessionID, session.KeyCurrentOrder, &o)
	if err != nil {
		return fail[OrderDetails](err)
	}
	if !found {
		return fail[OrderDetails](apperr.SessionMissing(msgNoOrderInSession))
	}

	shipments := s.fetchShipments(ctx, sessionID, o.Tracking)

	statuses := make([]models.TrackingStatus, 0, len(shipments))
	for _, sh := range shipments {
		if sh.History != nil {
			statuses = append(statuses, sh.History.GlobalStatus)
		}
	}

	return succeed(&OrderDetails{
		Order:           o,
		Shipments:       shipments,
		DisplayedStatus: status.Compute(o.Status, statuses),
	})
}

func (s *Service) fetchShipments(ctx context.Context, sessionID string, refs []models.TrackingRef) []Shipment {
	out := make([]Shipment, len(refs))
	sem := make(chan struct{}, s.cfg.TrackingConcurrency)
	var wg sync.WaitGroup

	for i, ref := range refs {
		out[i] = Shipment{TrackingNumber: ref.TrackingNumber, TrackingProvider: ref.TrackingProvider}
		if logo, ok := models.CarrierLogo(ref.TrackingProvider); ok {
			out[i].CarrierLogo = logo
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(i int, ref models.TrackingRef) {
			defer func() {
				<-sem
				wg.Done()
			}()
			h, err := s.shipmentHistory(ctx, sessionID, ref)
			if err != nil {
				out[i].Error = apperr.From(err)
				logger.Log.Warn("shipment tracking unavailable",
					zap.String("tracking_number", ref.TrackingNumber),
					zap.Error(err),
				)
				return
			}
			out[i].History = h
		}(i, ref)
	}
	wg.Wait()
	return out
}

func (s *Service) shipmentHistory(ctx context.Context, sessionID string, ref models.TrackingRef) (*models.TrackingHistory, error) {
	key := session.TrackingKey(ref.TrackingNumber, ref.TrackingProvider)

	var cached models.TrackingHistory
	if found, err := s.sessions.Get(ctx, sessionID, key, &cached); err == nil && found {
		return &cached, nil
	}

	res := s.GetTracking(ctx, GetTrackingInput{TrackingNumber: ref.TrackingNumber, Courier: ref.TrackingProvider})
	if !res.Success {
		return nil, res.Error
	}
	// сессию могли очистить, пока шёл запрос: тогда история уже не нужна
	if _, err := s.sessions.SetIfPresent(ctx, sessionID, session.KeyCurrentOrder, key, res.Data); err != nil {
		logger.Log.Warn("cache tracking in session", zap.Error(err))
	}
	return res.Data, nil
}

func (s *Service) ClearSession(ctx context.Context, sessionID string) error {
	if s.sessions == nil || sessionID == "" {
		return nil
	}
	return s.sessions.Clear(ctx, sessionID)
}

func (s *Service) publishLookup(ctx context.Context, orderID string, o *models.Order, err error) {
	if s.publisher == nil {
		return
	}

	msg := messages.OrderLookup{OrderID: orderID, LookedUpAt: s.now().UTC()}
	switch e := apperr.From(err); {
	case e == nil:
		msg.Outcome = messages.OutcomeFound
		msg.Shipments = len(o.Tracking)
	case e.Kind == apperr.KindValidation:
		msg.Outcome, msg.ErrorKind = messages.OutcomeRejected, string(e.Kind)
	case e.Kind == apperr.KindRateLimit:
		msg.Outcome, msg.ErrorKind = messages.OutcomeRateLimited, string(e.Kind)
	default:
		msg.Outcome, msg.ErrorKind, msg.Status = messages.OutcomeFailed, string(e.Kind), e.Status
	}

	b, mErr := json.Marshal(msg)
	if mErr != nil {
		return
	}
	if pErr := s.publisher.Publish(ctx, s.cfg.LookupTopic, []byte(orderID), b); pErr != nil {
		logger.Log.Warn("publish order lookup", zap.String("order_id", orderID), zap.Error(pErr))
	}
}
