package orders

import (
	"context"
	"time"

	"github.com/BearBump/OrderTrack/internal/models"
	"github.com/BearBump/OrderTrack/internal/ratelimit"
	"github.com/stretchr/testify/mock"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) GetOrder(ctx context.Context, orderID, email string) (*models.Order, error) {
	args := m.Called(ctx, orderID, email)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

func (m *MockBackend) GetTracking(ctx context.Context, trackingNumber, courier string) (*models.TrackingHistory, error) {
	args := m.Called(ctx, trackingNumber, courier)
	h, _ := args.Get(0).(*models.TrackingHistory)
	return h, args.Error(1)
}

func (m *MockBackend) GetBanner(ctx context.Context) (*models.Banner, error) {
	args := m.Called(ctx)
	b, _ := args.Get(0).(*models.Banner)
	return b, args.Error(1)
}

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Check(ctx context.Context, identifier string) (ratelimit.Result, error) {
	args := m.Called(ctx, identifier)
	return args.Get(0).(ratelimit.Result), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, key, value []byte) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

// instantTimer lets retries run without sleeping.
type instantTimer struct {
	c chan time.Time
}

func newInstantTimer() *instantTimer { return &instantTimer{c: make(chan time.Time, 1)} }

func (t *instantTimer) Start(time.Duration) { t.c <- time.Now() }
func (t *instantTimer) Stop()               {}
func (t *instantTimer) C() <-chan time.Time { return t.c }
