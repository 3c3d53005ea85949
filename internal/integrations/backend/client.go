package backend

import (
	"context"

	"github.com/BearBump/OrderTrack/internal/models"
)

// Client is the order backend. Errors are *apperr.Error values: transport
// errors carry the HTTP status, network failures are connection errors.
type Client interface {
	GetOrder(ctx context.Context, orderID, email string) (*models.Order, error)
	GetTracking(ctx context.Context, trackingNumber, courier string) (*models.TrackingHistory, error)
	GetBanner(ctx context.Context) (*models.Banner, error)
}
