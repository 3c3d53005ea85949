package fake

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/http"
	"time"

	"github.com/BearBump/OrderTrack/internal/apperr"
	"github.com/BearBump/OrderTrack/internal/models"
)

var (
	couriers = []string{"coordinadora_co", "interrapidisimo_co", "servientrega_co"}
	statuses = []models.TrackingStatus{
		models.TrackingStatusProcessing,
		models.TrackingStatusCompleted,
		models.TrackingStatusOrigin,
		models.TrackingStatusReturn,
		models.TrackingStatusIncidence,
	}
)

// FakeClient is a local stand-in for the order backend.
// Orders and shipments are derived deterministically from their ids.
type FakeClient struct {
	banner *models.Banner
}

func New() *FakeClient { return &FakeClient{} }

// WithBanner makes GetBanner return b instead of 404.
func (f *FakeClient) WithBanner(b models.Banner) *FakeClient {
	f.banner = &b
	return f
}

func (f *FakeClient) GetOrder(ctx context.Context, orderID, email string) (*models.Order, error) {
	v := hash(orderID)
	if v%7 == 0 {
		return nil, apperr.Transport(http.StatusNotFound, "Order not found", "fake-"+orderID)
	}

	n := int(v%3) + 1
	refs := make([]models.TrackingRef, 0, n)
	for i := 0; i < n; i++ {
		refs = append(refs, models.TrackingRef{
			TrackingNumber:   fmt.Sprintf("%s-%d", orderID, i+1),
			TrackingProvider: couriers[(int(v)+i)%len(couriers)],
		})
	}

	return &models.Order{
		OrderID:       orderID,
		Name:          "Demo",
		LastName:      "Customer",
		Email:         email,
		Address:       "Calle 1 # 2-3",
		City:          "Bogota",
		State:         "Cundinamarca",
		PaymentMethod: "CARD",
		CreateDate:    time.Now().UTC().Add(-72 * time.Hour).Format(time.RFC3339),
		Status:        models.OrderStatusShipped,
		Items: []models.OrderItem{
			{SKU: "SKU-" + orderID, Name: "Demo item", Quantity: n},
		},
		Tracking: refs,
	}, nil
}

func (f *FakeClient) GetTracking(ctx context.Context, trackingNumber, courier string) (*models.TrackingHistory, error) {
	v := hash(courier + "|" + trackingNumber)
	st := statuses[v%uint32(len(statuses))]
	now := time.Now().UTC()

	return &models.TrackingHistory{
		GlobalStatus: st,
		History: []models.TrackingEvent{
			{Code: "ADM", Text: "Shipment admitted", Date: now.Add(-48 * time.Hour).Format(time.RFC3339), City: "Bogota"},
			{Code: string(st), Text: "Status " + string(st), Date: now.Format(time.RFC3339), City: "Medellin"},
		},
	}, nil
}

func (f *FakeClient) GetBanner(ctx context.Context) (*models.Banner, error) {
	if f.banner == nil {
		return nil, apperr.Transport(http.StatusNotFound, "No banner", "fake-banner")
	}
	b := *f.banner
	return &b, nil
}

func hash(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
