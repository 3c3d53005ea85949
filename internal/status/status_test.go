package status

import (
	"testing"

	"github.com/BearBump/OrderTrack/internal/models"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	const (
		processing = models.TrackingStatusProcessing
		completed  = models.TrackingStatusCompleted
		origin     = models.TrackingStatusOrigin
		ret        = models.TrackingStatusReturn
		incidence  = models.TrackingStatusIncidence
	)

	cases := []struct {
		name      string
		base      models.OrderStatus
		shipments []models.TrackingStatus
		want      models.DisplayedStatus
	}{
		{"return promotes shipped", models.OrderStatusShipped, []models.TrackingStatus{ret}, models.DisplayedReturn},
		{"incidence beats return", models.OrderStatusShipped, []models.TrackingStatus{ret, incidence}, models.DisplayedIncidence},
		{"incidence beats return reversed", models.OrderStatusShipped, []models.TrackingStatus{incidence, ret}, models.DisplayedIncidence},
		{"no shipments keeps base", models.OrderStatusCreated, nil, models.DisplayedStatus(models.OrderStatusCreated)},
		{"all completed", models.OrderStatusShipped, []models.TrackingStatus{completed, completed}, models.DisplayedCompleted},
		{"return beats completed", models.OrderStatusShipped, []models.TrackingStatus{completed, ret}, models.DisplayedReturn},
		{"incidence beats completed", models.OrderStatusShipped, []models.TrackingStatus{completed, incidence, completed}, models.DisplayedIncidence},
		{"processing keeps base", models.OrderStatusPending, []models.TrackingStatus{processing, origin}, models.DisplayedStatus(models.OrderStatusPending)},
		{"completed with processing", models.OrderStatusShipped, []models.TrackingStatus{processing, completed}, models.DisplayedCompleted},
		{"cancelled promoted by incidence", models.OrderStatusCancelled, []models.TrackingStatus{incidence}, models.DisplayedIncidence},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Compute(tc.base, tc.shipments))
		})
	}
}
