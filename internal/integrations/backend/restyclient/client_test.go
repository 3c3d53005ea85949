package restyclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BearBump/OrderTrack/internal/apperr"
	"github.com/BearBump/OrderTrack/internal/models"
	"github.com/stretchr/testify/require"
)

func TestClient_GetOrder_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders/1001", r.URL.Path)
		require.Equal(t, "jane+1@example.com", r.URL.Query().Get("email"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "order_id": "1001",
  "name": "Jane",
  "last_name": "Doe",
  "email": "jane+1@example.com",
  "create_date": "2025-01-01T10:00:00Z",
  "status": "SHIPPED",
  "items": [{"sku":"S1","name":"Mug","quantity":2,"picture":""}],
  "tracking": [{"tracking_number":"T1","tracking_provider":"servientrega_co"}]
}`))
	}))
	defer srv.Close()

	c := New(srv.URL, Options{})
	o, err := c.GetOrder(context.Background(), "1001", "jane+1@example.com")
	require.NoError(t, err)
	require.Equal(t, "1001", o.OrderID)
	require.Equal(t, models.OrderStatusShipped, o.Status)
	require.Len(t, o.Items, 1)
	require.Equal(t, 2, o.Items[0].Quantity)
	require.Equal(t, []models.TrackingRef{{TrackingNumber: "T1", TrackingProvider: "servientrega_co"}}, o.Tracking)
}

func TestClient_GetTracking_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tracking/T-9", r.URL.Path)
		require.Equal(t, "coordinadora_co", r.URL.Query().Get("courier"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"global_status":"RETURN","history":[{"code":"R1","text":"Returned","date":"2025-01-02T00:00:00Z","city":"Bogota"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, Options{})
	h, err := c.GetTracking(context.Background(), "T-9", "coordinadora_co")
	require.NoError(t, err)
	require.Equal(t, models.TrackingStatusReturn, h.GlobalStatus)
	require.Len(t, h.History, 1)
	require.Equal(t, "Bogota", h.History[0].City)
}

func TestClient_ErrorBodyMapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Order not found","ray_id":"ray-123"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, Options{})
	_, err := c.GetOrder(context.Background(), "1", "a@b.co")
	require.Error(t, err)

	e := apperr.From(err)
	require.Equal(t, apperr.KindTransport, e.Kind)
	require.Equal(t, http.StatusNotFound, e.Status)
	require.Equal(t, "Order not found", e.Message)
	require.Equal(t, "ray-123", e.RayID)
	require.True(t, apperr.IsNotFound(err))
}

func TestClient_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Ray-Id", "hdr-ray")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`boom`))
	}))
	defer srv.Close()

	c := New(srv.URL, Options{})
	_, err := c.GetBanner(context.Background())
	e := apperr.From(err)
	require.Equal(t, apperr.KindTransport, e.Kind)
	require.Equal(t, http.StatusInternalServerError, e.Status)
	require.Equal(t, "Internal Server Error", e.Message)
	require.Equal(t, "hdr-ray", e.RayID)
}

func TestClient_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c := New(addr, Options{Timeout: time.Second})
	_, err := c.GetTracking(context.Background(), "T", "c")
	e := apperr.From(err)
	require.Equal(t, apperr.KindConnection, e.Kind)
	require.Equal(t, apperr.RayConnection, e.RayID)
	require.True(t, apperr.Retryable(err))
}

func TestClient_BadSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(`not-json`))
	}))
	defer srv.Close()

	c := New(srv.URL, Options{})
	_, err := c.GetBanner(context.Background())
	require.Equal(t, apperr.KindUnknown, apperr.From(err).Kind)
}

func TestClient_Throttled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"Maintenance","subtitle":"soon","type":"WARNING","created_at":"2025-01-01T00:00:00Z","duration":0}`))
	}))
	defer srv.Close()

	c := New(srv.URL, Options{MaxRPS: 1})
	b, err := c.GetBanner(context.Background())
	require.NoError(t, err)
	require.Equal(t, models.BannerTypeWarning, b.Type)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.GetBanner(ctx)
	require.Equal(t, apperr.KindConnection, apperr.From(err).Kind)
}

func TestNew_DefaultBaseURL(t *testing.T) {
	c := New("", Options{})
	require.Equal(t, DefaultBaseURL, c.r.BaseURL)
}
