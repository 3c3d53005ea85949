package orders_api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/BearBump/OrderTrack/internal/apperr"
	"github.com/BearBump/OrderTrack/internal/logger"
	"github.com/BearBump/OrderTrack/internal/models"
	"github.com/BearBump/OrderTrack/internal/services/orders"
	"github.com/BearBump/OrderTrack/internal/session"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CookieOptions struct {
	Name   string
	Secure bool
	MaxAge int // seconds
}

type OrdersAPI struct {
	svc    *orders.Service
	cookie CookieOptions
}

func New(svc *orders.Service, cookie CookieOptions) *OrdersAPI {
	if cookie.Name == "" {
		cookie.Name = "ot_session"
	}
	return &OrdersAPI{svc: svc, cookie: cookie}
}

// Routes mounts the JSON endpoints under /api.
func (a *OrdersAPI) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/orders/lookup", a.Lookup)
		r.Get("/orders/current", a.CurrentOrder)
		r.Get("/tracking/{number}", a.Tracking)
		r.Get("/banner", a.Banner)
		r.Delete("/session", a.ClearSession)
	})
}

// Lookup always stores the order under a fresh session id. The cookie is
// only issued once the lookup succeeded; the previous session is dropped.
func (a *OrdersAPI) Lookup(w http.ResponseWriter, r *http.Request) {
	var in orders.GetOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeResult(w, orders.Result[models.Order]{Error: apperr.Validation("Malformed request body")})
		return
	}

	sid := session.NewID()
	res := a.svc.Lookup(r.Context(), sid, in)
	if res.Success {
		if prev, ok := a.sessionID(r); ok {
			if err := a.svc.ClearSession(r.Context(), prev); err != nil {
				logger.Log.Warn("clear previous session", zap.Error(err))
			}
		}
		a.setCookie(w, sid)
	}
	writeResult(w, res)
}

func (a *OrdersAPI) CurrentOrder(w http.ResponseWriter, r *http.Request) {
	sid, _ := a.sessionID(r)
	writeResult(w, a.svc.Details(r.Context(), sid))
}

func (a *OrdersAPI) Tracking(w http.ResponseWriter, r *http.Request) {
	writeResult(w, a.svc.GetTracking(r.Context(), orders.GetTrackingInput{
		TrackingNumber: chi.URLParam(r, "number"),
		Courier:        r.URL.Query().Get("courier"),
	}))
}

func (a *OrdersAPI) Banner(w http.ResponseWriter, r *http.Request) {
	writeResult(w, a.svc.GetBanner(r.Context()))
}

func (a *OrdersAPI) ClearSession(w http.ResponseWriter, r *http.Request) {
	if sid, ok := a.sessionID(r); ok {
		if err := a.svc.ClearSession(r.Context(), sid); err != nil {
			logger.Log.Error("clear session", zap.Error(err))
			writeResult(w, orders.Result[struct{}]{Error: apperr.From(err)})
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (a *OrdersAPI) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(a.cookie.Name)
	if err != nil || !session.ValidID(c.Value) {
		return "", false
	}
	return c.Value, true
}

func (a *OrdersAPI) setCookie(w http.ResponseWriter, sid string) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookie.Name,
		Value:    sid,
		Path:     "/",
		MaxAge:   a.cookie.MaxAge,
		HttpOnly: true,
		Secure:   a.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeResult[T any](w http.ResponseWriter, res orders.Result[T]) {
	code := http.StatusOK
	if !res.Success {
		res.Data = nil
		if res.Error == nil {
			res.Error = apperr.Unknown(nil)
		}
		code = StatusCode(res.Error)
		if res.Error.Kind == apperr.KindRateLimit {
			w.Header().Set("Retry-After", strconv.FormatInt(res.Error.RetryAfterSeconds(), 10))
		}
	}
	writeJSON(w, code, res)
}

// StatusCode maps an error kind onto the HTTP status returned to the browser.
func StatusCode(e *apperr.Error) int {
	switch e.Kind {
	case apperr.KindValidation:
		if e.Status != 0 {
			return e.Status
		}
		return http.StatusBadRequest
	case apperr.KindRateLimit:
		return http.StatusTooManyRequests
	case apperr.KindTransport:
		if e.Status >= 400 && e.Status < 500 {
			return e.Status
		}
		return http.StatusBadGateway
	case apperr.KindConnection:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Warn("write response", zap.Error(err))
	}
}
