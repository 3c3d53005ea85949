package restyclient

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/BearBump/OrderTrack/internal/apperr"
	"github.com/BearBump/OrderTrack/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "http://localhost:8080"

type Client struct {
	r       *resty.Client
	limiter *rate.Limiter
}

type Options struct {
	Timeout time.Duration
	// MaxRPS throttles outbound calls, 0 disables throttling.
	MaxRPS float64
}

func New(baseURL string, opts Options) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	c := &Client{
		r: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(opts.Timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
	}
	if opts.MaxRPS > 0 {
		burst := int(opts.MaxRPS)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.MaxRPS), burst)
	}
	return c
}

func (c *Client) GetOrder(ctx context.Context, orderID, email string) (*models.Order, error) {
	var out models.Order
	err := c.get(ctx, "/orders/{id}", map[string]string{"id": orderID}, map[string]string{"email": email}, &out)
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}
	return &out, nil
}

func (c *Client) GetTracking(ctx context.Context, trackingNumber, courier string) (*models.TrackingHistory, error) {
	var out models.TrackingHistory
	err := c.get(ctx, "/tracking/{number}", map[string]string{"number": trackingNumber}, map[string]string{"courier": courier}, &out)
	if err != nil {
		return nil, errors.Wrap(err, "get tracking")
	}
	return &out, nil
}

func (c *Client) GetBanner(ctx context.Context) (*models.Banner, error) {
	var out models.Banner
	if err := c.get(ctx, "/banner", nil, nil, &out); err != nil {
		return nil, errors.Wrap(err, "get banner")
	}
	return &out, nil
}

type errorBody struct {
	Message string `json:"message"`
	RayID   string `json:"ray_id"`
}

func (c *Client) get(ctx context.Context, path string, pathParams, query map[string]string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return apperr.Connection(err)
		}
	}

	resp, err := c.r.R().
		SetContext(ctx).
		SetPathParams(pathParams).
		SetQueryParams(query).
		Get(path)
	if err != nil {
		return apperr.Connection(err)
	}

	if resp.IsError() || resp.StatusCode()/100 != 2 {
		var eb errorBody
		if json.Unmarshal(resp.Body(), &eb) != nil || eb.Message == "" {
			return apperr.Transport(resp.StatusCode(), http.StatusText(resp.StatusCode()), rayID(resp, eb.RayID))
		}
		return apperr.Transport(resp.StatusCode(), eb.Message, rayID(resp, eb.RayID))
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return apperr.Unknown(errors.Wrap(err, "decode"))
	}
	return nil
}

func rayID(resp *resty.Response, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	if v := resp.Header().Get("X-Ray-Id"); v != "" {
		return v
	}
	return apperr.RayUnknown
}
