package apperr

import (
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestFrom(t *testing.T) {
	require.Nil(t, From(nil))

	v := Validation("bad")
	require.Same(t, v, From(errors.Wrap(v, "get order")))

	u := From(errors.New("boom"))
	require.Equal(t, KindUnknown, u.Kind)
	require.Equal(t, RayUnknown, u.RayID)
	require.EqualError(t, errors.Cause(u.Unwrap()), "boom")
}

func TestRetryable(t *testing.T) {
	require.True(t, Retryable(Transport(http.StatusBadGateway, "", "r1")))
	require.True(t, Retryable(Connection(errors.New("dial"))))
	require.False(t, Retryable(Validation("x")))
	require.False(t, Retryable(RateLimited(time.Second)))
	require.False(t, Retryable(errors.New("plain")))
}

func TestRateLimited_RoundsUpSeconds(t *testing.T) {
	e := RateLimited(1500 * time.Millisecond)
	require.Equal(t, KindRateLimit, e.Kind)
	require.Equal(t, http.StatusTooManyRequests, e.Status)
	require.Contains(t, e.Message, "2 seconds")
	require.Equal(t, int64(2), e.RetryAfterSeconds())
}

func TestTransport_DefaultMessageAndNotFound(t *testing.T) {
	e := Transport(http.StatusNotFound, "", "abc")
	require.Equal(t, "Not Found", e.Message)
	require.True(t, IsNotFound(errors.Wrap(e, "banner")))
	require.False(t, IsNotFound(Transport(http.StatusInternalServerError, "x", "abc")))
	require.True(t, IsKind(e, KindTransport))
	require.Contains(t, e.Error(), "status 404")
}
