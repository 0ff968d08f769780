package resilience

import (
	"context"
	"errors"
	"net"
	"net/http"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "serpapi rate limit",
			err:  NewTransientError(eris.New("serpapi: unexpected status 429: rate limited"), http.StatusTooManyRequests),
			want: true,
		},
		{
			name: "serpapi outage wrapped by the client",
			err:  eris.Wrap(NewTransientError(errors.New("serpapi: unexpected status 503"), 503), "crawl: serpapi query \"stan.store\""),
			want: true,
		},
		{
			name: "serpapi api rejection",
			err:  eris.New("serpapi: api error: invalid api key"),
			want: false,
		},
		{
			name: "search engine block page",
			err:  eris.New("crawl: search engine served a block page"),
			want: false,
		},
		{
			name: "navigation deadline",
			err:  eris.Wrap(context.DeadlineExceeded, "browser: fetch https://stan.store/mayalifts"),
			want: true,
		},
		{
			name: "caller cancellation",
			err:  eris.Wrap(context.Canceled, "browser: fetch https://stan.store/mayalifts"),
			want: false,
		},
		{
			name: "chromium connection reset",
			err:  eris.Wrap(errors.New("page load error net::ERR_CONNECTION_RESET"), "browser: fetch https://www.google.com/search"),
			want: true,
		},
		{
			name: "chromium timed out",
			err:  errors.New("page load error net::ERR_TIMED_OUT"),
			want: true,
		},
		{
			name: "chromium dns failure",
			err:  errors.New("page load error net::ERR_NAME_NOT_RESOLVED"),
			want: true,
		},
		{
			name: "dns timeout",
			err:  &net.DNSError{IsTimeout: true, Err: "timeout"},
			want: true,
		},
		{
			name: "connection reset syscall",
			err:  eris.Wrap(syscall.ECONNRESET, "serpapi: send request"),
			want: true,
		},
		{
			name: "connection refused syscall",
			err:  eris.Wrap(syscall.ECONNREFUSED, "serpapi: send request"),
			want: true,
		},
		{
			name: "http client idle connection",
			err:  errors.New("serpapi: send request: server closed idle connection"),
			want: true,
		},
		{
			name: "malformed storefront markup",
			err:  eris.New("stan: parse storefront page"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "expected %d transient", code)
	}
	for _, code := range []int{200, 301, 400, 401, 403, 404, 422, 501} {
		assert.False(t, IsTransientHTTPStatus(code), "expected %d permanent", code)
	}
}

func TestTransientError_CarriesStatusAndUnwraps(t *testing.T) {
	inner := errors.New("serpapi: unexpected status 502: bad gateway")
	te := NewTransientError(inner, http.StatusBadGateway)

	require.ErrorIs(t, te, inner)
	assert.Equal(t, http.StatusBadGateway, te.StatusCode)
	assert.Equal(t, inner.Error(), te.Error())

	var got *TransientError
	require.ErrorAs(t, eris.Wrap(te, "crawl: serpapi query"), &got)
	assert.Equal(t, http.StatusBadGateway, got.StatusCode)
}
