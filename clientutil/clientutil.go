package clientutil

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

type Middleware func(http.RoundTripper) http.RoundTripper

func Chain(middlewares ...Middleware) Middleware {
	return func(final http.RoundTripper) http.RoundTripper {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

func WithRateLimit(interval time.Duration) Middleware {
	if interval == 0 {
		return Passthrough
	}
	return func(next http.RoundTripper) http.RoundTripper {
		limiter := rate.NewLimiter(rate.Every(interval), 1)
		return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			if err := limiter.Wait(r.Context()); err != nil {
				return nil, err
			}
			return next.RoundTrip(r)
		})
	}
}

func WithLogging(logger *slog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			if err != nil {
				logger.ErrorContext(r.Context(), "http request", "method", r.Method, "host", r.URL.Host, "path", r.URL.Path, "err", err)
				return nil, err
			}
			logger.DebugContext(r.Context(), "http response", "method", r.Method, "host", r.URL.Host, "path", r.URL.Path, "status", resp.StatusCode, "took", time.Since(start).Truncate(time.Millisecond))
			return resp, nil
		})
	}
}

func WithUserAgent(userAgent string) Middleware {
	if userAgent == "" {
		return Passthrough
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			r = r.Clone(r.Context())
			r.Header.Set("User-Agent", userAgent)
			return next.RoundTrip(r)
		})
	}
}

func Passthrough(next http.RoundTripper) http.RoundTripper {
	return next
}

type RoundTripFunc func(*http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func WrapClient(c *http.Client, mw Middleware) *http.Client {
	if c == nil {
		c = &http.Client{}
	}
	if c.Transport == nil {
		c.Transport = http.DefaultTransport
	}
	c.Transport = mw(c.Transport)
	return c
}
