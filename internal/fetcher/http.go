package fetcher

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/healthplot/internal/resilience"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	// RatePerSec caps requests per host. Zero means 5/s.
	RatePerSec float64
	// BaseBackoff is the first retry delay; it doubles per attempt with jitter.
	BaseBackoff time.Duration
}

// HTTPFetcher implements Fetcher using net/http with retry and per-host rate limiting.
type HTTPFetcher struct {
	client *http.Client
	opts   HTTPOptions

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "healthplot/1.0"
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 5
	}
	if opts.BaseBackoff == 0 {
		opts.BaseBackoff = 500 * time.Millisecond
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (f *HTTPFetcher) limiterFor(rawURL string) *rate.Limiter {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		burst := max(1, int(math.Ceil(f.opts.RatePerSec)))
		lim = rate.NewLimiter(rate.Limit(f.opts.RatePerSec), burst)
		f.limiters[host] = lim
	}
	return lim
}

// Download fetches the URL and returns the response body. Transient
// failures (429, 5xx, network timeouts) are retried with backoff.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/csv, application/json, application/vnd.openxmlformats-officedocument.spreadsheetml.sheet, */*")

	lim := f.limiterFor(rawURL)
	policy := resilience.DefaultPolicy()
	policy.MaxAttempts = f.opts.MaxRetries
	policy.InitialBackoff = f.opts.BaseBackoff
	policy.OnRetry = resilience.LogRetries(zap.L(), rawURL)

	attempts := 0
	body, err := resilience.Do(ctx, policy, func(ctx context.Context) (io.ReadCloser, error) {
		attempts++
		if err := lim.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}

		resp, err := f.client.Do(req.Clone(ctx))
		if err != nil {
			return nil, eris.Wrap(err, "http get")
		}
		if resp.StatusCode == http.StatusOK {
			return resp.Body, nil
		}

		_ = resp.Body.Close()
		err = eris.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
		if resilience.IsTransientStatus(resp.StatusCode) {
			return nil, resilience.Transient(err, resp.StatusCode)
		}
		return nil, err
	})
	if err != nil {
		if attempts > 1 && resilience.IsTransient(err) {
			return nil, eris.Wrapf(err, "download: all %d retries exhausted", attempts)
		}
		return nil, eris.Wrap(err, "download")
	}
	return body, nil
}
