package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/deepdir/deepdir/internal/config"
	"github.com/deepdir/deepdir/internal/monitor"
)

// RequestHook mutates an outgoing request before it is sent. Used for
// anti-WAF header rotation.
type RequestHook func(*http.Request)

// Response holds the parsed HTTP response data.
type Response struct {
	StatusCode    int
	ContentLength int64
	ContentType   string
	Server        string
	Body          []byte
	Headers       http.Header
	Duration      time.Duration
}

// Requester wraps a shared HTTP client for all probe sources. It applies
// the per-request delay, the global rate cap, and the adaptive throttle
// before each request, and reports request counters to the monitor.
type Requester struct {
	client    *http.Client
	opts      *config.Options
	limiter   *rate.Limiter // nil when no global cap is configured
	throttler *Throttler
	mon       *monitor.Monitor
	hook      RequestHook

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRequester creates a Requester from the provided options. mon may be
// nil when no statistics are collected (tests).
func NewRequester(opts *config.Options, mon *monitor.Monitor) (*Requester, error) {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		DialContext: (&net.Dialer{
			Timeout: opts.Timeout,
		}).DialContext,
		MaxIdleConnsPerHost: opts.Threads,
		MaxIdleConns:        opts.Threads,
	}

	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", opts.Proxy, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
	}

	if !opts.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var limiter *rate.Limiter
	if opts.MaxRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.MaxRate), opts.MaxRate)
	}

	return &Requester{
		client:    client,
		opts:      opts,
		limiter:   limiter,
		throttler: NewThrottler(opts.Delay, opts.AdaptiveThrottle),
		mon:       mon,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// SetHook installs a request mutation hook.
func (r *Requester) SetHook(h RequestHook) {
	r.hook = h
}

// Do sends an HTTP request to rawURL and returns the parsed response.
// Network failures are counted as failed requests; the caller decides
// whether to surface or skip them.
func (r *Requester) Do(ctx context.Context, method, rawURL string) (*Response, error) {
	if method == "" {
		method = http.MethodGet
	}

	if err := r.pace(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", r.opts.UserAgent)
	for k, v := range r.opts.Headers {
		req.Header.Set(k, v)
	}
	for name, value := range r.opts.Cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	if r.hook != nil {
		r.hook(req)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		r.throttler.RecordError()
		r.count(monitor.Delta{TotalRequests: 1, Failed: 1})
		logrus.WithField("url", rawURL).Debugf("request failed: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		r.count(monitor.Delta{TotalRequests: 1, Failed: 1})
		logrus.WithField("url", rawURL).Debugf("reading body failed: %v", err)
		return nil, fmt.Errorf("reading response body for %s: %w", rawURL, err)
	}

	r.throttler.RecordStatus(resp.StatusCode)
	r.count(monitor.Delta{TotalRequests: 1, Successful: 1})

	return &Response{
		StatusCode:    resp.StatusCode,
		ContentLength: int64(len(body)),
		ContentType:   resp.Header.Get("Content-Type"),
		Server:        resp.Header.Get("Server"),
		Body:          body,
		Headers:       resp.Header,
		Duration:      time.Since(start),
	}, nil
}

// pace blocks for the configured delay, random delay, adaptive throttle,
// and global rate cap before a request may be issued.
func (r *Requester) pace(ctx context.Context) error {
	delay := r.throttler.Delay()
	if r.opts.RandomDelayMax > 0 {
		span := r.opts.RandomDelayMax - r.opts.RandomDelayMin
		r.mu.Lock()
		delay += r.opts.RandomDelayMin + time.Duration(r.rnd.Int63n(int64(span)+1))
		r.mu.Unlock()
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *Requester) count(d monitor.Delta) {
	if r.mon != nil {
		r.mon.Update(d)
	}
}
