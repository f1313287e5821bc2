package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"

	"github.com/sofahub/sofahub/internal/config"
	"github.com/sofahub/sofahub/internal/logging"
	"github.com/sofahub/sofahub/internal/metrics"
)

// ErrRetriesExhausted 表示所有尝试均失败，错误链中包含最后一次的原因。
var ErrRetriesExhausted = errors.New("upstream retries exhausted")

const (
	defaultUserAgent   = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	maxBodyBytes       = 32 << 20
	defaultBlockLimit  = 3
	defaultLockoutSpan = time.Minute
)

// StatusError 记录一次可重试的非成功响应。
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d", e.URL, e.StatusCode)
}

// Options 描述客户端的重试、节奏与代理参数。
type Options struct {
	Timeout time.Duration
	// MaxRetries 为总尝试次数，小于 1 时按 1 处理。
	MaxRetries int
	RetryDelay time.Duration
	// RequestInterval 是同一 Session 内相邻请求的最小间隔。
	RequestInterval time.Duration
	ProxyURL        *url.URL
	UserAgent       string
	// BlockLimit 为连续 403/429 的次数阈值，达到后 Session 进入锁定期。
	BlockLimit  int
	LockoutSpan time.Duration

	Logger  logrus.FieldLogger
	Metrics *metrics.UpstreamMetrics
}

// OptionsFromConfig 将全局配置映射为客户端参数。
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	opts := Options{}
	if cfg == nil {
		return opts, nil
	}
	g := cfg.Global
	proxyURL, err := g.ProxyURL()
	if err != nil {
		return opts, err
	}
	opts.Timeout = g.UpstreamTimeout.DurationValue()
	opts.MaxRetries = g.MaxRetries
	opts.RetryDelay = g.RetryDelay.DurationValue()
	opts.RequestInterval = g.RequestInterval.DurationValue()
	opts.ProxyURL = proxyURL
	return opts, nil
}

// Shared HTTP transport tunings，复用长连接并集中配置超时。
var defaultTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   100,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ForceAttemptHTTP2:     true,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
}

// Client 发起带重试的 GET 请求。请求计数与锁定状态由调用方传入的 Session 持有。
type Client struct {
	http *http.Client
	opts Options
}

// NewClient 构建客户端；配置了代理时所有请求经由代理发出。
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.BlockLimit <= 0 {
		opts.BlockLimit = defaultBlockLimit
	}
	if opts.LockoutSpan <= 0 {
		opts.LockoutSpan = defaultLockoutSpan
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	transport := defaultTransport.Clone()
	if opts.ProxyURL != nil {
		transport.Proxy = http.ProxyURL(opts.ProxyURL)
	}

	return &Client{
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts: opts,
	}
}

// NewSession 创建一个使用客户端请求间隔的新 Session。
func (c *Client) NewSession() *Session {
	return NewSession(c.opts.RequestInterval)
}

// Response 是一次完成的上游响应，Body 已完整读取。
type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK 报告状态码是否为 2xx。
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON 将响应体解析到 out。
func (r *Response) JSON(out any) error {
	if r == nil {
		return errors.New("nil upstream response")
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("decode %s: %w", r.URL, err)
	}
	return nil
}

// Get 请求 rawURL。传输错误、5xx 与 429 会按固定间隔重试；其余状态码（包括 404）
// 直接返回给调用方判断。sess 为空时使用一次性 Session。
func (c *Client) Get(ctx context.Context, sess *Session, rawURL string) (*Response, error) {
	if sess == nil {
		sess = c.NewSession()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// permanent 记录不应重试、需原样返回的错误（锁定、ctx 取消）。
	var permanent error
	attempt := 0
	operation := func() (*Response, error) {
		attempt++
		if until, locked := sess.LockedUntil(time.Now()); locked {
			permanent = &LockoutError{Session: sess.ID, Until: until}
			return nil, backoff.Permanent(permanent)
		}
		if err := sess.wait(ctx); err != nil {
			permanent = err
			return nil, backoff.Permanent(err)
		}

		resp, err := c.do(ctx, rawURL)
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		sess.observe(status, err, c.opts.BlockLimit, c.opts.LockoutSpan)

		fields := logging.RequestFields(rawURL, status, attempt)
		fields["session"] = sess.ID
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				permanent = ctxErr
				return nil, backoff.Permanent(ctxErr)
			}
			c.opts.Logger.WithFields(fields).WithError(err).Warn("upstream request failed")
			return nil, err
		case retryable(status):
			c.opts.Logger.WithFields(fields).Warn("upstream returned retryable status")
			return nil, &StatusError{URL: rawURL, StatusCode: status}
		default:
			c.opts.Logger.WithFields(fields).Debug("upstream request completed")
			return resp, nil
		}
	}

	resp, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(c.opts.RetryDelay)),
		backoff.WithMaxTries(uint(c.opts.MaxRetries)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(error, time.Duration) { c.opts.Metrics.ObserveRetry() }),
	)
	switch {
	case err == nil:
		return resp, nil
	case permanent != nil:
		return nil, permanent
	case ctx.Err() != nil:
		return nil, ctx.Err()
	}
	return nil, fmt.Errorf("%w: %s after %d attempts: %w", ErrRetriesExhausted, rawURL, attempt, err)
}

func (c *Client) do(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.opts.Metrics.ObserveAttempt(metrics.StatusClass(0), time.Since(started))
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.opts.Metrics.ObserveAttempt(metrics.StatusClass(resp.StatusCode), time.Since(started))
	if err != nil {
		return nil, err
	}

	return &Response{
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}, nil
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
