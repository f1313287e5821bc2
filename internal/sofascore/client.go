package sofascore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sofahub/sofahub/internal/cache"
	"github.com/sofahub/sofahub/internal/resource"
	"github.com/sofahub/sofahub/internal/upstream"
)

// DefaultAPIBase 是 Sofascore 公共 API 前缀。
const DefaultAPIBase = "https://api.sofascore.com/api/v1"

// Fetcher 是上游 GET 能力，由 *upstream.Client 实现。
type Fetcher interface {
	Get(ctx context.Context, sess *upstream.Session, url string) (*upstream.Response, error)
}

// Client 组合缓存与上游访问。store 为 nil 时所有方法直接访问上游。
type Client struct {
	store    *cache.Store
	fetcher  Fetcher
	session  *upstream.Session
	policies resource.Policies
	apiBase  string
	logger   logrus.FieldLogger
}

// Option 调整 Client 的可选参数。
type Option func(*Client)

// WithPolicies 指定各资源类型的读取策略，通常来自 config.Policies()。
func WithPolicies(p resource.Policies) Option {
	return func(c *Client) {
		if p != nil {
			c.policies = p
		}
	}
}

// WithAPIBase 覆盖 API 前缀，测试中指向 httptest 服务。
func WithAPIBase(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.apiBase = base
		}
	}
}

// WithSession 指定上游请求使用的 Session。
func WithSession(sess *upstream.Session) Option {
	return func(c *Client) {
		c.session = sess
	}
}

// WithLogger 指定日志输出。
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New 构建 API 客户端。
func New(store *cache.Store, fetcher Fetcher, opts ...Option) *Client {
	c := &Client{
		store:    store,
		fetcher:  fetcher,
		policies: resource.DefaultPolicies(),
		apiBase:  DefaultAPIBase,
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store 返回底层缓存，可能为 nil。
func (c *Client) Store() *cache.Store {
	return c.store
}

// Policies 返回当前生效的读取策略。
func (c *Client) Policies() resource.Policies {
	return c.policies
}

// CallOption 调整单次调用。
type CallOption func(*callOptions)

type callOptions struct {
	useCache bool
}

// NoCache 跳过缓存读写，直接访问上游。
func NoCache() CallOption {
	return func(o *callOptions) {
		o.useCache = false
	}
}

func (c *Client) callOpts(opts []CallOption) callOptions {
	o := callOptions{useCache: true}
	for _, opt := range opts {
		opt(&o)
	}
	if c.store == nil {
		o.useCache = false
	}
	return o
}

func (c *Client) url(format string, args ...any) string {
	return c.apiBase + fmt.Sprintf(format, args...)
}

func (c *Client) get(ctx context.Context, url string) (*upstream.Response, error) {
	return c.fetcher.Get(ctx, c.session, url)
}

// getJSON 请求 url，仅 200 视为成功并解析到 out。
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp.JSON(out)
}

// maxAge 返回资源类型的读取时长。
func (c *Client) maxAge(t resource.Type) cache.MaxAge {
	return cache.FromPolicy(c.policies.For(t))
}

// lookup 读取缓存；未命中返回 nil。缓存层的存储错误只记录，不影响上游访问。
func (c *Client) lookup(ctx context.Context, t resource.Type, key string, maxAge cache.MaxAge) *cache.Hit {
	hit, err := c.store.Get(ctx, t, key, maxAge)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			c.logger.WithFields(logrus.Fields{"resource": string(t), "key": key}).WithError(err).Warn("cache lookup failed")
		}
		return nil
	}
	return hit
}

// persist 写入缓存；失败返回给调用方，避免静默丢失一次昂贵的拉取。
func (c *Client) persist(ctx context.Context, t resource.Type, key string, payload any, opts cache.SaveOptions) error {
	if err := c.store.Save(ctx, t, key, payload, opts); err != nil {
		return fmt.Errorf("cache %s %s: %w", t, key, err)
	}
	return nil
}

// MatchIDFromURL 从形如 https://www.sofascore.com/a-b/xyz#id:12345 的 URL 中取出比赛 ID。
func MatchIDFromURL(matchURL string) (int, error) {
	idx := strings.LastIndex(matchURL, "#id:")
	if idx < 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidMatchURL, matchURL)
	}
	id, err := strconv.Atoi(matchURL[idx+len("#id:"):])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidMatchURL, matchURL)
	}
	return id, nil
}

// ParseMatchRef 接受比赛 ID 或比赛 URL。
func ParseMatchRef(ref string) (int, error) {
	if id, err := strconv.Atoi(ref); err == nil && id > 0 {
		return id, nil
	}
	return MatchIDFromURL(ref)
}

func matchKey(matchID int) string {
	return strconv.Itoa(matchID)
}

// rawField 取出对象中的单个字段。
func rawField(body []byte, field string) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, err
	}
	raw, ok := obj[field]
	if !ok {
		return nil, fmt.Errorf("response missing %q", field)
	}
	return raw, nil
}
