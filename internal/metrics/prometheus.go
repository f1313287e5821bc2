package metrics

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sofahub"

// Registry 持有进程私有的 prometheus 注册表，以及缓存与上游两组指标。
type Registry struct {
	registry *prometheus.Registry

	Cache    *CacheMetrics
	Upstream *UpstreamMetrics
}

// New 构建注册表并注册 Go/进程采集器，多次调用互不干扰，便于测试并行。
func New() *Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	r := &Registry{
		registry: registry,
		Cache:    newCacheMetrics(),
		Upstream: newUpstreamMetrics(),
	}
	registry.MustRegister(r.Cache.lookups, r.Cache.saves)
	registry.MustRegister(r.Upstream.requests, r.Upstream.duration, r.Upstream.retries)
	return r
}

// Gatherer 暴露底层注册表，供测试断言。
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler 返回 prometheus 文本格式的 HTTP handler。
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Lookup results recorded by the cache store.
const (
	ResultHit         = "hit"
	ResultMiss        = "miss"
	ResultExpired     = "expired"
	ResultDecodeError = "decode_error"
	ResultOK          = "ok"
	ResultError       = "error"
)

// CacheCounts 是单个资源类型的计数快照。
type CacheCounts struct {
	Hits         uint64 `json:"hits"`
	Misses       uint64 `json:"misses"`
	Expired      uint64 `json:"expired"`
	DecodeErrors uint64 `json:"decode_errors"`
	Saves        uint64 `json:"saves"`
	SaveErrors   uint64 `json:"save_errors"`
}

// CacheMetrics 同时写 prometheus 计数器与进程内快照；nil 接收者上的调用均为空操作。
type CacheMetrics struct {
	lookups *prometheus.CounterVec
	saves   *prometheus.CounterVec

	mu     sync.Mutex
	counts map[string]*CacheCounts
}

func newCacheMetrics() *CacheMetrics {
	return &CacheMetrics{
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Cache lookups by resource type and result",
			},
			[]string{"resource", "result"},
		),
		saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "saves_total",
				Help:      "Cache writes by resource type and result",
			},
			[]string{"resource", "result"},
		),
		counts: make(map[string]*CacheCounts),
	}
}

// ObserveLookup 记录一次读取结果。
func (m *CacheMetrics) ObserveLookup(resource, result string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(resource, result).Inc()

	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.entry(resource)
	switch result {
	case ResultHit:
		c.Hits++
	case ResultExpired:
		c.Expired++
	case ResultDecodeError:
		c.DecodeErrors++
	default:
		c.Misses++
	}
}

// ObserveSave 记录一次写入结果。
func (m *CacheMetrics) ObserveSave(resource string, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.saves.WithLabelValues(resource, result).Inc()

	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.entry(resource)
	if err != nil {
		c.SaveErrors++
		return
	}
	c.Saves++
}

// Snapshot 返回按资源类型索引的计数副本。
func (m *CacheMetrics) Snapshot() map[string]CacheCounts {
	out := make(map[string]CacheCounts)
	if m == nil {
		return out
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, c := range m.counts {
		out[name] = *c
	}
	return out
}

// Resources 返回出现过计数的资源类型，已排序。
func (m *CacheMetrics) Resources() []string {
	snap := m.Snapshot()
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *CacheMetrics) entry(resource string) *CacheCounts {
	c := m.counts[resource]
	if c == nil {
		c = &CacheCounts{}
		m.counts[resource] = c
	}
	return c
}

// UpstreamMetrics 记录对 Sofascore API 的请求。
type UpstreamMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	retries  prometheus.Counter
}

func newUpstreamMetrics() *UpstreamMetrics {
	return &UpstreamMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "requests_total",
				Help:      "Upstream HTTP attempts by status code class",
			},
			[]string{"code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "request_duration_seconds",
				Help:      "Latency of upstream HTTP attempts",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"code"},
		),
		retries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "retries_total",
				Help:      "Upstream attempts that were retried",
			},
		),
	}
}

// ObserveAttempt 记录一次上游尝试；code 为 "2xx"、"4xx"、"error" 等分类。
func (m *UpstreamMetrics) ObserveAttempt(code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(code).Inc()
	m.duration.WithLabelValues(code).Observe(elapsed.Seconds())
}

// ObserveRetry 记录一次重试。
func (m *UpstreamMetrics) ObserveRetry() {
	if m == nil {
		return
	}
	m.retries.Inc()
}

// StatusClass 将 HTTP 状态码归类为 prometheus 标签。
func StatusClass(status int) string {
	switch {
	case status <= 0:
		return "error"
	case status < 200:
		return "1xx"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
