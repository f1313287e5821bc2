package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sofahub/sofahub/internal/metrics"
	"github.com/sofahub/sofahub/internal/resource"
)

// Store 是缓存门面：解析路径、两道新鲜度闸门、解码与原子写入。
// 同一 Store 内按文件加锁；跨进程写同一键时以最后一次 rename 为准。
type Store struct {
	root    string
	logger  logrus.FieldLogger
	now     func() time.Time
	metrics *metrics.CacheMetrics

	mu    sync.Mutex
	locks map[string]*entryLock
}

// Option 调整 Store 的可选依赖。
type Option func(*Store)

// WithLogger 指定日志输出，默认使用 logrus 标准 logger。
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock 注入时钟，测试中用于精确控制新鲜度边界。
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMetrics 注入计数器；为 nil 时不记录。
func WithMetrics(m *metrics.CacheMetrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// NewStore 以 root 为根目录构建磁盘缓存，整个进程复用一份实例。
func NewStore(root string, opts ...Option) (*Store, error) {
	if root == "" {
		return nil, storageErr("init", "", errors.New("cache directory required"))
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, storageErr("init", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, storageErr("mkdir", abs, err)
	}

	s := &Store{
		root:   abs,
		logger: logrus.StandardLogger(),
		now:    time.Now,
		locks:  make(map[string]*entryLock),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Root 返回缓存根目录的绝对路径。
func (s *Store) Root() string {
	return s.root
}

// Hit 表示一次命中。Payload 可能是 [] 或 {}，这与 ErrNotFound 含义不同。
type Hit struct {
	Payload json.RawMessage
	// Legacy 为 true 时 Entry 为空，文件为旧版裸 payload。
	Legacy bool
	Entry  *Entry
	Path   string
}

// Empty 报告负载是否为空列表、空对象或 null。
func (h *Hit) Empty() bool {
	if h == nil {
		return true
	}
	switch string(compact(h.Payload)) {
	case "[]", "{}", "null", "":
		return true
	}
	return false
}

// Decode 将负载解析到 out。
func (h *Hit) Decode(out any) error {
	if h == nil {
		return ErrNotFound
	}
	return json.Unmarshal(h.Payload, out)
}

// SaveOptions 控制写入 envelope 的元数据。
type SaveOptions struct {
	// MaxAge 记录到 envelope 中，读取时独立于调用方参数生效。
	MaxAge    MaxAge
	SourceURL string
}

// Get 读取 (typ, key)。文件缺失、过期或损坏时返回 ErrNotFound；
// 仅路径解析失败会返回 *StorageError。
func (s *Store) Get(ctx context.Context, typ resource.Type, key string, maxAge MaxAge) (*Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.Resolve(typ, key)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !FileFresh(path, maxAge, now) {
		s.logger.WithFields(cacheFields(typ, key, false)).Debug("cache invalid or not found")
		s.metrics.ObserveLookup(string(typ), metrics.ResultMiss)
		return nil, ErrNotFound
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.metrics.ObserveLookup(string(typ), metrics.ResultMiss)
			return nil, ErrNotFound
		}
		return nil, s.decodeFailure(typ, key, &DecodeError{Path: path, Err: err})
	}

	decoded, err := Decode(raw)
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			decodeErr.Path = path
		}
		return nil, s.decodeFailure(typ, key, err)
	}

	hit := &Hit{Path: path}
	switch decoded.Kind {
	case KindLegacy:
		s.logger.WithFields(cacheFields(typ, key, true)).Debug("using legacy cache format")
		hit.Legacy = true
		hit.Payload = decoded.Legacy
	default:
		if !EntryFresh(decoded.Entry, now) {
			s.logger.WithFields(cacheFields(typ, key, false)).Info("cache expired")
			s.metrics.ObserveLookup(string(typ), metrics.ResultExpired)
			return nil, ErrNotFound
		}
		hit.Entry = decoded.Entry
		hit.Payload = decoded.Entry.Payload
	}

	s.metrics.ObserveLookup(string(typ), metrics.ResultHit)
	return hit, nil
}

func (s *Store) decodeFailure(typ resource.Type, key string, err error) error {
	s.logger.WithFields(cacheFields(typ, key, false)).WithError(err).Error("failed to read cache file")
	s.metrics.ObserveLookup(string(typ), metrics.ResultDecodeError)
	return ErrNotFound
}

// Save 编码 envelope 并原子写入，失败返回 *StorageError。
// payload 可以是 json.RawMessage、[]byte 形式的 JSON，或任意可序列化的值。
func (s *Store) Save(ctx context.Context, typ resource.Type, key string, payload any, opts SaveOptions) error {
	err := s.save(ctx, typ, key, payload, opts)
	s.metrics.ObserveSave(string(typ), err)
	if err != nil {
		s.logger.WithFields(cacheFields(typ, key, false)).WithError(err).Error("failed to save cache file")
		return err
	}
	s.logger.WithFields(cacheFields(typ, key, false)).Debug("saved data to cache")
	return nil
}

func (s *Store) save(ctx context.Context, typ resource.Type, key string, payload any, opts SaveOptions) error {
	raw, err := marshalPayload(payload)
	if err != nil {
		return err
	}

	path, err := s.Resolve(typ, key)
	if err != nil {
		return err
	}

	writtenAt := s.now()
	body, err := Encode(Entry{
		Payload:   raw,
		WrittenAt: writtenAt,
		MaxAge:    opts.MaxAge,
		SourceURL: opts.SourceURL,
	})
	if err != nil {
		return err
	}

	_, err = s.writeFile(ctx, path, bytes.NewReader(body), writtenAt)
	return err
}

func marshalPayload(payload any) (json.RawMessage, error) {
	switch v := payload.(type) {
	case json.RawMessage:
		return v, nil
	case []byte:
		return json.RawMessage(v), nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode cache payload: %w", err)
	}
	return raw, nil
}

// Stats 返回按资源类型统计的读写计数。
func (s *Store) Stats() map[string]metrics.CacheCounts {
	return s.metrics.Snapshot()
}

func compact(raw json.RawMessage) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return bytes.TrimSpace(raw)
	}
	return buf.Bytes()
}
