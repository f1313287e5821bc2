package upstream

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// LockoutError 表示 Session 因连续被拒绝而处于锁定期。
type LockoutError struct {
	Session string
	Until   time.Time
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("upstream session %s locked until %s", e.Session, e.Until.Format(time.RFC3339))
}

// Session 是调用方持有的请求上下文：请求/失败计数、锁定截止时间与节奏限速器。
// 计数器为原子操作，可被诊断端并发读取。
type Session struct {
	ID string

	limiter *rate.Limiter

	requests    atomic.Int64
	failures    atomic.Int64
	blocked     atomic.Int64
	lockedUntil atomic.Int64
}

// NewSession 以 interval 作为相邻请求的最小间隔；interval <= 0 时不限速。
func NewSession(interval time.Duration) *Session {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Session{
		ID:      uuid.NewString(),
		limiter: rate.NewLimiter(limit, 1),
	}
}

// SessionStats 是 Session 计数的快照。
type SessionStats struct {
	ID          string    `json:"id"`
	Requests    int64     `json:"requests"`
	Failures    int64     `json:"failures"`
	LockedUntil time.Time `json:"locked_until,omitempty"`
}

// Stats 返回当前计数。
func (s *Session) Stats() SessionStats {
	stats := SessionStats{
		ID:       s.ID,
		Requests: s.requests.Load(),
		Failures: s.failures.Load(),
	}
	if until := s.lockedUntil.Load(); until > 0 {
		stats.LockedUntil = time.Unix(0, until)
	}
	return stats
}

// LockedUntil 报告 now 时刻 Session 是否仍处于锁定期。
func (s *Session) LockedUntil(now time.Time) (time.Time, bool) {
	until := s.lockedUntil.Load()
	if until == 0 {
		return time.Time{}, false
	}
	deadline := time.Unix(0, until)
	return deadline, now.Before(deadline)
}

func (s *Session) wait(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}

// observe 更新计数；连续 limit 次 403/429 后锁定 span。
func (s *Session) observe(status int, err error, limit int, span time.Duration) {
	s.requests.Add(1)
	if err != nil || status >= 400 {
		s.failures.Add(1)
	}

	switch {
	case status == http.StatusForbidden || status == http.StatusTooManyRequests:
		if s.blocked.Add(1) >= int64(limit) {
			s.lockedUntil.Store(time.Now().Add(span).UnixNano())
			s.blocked.Store(0)
		}
	case err == nil && status > 0 && status < 400:
		s.blocked.Store(0)
	}
}
