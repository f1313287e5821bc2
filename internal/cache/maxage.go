package cache

import (
	"time"

	"github.com/sofahub/sofahub/internal/resource"
)

// MaxAge 是可缺省的新鲜度时长。零值表示缺省（永久），
// Within(0) 则表示"总是过期"，两者不可混淆。
type MaxAge struct {
	d   time.Duration
	set bool
}

// Forever 表示不限制年龄。
var Forever = MaxAge{}

// Within 返回一个显式的最大年龄；d <= 0 的值总是判定为过期。
func Within(d time.Duration) MaxAge {
	return MaxAge{d: d, set: true}
}

// FromPolicy 将资源策略转换为读取时使用的 MaxAge。
func FromPolicy(p resource.Policy) MaxAge {
	if p.Forever {
		return Forever
	}
	return Within(p.TTL)
}

// Duration 返回时长以及是否显式设置。
func (m MaxAge) Duration() (time.Duration, bool) {
	return m.d, m.set
}

// IsForever 报告是否缺省。
func (m MaxAge) IsForever() bool {
	return !m.set
}

func (m MaxAge) String() string {
	if !m.set {
		return "forever"
	}
	return m.d.String()
}
