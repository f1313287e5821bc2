package resource

import "time"

// Overrides 描述来自配置文件 [[Resource]] 块的策略覆盖。
type Overrides struct {
	TTL     time.Duration
	Forever bool
}

// ResolvePolicy 将资源默认策略与配置覆盖合并。Forever 优先于 TTL。
func ResolvePolicy(meta Metadata, opts Overrides) Policy {
	policy := meta.Policy
	if opts.Forever {
		return ForeverPolicy()
	}
	if opts.TTL > 0 {
		policy = TTLPolicy(opts.TTL)
	}
	return normalizePolicy(policy)
}

func normalizePolicy(p Policy) Policy {
	if p.Forever {
		return ForeverPolicy()
	}
	if p.TTL < 0 {
		p.TTL = 0
	}
	return p
}

// Policies 是解析完成后各资源类型的最终策略表，由调用方持有。
type Policies map[Type]Policy

// DefaultPolicies 返回所有已注册资源的默认策略。
func DefaultPolicies() Policies {
	out := make(Policies)
	for _, meta := range List() {
		out[meta.Type] = normalizePolicy(meta.Policy)
	}
	return out
}

// For 返回指定资源的策略；未知资源回退为永久缓存，与缓存层对缺省 max-age 的处理一致。
func (p Policies) For(t Type) Policy {
	if policy, ok := p[t]; ok {
		return policy
	}
	return ForeverPolicy()
}
