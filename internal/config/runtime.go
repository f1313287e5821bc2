package config

import "github.com/sofahub/sofahub/internal/resource"

// Policies 将注册表默认策略与 [[Resource]] 覆盖合并，得到调用方读取时使用的最终策略。
func (c *Config) Policies() resource.Policies {
	policies := resource.DefaultPolicies()
	if c == nil {
		return policies
	}
	for _, rc := range c.Resources {
		meta, ok := resource.Resolve(rc.Name)
		if !ok {
			continue
		}
		policies[meta.Type] = resource.ResolvePolicy(meta, rc.Overrides())
	}
	return policies
}
