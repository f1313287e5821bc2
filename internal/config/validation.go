package config

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/sofahub/sofahub/internal/resource"
)

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newValueError(globalField("ListenPort"), strconv.Itoa(g.ListenPort), "必须在 1-65535")
	}
	if strings.TrimSpace(g.CacheDir) == "" {
		return newFieldError(globalField("CacheDir"), "不能为空")
	}
	if err := validateBaseURL(g.APIBase); err != nil {
		return newValueError(globalField("APIBase"), g.APIBase, err.Error())
	}
	if g.MaxRetries < 0 {
		return newValueError(globalField("MaxRetries"), strconv.Itoa(g.MaxRetries), "不能为负数")
	}
	if g.RetryDelay.DurationValue() < 0 {
		return newValueError(globalField("RetryDelay"), g.RetryDelay.DurationValue().String(), "不能为负数")
	}
	if g.RequestInterval.DurationValue() < 0 {
		return newValueError(globalField("RequestInterval"), g.RequestInterval.DurationValue().String(), "不能为负数")
	}
	if g.UpstreamTimeout.DurationValue() <= 0 {
		return newValueError(globalField("UpstreamTimeout"), g.UpstreamTimeout.DurationValue().String(), "必须大于 0")
	}
	if (g.ProxyUsername == "") != (g.ProxyPassword == "") {
		return newFieldError(globalField("ProxyUsername/ProxyPassword"), "必须同时提供或同时留空")
	}
	if g.ProxyUsername != "" && !g.HasProxy() {
		return newFieldError(globalField("ProxyEndpoint"), "配置了代理凭证但缺少代理地址")
	}
	if _, err := g.ProxyURL(); err != nil {
		return newValueError(globalField("ProxyEndpoint"), g.ProxyEndpoint, err.Error())
	}

	seen := map[resource.Type]struct{}{}
	for i := range c.Resources {
		rc := &c.Resources[i]
		if strings.TrimSpace(rc.Name) == "" {
			return newFieldError(resourceField("", "Name"), "不能为空")
		}
		meta, ok := resource.Resolve(rc.Name)
		if !ok {
			return unknownResource(rc.Name)
		}
		if _, exists := seen[meta.Type]; exists {
			return newFieldError(resourceField(rc.Name, "Name"), "重复")
		}
		seen[meta.Type] = struct{}{}
		rc.Name = string(meta.Type)

		if rc.CacheTTL.DurationValue() < 0 {
			return newValueError(resourceField(rc.Name, "CacheTTL"), rc.CacheTTL.DurationValue().String(), "不能为负数")
		}
	}

	return nil
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return errors.New("缺少 API 地址")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("仅支持 http/https")
	}
	if parsed.Host == "" {
		return errors.New("地址缺少 Host")
	}
	return nil
}
