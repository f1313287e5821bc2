package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// CacheFields 提供资源类型/键/命中状态字段，供缓存读写日志复用。
func CacheFields(resource, key string, hit bool) logrus.Fields {
	return logrus.Fields{
		"resource":  resource,
		"key":       key,
		"cache_hit": hit,
	}
}

// RequestFields 提供上游 URL、状态码与尝试次数字段，供上游请求日志复用。
func RequestFields(url string, status, attempt int) logrus.Fields {
	return logrus.Fields{
		"url":     url,
		"status":  status,
		"attempt": attempt,
	}
}
