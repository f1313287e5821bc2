package config

import (
	"fmt"
	"strings"

	"github.com/sofahub/sofahub/internal/resource"
)

// FieldError 指向配置中出错的键，例如 Global.APIBase 或 Resource[match_odds].CacheTTL。
// Value 保存原始取值，代理凭证等敏感字段留空。
type FieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s=%q: %s", e.Field, e.Value, e.Reason)
}

func newFieldError(field, reason string) error {
	return FieldError{Field: field, Reason: reason}
}

func newValueError(field, value, reason string) error {
	return FieldError{Field: field, Value: value, Reason: reason}
}

func globalField(key string) string {
	return "Global." + key
}

// resourceField 拼接 [[Resource]] 块中的字段路径；名称为空时输出 Resource[].Field。
func resourceField(name, field string) string {
	return fmt.Sprintf("Resource[%s].%s", name, field)
}

// unknownResource 列出可用的资源类型，便于用户修正 Name。
func unknownResource(name string) error {
	return newValueError(resourceField(name, "Name"), name, "仅支持 "+strings.Join(resource.Names(), "|"))
}
