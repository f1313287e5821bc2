// Package resource 维护缓存的资源类型注册表：每种资源对应固定的磁盘子目录、
// 键的布局方式（平铺或分页目录）以及调用方默认的新鲜度策略。
//
// 资源类型在 init() 中通过 MustRegister 注册；缓存层据此决定路径布局，
// API 客户端据此选择默认的 max-age，配置文件中的 [[Resource]] 块可以覆盖该策略。
package resource
