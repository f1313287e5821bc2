// Package server 提供只读的 Fiber HTTP 服务：/api 下的读穿透 JSON 接口复用
// sofascore 客户端与磁盘缓存，/-/ 前缀保留给诊断与指标端点（见 routes 包）。
// 依赖通过 AppOptions 显式注入，便于测试替换。
package server
