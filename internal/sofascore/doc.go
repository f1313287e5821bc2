// Package sofascore 封装 Sofascore API：带缓存的读取方法（赛季、赛程分页、比赛、
// 阵容、技术统计、赔率、积分榜）以及不缓存的轻量抓取方法（走势、射门、平均站位、热图）。
// 缓存读取使用 resource 包的默认策略，可由配置覆盖；未命中时通过 upstream 拉取并写回缓存。
package sofascore
