package cache

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/sofahub/sofahub/internal/resource"
)

// GetMatchDict 读取单场比赛元数据（match_dict/{id}.json）。
func (s *Store) GetMatchDict(ctx context.Context, matchID string, maxAge MaxAge) (*Hit, error) {
	return s.Get(ctx, resource.MatchDict, matchID, maxAge)
}

// SaveMatchDict 写入单场比赛元数据。
func (s *Store) SaveMatchDict(ctx context.Context, matchID string, payload any, opts SaveOptions) error {
	return s.Save(ctx, resource.MatchDict, matchID, payload, opts)
}

// GetMatchStats 读取比赛技术统计；空列表表示上游无统计。
func (s *Store) GetMatchStats(ctx context.Context, matchID string, maxAge MaxAge) (*Hit, error) {
	return s.Get(ctx, resource.MatchStats, matchID, maxAge)
}

// SaveMatchStats 写入比赛技术统计。
func (s *Store) SaveMatchStats(ctx context.Context, matchID string, payload any, opts SaveOptions) error {
	return s.Save(ctx, resource.MatchStats, matchID, payload, opts)
}

// GetMatchOdds 读取比赛赔率原始 payload。
func (s *Store) GetMatchOdds(ctx context.Context, matchID string, maxAge MaxAge) (*Hit, error) {
	return s.Get(ctx, resource.MatchOdds, matchID, maxAge)
}

// SaveMatchOdds 写入比赛赔率；失败标记为 {"markets":[]}。
func (s *Store) SaveMatchOdds(ctx context.Context, matchID string, payload any, opts SaveOptions) error {
	return s.Save(ctx, resource.MatchOdds, matchID, payload, opts)
}

// GetPlayerIDs 读取比赛阵容中的球员名称到 ID 映射。
func (s *Store) GetPlayerIDs(ctx context.Context, matchID string, maxAge MaxAge) (*Hit, error) {
	return s.Get(ctx, resource.PlayerIDs, matchID, maxAge)
}

// SavePlayerIDs 写入球员名称到 ID 映射。
func (s *Store) SavePlayerIDs(ctx context.Context, matchID string, payload any, opts SaveOptions) error {
	return s.Save(ctx, resource.PlayerIDs, matchID, payload, opts)
}

// GetPositions 读取位置缩写串，key 为排序后以 `_` 连接的位置名。
func (s *Store) GetPositions(ctx context.Context, key string, maxAge MaxAge) (*Hit, error) {
	return s.Get(ctx, resource.Positions, key, maxAge)
}

// SavePositions 写入位置缩写串。
func (s *Store) SavePositions(ctx context.Context, key string, payload any, opts SaveOptions) error {
	return s.Save(ctx, resource.Positions, key, payload, opts)
}

// GetValidSeasons 读取联赛的赛季标签到赛季 ID 映射。
func (s *Store) GetValidSeasons(ctx context.Context, league string, maxAge MaxAge) (*Hit, error) {
	return s.Get(ctx, resource.ValidSeasons, league, maxAge)
}

// SaveValidSeasons 写入联赛赛季映射。
func (s *Store) SaveValidSeasons(ctx context.Context, league string, payload any, opts SaveOptions) error {
	return s.Save(ctx, resource.ValidSeasons, league, payload, opts)
}

// MatchDictsKey 组装分页列表的复合键 league/year/page；year 中的 `/` 由解析器处理。
func MatchDictsKey(league, year string, page int) string {
	return league + "/" + year + "/" + strconv.Itoa(page)
}

// GetMatchDicts 读取赛季比赛列表的第 page 页。
func (s *Store) GetMatchDicts(ctx context.Context, league, year string, page int, maxAge MaxAge) (*Hit, error) {
	return s.Get(ctx, resource.MatchDicts, MatchDictsKey(league, year, page), maxAge)
}

// SaveMatchDicts 写入一页列表；空列表是合法的"分页结束"标记。
func (s *Store) SaveMatchDicts(ctx context.Context, league, year string, page int, payload any, opts SaveOptions) error {
	return s.Save(ctx, resource.MatchDicts, MatchDictsKey(league, year, page), payload, opts)
}

// GetLeagueMovements 读取赛季升降级结果，key 形如 {league}_{year}_movements。
func (s *Store) GetLeagueMovements(ctx context.Context, key string, maxAge MaxAge) (*Hit, error) {
	return s.Get(ctx, resource.LeagueMovements, key, maxAge)
}

// SaveLeagueMovements 写入赛季升降级结果。
func (s *Store) SaveLeagueMovements(ctx context.Context, key string, payload any, opts SaveOptions) error {
	return s.Save(ctx, resource.LeagueMovements, key, payload, opts)
}

// GetLeagueStandings 读取赛季积分榜，key 形如 {league}_{year}_standings。
func (s *Store) GetLeagueStandings(ctx context.Context, key string, maxAge MaxAge) (*Hit, error) {
	return s.Get(ctx, resource.LeagueStandings, key, maxAge)
}

// SaveLeagueStandings 写入赛季积分榜。
func (s *Store) SaveLeagueStandings(ctx context.Context, key string, payload any, opts SaveOptions) error {
	return s.Save(ctx, resource.LeagueStandings, key, payload, opts)
}

// IsMatchFinished 只读缓存（永久语义），payload.status.type == "finished" 时为 true。
// 任何错误或缺失都返回 false，不会触发网络请求。
func (s *Store) IsMatchFinished(ctx context.Context, matchID string) bool {
	hit, err := s.GetMatchDict(ctx, matchID, Forever)
	if err != nil {
		return false
	}
	var match struct {
		Status struct {
			Type string `json:"type"`
		} `json:"status"`
	}
	if err := json.Unmarshal(hit.Payload, &match); err != nil {
		return false
	}
	return match.Status.Type == "finished"
}
