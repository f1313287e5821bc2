package resource

import "time"

// Type 标识一个缓存分区，同时也是磁盘上的子目录名。
type Type string

const (
	MatchDict       Type = "match_dict"
	MatchStats      Type = "match_stats"
	MatchOdds       Type = "match_odds"
	PlayerIDs       Type = "player_ids"
	Positions       Type = "positions"
	ValidSeasons    Type = "valid_seasons"
	MatchDicts      Type = "match_dicts"
	LeagueMovements Type = "league_movements"
	LeagueStandings Type = "league_standings"
)

// String 返回资源类型的原始名称。
func (t Type) String() string {
	return string(t)
}

// Layout 描述键在磁盘上的组织方式。
type Layout string

const (
	// LayoutFlat 将键中的 `/` 替换为 `_` 后作为单个文件名。
	LayoutFlat Layout = "flat"
	// LayoutPaged 将 league/year/page 复合键拆分为两级目录加页码文件。
	LayoutPaged Layout = "paged"
)

// Policy 是调用方在读取时使用的默认新鲜度策略；缓存本身并不强制执行它。
type Policy struct {
	// Forever 表示永久缓存，此时忽略 TTL。
	Forever bool
	// TTL 为缓存允许的最大年龄。
	TTL time.Duration
}

// ForeverPolicy 返回永久缓存策略。
func ForeverPolicy() Policy {
	return Policy{Forever: true}
}

// TTLPolicy 返回固定 TTL 的策略。
func TTLPolicy(ttl time.Duration) Policy {
	return Policy{TTL: ttl}
}

// String 输出便于日志与诊断端展示的策略描述。
func (p Policy) String() string {
	if p.Forever {
		return "forever"
	}
	return p.TTL.String()
}

// Metadata 记录一种资源类型的静态信息，供缓存布局、客户端策略与诊断端使用。
type Metadata struct {
	Type        Type
	Description string
	Layout      Layout
	KeyShape    string
	Policy      Policy
}

// Subdir 返回资源在缓存根目录下的子目录名。
func (m Metadata) Subdir() string {
	return string(m.Type)
}
