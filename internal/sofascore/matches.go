package sofascore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sofahub/sofahub/internal/cache"
	"github.com/sofahub/sofahub/internal/resource"
)

// MatchDict 返回单场比赛的元数据。比赛信息不会变化，默认永久缓存。
// 缓存中的空对象不是有效比赛，会重新拉取。
func (c *Client) MatchDict(ctx context.Context, matchID int, opts ...CallOption) (Event, error) {
	o := c.callOpts(opts)
	key := matchKey(matchID)

	if o.useCache {
		if hit := c.lookup(ctx, resource.MatchDict, key, c.maxAge(resource.MatchDict)); hit != nil && !hit.Empty() {
			if ev, err := decodeEvent(hit.Payload); err == nil {
				return ev, nil
			}
		}
	}

	url := c.url("/event/%d", matchID)
	resp, err := c.get(ctx, url)
	if err != nil {
		return Event{}, err
	}
	if resp.StatusCode != 200 {
		return Event{}, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	raw, err := rawField(resp.Body, "event")
	if err != nil {
		return Event{}, err
	}
	ev, err := decodeEvent(raw)
	if err != nil {
		return Event{}, err
	}

	if o.useCache {
		if err := c.persist(ctx, resource.MatchDict, key, raw, cache.SaveOptions{SourceURL: url}); err != nil {
			return Event{}, err
		}
	}
	return ev, nil
}

// MatchURLFromID 根据比赛元数据拼出网页地址。
func (c *Client) MatchURLFromID(ctx context.Context, matchID int) (string, error) {
	ev, err := c.MatchDict(ctx, matchID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://www.sofascore.com/%s-%s/%s#id:%d",
		ev.HomeTeam.Slug, ev.AwayTeam.Slug, ev.CustomID, ev.ID), nil
}

// TeamNames 返回主队与客队名称。
func (c *Client) TeamNames(ctx context.Context, matchID int) (string, string, error) {
	ev, err := c.MatchDict(ctx, matchID)
	if err != nil {
		return "", "", err
	}
	return ev.HomeTeam.Name, ev.AwayTeam.Name, nil
}

// IsMatchFinished 只查询缓存，不访问网络。
func (c *Client) IsMatchFinished(ctx context.Context, matchID int) bool {
	if c.store == nil {
		return false
	}
	return c.store.IsMatchFinished(ctx, matchKey(matchID))
}

type lineupPlayer struct {
	Player struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"player"`
}

type lineups struct {
	Home struct {
		Players []lineupPlayer `json:"players"`
	} `json:"home"`
	Away struct {
		Players []lineupPlayer `json:"players"`
	} `json:"away"`
}

// PlayerIDs 返回比赛双方阵容中球员名到球员 ID 的映射，永久缓存。
// 阵容不可用时返回空映射且不写缓存。
func (c *Client) PlayerIDs(ctx context.Context, matchID int, opts ...CallOption) (map[string]int, error) {
	o := c.callOpts(opts)
	key := matchKey(matchID)

	if o.useCache {
		if hit := c.lookup(ctx, resource.PlayerIDs, key, c.maxAge(resource.PlayerIDs)); hit != nil && !hit.Empty() {
			var ids map[string]int
			if err := hit.Decode(&ids); err == nil {
				return ids, nil
			}
		}
	}

	url := c.url("/event/%d/lineups", matchID)
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		c.logger.WithField("url", url).WithField("status", resp.StatusCode).Warn("lineups unavailable, returning no players")
		return map[string]int{}, nil
	}

	var body lineups
	if err := resp.JSON(&body); err != nil {
		return nil, err
	}
	ids := make(map[string]int)
	for _, p := range append(body.Home.Players, body.Away.Players...) {
		if p.Player.Name != "" {
			ids[p.Player.Name] = p.Player.ID
		}
	}

	if o.useCache {
		if err := c.persist(ctx, resource.PlayerIDs, key, ids, cache.SaveOptions{SourceURL: url}); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// positionAbbrev 是联赛统计页支持的位置过滤。
var positionAbbrev = map[string]string{
	"Goalkeepers": "G",
	"Defenders":   "D",
	"Midfielders": "M",
	"Forwards":    "F",
}

// AllPositions 是默认的全部位置。
var AllPositions = []string{"Goalkeepers", "Defenders", "Midfielders", "Forwards"}

// PositionsKey 返回位置组合的缓存键：排序后以 `_` 连接。
func PositionsKey(selected []string) string {
	sorted := append([]string(nil), selected...)
	sort.Strings(sorted)
	return strings.Join(sorted, "_")
}

// Positions 将位置名称转换为统计接口的过滤参数，例如 ["Goalkeepers","Defenders"] -> "G~D"。
func (c *Client) Positions(ctx context.Context, selected []string, opts ...CallOption) (string, error) {
	abbrevs := make([]string, 0, len(selected))
	for _, pos := range selected {
		abbrev, ok := positionAbbrev[pos]
		if !ok {
			return "", fmt.Errorf("%w: %q, must be one of %v", ErrInvalidPosition, pos, AllPositions)
		}
		abbrevs = append(abbrevs, abbrev)
	}

	o := c.callOpts(opts)
	key := PositionsKey(selected)
	if o.useCache && key != "" {
		if hit := c.lookup(ctx, resource.Positions, key, c.maxAge(resource.Positions)); hit != nil && !hit.Empty() {
			var cached string
			if err := json.Unmarshal(hit.Payload, &cached); err == nil && cached != "" {
				return cached, nil
			}
		}
	}

	result := strings.Join(abbrevs, "~")
	if o.useCache && key != "" {
		if err := c.persist(ctx, resource.Positions, key, result, cache.SaveOptions{}); err != nil {
			return "", err
		}
	}
	return result, nil
}
