package sofascore

import (
	"context"
	"encoding/json"

	"github.com/sofahub/sofahub/internal/upstream"
)

// 以下方法不经过缓存；上游返回非 200 时记录警告并返回空结果。

// MatchMomentum 返回比赛走势图数据。
func (c *Client) MatchMomentum(ctx context.Context, matchID int) ([]MomentumPoint, error) {
	var body struct {
		GraphPoints []MomentumPoint `json:"graphPoints"`
	}
	ok, err := c.scrape(ctx, c.url("/event/%d/graph", matchID), &body)
	if err != nil || !ok {
		return []MomentumPoint{}, err
	}
	return nonNil(body.GraphPoints), nil
}

// MatchShots 返回射门图的原始记录。
func (c *Client) MatchShots(ctx context.Context, matchID int) ([]json.RawMessage, error) {
	var body struct {
		Shotmap []json.RawMessage `json:"shotmap"`
	}
	ok, err := c.scrape(ctx, c.url("/event/%d/shotmap", matchID), &body)
	if err != nil || !ok {
		return []json.RawMessage{}, err
	}
	return nonNil(body.Shotmap), nil
}

type averagePositionItem struct {
	Player struct {
		ID       int    `json:"id"`
		Name     string `json:"name"`
		Position string `json:"position"`
	} `json:"player"`
	AverageX    float64 `json:"averageX"`
	AverageY    float64 `json:"averageY"`
	PointsCount int     `json:"pointsCount"`
}

// PlayerAveragePositions 返回双方球员的平均站位。
func (c *Client) PlayerAveragePositions(ctx context.Context, matchID int) ([]AveragePosition, error) {
	home, away, err := c.TeamNames(ctx, matchID)
	if err != nil {
		return nil, err
	}
	var body struct {
		Home []averagePositionItem `json:"home"`
		Away []averagePositionItem `json:"away"`
	}
	ok, err := c.scrape(ctx, c.url("/event/%d/average-positions", matchID), &body)
	if err != nil || !ok {
		return []AveragePosition{}, err
	}

	out := []AveragePosition{}
	for _, side := range []struct {
		team  string
		items []averagePositionItem
	}{{home, body.Home}, {away, body.Away}} {
		for _, item := range side.items {
			out = append(out, AveragePosition{
				PlayerID:    item.Player.ID,
				Player:      item.Player.Name,
				Position:    item.Player.Position,
				Team:        side.team,
				AverageX:    item.AverageX,
				AverageY:    item.AverageY,
				PointsCount: item.PointsCount,
			})
		}
	}
	return out, nil
}

// Heatmaps 返回每名球员的热图坐标；未出场球员的坐标为空。
func (c *Client) Heatmaps(ctx context.Context, matchID int) (map[string]PlayerHeatmap, error) {
	players, err := c.PlayerIDs(ctx, matchID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]PlayerHeatmap, len(players))
	for name, playerID := range players {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hm := PlayerHeatmap{ID: playerID, Heatmap: []HeatPoint{}}
		resp, err := c.get(ctx, c.url("/event/%d/player/%d/heatmap", matchID, playerID))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == 200 {
			var body struct {
				Heatmap []HeatPoint `json:"heatmap"`
			}
			if err := resp.JSON(&body); err == nil {
				hm.Heatmap = nonNil(body.Heatmap)
			}
		}
		out[name] = hm
	}
	return out, nil
}

type lineupEntry struct {
	Player struct {
		ID       int    `json:"id"`
		Name     string `json:"name"`
		Position string `json:"position"`
	} `json:"player"`
	Substitute bool           `json:"substitute"`
	Statistics map[string]any `json:"statistics"`
}

// PlayerMatchStats 返回双方阵容中每名球员的比赛统计。
func (c *Client) PlayerMatchStats(ctx context.Context, matchID int) ([]PlayerMatchRow, error) {
	ev, err := c.MatchDict(ctx, matchID)
	if err != nil {
		return nil, err
	}
	var body struct {
		Home struct {
			Players []lineupEntry `json:"players"`
		} `json:"home"`
		Away struct {
			Players []lineupEntry `json:"players"`
		} `json:"away"`
	}
	ok, err := c.scrape(ctx, c.url("/event/%d/lineups", matchID), &body)
	if err != nil || !ok {
		return []PlayerMatchRow{}, err
	}

	out := []PlayerMatchRow{}
	for _, side := range []struct {
		team    Team
		players []lineupEntry
	}{{ev.HomeTeam, body.Home.Players}, {ev.AwayTeam, body.Away.Players}} {
		for _, p := range side.players {
			stats := p.Statistics
			if stats == nil {
				stats = map[string]any{}
			}
			out = append(out, PlayerMatchRow{
				PlayerID:   p.Player.ID,
				Player:     p.Player.Name,
				Position:   p.Player.Position,
				Substitute: p.Substitute,
				TeamID:     side.team.ID,
				Team:       side.team.Name,
				Statistics: stats,
			})
		}
	}
	return out, nil
}

// scrape 请求 url 并在 200 时解析到 out；ok 为 false 表示上游没有数据。
func (c *Client) scrape(ctx context.Context, url string, out any) (bool, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return false, err
	}
	if resp.StatusCode != 200 {
		c.logger.WithField("url", url).WithField("status", resp.StatusCode).Warn("upstream returned no data, returning empty result")
		return false, nil
	}
	if err := resp.JSON(out); err != nil {
		return false, err
	}
	return true, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

var _ Fetcher = (*upstream.Client)(nil)
