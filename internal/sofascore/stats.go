package sofascore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sofahub/sofahub/internal/cache"
	"github.com/sofahub/sofahub/internal/resource"
)

// TeamMatchStats 返回比赛双方的技术统计。
// 仅在比赛结束后永久缓存；404 以空列表缓存一天，避免反复请求没有统计的比赛。
func (c *Client) TeamMatchStats(ctx context.Context, matchID int, opts ...CallOption) ([]StatRow, error) {
	if _, err := c.MatchDict(ctx, matchID, opts...); err != nil {
		return nil, err
	}
	o := c.callOpts(opts)
	key := matchKey(matchID)

	if o.useCache {
		if hit := c.lookup(ctx, resource.MatchStats, key, c.maxAge(resource.MatchStats)); hit != nil {
			rows, err := flattenStats(hit.Payload)
			if err == nil {
				return rows, nil
			}
			c.logger.WithField("key", key).WithError(err).Warn("cached statistics are malformed, refetching")
		}
	}

	url := c.url("/event/%d/statistics", matchID)
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case 200:
	case 404:
		c.logger.WithField("url", url).Warn("match statistics not found, caching empty result")
		if o.useCache {
			if err := c.persist(ctx, resource.MatchStats, key, []any{},
				cache.SaveOptions{MaxAge: cache.Within(24 * time.Hour), SourceURL: url}); err != nil {
				return nil, err
			}
		}
		return []StatRow{}, nil
	default:
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	raw, err := rawField(resp.Body, "statistics")
	if err != nil {
		return nil, err
	}
	rows, err := flattenStats(raw)
	if err != nil {
		return nil, err
	}
	if o.useCache && c.IsMatchFinished(ctx, matchID) {
		if err := c.persist(ctx, resource.MatchStats, key, raw, cache.SaveOptions{SourceURL: url}); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// flattenStats 展开 period/group 两层结构。payload 可以是列表，也可以是带 statistics 字段的对象。
func flattenStats(payload json.RawMessage) ([]StatRow, error) {
	var wrapped struct {
		Statistics json.RawMessage `json:"statistics"`
	}
	if err := json.Unmarshal(payload, &wrapped); err == nil && len(wrapped.Statistics) > 0 {
		payload = wrapped.Statistics
	}

	var periods []statPeriod
	if err := json.Unmarshal(payload, &periods); err != nil {
		return nil, err
	}
	rows := []StatRow{}
	for _, period := range periods {
		for _, group := range period.Groups {
			for _, item := range group.StatisticsItems {
				item.Period = period.Period
				item.Group = group.GroupName
				rows = append(rows, item)
			}
		}
	}
	return rows, nil
}

// MatchOdds 返回比赛的全部赔率选项。已结束比赛的赔率永久缓存，其余缓存一天；
// 请求失败时缓存空市场列表。
func (c *Client) MatchOdds(ctx context.Context, matchID int, opts ...CallOption) ([]OddsRow, error) {
	o := c.callOpts(opts)
	key := matchKey(matchID)
	finished := o.useCache && c.IsMatchFinished(ctx, matchID)

	readAge := c.maxAge(resource.MatchOdds)
	saveOpts := cache.SaveOptions{MaxAge: cache.Within(24 * time.Hour)}
	if finished {
		readAge = cache.Forever
		saveOpts.MaxAge = cache.Forever
	}

	if o.useCache {
		if hit := c.lookup(ctx, resource.MatchOdds, key, readAge); hit != nil {
			return c.processOdds(hit.Payload), nil
		}
	}

	url := c.url("/event/%d/odds/1/all", matchID)
	saveOpts.SourceURL = url
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		c.logger.WithField("url", url).WithField("status", resp.StatusCode).Warn("failed to get odds data")
		if o.useCache {
			if err := c.persist(ctx, resource.MatchOdds, key, map[string][]any{"markets": {}}, saveOpts); err != nil {
				return nil, err
			}
		}
		return []OddsRow{}, nil
	}

	if o.useCache {
		if err := c.persist(ctx, resource.MatchOdds, key, json.RawMessage(resp.Body), saveOpts); err != nil {
			return nil, err
		}
	}
	return c.processOdds(resp.Body), nil
}

// processOdds 将 markets/choices 展开为行；格式不符时返回空结果。
func (c *Client) processOdds(payload []byte) []OddsRow {
	var body struct {
		Markets []oddsMarket `json:"markets"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		c.logger.WithError(err).Warn("received invalid odds data format")
		return []OddsRow{}
	}
	rows := []OddsRow{}
	for _, market := range body.Markets {
		for _, choice := range market.Choices {
			current := choice.CurrentOdds
			if current == "" {
				current = choice.FractionalValue
			}
			rows = append(rows, OddsRow{
				MarketID:               market.MarketID,
				MarketName:             market.MarketName,
				ChoiceGroup:            market.ChoiceGroup,
				Name:                   choice.Name,
				InitialOdds:            choice.InitialOdds,
				InitialFractionalValue: choice.InitialFractionalValue,
				CurrentOdds:            current,
				Winning:                choice.Winning,
			})
		}
	}
	return rows
}
