package sofascore

import (
	"context"
	"sort"
	"time"

	"github.com/sofahub/sofahub/internal/cache"
	"github.com/sofahub/sofahub/internal/resource"
)

// ValidSeasons 返回联赛的赛季标签到赛季 ID 的映射，例如 {"23/24": 52186}。
func (c *Client) ValidSeasons(ctx context.Context, league string, opts ...CallOption) (map[string]int, error) {
	leagueID, err := ResolveLeague(league)
	if err != nil {
		return nil, err
	}
	o := c.callOpts(opts)

	if o.useCache {
		if hit := c.lookup(ctx, resource.ValidSeasons, leagueID, c.maxAge(resource.ValidSeasons)); hit != nil && !hit.Empty() {
			var seasons map[string]int
			if err := hit.Decode(&seasons); err == nil {
				return seasons, nil
			}
		}
	}

	url := c.url("/unique-tournament/%s/seasons/", leagueID)
	var body struct {
		Seasons []struct {
			ID   int    `json:"id"`
			Year string `json:"year"`
		} `json:"seasons"`
	}
	if err := c.getJSON(ctx, url, &body); err != nil {
		return nil, err
	}

	seasons := make(map[string]int, len(body.Seasons))
	for _, s := range body.Seasons {
		seasons[s.Year] = s.ID
	}

	if o.useCache {
		if err := c.persist(ctx, resource.ValidSeasons, leagueID, seasons, cache.SaveOptions{SourceURL: url}); err != nil {
			return nil, err
		}
	}
	return seasons, nil
}

// seasonID 校验赛季并返回其 ID。
func (c *Client) seasonID(ctx context.Context, leagueID, year string) (int, error) {
	seasons, err := c.ValidSeasons(ctx, leagueID)
	if err != nil {
		return 0, err
	}
	id, ok := seasons[year]
	if !ok {
		valid := make([]string, 0, len(seasons))
		for label := range seasons {
			valid = append(valid, label)
		}
		sort.Strings(valid)
		return 0, invalidYear(year, leagueID, valid)
	}
	return id, nil
}

// MatchDicts 返回联赛赛季的全部比赛。逐页读取缓存，未命中的页向上游请求；
// 404 或空页视为分页结束，并以空列表缓存一天作为结束标记。
func (c *Client) MatchDicts(ctx context.Context, year, league string, opts ...CallOption) ([]Event, error) {
	leagueID, err := ResolveLeague(league)
	if err != nil {
		return nil, err
	}
	sid, err := c.seasonID(ctx, leagueID, year)
	if err != nil {
		return nil, err
	}
	o := c.callOpts(opts)

	matches := []Event{}
	for page := 0; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if o.useCache {
			if hit := c.lookup(ctx, resource.MatchDicts, cache.MatchDictsKey(leagueID, year, page), c.maxAge(resource.MatchDicts)); hit != nil {
				if hit.Empty() {
					c.logger.WithField("page", page).Debug("found empty page in cache, stopping pagination")
					break
				}
				events, err := decodeEvents(hit.Payload)
				if err == nil {
					matches = append(matches, events...)
					continue
				}
				c.logger.WithField("page", page).WithError(err).Warn("cached page is not an event list, refetching")
			}
		}

		url := c.url("/unique-tournament/%s/season/%d/events/last/%d", leagueID, sid, page)
		resp, err := c.get(ctx, url)
		if err != nil {
			return nil, err
		}

		switch resp.StatusCode {
		case 200:
		case 404:
			c.logger.WithField("page", page).Warn("got 404 for page, saving empty page marker")
			if o.useCache {
				if err := c.persist(ctx, resource.MatchDicts, cache.MatchDictsKey(leagueID, year, page), []Event{},
					cache.SaveOptions{MaxAge: cache.Within(24 * time.Hour), SourceURL: url}); err != nil {
					return nil, err
				}
			}
			return matches, nil
		default:
			return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
		}

		raw, err := rawField(resp.Body, "events")
		if err != nil {
			return nil, err
		}
		events, err := decodeEvents(raw)
		if err != nil {
			return nil, err
		}
		if o.useCache {
			if err := c.persist(ctx, resource.MatchDicts, cache.MatchDictsKey(leagueID, year, page), raw, cache.SaveOptions{SourceURL: url}); err != nil {
				return nil, err
			}
		}
		if len(events) == 0 {
			break
		}
		matches = append(matches, events...)
	}
	return matches, nil
}
