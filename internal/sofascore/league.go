package sofascore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/sofahub/sofahub/internal/cache"
	"github.com/sofahub/sofahub/internal/resource"
)

// LeagueStatFields 是联赛球员统计请求的字段列表。
var LeagueStatFields = []string{
	"goals", "yellowCards", "redCards", "groundDuelsWon", "groundDuelsWonPercentage",
	"aerialDuelsWon", "aerialDuelsWonPercentage", "successfulDribbles",
	"successfulDribblesPercentage", "tackles", "assists", "accuratePassesPercentage",
	"totalDuelsWon", "totalDuelsWonPercentage", "minutesPlayed", "wasFouled", "fouls",
	"dispossessed", "possesionLost", "appearances", "started", "saves", "cleanSheets",
	"savedShotsFromInsideTheBox", "savedShotsFromOutsideTheBox",
	"goalsConcededInsideTheBox", "goalsConcededOutsideTheBox", "highClaims",
	"successfulRunsOut", "punches", "runsOut", "accurateFinalThirdPasses",
	"bigChancesCreated", "accuratePasses", "keyPasses", "accurateCrosses",
	"accurateCrossesPercentage", "accurateLongBalls", "accurateLongBallsPercentage",
	"interceptions", "clearances", "dribbledPast", "bigChancesMissed", "totalShots",
	"shotsOnTarget", "blockedShots", "goalConversionPercentage", "hitWoodwork", "offsides",
	"expectedGoals", "errorLeadToGoal", "errorLeadToShot", "passToAssist",
}

// Accumulations 是统计接口支持的累计方式。
var Accumulations = []string{"total", "per90", "perMatch"}

const leagueStatsPageSize = 100

// StandingsKey 返回积分榜缓存键。
func StandingsKey(leagueID, year string) string {
	return fmt.Sprintf("%s_%s_standings", leagueID, year)
}

// MovementsKey 返回升降级缓存键。
func MovementsKey(leagueID, year string) string {
	return fmt.Sprintf("%s_%s_movements", leagueID, year)
}

// LeagueStandings 返回赛季积分榜。多组积分榜（例如分组赛）按顺序拼接。
func (c *Client) LeagueStandings(ctx context.Context, league, year string, opts ...CallOption) ([]StandingRow, error) {
	tables, err := c.standingsTables(ctx, league, year, opts)
	if err != nil {
		return nil, err
	}
	rows := []StandingRow{}
	for _, table := range tables {
		for _, r := range table.Rows {
			row := StandingRow{
				Position:      r.Position,
				TeamID:        r.Team.ID,
				Team:          r.Team.Name,
				Matches:       r.Matches,
				Wins:          r.Wins,
				Draws:         r.Draws,
				Losses:        r.Losses,
				ScoresFor:     r.ScoresFor,
				ScoresAgainst: r.ScoresAgainst,
				Points:        r.Points,
			}
			if r.Promotion != nil {
				row.Promotion = r.Promotion.Text
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (c *Client) standingsTables(ctx context.Context, league, year string, opts []CallOption) ([]standingsTable, error) {
	leagueID, err := ResolveLeague(league)
	if err != nil {
		return nil, err
	}
	o := c.callOpts(opts)
	key := StandingsKey(leagueID, year)

	if o.useCache {
		if hit := c.lookup(ctx, resource.LeagueStandings, key, c.maxAge(resource.LeagueStandings)); hit != nil && !hit.Empty() {
			var tables []standingsTable
			if err := hit.Decode(&tables); err == nil {
				return tables, nil
			}
		}
	}

	sid, err := c.seasonID(ctx, leagueID, year)
	if err != nil {
		return nil, err
	}
	endpoint := c.url("/unique-tournament/%s/season/%d/standings/total", leagueID, sid)
	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, &StatusError{URL: endpoint, StatusCode: resp.StatusCode}
	}
	raw, err := rawField(resp.Body, "standings")
	if err != nil {
		return nil, err
	}
	var tables []standingsTable
	if err := json.Unmarshal(raw, &tables); err != nil {
		return nil, err
	}

	if o.useCache {
		if err := c.persist(ctx, resource.LeagueStandings, key, raw, cache.SaveOptions{SourceURL: endpoint}); err != nil {
			return nil, err
		}
	}
	return tables, nil
}

// LeagueMovements 根据积分榜的 promotion 标注归纳升级、降级与资格赛球队。
func (c *Client) LeagueMovements(ctx context.Context, league, year string, opts ...CallOption) (Movements, error) {
	leagueID, err := ResolveLeague(league)
	if err != nil {
		return Movements{}, err
	}
	o := c.callOpts(opts)
	key := MovementsKey(leagueID, year)

	if o.useCache {
		if hit := c.lookup(ctx, resource.LeagueMovements, key, c.maxAge(resource.LeagueMovements)); hit != nil && !hit.Empty() {
			var m Movements
			if err := hit.Decode(&m); err == nil {
				return m, nil
			}
		}
	}

	rows, err := c.LeagueStandings(ctx, leagueID, year, opts...)
	if err != nil {
		return Movements{}, err
	}
	m := movementsFrom(rows)

	if o.useCache {
		if err := c.persist(ctx, resource.LeagueMovements, key, m, cache.SaveOptions{}); err != nil {
			return Movements{}, err
		}
	}
	return m, nil
}

func movementsFrom(rows []StandingRow) Movements {
	m := Movements{
		Promoted:  []string{},
		Relegated: []string{},
		Qualified: map[string][]string{},
	}
	for _, row := range rows {
		text := strings.TrimSpace(row.Promotion)
		lower := strings.ToLower(text)
		switch {
		case text == "":
		case strings.Contains(lower, "relegation"):
			m.Relegated = append(m.Relegated, row.Team)
		case strings.Contains(lower, "promotion"):
			m.Promoted = append(m.Promoted, row.Team)
		default:
			m.Qualified[text] = append(m.Qualified[text], row.Team)
		}
	}
	return m
}

// PlayerLeagueStats 返回联赛赛季中所有球员的统计，按 100 条分页直到最后一页。结果不缓存。
func (c *Client) PlayerLeagueStats(ctx context.Context, year, league, accumulation string, positions []string) ([]PlayerStatRow, error) {
	leagueID, err := ResolveLeague(league)
	if err != nil {
		return nil, err
	}
	sid, err := c.seasonID(ctx, leagueID, year)
	if err != nil {
		return nil, err
	}
	if accumulation == "" {
		accumulation = "total"
	}
	if !slices.Contains(Accumulations, accumulation) {
		return nil, fmt.Errorf("%w: %q, must be one of %v", ErrInvalidAccumulation, accumulation, Accumulations)
	}
	if len(positions) == 0 {
		positions = AllPositions
	}
	filter, err := c.Positions(ctx, positions)
	if err != nil {
		return nil, err
	}

	fields := strings.Join(LeagueStatFields, "%2C")
	rows := []PlayerStatRow{}
	for offset := 0; ; offset += leagueStatsPageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		u := c.url("/unique-tournament/%s/season/%d/statistics?limit=%d&offset=%d&accumulation=%s&fields=%s&filters=position.in.%s",
			leagueID, sid, leagueStatsPageSize, offset, url.QueryEscape(accumulation), fields, filter)
		var page struct {
			Results []map[string]json.RawMessage `json:"results"`
			Page    int                          `json:"page"`
			Pages   int                          `json:"pages"`
		}
		if err := c.getJSON(ctx, u, &page); err != nil {
			return nil, err
		}
		for _, result := range page.Results {
			rows = append(rows, playerStatRow(result))
		}
		if page.Pages == 0 || page.Page >= page.Pages {
			break
		}
	}
	return rows, nil
}

func playerStatRow(result map[string]json.RawMessage) PlayerStatRow {
	var row PlayerStatRow
	var ref struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(result["player"], &ref); err == nil {
		row.PlayerID, row.Player = ref.ID, ref.Name
	}
	ref.ID, ref.Name = 0, ""
	if err := json.Unmarshal(result["team"], &ref); err == nil {
		row.TeamID, row.Team = ref.ID, ref.Name
	}

	row.Stats = make(map[string]any, len(result))
	for k, v := range result {
		if k == "player" || k == "team" {
			continue
		}
		var value any
		if err := json.Unmarshal(v, &value); err == nil {
			row.Stats[k] = value
		}
	}
	return row
}
