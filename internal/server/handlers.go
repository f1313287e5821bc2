package server

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/sofahub/sofahub/internal/sofascore"
)

// API 是 HTTP 层依赖的读取能力，由 *sofascore.Client 实现。
type API interface {
	MatchDict(ctx context.Context, matchID int, opts ...sofascore.CallOption) (sofascore.Event, error)
	IsMatchFinished(ctx context.Context, matchID int) bool
	MatchOdds(ctx context.Context, matchID int, opts ...sofascore.CallOption) ([]sofascore.OddsRow, error)
	TeamMatchStats(ctx context.Context, matchID int, opts ...sofascore.CallOption) ([]sofascore.StatRow, error)
	PlayerIDs(ctx context.Context, matchID int, opts ...sofascore.CallOption) (map[string]int, error)
	ValidSeasons(ctx context.Context, league string, opts ...sofascore.CallOption) (map[string]int, error)
	MatchDicts(ctx context.Context, year, league string, opts ...sofascore.CallOption) ([]sofascore.Event, error)
	LeagueStandings(ctx context.Context, league, year string, opts ...sofascore.CallOption) ([]sofascore.StandingRow, error)
}

var _ API = (*sofascore.Client)(nil)

type handlers struct {
	api    API
	logger logrus.FieldLogger
}

func registerAPIRoutes(app *fiber.App, h *handlers) {
	api := app.Group("/api")

	api.Get("/matches/:id", h.match)
	api.Get("/matches/:id/finished", h.finished)
	api.Get("/matches/:id/odds", h.odds)
	api.Get("/matches/:id/stats", h.stats)
	api.Get("/matches/:id/players", h.players)

	api.Get("/leagues/:league/seasons", h.seasons)
	api.Get("/leagues/:league/seasons/:year/matches", h.matches)
	api.Get("/leagues/:league/seasons/:year/standings", h.standings)
}

func (h *handlers) match(c fiber.Ctx) error {
	id, err := matchID(c)
	if err != nil {
		return err
	}
	ev, err := h.api.MatchDict(c.Context(), id, callOptions(c)...)
	if err != nil {
		return err
	}
	return c.JSON(ev)
}

// finished 只读缓存，不会访问上游。
func (h *handlers) finished(c fiber.Ctx) error {
	id, err := matchID(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"id": id, "finished": h.api.IsMatchFinished(c.Context(), id)})
}

func (h *handlers) odds(c fiber.Ctx) error {
	id, err := matchID(c)
	if err != nil {
		return err
	}
	rows, err := h.api.MatchOdds(c.Context(), id, callOptions(c)...)
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

func (h *handlers) stats(c fiber.Ctx) error {
	id, err := matchID(c)
	if err != nil {
		return err
	}
	rows, err := h.api.TeamMatchStats(c.Context(), id, callOptions(c)...)
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

func (h *handlers) players(c fiber.Ctx) error {
	id, err := matchID(c)
	if err != nil {
		return err
	}
	ids, err := h.api.PlayerIDs(c.Context(), id, callOptions(c)...)
	if err != nil {
		return err
	}
	return c.JSON(ids)
}

func (h *handlers) seasons(c fiber.Ctx) error {
	league, err := pathParam(c, "league")
	if err != nil {
		return err
	}
	seasons, err := h.api.ValidSeasons(c.Context(), league, callOptions(c)...)
	if err != nil {
		return err
	}
	return c.JSON(seasons)
}

func (h *handlers) matches(c fiber.Ctx) error {
	league, year, err := leagueAndYear(c)
	if err != nil {
		return err
	}
	events, err := h.api.MatchDicts(c.Context(), year, league, callOptions(c)...)
	if err != nil {
		return err
	}
	if events == nil {
		events = []sofascore.Event{}
	}
	return c.JSON(events)
}

func (h *handlers) standings(c fiber.Ctx) error {
	league, year, err := leagueAndYear(c)
	if err != nil {
		return err
	}
	rows, err := h.api.LeagueStandings(c.Context(), league, year, callOptions(c)...)
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

func matchID(c fiber.Ctx) (int, error) {
	raw := c.Params("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: match id %q", errInvalidInput, raw)
	}
	return id, nil
}

// pathParam 返回解码后的路径参数；赛季中的 `/` 需以 %2F 传入。
func pathParam(c fiber.Ctx, name string) (string, error) {
	value, err := url.PathUnescape(c.Params(name))
	if err != nil || value == "" {
		return "", fmt.Errorf("%w: %s %q", errInvalidInput, name, c.Params(name))
	}
	return value, nil
}

func leagueAndYear(c fiber.Ctx) (string, string, error) {
	league, err := pathParam(c, "league")
	if err != nil {
		return "", "", err
	}
	year, err := pathParam(c, "year")
	if err != nil {
		return "", "", err
	}
	return league, year, nil
}

// callOptions 支持 ?cache=false 跳过缓存。
func callOptions(c fiber.Ctx) []sofascore.CallOption {
	if c.Query("cache") == "false" {
		return []sofascore.CallOption{sofascore.NoCache()}
	}
	return nil
}
