package sofascore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofahub/sofahub/internal/cache"
	"github.com/sofahub/sofahub/internal/upstream"
)

type stubRoute struct {
	status int
	body   string
}

// stubAPI 模拟 Sofascore API，按路径返回固定响应并统计访问次数。
type stubAPI struct {
	mu     sync.Mutex
	routes map[string]stubRoute
	hits   map[string]int
	srv    *httptest.Server
}

func newStubAPI(t *testing.T) *stubAPI {
	t.Helper()
	api := &stubAPI{routes: map[string]stubRoute{}, hits: map[string]int{}}
	api.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.hits[r.URL.Path]++
		route, ok := api.routes[r.URL.Path]
		api.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(route.status)
		_, _ = w.Write([]byte(route.body))
	}))
	t.Cleanup(api.srv.Close)
	return api
}

func (a *stubAPI) handle(path string, status int, body string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.routes[path] = stubRoute{status: status, body: body}
}

func (a *stubAPI) count(path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hits[path]
}

func newTestClient(t *testing.T, api *stubAPI) (*Client, *cache.Store, *logtest.Hook) {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	store, err := cache.NewStore(t.TempDir(), cache.WithLogger(logger))
	require.NoError(t, err)

	fetcher := upstream.NewClient(upstream.Options{MaxRetries: 1, Logger: logger})
	return New(store, fetcher, WithAPIBase(api.srv.URL), WithLogger(logger)), store, hook
}

const (
	seasonsBody       = `{"seasons":[{"id":52186,"year":"23/24"},{"id":41886,"year":"22/23"}]}`
	finishedEventBody = `{"event":{"id":11,"customId":"Xyz","slug":"home-away","homeTeam":{"id":1,"name":"Home FC","slug":"home-fc"},"awayTeam":{"id":2,"name":"Away FC","slug":"away-fc"},"status":{"code":100,"description":"Ended","type":"finished"}}}`
	liveEventBody     = `{"event":{"id":12,"customId":"Abc","slug":"home-away","homeTeam":{"id":1,"name":"Home FC","slug":"home-fc"},"awayTeam":{"id":2,"name":"Away FC","slug":"away-fc"},"status":{"code":6,"description":"1st half","type":"inprogress"}}}`
	statisticsBody    = `{"statistics":[{"period":"ALL","groups":[{"groupName":"Match overview","statisticsItems":[{"name":"Ball possession","home":"55%","away":"45%","homeValue":55,"awayValue":45,"compareCode":1,"key":"ballPossession"}]}]}]}`
)

func TestValidSeasonsCachesResult(t *testing.T) {
	api := newStubAPI(t)
	api.handle("/unique-tournament/17/seasons/", http.StatusOK, seasonsBody)
	client, store, _ := newTestClient(t, api)
	ctx := context.Background()

	seasons, err := client.ValidSeasons(ctx, "EPL")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"23/24": 52186, "22/23": 41886}, seasons)

	again, err := client.ValidSeasons(ctx, "17")
	require.NoError(t, err)
	assert.Equal(t, seasons, again)
	assert.Equal(t, 1, api.count("/unique-tournament/17/seasons/"))
	assert.FileExists(t, filepath.Join(store.Root(), "valid_seasons", "17.json"))
}

func TestValidSeasonsRejectsUnknownLeague(t *testing.T) {
	client, _, _ := newTestClient(t, newStubAPI(t))
	_, err := client.ValidSeasons(context.Background(), "Sunday League")
	require.ErrorIs(t, err, ErrInvalidLeague)
}

func TestMatchDictsPaginatesAndMarksEnd(t *testing.T) {
	api := newStubAPI(t)
	api.handle("/unique-tournament/17/seasons/", http.StatusOK, seasonsBody)
	api.handle("/unique-tournament/17/season/41886/events/last/0", http.StatusOK, `{"events":[{"id":1},{"id":2}],"hasNextPage":true}`)
	api.handle("/unique-tournament/17/season/41886/events/last/1", http.StatusOK, `{"events":[{"id":3}],"hasNextPage":true}`)
	client, store, _ := newTestClient(t, api)
	ctx := context.Background()

	matches, err := client.MatchDicts(ctx, "22/23", "EPL")
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, 3, matches[2].ID)
	assert.Equal(t, 1, api.count("/unique-tournament/17/season/41886/events/last/2"))

	// 第 2 页以空列表缓存，后续调用完全由缓存返回。
	endMarker := filepath.Join(store.Root(), "match_dicts", "17", "22_23", "2.json")
	require.FileExists(t, endMarker)
	hit, err := store.GetMatchDicts(ctx, "17", "22/23", 2, cache.Forever)
	require.NoError(t, err)
	assert.True(t, hit.Empty())
	require.NotNil(t, hit.Entry)
	age, ok := hit.Entry.MaxAge.Duration()
	require.True(t, ok)
	assert.Equal(t, 24*time.Hour, age)

	again, err := client.MatchDicts(ctx, "22/23", "EPL")
	require.NoError(t, err)
	assert.Len(t, again, 3)
	assert.Equal(t, 1, api.count("/unique-tournament/17/season/41886/events/last/0"))
	assert.Equal(t, 1, api.count("/unique-tournament/17/season/41886/events/last/2"))
}

func TestMatchDictsEmptySeasonIsEmptyList(t *testing.T) {
	api := newStubAPI(t)
	api.handle("/unique-tournament/17/seasons/", http.StatusOK, seasonsBody)
	client, _, _ := newTestClient(t, api)

	matches, err := client.MatchDicts(context.Background(), "23/24", "EPL")
	require.NoError(t, err)
	require.NotNil(t, matches)
	assert.Empty(t, matches)
	assert.Equal(t, 1, api.count("/unique-tournament/17/season/52186/events/last/0"))
}

func TestMatchDictsRejectsInvalidYear(t *testing.T) {
	api := newStubAPI(t)
	api.handle("/unique-tournament/17/seasons/", http.StatusOK, seasonsBody)
	client, _, _ := newTestClient(t, api)

	_, err := client.MatchDicts(context.Background(), "1999", "EPL")
	require.ErrorIs(t, err, ErrInvalidYear)
	assert.Contains(t, err.Error(), "22/23")
}

func TestMatchDictsUnexpectedStatus(t *testing.T) {
	api := newStubAPI(t)
	api.handle("/unique-tournament/17/seasons/", http.StatusOK, seasonsBody)
	api.handle("/unique-tournament/17/season/52186/events/last/0", http.StatusForbidden, `{}`)
	client, _, _ := newTestClient(t, api)

	_, err := client.MatchDicts(context.Background(), "23/24", "17")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
}

func TestMatchDictCachesForever(t *testing.T) {
	api := newStubAPI(t)
	api.handle("/event/11", http.StatusOK, finishedEventBody)
	client, _, _ := newTestClient(t, api)
	ctx := context.Background()

	ev, err := client.MatchDict(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, "Home FC", ev.HomeTeam.Name)
	assert.True(t, ev.Finished())
	assert.JSONEq(t, finishedEventBody[len(`{"event":`):len(finishedEventBody)-1], string(ev.Raw))

	url, err := client.MatchURLFromID(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, "https://www.sofascore.com/home-fc-away-fc/Xyz#id:11", url)

	home, away, err := client.TeamNames(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, "Home FC", home)
	assert.Equal(t, "Away FC", away)

	assert.Equal(t, 1, api.count("/event/11"))
	assert.True(t, client.IsMatchFinished(ctx, 11))
	assert.False(t, client.IsMatchFinished(ctx, 99))
}

func TestMatchDictMissing(t *testing.T) {
	client, _, _ := newTestClient(t, newStubAPI(t))
	_, err := client.MatchDict(context.Background(), 404)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestNoCacheSkipsStore(t *testing.T) {
	api := newStubAPI(t)
	api.handle("/event/11", http.StatusOK, finishedEventBody)
	client, store, _ := newTestClient(t, api)
	ctx := context.Background()

	_, err := client.MatchDict(ctx, 11, NoCache())
	require.NoError(t, err)
	_, err = client.MatchDict(ctx, 11, NoCache())
	require.NoError(t, err)
	assert.Equal(t, 2, api.count("/event/11"))
	assert.NoFileExists(t, filepath.Join(store.Root(), "match_dict", "11.json"))
}

func TestTeamMatchStatsCachesFinishedMatches(t *testing.T) {
	api := newStubAPI(t)
	api.handle("/event/11", http.StatusOK, finishedEventBody)
	api.handle("/event/11/statistics", http.StatusOK, statisticsBody)
	client, _, _ := newTestClient(t, api)
	ctx := context.Background()

	rows, err := client.TeamMatchStats(ctx, 11)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, StatRow{
		Period:      "ALL",
		Group:       "Match overview",
		Name:        "Ball possession",
		Key:         "ballPossession",
		Home:        "55%",
		Away:        "45%",
		HomeValue:   55,
		AwayValue:   45,
		CompareCode: 1,
	}, rows[0])

	_, err = client.TeamMatchStats(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, 1, api.count("/event/11/statistics"))
}

func TestTeamMatchStatsSkipsCacheForLiveMatches(t *testing.T) {
	api := newStubAPI(t)
	api.handle("/event/12", http.StatusOK, liveEventBody)
	api.handle("/event/12/statistics", http.StatusOK, statisticsBody)
	client, store, _ := newTestClient(t, api)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		rows, err := client.TeamMatchStats(ctx, 12)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	}
	assert.Equal(t, 2, api.count("/event/12/statistics"))
	assert.NoFileExists(t, filepath.Join(store.Root(), "match_stats", "12.json"))
}

func TestTeamMatchStatsNotFoundIsCachedEmpty(t *testing.T) {
	api := newStubAPI(t)
	api.handle("/event/11", http.StatusOK, finishedEventBody)
	client, store, _ := newTestClient(t, api)
	ctx := context.Background()

	rows, err := client.TeamMatchStats(ctx, 11)
	require.NoError(t, err)
	assert.Empty(t, rows)

	hit, err := store.GetMatchStats(ctx, "11", cache.Forever)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(hit.Payload))

	rows, err = client.TeamMatchStats(ctx, 11)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 1, api.count("/event/11/statistics"))
}

func TestMatchOddsProcessesMarkets(t *testing.T) {
	api := newStubAPI(t)
	api.handle("/event/11", http.StatusOK, finishedEventBody)
	api.handle("/event/11/odds/1/all", http.StatusOK, `{"markets":[{"marketId":1,"marketName":"Full time","choiceGroup":"","choices":[
		{"name":"1","initialFractionalValue":"6/5","fractionalValue":"11/10","winning":true},
		{"name":"X","initialFractionalValue":"12/5","currentOdds":"5/2","winning":false}]}]}`)
	client, store, _ := newTestClient(t, api)
	ctx := context.Background()

	_, err := client.MatchDict(ctx, 11)
	require.NoError(t, err)

	rows, err := client.MatchOdds(ctx, 11)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "11/10", rows[0].CurrentOdds, "falls back to fractionalValue")
	assert.Equal(t, "5/2", rows[1].CurrentOdds)
	require.NotNil(t, rows[0].Winning)
	assert.True(t, *rows[0].Winning)

	hit, err := store.GetMatchOdds(ctx, "11", cache.Forever)
	require.NoError(t, err)
	require.NotNil(t, hit.Entry)
	assert.True(t, hit.Entry.MaxAge.IsForever(), "finished matches are stored without an embedded age")

	_, err = client.MatchOdds(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, 1, api.count("/event/11/odds/1/all"))
}

func TestMatchOddsFailureStoresEmptyMarkets(t *testing.T) {
	api := newStubAPI(t)
	api.handle("/event/12/odds/1/all", http.StatusForbidden, `{"error":{"code":403}}`)
	client, store, _ := newTestClient(t, api)
	ctx := context.Background()

	rows, err := client.MatchOdds(ctx, 12)
	require.NoError(t, err)
	assert.Empty(t, rows)

	hit, err := store.GetMatchOdds(ctx, "12", cache.Forever)
	require.NoError(t, err)
	assert.JSONEq(t, `{"markets":[]}`, string(hit.Payload))
	require.NotNil(t, hit.Entry)
	assert.False(t, hit.Entry.MaxAge.IsForever())

	_, err = client.MatchOdds(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, 1, api.count("/event/12/odds/1/all"))
}

func TestPlayerIDs(t *testing.T) {
	api := newStubAPI(t)
	api.handle("/event/11/lineups", http.StatusOK, `{"home":{"players":[{"player":{"id":7,"name":"Alpha"}}]},"away":{"players":[{"player":{"id":8,"name":"Beta"}}]}}`)
	client, _, _ := newTestClient(t, api)
	ctx := context.Background()

	ids, err := client.PlayerIDs(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Alpha": 7, "Beta": 8}, ids)

	_, err = client.PlayerIDs(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, 1, api.count("/event/11/lineups"))
}

func TestPlayerIDsUnavailableIsNotCached(t *testing.T) {
	client, store, _ := newTestClient(t, newStubAPI(t))

	ids, err := client.PlayerIDs(context.Background(), 11)
	require.NoError(t, err)
	assert.Empty(t, ids)
	_, statErr := os.Stat(filepath.Join(store.Root(), "player_ids", "11.json"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestPositions(t *testing.T) {
	client, store, _ := newTestClient(t, newStubAPI(t))
	ctx := context.Background()

	got, err := client.Positions(ctx, []string{"Midfielders", "Goalkeepers"})
	require.NoError(t, err)
	assert.Equal(t, "M~G", got)
	assert.FileExists(t, filepath.Join(store.Root(), "positions", "Goalkeepers_Midfielders.json"))

	_, err = client.Positions(ctx, []string{"Strikers"})
	require.ErrorIs(t, err, ErrInvalidPosition)
}

func TestLeagueStandingsAndMovements(t *testing.T) {
	api := newStubAPI(t)
	api.handle("/unique-tournament/17/seasons/", http.StatusOK, seasonsBody)
	api.handle("/unique-tournament/17/season/41886/standings/total", http.StatusOK, `{"standings":[{"name":"Premier League","rows":[
		{"team":{"id":1,"name":"Champions"},"position":1,"matches":38,"wins":28,"draws":5,"losses":5,"scoresFor":94,"scoresAgainst":33,"points":89,"promotion":{"text":"Champions League","id":804}},
		{"team":{"id":2,"name":"Middle"},"position":10,"matches":38,"points":50},
		{"team":{"id":3,"name":"Bottom"},"position":20,"matches":38,"points":20,"promotion":{"text":"Relegation","id":3}}]}]}`)
	client, store, _ := newTestClient(t, api)
	ctx := context.Background()

	rows, err := client.LeagueStandings(ctx, "EPL", "22/23")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Champions", rows[0].Team)
	assert.Equal(t, 89, rows[0].Points)
	assert.Equal(t, "Champions League", rows[0].Promotion)

	m, err := client.LeagueMovements(ctx, "EPL", "22/23")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bottom"}, m.Relegated)
	assert.Empty(t, m.Promoted)
	assert.Equal(t, map[string][]string{"Champions League": {"Champions"}}, m.Qualified)

	assert.FileExists(t, filepath.Join(store.Root(), "league_standings", "17_22_23_standings.json"))
	assert.FileExists(t, filepath.Join(store.Root(), "league_movements", "17_22_23_movements.json"))
	assert.Equal(t, 1, api.count("/unique-tournament/17/season/41886/standings/total"))
}

func TestPlayerLeagueStatsPaginates(t *testing.T) {
	api := newStubAPI(t)
	api.handle("/unique-tournament/17/seasons/", http.StatusOK, seasonsBody)

	var mu sync.Mutex
	var queries []string
	mux := http.NewServeMux()
	mux.HandleFunc("/unique-tournament/17/season/52186/statistics", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.RawQuery)
		mu.Unlock()
		if r.URL.Query().Get("offset") == "0" {
			_, _ = w.Write([]byte(`{"results":[{"player":{"id":1,"name":"A"},"team":{"id":9,"name":"T"},"goals":3}],"page":1,"pages":2}`))
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"player":{"id":2,"name":"B"},"team":{"id":9,"name":"T"},"goals":1}],"page":2,"pages":2}`))
	})
	mux.Handle("/", api.srv.Config.Handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, _, _ := newTestClient(t, api)
	client.apiBase = srv.URL

	rows, err := client.PlayerLeagueStats(context.Background(), "23/24", "EPL", "per90", []string{"Forwards"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].Player)
	assert.Equal(t, 9, rows[0].TeamID)
	assert.Equal(t, float64(3), rows[0].Stats["goals"])

	require.Len(t, queries, 2)
	assert.Contains(t, queries[0], "accumulation=per90")
	assert.Contains(t, queries[0], "filters=position.in.F")
	assert.Contains(t, queries[1], "offset=100")

	_, err = client.PlayerLeagueStats(context.Background(), "23/24", "EPL", "weekly", nil)
	require.ErrorIs(t, err, ErrInvalidAccumulation)
}

func TestScrapeHelpersDegradeToEmpty(t *testing.T) {
	api := newStubAPI(t)
	api.handle("/event/11/graph", http.StatusOK, `{"graphPoints":[{"minute":1,"value":12},{"minute":2,"value":-30}]}`)
	client, _, hook := newTestClient(t, api)
	ctx := context.Background()

	points, err := client.MatchMomentum(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, []MomentumPoint{{Minute: 1, Value: 12}, {Minute: 2, Value: -30}}, points)

	shots, err := client.MatchShots(ctx, 11)
	require.NoError(t, err)
	assert.NotNil(t, shots)
	assert.Empty(t, shots)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestHeatmapsAndAveragePositions(t *testing.T) {
	api := newStubAPI(t)
	api.handle("/event/11", http.StatusOK, finishedEventBody)
	api.handle("/event/11/lineups", http.StatusOK, `{"home":{"players":[{"player":{"id":7,"name":"Alpha","position":"F"},"statistics":{"goals":1}}]},"away":{"players":[{"player":{"id":8,"name":"Beta"},"substitute":true}]}}`)
	api.handle("/event/11/player/7/heatmap", http.StatusOK, `{"heatmap":[{"x":10,"y":20}]}`)
	api.handle("/event/11/average-positions", http.StatusOK, `{"home":[{"player":{"id":7,"name":"Alpha"},"averageX":40.5,"averageY":50,"pointsCount":30}],"away":[]}`)
	client, _, _ := newTestClient(t, api)
	ctx := context.Background()

	heatmaps, err := client.Heatmaps(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, map[string]PlayerHeatmap{
		"Alpha": {ID: 7, Heatmap: []HeatPoint{{X: 10, Y: 20}}},
		"Beta":  {ID: 8, Heatmap: []HeatPoint{}},
	}, heatmaps)

	positions, err := client.PlayerAveragePositions(ctx, 11)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "Home FC", positions[0].Team)
	assert.Equal(t, 40.5, positions[0].AverageX)

	players, err := client.PlayerMatchStats(ctx, 11)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "Home FC", players[0].Team)
	assert.Equal(t, float64(1), players[0].Statistics["goals"])
	assert.True(t, players[1].Substitute)
	assert.Equal(t, 2, players[1].TeamID)
}

func TestMatchIDFromURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int
		wantErr bool
	}{
		{name: "url", in: "https://www.sofascore.com/home-away/Xyz#id:11352376", want: 11352376},
		{name: "plain id", in: "42", want: 42},
		{name: "missing marker", in: "https://www.sofascore.com/home-away/Xyz", wantErr: true},
		{name: "non numeric", in: "https://www.sofascore.com/x#id:abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMatchRef(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidMatchURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
