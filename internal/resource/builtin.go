package resource

import "time"

const day = 24 * time.Hour

func init() {
	for _, meta := range []Metadata{
		{
			Type:        MatchDict,
			Description: "Event metadata for a single match",
			KeyShape:    "match id",
			Policy:      ForeverPolicy(),
		},
		{
			Type:        MatchStats,
			Description: "Team statistics for a match, cached once the match is finished",
			KeyShape:    "match id",
			Policy:      ForeverPolicy(),
		},
		{
			Type:        MatchOdds,
			Description: "Betting markets for a match; forever when finished, otherwise one day",
			KeyShape:    "match id",
			Policy:      TTLPolicy(day),
		},
		{
			Type:        PlayerIDs,
			Description: "Player name to player id mapping from match lineups",
			KeyShape:    "match id",
			Policy:      ForeverPolicy(),
		},
		{
			Type:        Positions,
			Description: "Position filter abbreviations for league statistics",
			KeyShape:    "sorted joined position list",
			Policy:      TTLPolicy(90 * day),
		},
		{
			Type:        ValidSeasons,
			Description: "Season label to season id mapping for a league",
			KeyShape:    "league id",
			Policy:      TTLPolicy(30 * day),
		},
		{
			Type:        MatchDicts,
			Description: "Paginated event listings for a league season; an empty page marks the end",
			Layout:      LayoutPaged,
			KeyShape:    "league/year/page",
			Policy:      TTLPolicy(day),
		},
		{
			Type:        LeagueMovements,
			Description: "Promoted and relegated teams derived from league standings",
			KeyShape:    "{league}_{season}_movements",
			Policy:      TTLPolicy(30 * day),
		},
		{
			Type:        LeagueStandings,
			Description: "League table rows for a season",
			KeyShape:    "{league}_{season}_standings",
			Policy:      TTLPolicy(day),
		},
	} {
		MustRegister(meta)
	}
}
