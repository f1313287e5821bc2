package sofascore

import "encoding/json"

// Team 是比赛与积分榜中出现的球队摘要。
type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	ShortName string `json:"shortName,omitempty"`
}

// Status 是比赛状态，Type 取值如 finished、inprogress、notstarted、canceled、postponed。
type Status struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// Score 为单队比分。
type Score struct {
	Current *int `json:"current,omitempty"`
	Period1 *int `json:"period1,omitempty"`
	Period2 *int `json:"period2,omitempty"`
}

// Event 是 /event/{id} 的核心字段；Raw 保留完整原始 JSON，缓存中存储的即是它。
type Event struct {
	ID             int    `json:"id"`
	CustomID       string `json:"customId"`
	Slug           string `json:"slug"`
	StartTimestamp int64  `json:"startTimestamp"`
	HomeTeam       Team   `json:"homeTeam"`
	AwayTeam       Team   `json:"awayTeam"`
	HomeScore      Score  `json:"homeScore"`
	AwayScore      Score  `json:"awayScore"`
	Status         Status `json:"status"`

	Raw json.RawMessage `json:"-"`
}

// Finished 报告比赛是否已结束。
func (e Event) Finished() bool {
	return e.Status.Type == "finished"
}

// MarshalJSON 优先输出原始 JSON，避免丢失未建模字段。
func (e Event) MarshalJSON() ([]byte, error) {
	if len(e.Raw) > 0 {
		return e.Raw, nil
	}
	type plain Event
	return json.Marshal(plain(e))
}

func decodeEvent(raw json.RawMessage) (Event, error) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return Event{}, err
	}
	ev.Raw = raw
	return ev, nil
}

func decodeEvents(raw json.RawMessage) ([]Event, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(items))
	for _, item := range items {
		ev, err := decodeEvent(item)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// StatRow 是展开后的一条球队技术统计。
type StatRow struct {
	Period         string  `json:"period"`
	Group          string  `json:"group"`
	Name           string  `json:"name"`
	Key            string  `json:"key,omitempty"`
	Home           string  `json:"home"`
	Away           string  `json:"away"`
	HomeValue      float64 `json:"homeValue"`
	AwayValue      float64 `json:"awayValue"`
	CompareCode    int     `json:"compareCode"`
	StatisticsType string  `json:"statisticsType,omitempty"`
}

type statPeriod struct {
	Period string `json:"period"`
	Groups []struct {
		GroupName       string    `json:"groupName"`
		StatisticsItems []StatRow `json:"statisticsItems"`
	} `json:"groups"`
}

// OddsRow 是展开后的一条赔率选项。
type OddsRow struct {
	MarketID               int    `json:"marketId"`
	MarketName             string `json:"marketName"`
	ChoiceGroup            string `json:"choiceGroup,omitempty"`
	Name                   string `json:"name"`
	InitialOdds            string `json:"initialOdds,omitempty"`
	InitialFractionalValue string `json:"initialFractionalValue,omitempty"`
	CurrentOdds            string `json:"currentOdds,omitempty"`
	Winning                *bool  `json:"winning,omitempty"`
}

type oddsMarket struct {
	MarketID    int    `json:"marketId"`
	MarketName  string `json:"marketName"`
	ChoiceGroup string `json:"choiceGroup"`
	Choices     []struct {
		Name                   string `json:"name"`
		InitialOdds            string `json:"initialOdds"`
		InitialFractionalValue string `json:"initialFractionalValue"`
		CurrentOdds            string `json:"currentOdds"`
		FractionalValue        string `json:"fractionalValue"`
		Winning                *bool  `json:"winning"`
	} `json:"choices"`
}

// StandingRow 是积分榜的一行。
type StandingRow struct {
	Position      int    `json:"position"`
	TeamID        int    `json:"teamId"`
	Team          string `json:"team"`
	Matches       int    `json:"matches"`
	Wins          int    `json:"wins"`
	Draws         int    `json:"draws"`
	Losses        int    `json:"losses"`
	ScoresFor     int    `json:"scoresFor"`
	ScoresAgainst int    `json:"scoresAgainst"`
	Points        int    `json:"points"`
	Promotion     string `json:"promotion,omitempty"`
}

type standingsTable struct {
	Name string `json:"name"`
	Rows []struct {
		Team          Team `json:"team"`
		Position      int  `json:"position"`
		Matches       int  `json:"matches"`
		Wins          int  `json:"wins"`
		Draws         int  `json:"draws"`
		Losses        int  `json:"losses"`
		ScoresFor     int  `json:"scoresFor"`
		ScoresAgainst int  `json:"scoresAgainst"`
		Points        int  `json:"points"`
		Promotion     *struct {
			Text string `json:"text"`
			ID   int    `json:"id"`
		} `json:"promotion"`
	} `json:"rows"`
}

// Movements 汇总赛季结束后的升降级与欧战资格。
type Movements struct {
	Promoted  []string            `json:"promoted"`
	Relegated []string            `json:"relegated"`
	Qualified map[string][]string `json:"qualified"`
}

// PlayerStatRow 是联赛球员统计的一行；Stats 保留所有数值字段。
type PlayerStatRow struct {
	PlayerID int            `json:"playerId"`
	Player   string         `json:"player"`
	TeamID   int            `json:"teamId"`
	Team     string         `json:"team"`
	Stats    map[string]any `json:"stats"`
}

// MomentumPoint 是比赛走势图的一个点。
type MomentumPoint struct {
	Minute float64 `json:"minute"`
	Value  float64 `json:"value"`
}

// HeatPoint 是热图坐标。
type HeatPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PlayerHeatmap 是单个球员的热图。
type PlayerHeatmap struct {
	ID      int         `json:"id"`
	Heatmap []HeatPoint `json:"heatmap"`
}

// AveragePosition 是球员在比赛中的平均站位。
type AveragePosition struct {
	PlayerID    int     `json:"playerId"`
	Player      string  `json:"player"`
	Position    string  `json:"position,omitempty"`
	Team        string  `json:"team"`
	AverageX    float64 `json:"averageX"`
	AverageY    float64 `json:"averageY"`
	PointsCount int     `json:"pointsCount"`
}

// PlayerMatchRow 是单场比赛的球员统计。
type PlayerMatchRow struct {
	PlayerID   int            `json:"playerId"`
	Player     string         `json:"player"`
	Position   string         `json:"position,omitempty"`
	Substitute bool           `json:"substitute"`
	TeamID     int            `json:"teamId"`
	Team       string         `json:"team"`
	Statistics map[string]any `json:"statistics"`
}
