package sofascore

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Leagues 将常用联赛名称映射到 Sofascore unique-tournament ID。
var Leagues = map[string]int{
	"Champions League":           7,
	"Europa League":              679,
	"Europa Conference League":   17015,
	"EPL":                        17,
	"La Liga":                    8,
	"Bundesliga":                 35,
	"Serie A":                    23,
	"Ligue 1":                    34,
	"Eredivisie":                 37,
	"Liga Portugal":              238,
	"EFL Championship":           18,
	"Turkish Super Lig":          52,
	"MLS":                        242,
	"USL Championship":           13363,
	"Argentina Liga Profesional": 155,
	"Brasileirao":                325,
	"World Cup":                  16,
	"Euros":                      1,
	"Womens World Cup":           290,
}

// ResolveLeague 接受数字 ID 或 Leagues 中的名称（大小写不敏感），返回 ID 字符串。
func ResolveLeague(league string) (string, error) {
	trimmed := strings.TrimSpace(league)
	if id, err := strconv.Atoi(trimmed); err == nil && id > 0 {
		return strconv.Itoa(id), nil
	}
	for name, id := range Leagues {
		if strings.EqualFold(name, trimmed) {
			return strconv.Itoa(id), nil
		}
	}
	return "", fmt.Errorf("%w: %q, known leagues: %s", ErrInvalidLeague, league, strings.Join(LeagueNames(), ", "))
}

// LeagueNames 返回排序后的已知联赛名称。
func LeagueNames() []string {
	names := make([]string, 0, len(Leagues))
	for name := range Leagues {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
