// Package stats computes derived views over a match list: per-champion
// aggregates, recent matches, and the patches and modes present in the data.
// All functions are pure; callers pass the current time explicitly so period
// filters stay deterministic.
package stats

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/riftstats/riftstats/internal/domain"
)

// Period filter values accepted by Filter. Anything else (including the
// "patch_X.Y" family) is matched structurally.
const (
	PeriodAll        = "all"
	PeriodThisWeek   = "this_week"
	PeriodLastWeek   = "last_week"
	PeriodLast30Days = "last_30_days"
	PeriodLast7Days  = "last_7_days"

	patchPrefix = "patch_"
)

// ModeAll disables mode filtering
const ModeAll = "all"

// DefaultRecentCount is the number of matches Recent callers usually want
const DefaultRecentCount = 20

// Filter returns the subset of matches passing the period and mode filters,
// preserving input order. Unknown period values and non-numeric mode values
// are silent no-ops; callers rely on the permissive default.
func Filter(matches []domain.Match, period, mode string, now time.Time) []domain.Match {
	filtered := make([]domain.Match, 0, len(matches))
	filtered = append(filtered, matches...)

	if period != PeriodAll {
		switch {
		case strings.HasPrefix(period, patchPrefix):
			// Literal string prefix: "14.3" also matches "14.30.x".
			patch := strings.TrimPrefix(period, patchPrefix)
			filtered = keep(filtered, func(m domain.Match) bool {
				return strings.HasPrefix(m.GameVersion, patch)
			})
		case period == PeriodThisWeek:
			threshold := mondayStart(now).UnixMilli()
			filtered = keep(filtered, func(m domain.Match) bool {
				return m.GameCreation >= threshold
			})
		case period == PeriodLastWeek:
			thisMonday := mondayStart(now)
			start := thisMonday.AddDate(0, 0, -7).UnixMilli()
			end := thisMonday.UnixMilli()
			filtered = keep(filtered, func(m domain.Match) bool {
				return m.GameCreation >= start && m.GameCreation < end
			})
		case period == PeriodLast30Days:
			threshold := now.Add(-30 * 24 * time.Hour).UnixMilli()
			filtered = keep(filtered, func(m domain.Match) bool {
				return m.GameCreation >= threshold
			})
		case period == PeriodLast7Days:
			threshold := now.Add(-7 * 24 * time.Hour).UnixMilli()
			filtered = keep(filtered, func(m domain.Match) bool {
				return m.GameCreation >= threshold
			})
		}
	}

	if mode != ModeAll {
		if queueID, err := strconv.Atoi(mode); err == nil {
			filtered = keep(filtered, func(m domain.Match) bool {
				return m.QueueID == queueID
			})
		}
	}

	return filtered
}

// Champions aggregates the filtered matches per champion, sorted by game
// count descending. Ties keep first-seen order so output is deterministic
// for identical input order.
func Champions(matches []domain.Match, period, mode string, now time.Time) []domain.ChampionStats {
	filtered := Filter(matches, period, mode, now)
	if len(filtered) == 0 {
		return []domain.ChampionStats{}
	}

	type accumulator struct {
		games, wins              int
		kills, deaths, assists   int
		damageDealt, damageTaken int
	}

	byChampion := make(map[string]*accumulator)
	var order []string

	for _, m := range filtered {
		name := m.MyData.ChampionName
		acc, ok := byChampion[name]
		if !ok {
			acc = &accumulator{}
			byChampion[name] = acc
			order = append(order, name)
		}
		acc.games++
		if m.MyData.Win {
			acc.wins++
		}
		acc.kills += m.MyData.Kills
		acc.deaths += m.MyData.Deaths
		acc.assists += m.MyData.Assists
		acc.damageDealt += m.MyData.DamageDealt
		acc.damageTaken += m.MyData.DamageTaken
	}

	result := make([]domain.ChampionStats, 0, len(order))
	for _, name := range order {
		acc := byChampion[name]

		// Zero deaths substitutes a denominator of 1
		kdaDenom := acc.deaths
		if kdaDenom == 0 {
			kdaDenom = 1
		}

		result = append(result, domain.ChampionStats{
			ChampionName:   name,
			Games:          acc.games,
			Wins:           acc.wins,
			Losses:         acc.games - acc.wins,
			WinRate:        round1(float64(acc.wins) / float64(acc.games) * 100),
			TotalKills:     acc.kills,
			TotalDeaths:    acc.deaths,
			TotalAssists:   acc.assists,
			AvgKDA:         round2(float64(acc.kills+acc.assists) / float64(kdaDenom)),
			AvgDamageDealt: roundInt(float64(acc.damageDealt) / float64(acc.games)),
			AvgDamageTaken: roundInt(float64(acc.damageTaken) / float64(acc.games)),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Games > result[j].Games
	})

	return result
}

// Recent returns the count most recent matches by GameCreation, newest
// first. Operates on the full unfiltered input; equal timestamps keep their
// input order. Count is clamped to [0, len].
func Recent(matches []domain.Match, count int) []domain.Match {
	sorted := make([]domain.Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].GameCreation > sorted[j].GameCreation
	})

	if count < 0 {
		count = 0
	}
	if count > len(sorted) {
		count = len(sorted)
	}
	return sorted[:count]
}

// AvailablePatches returns up to 5 distinct patch versions present in the
// data, sorted descending as strings (so "14.9" sorts before "14.10").
// Versions with fewer than two dot segments are skipped.
func AvailablePatches(matches []domain.Match) []string {
	seen := make(map[string]bool)
	for _, m := range matches {
		if patch := domain.Patch(m.GameVersion); patch != "" {
			seen[patch] = true
		}
	}

	patches := make([]string, 0, len(seen))
	for patch := range seen {
		patches = append(patches, patch)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(patches)))

	if len(patches) > 5 {
		patches = patches[:5]
	}
	return patches
}

// AvailableModes returns the distinct game modes present in the data, sorted
// by queue id ascending, each resolved to a display name. Id 0 marks a match
// whose queue id was absent from the payload and is skipped.
func AvailableModes(matches []domain.Match) []domain.ModeOption {
	seen := make(map[int]bool)
	for _, m := range matches {
		if m.QueueID == 0 {
			continue
		}
		seen[m.QueueID] = true
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	modes := make([]domain.ModeOption, 0, len(ids))
	for _, id := range ids {
		modes = append(modes, domain.ModeOption{
			ID:   strconv.Itoa(id),
			Name: domain.QueueName(id),
		})
	}
	return modes
}

// mondayStart returns 00:00:00 local time of the most recent Monday
func mondayStart(now time.Time) time.Time {
	daysSinceMonday := (int(now.Weekday()) + 6) % 7
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return day.AddDate(0, 0, -daysSinceMonday)
}

func keep(matches []domain.Match, pred func(domain.Match) bool) []domain.Match {
	out := matches[:0:0]
	for _, m := range matches {
		if pred(m) {
			out = append(out, m)
		}
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
