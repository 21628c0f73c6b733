package riot

import (
	"fmt"

	"github.com/riftstats/riftstats/internal/domain"
)

// MatchDTO is the raw match-v5 response, limited to the fields we consume
type MatchDTO struct {
	Metadata struct {
		MatchID string `json:"matchId"`
	} `json:"metadata"`
	Info struct {
		GameCreation int64            `json:"gameCreation"`
		QueueID      int              `json:"queueId"`
		GameDuration int              `json:"gameDuration"`
		GameVersion  string           `json:"gameVersion"`
		Participants []ParticipantDTO `json:"participants"`
	} `json:"info"`
}

// ParticipantDTO is one participant entry in a raw match
type ParticipantDTO struct {
	PUUID                       string   `json:"puuid"`
	SummonerName                string   `json:"summonerName"`
	TeamID                      int      `json:"teamId"`
	ChampionName                string   `json:"championName"`
	Kills                       int      `json:"kills"`
	Deaths                      int      `json:"deaths"`
	Assists                     int      `json:"assists"`
	TotalDamageDealtToChampions int      `json:"totalDamageDealtToChampions"`
	TotalDamageTaken            int      `json:"totalDamageTaken"`
	Win                         bool     `json:"win"`
	Tier                        string   `json:"tier"`
	Rank                        string   `json:"rank"`
	Item0                       int      `json:"item0"`
	Item1                       int      `json:"item1"`
	Item2                       int      `json:"item2"`
	Item3                       int      `json:"item3"`
	Item4                       int      `json:"item4"`
	Item5                       int      `json:"item5"`
	Item6                       int      `json:"item6"`
	Perks                       PerksDTO `json:"perks"`
}

// PerksDTO holds the rune selections of a participant
type PerksDTO struct {
	StatPerks struct {
		Defense int `json:"defense"`
		Flex    int `json:"flex"`
		Offense int `json:"offense"`
	} `json:"statPerks"`
	Styles []struct {
		Selections []struct {
			Perk int `json:"perk"`
		} `json:"selections"`
	} `json:"styles"`
}

// Normalize reshapes a raw match payload into the internal match record,
// keyed on the tracked player's puuid
func Normalize(raw *MatchDTO, puuid string) (domain.Match, error) {
	var mine *ParticipantDTO
	for i := range raw.Info.Participants {
		if raw.Info.Participants[i].PUUID == puuid {
			mine = &raw.Info.Participants[i]
			break
		}
	}
	if mine == nil {
		return domain.Match{}, fmt.Errorf("puuid %s not found in match %s participants", puuid, raw.Metadata.MatchID)
	}

	// Final build only; the match endpoint carries no item timeline
	var items []domain.ItemEvent
	for _, itemID := range finalItems(mine) {
		items = append(items, domain.ItemEvent{ItemID: itemID})
	}

	allPlayers := make([]domain.ParticipantData, 0, len(raw.Info.Participants))
	for i := range raw.Info.Participants {
		p := &raw.Info.Participants[i]
		allPlayers = append(allPlayers, domain.ParticipantData{
			SummonerName: p.SummonerName,
			TeamID:       p.TeamID,
			ChampionName: p.ChampionName,
			Kills:        p.Kills,
			Deaths:       p.Deaths,
			Assists:      p.Assists,
			DamageDealt:  p.TotalDamageDealtToChampions,
			DamageTaken:  p.TotalDamageTaken,
			Tier:         p.Tier,
			Rank:         p.Rank,
			Items:        finalItems(p),
			Runes:        runePage(p.Perks),
		})
	}

	return domain.Match{
		MatchID:      raw.Metadata.MatchID,
		GameCreation: raw.Info.GameCreation,
		QueueID:      raw.Info.QueueID,
		GameDuration: raw.Info.GameDuration,
		GameVersion:  raw.Info.GameVersion,
		MyData: domain.PlayerData{
			ChampionName: mine.ChampionName,
			Kills:        mine.Kills,
			Deaths:       mine.Deaths,
			Assists:      mine.Assists,
			DamageDealt:  mine.TotalDamageDealtToChampions,
			DamageTaken:  mine.TotalDamageTaken,
			Win:          mine.Win,
			Items:        items,
			Runes:        runePage(mine.Perks),
		},
		AllPlayers: allPlayers,
	}, nil
}

// finalItems returns the non-empty item slots item0..item6
func finalItems(p *ParticipantDTO) []int {
	var items []int
	for _, id := range []int{p.Item0, p.Item1, p.Item2, p.Item3, p.Item4, p.Item5, p.Item6} {
		if id > 0 {
			items = append(items, id)
		}
	}
	return items
}

// runePage extracts the primary path (padded to 4), secondary path (padded
// to 2), and stat shards in defense/flex/offense order
func runePage(perks PerksDTO) domain.RunePage {
	page := domain.RunePage{
		Primary:   make([]int, 4),
		Secondary: make([]int, 2),
		Stats: []int{
			perks.StatPerks.Defense,
			perks.StatPerks.Flex,
			perks.StatPerks.Offense,
		},
	}
	if len(perks.Styles) >= 1 {
		for i, sel := range perks.Styles[0].Selections {
			if i >= 4 {
				break
			}
			page.Primary[i] = sel.Perk
		}
	}
	if len(perks.Styles) >= 2 {
		for i, sel := range perks.Styles[1].Selections {
			if i >= 2 {
				break
			}
			page.Secondary[i] = sel.Perk
		}
	}
	return page
}
