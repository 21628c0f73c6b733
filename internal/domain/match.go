package domain

import "strings"

// Match represents one completed game, normalized from the Riot API.
// Field names follow the JSON collection format written by export.
type Match struct {
	MatchID      string            `json:"matchId"`
	GameCreation int64             `json:"gameCreation"` // unix millis
	QueueID      int               `json:"queueId"`
	GameDuration int               `json:"gameDuration"` // seconds
	GameVersion  string            `json:"gameVersion"`
	MyData       PlayerData        `json:"myData"`
	AllPlayers   []ParticipantData `json:"allPlayers"`
}

// PlayerData holds the tracked player's performance in a single match
type PlayerData struct {
	ChampionName string      `json:"championName"`
	Kills        int         `json:"kills"`
	Deaths       int         `json:"deaths"`
	Assists      int         `json:"assists"`
	DamageDealt  int         `json:"totalDamageDealtToChampions"`
	DamageTaken  int         `json:"totalDamageTaken"`
	Win          bool        `json:"win"`
	Items        []ItemEvent `json:"items"`
	Runes        RunePage    `json:"runes"`
}

// ParticipantData holds one participant's stats (all ten players per match)
type ParticipantData struct {
	SummonerName string   `json:"summonerName"`
	TeamID       int      `json:"teamId"`
	ChampionName string   `json:"championName"`
	Kills        int      `json:"kills"`
	Deaths       int      `json:"deaths"`
	Assists      int      `json:"assists"`
	DamageDealt  int      `json:"totalDamageDealtToChampions"`
	DamageTaken  int      `json:"totalDamageTaken"`
	Tier         string   `json:"tier,omitempty"`
	Rank         string   `json:"rank,omitempty"`
	Items        []int    `json:"items"`
	Runes        RunePage `json:"runes"`
}

// ItemEvent is a final-build item. Timestamp is 0 because the match
// endpoint carries no timeline data.
type ItemEvent struct {
	ItemID    int   `json:"itemId"`
	Timestamp int64 `json:"timestamp"`
}

// RunePage holds rune selections: primary path (keystone + 3), secondary
// path (2), and the three stat shards (defense, flex, offense).
type RunePage struct {
	Primary   []int `json:"primary"`
	Secondary []int `json:"secondary"`
	Stats     []int `json:"stats"`
}

// Summoner identifies the tracked player
type Summoner struct {
	Name   string `json:"name"`
	PUUID  string `json:"puuid"`
	Region string `json:"region"`
}

// MatchCollection is the interchange document for import/export, matching
// the data/matches.json layout
type MatchCollection struct {
	LastUpdate string   `json:"last_update,omitempty"`
	Summoner   Summoner `json:"summoner"`
	Matches    []Match  `json:"matches"`
}

// Patch returns the first two dot-separated segments of a game version
// ("14.3.123.4567" -> "14.3"), or "" if there are fewer than two
func Patch(gameVersion string) string {
	parts := strings.SplitN(gameVersion, ".", 3)
	if len(parts) < 2 {
		return ""
	}
	return parts[0] + "." + parts[1]
}
