package domain

// ChampionStats holds aggregated stats for one champion under a filter.
// Derived on every query, never persisted.
type ChampionStats struct {
	ChampionName   string  `json:"championName"`
	Games          int     `json:"games"`
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	WinRate        float64 `json:"winRate"` // percent, 1 decimal
	TotalKills     int     `json:"totalKills"`
	TotalDeaths    int     `json:"totalDeaths"`
	TotalAssists   int     `json:"totalAssists"`
	AvgKDA         float64 `json:"avgKDA"` // 2 decimals
	AvgDamageDealt int     `json:"avgDamageDealt"`
	AvgDamageTaken int     `json:"avgDamageTaken"`
}

// ModeOption is a game mode present in the data, resolved to a display name
type ModeOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
