package domain

// LeaderboardEntry is one row of the trading leaderboard. Ranks are assigned
// locally from the upstream ordering; the upstream remains the source of
// truth for the underlying figures.
type LeaderboardEntry struct {
	Rank     int     `json:"rank"`
	Address  string  `json:"address"`
	Username string  `json:"username,omitempty"`
	Volume   float64 `json:"volume"`
	Profit   float64 `json:"profit"`
	ROI      float64 `json:"roi"`
}
