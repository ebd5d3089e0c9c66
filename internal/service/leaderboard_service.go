package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/openpredict/marketd/internal/domain"
)

// LeaderboardAPI is the upstream surface the leaderboard service needs from
// the Data-API client.
type LeaderboardAPI interface {
	GetLeaderboard(ctx context.Context, window string, limit int) ([]domain.LeaderboardEntry, error)
}

// LeaderboardService serves trader rankings by volume.
type LeaderboardService struct {
	data  LeaderboardAPI
	cache domain.ResponseCache
}

// NewLeaderboardService creates a LeaderboardService.
func NewLeaderboardService(data LeaderboardAPI, cache domain.ResponseCache) *LeaderboardService {
	return &LeaderboardService{data: data, cache: cache}
}

const (
	defaultLeaderboardLimit = 20
	maxLeaderboardLimit     = 100
)

// leaderboardPayload is the wire shape of the leaderboard endpoint.
type leaderboardPayload struct {
	Success bool                      `json:"success"`
	Traders []domain.LeaderboardEntry `json:"traders"`
}

// Leaderboard returns the marshaled trader ranking for the given timeframe.
// Ranks are assigned locally in the order the upstream returned, starting
// at 1.
func (s *LeaderboardService) Leaderboard(ctx context.Context, tf domain.Timeframe, limit int) ([]byte, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	key := "leaderboard|window=" + string(tf) + "|limit=" + strconv.Itoa(limit)
	if payload, ok := s.cache.Get(ctx, key); ok {
		return payload, nil
	}

	entries, err := s.data.GetLeaderboard(ctx, leaderboardWindow(tf), limit)
	if err != nil {
		return nil, fmt.Errorf("service: leaderboard: %w", err)
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}

	payload, err := json.Marshal(leaderboardPayload{Success: true, Traders: entries})
	if err != nil {
		return nil, fmt.Errorf("service: marshal leaderboard: %w", err)
	}

	s.cache.Put(ctx, key, payload)
	return payload, nil
}

// leaderboardWindow maps a client timeframe onto the upstream window token.
func leaderboardWindow(tf domain.Timeframe) string {
	switch tf {
	case domain.Timeframe1D, domain.Timeframe1W, domain.Timeframe1M:
		return strings.ToLower(string(tf))
	default:
		return "all"
	}
}
