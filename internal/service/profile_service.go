package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openpredict/marketd/internal/aggregate"
	"github.com/openpredict/marketd/internal/domain"
)

// ProfileService serves aggregated user portfolio profiles.
type ProfileService struct {
	profiles *aggregate.ProfileAggregator
	cache    domain.ResponseCache
}

// NewProfileService creates a ProfileService.
func NewProfileService(profiles *aggregate.ProfileAggregator, cache domain.ResponseCache) *ProfileService {
	return &ProfileService{profiles: profiles, cache: cache}
}

// profilePayload is the wire shape of the profile endpoint.
type profilePayload struct {
	Success bool               `json:"success"`
	Profile domain.UserProfile `json:"profile"`
}

// Profile returns the marshaled profile for a wallet address. The address is
// validated before any cache or upstream access, so a bad address never
// occupies a cache slot, and the cache key uses the checksummed form so
// case-variant spellings of one wallet share an entry.
func (s *ProfileService) Profile(ctx context.Context, address string, tf domain.Timeframe) ([]byte, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("service: profile for %q: %w", address, domain.ErrInvalidAddress)
	}
	canonical := common.HexToAddress(address).Hex()

	key := "profile|address=" + canonical + "|window=" + string(tf)
	if payload, ok := s.cache.Get(ctx, key); ok {
		return payload, nil
	}

	profile, err := s.profiles.Fetch(ctx, canonical, tf)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(profilePayload{Success: true, Profile: profile})
	if err != nil {
		return nil, fmt.Errorf("service: marshal profile: %w", err)
	}

	s.cache.Put(ctx, key, payload)
	return payload, nil
}
