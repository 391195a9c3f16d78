package service

import (
	"context"
	"fmt"
	"log"

	"github.com/iammohit64/wrap-up/internal/cache"
	"github.com/iammohit64/wrap-up/internal/model"
	"github.com/iammohit64/wrap-up/internal/repository"
)

const defaultLeaderboardLimit = 10

// LeaderboardService serves points rankings from the Redis cache, falling
// back to Postgres (and rewarming the cache) when the key is missing.
type LeaderboardService struct {
	userRepo    repository.UserRepository
	leaderboard cache.Leaderboard
}

func NewLeaderboardService(userRepo repository.UserRepository, leaderboard cache.Leaderboard) *LeaderboardService {
	return &LeaderboardService{
		userRepo:    userRepo,
		leaderboard: leaderboard,
	}
}

// Top returns the highest points totals, best first.
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultLeaderboardLimit
	}

	if s.leaderboard != nil {
		if entries, ok := s.fromCache(ctx, limit); ok {
			return entries, nil
		}
	}

	entries, err := s.userRepo.Top(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}

	if s.leaderboard != nil {
		warm := make([]cache.Entry, 0, len(entries))
		for _, e := range entries {
			warm = append(warm, cache.Entry{WalletAddress: e.WalletAddress, Points: e.Points})
		}
		if err := s.leaderboard.Warm(ctx, warm); err != nil {
			log.Printf("[LeaderboardService] Cache warm failed: %v", err)
		}
	}
	return entries, nil
}

func (s *LeaderboardService) fromCache(ctx context.Context, limit int) ([]model.LeaderboardEntry, bool) {
	exists, err := s.leaderboard.Exists(ctx)
	if err != nil || !exists {
		return nil, false
	}

	cached, err := s.leaderboard.Top(ctx, limit)
	if err != nil {
		log.Printf("[LeaderboardService] Cache read failed, falling back to Postgres: %v", err)
		return nil, false
	}

	entries := make([]model.LeaderboardEntry, 0, len(cached))
	for i, e := range cached {
		entries = append(entries, model.LeaderboardEntry{
			Rank:          i + 1,
			WalletAddress: e.WalletAddress,
			Points:        e.Points,
		})
	}
	return entries, true
}
