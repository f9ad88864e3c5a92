package service

import (
	"context"

	"github.com/edgechat/backend/internal/core/domain"
	"github.com/edgechat/backend/internal/core/ports"
)

// UsageService exposes per-user usage aggregates.
type UsageService struct {
	repo ports.UsageRepository
}

func NewUsageService(repo ports.UsageRepository) *UsageService {
	return &UsageService{repo: repo}
}

func (s *UsageService) StatsFor(ctx context.Context, userID int64) (*domain.UsageStats, error) {
	return s.repo.Stats(ctx, userID)
}
