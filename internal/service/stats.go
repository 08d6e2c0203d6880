package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/domain/models"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/storage"
)

type StatsService interface {
	GetStats(ctx context.Context) (*models.OrderStats, error)
}

type statsService struct {
	log       *slog.Logger
	statsRepo storage.StatsStorage
}

func NewStatsService(log *slog.Logger, statsRepo storage.StatsStorage) StatsService {
	return &statsService{log: log, statsRepo: statsRepo}
}

func (s *statsService) GetStats(ctx context.Context) (*models.OrderStats, error) {
	const op = "service.StatsService.GetStats"

	stats, err := s.statsRepo.GetOrderStats(ctx)
	if err != nil {
		s.log.Error("failed to get stats", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}
