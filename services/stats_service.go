// services/stats_service.go
package services

import (
	"context"

	"word-stats-system/models"

	"gorm.io/gorm"
)

// StatsService serves per-user reads of rolling stats and ledger rows.
type StatsService struct {
	DB *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{DB: db}
}

// RollingStats returns the user's rolling stats, optionally for one mode.
// A user who never played has none; that is an empty list, not an error.
func (s *StatsService) RollingStats(ctx context.Context, userID, mode string) ([]models.RollingStat, error) {
	if mode != "" && !models.ValidMode(mode) {
		return nil, badInputf("unknown game mode %q", mode)
	}
	var stats []models.RollingStat
	err := withReadRetry(func() error {
		q := s.DB.WithContext(ctx).Where("user_id = ?", userID)
		if mode != "" {
			q = q.Where("mode = ?", mode)
		}
		return storeErr(q.Order("mode ASC").Find(&stats).Error)
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// BestEntries lists a user's ledger rows, best first, optionally narrowed
// to one mode and/or metric type.
func (s *StatsService) BestEntries(ctx context.Context, userID, mode, metricType string, limit, offset int) ([]models.BestEntry, error) {
	if mode != "" && !models.ValidMode(mode) {
		return nil, badInputf("unknown game mode %q", mode)
	}
	if metricType != "" && !models.ValidLedgerMetric(metricType) {
		return nil, badInputf("unknown metric type %q", metricType)
	}
	var entries []models.BestEntry
	err := withReadRetry(func() error {
		q := s.DB.WithContext(ctx).Where("user_id = ?", userID)
		if mode != "" {
			q = q.Where("mode = ?", mode)
		}
		if metricType != "" {
			q = q.Where("metric_type = ?", metricType)
		}
		if limit > 0 {
			q = q.Limit(limit)
		}
		if offset > 0 {
			q = q.Offset(offset)
		}
		return storeErr(q.Order("value DESC, id ASC").Find(&entries).Error)
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// BestScores and BestWords narrow BestEntries to the two metric families.
func (s *StatsService) BestScores(ctx context.Context, userID, mode string, limit, offset int) ([]models.BestEntry, error) {
	return s.bestByFamily(ctx, userID, mode, models.ScoreMetrics, limit, offset)
}

func (s *StatsService) BestWords(ctx context.Context, userID, mode string, limit, offset int) ([]models.BestEntry, error) {
	return s.bestByFamily(ctx, userID, mode, models.WordMetrics, limit, offset)
}

func (s *StatsService) bestByFamily(ctx context.Context, userID, mode string, family []string, limit, offset int) ([]models.BestEntry, error) {
	if mode != "" && !models.ValidMode(mode) {
		return nil, badInputf("unknown game mode %q", mode)
	}
	var entries []models.BestEntry
	err := withReadRetry(func() error {
		q := s.DB.WithContext(ctx).
			Where("user_id = ? AND metric_type IN ?", userID, family)
		if mode != "" {
			q = q.Where("mode = ?", mode)
		}
		if limit > 0 {
			q = q.Limit(limit)
		}
		if offset > 0 {
			q = q.Offset(offset)
		}
		return storeErr(q.Order("metric_type ASC, value DESC, id ASC").Find(&entries).Error)
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
