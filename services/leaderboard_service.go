// services/leaderboard_service.go
package services

import (
	"context"
	"fmt"

	"word-stats-system/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Global moving-average leaderboard metrics. Unlike the ledger metrics
// these read the rolling_stats table and are always a global top 10; they
// cannot be combined with user filters.
const (
	MetricCurr10Wma  = "curr10Wma"
	MetricPeak10Wma  = "peak10Wma"
	MetricCurr100Wma = "curr100Wma"
	MetricPeak100Wma = "peak100Wma"
)

var WMAMetrics = []string{MetricCurr10Wma, MetricPeak10Wma, MetricCurr100Wma, MetricPeak100Wma}

// wmaColumns maps each WMA metric to its rolling_stats columns.
var wmaColumns = map[string]struct {
	value string
	date  string
}{
	MetricCurr10Wma:  {value: "curr10_wma"},
	MetricPeak10Wma:  {value: "peak10_wma", date: "peak10_wma_on"},
	MetricCurr100Wma: {value: "curr100_wma"},
	MetricPeak100Wma: {value: "peak100_wma", date: "peak100_wma_on"},
}

func validWMAMetric(metricType string) bool {
	_, ok := wmaColumns[metricType]
	return ok
}

// LeaderboardFilters narrows the aggregated snapshot. Empty slices mean
// no restriction (all modes, all metrics, everyone).
type LeaderboardFilters struct {
	Modes       []string
	MetricTypes []string
	UserIDs     []string
	Usernames   []string
}

// LeaderboardRow is one entry of one board.
type LeaderboardRow struct {
	Username   string          `json:"username"`
	Value      float64         `json:"value"`
	Word       *string         `json:"word,omitempty"`
	BoardState *string         `json:"board_state,omitempty"`
	Date       *datatypes.Date `json:"date,omitempty"`
}

// Leaderboards is the nested snapshot: metric type -> mode -> up to 10
// rows, best first.
type Leaderboards map[string]map[string][]LeaderboardRow

// LeaderboardService is the read-only fan-out over every requested
// (metric, mode) board.
type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// Leaderboards gathers all requested boards concurrently. The sub-queries
// have no ordering dependency; the first failure cancels the rest and
// nothing partial is returned.
func (s *LeaderboardService) Leaderboards(ctx context.Context, filters LeaderboardFilters) (Leaderboards, error) {
	modes, metrics, err := normalizeFilters(filters)
	if err != nil {
		return nil, err
	}

	type job struct {
		metricType string
		mode       string
	}
	jobs := make([]job, 0, len(metrics)*len(modes))
	for _, metricType := range metrics {
		for _, mode := range modes {
			jobs = append(jobs, job{metricType: metricType, mode: mode})
		}
	}

	results := make([][]LeaderboardRow, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			return withReadRetry(func() error {
				rows, err := s.queryBoard(gctx, j.metricType, j.mode, filters)
				if err != nil {
					return err
				}
				results[i] = rows
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	boards := make(Leaderboards, len(metrics))
	for i, j := range jobs {
		if boards[j.metricType] == nil {
			boards[j.metricType] = make(map[string][]LeaderboardRow, len(modes))
		}
		boards[j.metricType][j.mode] = results[i]
	}
	return boards, nil
}

func (s *LeaderboardService) queryBoard(ctx context.Context, metricType, mode string, filters LeaderboardFilters) ([]LeaderboardRow, error) {
	if validWMAMetric(metricType) {
		return s.queryWMABoard(ctx, metricType, mode)
	}
	return s.queryLedgerBoard(ctx, metricType, mode, filters)
}

func (s *LeaderboardService) queryLedgerBoard(ctx context.Context, metricType, mode string, filters LeaderboardFilters) ([]LeaderboardRow, error) {
	q := s.DB.WithContext(ctx).
		Table("best_entries").
		Select(`users.username, best_entries.value, best_entries.word,
			best_entries.board_state, best_entries.achieved_on AS date`).
		Joins("INNER JOIN users ON users.id = best_entries.user_id").
		Where("best_entries.mode = ? AND best_entries.metric_type = ?", mode, metricType).
		Where("best_entries.deleted_at IS NULL")
	if len(filters.UserIDs) > 0 {
		q = q.Where("best_entries.user_id IN ?", filters.UserIDs)
	}
	if len(filters.Usernames) > 0 {
		q = q.Where("users.username IN ?", filters.Usernames)
	}
	var rows []LeaderboardRow
	err := q.Order("best_entries.value DESC, best_entries.id ASC").
		Limit(LedgerCapacity).
		Scan(&rows).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return rows, nil
}

func (s *LeaderboardService) queryWMABoard(ctx context.Context, metricType, mode string) ([]LeaderboardRow, error) {
	cols := wmaColumns[metricType]
	selectList := fmt.Sprintf("users.username, rolling_stats.%s AS value", cols.value)
	if cols.date != "" {
		selectList += fmt.Sprintf(", rolling_stats.%s AS date", cols.date)
	}
	var rows []LeaderboardRow
	err := s.DB.WithContext(ctx).
		Table("rolling_stats").
		Select(selectList).
		Joins("INNER JOIN users ON users.id = rolling_stats.user_id").
		Where("rolling_stats.mode = ?", mode).
		Where(fmt.Sprintf("rolling_stats.%s IS NOT NULL", cols.value)).
		Where("rolling_stats.deleted_at IS NULL").
		Order(fmt.Sprintf("rolling_stats.%s DESC", cols.value)).
		Limit(LedgerCapacity).
		Scan(&rows).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return rows, nil
}

// normalizeFilters fills defaults and rejects invalid combinations: a
// user-scoped request may not ask for WMA boards, which are global only.
func normalizeFilters(filters LeaderboardFilters) (modes []string, metrics []string, err error) {
	modes = filters.Modes
	if len(modes) == 0 {
		modes = models.AllModes
	}
	for _, mode := range modes {
		if !models.ValidMode(mode) {
			return nil, nil, badInputf("unknown game mode %q", mode)
		}
	}

	userScoped := len(filters.UserIDs) > 0 || len(filters.Usernames) > 0
	metrics = filters.MetricTypes
	if len(metrics) == 0 {
		metrics = append(metrics, models.ScoreMetrics...)
		metrics = append(metrics, models.WordMetrics...)
		if !userScoped {
			metrics = append(metrics, WMAMetrics...)
		}
	}
	for _, metricType := range metrics {
		switch {
		case validWMAMetric(metricType):
			if userScoped {
				return nil, nil, badInputf("metric %q cannot be combined with user filters", metricType)
			}
		case models.ValidLedgerMetric(metricType):
		default:
			return nil, nil, badInputf("unknown metric type %q", metricType)
		}
	}
	return modes, metrics, nil
}
