// services/ledger.go
package services

import (
	"math"
	"sort"

	"word-stats-system/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LedgerCapacity is the number of rows kept per (user, mode, metric type)
// partition.
const LedgerCapacity = 10

// LedgerService maintains the bounded top-10 tables. Each partition is
// independent; eviction in one metric type never considers another.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// WithTx returns a ledger bound to a running transaction so its writes
// commit or abort with the caller's.
func (s *LedgerService) WithTx(tx *gorm.DB) *LedgerService {
	return &LedgerService{DB: tx}
}

// Candidate is a value proposed for insertion into one ledger partition.
type Candidate struct {
	MetricType   string
	Value        float64
	Word         *string
	BoardState   *string
	PlayRecordID *string
	AchievedOn   datatypes.Date
}

// validateCandidates rejects values a ledger can never rank: negative,
// NaN or infinite.
func validateCandidates(candidates []Candidate) error {
	for _, c := range candidates {
		if !models.ValidLedgerMetric(c.MetricType) {
			return badInputf("unknown metric type %q", c.MetricType)
		}
		if math.IsNaN(c.Value) || math.IsInf(c.Value, 0) {
			return badInputf("non-finite value for metric %q", c.MetricType)
		}
		if c.Value < 0 {
			return badInputf("negative value for metric %q", c.MetricType)
		}
	}
	return nil
}

// TenthBest returns the value of the 10th-ranked entry of a partition, or
// nil when the partition holds fewer than 10 rows. Callers use it as a
// cheap admission threshold before attempting an insert.
func (s *LedgerService) TenthBest(userID, mode, metricType string) (*float64, error) {
	var values []float64
	err := s.DB.Model(&models.BestEntry{}).
		Where("user_id = ? AND mode = ? AND metric_type = ?", userID, mode, metricType).
		Order("value DESC, id ASC").
		Offset(LedgerCapacity - 1).
		Limit(1).
		Pluck("value", &values).Error
	if err != nil {
		return nil, storeErr(err)
	}
	if len(values) == 0 {
		return nil, nil
	}
	return &values[0], nil
}

// InsertCandidates appends the candidate rows and then trims every touched
// partition back to capacity, keeping the 10 highest values (ties keep the
// earlier row).
func (s *LedgerService) InsertCandidates(userID, mode string, candidates []Candidate) error {
	if len(candidates) == 0 {
		return nil
	}
	if !models.ValidMode(mode) {
		return badInputf("unknown game mode %q", mode)
	}
	if err := validateCandidates(candidates); err != nil {
		return err
	}

	rows := make([]models.BestEntry, 0, len(candidates))
	touched := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		rows = append(rows, models.BestEntry{
			UserID:       userID,
			Mode:         mode,
			MetricType:   c.MetricType,
			Value:        c.Value,
			Word:         c.Word,
			BoardState:   c.BoardState,
			PlayRecordID: c.PlayRecordID,
			AchievedOn:   c.AchievedOn,
		})
		touched[c.MetricType] = struct{}{}
	}
	if err := s.DB.Create(&rows).Error; err != nil {
		return storeErr(err)
	}
	for metricType := range touched {
		if err := s.evict(userID, mode, metricType); err != nil {
			return err
		}
	}
	return nil
}

// ledgerRow is the id/value projection eviction ranks on.
type ledgerRow struct {
	ID    uint
	Value float64
}

// evictableIDs ranks a partition by value descending, earlier-inserted
// rows winning ties, and returns the ids beyond capacity.
func evictableIDs(rows []ledgerRow, capacity int) []uint {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Value != rows[j].Value {
			return rows[i].Value > rows[j].Value
		}
		return rows[i].ID < rows[j].ID
	})
	if len(rows) <= capacity {
		return nil
	}
	ids := make([]uint, 0, len(rows)-capacity)
	for _, r := range rows[capacity:] {
		ids = append(ids, r.ID)
	}
	return ids
}

// evict deletes every row of a partition ranked below 10th.
func (s *LedgerService) evict(userID, mode, metricType string) error {
	var rows []ledgerRow
	err := s.DB.Model(&models.BestEntry{}).
		Select("id", "value").
		Where("user_id = ? AND mode = ? AND metric_type = ?", userID, mode, metricType).
		Scan(&rows).Error
	if err != nil {
		return storeErr(err)
	}
	ids := evictableIDs(rows, LedgerCapacity)
	if len(ids) == 0 {
		return nil
	}
	return storeErr(s.DB.Unscoped().Delete(&models.BestEntry{}, ids).Error)
}

// Rank computes the 1-based placement a new value would take in a
// partition. A value above every existing entry ranks 1; in a partition
// with fewer than 10 rows a value below all of them ranks count+1.
func (s *LedgerService) Rank(userID, mode, metricType string, newValue float64) (int, error) {
	var values []float64
	err := s.DB.Model(&models.BestEntry{}).
		Where("user_id = ? AND mode = ? AND metric_type = ?", userID, mode, metricType).
		Order("value DESC, id ASC").
		Limit(LedgerCapacity).
		Pluck("value", &values).Error
	if err != nil {
		return 0, storeErr(err)
	}
	return rankAmong(values, newValue), nil
}

// rankAmong scans the descending value list from the bottom until the new
// value no longer beats the entry above it. A tie does not displace the
// existing entry.
func rankAmong(values []float64, newValue float64) int {
	i := len(values) - 1
	for i >= 0 && newValue > values[i] {
		i--
	}
	return i + 2
}

// DeleteEntry removes a ledger row by id. Deleting an absent id is a
// no-op.
func (s *LedgerService) DeleteEntry(id uint) error {
	return storeErr(s.DB.Unscoped().Delete(&models.BestEntry{}, id).Error)
}
