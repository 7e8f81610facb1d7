// models/best_entry.go
package models

import (
	"gorm.io/datatypes"
)

// Metric types for the bounded top-10 ledgers. Score metrics rank whole
// plays; word metrics rank single words found during a play.
const (
	MetricTotalScore   = "ttl" // final score of the play
	MetricAvgWordScore = "avg" // score / words found (min 15 words)
	MetricBestWord     = "bst" // highest-scoring word
	MetricLongestWord  = "lng" // longest word
	MetricWildestWord  = "crz" // most unusual word
)

var (
	ScoreMetrics = []string{MetricTotalScore, MetricAvgWordScore}
	WordMetrics  = []string{MetricBestWord, MetricLongestWord, MetricWildestWord}
)

func ValidWordMetric(metricType string) bool {
	for _, m := range WordMetrics {
		if m == metricType {
			return true
		}
	}
	return false
}

func ValidLedgerMetric(metricType string) bool {
	if ValidWordMetric(metricType) {
		return true
	}
	for _, m := range ScoreMetrics {
		if m == metricType {
			return true
		}
	}
	return false
}

// BestEntry is one row of a (user, mode, metric type) top-10 ledger.
// Partitions are independent: the same word charting as both best and
// longest produces two rows. At most 10 rows exist per partition at rest;
// ties rank by insertion order (lower ID first).
type BestEntry struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	UserID     string  `gorm:"index:idx_best_partition,priority:1;not null" json:"user_id"`
	Mode       string  `gorm:"index:idx_best_partition,priority:2;not null" json:"mode"`
	MetricType string  `gorm:"index:idx_best_partition,priority:3;not null" json:"metric_type"`
	Value      float64 `gorm:"not null" json:"value"`

	// Word payload, set for word metrics only
	Word       *string `json:"word,omitempty"`
	BoardState *string `json:"board_state,omitempty"`

	PlayRecordID *string        `gorm:"type:uuid" json:"play_record_id,omitempty"`
	AchievedOn   datatypes.Date `json:"achieved_on"`

	Timestamps
}
