package services

import (
	"errors"
	"math"
	"testing"

	"word-stats-system/models"
)

func TestRankAmong(t *testing.T) {
	full := []float64{600, 590, 580, 570, 560, 550, 540, 530, 520, 480}

	tests := []struct {
		name     string
		values   []float64 // descending
		newValue float64
		want     int
	}{
		{"empty ledger", nil, 10, 1},
		{"beats every entry", full, 700, 1},
		{"beats only the tenth", full, 500, 10},
		{"beats the bottom three", full, 535, 8},
		{"short ledger, below all entries", []float64{300, 200, 100}, 50, 4},
		{"short ledger, beats all entries", []float64{300, 200, 100}, 400, 1},
		{"short ledger, middle placement", []float64{300, 200, 100}, 250, 2},
		{"tie ranks below the existing entry", []float64{100, 90, 80}, 90, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rankAmong(tt.values, tt.newValue); got != tt.want {
				t.Errorf("rankAmong(%v, %v) = %d, want %d", tt.values, tt.newValue, got, tt.want)
			}
		})
	}
}

func TestValidateCandidates(t *testing.T) {
	word := "QUIXOTIC"

	tests := []struct {
		name       string
		candidates []Candidate
		wantErr    bool
	}{
		{
			name: "valid score and word candidates",
			candidates: []Candidate{
				{MetricType: models.MetricTotalScore, Value: 500},
				{MetricType: models.MetricBestWord, Value: 42, Word: &word},
			},
			wantErr: false,
		},
		{
			name:       "negative value",
			candidates: []Candidate{{MetricType: models.MetricTotalScore, Value: -1}},
			wantErr:    true,
		},
		{
			name:       "NaN value",
			candidates: []Candidate{{MetricType: models.MetricAvgWordScore, Value: math.NaN()}},
			wantErr:    true,
		},
		{
			name:       "infinite value",
			candidates: []Candidate{{MetricType: models.MetricAvgWordScore, Value: math.Inf(1)}},
			wantErr:    true,
		},
		{
			name:       "unknown metric type",
			candidates: []Candidate{{MetricType: "shortest", Value: 1}},
			wantErr:    true,
		},
		{
			name:       "zero value is allowed",
			candidates: []Candidate{{MetricType: models.MetricTotalScore, Value: 0}},
			wantErr:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCandidates(tt.candidates)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateCandidates() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrBadInput) {
				t.Errorf("error should be ErrBadInput, got %v", err)
			}
		})
	}
}

func TestEvictableIDs(t *testing.T) {
	board := func(values ...float64) []ledgerRow {
		rows := make([]ledgerRow, len(values))
		for i, v := range values {
			rows[i] = ledgerRow{ID: uint(i + 1), Value: v}
		}
		return rows
	}

	tests := []struct {
		name string
		rows []ledgerRow
		want []uint
	}{
		{"empty board", nil, nil},
		{"under capacity", board(600, 500, 400), nil},
		{"exactly at capacity", board(600, 590, 580, 570, 560, 550, 540, 530, 520, 510), nil},
		{
			// A new 500 displaces the old tenth-place 480 (id 10).
			name: "displaced tenth is dropped",
			rows: append(board(600, 590, 580, 570, 560, 550, 540, 530, 520, 480), ledgerRow{ID: 11, Value: 500}),
			want: []uint{10},
		},
		{
			name: "lowest values beyond capacity are dropped",
			rows: board(100, 90, 80, 70, 60, 50, 40, 30, 20, 10, 5, 1),
			want: []uint{11, 12},
		},
		{
			// Equal values keep the earlier entry; the newcomer goes.
			name: "boundary tie keeps the older entry",
			rows: append(board(600, 590, 580, 570, 560, 550, 540, 530, 520, 480), ledgerRow{ID: 11, Value: 480}),
			want: []uint{11},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evictableIDs(tt.rows, LedgerCapacity)
			if len(got) != len(tt.want) {
				t.Fatalf("evictableIDs() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("evictableIDs() = %v, want %v", got, tt.want)
				}
			}
			if kept := len(tt.rows) - len(got); kept > LedgerCapacity {
				t.Errorf("%d rows survive eviction, capacity is %d", kept, LedgerCapacity)
			}
		})
	}
}
