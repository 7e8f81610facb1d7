package services

import (
	"errors"
	"testing"
	"time"

	"word-stats-system/models"

	"gorm.io/datatypes"
)

func TestAverageWordScore(t *testing.T) {
	tests := []struct {
		name      string
		score     int
		wordCount int
		want      float64
		wantNil   bool
	}{
		{"exact division", 100, 4, 25, false},
		{"rounds to two decimals", 100, 3, 33.33, false},
		{"rounds up", 200, 3, 66.67, false},
		{"zero words skips the stat", 500, 0, 0, true},
		{"zero score", 0, 20, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := averageWordScore(tt.score, tt.wordCount)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("averageWordScore(%d, %d) = %v, want nil", tt.score, tt.wordCount, *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("averageWordScore(%d, %d) = nil, want %v", tt.score, tt.wordCount, tt.want)
			}
			if *got != tt.want {
				t.Errorf("averageWordScore(%d, %d) = %v, want %v", tt.score, tt.wordCount, *got, tt.want)
			}
		})
	}
}

func TestValidateFinalResult(t *testing.T) {
	tests := []struct {
		name    string
		result  FinalResult
		wantErr bool
	}{
		{
			name:   "valid result with words",
			result: FinalResult{Score: 320, WordCount: 18, Words: []WordResult{{MetricType: "bst", Word: "JAZZED", Score: 45, BoardState: "a1b2"}, {MetricType: "lng", Word: "STARTLING", Score: 30, BoardState: "c3d4"}}},
		},
		{
			name:   "zero score and no words",
			result: FinalResult{Score: 0, WordCount: 0},
		},
		{
			name:    "negative score",
			result:  FinalResult{Score: -1, WordCount: 5},
			wantErr: true,
		},
		{
			name:    "negative word count",
			result:  FinalResult{Score: 10, WordCount: -2},
			wantErr: true,
		},
		{
			name:    "unknown word metric",
			result:  FinalResult{Score: 10, WordCount: 1, Words: []WordResult{{MetricType: "shiniest", Word: "GLOW", Score: 9}}},
			wantErr: true,
		},
		{
			name:    "duplicate word metric",
			result:  FinalResult{Score: 10, WordCount: 2, Words: []WordResult{{MetricType: "bst", Word: "AA", Score: 2}, {MetricType: "bst", Word: "BB", Score: 4}}},
			wantErr: true,
		},
		{
			name:    "empty word",
			result:  FinalResult{Score: 10, WordCount: 1, Words: []WordResult{{MetricType: "crz", Word: "", Score: 5}}},
			wantErr: true,
		},
		{
			name:    "negative word score",
			result:  FinalResult{Score: 10, WordCount: 1, Words: []WordResult{{MetricType: "lng", Word: "LONGWORD", Score: -3}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFinalResult(tt.result)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateFinalResult() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrBadInput) {
				t.Errorf("error should be ErrBadInput, got %v", err)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"zero short window", func(c *Config) { c.ShortWindow = 0 }, true},
		{"negative long window", func(c *Config) { c.LongWindow = -1 }, true},
		{"short window not smaller than long", func(c *Config) { c.ShortWindow = 100 }, true},
		{"recent limit below long window", func(c *Config) { c.RecentLimit = 99 }, true},
		{"zero min words", func(c *Config) { c.MinWordsForAvg = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWordFor(t *testing.T) {
	words := []WordResult{
		{MetricType: "bst", Word: "JAZZED", Score: 45},
		{MetricType: "crz", Word: "SYZYGY", Score: 40},
	}

	if got := wordFor(words, "bst"); got == nil || got.Word != "JAZZED" {
		t.Errorf("wordFor(bst) = %+v, want JAZZED", got)
	}
	if got := wordFor(words, "lng"); got != nil {
		t.Errorf("wordFor(lng) = %+v, want nil", got)
	}
}

// fakeLedger serves pre-seeded boards (descending values) without a
// database so the qualify-and-rank flow can be exercised directly.
type fakeLedger struct {
	boards map[string][]float64
}

func (f *fakeLedger) TenthBest(userID, mode, metricType string) (*float64, error) {
	board := f.boards[metricType]
	if len(board) < LedgerCapacity {
		return nil, nil
	}
	v := board[LedgerCapacity-1]
	return &v, nil
}

func (f *fakeLedger) Rank(userID, mode, metricType string, newValue float64) (int, error) {
	return rankAmong(f.boards[metricType], newValue), nil
}

func TestCollectCandidates(t *testing.T) {
	svc, err := NewSessionService(nil, nil, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	fullBoard := []float64{600, 590, 580, 570, 560, 550, 540, 530, 520, 480}
	today := datatypes.Date(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))

	run := func(t *testing.T, boards map[string][]float64, result FinalResult) ([]Candidate, *StatsSummary) {
		t.Helper()
		play := &models.PlayRecord{ID: "play-1", UserID: "u1", Mode: models.ModeShort}
		summary := &StatsSummary{
			AvgWordScore: averageWordScore(result.Score, result.WordCount),
			Placements:   make(map[string]int),
		}
		candidates, err := svc.collectCandidates(&fakeLedger{boards: boards}, play, result, today, summary)
		if err != nil {
			t.Fatal(err)
		}
		return candidates, summary
	}

	metricsOf := func(candidates []Candidate) map[string]Candidate {
		byMetric := make(map[string]Candidate, len(candidates))
		for _, c := range candidates {
			byMetric[c.MetricType] = c
		}
		return byMetric
	}

	t.Run("new score enters a full board at the bottom", func(t *testing.T) {
		candidates, summary := run(t, map[string][]float64{models.MetricTotalScore: fullBoard},
			FinalResult{Score: 500, WordCount: 20})
		c, ok := metricsOf(candidates)[models.MetricTotalScore]
		if !ok {
			t.Fatal("score beating the tenth should produce a candidate")
		}
		if c.Value != 500 {
			t.Errorf("candidate value = %v, want 500", c.Value)
		}
		if summary.Placements[models.MetricTotalScore] != 10 {
			t.Errorf("placement = %d, want 10", summary.Placements[models.MetricTotalScore])
		}
	})

	t.Run("score at the tenth does not chart", func(t *testing.T) {
		candidates, summary := run(t, map[string][]float64{models.MetricTotalScore: fullBoard},
			FinalResult{Score: 480, WordCount: 20})
		if _, ok := metricsOf(candidates)[models.MetricTotalScore]; ok {
			t.Error("matching the tenth value should not chart")
		}
		if _, ok := summary.Placements[models.MetricTotalScore]; ok {
			t.Error("no placement should be recorded for a non-charting score")
		}
	})

	t.Run("short play skips the average board even on a record value", func(t *testing.T) {
		// 14 words at avg 50.0 would top an empty board, but stays off it.
		candidates, summary := run(t, map[string][]float64{models.MetricTotalScore: fullBoard},
			FinalResult{Score: 700, WordCount: 14})
		if _, ok := metricsOf(candidates)[models.MetricAvgWordScore]; ok {
			t.Error("plays under the word minimum must not chart on the average board")
		}
		if _, ok := summary.Placements[models.MetricAvgWordScore]; ok {
			t.Error("no average placement should be recorded under the word minimum")
		}
	})

	t.Run("average charts once enough words were found", func(t *testing.T) {
		candidates, summary := run(t, map[string][]float64{models.MetricTotalScore: fullBoard},
			FinalResult{Score: 750, WordCount: 15})
		c, ok := metricsOf(candidates)[models.MetricAvgWordScore]
		if !ok {
			t.Fatal("15 words should make the average eligible")
		}
		if c.Value != 50 {
			t.Errorf("average candidate value = %v, want 50", c.Value)
		}
		if summary.Placements[models.MetricAvgWordScore] != 1 {
			t.Errorf("average placement = %d, want 1", summary.Placements[models.MetricAvgWordScore])
		}
	})

	t.Run("word metric ranks against a partial board", func(t *testing.T) {
		candidates, summary := run(t,
			map[string][]float64{models.MetricBestWord: {60, 40, 30}},
			FinalResult{Score: 100, WordCount: 5, Words: []WordResult{
				{MetricType: models.MetricBestWord, Word: "QUIXOTIC", Score: 50, BoardState: "a1"},
			}})
		c, ok := metricsOf(candidates)[models.MetricBestWord]
		if !ok {
			t.Fatal("word beating the partial board should produce a candidate")
		}
		if c.Word == nil || *c.Word != "QUIXOTIC" {
			t.Errorf("candidate word = %v, want QUIXOTIC", c.Word)
		}
		if summary.Placements[models.MetricBestWord] != 2 {
			t.Errorf("word placement = %d, want 2", summary.Placements[models.MetricBestWord])
		}
	})
}

func TestCompletable(t *testing.T) {
	tests := []struct {
		name   string
		play   models.PlayRecord
		caller string
		wantOK bool
	}{
		{"pending play owned by caller", models.PlayRecord{UserID: "u1", Status: models.PlayStatusPending}, "u1", true},
		{"already completed", models.PlayRecord{UserID: "u1", Status: models.PlayStatusCompleted}, "u1", false},
		{"someone else's play", models.PlayRecord{UserID: "u2", Status: models.PlayStatusPending}, "u1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := completable(&tt.play, tt.caller)
			if tt.wantOK {
				if err != nil {
					t.Fatalf("completable() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrSessionUnavailable) {
				t.Errorf("completable() = %v, want ErrSessionUnavailable", err)
			}
		})
	}
}
