// services/session_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"word-stats-system/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Config carries the tunables of the stats engine. The values are fixed at
// construction; nothing reads them from mutable global state.
type Config struct {
	ShortWindow    int // plays in the short moving average
	LongWindow     int // plays in the long moving average
	RecentLimit    int // completed plays fetched for the averages
	MinWordsForAvg int // words required before avg-word-score can chart
}

func DefaultConfig() Config {
	return Config{
		ShortWindow:    10,
		LongWindow:     100,
		RecentLimit:    100,
		MinWordsForAvg: 15,
	}
}

func (c Config) validate() error {
	if c.ShortWindow <= 0 || c.LongWindow <= 0 {
		return badInputf("window lengths must be positive")
	}
	if c.ShortWindow >= c.LongWindow {
		return badInputf("short window must be smaller than long window")
	}
	if c.RecentLimit < c.LongWindow {
		return badInputf("recent limit must cover the long window")
	}
	if c.MinWordsForAvg < 1 {
		return badInputf("min words for avg must be positive")
	}
	return nil
}

// ledgerReader answers the threshold and placement queries the
// qualify-and-insert flow needs.
type ledgerReader interface {
	TenthBest(userID, mode, metricType string) (*float64, error)
	Rank(userID, mode, metricType string, newValue float64) (int, error)
}

// SessionService drives the two-phase play lifecycle: a pending record is
// reserved at game start and committed exactly once at game end, when all
// derived stats are recomputed inside one transaction.
type SessionService struct {
	DB     *gorm.DB
	Ledger *LedgerService
	cfg    Config
}

func NewSessionService(db *gorm.DB, ledger *LedgerService, cfg Config) (*SessionService, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &SessionService{DB: db, Ledger: ledger, cfg: cfg}, nil
}

// StartResult is returned when a game begins. WordScoreBars maps each word
// metric type to the score needed to enter its top 10; a nil bar means the
// ledger is not full yet and anything charts.
type StartResult struct {
	PlayID        string              `json:"play_id"`
	WordScoreBars map[string]*float64 `json:"word_score_bars"`
}

// WordResult is the best word a play produced for one word metric type.
type WordResult struct {
	MetricType string `json:"metric_type"`
	Word       string `json:"word"`
	Score      int    `json:"score"`
	BoardState string `json:"board_state"`
}

// FinalResult is the outcome submitted when a game ends.
type FinalResult struct {
	Score     int          `json:"score"`
	WordCount int          `json:"word_count"`
	Words     []WordResult `json:"words"`
}

// WindowSummary reports one moving-average window that had enough history
// to compute.
type WindowSummary struct {
	Window    int     `json:"window"`
	Current   float64 `json:"current"`
	Peak      float64 `json:"peak"`
	IsNewPeak bool    `json:"is_new_peak"`
}

// StatsSummary is the game-over feedback: windows below their history
// threshold are omitted entirely rather than reported as zero, and
// Placements holds the 1-based rank for every metric the play charted on.
type StatsSummary struct {
	AvgWordScore *float64        `json:"avg_word_score,omitempty"`
	Windows      []WindowSummary `json:"windows"`
	Placements   map[string]int  `json:"placements"`
}

// Start reserves a pending play record, bumps the rolling-stat play
// counter, and returns the current word-score bars for display.
func (s *SessionService) Start(ctx context.Context, userID, mode string) (*StartResult, error) {
	if userID == "" {
		return nil, badInputf("user id required")
	}
	if !models.ValidMode(mode) {
		return nil, badInputf("unknown game mode %q", mode)
	}

	today := datatypes.Date(time.Now())
	result := &StartResult{
		PlayID:        uuid.NewString(),
		WordScoreBars: make(map[string]*float64, len(models.WordMetrics)),
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		play := models.PlayRecord{
			ID:       result.PlayID,
			UserID:   userID,
			Mode:     mode,
			Status:   models.PlayStatusPending,
			PlayedOn: today,
		}
		if err := tx.Create(&play).Error; err != nil {
			return storeErr(err)
		}

		stat := models.RollingStat{
			UserID:     userID,
			Mode:       mode,
			PlayCount:  1,
			LastPlayOn: &today,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "mode"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"play_count":   gorm.Expr("rolling_stats.play_count + 1"),
				"last_play_on": today,
			}),
		}).Create(&stat).Error
		if err != nil {
			return storeErr(err)
		}

		err = tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("total_plays", gorm.Expr("total_plays + 1")).Error
		if err != nil {
			return storeErr(err)
		}

		ledger := s.Ledger.WithTx(tx)
		for _, metricType := range models.WordMetrics {
			bar, err := ledger.TenthBest(userID, mode, metricType)
			if err != nil {
				return err
			}
			result.WordScoreBars[metricType] = bar
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// End commits a pending play and recomputes every derived stat for its
// (user, mode): moving averages, peaks, ledgers and counters. The whole
// sequence runs in one transaction with the play row locked, so a crash or
// a losing concurrent committer leaves no partial state.
func (s *SessionService) End(ctx context.Context, playID, callerUserID string, result FinalResult) (*StatsSummary, error) {
	if err := validateFinalResult(result); err != nil {
		return nil, err
	}
	if callerUserID == "" {
		return nil, ErrSessionUnavailable
	}

	today := datatypes.Date(time.Now())
	summary := &StatsSummary{Placements: make(map[string]int)}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var play models.PlayRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", playID).
			First(&play).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionUnavailable
		}
		if err != nil {
			return storeErr(err)
		}
		if err := completable(&play, callerUserID); err != nil {
			return err
		}

		// Commit the final result onto the pending row.
		score := result.Score
		wordCount := result.WordCount
		play.Status = models.PlayStatusCompleted
		play.Score = &score
		play.WordCount = &wordCount
		play.PlayedOn = today
		summary.AvgWordScore = averageWordScore(score, wordCount)
		play.AvgWordScore = summary.AvgWordScore
		if best := wordFor(result.Words, models.MetricBestWord); best != nil {
			play.BestWord = &best.Word
			play.BestWordScore = &best.Score
			play.BestWordBoardState = &best.BoardState
		}
		if err := tx.Save(&play).Error; err != nil {
			return storeErr(err)
		}

		// The just-written score must be part of the window read.
		var recentScores []int
		err = tx.Model(&models.PlayRecord{}).
			Where("user_id = ? AND mode = ? AND status = ?", play.UserID, play.Mode, models.PlayStatusCompleted).
			Order("seq DESC").
			Limit(s.cfg.RecentLimit).
			Pluck("score", &recentScores).Error
		if err != nil {
			return storeErr(err)
		}

		if err := s.refreshRollingStat(tx, play.UserID, play.Mode, recentScores, today, summary); err != nil {
			return err
		}

		ledger := s.Ledger.WithTx(tx)
		candidates, err := s.collectCandidates(ledger, &play, result, today, summary)
		if err != nil {
			return err
		}
		if err := ledger.InsertCandidates(play.UserID, play.Mode, candidates); err != nil {
			return err
		}

		err = tx.Model(&models.User{}).
			Where("id = ?", play.UserID).
			UpdateColumn("words_found", gorm.Expr("words_found + ?", wordCount)).Error
		return storeErr(err)
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// refreshRollingStat recomputes both windows over the recent scores and
// persists new currents and peaks. Windows without enough history keep
// their stored values untouched.
func (s *SessionService) refreshRollingStat(tx *gorm.DB, userID, mode string, recentScores []int, today datatypes.Date, summary *StatsSummary) error {
	var stat models.RollingStat
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND mode = ?", userID, mode).
		First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Start always upserts the row first; recover anyway.
		stat = models.RollingStat{UserID: userID, Mode: mode, PlayCount: 1, LastPlayOn: &today}
	} else if err != nil {
		return storeErr(err)
	}

	for _, window := range []int{s.cfg.ShortWindow, s.cfg.LongWindow} {
		current, ok := ComputeWMA(recentScores, window)
		if !ok {
			continue
		}
		currField, peakField, peakOnField := stat.WindowFields(window, s.cfg.ShortWindow)
		peak := UpdatePeak(current, *peakField, *peakOnField, today)
		*currField = &current
		if peak.IsNew {
			v, on := peak.Value, peak.On
			*peakField = &v
			*peakOnField = &on
		}
		summary.Windows = append(summary.Windows, WindowSummary{
			Window:    window,
			Current:   current,
			Peak:      peak.Value,
			IsNewPeak: peak.IsNew,
		})
	}

	return storeErr(tx.Save(&stat).Error)
}

// completable gates the commit of a play. A missing owner match and an
// already-completed row produce the same opaque error as a missing row, so
// a second submission of the same session always fails without revealing
// why.
func completable(play *models.PlayRecord, callerUserID string) error {
	if play.UserID != callerUserID || play.Status != models.PlayStatusPending {
		return ErrSessionUnavailable
	}
	return nil
}

// collectCandidates runs the qualify-and-rank flow for the score metrics
// and for every submitted word metric, recording placements as it goes.
func (s *SessionService) collectCandidates(ledger ledgerReader, play *models.PlayRecord, result FinalResult, today datatypes.Date, summary *StatsSummary) ([]Candidate, error) {
	var candidates []Candidate

	qualify := func(metricType string, value float64) (bool, error) {
		tenth, err := ledger.TenthBest(play.UserID, play.Mode, metricType)
		if err != nil {
			return false, err
		}
		if tenth != nil && value <= *tenth {
			return false, nil
		}
		rank, err := ledger.Rank(play.UserID, play.Mode, metricType, value)
		if err != nil {
			return false, err
		}
		summary.Placements[metricType] = rank
		return true, nil
	}

	if ok, err := qualify(models.MetricTotalScore, float64(result.Score)); err != nil {
		return nil, err
	} else if ok {
		candidates = append(candidates, Candidate{
			MetricType:   models.MetricTotalScore,
			Value:        float64(result.Score),
			PlayRecordID: &play.ID,
			AchievedOn:   today,
		})
	}

	// Short lucky plays must not dominate the average-score board.
	if summary.AvgWordScore != nil && result.WordCount >= s.cfg.MinWordsForAvg {
		if ok, err := qualify(models.MetricAvgWordScore, *summary.AvgWordScore); err != nil {
			return nil, err
		} else if ok {
			candidates = append(candidates, Candidate{
				MetricType:   models.MetricAvgWordScore,
				Value:        *summary.AvgWordScore,
				PlayRecordID: &play.ID,
				AchievedOn:   today,
			})
		}
	}

	for i := range result.Words {
		w := result.Words[i]
		if ok, err := qualify(w.MetricType, float64(w.Score)); err != nil {
			return nil, err
		} else if ok {
			candidates = append(candidates, Candidate{
				MetricType:   w.MetricType,
				Value:        float64(w.Score),
				Word:         &w.Word,
				BoardState:   &w.BoardState,
				PlayRecordID: &play.ID,
				AchievedOn:   today,
			})
		}
	}
	return candidates, nil
}

// averageWordScore returns score/wordCount rounded to 2 decimals, or nil
// when no words were found (no division by zero, no zero stat).
func averageWordScore(score, wordCount int) *float64 {
	if wordCount <= 0 {
		return nil
	}
	avg := round2(float64(score) / float64(wordCount))
	return &avg
}

func validateFinalResult(result FinalResult) error {
	if result.Score < 0 {
		return badInputf("score must not be negative")
	}
	if result.WordCount < 0 {
		return badInputf("word count must not be negative")
	}
	seen := make(map[string]struct{}, len(result.Words))
	for _, w := range result.Words {
		if !models.ValidWordMetric(w.MetricType) {
			return badInputf("unknown word metric %q", w.MetricType)
		}
		if _, dup := seen[w.MetricType]; dup {
			return fmt.Errorf("%w: duplicate word metric %q", ErrBadInput, w.MetricType)
		}
		seen[w.MetricType] = struct{}{}
		if w.Word == "" {
			return badInputf("empty word for metric %q", w.MetricType)
		}
		if w.Score < 0 {
			return badInputf("negative word score for metric %q", w.MetricType)
		}
	}
	return nil
}

func wordFor(words []WordResult, metricType string) *WordResult {
	for i := range words {
		if words[i].MetricType == metricType {
			return &words[i]
		}
	}
	return nil
}
