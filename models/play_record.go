// models/play_record.go
package models

import (
	"gorm.io/datatypes"
)

const (
	ModeShort = "short" // timed short session
	ModeLong  = "long"  // timed long session
	ModeFree  = "free"  // untimed free play
)

const (
	PlayStatusPending   = "pending"
	PlayStatusCompleted = "completed"
)

// AllModes lists every supported game mode.
var AllModes = []string{ModeShort, ModeLong, ModeFree}

func ValidMode(mode string) bool {
	for _, m := range AllModes {
		if m == mode {
			return true
		}
	}
	return false
}

// PlayRecord is one game attempt. It is created pending when a game starts
// and completed exactly once when the game ends; the score fields stay null
// until then. Seq orders a user's plays for the rolling-average window.
type PlayRecord struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	Seq    int64  `gorm:"autoIncrement;uniqueIndex" json:"-"`
	UserID string `gorm:"index:idx_play_user_mode,priority:1;not null" json:"user_id"`
	Mode   string `gorm:"index:idx_play_user_mode,priority:2;not null" json:"mode"`
	Status string `gorm:"not null;default:'pending'" json:"status"`

	Score        *int     `json:"score,omitempty"`
	WordCount    *int     `json:"word_count,omitempty"`
	AvgWordScore *float64 `json:"avg_word_score,omitempty"`

	BestWord           *string `json:"best_word,omitempty"`
	BestWordScore      *int    `json:"best_word_score,omitempty"`
	BestWordBoardState *string `json:"best_word_board_state,omitempty"`

	PlayedOn datatypes.Date `json:"played_on"`

	Timestamps
}
