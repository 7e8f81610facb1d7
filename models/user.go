// models/user.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// User mirrors an account from the profile service (kept fresh by the sync
// worker). This service never creates accounts; it only anchors stats to
// them and maintains cumulative counters.
type User struct {
	ID       string `gorm:"primaryKey" json:"id"` // external profile-service id
	Username string `gorm:"uniqueIndex;not null" json:"username"`

	// Lifetime counters
	TotalPlays int64 `json:"total_plays" gorm:"default:0"`
	WordsFound int64 `json:"words_found" gorm:"default:0"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
