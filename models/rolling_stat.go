// models/rolling_stat.go
package models

import (
	"gorm.io/datatypes"
)

// RollingStat holds the per-(user, mode) moving averages. Current and peak
// values are null until the user has enough completed plays for the window
// (10 short, 100 long). Peak never drops below current.
type RollingStat struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"uniqueIndex:idx_stat_user_mode,priority:1;not null" json:"user_id"`
	Mode   string `gorm:"uniqueIndex:idx_stat_user_mode,priority:2;not null" json:"mode"`

	PlayCount  int64           `json:"play_count" gorm:"default:0"`
	LastPlayOn *datatypes.Date `json:"last_play_on,omitempty"`

	Curr10Wma    *float64        `json:"curr_10_wma,omitempty"`
	Peak10Wma    *float64        `json:"peak_10_wma,omitempty"`
	Peak10WmaOn  *datatypes.Date `json:"peak_10_wma_on,omitempty"`
	Curr100Wma   *float64        `json:"curr_100_wma,omitempty"`
	Peak100Wma   *float64        `json:"peak_100_wma,omitempty"`
	Peak100WmaOn *datatypes.Date `json:"peak_100_wma_on,omitempty"`

	Timestamps
}

// WindowFields returns the current/peak slots for a window length. The
// configured short window maps to the 10-column family, any other window
// to the 100-column family.
func (s *RollingStat) WindowFields(window, shortWindow int) (curr **float64, peak **float64, peakOn **datatypes.Date) {
	if window == shortWindow {
		return &s.Curr10Wma, &s.Peak10Wma, &s.Peak10WmaOn
	}
	return &s.Curr100Wma, &s.Peak100Wma, &s.Peak100WmaOn
}
