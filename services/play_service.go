// services/play_service.go
package services

import (
	"context"
	"errors"

	"word-stats-system/models"

	"gorm.io/gorm"
)

// PlayFilters narrows a play-history listing. Pointer fields are skipped
// when nil.
type PlayFilters struct {
	UserID        string
	Mode          string
	MinScore      *int
	MaxScore      *int
	MinWordCount  *int
	MaxWordCount  *int
	BestWordLike  string // case-insensitive substring match
	Limit         int
	Offset        int
}

// PlayService is the thin CRUD surface over play history. The session
// service owns all writes except the admin delete.
type PlayService struct {
	DB *gorm.DB
}

func NewPlayService(db *gorm.DB) *PlayService {
	return &PlayService{DB: db}
}

// List returns completed and pending plays, newest first.
func (s *PlayService) List(ctx context.Context, filters PlayFilters) ([]models.PlayRecord, error) {
	if filters.Mode != "" && !models.ValidMode(filters.Mode) {
		return nil, badInputf("unknown game mode %q", filters.Mode)
	}
	var plays []models.PlayRecord
	err := withReadRetry(func() error {
		q := s.DB.WithContext(ctx).Model(&models.PlayRecord{})
		if filters.UserID != "" {
			q = q.Where("user_id = ?", filters.UserID)
		}
		if filters.Mode != "" {
			q = q.Where("mode = ?", filters.Mode)
		}
		if filters.MinScore != nil {
			q = q.Where("score >= ?", *filters.MinScore)
		}
		if filters.MaxScore != nil {
			q = q.Where("score <= ?", *filters.MaxScore)
		}
		if filters.MinWordCount != nil {
			q = q.Where("word_count >= ?", *filters.MinWordCount)
		}
		if filters.MaxWordCount != nil {
			q = q.Where("word_count <= ?", *filters.MaxWordCount)
		}
		if filters.BestWordLike != "" {
			q = q.Where("UPPER(best_word) LIKE UPPER(?)", "%"+filters.BestWordLike+"%")
		}
		if filters.Limit > 0 {
			q = q.Limit(filters.Limit)
		}
		if filters.Offset > 0 {
			q = q.Offset(filters.Offset)
		}
		return storeErr(q.Order("seq DESC").Find(&plays).Error)
	})
	if err != nil {
		return nil, err
	}
	return plays, nil
}

func (s *PlayService) Get(ctx context.Context, id string) (*models.PlayRecord, error) {
	var play models.PlayRecord
	err := withReadRetry(func() error {
		err := s.DB.WithContext(ctx).Where("id = ?", id).First(&play).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return storeErr(err)
	})
	if err != nil {
		return nil, err
	}
	return &play, nil
}

// Delete removes a play record permanently. Administrators only; rolling
// stats are not recomputed for deleted history.
func (s *PlayService) Delete(ctx context.Context, id string, admin bool) error {
	if !admin {
		return ErrUnauthorized
	}
	res := s.DB.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&models.PlayRecord{})
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
