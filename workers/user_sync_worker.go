// workers/user_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"word-stats-system/models"
	"word-stats-system/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MirroredUserFromProfile matches the JSON response of the profile
// service's change feed.
type MirroredUserFromProfile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetUserChangesResponse is the top-level structure of the change feed.
type GetUserChangesResponse struct {
	Users []MirroredUserFromProfile `json:"users"`
}

// UserSyncWorker mirrors accounts from the profile service into the local
// users table so leaderboards can join usernames without a remote call.
type UserSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string // e.g., "http://localhost:8500"
	endpointPath string // e.g., "/api/v1/public/profiles"
	serviceToken string
	httpClient   *http.Client
}

func NewUserSyncWorker(db *gorm.DB, profileServiceBaseURL, endpointPath, serviceToken string) *UserSyncWorker {
	return &UserSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      profileServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient:   utils.HTTPClient,
	}
}

func (w *UserSyncWorker) Start(ctx context.Context) {
	log.Println("[SYNC] Starting user sync worker (profile service → users)")
	go w.run(ctx)
}

func (w *UserSyncWorker) run(ctx context.Context) {
	// Initial sync backfills from the beginning of time.
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("[SYNC] Initial sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("[SYNC] Sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("[SYNC] User sync worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent UpdatedAt of the local mirror.
func (w *UserSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM users WHERE deleted_at IS NULL").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

// syncBatch fetches account changes since the given time and upserts them.
func (w *UserSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid profile service URL %q: %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	endpointURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", endpointURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create sync request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to profile service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("profile service non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	var changes GetUserChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&changes); err != nil {
		return fmt.Errorf("failed to decode profile service response: %w", err)
	}
	if len(changes.Users) == 0 {
		return nil
	}

	users := make([]models.User, 0, len(changes.Users))
	for _, u := range changes.Users {
		users = append(users, models.User{ID: u.ID, Username: u.Username})
	}
	err = w.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "updated_at"}),
	}).Create(&users).Error
	if err != nil {
		return fmt.Errorf("failed to upsert mirrored users: %w", err)
	}

	log.Printf("[SYNC] Upserted %d mirrored user(s)", len(users))
	return nil
}
