// workers/session_reaper_worker.go
package workers

import (
	"log"
	"time"

	"word-stats-system/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// PendingSessionTTL is how long an abandoned pending play survives before
// the reaper removes it. Only pending rows are touched; completed history
// is never reaped.
const PendingSessionTTL = 24 * time.Hour

// StartSessionReaper runs a periodic job that deletes play records still
// pending long after their game started (browser closed mid-game, client
// crash). Rolling-stat play counts are left as-is: the play did happen.
func StartSessionReaper(db *gorm.DB) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("[Reaper] Failed to create scheduler: %v", err)
		return
	}
	sched.Start()

	_, err = sched.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(func() {
			cutoff := time.Now().Add(-PendingSessionTTL)
			res := db.Unscoped().
				Where("status = ? AND created_at < ?", models.PlayStatusPending, cutoff).
				Delete(&models.PlayRecord{})
			if res.Error != nil {
				log.Printf("[Reaper] DB error: %v", res.Error)
				return
			}
			if res.RowsAffected > 0 {
				log.Printf("[Reaper] Deleted %d abandoned pending play(s)", res.RowsAffected)
			}
		}),
	)
	if err != nil {
		log.Printf("[Reaper] Failed to schedule job: %v", err)
	}
}
