// workers/snapshot_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"fortune0-platform/models"
	"fortune0-platform/utils"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// ledgerSnapshot is the archived shape: the full affiliate ledger plus every
// commission row, enough to audit or rebuild payout state offline.
type ledgerSnapshot struct {
	TakenAt     time.Time           `json:"taken_at"`
	Affiliates  []models.Affiliate  `json:"affiliates"`
	Commissions []models.Commission `json:"commissions"`
}

// StartSnapshotWorker schedules a nightly export of the commission ledger to
// object storage. No-op (with a log line) when no bucket is configured.
func StartSnapshotWorker(db *gorm.DB) {
	if !utils.SnapshotsEnabled() {
		log.Println("⚠️  Ledger snapshots disabled (SNAPSHOT_BUCKET not set)")
		return
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("[Snapshot] failed to create scheduler: %v", err)
		return
	}
	sched.Start()

	_, err = sched.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(func() {
			if err := TakeSnapshot(context.Background(), db); err != nil {
				log.Printf("[Snapshot] export failed: %v", err)
			}
		}),
	)
	if err != nil {
		log.Printf("[Snapshot] failed to schedule job: %v", err)
	}
}

// TakeSnapshot serializes the ledger and uploads it under a dated key.
func TakeSnapshot(ctx context.Context, db *gorm.DB) error {
	snap := ledgerSnapshot{TakenAt: time.Now().UTC()}

	if err := db.WithContext(ctx).Order("total_earned DESC").Find(&snap.Affiliates).Error; err != nil {
		return fmt.Errorf("failed to read affiliates: %w", err)
	}
	if err := db.WithContext(ctx).Order("created_at ASC").Find(&snap.Commissions).Error; err != nil {
		return fmt.Errorf("failed to read commissions: %w", err)
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	key := fmt.Sprintf("snapshots/%s.json", snap.TakenAt.Format("2006-01-02"))
	if err := utils.UploadSnapshot(ctx, key, body); err != nil {
		return err
	}
	log.Printf("✅ [Snapshot] uploaded %s (%d affiliates, %d commissions)",
		key, len(snap.Affiliates), len(snap.Commissions))
	return nil
}
