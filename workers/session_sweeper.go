// workers/session_sweeper.go
package workers

import (
	"log"
	"time"

	"fortune0-platform/services"

	"github.com/go-co-op/gocron/v2"
)

// StartSessionSweeper schedules periodic deletion of expired sessions.
func StartSessionSweeper(sessions *services.SessionService) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("[Sweeper] failed to create scheduler: %v", err)
		return
	}
	sched.Start()

	_, err = sched.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(sessions.SweepExpired),
	)
	if err != nil {
		log.Printf("[Sweeper] failed to schedule job: %v", err)
	}
}
