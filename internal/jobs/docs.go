// Package jobs provides scheduled background tasks for the dispatch service.
//
// Jobs are built on github.com/robfig/cron/v3 with second-level schedules.
// Each run skips if the previous one is still going.
//
// # Available Jobs
//
//  1. ExpressAssignmentJob assigns the nearest suitable courier to express
//     orders that are still pending.
//  2. PresenceExpiryJob takes couriers offline when they stop reporting
//     their position.
//
// # Usage
//
//	manager := jobs.NewJobManager(
//		jobs.NewExpressAssignmentJob(assignHandler, "*/15 * * * * *", 20, logger),
//		jobs.NewPresenceExpiryJob(expiryHandler, "0 * * * * *", 10*time.Minute, 200, logger),
//	)
//	if err := manager.StartAll(); err != nil {
//		return err
//	}
//	defer manager.StopAll()
//
// # Error Handling
//
// A failed run is logged and the next tick tries again. A failure on one
// express order does not stop the rest of the batch.
package jobs
