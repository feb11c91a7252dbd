// Package jobs provides scheduled background tasks for the fulfillment core.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3. Schedules
// are six-field expressions with a leading seconds field, and a pass that is still
// running when the next tick fires is skipped.
//
// # Available Jobs
//
// 1. CollectionAssignmentJob - assigns scheduled home collections to available collectors.
// It is opt-in: dispatch can also run on demand through the API.
// 2. LabQueueMetricsJob - samples the lab worklist and publishes its depth per priority.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(
//		jobs.NewLabQueueMetricsJob(worklistHandler, m, "*/15 * * * * *", logger),
//	)
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - The assignment job treats "no scheduled collections" and "no available collector" as normal
// - Every other failure is logged; a failed pass never stops the scheduler
package jobs
