// Package jobs provides scheduled background tasks for the order workflow.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
// Jobs only read orders; they never drive transitions.
//
// # Available Jobs
//
// 1. DelayMonitorJob - publishes per-stage delay buckets of open orders as gauges and
// logs overdue stages (default every five minutes)
// 2. AuditConsistencyJob - replays the audit trail of every open order and logs those
// whose stored state it does not reproduce (default hourly)
//
// # Usage
//
//	jobManager := jobs.NewJobManager(
//		jobs.NewDelayMonitorJob(delayReportHandler, metrics, cfg.DelaySchedule, logger),
//		jobs.NewAuditConsistencyJob(orders, auditTrailHandler, cfg.AuditSchedule, logger),
//	)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed run is logged and the next tick tries again. Failed job starts stop any
// already running jobs.
package jobs
