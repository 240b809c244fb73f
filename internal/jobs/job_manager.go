package jobs

import (
	"fmt"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	delayMonitorJob     *DelayMonitorJob
	auditConsistencyJob *AuditConsistencyJob
}

// NewJobManager creates a job manager for the given jobs.
func NewJobManager(delayMonitorJob *DelayMonitorJob, auditConsistencyJob *AuditConsistencyJob) *JobManager {
	return &JobManager{
		delayMonitorJob:     delayMonitorJob,
		auditConsistencyJob: auditConsistencyJob,
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.delayMonitorJob.Start(); err != nil {
		return fmt.Errorf("failed to start delay monitor job: %w", err)
	}

	if err := jm.auditConsistencyJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.delayMonitorJob.Stop()
		return fmt.Errorf("failed to start audit consistency job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.auditConsistencyJob.Stop()
	jm.delayMonitorJob.Stop()
}
