package waiter

import "github.com/guardian/jobwaiter/common/models"

/**
work out a normalised status from the raw job numbers. Rules are checked in order, first match wins:
- some pods succeeded and that reached the required completions => completed
- some pods failed and that reached the backoff limit => failed
- a Failed/DeadlineExceeded condition is present => deadline exceeded
- something is still active => running
- otherwise unknown
a limit that is absent (nil) never matches, and neither does a zero count: kubernetes leaves zero counts
out of the job status, so "no failures yet" must not trip a backoff limit of 0.
*/
func ClassifyJob(snapshot *models.JobSnapshot) models.JobStatus {
	if snapshot == nil {
		return models.JOB_UNKNOWN
	}
	if snapshot.Completions != nil && snapshot.Succeeded > 0 && snapshot.Succeeded >= *snapshot.Completions {
		return models.JOB_COMPLETED
	}
	if snapshot.BackoffLimit != nil && snapshot.Failed > 0 && snapshot.Failed >= *snapshot.BackoffLimit {
		return models.JOB_FAILED
	}
	if snapshot.HasCondition(models.CONDITION_TYPE_FAILED, models.CONDITION_REASON_DEADLINE_EXCEEDED) {
		return models.JOB_DEADLINE_EXCEEDED
	}
	if snapshot.Active > 0 {
		return models.JOB_RUNNING
	}
	return models.JOB_UNKNOWN
}
