package waiter

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/guardian/jobwaiter/common/models"
	"testing"
)

func int32Ptr(v int32) *int32 {
	return &v
}

func TestClassifyJob(t *testing.T) {
	deadlineCondition := []models.JobCondition{{Type: "Failed", Reason: "DeadlineExceeded"}}

	tests := []struct {
		name     string
		snapshot models.JobSnapshot
		expected models.JobStatus
	}{
		{"succeeded", models.JobSnapshot{Succeeded: 1, Completions: int32Ptr(1), BackoffLimit: int32Ptr(6)}, models.JOB_COMPLETED},
		{"failed", models.JobSnapshot{Failed: 6, Completions: int32Ptr(1), BackoffLimit: int32Ptr(6)}, models.JOB_FAILED},
		{"running", models.JobSnapshot{Active: 1, Completions: int32Ptr(1), BackoffLimit: int32Ptr(6)}, models.JOB_RUNNING},
		{"nothing active", models.JobSnapshot{Completions: int32Ptr(1), BackoffLimit: int32Ptr(6)}, models.JOB_UNKNOWN},
		{"deadline", models.JobSnapshot{Failed: 1, Completions: int32Ptr(1), BackoffLimit: int32Ptr(6), ConditionRecords: deadlineCondition}, models.JOB_DEADLINE_EXCEEDED},
		{"deadline beats active", models.JobSnapshot{Active: 1, Completions: int32Ptr(1), BackoffLimit: int32Ptr(6), ConditionRecords: deadlineCondition}, models.JOB_DEADLINE_EXCEEDED},
		{"succeeded beats everything", models.JobSnapshot{Succeeded: 2, Failed: 9, Active: 3, Completions: int32Ptr(2), BackoffLimit: int32Ptr(6), ConditionRecords: deadlineCondition}, models.JOB_COMPLETED},
		{"failed beats deadline", models.JobSnapshot{Failed: 6, Active: 1, Completions: int32Ptr(1), BackoffLimit: int32Ptr(6), ConditionRecords: deadlineCondition}, models.JOB_FAILED},
		{"partial completions", models.JobSnapshot{Succeeded: 2, Active: 1, Completions: int32Ptr(3), BackoffLimit: int32Ptr(6)}, models.JOB_RUNNING},
		{"other failed condition", models.JobSnapshot{Failed: 1, Completions: int32Ptr(1), BackoffLimit: int32Ptr(6), ConditionRecords: []models.JobCondition{{Type: "Failed", Reason: "BackoffLimitExceeded"}}}, models.JOB_UNKNOWN},
		{"absent limits", models.JobSnapshot{Succeeded: 5, Failed: 5, Active: 1}, models.JOB_RUNNING},
		{"empty snapshot", models.JobSnapshot{}, models.JOB_UNKNOWN},
		{"zero backoff limit, nothing failed yet", models.JobSnapshot{Active: 1, Completions: int32Ptr(1), BackoffLimit: int32Ptr(0)}, models.JOB_RUNNING},
		{"zero backoff limit, one failure", models.JobSnapshot{Failed: 1, Completions: int32Ptr(1), BackoffLimit: int32Ptr(0)}, models.JOB_FAILED},
		{"zero backoff limit, succeeded", models.JobSnapshot{Succeeded: 1, Completions: int32Ptr(1), BackoffLimit: int32Ptr(0)}, models.JOB_COMPLETED},
		{"zero completions, nothing succeeded", models.JobSnapshot{Active: 1, Completions: int32Ptr(0), BackoffLimit: int32Ptr(6)}, models.JOB_RUNNING},
	}

	for _, tc := range tests {
		snap := tc.snapshot
		result := ClassifyJob(&snap)
		if result != tc.expected {
			t.Errorf("%s: got %s, expected %s for %s", tc.name, result, tc.expected, spew.Sdump(tc.snapshot))
		}
	}
}

func TestClassifyJobNil(t *testing.T) {
	if ClassifyJob(nil) != models.JOB_UNKNOWN {
		t.Error("nil snapshot should classify as unknown")
	}
}

func TestClassifyJobCompletedPrecedence(t *testing.T) {
	//whenever succeeded >= completions the answer is Completed, whatever else is set
	for succeeded := int32(1); succeeded < 4; succeeded++ {
		for failed := int32(0); failed < 8; failed++ {
			for active := int32(0); active < 3; active++ {
				snap := models.JobSnapshot{
					Succeeded:        succeeded,
					Failed:           failed,
					Active:           active,
					Completions:      int32Ptr(1),
					BackoffLimit:     int32Ptr(6),
					ConditionRecords: []models.JobCondition{{Type: "Failed", Reason: "DeadlineExceeded"}},
				}
				if ClassifyJob(&snap) != models.JOB_COMPLETED {
					t.Errorf("expected completed for %s", spew.Sdump(snap))
				}
			}
		}
	}
}
