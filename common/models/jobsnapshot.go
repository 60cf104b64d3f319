package models

const (
	CONDITION_TYPE_FAILED              = "Failed"
	CONDITION_REASON_DEADLINE_EXCEEDED = "DeadlineExceeded"
)

type JobCondition struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

/**
the raw numbers we need from the orchestrator for one poll.
Completions and BackoffLimit are nil if the job spec did not carry them; the counts are zero if absent.
*/
type JobSnapshot struct {
	Succeeded        int32          `json:"succeeded"`
	Failed           int32          `json:"failed"`
	Active           int32          `json:"active"`
	Completions      *int32         `json:"completions"`
	BackoffLimit     *int32         `json:"backoffLimit"`
	ConditionRecords []JobCondition `json:"conditions"`
}

/**
returns true if any condition record has the given type and reason
*/
func (s *JobSnapshot) HasCondition(condType string, reason string) bool {
	for _, c := range s.ConditionRecords {
		if c.Type == condType && c.Reason == reason {
			return true
		}
	}
	return false
}
