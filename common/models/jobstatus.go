package models

import mapset "github.com/deckarep/golang-set"

/**
normalised view of a kubernetes Job, derived from its status counts and conditions
*/
type JobStatus int

const (
	JOB_UNKNOWN JobStatus = iota
	JOB_RUNNING
	JOB_COMPLETED
	JOB_FAILED
	JOB_DEADLINE_EXCEEDED
)

var terminalJobStatuses = mapset.NewSet(JOB_COMPLETED, JOB_FAILED, JOB_DEADLINE_EXCEEDED)

func (s JobStatus) String() string {
	switch s {
	case JOB_RUNNING:
		return "Running"
	case JOB_COMPLETED:
		return "Completed"
	case JOB_FAILED:
		return "Failed"
	case JOB_DEADLINE_EXCEEDED:
		return "DeadlineExceeded"
	default:
		return "Unknown"
	}
}

/**
returns true if the job will not change state any more
*/
func (s JobStatus) IsTerminal() bool {
	return terminalJobStatuses.Contains(s)
}

/**
state of the job's primary container, as far as we can tell from asking for its logs.
the zero value is CONTAINER_UNKNOWN, i.e. we have not seen it running yet
*/
type ContainerState int

const (
	CONTAINER_UNKNOWN ContainerState = iota
	CONTAINER_RUNNING
	CONTAINER_CREATING
	CONTAINER_ERR_IMAGE_PULL
)

func (c ContainerState) String() string {
	switch c {
	case CONTAINER_RUNNING:
		return "Running"
	case CONTAINER_CREATING:
		return "Creating"
	case CONTAINER_ERR_IMAGE_PULL:
		return "ErrImagePull"
	default:
		return "Unknown"
	}
}

/**
what a wait eventually resolves to. This is a superset of the terminal JobStatus values, plus
OUTCOME_ERR_IMAGE_PULL for a container that can never start and OUTCOME_RUNNING if the wait was torn down
before the job finished
*/
type WaitOutcome int

const (
	OUTCOME_RUNNING WaitOutcome = iota
	OUTCOME_COMPLETED
	OUTCOME_FAILED
	OUTCOME_DEADLINE_EXCEEDED
	OUTCOME_ERR_IMAGE_PULL
)

func (o WaitOutcome) String() string {
	switch o {
	case OUTCOME_COMPLETED:
		return "Completed"
	case OUTCOME_FAILED:
		return "Failed"
	case OUTCOME_DEADLINE_EXCEEDED:
		return "DeadlineExceeded"
	case OUTCOME_ERR_IMAGE_PULL:
		return "ErrImagePull"
	default:
		return "Running"
	}
}

func (o WaitOutcome) IsSuccess() bool {
	return o == OUTCOME_COMPLETED
}

func AllOutcomes() []WaitOutcome {
	return []WaitOutcome{OUTCOME_RUNNING, OUTCOME_COMPLETED, OUTCOME_FAILED, OUTCOME_DEADLINE_EXCEEDED, OUTCOME_ERR_IMAGE_PULL}
}

/**
maps a terminal JobStatus onto the matching outcome. Non-terminal values map to OUTCOME_RUNNING.
*/
func OutcomeForStatus(s JobStatus) WaitOutcome {
	switch s {
	case JOB_COMPLETED:
		return OUTCOME_COMPLETED
	case JOB_FAILED:
		return OUTCOME_FAILED
	case JOB_DEADLINE_EXCEEDED:
		return OUTCOME_DEADLINE_EXCEEDED
	default:
		return OUTCOME_RUNNING
	}
}
