package waiter

import (
	"context"
	"errors"
	"github.com/guardian/jobwaiter/common/models"
	"io"
)

var (
	ErrNoJobName   = errors.New("job name not specified")
	ErrJobNotFound = errors.New("job does not exist")
)

/**
the operations the driver needs from whatever is running the job.
GetJobInfo should return an error wrapping ErrJobNotFound if the orchestrator does not know the job.
ProbeContainer is a cheap read of the job's primary container; on failure the string is the error
text from the orchestrator, which is what the probe classifies on.
*/
type OrchestratorClient interface {
	GetJobInfo(ctx context.Context, jobName string) (*models.JobSnapshot, error)
	ProbeContainer(ctx context.Context, jobName string) (bool, string)
	StreamLogs(ctx context.Context, jobName string, out io.Writer) (LogStream, error)
}

/**
handle on a running log follow. Cancel must stop it promptly and must be safe to call more than once
*/
type LogStream interface {
	Cancel()
}
