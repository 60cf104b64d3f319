package waiter

import (
	"context"
	"github.com/google/uuid"
	"github.com/guardian/jobwaiter/common/models"
	"io"
	"log"
	"os"
	"time"
)

const DEFAULT_POLL_INTERVAL = 1 * time.Second

/**
counters for one wait
*/
type Stats struct {
	SessionId      uuid.UUID
	Ticks          int
	Probes         int
	StreamsStarted int
	StartTime      time.Time
	EndTime        time.Time
}

func (s Stats) Elapsed() time.Duration {
	if s.EndTime.IsZero() {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

/**
what a wait resolved to. Err is set if the wait could not be carried out (no job name, job not found,
orchestrator unreachable, cancelled); in that case Outcome is never OUTCOME_COMPLETED
*/
type WaitResult struct {
	Outcome models.WaitOutcome
	Err     error
	Stats   Stats
}

type Driver struct {
	client       OrchestratorClient
	pollInterval time.Duration
	logOutput    io.Writer
	debug        bool
}

type DriverOption func(d *Driver)

func WithPollInterval(interval time.Duration) DriverOption {
	return func(d *Driver) {
		if interval > 0 {
			d.pollInterval = interval
		}
	}
}

/**
where followed job logs are written, stdout by default
*/
func WithLogOutput(out io.Writer) DriverOption {
	return func(d *Driver) {
		d.logOutput = out
	}
}

func WithDebug(debug bool) DriverOption {
	return func(d *Driver) {
		d.debug = debug
	}
}

func NewDriver(client OrchestratorClient, opts ...DriverOption) *Driver {
	d := &Driver{
		client:       client,
		pollInterval: DEFAULT_POLL_INTERVAL,
		logOutput:    os.Stdout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

/**
start waiting for the given job in the background. The returned channel receives exactly one result and
is then closed; the session has been fully cleaned up (ticker stopped, log stream cancelled) by the time
the result is sent
*/
func (d *Driver) Start(ctx context.Context, jobName string, followLogs bool) <-chan WaitResult {
	results := make(chan WaitResult, 1)
	go func() {
		defer close(results)
		results <- d.run(ctx, jobName, followLogs)
	}()
	return results
}

/**
block until the given job finishes, following its logs if asked to
*/
func (d *Driver) RunToCompletion(ctx context.Context, jobName string, followLogs bool) (models.WaitOutcome, error) {
	result := <-d.Start(ctx, jobName, followLogs)
	return result.Outcome, result.Err
}

/**
as RunToCompletion but also returns the session counters
*/
func (d *Driver) RunToCompletionWithStats(ctx context.Context, jobName string, followLogs bool) WaitResult {
	return <-d.Start(ctx, jobName, followLogs)
}

func (d *Driver) run(ctx context.Context, jobName string, followLogs bool) (result WaitResult) {
	if jobName == "" {
		return WaitResult{Outcome: models.OUTCOME_FAILED, Err: ErrNoJobName}
	}

	session := newPollSession(ctx, d, jobName, followLogs)
	log.Printf("INFO session %s: waiting for job/%s, polling every %s", session.id, jobName, d.pollInterval)

	defer func() {
		session.close()
		result.Stats = session.stats
	}()

	result.Outcome, result.Err = session.loop()
	return result
}
