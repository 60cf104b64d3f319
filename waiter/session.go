package waiter

import (
	"context"
	"fmt"
	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
	"github.com/guardian/jobwaiter/common/models"
	"io"
	"log"
	"time"
)

/**
all of the mutable state for one wait. A session is created by the driver for each call and is never
shared, so nothing in here needs locking
*/
type pollSession struct {
	id         uuid.UUID
	client     OrchestratorClient
	jobName    string
	followLogs bool
	logOutput  io.Writer
	interval   time.Duration
	debug      bool

	ctx    context.Context
	cancel context.CancelFunc

	containerState models.ContainerState
	logStream      LogStream
	ticker         *time.Ticker
	closed         bool

	stats Stats
}

func newPollSession(ctx context.Context, d *Driver, jobName string, followLogs bool) *pollSession {
	sessionCtx, cancel := context.WithCancel(ctx)
	id := uuid.New()
	return &pollSession{
		id:         id,
		client:     d.client,
		jobName:    jobName,
		followLogs: followLogs,
		logOutput:  d.logOutput,
		interval:   d.pollInterval,
		debug:      d.debug,
		ctx:        sessionCtx,
		cancel:     cancel,
		stats: Stats{
			SessionId: id,
			StartTime: time.Now(),
		},
	}
}

/**
poll until the job resolves. The first tick runs straight away, the rest on the ticker.
*/
func (s *pollSession) loop() (models.WaitOutcome, error) {
	s.ticker = time.NewTicker(s.interval)
	for {
		if ctxErr := s.ctx.Err(); ctxErr != nil {
			log.Printf("INFO session %s: wait for job/%s cancelled: %s", s.id, s.jobName, ctxErr)
			return models.OUTCOME_RUNNING, ctxErr
		}

		outcome, done, err := s.tick()
		if done {
			return outcome, err
		}

		select {
		case <-s.ctx.Done():
		case <-s.ticker.C:
		}
	}
}

/**
one poll of the job. Returns done=true once the session has resolved
*/
func (s *pollSession) tick() (models.WaitOutcome, bool, error) {
	s.stats.Ticks += 1

	snapshot, err := s.client.GetJobInfo(s.ctx, s.jobName)
	if err != nil {
		if ctxErr := s.ctx.Err(); ctxErr != nil {
			return models.OUTCOME_RUNNING, true, ctxErr
		}
		log.Printf("ERROR session %s: could not get status of job/%s: %s", s.id, s.jobName, err)
		return models.OUTCOME_FAILED, true, fmt.Errorf("could not get status of job/%s: %w", s.jobName, err)
	}
	if s.debug {
		log.Printf("DEBUG session %s: tick %d snapshot %s", s.id, s.stats.Ticks, spew.Sdump(snapshot))
	}

	status := ClassifyJob(snapshot)
	if status.IsTerminal() {
		return models.OutcomeForStatus(status), true, nil
	}

	if status == models.JOB_RUNNING {
		if s.containerState != models.CONTAINER_RUNNING {
			s.containerState = ProbeContainer(s.ctx, s.client, s.jobName)
			s.stats.Probes += 1
			if s.debug {
				log.Printf("DEBUG session %s: container for job/%s is %s", s.id, s.jobName, s.containerState)
			}
		}

		switch s.containerState {
		case models.CONTAINER_ERR_IMAGE_PULL:
			log.Printf("ERROR session %s: image for job/%s can't be pulled, giving up", s.id, s.jobName)
			return models.OUTCOME_ERR_IMAGE_PULL, true, nil
		case models.CONTAINER_RUNNING:
			if s.followLogs {
				s.startLogging()
			}
		}
	}
	return models.OUTCOME_RUNNING, false, nil
}

/**
open the log stream if it is not already open. Failures are logged and retried on the next tick
*/
func (s *pollSession) startLogging() {
	if s.logStream != nil {
		return
	}
	stream, err := s.client.StreamLogs(s.ctx, s.jobName, s.logOutput)
	if err != nil {
		log.Printf("ERROR session %s: could not follow logs for job/%s: %s", s.id, s.jobName, err)
		return
	}
	s.logStream = stream
	s.stats.StreamsStarted += 1
}

/**
release everything the session holds. Safe to call more than once
*/
func (s *pollSession) close() {
	if s.closed {
		return
	}
	s.closed = true

	if s.ticker != nil {
		s.ticker.Stop()
	}
	if s.logStream != nil {
		s.logStream.Cancel()
		s.logStream = nil
	}
	s.cancel()
	s.stats.EndTime = time.Now()
}
