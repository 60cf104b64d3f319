package waiter

import (
	"context"
	"github.com/guardian/jobwaiter/common/models"
	"io"
	"sync"
)

type ProbeResult struct {
	Ok     bool
	Output string
}

type LogStreamMock struct {
	mu          sync.Mutex
	CancelCount int
}

func (l *LogStreamMock) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.CancelCount += 1
}

func (l *LogStreamMock) Cancelled() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.CancelCount
}

/**
scripted OrchestratorClient. Snapshots and ProbeResults are handed out in order, the last entry repeats
once the list is exhausted. JobInfoErrors and StreamErrors are returned in order for successive
GetJobInfo / StreamLogs calls; a nil entry, or running off the end, means the call succeeds
*/
type OrchestratorClientMock struct {
	mu sync.Mutex

	Snapshots     []*models.JobSnapshot
	JobInfoErrors []error
	ProbeResults  []ProbeResult
	StreamErrors  []error

	JobInfoCalls int
	ProbeCalls   int
	StreamCalls  int
	Streams      []*LogStreamMock
}

func (m *OrchestratorClientMock) GetJobInfo(ctx context.Context, jobName string) (*models.JobSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.JobInfoCalls += 1
	if m.JobInfoCalls <= len(m.JobInfoErrors) && m.JobInfoErrors[m.JobInfoCalls-1] != nil {
		return nil, m.JobInfoErrors[m.JobInfoCalls-1]
	}
	if len(m.Snapshots) == 0 {
		return &models.JobSnapshot{}, nil
	}
	idx := m.JobInfoCalls - 1
	if idx >= len(m.Snapshots) {
		idx = len(m.Snapshots) - 1
	}
	return m.Snapshots[idx], nil
}

func (m *OrchestratorClientMock) ProbeContainer(ctx context.Context, jobName string) (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProbeCalls += 1
	if len(m.ProbeResults) == 0 {
		return false, ""
	}
	idx := m.ProbeCalls - 1
	if idx >= len(m.ProbeResults) {
		idx = len(m.ProbeResults) - 1
	}
	return m.ProbeResults[idx].Ok, m.ProbeResults[idx].Output
}

func (m *OrchestratorClientMock) StreamLogs(ctx context.Context, jobName string, out io.Writer) (LogStream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StreamCalls += 1
	if m.StreamCalls <= len(m.StreamErrors) && m.StreamErrors[m.StreamCalls-1] != nil {
		return nil, m.StreamErrors[m.StreamCalls-1]
	}
	stream := &LogStreamMock{}
	m.Streams = append(m.Streams, stream)
	return stream, nil
}
