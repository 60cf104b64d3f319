package kubectl

import (
	"context"
	"errors"
	"fmt"
	"github.com/guardian/jobwaiter/common/models"
	"github.com/guardian/jobwaiter/kubeclient"
	"github.com/guardian/jobwaiter/waiter"
	"io"
	batchv1 "k8s.io/api/batch/v1"
	"k8s.io/client-go/kubernetes/scheme"
	"log"
	"os"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"
)

var notFoundMatcher = regexp.MustCompile(`NotFound|not found`)

/**
OrchestratorClient that shells out to kubectl, for environments where kubectl is set up (auth plugins,
proxies etc.) but building an API client is not practical
*/
type KubectlClient struct {
	kubectlPath string
	namespace   string
	kubeConfig  string
}

func NewKubectlClient(kubectlPath string, namespace string, kubeConfig string) *KubectlClient {
	if kubectlPath == "" {
		kubectlPath = "kubectl"
	}
	return &KubectlClient{
		kubectlPath: kubectlPath,
		namespace:   namespace,
		kubeConfig:  kubeConfig,
	}
}

/**
decode `kubectl get job -o json` output into a Job
*/
func decodeJob(content []byte) (*batchv1.Job, error) {
	decode := scheme.Codecs.UniversalDeserializer()

	obj, _, err := decode.Decode(content, nil, nil)
	if err != nil {
		return nil, err
	}

	switch typed := obj.(type) {
	case *batchv1.Job:
		return typed, nil
	default:
		log.Printf("ERROR decodeJob expected a job but got %s instead", reflect.TypeOf(obj).String())
		return nil, errors.New("wrong object type")
	}
}

func (k *KubectlClient) GetJobInfo(ctx context.Context, jobName string) (*models.JobSnapshot, error) {
	stdout, stderr, err := runCommand(k.command(ctx, "get", "jobs/"+jobName, "-o", "json"))
	if err != nil {
		message := strings.TrimSpace(string(stderr))
		if notFoundMatcher.MatchString(message) {
			return nil, fmt.Errorf("%s: %w", message, waiter.ErrJobNotFound)
		}
		if message == "" {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %s", err, message)
	}

	job, decodeErr := decodeJob(stdout)
	if decodeErr != nil {
		return nil, decodeErr
	}
	return kubeclient.SnapshotFromJob(job)
}

/**
cheaper way to pull container state: ask for the last line of output. On failure kubectl prints the
reason the container is not running to stderr
*/
func (k *KubectlClient) ProbeContainer(ctx context.Context, jobName string) (bool, string) {
	stdout, stderr, err := runCommand(k.command(ctx, "logs", "--tail=1", "job/"+jobName))
	if err != nil {
		if len(stderr) == 0 {
			return false, err.Error()
		}
		return false, string(stderr)
	}
	return true, string(stdout)
}

/**
runs `kubectl logs -f` for the job, stdout to `out` and stderr to our own stderr
*/
func (k *KubectlClient) StreamLogs(ctx context.Context, jobName string, out io.Writer) (waiter.LogStream, error) {
	streamCtx, cancel := context.WithCancel(ctx)
	cmd := k.command(streamCtx, "logs", "-f", "job/"+jobName)
	cmd.Stdout = out
	cmd.Stderr = os.Stderr
	cmd.WaitDelay = 2 * time.Second

	startErr := cmd.Start()
	if startErr != nil {
		cancel()
		log.Printf("ERROR StreamLogs could not start %s: %s", k.kubectlPath, startErr)
		return nil, startErr
	}

	stream := &followProcess{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(stream.done)
		stream.waitErr = cmd.Wait()
	}()
	return stream, nil
}

/**
a running `kubectl logs -f`. Cancel kills the process and waits for it to be reaped
*/
type followProcess struct {
	cancel  func()
	done    chan struct{}
	once    sync.Once
	waitErr error
}

func (f *followProcess) Cancel() {
	f.once.Do(func() {
		f.cancel()
		<-f.done
	})
}

func (f *followProcess) Done() <-chan struct{} {
	return f.done
}
