package kubeclient

import (
	"context"
	"fmt"
	"github.com/guardian/jobwaiter/common/models"
	"github.com/guardian/jobwaiter/waiter"
	"github.com/jinzhu/copier"
	"io"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"log"
	"sort"
)

/**
OrchestratorClient that talks to the Kubernetes API directly
*/
type KubeClient struct {
	clientset kubernetes.Interface
	namespace string
}

func NewKubeClient(clientset kubernetes.Interface, namespace string) *KubeClient {
	return &KubeClient{
		clientset: clientset,
		namespace: namespace,
	}
}

func (k *KubeClient) Namespace() string {
	return k.namespace
}

func (k *KubeClient) getJob(ctx context.Context, jobName string) (*batchv1.Job, error) {
	job, err := k.clientset.BatchV1().Jobs(k.namespace).Get(ctx, jobName, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, fmt.Errorf("%s: %w", err, waiter.ErrJobNotFound)
		}
		return nil, err
	}
	return job, nil
}

/**
convert the kubernetes view of a job into the numbers the classifier needs
*/
func SnapshotFromJob(job *batchv1.Job) (*models.JobSnapshot, error) {
	var snapshot models.JobSnapshot
	copyErr := copier.Copy(&snapshot, &job.Status)
	if copyErr != nil {
		return nil, copyErr
	}

	if job.Spec.Completions != nil {
		completions := *job.Spec.Completions
		snapshot.Completions = &completions
	}
	if job.Spec.BackoffLimit != nil {
		backoffLimit := *job.Spec.BackoffLimit
		snapshot.BackoffLimit = &backoffLimit
	}

	snapshot.ConditionRecords = make([]models.JobCondition, len(job.Status.Conditions))
	for i, cond := range job.Status.Conditions {
		snapshot.ConditionRecords[i] = models.JobCondition{
			Type:   string(cond.Type),
			Reason: cond.Reason,
		}
	}
	return &snapshot, nil
}

func (k *KubeClient) GetJobInfo(ctx context.Context, jobName string) (*models.JobSnapshot, error) {
	job, err := k.getJob(ctx, jobName)
	if err != nil {
		return nil, err
	}
	return SnapshotFromJob(job)
}

/**
find the pod to read logs from. A job may have several pods if earlier attempts failed, the newest one
is the one that matters
*/
func (k *KubeClient) findJobPod(ctx context.Context, jobName string) (*corev1.Pod, error) {
	job, err := k.getJob(ctx, jobName)
	if err != nil {
		return nil, err
	}

	var selector string
	if job.Spec.Selector != nil {
		sel, selErr := metav1.LabelSelectorAsSelector(job.Spec.Selector)
		if selErr != nil {
			return nil, selErr
		}
		selector = sel.String()
	} else {
		selector = fmt.Sprintf("job-name=%s", jobName)
	}

	podList, listErr := k.clientset.CoreV1().Pods(k.namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	if listErr != nil {
		log.Printf("ERROR findJobPod could not list pods for job/%s: %s", jobName, listErr)
		return nil, listErr
	}
	if len(podList.Items) == 0 {
		return nil, fmt.Errorf("no pods found for job/%s", jobName)
	}

	pods := podList.Items
	sort.SliceStable(pods, func(i, j int) bool {
		return pods[j].CreationTimestamp.Before(&pods[i].CreationTimestamp)
	})
	rtn := pods[0]
	return &rtn, nil
}

func primaryContainer(pod *corev1.Pod) string {
	if len(pod.Spec.Containers) == 0 {
		return ""
	}
	return pod.Spec.Containers[0].Name
}

/**
cheap way to find the container state: ask for the last line of its log. The API refuses with a
"waiting to start: <reason>" message if the container has not started
*/
func (k *KubeClient) ProbeContainer(ctx context.Context, jobName string) (bool, string) {
	pod, err := k.findJobPod(ctx, jobName)
	if err != nil {
		return false, err.Error()
	}

	tailLines := int64(1)
	opts := corev1.PodLogOptions{
		Container: primaryContainer(pod),
		TailLines: &tailLines,
	}
	content, logErr := k.clientset.CoreV1().Pods(k.namespace).GetLogs(pod.Name, &opts).DoRaw(ctx)
	if logErr != nil {
		return false, logErr.Error()
	}
	return true, string(content)
}

/**
follow the primary container's log, copying it to `out` until cancelled or the container exits
*/
func (k *KubeClient) StreamLogs(ctx context.Context, jobName string, out io.Writer) (waiter.LogStream, error) {
	pod, err := k.findJobPod(ctx, jobName)
	if err != nil {
		return nil, err
	}

	opts := corev1.PodLogOptions{
		Container: primaryContainer(pod),
		Follow:    true,
	}
	streamCtx, cancel := context.WithCancel(ctx)
	podLogStream, streamErr := k.clientset.CoreV1().Pods(k.namespace).GetLogs(pod.Name, &opts).Stream(streamCtx)
	if streamErr != nil {
		cancel()
		log.Printf("ERROR StreamLogs could not open log stream for %s: %s", pod.Name, streamErr)
		return nil, streamErr
	}

	return newPodLogStream(podLogStream, out, cancel), nil
}
