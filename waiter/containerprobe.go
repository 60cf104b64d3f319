package waiter

import (
	"context"
	"github.com/guardian/jobwaiter/common/models"
	"regexp"
)

var imagePullMatcher = regexp.MustCompile(`image can't be pulled|trying and failing to pull image|ErrImagePull|ImagePullBackOff|InvalidImageName`)
var creatingMatcher = regexp.MustCompile(`ContainerCreating|PodInitializing`)

/**
turn the outcome of a container diagnostic into a ContainerState.
anything we don't recognise is CONTAINER_UNKNOWN, which just means "try again next tick"
*/
func ClassifyDiagnostic(ok bool, output string) models.ContainerState {
	if ok {
		return models.CONTAINER_RUNNING
	}
	if imagePullMatcher.MatchString(output) {
		return models.CONTAINER_ERR_IMAGE_PULL
	}
	if creatingMatcher.MatchString(output) {
		return models.CONTAINER_CREATING
	}
	return models.CONTAINER_UNKNOWN
}

func ProbeContainer(ctx context.Context, client OrchestratorClient, jobName string) models.ContainerState {
	ok, output := client.ProbeContainer(ctx, jobName)
	return ClassifyDiagnostic(ok, output)
}
