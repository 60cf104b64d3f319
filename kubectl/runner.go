package kubectl

import (
	"bytes"
	"context"
	"log"
	"os/exec"
)

/**
helper function to run the given command and capture output
*/
func runCommand(cmd *exec.Cmd) ([]byte, []byte, error) {
	var outContent bytes.Buffer
	var errContent bytes.Buffer
	cmd.Stdout = &outContent
	cmd.Stderr = &errContent

	runErr := cmd.Run()
	if runErr != nil {
		if _, isExitError := runErr.(*exec.ExitError); !isExitError {
			log.Print("ERROR could not run subprocess: ", runErr)
		}
		return outContent.Bytes(), errContent.Bytes(), runErr
	}
	return outContent.Bytes(), errContent.Bytes(), nil
}

func (k *KubectlClient) command(ctx context.Context, args ...string) *exec.Cmd {
	fullArgs := make([]string, 0, len(args)+4)
	if k.kubeConfig != "" {
		fullArgs = append(fullArgs, "--kubeconfig", k.kubeConfig)
	}
	if k.namespace != "" {
		fullArgs = append(fullArgs, "--namespace", k.namespace)
	}
	fullArgs = append(fullArgs, args...)
	return exec.CommandContext(ctx, k.kubectlPath, fullArgs...)
}
