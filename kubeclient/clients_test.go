package kubeclient

import (
	"io/ioutil"
	"os"
	"path"
	"testing"
)

const testKubeConfig = `apiVersion: v1
kind: Config
clusters:
- name: test
  cluster:
    server: https://k8s.example.invalid:6443
contexts:
- name: test
  context:
    cluster: test
    user: test
    namespace: batch
current-context: test
users:
- name: test
  user:
    token: not-a-real-token
`

func writeKubeConfig(t *testing.T) string {
	tempDir, dirErr := ioutil.TempDir("", "kubeclient")
	if dirErr != nil {
		t.Fatal(dirErr)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	configPath := path.Join(tempDir, "kubeconfig")
	if writeErr := ioutil.WriteFile(configPath, []byte(testKubeConfig), 0600); writeErr != nil {
		t.Fatal(writeErr)
	}
	return configPath
}

func TestRestConfigExplicitKubeconfig(t *testing.T) {
	configPath := writeKubeConfig(t)
	//an explicit kubeconfig wins even inside a pod
	t.Setenv("KUBERNETES_SERVICE_HOST", "10.0.0.1")
	t.Setenv("KUBERNETES_SERVICE_PORT", "443")

	config, err := restConfig(configPath)
	if err != nil {
		t.Fatalf("restConfig failed unexpectedly: %s", err)
	}
	if config.Host != "https://k8s.example.invalid:6443" {
		t.Errorf("wrong host from kubeconfig: %s", config.Host)
	}
	if config.BearerToken != "not-a-real-token" {
		t.Errorf("credentials not loaded from kubeconfig")
	}

	client, cliErr := GetK8Client(configPath)
	if cliErr != nil || client == nil {
		t.Errorf("GetK8Client failed unexpectedly: %v", cliErr)
	}
}

func TestResolveNamespace(t *testing.T) {
	configPath := writeKubeConfig(t)

	if ns := ResolveNamespace("explicit", configPath); ns != "explicit" {
		t.Errorf("configured namespace should win, got %s", ns)
	}
	if ns := ResolveNamespace("", configPath); ns != "batch" {
		t.Errorf("expected the kubeconfig context namespace, got %s", ns)
	}
}
