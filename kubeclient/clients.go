package kubeclient

import (
	"io/ioutil"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"log"
	"os"
	"strings"
)

const serviceAccountNamespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

func clientConfig(kubeConfigPath string) clientcmd.ClientConfig {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeConfigPath != "" {
		loadingRules.ExplicitPath = kubeConfigPath
	}
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, &clientcmd.ConfigOverrides{})
}

func inCluster() bool {
	return os.Getenv("KUBERNETES_SERVICE_HOST") != "" && os.Getenv("KUBERNETES_SERVICE_PORT") != ""
}

/**
the given kubeconfig if there is one, otherwise the pod's service account when running in the cluster,
otherwise the usual kubectl rules ($KUBECONFIG, then ~/.kube/config)
*/
func restConfig(kubeConfigPath string) (*rest.Config, error) {
	if kubeConfigPath == "" && inCluster() {
		return rest.InClusterConfig()
	}
	return clientConfig(kubeConfigPath).ClientConfig()
}

func GetK8Client(kubeConfigPath string) (*kubernetes.Clientset, error) {
	config, confErr := restConfig(kubeConfigPath)
	if confErr != nil {
		log.Printf("ERROR: Can't work out how to reach Kubernetes: %s", confErr)
		return nil, confErr
	}

	k8Client, cliErr := kubernetes.NewForConfig(config)
	if cliErr != nil {
		log.Printf("ERROR: Can't establish communication with Kubernetes: %s", cliErr)
		return nil, cliErr
	}
	return k8Client, nil
}

/**
work out which namespace to look for the job in. An explicitly configured namespace wins, then the
service account namespace if we are in a pod, then the kubeconfig context's namespace, then "default"
*/
func ResolveNamespace(configured string, kubeConfigPath string) string {
	if configured != "" {
		return configured
	}

	if kubeConfigPath == "" {
		content, readErr := ioutil.ReadFile(serviceAccountNamespaceFile)
		if readErr == nil && strings.TrimSpace(string(content)) != "" {
			return strings.TrimSpace(string(content))
		}
		if readErr != nil && !os.IsNotExist(readErr) {
			log.Print("Could not read in k8s namespace: ", readErr)
		}
	}

	ns, _, nsErr := clientConfig(kubeConfigPath).Namespace()
	if nsErr != nil || ns == "" {
		return "default"
	}
	return ns
}
