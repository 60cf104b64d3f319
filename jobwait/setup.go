package main

import (
	"flag"
	"fmt"
	"github.com/go-redis/redis/v7"
	"github.com/guardian/jobwaiter/common/helpers"
	"github.com/guardian/jobwaiter/common/models"
	"github.com/guardian/jobwaiter/kubeclient"
	"github.com/guardian/jobwaiter/kubectl"
	"github.com/guardian/jobwaiter/waiter"
	"io"
	"log"
	"strings"
	"time"
)

type commandFlags struct {
	configPath  *string
	kubeConfig  *string
	namespace   *string
	backend     *string
	kubectlPath *string
	interval    *time.Duration
	timeout     *time.Duration
	noLogs      *bool
	debug       *bool
	metricsFile *string
	redisAddr   *string
	last        *bool
	history     *int64
}

func registerFlags(fs *flag.FlagSet) *commandFlags {
	return &commandFlags{
		configPath:  fs.String("config", "", "optional yaml config file"),
		kubeConfig:  fs.String("kubeconfig", "", ".kubeconfig file for running out of cluster. If not specified then in-cluster initialisation will be tried, then the default kubeconfig"),
		namespace:   fs.String("namespace", "", "namespace the job is in. Defaults to the current context's namespace"),
		backend:     fs.String("backend", "", "how to talk to the cluster, 'api' or 'kubectl'"),
		kubectlPath: fs.String("kubectl", "", "kubectl binary to use with the kubectl backend"),
		interval:    fs.Duration("interval", 0, "how often to poll the job"),
		timeout:     fs.Duration("timeout", 0, "give up waiting after this long. 0 means wait forever"),
		noLogs:      fs.Bool("nologs", false, "don't follow the job's logs"),
		debug:       fs.Bool("debug", false, "dump every poll to the log"),
		metricsFile: fs.String("metricsfile", "", "write a prometheus textfile with wait metrics here"),
		redisAddr:   fs.String("redis", "", "record the outcome in the redis server at this address"),
		last:        fs.Bool("last", false, "don't wait, print the last outcome recorded in redis for the job"),
		history:     fs.Int64("history", 0, "don't wait, print this many recorded outcomes from redis, newest first"),
	}
}

/**
parse the command line and return the job name. Flags may come before or after the job name; anything
else after it is an error
*/
func parseArgs(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	jobName := fs.Arg(0)
	if fs.NArg() > 1 {
		if err := fs.Parse(fs.Args()[1:]); err != nil {
			return "", err
		}
		if fs.NArg() > 0 {
			return "", fmt.Errorf("unexpected arguments after job name: %s", strings.Join(fs.Args(), " "))
		}
	}
	return jobName, nil
}

/**
build the effective config: defaults, then the config file, then JOBWAIT_* environment, then any flags
that were given on the command line
*/
func loadConfig(fs *flag.FlagSet, flags *commandFlags, lookupEnv func(string) (string, bool)) (*helpers.Config, error) {
	var conf *helpers.Config
	if *flags.configPath != "" {
		log.Printf("Reading config from %s", *flags.configPath)
		var readErr error
		conf, readErr = helpers.ReadConfig(*flags.configPath)
		if readErr != nil {
			return nil, readErr
		}
	} else {
		conf = helpers.DefaultConfig()
	}

	envErr := helpers.ApplyEnvOverrides(conf, lookupEnv)
	if envErr != nil {
		return nil, envErr
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "kubeconfig":
			conf.Kubernetes.KubeConfig = *flags.kubeConfig
		case "namespace":
			conf.Kubernetes.Namespace = *flags.namespace
		case "backend":
			conf.Kubernetes.Backend = *flags.backend
		case "kubectl":
			conf.Kubernetes.KubectlPath = *flags.kubectlPath
		case "interval":
			conf.PollInterval = *flags.interval
		case "timeout":
			conf.Timeout = *flags.timeout
		case "nologs":
			conf.FollowLogs = !*flags.noLogs
		case "metricsfile":
			conf.MetricsFile = *flags.metricsFile
		case "redis":
			conf.Redis.Address = *flags.redisAddr
		}
	})

	return conf, conf.Validate()
}

/**
returns the client to use and the namespace it is looking in
*/
func buildClient(conf *helpers.Config) (waiter.OrchestratorClient, string, error) {
	namespace := kubeclient.ResolveNamespace(conf.Kubernetes.Namespace, conf.Kubernetes.KubeConfig)

	if conf.Kubernetes.Backend == helpers.BACKEND_KUBECTL {
		log.Printf("Using %s for cluster access, namespace %s", conf.Kubernetes.KubectlPath, namespace)
		return kubectl.NewKubectlClient(conf.Kubernetes.KubectlPath, namespace, conf.Kubernetes.KubeConfig), namespace, nil
	}

	k8Client, cliErr := kubeclient.GetK8Client(conf.Kubernetes.KubeConfig)
	if cliErr != nil {
		return nil, namespace, cliErr
	}
	log.Printf("Got k8client, namespace %s", namespace)
	return kubeclient.NewKubeClient(k8Client, namespace), namespace, nil
}

func SetupRedis(conf *helpers.Config) (*redis.Client, error) {
	log.Printf("Connecting to Redis on %s", conf.Redis.Address)
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Address,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DBNum,
	})

	_, err := client.Ping().Result()
	if err != nil {
		log.Printf("Could not contact Redis: %s", err)
		return nil, err
	}
	return client, nil
}

/**
store the outcome. Failures here are logged but never change the exit code
*/
func recordOutcome(conf *helpers.Config, namespace string, jobName string, result *waiter.WaitResult, redisClient redis.Cmdable) {
	rec := models.NewOutcomeRecord(result.Stats.SessionId, namespace, jobName, result.Outcome, result.Err, result.Stats.StartTime, result.Stats.EndTime, result.Stats.Ticks)
	if err := models.RecordOutcome(&rec, conf.Redis.HistoryLength, redisClient); err != nil {
		log.Printf("ERROR could not record outcome for job/%s: %s", jobName, err)
	}
}

func writeMetrics(conf *helpers.Config, namespace string, jobName string, result *waiter.WaitResult) {
	m := helpers.WaitMetrics{
		JobName:        jobName,
		Namespace:      namespace,
		Outcome:        result.Outcome,
		Ticks:          result.Stats.Ticks,
		Probes:         result.Stats.Probes,
		StreamsStarted: result.Stats.StreamsStarted,
		Elapsed:        result.Stats.Elapsed(),
	}
	if err := helpers.WriteMetricsFile(conf.MetricsFile, &m); err != nil {
		log.Printf("ERROR could not write metrics for job/%s: %s", jobName, err)
	}
}

/**
0 only if the job completed
*/
func exitCodeFor(result *waiter.WaitResult) int {
	if result.Err == nil && result.Outcome.IsSuccess() {
		return 0
	}
	return 1
}

func printRecord(out io.Writer, rec *models.OutcomeRecord) {
	fmt.Fprintf(out, "%s/%s status: %s at %s after %d polls", rec.Namespace, rec.JobName, rec.Outcome, rec.EndTime.Format(time.RFC3339), rec.Ticks)
	if rec.ErrorMsg != "" {
		fmt.Fprintf(out, " (%s)", rec.ErrorMsg)
	}
	fmt.Fprintln(out)
}

/**
print what has been recorded instead of waiting: the history list if historyLimit>0, otherwise the last
outcome for the job. Returns the exit code, 0 only if something was found and the last outcome (if asked
for) was a success
*/
func showRecorded(out io.Writer, namespace string, jobName string, historyLimit int64, redisClient redis.Cmdable) int {
	if historyLimit > 0 {
		records, listErr := models.ListOutcomeHistory(historyLimit, redisClient)
		if listErr != nil {
			log.Printf("ERROR could not read outcome history: %s", listErr)
			return 1
		}
		for i := range records {
			printRecord(out, &records[i])
		}
		if len(records) == 0 {
			return 1
		}
		return 0
	}

	rec, getErr := models.GetLastOutcome(namespace, jobName, redisClient)
	if getErr != nil {
		log.Printf("ERROR could not read last outcome for job/%s: %s", jobName, getErr)
		return 1
	}
	if rec == nil {
		fmt.Fprintf(out, "no outcome recorded for job/%s in %s\n", jobName, namespace)
		return 1
	}
	printRecord(out, rec)
	if rec.Success {
		return 0
	}
	return 1
}
