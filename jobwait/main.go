package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/guardian/jobwaiter/kubeclient"
	"github.com/guardian/jobwaiter/waiter"
	"log"
	"os"
	"os/signal"
	"syscall"
)

/**
jobwait [flags] <job-name> [flags]

follows a kubernetes job until it has run to completion:
 - exits 0 if the job succeeded
 - exits 1 if the job failed, timed out, can't pull its image or can't be found

with -last or -history it only reports what previous runs recorded in redis.
*/
func main() {
	flags := registerFlags(flag.CommandLine)
	jobName, argErr := parseArgs(flag.CommandLine, os.Args[1:])
	if argErr != nil {
		fmt.Fprintln(os.Stderr, argErr)
		flag.Usage()
		os.Exit(1)
	}

	if jobName == "" && *flags.history <= 0 {
		fmt.Fprintln(os.Stderr, "job name not specified")
		flag.Usage()
		os.Exit(1)
	}

	conf, confErr := loadConfig(flag.CommandLine, flags, os.LookupEnv)
	if confErr != nil {
		log.Fatalf("Invalid configuration: %s", confErr)
	}

	if *flags.last || *flags.history > 0 {
		if conf.Redis.Address == "" {
			log.Fatal("No redis server configured, nothing to read outcomes from")
		}
		redisClient, redisErr := SetupRedis(conf)
		if redisErr != nil {
			os.Exit(1)
		}
		namespace := kubeclient.ResolveNamespace(conf.Kubernetes.Namespace, conf.Kubernetes.KubeConfig)
		code := showRecorded(os.Stdout, namespace, jobName, *flags.history, redisClient)
		redisClient.Close()
		os.Exit(code)
	}

	client, namespace, cliErr := buildClient(conf)
	if cliErr != nil {
		log.Fatalf("Could not get cluster client: %s", cliErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if conf.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, conf.Timeout)
		defer cancel()
	}

	driver := waiter.NewDriver(client,
		waiter.WithPollInterval(conf.PollInterval),
		waiter.WithLogOutput(os.Stdout),
		waiter.WithDebug(*flags.debug),
	)
	result := driver.RunToCompletionWithStats(ctx, jobName, conf.FollowLogs)

	if result.Err != nil {
		log.Printf("ERROR waiting for job/%s: %s", jobName, result.Err)
	}
	fmt.Printf("job/%s status: %s\n", jobName, result.Outcome)

	if conf.Redis.Address != "" {
		redisClient, redisErr := SetupRedis(conf)
		if redisErr == nil {
			recordOutcome(conf, namespace, jobName, &result, redisClient)
			redisClient.Close()
		}
	}
	if conf.MetricsFile != "" {
		writeMetrics(conf, namespace, jobName, &result)
	}

	code := exitCodeFor(&result)
	stop()
	os.Exit(code)
}
