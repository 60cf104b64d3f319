package helpers

import (
	"errors"
	"fmt"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v2"
	"io/ioutil"
	"log"
	"strings"
	"time"
)

const (
	BACKEND_API     = "api"
	BACKEND_KUBECTL = "kubectl"
)

type KubernetesConfig struct {
	KubeConfig  string `yaml:"kubeconfig" mapstructure:"kubeconfig"`
	Namespace   string `yaml:"namespace" mapstructure:"namespace"`
	Backend     string `yaml:"backend" mapstructure:"backend"`
	KubectlPath string `yaml:"kubectlPath" mapstructure:"kubectlPath"`
}

type RedisConfig struct {
	Address       string `yaml:"address" mapstructure:"address"`
	Password      string `yaml:"password" mapstructure:"password"`
	DBNum         int    `yaml:"dbNum" mapstructure:"dbNum"`
	HistoryLength int64  `yaml:"historyLength" mapstructure:"historyLength"`
}

type Config struct {
	Kubernetes   KubernetesConfig `yaml:"kubernetes" mapstructure:"kubernetes"`
	Redis        RedisConfig      `yaml:"redis" mapstructure:"redis"`
	PollInterval time.Duration    `yaml:"pollInterval" mapstructure:"pollInterval"`
	Timeout      time.Duration    `yaml:"timeout" mapstructure:"timeout"`
	FollowLogs   bool             `yaml:"followLogs" mapstructure:"followLogs"`
	MetricsFile  string           `yaml:"metricsFile" mapstructure:"metricsFile"`
}

/**
environment variable -> dotted config path. Anything set here overrides the config file
*/
var envOverrides = map[string]string{
	"JOBWAIT_KUBECONFIG":     "kubernetes.kubeconfig",
	"JOBWAIT_NAMESPACE":      "kubernetes.namespace",
	"JOBWAIT_BACKEND":        "kubernetes.backend",
	"JOBWAIT_KUBECTL":        "kubernetes.kubectlPath",
	"JOBWAIT_REDIS_ADDRESS":  "redis.address",
	"JOBWAIT_REDIS_PASSWORD": "redis.password",
	"JOBWAIT_REDIS_DB":       "redis.dbNum",
	"JOBWAIT_REDIS_HISTORY":  "redis.historyLength",
	"JOBWAIT_POLL_INTERVAL":  "pollInterval",
	"JOBWAIT_TIMEOUT":        "timeout",
	"JOBWAIT_FOLLOW_LOGS":    "followLogs",
	"JOBWAIT_METRICS_FILE":   "metricsFile",
}

func DefaultConfig() *Config {
	return &Config{
		Kubernetes: KubernetesConfig{
			Backend:     BACKEND_API,
			KubectlPath: "kubectl",
		},
		Redis: RedisConfig{
			HistoryLength: 100,
		},
		PollInterval: 1 * time.Second,
		FollowLogs:   true,
	}
}

/**
read the given yaml file on top of the default config. Keys not present in the file keep their defaults.
*/
func ReadConfig(configFile string) (*Config, error) {
	configBytes, readErr := ioutil.ReadFile(configFile)
	if readErr != nil {
		log.Printf("Could not read config from '%s': %s\n", configFile, readErr)
		return nil, readErr
	}

	conf := DefaultConfig()

	err := yaml.Unmarshal(configBytes, conf)
	if err != nil {
		log.Printf("Could not understand config from '%s': %s\n", configFile, err)
		return nil, err
	}
	return conf, nil
}

/**
overlay JOBWAIT_* environment variables onto the config. `lookup` is normally os.LookupEnv.
values are weakly typed, so "true", "1", "5s" etc. all decode into the right field types
*/
func ApplyEnvOverrides(conf *Config, lookup func(string) (string, bool)) error {
	overrides := make(map[string]interface{})

	for envName, path := range envOverrides {
		value, isSet := lookup(envName)
		if !isSet {
			continue
		}
		setNested(overrides, strings.Split(path, "."), value)
	}

	if len(overrides) == 0 {
		return nil
	}

	decoder, setupErr := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           conf,
	})
	if setupErr != nil {
		return setupErr
	}
	decodeErr := decoder.Decode(overrides)
	if decodeErr != nil {
		log.Printf("ERROR ApplyEnvOverrides invalid environment value: %s", decodeErr)
		return decodeErr
	}
	return nil
}

func setNested(target map[string]interface{}, path []string, value string) {
	if len(path) == 1 {
		target[path[0]] = value
		return
	}
	child, haveChild := target[path[0]].(map[string]interface{})
	if !haveChild {
		child = make(map[string]interface{})
		target[path[0]] = child
	}
	setNested(child, path[1:], value)
}

func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return errors.New("pollInterval must be greater than zero")
	}
	if c.Timeout < 0 {
		return errors.New("timeout can't be negative")
	}
	switch c.Kubernetes.Backend {
	case BACKEND_API:
	case BACKEND_KUBECTL:
		if c.Kubernetes.KubectlPath == "" {
			return errors.New("kubectl backend needs kubectlPath")
		}
	default:
		return fmt.Errorf("backend '%s' is not recognised, expected %s or %s", c.Kubernetes.Backend, BACKEND_API, BACKEND_KUBECTL)
	}
	return nil
}
