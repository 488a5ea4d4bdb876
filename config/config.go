package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Config holds the process settings read from the environment at startup.
// The repository and expiry settings live in the runtime record loaded by Provider.
type Config struct {
	DebugMode                bool   `split_words:"true" default:"false"`
	Port                     int    `default:"8080"`
	S3Bucket                 string `split_words:"true" required:"true"`
	S3UseAccelerate          bool   `split_words:"true" default:"false"`
	ConfigKey                string `split_words:"true" default:"config.json"`
	GithubBaseURL            string `split_words:"true"`
	BatchConcurrency         int    `split_words:"true" default:"8"`
	EnablePrometheusExporter bool   `split_words:"true" default:"false"`
}

func GetConfig() (*Config, error) {
	var serviceConfiguration Config

	err := envconfig.Process("app", &serviceConfiguration)
	if err != nil {
		return nil, err
	}

	if serviceConfiguration.S3Bucket == "" {
		return nil, Error.New("APP_S3_BUCKET must not be empty")
	}

	if serviceConfiguration.BatchConcurrency < 1 {
		serviceConfiguration.BatchConcurrency = 1
	}

	return &serviceConfiguration, nil
}
