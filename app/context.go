// Package app assembles the long-lived collaborators shared by every request.
package app

import (
	"net/http"
	"time"

	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"github.com/vela-games/lfsbatch/auth"
	"github.com/vela-games/lfsbatch/config"
	"github.com/vela-games/lfsbatch/exporter"
	"github.com/vela-games/lfsbatch/handlers"
	"github.com/vela-games/lfsbatch/services"
)

const identityTimeout = 10 * time.Second

// Context is built once at startup and handed to the router. Everything in it
// is safe for concurrent use.
type Context struct {
	Settings   *config.Config
	Runtime    *config.Provider
	Gateway    *auth.Gateway
	LFSHandler *handlers.LFSHandler
}

func NewContext(settings *config.Config, runtime *config.Provider, gateway *auth.Gateway, lfsHandler *handlers.LFSHandler) *Context {
	return &Context{
		Settings:   settings,
		Runtime:    runtime,
		Gateway:    gateway,
		LFSHandler: lfsHandler,
	}
}

// RegisterProviders registers every constructor with the container, leaf first.
func RegisterProviders(container *dig.Container) error {
	providers := []interface{}{
		config.GetConfig,
		newRegisterer,
		exporter.NewCollector,
		newAWSService,
		newRuntimeProvider,
		newIdentityService,
		newGateway,
		newLFSHandler,
		NewContext,
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return err
		}
	}

	return nil
}

// Build resolves a Context from a fresh container.
func Build() (*Context, error) {
	container := dig.New()

	if err := RegisterProviders(container); err != nil {
		return nil, err
	}

	var appContext *Context
	if err := container.Invoke(func(c *Context) {
		appContext = c
	}); err != nil {
		return nil, err
	}

	return appContext, nil
}

func newRegisterer() stdprometheus.Registerer {
	return stdprometheus.DefaultRegisterer
}

func newAWSService(settings *config.Config) (services.AWSService, error) {
	return services.NewAWSService(settings.S3Bucket, settings.S3UseAccelerate)
}

func newRuntimeProvider(settings *config.Config, store services.AWSService) *config.Provider {
	return config.NewProvider(store, settings.ConfigKey)
}

func newIdentityService(settings *config.Config) services.IdentityService {
	return services.NewGitHubService(&http.Client{Timeout: identityTimeout}, settings.GithubBaseURL)
}

func newGateway(identity services.IdentityService, runtime *config.Provider, collector *exporter.LFSBatchCollector) *auth.Gateway {
	resource := auth.Resource{
		Method: http.MethodPost,
		Path:   handlers.BatchPath,
	}

	return auth.NewGateway(identity, runtime, resource, collector.AuthDenied)
}

func newLFSHandler(settings *config.Config, store services.AWSService, runtime *config.Provider, collector *exporter.LFSBatchCollector) *handlers.LFSHandler {
	return handlers.NewLFSHandler(store, runtime, collector, settings.BatchConcurrency)
}
