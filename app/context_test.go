package app

import (
	"testing"

	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"
)

func TestRegisterProviders(t *testing.T) {
	t.Setenv("APP_S3_BUCKET", "lfs-bucket")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("APP_BATCH_CONCURRENCY", "3")

	container := dig.New()
	require.NoError(t, RegisterProviders(container))
	require.NoError(t, container.Decorate(func(stdprometheus.Registerer) stdprometheus.Registerer {
		return stdprometheus.NewRegistry()
	}))

	var appContext *Context
	err := container.Invoke(func(c *Context) {
		appContext = c
	})
	require.NoError(t, err)

	assert.Equal(t, "lfs-bucket", appContext.Settings.S3Bucket)
	assert.Equal(t, 3, appContext.Settings.BatchConcurrency)
	assert.NotNil(t, appContext.Runtime)
	assert.NotNil(t, appContext.Gateway)
	assert.NotNil(t, appContext.LFSHandler)
}

func TestBuildWithoutBucket(t *testing.T) {
	t.Setenv("APP_S3_BUCKET", "")

	_, err := Build()
	assert.Error(t, err)
}
