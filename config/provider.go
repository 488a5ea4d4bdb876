package config

import (
	"bytes"
	"context"
	"sync/atomic"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/zeebo/errs"
	"golang.org/x/sync/singleflight"
)

// Error is the class of all configuration failures. They are fatal for the
// request that hit them and surface as a generic 500.
var Error = errs.Class("config")

var requiredKeys = []string{
	"uploadExpiration",
	"downloadExpiration",
	"repo.owner",
	"repo.repo",
}

// Repository identifies the repository whose permissions gate LFS access.
type Repository struct {
	Owner string
	Name  string
}

func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// Runtime is the configuration record stored next to the LFS objects.
// Expirations are in seconds.
type Runtime struct {
	UploadExpiration   int
	DownloadExpiration int
	Repo               Repository
}

func (r *Runtime) UploadTTL() time.Duration {
	return time.Duration(r.UploadExpiration) * time.Second
}

func (r *Runtime) DownloadTTL() time.Duration {
	return time.Duration(r.DownloadExpiration) * time.Second
}

// Fetcher reads a raw object from the durable store.
type Fetcher interface {
	FetchObject(ctx context.Context, key string) ([]byte, error)
}

// Provider loads the Runtime record once and hands the same value to every caller.
type Provider struct {
	fetcher Fetcher
	key     string

	group   singleflight.Group
	runtime atomic.Pointer[Runtime]
}

func NewProvider(fetcher Fetcher, key string) *Provider {
	return &Provider{
		fetcher: fetcher,
		key:     key,
	}
}

// Load returns the memoized Runtime, fetching it on first use. Concurrent first
// callers share a single fetch. Failures are returned to every waiter and are
// not memoized.
func (p *Provider) Load(ctx context.Context) (*Runtime, error) {
	if rt := p.runtime.Load(); rt != nil {
		return rt, nil
	}

	// The fetch is shared, so one caller's cancellation must not fail the rest.
	fetchCtx := context.WithoutCancel(ctx)

	v, err, _ := p.group.Do(p.key, func() (interface{}, error) {
		if rt := p.runtime.Load(); rt != nil {
			return rt, nil
		}

		logger.Infof("loading config from %q", p.key)

		data, err := p.fetcher.FetchObject(fetchCtx, p.key)
		if err != nil {
			return nil, Error.Wrap(err)
		}

		rt, err := ParseRuntime(data)
		if err != nil {
			return nil, err
		}

		p.runtime.Store(rt)
		logger.Infof("config loaded for repository %s", rt.Repo)

		return rt, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Runtime), nil
}

// ParseRuntime decodes a JSON config record and checks it is usable.
func ParseRuntime(data []byte) (*Runtime, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, Error.New("config record is empty")
	}

	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, Error.Wrap(err)
	}

	for _, key := range requiredKeys {
		if !v.IsSet(key) {
			return nil, Error.New("config record is missing %q", key)
		}
	}

	rt := &Runtime{
		UploadExpiration:   v.GetInt("uploadExpiration"),
		DownloadExpiration: v.GetInt("downloadExpiration"),
		Repo: Repository{
			Owner: v.GetString("repo.owner"),
			Name:  v.GetString("repo.repo"),
		},
	}

	if rt.UploadExpiration <= 0 || rt.DownloadExpiration <= 0 {
		return nil, Error.New("expirations must be positive, got upload=%d download=%d",
			rt.UploadExpiration, rt.DownloadExpiration)
	}

	if rt.Repo.Owner == "" || rt.Repo.Name == "" {
		return nil, Error.New("repository owner and name must be set")
	}

	return rt, nil
}
