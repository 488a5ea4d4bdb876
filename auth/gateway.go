// Package auth turns a Basic credential made of a GitHub login and access
// token into a Decision scoped to the LFS batch endpoint.
package auth

import (
	"context"
	"strings"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	logger "github.com/sirupsen/logrus"
	"github.com/zeebo/errs"

	"github.com/vela-games/lfsbatch/config"
	"github.com/vela-games/lfsbatch/services"
)

// Error is the class of authorization failures.
var Error = errs.Class("auth")

// ErrDenied is the only error Authorize returns. The cause is logged.
var ErrDenied = Error.New("unauthorized")

// Denial reasons, used for logs and the auth_denied counter.
const (
	ReasonCredentials = "credentials"
	ReasonIdentity    = "identity"
	ReasonMismatch    = "user_mismatch"
	ReasonConfig      = "config"
	ReasonPermissions = "permissions"
	ReasonNoAccess    = "no_access"
)

type ConfigLoader interface {
	Load(ctx context.Context) (*config.Runtime, error)
}

type Gateway struct {
	identity services.IdentityService
	config   ConfigLoader
	resource Resource
	denied   metrics.Counter
}

// NewGateway builds a Gateway whose decisions only cover resource. A nil
// denied counter discards the metric.
func NewGateway(identity services.IdentityService, cfg ConfigLoader, resource Resource, denied metrics.Counter) *Gateway {
	if denied == nil {
		denied = discard.NewCounter()
	}

	return &Gateway{
		identity: identity,
		config:   cfg,
		resource: resource,
		denied:   denied,
	}
}

// Authorize validates the Authorization header value and returns a Decision
// allowing the caller onto the batch endpoint, or ErrDenied.
func (g *Gateway) Authorize(ctx context.Context, header string) (*Decision, error) {
	decision, reason, err := g.authorize(ctx, header)
	if err != nil {
		g.denied.With("reason", reason).Add(1)
		logger.WithError(err).WithField("reason", reason).Warn("denying lfs access")
		return nil, ErrDenied
	}

	logger.Infof("validated %s, returning decision", decision.Principal)

	return decision, nil
}

func (g *Gateway) authorize(ctx context.Context, header string) (*Decision, string, error) {
	username, token, err := ParseBasic(header)
	if err != nil {
		return nil, ReasonCredentials, err
	}

	logger.Debugf("testing user %q against the identity provider", username)

	login, err := g.identity.AuthenticatedUser(ctx, token)
	if err != nil {
		return nil, ReasonIdentity, err
	}

	if !strings.EqualFold(login, username) {
		return nil, ReasonMismatch, Error.New("token belongs to %q, not %q", login, username)
	}

	rt, err := g.config.Load(ctx)
	if err != nil {
		return nil, ReasonConfig, err
	}

	perms, err := g.identity.RepositoryPermissions(ctx, token, rt.Repo.Owner, rt.Repo.Name)
	if err != nil {
		return nil, ReasonPermissions, err
	}

	if !perms.Pull {
		return nil, ReasonNoAccess, Error.New("%q has no pull permission on %s", username, rt.Repo)
	}

	return &Decision{
		Principal: username,
		Effect:    EffectAllow,
		Resources: []Resource{g.resource},
		Context: UserContext{
			GitPermissions: GitPermissions{
				Push: perms.Push,
				Pull: perms.Pull,
			},
			Username: username,
		},
	}, "", nil
}
