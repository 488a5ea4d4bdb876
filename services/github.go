package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v66/github"
	"github.com/zeebo/errs"
)

// IdentityError is the class of failures talking to the identity provider.
var IdentityError = errs.Class("identity")

// Permissions is what the provider reports the caller may do on a repository.
type Permissions struct {
	Push bool `json:"push"`
	Pull bool `json:"pull"`
}

type IdentityService interface {
	// AuthenticatedUser returns the login that owns token.
	AuthenticatedUser(ctx context.Context, token string) (string, error)
	// RepositoryPermissions returns the token owner's permissions on owner/repo.
	RepositoryPermissions(ctx context.Context, token, owner, repo string) (*Permissions, error)
}

type GitHub struct {
	httpClient *http.Client
	baseURL    string
}

// NewGitHubService talks to github.com, or to the GitHub Enterprise API at
// baseURL when it is set.
func NewGitHubService(httpClient *http.Client, baseURL string) IdentityService {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &GitHub{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

func (g GitHub) client(token string) (*github.Client, error) {
	client := github.NewClient(g.httpClient).WithAuthToken(token)
	if g.baseURL == "" {
		return client, nil
	}

	client, err := client.WithEnterpriseURLs(g.baseURL, g.baseURL)
	if err != nil {
		return nil, IdentityError.Wrap(err)
	}

	return client, nil
}

func (g GitHub) AuthenticatedUser(ctx context.Context, token string) (string, error) {
	client, err := g.client(token)
	if err != nil {
		return "", err
	}

	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return "", IdentityError.Wrap(err)
	}

	if user.GetLogin() == "" {
		return "", IdentityError.New("token resolved to a user without a login")
	}

	return user.GetLogin(), nil
}

func (g GitHub) RepositoryPermissions(ctx context.Context, token, owner, repo string) (*Permissions, error) {
	client, err := g.client(token)
	if err != nil {
		return nil, err
	}

	// Only the permissions block of the repository payload is needed.
	req, err := client.NewRequest(http.MethodGet, fmt.Sprintf("repos/%v/%v", owner, repo), nil)
	if err != nil {
		return nil, IdentityError.Wrap(err)
	}

	var payload struct {
		Permissions *Permissions `json:"permissions"`
	}
	if _, err := client.Do(ctx, req, &payload); err != nil {
		return nil, IdentityError.Wrap(err)
	}

	if payload.Permissions == nil {
		return &Permissions{}, nil
	}

	return payload.Permissions, nil
}
