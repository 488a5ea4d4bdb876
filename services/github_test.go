package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireToken(t *testing.T, token string, responder httpmock.Responder) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		assert.Contains(t, req.Header.Get("Authorization"), token)
		return responder(req)
	}
}

func TestGitHubAuthenticatedUser(t *testing.T) {
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	defer httpmock.DeactivateAndReset()

	identity := NewGitHubService(httpClient, "")

	t.Run("it should return the login for the token", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", "https://api.github.com/user",
			requireToken(t, "gho_token", httpmock.NewJsonResponderOrPanic(200, map[string]interface{}{
				"login": "Alice",
				"id":    1,
			})))

		login, err := identity.AuthenticatedUser(context.TODO(), "gho_token")
		require.NoError(t, err)
		assert.Equal(t, "Alice", login)
	})

	t.Run("it should fail on a rejected token", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", "https://api.github.com/user",
			httpmock.NewJsonResponderOrPanic(401, map[string]interface{}{
				"message": "Bad credentials",
			}))

		_, err := identity.AuthenticatedUser(context.TODO(), "bad")
		assert.Error(t, err)
		assert.True(t, IdentityError.Has(err))
	})
}

func TestGitHubRepositoryPermissions(t *testing.T) {
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	defer httpmock.DeactivateAndReset()

	identity := NewGitHubService(httpClient, "")

	t.Run("it should read push and pull", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", "https://api.github.com/repos/vela-games/game-assets",
			requireToken(t, "gho_token", httpmock.NewJsonResponderOrPanic(200, map[string]interface{}{
				"name": "game-assets",
				"permissions": map[string]interface{}{
					"admin": false,
					"push":  false,
					"pull":  true,
				},
			})))

		perms, err := identity.RepositoryPermissions(context.TODO(), "gho_token", "vela-games", "game-assets")
		require.NoError(t, err)
		assert.Equal(t, &Permissions{Push: false, Pull: true}, perms)
	})

	t.Run("it should report no permissions when the block is absent", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", "https://api.github.com/repos/vela-games/game-assets",
			httpmock.NewJsonResponderOrPanic(200, map[string]interface{}{
				"name": "game-assets",
			}))

		perms, err := identity.RepositoryPermissions(context.TODO(), "gho_token", "vela-games", "game-assets")
		require.NoError(t, err)
		assert.Equal(t, &Permissions{}, perms)
	})

	t.Run("it should fail when the repository is not visible", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", "https://api.github.com/repos/vela-games/game-assets",
			httpmock.NewJsonResponderOrPanic(404, map[string]interface{}{
				"message": "Not Found",
			}))

		_, err := identity.RepositoryPermissions(context.TODO(), "gho_token", "vela-games", "game-assets")
		assert.True(t, IdentityError.Has(err))
	})

	t.Run("it should use the enterprise base url when configured", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", "https://github.example.com/api/v3/repos/vela-games/game-assets",
			httpmock.NewJsonResponderOrPanic(200, map[string]interface{}{
				"permissions": map[string]interface{}{"push": true, "pull": true},
			}))

		enterprise := NewGitHubService(httpClient, "https://github.example.com/")
		perms, err := enterprise.RepositoryPermissions(context.TODO(), "gho_token", "vela-games", "game-assets")
		require.NoError(t, err)
		assert.Equal(t, &Permissions{Push: true, Pull: true}, perms)
	})
}
