package auth

import (
	"encoding/base64"
	"strings"
)

var (
	ErrMissingCredentials   = Error.New("no authorization header")
	ErrMalformedCredentials = Error.New("malformed basic credentials")
)

// ParseBasic decodes a "Basic base64(username:token)" header. The token is
// everything after the first colon.
func ParseBasic(header string) (username, token string, err error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", "", ErrMissingCredentials
	}

	scheme, encoded, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "basic") {
		return "", "", ErrMalformedCredentials
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", "", ErrMalformedCredentials
	}

	username, token, ok = strings.Cut(string(decoded), ":")
	if !ok || username == "" || token == "" {
		return "", "", ErrMalformedCredentials
	}

	return username, token, nil
}
