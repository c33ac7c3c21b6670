// Package auth maintains a continuously fresh Google service-account access
// token shared by all outgoing RPCs. Reads of the current token are
// lock-free; refreshing happens on a background schedule or on demand.
package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultTokenURI = "https://oauth2.googleapis.com/token"
	jwtBearerGrant  = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	assertionTTL    = time.Hour
)

// Token is an access credential with its expiration instant.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// ExpiresWithin reports whether the token expires within d from now.
func (t *Token) ExpiresWithin(d time.Duration) bool {
	return !t.ExpiresAt.After(time.Now().Add(d))
}

// serviceAccountKey mirrors the JSON key file downloaded from the Cloud
// console.
type serviceAccountKey struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// Credentials fetches access tokens for a service account by signing a JWT
// assertion with the account's RSA key and exchanging it at the token
// endpoint.
type Credentials struct {
	email    string
	key      *rsa.PrivateKey
	tokenURI string
	scopes   []Scope
	client   *http.Client
}

// ReadServiceAccountFile loads a service-account JSON key file and prepares
// credentials requesting the given scopes.
func ReadServiceAccountFile(path string, scopes []Scope) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to read service account file at %s: %w", path, err)
	}

	var sa serviceAccountKey
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, fmt.Errorf("auth: invalid service account file %s: %w", path, err)
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return nil, fmt.Errorf("auth: service account file %s is missing client_email or private_key", path)
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(sa.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("auth: invalid private key in %s: %w", path, err)
	}

	tokenURI := sa.TokenURI
	if tokenURI == "" {
		tokenURI = defaultTokenURI
	}

	return &Credentials{
		email:    sa.ClientEmail,
		key:      key,
		tokenURI: tokenURI,
		scopes:   scopes,
		client:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Fetch obtains a fresh access token from the token endpoint.
func (c *Credentials) Fetch(ctx context.Context) (*Token, error) {
	assertion, err := c.signAssertion()
	if err != nil {
		return nil, err
	}

	form := url.Values{
		"grant_type": {jwtBearerGrant},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: token request failed: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
		Error       string `json:"error"`
		ErrorDesc   string `json:"error_description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("auth: invalid token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: token endpoint returned %d: %s %s", resp.StatusCode, body.Error, body.ErrorDesc)
	}
	if body.AccessToken == "" {
		return nil, fmt.Errorf("auth: token endpoint returned no access token")
	}

	return &Token{
		AccessToken: body.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(body.ExpiresIn) * time.Second),
	}, nil
}

func (c *Credentials) signAssertion() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   c.email,
		"scope": strings.Join(c.scopes, " "),
		"aud":   c.tokenURI,
		"iat":   jwt.NewNumericDate(now),
		"exp":   jwt.NewNumericDate(now.Add(assertionTTL)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign assertion: %w", err)
	}
	return signed, nil
}
