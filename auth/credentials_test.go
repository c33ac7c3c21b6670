package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// writeKeyFile generates an RSA key and writes a service-account JSON key
// file pointing at tokenURI. Returns the file path and the public key for
// assertion verification.
func writeKeyFile(t *testing.T, tokenURI string) (string, *rsa.PublicKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	data, err := json.Marshal(map[string]string{
		"client_email": "svc@test-project.iam.gserviceaccount.com",
		"private_key":  string(pemKey),
		"token_uri":    tokenURI,
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path, &key.PublicKey
}

func TestFetchExchangesSignedAssertion(t *testing.T) {
	var gotAssertion, gotGrant string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotGrant = r.Form.Get("grant_type")
		gotAssertion = r.Form.Get("assertion")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "ya29.test",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	path, pub := writeKeyFile(t, srv.URL)
	creds, err := ReadServiceAccountFile(path, []Scope{ScopeCloudPlatform, ScopeDatastore})
	require.NoError(t, err)

	tok, err := creds.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ya29.test", tok.AccessToken)
	require.False(t, tok.ExpiresWithin(30*time.Minute))

	require.Equal(t, "urn:ietf:params:oauth:grant-type:jwt-bearer", gotGrant)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(gotAssertion, claims, func(*jwt.Token) (any, error) {
		return pub, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	require.NoError(t, err)
	require.Equal(t, "svc@test-project.iam.gserviceaccount.com", claims["iss"])
	require.Equal(t, srv.URL, claims["aud"])
	require.Equal(t, ScopeCloudPlatform+" "+ScopeDatastore, claims["scope"])
}

func TestFetchReportsEndpointError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_grant",
			"error_description": "bad assertion",
		})
	}))
	defer srv.Close()

	path, _ := writeKeyFile(t, srv.URL)
	creds, err := ReadServiceAccountFile(path, DefaultScopes())
	require.NoError(t, err)

	_, err = creds.Fetch(context.Background())
	require.ErrorContains(t, err, "invalid_grant")
}

func TestReadServiceAccountFileRejectsIncompleteKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"client_email": "a@b"}`), 0o600))

	_, err := ReadServiceAccountFile(path, DefaultScopes())
	require.ErrorContains(t, err, "missing client_email or private_key")
}

func TestReadServiceAccountFileMissing(t *testing.T) {
	_, err := ReadServiceAccountFile(filepath.Join(t.TempDir(), "absent.json"), DefaultScopes())
	require.Error(t, err)
}
