package services_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/taskdoc/internal/services"
	"github.com/desertthunder/taskdoc/internal/shared"
	tu "github.com/desertthunder/taskdoc/internal/testing"
	"golang.org/x/time/rate"
)

// countingTransport counts requests passing through to http.DefaultTransport.
type countingTransport struct{ n int }

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.n++
	return http.DefaultTransport.RoundTrip(r)
}

func serviceAccountKey(t *testing.T, tokenURI string) []byte {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("failed to marshal key: %v", err)
	}
	data, err := json.Marshal(map[string]string{
		"type":           "service_account",
		"project_id":     "taskdoc-test",
		"private_key_id": "abc123",
		"private_key":    string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})),
		"client_email":   "bot@taskdoc-test.iam.gserviceaccount.com",
		"client_id":      "1234567890",
		"token_uri":      tokenURI,
	})
	if err != nil {
		t.Fatalf("failed to marshal key file: %v", err)
	}
	return data
}

func TestLoadCredentials(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("missing path", func(t *testing.T) {
		_, err := services.LoadCredentials(ctx, services.CredentialOpts{})
		if !errors.Is(err, shared.ErrCredentialsUnavailable) {
			t.Errorf("expected ErrCredentialsUnavailable, got %v", err)
		}
	})

	t.Run("unreadable file", func(t *testing.T) {
		_, err := services.LoadCredentials(ctx, services.CredentialOpts{Path: filepath.Join(dir, "nope.json")})
		if !errors.Is(err, shared.ErrCredentialsUnavailable) {
			t.Errorf("expected ErrCredentialsUnavailable, got %v", err)
		}
	})

	t.Run("not JSON", func(t *testing.T) {
		path := tu.MustWriteFile(t, filepath.Join(dir, "garbage.json"), "not json")
		_, err := services.LoadCredentials(ctx, services.CredentialOpts{Path: path})
		if !errors.Is(err, shared.ErrCredentialsUnavailable) {
			t.Errorf("expected ErrCredentialsUnavailable, got %v", err)
		}
	})

	t.Run("wrong key type", func(t *testing.T) {
		path := tu.MustWriteFile(t, filepath.Join(dir, "user.json"), `{"type": "authorized_user"}`)
		_, err := services.LoadCredentials(ctx, services.CredentialOpts{Path: path})
		if !errors.Is(err, shared.ErrCredentialsUnavailable) {
			t.Errorf("expected ErrCredentialsUnavailable, got %v", err)
		}
		if err != nil && !strings.Contains(err.Error(), "authorized_user") {
			t.Errorf("expected key type in error, got %v", err)
		}
	})

	t.Run("authorises requests", func(t *testing.T) {
		tokens := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"access_token": "tok-1", "token_type": "Bearer", "expires_in": 3600}`)
		}))
		defer tokens.Close()

		var auth string
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusNoContent)
		}))
		defer api.Close()

		path := filepath.Join(dir, "sa.json")
		tu.MustWriteFile(t, path, string(serviceAccountKey(t, tokens.URL)))

		counter := &countingTransport{}
		creds, err := services.LoadCredentials(ctx, services.CredentialOpts{
			Path:              path,
			RequestsPerSecond: 100,
			Transport:         counter,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if creds.Email != "bot@taskdoc-test.iam.gserviceaccount.com" {
			t.Errorf("unexpected email %q", creds.Email)
		}
		if len(creds.Scopes) != len(shared.DefaultScopes) {
			t.Errorf("expected default scopes, got %v", creds.Scopes)
		}

		resp, err := creds.HTTPClient().Get(api.URL)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()

		if auth != "Bearer tok-1" {
			t.Errorf("expected bearer token, got %q", auth)
		}
		if counter.n != 2 {
			t.Errorf("expected token and API request through the base transport, got %d", counter.n)
		}
	})
}

func TestCredentials(t *testing.T) {
	t.Run("nil credentials fall back to default client", func(t *testing.T) {
		var c *services.Credentials
		if c.HTTPClient() != http.DefaultClient {
			t.Error("expected http.DefaultClient")
		}
	})

	t.Run("wraps client", func(t *testing.T) {
		client := &http.Client{}
		c := services.NewCredentials(client, "scope-a")
		if c.HTTPClient() != client {
			t.Error("expected wrapped client")
		}
		if len(c.Scopes) != 1 || c.Scopes[0] != "scope-a" {
			t.Errorf("unexpected scopes %v", c.Scopes)
		}
	})
}

func TestRateLimitedTransport(t *testing.T) {
	ok := &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}

	t.Run("unlimited", func(t *testing.T) {
		mock := tu.NewMockRoundTripper(ok, nil)
		tr := services.NewRateLimitedTransport(mock, 0)
		if tr.Limiter.Limit() != rate.Inf {
			t.Errorf("expected infinite limit, got %v", tr.Limiter.Limit())
		}

		for range 5 {
			req, _ := http.NewRequest(http.MethodGet, "http://example.test", nil)
			if _, err := tr.RoundTrip(req); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		}
		if mock.Requests != 5 {
			t.Errorf("expected 5 requests, got %d", mock.Requests)
		}
	})

	t.Run("canceled context stops waiting", func(t *testing.T) {
		mock := tu.NewMockRoundTripper(ok, nil)
		tr := services.NewRateLimitedTransport(mock, 0.001)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "http://example.test", nil)

		if _, err := tr.RoundTrip(req); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if mock.Requests != 0 {
			t.Errorf("expected no request to reach the base transport, got %d", mock.Requests)
		}
	})

	t.Run("transport error passes through", func(t *testing.T) {
		boom := errors.New("boom")
		tr := services.NewRateLimitedTransport(tu.NewMockRoundTripper(nil, boom), 10)
		req, _ := http.NewRequest(http.MethodGet, "http://example.test", nil)
		if _, err := tr.RoundTrip(req); !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
	})

	t.Run("defaults base transport", func(t *testing.T) {
		tr := services.NewRateLimitedTransport(nil, 1)
		if tr.Base != http.DefaultTransport {
			t.Error("expected http.DefaultTransport")
		}
	})
}
