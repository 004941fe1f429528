// package services wraps the Google Sheets and Docs APIs
//
// Sheets (read rows), Docs (overwrite document text)
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/desertthunder/taskdoc/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
)

// Credentials is the handle passed explicitly from the entry point to every API call.
// It carries an authorised HTTP client; nothing about it is global.
type Credentials struct {
	Email  string   // service account that API calls act as
	Scopes []string // scopes the token was requested with
	client *http.Client
}

// NewCredentials wraps an already-authorised client, e.g. one built from another token source.
func NewCredentials(client *http.Client, scopes ...string) *Credentials {
	if client == nil {
		client = http.DefaultClient
	}
	return &Credentials{Scopes: scopes, client: client}
}

// HTTPClient returns the authorised client.
func (c *Credentials) HTTPClient() *http.Client {
	if c == nil || c.client == nil {
		return http.DefaultClient
	}
	return c.client
}

// CredentialOpts contains settings for [LoadCredentials].
type CredentialOpts struct {
	Path              string            // service account JSON key
	Scopes            []string          // defaults to [shared.DefaultScopes]
	RequestsPerSecond float64           // API pacing, <= 0 disables it
	Transport         http.RoundTripper // base transport, defaults to [http.DefaultTransport]
}

// LoadCredentials reads a service account key and returns credentials whose client is paced by a [RateLimitedTransport].
//
// Every failure wraps [shared.ErrCredentialsUnavailable].
func LoadCredentials(ctx context.Context, opts CredentialOpts) (*Credentials, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("%w: no service account key configured (set credentials.path or %s)", shared.ErrCredentialsUnavailable, shared.EnvCredentialsPath)
	}
	scopes := opts.Scopes
	if len(scopes) == 0 {
		scopes = shared.DefaultScopes
	}

	data, err := os.ReadFile(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read key: %v", shared.ErrCredentialsUnavailable, err)
	}

	var key struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("%w: key is not JSON: %v", shared.ErrCredentialsUnavailable, err)
	}
	if key.Type != "service_account" {
		return nil, fmt.Errorf("%w: expected a service_account key, got %q", shared.ErrCredentialsUnavailable, key.Type)
	}

	conf, err := google.JWTConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCredentialsUnavailable, err)
	}

	base := &http.Client{Transport: NewRateLimitedTransport(opts.Transport, opts.RequestsPerSecond)}
	clientCtx := context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, base)
	client := oauth2.NewClient(clientCtx, conf.TokenSource(clientCtx))

	return &Credentials{Email: conf.Email, Scopes: scopes, client: client}, nil
}

// describe adds the HTTP status of a [googleapi.Error] to err's message.
func describe(err error) string {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Message != "" {
			return fmt.Sprintf("status %d: %s", gerr.Code, gerr.Message)
		}
		return fmt.Sprintf("status %d", gerr.Code)
	}
	return err.Error()
}
