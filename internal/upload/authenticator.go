package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"

	"race-video-pipeline/internal/logging"
)

// Authenticator drives the credential state machine and persists the result.
type Authenticator struct {
	secretsPath string
	store       TokenStore
	consent     ConsentFlow
	now         func() time.Time
	logger      *slog.Logger
}

// AuthOption customises Authenticator construction.
type AuthOption func(*Authenticator)

// WithClock overrides the time source used to classify the token.
func WithClock(now func() time.Time) AuthOption {
	return func(a *Authenticator) { a.now = now }
}

// NewAuthenticator builds an Authenticator over the client-secrets file.
func NewAuthenticator(secretsPath string, store TokenStore, consent ConsentFlow, logger *slog.Logger, opts ...AuthOption) *Authenticator {
	a := &Authenticator{
		secretsPath: secretsPath,
		store:       store,
		consent:     consent,
		now:         time.Now,
		logger:      logging.Component(logger, stage),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// OAuthConfig parses the client-secrets file with the upload-only scope.
func (a *Authenticator) OAuthConfig() (*oauth2.Config, error) {
	data, err := os.ReadFile(a.secretsPath)
	if err != nil {
		return nil, fmt.Errorf("read client secrets %s: %w", a.secretsPath, err)
	}
	conf, err := google.ConfigFromJSON(data, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secrets: %w", err)
	}
	return conf, nil
}

// Token returns a valid token, refreshing or running the consent flow as the
// stored state requires. Any new token is persisted before returning. The
// client secrets are read only when a refresh or consent is needed, so the
// returned config is nil when the stored token was used as-is.
func (a *Authenticator) Token(ctx context.Context) (*oauth2.Token, *oauth2.Config, error) {
	tok, err := a.store.Load()
	if err != nil {
		// An unreadable token file is treated like an absent one.
		a.logger.Warn("stored token unreadable, re-authorizing", "error", err)
		tok = nil
	}

	var conf *oauth2.Config
	config := func() (*oauth2.Config, error) {
		if conf != nil {
			return conf, nil
		}
		c, err := a.OAuthConfig()
		if err != nil {
			return nil, err
		}
		conf = c
		return conf, nil
	}

	state := Classify(tok, a.now())
	for {
		action := Next(state)
		a.logger.Info("credential state", "state", state.String(), "action", action.String())

		switch action {
		case ActionProceed:
			return tok, conf, nil

		case ActionRefresh:
			c, err := config()
			if err != nil {
				return nil, nil, err
			}
			fresh, err := c.TokenSource(ctx, tok).Token()
			if err != nil {
				var re *oauth2.RetrieveError
				if errors.As(err, &re) && re.ErrorCode == "invalid_grant" {
					state = RefreshRejected(state)
					continue
				}
				return nil, nil, fmt.Errorf("refresh token: %w", err)
			}
			if err := a.store.Save(fresh); err != nil {
				return nil, nil, err
			}
			tok = fresh
			state = StateValid

		case ActionConsent:
			if a.consent == nil {
				return nil, nil, errors.New("authorization required but no consent flow is available")
			}
			c, err := config()
			if err != nil {
				return nil, nil, err
			}
			fresh, err := a.consent.Obtain(ctx, c)
			if err != nil {
				return nil, nil, fmt.Errorf("consent flow: %w", err)
			}
			if err := a.store.Save(fresh); err != nil {
				return nil, nil, err
			}
			tok = fresh
			state = StateValid
		}
	}
}

// Client returns an HTTP client that authorizes requests with a valid token.
// A stored valid token is used without the client secrets and is not
// refreshed during the upload.
func (a *Authenticator) Client(ctx context.Context) (*http.Client, error) {
	tok, conf, err := a.Token(ctx)
	if err != nil {
		return nil, err
	}
	if conf == nil {
		return oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok)), nil
	}
	return conf.Client(ctx, tok), nil
}
