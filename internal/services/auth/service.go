package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clipper/internal/common"
	"github.com/ternarybob/clipper/internal/interfaces"
	"github.com/ternarybob/clipper/internal/models"
	"golang.org/x/oauth2"
)

// DefaultTokenLifetime is applied when the token response carries no
// expiry. Ten years, matching the tracker's behavior for long-lived
// application tokens.
const DefaultTokenLifetime = 315360000 * time.Second

// callbackResult carries the outcome of the one-shot redirect listener
type callbackResult struct {
	code string
	err  error
}

// Service manages the tracker credential lifecycle via the OAuth
// authorization code flow with PKCE.
type Service struct {
	config      common.OAuthConfig
	storage     interfaces.CredentialStorage
	cache       *credentialCache
	logger      arbor.ILogger
	openBrowser func(url string) error
	now         func() time.Time
}

// NewService creates a new authentication service
func NewService(config common.OAuthConfig, storage interfaces.CredentialStorage, logger arbor.ILogger) *Service {
	s := &Service{
		config:      config,
		storage:     storage,
		cache:       &credentialCache{},
		logger:      logger,
		openBrowser: openSystemBrowser,
		now:         time.Now,
	}

	// Warm the cache from storage so restarts keep the session
	if credential, err := storage.GetCredential(); err == nil && credential.Usable(s.now()) {
		s.cache.Set(credential)
	}

	return s
}

// Authenticate runs the interactive authorization flow: opens the
// consent page in the browser, waits for the loopback redirect,
// exchanges the code, and stores the resulting credential. The stored
// credential is replaced only after the exchange fully succeeds.
func (s *Service) Authenticate(ctx context.Context) (string, error) {
	verifier := oauth2.GenerateVerifier()

	state, err := newState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	// Bind the listener before opening the browser so the redirect
	// cannot race the server. Port 0 in config picks a free port.
	ln, err := net.Listen("tcp", s.config.CallbackAddr())
	if err != nil {
		return "", fmt.Errorf("failed to bind callback listener: %w", err)
	}
	defer ln.Close()

	redirectURL := s.config.RedirectURL()
	if s.config.CallbackPort == 0 {
		// Port 0 picked a free port; derive the redirect from the
		// listener so it matches what was actually bound
		redirectURL = fmt.Sprintf("http://%s/callback", ln.Addr().String())
	}

	conf := s.oauthConfig(redirectURL)
	authURL := conf.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))

	resultCh := make(chan callbackResult, 1)
	server := &http.Server{Handler: s.callbackHandler(state, resultCh)}
	go server.Serve(ln)
	defer server.Close()

	s.logger.Info().Str("url", authURL).Msg("Opening browser for tracker authorization")
	if err := s.openBrowser(authURL); err != nil {
		// Headless or restricted environments: surface the URL in the
		// logs so the user can open it manually.
		s.logger.Warn().Err(err).Str("url", authURL).Msg("Failed to open browser, visit the URL manually")
	}

	var result callbackResult
	select {
	case result = <-resultCh:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if result.err != nil {
		return "", result.err
	}

	token, err := s.exchange(ctx, conf, result.code, verifier)
	if err != nil {
		return "", err
	}

	credential := &models.Credential{
		AccessToken: token.AccessToken,
		ExpiresAt:   s.expiryFor(token),
	}

	if err := s.storage.StoreCredential(credential); err != nil {
		return "", fmt.Errorf("failed to persist credential: %w", err)
	}
	s.cache.Set(credential)

	s.logger.Info().Str("expires_at", credential.ExpiresAt.Format(time.RFC3339)).Msg("Tracker authorization complete")

	return credential.AccessToken, nil
}

// AccessToken returns a usable token, from cache or storage when one
// exists, otherwise by running the interactive flow. There is no
// silent refresh: an expired credential means a new consent.
func (s *Service) AccessToken(ctx context.Context) (string, error) {
	token, err := s.currentToken()
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, ErrNotAuthenticated) {
		return "", err
	}
	return s.Authenticate(ctx)
}

// currentToken reads the usable credential from cache or storage. It
// never triggers the interactive flow.
func (s *Service) currentToken() (string, error) {
	now := s.now()

	if credential := s.cache.Get(now); credential != nil {
		return credential.AccessToken, nil
	}

	credential, err := s.storage.GetCredential()
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return "", ErrNotAuthenticated
		}
		return "", fmt.Errorf("failed to load credential: %w", err)
	}

	if !credential.Usable(now) {
		return "", ErrNotAuthenticated
	}

	s.cache.Set(credential)
	return credential.AccessToken, nil
}

// IsAuthenticated reports whether a usable credential exists. It is a
// pure read and never starts the interactive flow.
func (s *Service) IsAuthenticated() bool {
	_, err := s.currentToken()
	return err == nil
}

// Logout discards the cached and stored credential
func (s *Service) Logout() error {
	s.cache.Invalidate()
	if err := s.storage.ClearCredential(); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	s.logger.Info().Msg("Logged out of tracker")
	return nil
}

func (s *Service) oauthConfig(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:    s.config.ClientID,
		RedirectURL: redirectURL,
		// The tracker accepts a single comma-separated scope value
		Scopes: []string{s.config.Scopes},
		Endpoint: oauth2.Endpoint{
			AuthURL:   s.config.AuthorizeURL,
			TokenURL:  s.config.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// callbackHandler serves the one-shot loopback redirect. The first
// /callback request decides the flow outcome; anything else 404s.
func (s *Service) callbackHandler(wantState string, resultCh chan<- callbackResult) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code, err := parseRedirect(r.URL.Query(), wantState)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, "<html><body><h3>Authorization failed</h3><p>You can close this tab and return to Clipper.</p></body></html>")
		} else {
			fmt.Fprint(w, "<html><body><h3>Authorization complete</h3><p>You can close this tab and return to Clipper.</p></body></html>")
		}

		select {
		case resultCh <- callbackResult{code: code, err: err}:
		default:
			// A result was already delivered; ignore duplicates
		}
	})
	return mux
}

// parseRedirect validates the authorization redirect query parameters
func parseRedirect(query url.Values, wantState string) (string, error) {
	if errParam := query.Get("error"); errParam != "" {
		detail := errParam
		if desc := query.Get("error_description"); desc != "" {
			detail = fmt.Sprintf("%s: %s", errParam, desc)
		}
		return "", &AuthError{Kind: KindProviderDenied, Detail: detail}
	}

	if query.Get("state") != wantState {
		return "", &AuthError{Kind: KindCSRFMismatch, Detail: "state parameter does not match"}
	}

	code := query.Get("code")
	if code == "" {
		return "", &AuthError{Kind: KindMissingCode, Detail: "redirect carried no authorization code"}
	}

	return code, nil
}

// exchange trades the authorization code for an access token
func (s *Service) exchange(ctx context.Context, conf *oauth2.Config, code, verifier string) (*oauth2.Token, error) {
	token, err := conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, &AuthError{
				Kind:   KindTokenExchangeFailed,
				Detail: strings.TrimSpace(string(retrieveErr.Body)),
				Status: retrieveErr.Response.StatusCode,
				Body:   string(retrieveErr.Body),
			}
		}
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	return token, nil
}

// expiryFor computes the credential expiry, applying the default
// lifetime when the token response carried none.
func (s *Service) expiryFor(token *oauth2.Token) time.Time {
	if token.Expiry.IsZero() {
		return s.now().Add(DefaultTokenLifetime)
	}
	return token.Expiry
}

// newState generates the CSRF state parameter
func newState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
