package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/google/uuid"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"hitstertrainer/internal/core"
)

// FilePermission is the permission for token files
const FilePermission = 0600

var (
	// ErrInvalidState is returned when the callback state does not match the issued one
	ErrInvalidState = errors.New("invalid state parameter")
	// ErrCallbackHandled is returned for every callback after the first
	ErrCallbackHandled = errors.New("callback already processed")
)

// Scopes are the permissions the trainer needs for search and remote playback.
var Scopes = []string{
	spotifyauth.ScopeStreaming,
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserReadPlaybackState,
	spotifyauth.ScopeUserModifyPlaybackState,
}

type TokenData struct {
	Token *oauth2.Token `json:"token"`
}

type authResult struct {
	token *oauth2.Token
	err   error
}

// Authorizer runs one PKCE authorization code flow. The callback is accepted
// exactly once; its outcome is delivered through Wait.
type Authorizer struct {
	auth     *spotifyauth.Authenticator
	state    string
	verifier string

	resultChan  chan authResult
	once        sync.Once
	mu          sync.Mutex
	callbackHit bool
}

func NewAuthorizer(config *core.SpotifyConfig) *Authorizer {
	opts := []spotifyauth.AuthenticatorOption{
		spotifyauth.WithRedirectURL(config.RedirectURL),
		spotifyauth.WithScopes(Scopes...),
		spotifyauth.WithClientID(config.ClientID),
	}
	if config.ClientSecret != "" {
		opts = append(opts, spotifyauth.WithClientSecret(config.ClientSecret))
	}

	return &Authorizer{
		auth:       spotifyauth.New(opts...),
		state:      uuid.NewString(),
		verifier:   oauth2.GenerateVerifier(),
		resultChan: make(chan authResult, 1),
	}
}

// AuthURL is the address the user has to open to grant access.
func (a *Authorizer) AuthURL() string {
	return a.auth.AuthURL(a.state, oauth2.S256ChallengeOption(a.verifier))
}

// Client returns an HTTP client that authorizes requests with token and
// refreshes it when it expires.
func (a *Authorizer) Client(ctx context.Context, token *oauth2.Token) *http.Client {
	return a.auth.Client(ctx, token)
}

func (a *Authorizer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	if a.callbackHit {
		a.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	a.callbackHit = true
	a.mu.Unlock()

	query := r.URL.Query()
	if query.Get("state") != a.state {
		a.send(authResult{err: ErrInvalidState})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		a.send(authResult{err: fmt.Errorf("authorization failed: %s - %s",
			query.Get("error"), query.Get("error_description"))})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := a.auth.Exchange(r.Context(), code, oauth2.VerifierOption(a.verifier))
	if err != nil {
		a.send(authResult{err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	a.send(authResult{token: token})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, callbackPage)
}

// Wait blocks until the callback has been handled or ctx is done.
func (a *Authorizer) Wait(ctx context.Context) (*oauth2.Token, error) {
	select {
	case result, ok := <-a.resultChan:
		if !ok {
			return nil, ErrCallbackHandled
		}
		return result.token, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (a *Authorizer) send(result authResult) {
	a.once.Do(func() {
		a.resultChan <- result
		close(a.resultChan)
	})
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tokenData TokenData
	if err := json.Unmarshal(data, &tokenData); err != nil {
		return nil, err
	}
	if tokenData.Token == nil {
		return nil, errors.New("token file holds no token")
	}

	return tokenData.Token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(TokenData{Token: token}, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, FilePermission)
}

const callbackPage = `<!DOCTYPE html>
<html>
<head>
    <title>Hitster Trainer</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #191414; color: #fff; }
        h1 { color: #1DB954; }
    </style>
</head>
<body>
    <div>
        <h1>Spotify connected</h1>
        <p>You can close this window and start playing.</p>
    </div>
</body>
</html>
`
