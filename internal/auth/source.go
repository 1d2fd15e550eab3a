package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/tokenflex-dashboard/internal/logger"
)

// ErrNoCredentials means no refresh token is available.
var ErrNoCredentials = errors.New("no APS credentials available")

const (
	refreshAttempts    = 3
	defaultBaseBackoff = time.Second
	debounceInterval   = 100 * time.Millisecond
)

// Options configures a TokenSource.
type Options struct {
	HTTPClient      *http.Client
	Clock           quartz.Clock
	AuthURL         string
	ClientID        string
	ClientSecret    string
	CredentialsPath string
	// BaseBackoff is the first wait between refresh attempts; negative
	// disables waiting.
	BaseBackoff time.Duration
}

// TokenSource hands out access tokens, refreshing them from the stored
// refresh token when the cached one is about to expire.
type TokenSource struct {
	mu     sync.RWMutex
	creds  Credentials
	cached *CachedToken

	refreshMu sync.Mutex

	httpClient   *http.Client
	clock        quartz.Clock
	authURL      string
	clientID     string
	clientSecret string
	path         string
	baseBackoff  time.Duration

	watcher       *fsnotify.Watcher
	stopChan      chan struct{}
	debounceMu    sync.Mutex
	debounceTimer *time.Timer
	closeOnce     sync.Once
}

// NewTokenSource creates a TokenSource and loads the credentials file. A
// missing file is not an error; Token reports ErrNoCredentials until one
// appears.
func NewTokenSource(opts Options) (*TokenSource, error) {
	s := &TokenSource{
		httpClient:   opts.HTTPClient,
		clock:        opts.Clock,
		authURL:      opts.AuthURL,
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		path:         opts.CredentialsPath,
		baseBackoff:  opts.BaseBackoff,
		stopChan:     make(chan struct{}),
	}
	if s.httpClient == nil {
		s.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if s.clock == nil {
		s.clock = quartz.NewReal()
	}
	switch {
	case s.baseBackoff < 0:
		s.baseBackoff = 0
	case s.baseBackoff == 0:
		s.baseBackoff = defaultBaseBackoff
	}

	if err := s.reload(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	return s, nil
}

// Token returns a valid access token.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	if tok, ok := s.cachedToken(); ok {
		return tok, nil
	}

	// One refresh at a time; later callers reuse its result.
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	if tok, ok := s.cachedToken(); ok {
		return tok, nil
	}

	s.mu.RLock()
	refreshToken := s.creds.RefreshToken
	clientID := s.clientID
	s.mu.RUnlock()
	if refreshToken == "" {
		return "", ErrNoCredentials
	}

	resp, err := s.refreshWithRetry(ctx, clientID, refreshToken)
	if err != nil {
		return "", err
	}

	expiresAt := s.clock.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)

	s.mu.Lock()
	s.cached = &CachedToken{AccessToken: resp.AccessToken, ExpiresAt: expiresAt}
	s.creds.AccessToken = resp.AccessToken
	s.creds.ExpiresAt = expiresAt
	if resp.RefreshToken != "" {
		s.creds.RefreshToken = resp.RefreshToken
	}
	creds := s.creds
	s.mu.Unlock()

	if s.path != "" {
		if err := SaveCredentials(s.path, creds); err != nil {
			logger.Error("failed to persist rotated credentials", "path", s.path, "error", err)
		}
	}

	logger.Info("access token refreshed", "expiresAt", expiresAt)
	return resp.AccessToken, nil
}

func (s *TokenSource) cachedToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cached.IsValid(s.clock.Now()) {
		return s.cached.AccessToken, true
	}
	return "", false
}

func (s *TokenSource) refreshWithRetry(ctx context.Context, clientID, refreshToken string) (*TokenResponse, error) {
	var lastErr error
	for attempt := range refreshAttempts {
		resp, err := RefreshAccessToken(ctx, s.httpClient, s.authURL, clientID, s.clientSecret, refreshToken)
		if err == nil {
			return resp, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		var grantErr *GrantError
		if errors.As(err, &grantErr) {
			logger.Error("refresh token rejected", "status", grantErr.StatusCode)
			return nil, err
		}

		lastErr = err
		if attempt == refreshAttempts-1 {
			break
		}

		wait := s.baseBackoff << attempt
		logger.Warn("token refresh failed, retrying", "attempt", attempt+1, "backoff", wait, "error", err)
		if wait > 0 {
			timer := s.clock.NewTimer(wait, "auth", "backoff")
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return nil, fmt.Errorf("token refresh failed after %d attempts: %w", refreshAttempts, lastErr)
}

// reload reads the credentials file and adopts a stored access token when
// it is still valid.
func (s *TokenSource) reload() error {
	if s.path == "" {
		return os.ErrNotExist
	}

	creds, err := LoadCredentials(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changed := creds.RefreshToken != s.creds.RefreshToken
	s.creds = creds
	if creds.ClientID != "" && s.clientID == "" {
		s.clientID = creds.ClientID
	}

	stored := &CachedToken{AccessToken: creds.AccessToken, ExpiresAt: creds.ExpiresAt}
	switch {
	case stored.IsValid(s.clock.Now()):
		s.cached = stored
	case changed:
		s.cached = nil
	}
	return nil
}

// Watch reloads the credentials file whenever it changes on disk.
func (s *TokenSource) Watch() error {
	if s.path == "" {
		return errors.New("no credentials path configured")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory to catch rename-based replacement.
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}
	s.watcher = watcher

	go s.watchLoop()
	return nil
}

func (s *TokenSource) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(s.path) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				s.debounceMu.Lock()
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
				s.debounceMu.Unlock()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logger.Error("credentials watcher error", "error", err)

		case <-s.stopChan:
			return
		}
	}
}

func (s *TokenSource) handleFileChange() {
	if err := s.reload(); err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to reload credentials", "path", s.path, "error", err)
		}
		return
	}
	logger.Info("credentials reloaded", "path", s.path)
}

// Close stops the file watcher.
func (s *TokenSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)

		s.debounceMu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.debounceMu.Unlock()

		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}

type tokenKey struct{}

// WithToken returns a context carrying an access token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the access token stored by WithToken.
func TokenFromContext(ctx context.Context) string {
	tok, _ := ctx.Value(tokenKey{}).(string)
	return tok
}
