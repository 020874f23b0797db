// Package auth implements the browser login: an OAuth authorization-code
// flow whose code is delivered to a short-lived local callback server.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"weni/pkg/logging"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	// DefaultCallbackAddr is where the callback server listens.
	DefaultCallbackAddr = "localhost:8081"
	// CallbackPath receives the authorization code.
	CallbackPath = "/sso-callback"
	// DefaultTimeout bounds the wait for the browser round trip.
	DefaultTimeout = 5 * time.Minute

	subsystem = "Auth"
)

var (
	// ErrTimeout is returned when no code arrives in time.
	ErrTimeout = errors.New("timed out waiting for login")
	// ErrNoToken is returned when the token response has no access token.
	ErrNoToken = errors.New("Failed to exchange code for token")
)

// Config describes the identity provider.
type Config struct {
	KeycloakURL string
	Realm       string
	ClientID    string

	// CallbackAddr defaults to DefaultCallbackAddr.
	CallbackAddr string
}

func (c Config) callbackAddr() string {
	if c.CallbackAddr == "" {
		return DefaultCallbackAddr
	}
	return c.CallbackAddr
}

// RedirectURL is the callback URL registered with the provider.
func (c Config) RedirectURL() string {
	return "http://" + c.callbackAddr() + CallbackPath
}

func (c Config) oauth2() *oauth2.Config {
	base := strings.TrimSuffix(c.KeycloakURL, "/") + "/realms/" + c.Realm + "/protocol/openid-connect"
	return &oauth2.Config{
		ClientID:    c.ClientID,
		RedirectURL: c.RedirectURL(),
		Endpoint: oauth2.Endpoint{
			AuthURL:   base + "/auth",
			TokenURL:  base + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// Flow is one login attempt. The state parameter ties the callback to
// the URL this flow produced.
type Flow struct {
	config Config
	state  string
}

// NewFlow starts a login attempt.
func NewFlow(cfg Config) *Flow {
	return &Flow{config: cfg, state: uuid.NewString()}
}

// LoginURL is the URL to open in the browser.
func (f *Flow) LoginURL() string {
	return f.config.oauth2().AuthCodeURL(f.state)
}

// Exchange trades an authorization code for an access token.
func (f *Flow) Exchange(ctx context.Context, code string) (string, error) {
	token, err := f.config.oauth2().Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoToken, err)
	}
	if token.AccessToken == "" {
		return "", ErrNoToken
	}
	return token.AccessToken, nil
}

// CallbackServer receives exactly one authorization code. Later callbacks
// are answered but their codes are dropped.
type CallbackServer struct {
	server   *http.Server
	listener net.Listener
	state    string
	codes    chan string
}

// Listen starts the callback server for flow.
func (f *Flow) Listen() (*CallbackServer, error) {
	listener, err := net.Listen("tcp", f.config.callbackAddr())
	if err != nil {
		return nil, fmt.Errorf("starting login callback server: %w", err)
	}

	s := &CallbackServer{
		listener: listener,
		state:    f.state,
		codes:    make(chan string, 1),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, s.handleCallback)
	s.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(subsystem, err, "callback server stopped")
		}
	}()
	logging.Debug(subsystem, "callback server listening on %s", listener.Addr())
	return s, nil
}

// Addr returns the address the server is bound to.
func (s *CallbackServer) Addr() string {
	return s.listener.Addr().String()
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	if code == "" {
		http.Error(w, "missing authorization code", http.StatusBadRequest)
		return
	}
	if query.Get("state") != s.state {
		http.Error(w, "login state mismatch", http.StatusBadRequest)
		return
	}

	select {
	case s.codes <- code:
	default:
		logging.Debug(subsystem, "dropping extra authorization code")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<html><body><h3>Login successful</h3><p>You can close this window.</p></body></html>")
}

// Wait blocks until a code arrives, ctx is done or timeout elapses.
func (s *CallbackServer) Wait(ctx context.Context, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case code := <-s.codes:
		return code, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return "", ErrTimeout
	}
}

// Close stops the server.
func (s *CallbackServer) Close(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
