package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"healthscore/internal/store"
)

const (
	// CallbackPort is the port for the OAuth callback server
	CallbackPort = 8089
	// AuthTimeout is how long to wait for the user to complete auth
	AuthTimeout = 5 * time.Minute
)

// ErrStateMismatch is returned when the callback state does not match
var ErrStateMismatch = errors.New("state mismatch")

const successPage = `<!DOCTYPE html>
<html>
<head><title>healthscore</title></head>
<body style="font-family: system-ui; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0;">
<div style="text-align: center;">
<h1 style="color: #10B981;">Connected</h1>
<p>You can close this window and return to the terminal.</p>
</div>
</body>
</html>`

// callbackHandler delivers exactly one code or error from the redirect
func callbackHandler(state string, codes chan<- string, errs chan<- error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			send(errs, ErrStateMismatch)
			http.Error(w, "State mismatch", http.StatusBadRequest)
			return
		}

		if msg := q.Get("error"); msg != "" {
			send(errs, fmt.Errorf("auth error: %s", msg))
			http.Error(w, "Authentication failed", http.StatusBadRequest)
			return
		}

		code := q.Get("code")
		if code == "" {
			send(errs, errors.New("no code in callback"))
			http.Error(w, "No authorization code", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, successPage)
		send(codes, code)
	}
}

func send[T any](ch chan<- T, v T) {
	select {
	case ch <- v:
	default:
	}
}

// Authenticate runs the OAuth flow with a local callback server,
// printing the authorization URL to out
func Authenticate(ctx context.Context, cfg *oauth2.Config, out io.Writer) (*Result, error) {
	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("generating state: %w", err)
	}

	codes := make(chan string, 1)
	errs := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", callbackHandler(state, codes, errs))

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", CallbackPort))
	if err != nil {
		return nil, fmt.Errorf("starting callback server: %w", err)
	}

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			send(errs, fmt.Errorf("server error: %w", err))
		}
	}()
	defer shutdownServer(server)

	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "To connect Strava, open this URL in your browser:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", authURL)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Waiting for authentication...")

	var code string
	select {
	case code = <-codes:
	case err := <-errs:
		return nil, err
	case <-time.After(AuthTimeout):
		return nil, fmt.Errorf("authentication timeout after %v", AuthTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging code for token: %w", err)
	}

	return &Result{
		Token:     token,
		AthleteID: ExtractAthleteID(token),
	}, nil
}

// AuthStore is the subset of the store used to keep credentials
type AuthStore interface {
	TokenSaver
	GetAuth(ctx context.Context) (*store.Auth, error)
	SaveAuth(ctx context.Context, a *store.Auth) error
}

// EnsureToken returns a persistent token source, running the browser flow
// when no credentials are stored yet
func EnsureToken(ctx context.Context, cfg *oauth2.Config, st AuthStore, out io.Writer, logger *slog.Logger) (*TokenSource, error) {
	a, err := st.GetAuth(ctx)
	switch {
	case err == nil:
		logger.Debug("using stored strava credentials", "athlete_id", a.AthleteID)
		return NewTokenSource(cfg, TokenFromAuth(a), st), nil
	case !errors.Is(err, store.ErrNoAuth):
		return nil, fmt.Errorf("loading auth: %w", err)
	}

	res, err := Authenticate(ctx, cfg, out)
	if err != nil {
		return nil, err
	}
	if err := st.SaveAuth(ctx, res.Auth()); err != nil {
		return nil, fmt.Errorf("saving auth: %w", err)
	}
	logger.Info("connected strava", "athlete_id", res.AthleteID)
	return NewTokenSource(cfg, res.Token, st), nil
}

// generateState creates a random state string for CSRF protection
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// shutdownServer gracefully shuts down the HTTP server
func shutdownServer(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}
