package auth

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"
)

// CallbackPath is where the provider redirects back to.
const CallbackPath = "/callback"

// Callback is what the provider sent to the redirect URL.
type Callback struct {
	Code  string
	State string
}

// ErrStateMismatch is returned when the redirect carries a state other than
// the one the flow was started with.
var ErrStateMismatch = errors.New("oauth2 state mismatch")

type callbackOutcome struct {
	callback Callback
	err      error
}

// CallbackServer listens on a loopback port for a single OAuth2 redirect.
type CallbackServer struct {
	provider string
	state    string
	listener net.Listener
	server   *http.Server
	result   chan callbackOutcome
	once     sync.Once
}

// NewCallbackServer binds 127.0.0.1 on a free port. state is the value the
// provider must echo back; it is compared before the code is accepted.
func NewCallbackServer(provider, state string) (*CallbackServer, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}

	s := &CallbackServer{
		provider: provider,
		state:    state,
		listener: listener,
		result:   make(chan callbackOutcome, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, s.handleCallback)
	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		_ = s.server.Serve(listener)
	}()
	return s, nil
}

// RedirectURL is the URL to register with the provider for this run.
func (s *CallbackServer) RedirectURL() string {
	port := s.listener.Addr().(*net.TCPAddr).Port
	return fmt.Sprintf("http://127.0.0.1:%d%s", port, CallbackPath)
}

// Wait blocks until the redirect arrives or ctx is done, then shuts the
// server down.
func (s *CallbackServer) Wait(ctx context.Context) (Callback, error) {
	defer s.Close()

	select {
	case outcome := <-s.result:
		return outcome.callback, outcome.err
	case <-ctx.Done():
		return Callback{}, ctx.Err()
	}
}

// Close stops the server. It is safe to call more than once.
func (s *CallbackServer) Close() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		_ = s.server.Close() // Force close if graceful shutdown fails
	}
}

func (s *CallbackServer) deliver(outcome callbackOutcome) {
	s.once.Do(func() {
		s.result <- outcome
	})
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	cb := Callback{Code: q.Get("code"), State: q.Get("state")}
	// Anything without our state, errors included, is a stray request; keep
	// waiting for the real redirect.
	if s.state != "" && cb.State != s.state {
		renderPage(w, http.StatusBadRequest, failureTemplate, map[string]string{"Message": ErrStateMismatch.Error()})
		return
	}

	if providerErr := q.Get("error"); providerErr != "" {
		msg := providerErr
		if desc := q.Get("error_description"); desc != "" {
			msg += ": " + desc
		}
		err := fmt.Errorf("provider returned error: %s", msg)
		s.deliver(callbackOutcome{err: err})
		renderPage(w, http.StatusBadRequest, failureTemplate, map[string]string{"Message": err.Error()})
		return
	}
	if strings.TrimSpace(cb.Code) == "" {
		renderPage(w, http.StatusBadRequest, failureTemplate, map[string]string{"Message": "missing authorization code"})
		return
	}

	s.deliver(callbackOutcome{callback: cb})
	renderPage(w, http.StatusOK, successTemplate, map[string]string{"Provider": s.provider})
}

func renderPage(w http.ResponseWriter, status int, page string, data map[string]string) {
	tmpl, err := template.New("page").Parse(page)
	if err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = tmpl.Execute(w, data)
}

// OpenBrowser opens the URL in the default browser
func OpenBrowser(url string) error {
	if shouldSkipAutoBrowserOpen() {
		return nil
	}

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform")
	}

	return cmd.Start()
}

func shouldSkipAutoBrowserOpen() bool {
	// Always skip browser launch when running under `go test`.
	if flag.Lookup("test.v") != nil {
		return true
	}

	noBrowser := strings.TrimSpace(strings.ToLower(os.Getenv("PB_NO_BROWSER")))
	return noBrowser == "1" || noBrowser == "true" || noBrowser == "yes"
}
