// Package oauth runs the three-legged authorization-code flow against
// Reddit using a one-shot listener on the local redirect address instead
// of a web server.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/qepting91/reddit-stream-monitor/internal/config"
	"github.com/qepting91/reddit-stream-monitor/internal/domain"
	"golang.org/x/oauth2"
)

const (
	// maxRequestSize bounds the single read of the redirect request.
	maxRequestSize = 1024
	maxState       = 65000
)

// Endpoint is Reddit's OAuth2 endpoint. The token endpoint wants the
// client credentials as HTTP basic auth.
var Endpoint = oauth2.Endpoint{
	AuthURL:   "https://www.reddit.com/api/v1/authorize",
	TokenURL:  "https://www.reddit.com/api/v1/access_token",
	AuthStyle: oauth2.AuthStyleInHeader,
}

// Phase is the handshake's position in its state machine.
type Phase int

const (
	PhaseAwaitingAuthorization Phase = iota
	PhaseAwaitingCallback
	PhaseValidating
	PhaseTokenIssued
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingAuthorization:
		return "awaiting_authorization"
	case PhaseAwaitingCallback:
		return "awaiting_callback"
	case PhaseValidating:
		return "validating"
	case PhaseTokenIssued:
		return "token_issued"
	case PhaseFailed:
		return "failed"
	}
	return "phase(" + strconv.Itoa(int(p)) + ")"
}

// Session is one authorization attempt. It is consumed by exactly one
// callback.
type Session struct {
	State            string
	AuthorizationURL string
}

// NewConfig builds the client configuration for a permanent, read-only
// grant.
func NewConfig(creds config.Credentials) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     Endpoint,
		RedirectURL:  creds.RedirectURI,
		Scopes:       []string{"read"},
	}
}

// Handshake obtains a token through a single browser redirect.
type Handshake struct {
	config *oauth2.Config
	addr   string
	logger *slog.Logger
	phase  Phase
}

func New(cfg *oauth2.Config, addr string, logger *slog.Logger) *Handshake {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handshake{config: cfg, addr: addr, logger: logger}
}

func (h *Handshake) Phase() Phase { return h.phase }

func (h *Handshake) setPhase(p Phase) {
	h.phase = p
	h.logger.Debug("OAuth handshake phase", "phase", p.String())
}

// BuildAuthRequest creates the session nonce and the authorization URL
// the operator has to open. No network I/O happens here.
func (h *Handshake) BuildAuthRequest() Session {
	h.setPhase(PhaseAwaitingAuthorization)
	state := strconv.Itoa(rand.Intn(maxState + 1))
	url := h.config.AuthCodeURL(state, oauth2.SetAuthURLParam("duration", "permanent"))
	h.logger.Info("Authorize the app by opening this link", "url", url)
	return Session{State: state, AuthorizationURL: url}
}

// Authorize runs the whole cycle: build the request, wait for the
// redirect on the configured address, validate it and exchange the code.
// There are no retries.
func (h *Handshake) Authorize(ctx context.Context) (*oauth2.Token, error) {
	sess := h.BuildAuthRequest()
	ln, err := Listen(h.addr)
	if err != nil {
		h.setPhase(PhaseFailed)
		return nil, err
	}
	return h.Complete(ctx, sess, ln)
}

// Client runs Authorize and returns an HTTP client that sends, and
// refreshes, the issued token. ctx also supplies the base client (see
// WithUserAgent).
func (h *Handshake) Client(ctx context.Context) (*http.Client, error) {
	tok, err := h.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	return h.config.Client(ctx, tok), nil
}

// Complete waits on ln for the redirect belonging to sess. ln is closed
// when Complete returns.
func (h *Handshake) Complete(ctx context.Context, sess Session, ln *CallbackListener) (*oauth2.Token, error) {
	defer ln.Close()
	h.setPhase(PhaseAwaitingCallback)
	h.logger.Info("Waiting for OAuth callback connection", "addr", ln.Addr().String())

	cb, err := ln.Await(ctx)
	if err != nil {
		h.setPhase(PhaseFailed)
		return nil, err
	}
	h.logger.Info("Connected by", "remote", cb.Conn.RemoteAddr().String())
	return h.ValidateAndExchange(ctx, sess, cb)
}

// ValidateAndExchange checks the callback against sess and trades the
// code for a token. The browser always gets a response and the
// connection is always closed.
func (h *Handshake) ValidateAndExchange(ctx context.Context, sess Session, cb *Callback) (*oauth2.Token, error) {
	h.setPhase(PhaseValidating)
	tok, err := h.validateAndExchange(ctx, sess, cb)
	if err != nil {
		h.setPhase(PhaseFailed)
		return nil, err
	}
	h.setPhase(PhaseTokenIssued)
	h.logger.Info("Reddit authorization successful")
	return tok, nil
}

func (h *Handshake) validateAndExchange(ctx context.Context, sess Session, cb *Callback) (*oauth2.Token, error) {
	if got := cb.Params.State(); got != sess.State {
		h.respond(cb.Conn, fmt.Sprintf("State mismatch. Expected: %s Received: %s", sess.State, got))
		return nil, domain.E(domain.KindStateMismatch, "validate state",
			fmt.Errorf("expected %q, received %q", sess.State, got))
	}
	if msg, ok := cb.Params.ProviderError(); ok {
		h.respond(cb.Conn, msg)
		return nil, domain.E(domain.KindProvider, "authorize", fmt.Errorf("provider returned %q", msg))
	}

	tok, err := h.config.Exchange(ctx, cb.Params.Code())
	if err != nil {
		h.respond(cb.Conn, "Token exchange failed. See the monitor log for details.")
		return nil, domain.E(domain.KindProvider, "exchange code", err)
	}
	h.respond(cb.Conn, successMessage)
	return tok, nil
}

func (h *Handshake) respond(conn net.Conn, msg string) {
	if err := SendResponse(conn, msg); err != nil {
		h.logger.Warn("Failed to send message to client", "err", err)
		return
	}
	h.logger.Debug("Sent message to client", "message", msg)
}

// CallbackListener owns the listening socket for one redirect.
type CallbackListener struct {
	ln net.Listener
}

// Listen binds the redirect address. Go enables SO_REUSEADDR on Unix
// listeners, so a socket in TIME_WAIT from a previous run does not block
// the bind.
func Listen(addr string) (*CallbackListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, domain.E(domain.KindListener, "listen "+addr, err)
	}
	return &CallbackListener{ln: ln}, nil
}

func (l *CallbackListener) Addr() net.Addr { return l.ln.Addr() }

// Close is safe to call more than once.
func (l *CallbackListener) Close() error {
	if err := l.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// Callback is the accepted redirect connection and its parsed query.
type Callback struct {
	Conn   net.Conn
	Params CallbackParams
}

// Await accepts exactly one connection, closes the listening socket and
// reads the request. A malformed request closes the connection without
// writing anything. Cancelling ctx aborts the wait.
func (l *CallbackListener) Await(ctx context.Context) (*Callback, error) {
	stop := context.AfterFunc(ctx, func() { l.ln.Close() })
	conn, err := l.ln.Accept()
	stop()
	l.Close()
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return nil, domain.E(domain.KindListener, "accept", err)
	}

	stopRead := context.AfterFunc(ctx, func() { conn.SetReadDeadline(time.Now()) })
	buf := make([]byte, maxRequestSize)
	n, err := conn.Read(buf)
	stopRead()
	if err != nil && !errors.Is(err, io.EOF) {
		conn.Close()
		return nil, domain.E(domain.KindListener, "read callback", err)
	}

	params, err := ParseCallback(buf[:n])
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Callback{Conn: conn, Params: params}, nil
}

type userAgentTransport struct {
	userAgent string
	base      http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}

// WithUserAgent returns a context that makes oauth2 token requests, and
// clients derived from oauth2.Config.Client, send userAgent. Reddit
// throttles the default Go agent.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	client := &http.Client{
		Timeout:   30 * time.Second,
		Transport: &userAgentTransport{userAgent: userAgent, base: http.DefaultTransport},
	}
	return context.WithValue(ctx, oauth2.HTTPClient, client)
}
