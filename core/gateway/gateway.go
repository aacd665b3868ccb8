// Package gateway serves the requests only the privileged side of the clipper
// may perform: fetching mirror pages and turning cross-origin images into data
// URIs. Callers talk to it through a Client over a typed request/response
// channel; every request gets its own reply channel.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrClosed is returned by a Client once the gateway stopped serving.
var ErrClosed = errors.New("gateway: closed")

// Backend performs the network work behind the gateway.
type Backend interface {
	FetchWithRetry(ctx context.Context, url string) (string, error)
	ToDataURI(ctx context.Context, imageURL string) (string, error)
}

// Request is one of FetchPage, FetchImage, ReportReadiness or SetIndicator.
type Request interface {
	kind() string
}

// FetchPage asks for a page body, retried while the server answers 404.
type FetchPage struct{ URL string }

// FetchImage asks for an image as a base64 data URI.
type FetchImage struct{ URL string }

// ReportReadiness marks a session as ready to receive clip commands.
type ReportReadiness struct{ SessionID string }

// SetIndicator toggles the activity indicator of a session.
type SetIndicator struct {
	SessionID string
	Active    bool
}

func (FetchPage) kind() string       { return "fetch-page" }
func (FetchImage) kind() string      { return "fetch-image" }
func (ReportReadiness) kind() string { return "report-readiness" }
func (SetIndicator) kind() string    { return "set-indicator" }

// Response answers a Request. Body holds the page HTML for FetchPage and the
// data URI for FetchImage; Session holds the session state after
// ReportReadiness and SetIndicator.
type Response struct {
	Body    string
	Session Session
	Err     error
}

type envelope struct {
	ctx   context.Context
	req   Request
	reply chan Response
}

// Gateway dispatches requests to a Backend.
type Gateway struct {
	backend  Backend
	sessions *SessionStore
	requests chan envelope
	done     chan struct{}
	logger   *slog.Logger
}

// New creates a Gateway. Call Run to start serving.
func New(backend Backend, sessions *SessionStore, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	if sessions == nil {
		sessions = NewSessionStore()
	}
	return &Gateway{
		backend:  backend,
		sessions: sessions,
		requests: make(chan envelope),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// Sessions returns the session store owned by the gateway.
func (g *Gateway) Sessions() *SessionStore {
	return g.sessions
}

// Run serves requests until ctx is cancelled. Each request is handled on its
// own goroutine so concurrent image requests do not queue behind each other.
func (g *Gateway) Run(ctx context.Context) {
	defer close(g.done)
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-g.requests:
			go func() {
				env.reply <- g.handle(env.ctx, env.req)
			}()
		}
	}
}

func (g *Gateway) handle(ctx context.Context, req Request) Response {
	log := g.logger.With("request", req.kind())
	switch r := req.(type) {
	case FetchPage:
		log.Debug("gateway: fetching page", "url", r.URL)
		body, err := g.backend.FetchWithRetry(ctx, r.URL)
		return Response{Body: body, Err: err}
	case FetchImage:
		log.Debug("gateway: fetching image", "url", r.URL)
		uri, err := g.backend.ToDataURI(ctx, r.URL)
		return Response{Body: uri, Err: err}
	case ReportReadiness:
		s, err := g.sessions.MarkReady(r.SessionID)
		return Response{Session: s, Err: err}
	case SetIndicator:
		s, err := g.sessions.SetIndicator(r.SessionID, r.Active)
		return Response{Session: s, Err: err}
	default:
		return Response{Err: fmt.Errorf("gateway: unknown request %T", req)}
	}
}

// Client returns the caller side of the gateway.
func (g *Gateway) Client() *Client {
	return &Client{gw: g}
}

// Client sends requests to a Gateway and waits for the answers.
// It implements core.Gateway.
type Client struct {
	gw *Gateway
}

// Do sends req and blocks until it is answered, ctx ends, or the gateway stops.
func (c *Client) Do(ctx context.Context, req Request) (Response, error) {
	env := envelope{ctx: ctx, req: req, reply: make(chan Response, 1)}
	select {
	case c.gw.requests <- env:
	case <-c.gw.done:
		return Response{}, ErrClosed
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
	select {
	case resp := <-env.reply:
		return resp, resp.Err
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// FetchWithRetry fetches a page through the gateway.
func (c *Client) FetchWithRetry(ctx context.Context, url string) (string, error) {
	resp, err := c.Do(ctx, FetchPage{URL: url})
	return resp.Body, err
}

// ToDataURI fetches an image through the gateway.
func (c *Client) ToDataURI(ctx context.Context, imageURL string) (string, error) {
	resp, err := c.Do(ctx, FetchImage{URL: imageURL})
	return resp.Body, err
}

// ReportReady marks the session as ready.
func (c *Client) ReportReady(ctx context.Context, sessionID string) error {
	_, err := c.Do(ctx, ReportReadiness{SessionID: sessionID})
	return err
}

// SetIndicator sets the session's activity indicator.
func (c *Client) SetIndicator(ctx context.Context, sessionID string, active bool) error {
	_, err := c.Do(ctx, SetIndicator{SessionID: sessionID, Active: active})
	return err
}
