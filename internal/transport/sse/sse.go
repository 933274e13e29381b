// Package sse serves the MCP protocol over HTTP: clients subscribe to an
// event stream and post requests to a companion endpoint. Every subscription
// is its own session; responses are pushed onto the stream of the session
// that posted the request.
package sse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"simctl-mcp/pkg/logging"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

var (
	// ErrUnknownSession is reported when a message names no open stream.
	ErrUnknownSession = errors.New("unknown or missing session")

	// ErrServerClosed is returned by Start after Shutdown.
	ErrServerClosed = errors.New("sse server closed")
)

// MaxBodySize bounds a posted message.
const MaxBodySize = 1024 * 1024

const (
	DefaultSSEPath           = "/sse"
	DefaultMessagePath       = "/messages"
	DefaultKeepAliveInterval = 30 * time.Second
)

// Options configures the HTTP endpoints.
type Options struct {
	SSEPath     string
	MessagePath string
	// BaseURL prefixes the message endpoint announced to clients. When
	// empty the endpoint is sent as a path relative to the stream URL.
	BaseURL           string
	KeepAlive         bool
	KeepAliveInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.SSEPath == "" {
		o.SSEPath = DefaultSSEPath
	}
	if o.MessagePath == "" {
		o.MessagePath = DefaultMessagePath
	}
	if o.KeepAliveInterval <= 0 {
		o.KeepAliveInterval = DefaultKeepAliveInterval
	}
	return o
}

// SessionInfo describes an open stream.
type SessionInfo struct {
	ID        string
	CreatedAt time.Time
}

type session struct {
	id            string
	createdAt     time.Time
	events        chan []byte
	notifications chan mcp.JSONRPCNotification
	initialized   atomic.Bool
	done          chan struct{}
}

func newSession() *session {
	return &session{
		id:            uuid.NewString(),
		createdAt:     time.Now(),
		events:        make(chan []byte, 100),
		notifications: make(chan mcp.JSONRPCNotification, 100),
		done:          make(chan struct{}),
	}
}

func (s *session) SessionID() string                                   { return s.id }
func (s *session) NotificationChannel() chan<- mcp.JSONRPCNotification { return s.notifications }
func (s *session) Initialize()                                         { s.initialized.Store(true) }
func (s *session) Initialized() bool                                   { return s.initialized.Load() }

var _ server.ClientSession = (*session)(nil)

// push queues an encoded message for the stream. It gives up once the
// stream has ended.
func (s *session) push(msg any) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	select {
	case s.events <- b:
		return nil
	case <-s.done:
		return fmt.Errorf("%w: stream %s closed", ErrUnknownSession, s.id)
	}
}

// Server is the HTTP front end for one MCP server.
type Server struct {
	mcp  *server.MCPServer
	opts Options

	sessionsMu sync.RWMutex
	sessions   map[string]*session

	httpMu     sync.Mutex
	httpServer *http.Server
	closing    chan struct{}
	closeOnce  sync.Once

	inflight sync.WaitGroup
}

// New creates an HTTP front end for mcpServer.
func New(mcpServer *server.MCPServer, opts Options) *Server {
	return &Server{
		mcp:      mcpServer,
		opts:     opts.withDefaults(),
		sessions: make(map[string]*session),
		closing:  make(chan struct{}),
	}
}

// SSEPath returns the subscription path.
func (s *Server) SSEPath() string { return s.opts.SSEPath }

// MessagePath returns the message path.
func (s *Server) MessagePath() string { return s.opts.MessagePath }

// ServeHTTP routes the stream and message endpoints.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case s.opts.SSEPath:
		s.handleSSE(w, r)
	case s.opts.MessagePath:
		s.handleMessage(w, r)
	default:
		http.NotFound(w, r)
	}
}

// Start listens on addr and blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.httpMu.Lock()
	select {
	case <-s.closing:
		s.httpMu.Unlock()
		return ErrServerClosed
	default:
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = srv
	s.httpMu.Unlock()

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return ErrServerClosed
	}
	return err
}

// Shutdown ends every open stream, then stops the listener and waits for
// queued requests to finish or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.closing) })

	s.httpMu.Lock()
	srv := s.httpServer
	s.httpMu.Unlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}

	drained := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}

// Sessions returns the open streams ordered by creation time.
func (s *Server) Sessions() []SessionInfo {
	s.sessionsMu.RLock()
	out := make([]SessionInfo, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, SessionInfo{ID: sess.id, CreatedAt: sess.createdAt})
	}
	s.sessionsMu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Server) lookup(id string) (*session, error) {
	if id == "" {
		return nil, ErrUnknownSession
	}
	s.sessionsMu.RLock()
	sess, ok := s.sessions[id]
	s.sessionsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	return sess, nil
}

func (s *Server) messageEndpoint(id string) string {
	return fmt.Sprintf("%s%s?sessionId=%s", s.opts.BaseURL, s.opts.MessagePath, id)
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	sess := newSession()
	if err := s.mcp.RegisterSession(r.Context(), sess); err != nil {
		logging.Error("SSE", err, "Failed to register session")
		http.Error(w, "Session registration failed", http.StatusInternalServerError)
		return
	}

	s.sessionsMu.Lock()
	s.sessions[sess.id] = sess
	s.sessionsMu.Unlock()

	logging.Info("SSE", "New SSE connection established (session %s)", sess.id)

	defer func() {
		s.sessionsMu.Lock()
		delete(s.sessions, sess.id)
		s.sessionsMu.Unlock()
		close(sess.done)
		s.mcp.UnregisterSession(context.Background(), sess.id)
		logging.Info("SSE", "SSE connection closed (session %s)", sess.id)
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "event: endpoint\ndata: %s\n\n", s.messageEndpoint(sess.id))
	flusher.Flush()

	var keepAlive <-chan time.Time
	if s.opts.KeepAlive {
		ticker := time.NewTicker(s.opts.KeepAliveInterval)
		defer ticker.Stop()
		keepAlive = ticker.C
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.closing:
			return
		case data := <-sess.events:
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
			flusher.Flush()
		case n := <-sess.notifications:
			data, err := json.Marshal(n)
			if err != nil {
				logging.Error("SSE", err, "Failed to encode notification")
				continue
			}
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
			flusher.Flush()
		case <-keepAlive:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, err := s.lookup(r.URL.Query().Get("sessionId"))
	if err != nil {
		logging.Warn("SSE", "Rejected message: %v", err)
		http.Error(w, "No active SSE connection for this session", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil || !json.Valid(body) {
		writeParseError(w)
		return
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		// The request context ends with this response; the call outlives it.
		ctx := s.mcp.WithContext(context.Background(), sess)
		resp := s.mcp.HandleMessage(ctx, json.RawMessage(body))
		if resp == nil {
			return
		}
		if err := sess.push(resp); err != nil {
			logging.Warn("SSE", "Dropped response: %v", err)
		}
	}()

	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte("Accepted"))
}

func writeParseError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(mcp.NewJSONRPCError(mcp.NewRequestId(nil), mcp.PARSE_ERROR, "Parse error", nil))
}
