// Package stdio serves the MCP protocol over a pair of byte streams, one
// JSON-RPC message per line. Requests are handled concurrently; responses are
// written in completion order and correlated by their JSON-RPC id.
package stdio

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"simctl-mcp/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

var (
	// ErrAlreadyConnected is returned when Serve is called more than once.
	ErrAlreadyConnected = errors.New("stdio transport already connected")

	// ErrClosed is returned for writes attempted after Serve has returned.
	ErrClosed = errors.New("stdio transport closed")
)

// MaxLineSize bounds a single inbound frame.
const MaxLineSize = 1024 * 1024

const sessionID = "stdio"

// cancelGrace is how long Serve waits for in-flight requests after ctx is
// cancelled. Responses finishing later are dropped.
var cancelGrace = 2 * time.Second

const (
	stateUnconnected int32 = iota
	stateConnected
	stateClosed
)

// Transport binds an MCP server to one input and one output stream.
type Transport struct {
	server *server.MCPServer
	state  atomic.Int32

	writeMu sync.Mutex
	out     io.Writer
	closed  bool
}

// New creates an unconnected transport for mcpServer.
func New(mcpServer *server.MCPServer) *Transport {
	return &Transport{server: mcpServer}
}

// session is the single client session carried by the stream.
type session struct {
	notifications chan mcp.JSONRPCNotification
	initialized   atomic.Bool
}

func (s *session) SessionID() string                                   { return sessionID }
func (s *session) NotificationChannel() chan<- mcp.JSONRPCNotification { return s.notifications }
func (s *session) Initialize()                                         { s.initialized.Store(true) }
func (s *session) Initialized() bool                                   { return s.initialized.Load() }

var _ server.ClientSession = (*session)(nil)

// Serve reads frames from in and writes responses to out until in reaches
// EOF or ctx is cancelled. On EOF it waits for in-flight requests to finish
// and returns nil. On cancellation it waits up to cancelGrace; nothing is
// written to out once Serve has returned.
func (t *Transport) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	if !t.state.CompareAndSwap(stateUnconnected, stateConnected) {
		return ErrAlreadyConnected
	}
	defer t.state.Store(stateClosed)

	t.writeMu.Lock()
	t.out = out
	t.writeMu.Unlock()
	defer t.closeOutput()

	sess := &session{notifications: make(chan mcp.JSONRPCNotification, 100)}
	if err := t.server.RegisterSession(ctx, sess); err != nil {
		return fmt.Errorf("failed to register stdio session: %w", err)
	}
	defer t.server.UnregisterSession(context.Background(), sessionID)

	sessCtx := t.server.WithContext(ctx, sess)

	done := make(chan struct{})
	defer close(done)
	go t.forwardNotifications(sess, done)

	lines, readErr := readLines(in, done)

	var inflight sync.WaitGroup
	for {
		select {
		case <-ctx.Done():
			logging.Debug("Stdio", "Context cancelled, closing transport")
			if !waitTimeout(&inflight, cancelGrace) {
				logging.Warn("Stdio", "Dropping responses of requests still running after %s", cancelGrace)
			}
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				inflight.Wait()
				if err := <-readErr; err != nil {
					return fmt.Errorf("failed to read stdio frame: %w", err)
				}
				logging.Debug("Stdio", "Input closed, transport finished")
				return nil
			}
			inflight.Add(1)
			go func() {
				defer inflight.Done()
				t.handle(sessCtx, line)
			}()
		}
	}
}

// waitTimeout reports whether wg finished within d.
func waitTimeout(wg *sync.WaitGroup, d time.Duration) bool {
	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-finished:
		return true
	case <-timer.C:
		return false
	}
}

// readLines scans newline-delimited frames on its own goroutine so that Serve
// can react to cancellation while a read is blocked.
func readLines(in io.Reader, done <-chan struct{}) (<-chan []byte, <-chan error) {
	lines := make(chan []byte)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
		for scanner.Scan() {
			b := scanner.Bytes()
			if len(b) == 0 {
				continue
			}
			// The scanner reuses its buffer.
			line := make([]byte, len(b))
			copy(line, b)
			select {
			case lines <- line:
			case <-done:
				return
			}
		}
		errc <- scanner.Err()
	}()

	return lines, errc
}

func (t *Transport) handle(ctx context.Context, line []byte) {
	resp := t.server.HandleMessage(ctx, json.RawMessage(line))
	if resp == nil {
		return
	}
	if err := t.write(resp); errors.Is(err, ErrClosed) {
		logging.Debug("Stdio", "Dropped response after transport closed")
	} else if err != nil {
		logging.Error("Stdio", err, "Failed to write response")
	}
}

func (t *Transport) forwardNotifications(sess *session, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case n := <-sess.notifications:
			if err := t.write(n); err != nil {
				logging.Error("Stdio", err, "Failed to write notification")
			}
		}
	}
}

// write emits one JSON document followed by a newline. Writes never interleave.
func (t *Transport) write(msg any) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	b = append(b, '\n')

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if t.closed {
		return ErrClosed
	}
	_, err = t.out.Write(b)
	return err
}

func (t *Transport) closeOutput() {
	t.writeMu.Lock()
	t.closed = true
	t.writeMu.Unlock()
}
