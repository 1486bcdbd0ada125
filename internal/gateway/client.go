package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lazycamel/lazycamel/internal/console"
	"github.com/lazycamel/lazycamel/internal/models"
)

const streamBuffer = 64

// ClientOption configures a Client
type ClientOption func(*Client)

// WithNamespace sets the JSON-RPC method prefix
func WithNamespace(ns string) ClientOption {
	return func(c *Client) {
		c.namespace = ns
	}
}

// WithClientLogger sets the client logger
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDialer overrides the WebSocket dialer
func WithDialer(d *websocket.Dialer) ClientOption {
	return func(c *Client) {
		c.dialer = d
	}
}

// Client talks JSON-RPC over a single WebSocket connection to the engine's
// dev UI endpoint. It implements console.Transport.
type Client struct {
	url       string
	namespace string
	logger    *slog.Logger
	dialer    *websocket.Dialer

	conn    *websocket.Conn
	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan rpcResponse
	streams map[string]*clientStream
	err     error
	done    chan struct{}
}

var _ console.Transport = (*Client)(nil)

// Dial connects to a dev UI JSON-RPC endpoint
func Dial(ctx context.Context, url string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		url:       url,
		namespace: DefaultNamespace,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		dialer:    websocket.DefaultDialer,
		pending:   make(map[string]chan rpcResponse),
		streams:   make(map[string]*clientStream),
		done:      make(chan struct{}),
	}
	for _, fn := range opts {
		fn(c)
	}

	conn, _, err := c.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	c.conn = conn
	c.logger.Info("connected to dev console endpoint", "url", url)

	go c.readLoop()
	return c, nil
}

// URL returns the endpoint the client is connected to
func (c *Client) URL() string {
	return c.url
}

// Done is closed when the connection is gone
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns why the connection ended, nil while it is open
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close shuts the connection down. Pending calls fail with ErrClosed and
// open streams end.
func (c *Client) Close() error {
	c.writeMu.Lock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	c.shutdown(ErrClosed)
	return c.conn.Close()
}

// Fetch implements console.Transport
func (c *Client) Fetch(ctx context.Context, id models.ConsoleID, opts models.Options) (models.ConsoleResult, error) {
	var res models.ConsoleResult
	err := c.call(ctx, MethodGetConsoleJSON, &consoleParam{ID: id, Options: opts}, &res)
	return res, err
}

// UpdateOptions implements console.Transport
func (c *Client) UpdateOptions(ctx context.Context, id models.ConsoleID, opts models.Options) error {
	return c.call(ctx, MethodUpdateConsoleOptions, &consoleParam{ID: id, Options: opts}, nil)
}

// Deactivate implements console.Transport
func (c *Client) Deactivate(ctx context.Context, id models.ConsoleID) error {
	return c.call(ctx, MethodDeactivateConsoleStream, &consoleParam{ID: id}, nil)
}

// Stream implements console.Transport. Every response carrying the stream's
// request id is a push, until the stream is cancelled or the server answers
// with an error.
func (c *Client) Stream(ctx context.Context, id models.ConsoleID, opts models.Options) (console.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := &clientStream{
		client: c,
		id:     uuid.NewString(),
		events: make(chan models.ConsoleResult, streamBuffer),
	}

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return nil, err
	}
	c.streams[s.id] = s
	c.mu.Unlock()

	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      s.id,
		Method:  qualify(c.namespace, MethodStreamConsole),
		Params:  &consoleParam{ID: id, Options: opts},
	}
	if err := c.write(req); err != nil {
		c.dropStream(s.id)
		return nil, err
	}
	return s, nil
}

func (c *Client) call(ctx context.Context, method string, params *consoleParam, result any) error {
	id := uuid.NewString()
	ch := make(chan rpcResponse, 1)

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return err
	}
	c.pending[id] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	req := rpcRequest{JSONRPC: "2.0", ID: id, Method: qualify(c.namespace, method), Params: params}
	if err := c.write(req); err != nil {
		return err
	}

	select {
	case resp := <-ch:
		if resp.Error != nil {
			return resp.Error
		}
		if result == nil || len(resp.Result) == 0 {
			return nil
		}
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("failed to parse %s response: %w", method, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return c.Err()
	}
}

func (c *Client) write(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(v); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return nil
}

func (c *Client) readLoop() {
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.shutdown(fmt.Errorf("%w: %v", ErrClosed, err))
			return
		}
		var resp rpcResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			c.logger.Warn("dropping malformed frame", "err", err)
			continue
		}
		c.dispatch(resp)
	}
}

func (c *Client) dispatch(resp rpcResponse) {
	c.mu.Lock()
	ch, isCall := c.pending[resp.ID]
	if isCall {
		delete(c.pending, resp.ID)
	}
	s, isStream := c.streams[resp.ID]
	c.mu.Unlock()

	switch {
	case isCall:
		ch <- resp
	case isStream:
		if resp.Error != nil {
			c.dropStream(resp.ID)
			s.finish(resp.Error)
			return
		}
		var res models.ConsoleResult
		if err := json.Unmarshal(resp.Result, &res); err != nil {
			c.logger.Warn("dropping malformed push", "stream", resp.ID, "err", err)
			return
		}
		s.deliver(res)
	default:
		c.logger.Debug("response for unknown request", "id", resp.ID)
	}
}

func (c *Client) dropStream(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.streams, id)
}

func (c *Client) shutdown(err error) {
	c.mu.Lock()
	if c.err != nil {
		c.mu.Unlock()
		return
	}
	c.err = err
	streams := c.streams
	c.streams = make(map[string]*clientStream)
	close(c.done)
	c.mu.Unlock()

	c.logger.Info("dev console connection closed", "err", err)
	for _, s := range streams {
		s.finish(err)
	}
}

// clientStream is a console.Stream backed by a streamConsole request
type clientStream struct {
	client *Client
	id     string

	mu     sync.Mutex
	events chan models.ConsoleResult
	closed bool
	err    error
}

func (s *clientStream) Events() <-chan models.ConsoleResult {
	return s.events
}

func (s *clientStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Cancel unsubscribes and closes Events. The unsubscribe is best effort.
func (s *clientStream) Cancel() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.events)
	s.mu.Unlock()

	s.client.dropStream(s.id)
	if s.client.Err() != nil {
		return
	}
	if err := s.client.write(rpcRequest{JSONRPC: "2.0", ID: s.id, Method: methodUnsubscribe}); err != nil {
		s.client.logger.Debug("unsubscribe failed", "stream", s.id, "err", err)
	}
}

func (s *clientStream) deliver(res models.ConsoleResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if !pushLatest(s.events, res) {
		s.client.logger.Warn("stream consumer is behind, dropped oldest push", "stream", s.id)
	}
}

func (s *clientStream) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.err = err
	close(s.events)
}
