package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lazycamel/lazycamel/internal/console"
	"github.com/lazycamel/lazycamel/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer serves svc over WebSocket and returns a connected client
func newTestServer(t *testing.T, svc *Service) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(NewHandler(svc, DefaultNamespace, discardLogger()))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, url, WithClientLogger(discardLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, srv
}

func routesConsole(counter *atomic.Int64) Console {
	return ConsoleFunc{Name: models.ConsoleRoute, Fn: func(opts models.Options) (any, error) {
		n := counter.Add(1)
		routes := []models.Route{{RouteID: "r1", State: "Started", Statistics: models.RouteStatistics{ExchangesTotal: n}}}
		if optInt(opts, "limit", -1) == 0 {
			routes = routes[:0]
		}
		return models.RouteList{Routes: routes}, nil
	}}
}

func TestClientFetch(t *testing.T) {
	var counter atomic.Int64
	svc := NewService(time.Hour, discardLogger(), routesConsole(&counter))
	defer svc.Close()
	c, _ := newTestServer(t, svc)

	res, err := c.Fetch(context.Background(), models.ConsoleRoute, models.Options{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"routes":[{"routeId":"r1","from":"","state":"Started","statistics":{"idleSince":0,"exchangesTotal":1,"exchangesFailed":0,"exchangesInflight":0}}]}`, res.Result)
}

func TestClientUnknownNamespace(t *testing.T) {
	svc := NewService(time.Hour, discardLogger())
	defer svc.Close()
	srv := httptest.NewServer(NewHandler(svc, "other-extension", discardLogger()))
	defer srv.Close()

	c, err := Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"), WithClientLogger(discardLogger()))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Fetch(context.Background(), models.ConsoleRoute, nil)
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, codeMethodNotFound, rpcErr.Code)
}

func TestClientStreamAndOptions(t *testing.T) {
	var counter atomic.Int64
	svc := NewService(10*time.Millisecond, discardLogger(), routesConsole(&counter))
	defer svc.Close()
	c, _ := newTestServer(t, svc)
	ctx := context.Background()

	_, err := c.Fetch(ctx, models.ConsoleRoute, nil)
	require.NoError(t, err)

	stream, err := c.Stream(ctx, models.ConsoleRoute, nil)
	require.NoError(t, err)

	select {
	case res := <-stream.Events():
		assert.Contains(t, res.Result, `"routeId":"r1"`)
	case <-time.After(2 * time.Second):
		t.Fatal("no push received")
	}

	require.NoError(t, c.UpdateOptions(ctx, models.ConsoleRoute, models.Options{"limit": 0.0, "x": "y"}))
	require.Eventually(t, func() bool {
		select {
		case res := <-stream.Events():
			return strings.Contains(res.Result, `"routes":[]`)
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond)

	stream.Cancel()
	stream.Cancel()
	assert.NoError(t, stream.Err())
}

func TestClientDeactivateEndsOtherStreams(t *testing.T) {
	var counter atomic.Int64
	svc := NewService(10*time.Millisecond, discardLogger(), routesConsole(&counter))
	defer svc.Close()
	c, _ := newTestServer(t, svc)
	ctx := context.Background()

	stream, err := c.Stream(ctx, models.ConsoleRoute, nil)
	require.NoError(t, err)
	require.NoError(t, c.Deactivate(ctx, models.ConsoleRoute))

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-stream.Events():
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond)
	var rpcErr *RPCError
	assert.ErrorAs(t, stream.Err(), &rpcErr)
}

func TestClientServerGone(t *testing.T) {
	// accepts a single request and then drops the connection
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_, _, _ = conn.ReadMessage()
		conn.Close()
	}))
	defer srv.Close()

	c, err := Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"), WithClientLogger(discardLogger()))
	require.NoError(t, err)
	defer c.Close()

	stream, err := c.Stream(context.Background(), models.ConsoleRoute, nil)
	require.NoError(t, err)

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("client did not notice the closed connection")
	}
	assert.ErrorIs(t, c.Err(), ErrClosed)
	for range stream.Events() {
	}
	assert.ErrorIs(t, stream.Err(), ErrClosed)

	_, err = c.Fetch(context.Background(), models.ConsoleRoute, nil)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = c.Stream(context.Background(), models.ConsoleRoute, nil)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestClientClose(t *testing.T) {
	var counter atomic.Int64
	svc := NewService(10*time.Millisecond, discardLogger(), routesConsole(&counter))
	defer svc.Close()
	c, _ := newTestServer(t, svc)

	stream, err := c.Stream(context.Background(), models.ConsoleRoute, nil)
	require.NoError(t, err)

	require.NoError(t, c.Close())
	<-c.Done()
	for range stream.Events() {
	}
	assert.ErrorIs(t, stream.Err(), ErrClosed)
	_, err = c.Fetch(context.Background(), models.ConsoleRoute, nil)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestClientDialFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := Dial(ctx, "ws://127.0.0.1:1/nowhere", WithDialer(&websocket.Dialer{HandshakeTimeout: 200 * time.Millisecond}))
	assert.Error(t, err)
}

func TestSubscriptionOverWebSocket(t *testing.T) {
	var counter atomic.Int64
	svc := NewService(10*time.Millisecond, discardLogger(), routesConsole(&counter))
	defer svc.Close()
	c, _ := newTestServer(t, svc)

	changes := make(chan console.Snapshot, 64)
	sub := console.New(c, models.ConsoleRoute, nil, console.WithOnChange(func(s console.Snapshot) {
		select {
		case changes <- s:
		default:
		}
	}))
	require.NoError(t, sub.Activate(context.Background()))
	assert.Equal(t, console.StateStreaming, sub.State())

	var first models.RouteList
	require.NoError(t, sub.CurrentSnapshot().Decode(&first))
	require.Len(t, first.Routes, 1)

	require.Eventually(t, func() bool {
		var list models.RouteList
		_ = sub.CurrentSnapshot().Decode(&list)
		return len(list.Routes) == 1 && list.Routes[0].Statistics.ExchangesTotal > first.Routes[0].Statistics.ExchangesTotal
	}, 2*time.Second, 5*time.Millisecond)

	sub.SetOption(context.Background(), "limit", 0)
	assert.Empty(t, sub.Options())

	sub.Deactivate(context.Background())
	assert.Equal(t, console.StateIdle, sub.State())
	require.Eventually(t, func() bool { return len(svc.Active()) == 0 }, 2*time.Second, 5*time.Millisecond)
}
