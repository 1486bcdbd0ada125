package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lazycamel/lazycamel/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Handler serves a Service as JSON-RPC over WebSocket
type Handler struct {
	svc       *Service
	namespace string
	logger    *slog.Logger
	upgrader  websocket.Upgrader
}

// NewHandler creates a WebSocket handler answering methods under namespace
func NewHandler(svc *Service, namespace string, logger *slog.Logger) *Handler {
	return &Handler{
		svc:       svc,
		namespace: namespace,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	sc := &serverConn{
		h:       h,
		conn:    conn,
		streams: make(map[string]*Listener),
		stop:    make(chan struct{}),
	}
	sc.serve()
}

// serverConn is one client connection
type serverConn struct {
	h    *Handler
	conn *websocket.Conn

	writeMu sync.Mutex

	mu      sync.Mutex
	streams map[string]*Listener
	stop    chan struct{}
}

func (sc *serverConn) serve() {
	logger := sc.h.logger.With("remote", sc.conn.RemoteAddr().String())
	logger.Debug("client connected")
	defer func() {
		close(sc.stop)
		sc.cancelStreams()
		sc.conn.Close()
		logger.Debug("client disconnected")
	}()

	sc.conn.SetReadDeadline(time.Now().Add(pongWait))
	sc.conn.SetPongHandler(func(string) error {
		return sc.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go sc.keepalive()

	for {
		_, raw, err := sc.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read error", "err", err)
			}
			return
		}
		sc.handle(raw)
	}
}

func (sc *serverConn) keepalive() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			sc.writeMu.Lock()
			sc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := sc.conn.WriteMessage(websocket.PingMessage, nil)
			sc.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-sc.stop:
			return
		}
	}
}

func (sc *serverConn) handle(raw []byte) {
	var req rpcRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		sc.writeError("", codeParseError, "invalid JSON-RPC request")
		return
	}

	if req.Method == methodUnsubscribe {
		sc.unsubscribe(req.ID)
		return
	}

	ns, method := splitMethod(req.Method)
	if ns != sc.h.namespace {
		sc.writeError(req.ID, codeMethodNotFound, "method not found: "+req.Method)
		return
	}
	if req.Params == nil || req.Params.ID == "" {
		sc.writeError(req.ID, codeInvalidParams, "missing console id")
		return
	}
	id, opts := req.Params.ID, req.Params.Options

	switch method {
	case MethodGetConsoleJSON:
		sc.writeResult(req.ID, models.ConsoleResult{Result: sc.h.svc.GetConsoleJSON(id, opts)})
	case MethodStreamConsole:
		sc.subscribe(req.ID, id, opts)
	case MethodUpdateConsoleOptions:
		sc.writeResult(req.ID, sc.h.svc.UpdateConsoleOptions(id, opts))
	case MethodDeactivateConsoleStream:
		sc.writeResult(req.ID, sc.h.svc.DeactivateConsoleStream(id))
	default:
		sc.writeError(req.ID, codeMethodNotFound, "method not found: "+req.Method)
	}
}

func (sc *serverConn) subscribe(reqID string, id models.ConsoleID, opts models.Options) {
	l := sc.h.svc.StreamConsole(id, opts)
	sc.mu.Lock()
	if old, ok := sc.streams[reqID]; ok {
		old.Cancel()
	}
	sc.streams[reqID] = l
	sc.mu.Unlock()

	go func() {
		for res := range l.Events() {
			sc.writeResult(reqID, res)
		}
		sc.mu.Lock()
		if sc.streams[reqID] == l {
			delete(sc.streams, reqID)
		}
		sc.mu.Unlock()
		if err := l.Err(); err != nil {
			sc.writeError(reqID, codeServerError, err.Error())
		}
	}()
}

func (sc *serverConn) unsubscribe(reqID string) {
	sc.mu.Lock()
	l, ok := sc.streams[reqID]
	delete(sc.streams, reqID)
	sc.mu.Unlock()
	if ok {
		l.Cancel()
	}
}

func (sc *serverConn) cancelStreams() {
	sc.mu.Lock()
	streams := sc.streams
	sc.streams = make(map[string]*Listener)
	sc.mu.Unlock()
	for _, l := range streams {
		l.Cancel()
	}
}

func (sc *serverConn) writeResult(id string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		sc.writeError(id, codeServerError, err.Error())
		return
	}
	sc.write(rpcResponse{JSONRPC: "2.0", ID: id, Result: data})
}

func (sc *serverConn) writeError(id string, code int, msg string) {
	sc.write(rpcResponse{JSONRPC: "2.0", ID: id, Error: &RPCError{Code: code, Message: msg}})
}

func (sc *serverConn) write(resp rpcResponse) {
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()
	sc.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := sc.conn.WriteJSON(resp); err != nil {
		sc.h.logger.Debug("websocket write failed", "id", resp.ID, "err", err)
	}
}
