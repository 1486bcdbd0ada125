package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lazycamel/lazycamel/internal/models"
)

// DefaultNamespace prefixes every JSON-RPC method name unless the endpoint
// profile says otherwise
const DefaultNamespace = models.DefaultNamespace

// JSON-RPC method names, without namespace
const (
	MethodGetConsoleJSON          = "getConsoleJSON"
	MethodStreamConsole           = "streamConsole"
	MethodUpdateConsoleOptions    = "updateConsoleOptions"
	MethodDeactivateConsoleStream = "deactivateConsoleStream"

	// methodUnsubscribe cancels the stream opened by the request with the same id
	methodUnsubscribe = "unsubscribe"
)

// JSON-RPC error codes
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
)

var (
	// ErrClosed is returned for calls on a closed client
	ErrClosed = errors.New("gateway: connection closed")

	// ErrStreamDeactivated ends streams whose console subscription was deactivated
	ErrStreamDeactivated = errors.New("gateway: console stream deactivated")
)

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      string        `json:"id"`
	Method  string        `json:"method"`
	Params  *consoleParam `json:"params,omitempty"`
}

type consoleParam struct {
	ID      models.ConsoleID `json:"id"`
	Options models.Options   `json:"options,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC error object returned by the remote side
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// qualify prefixes a method with the namespace
func qualify(namespace, method string) string {
	if namespace == "" {
		return method
	}
	return namespace + "." + method
}

// splitMethod separates "<namespace>.<method>" at the last dot
func splitMethod(full string) (namespace, method string) {
	if i := strings.LastIndex(full, "."); i >= 0 {
		return full[:i], full[i+1:]
	}
	return "", full
}
