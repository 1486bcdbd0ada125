package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/lazycamel/lazycamel/internal/console"
	"github.com/lazycamel/lazycamel/internal/models"
)

// ConnectedMsg is sent when the transport to an endpoint is ready
type ConnectedMsg struct {
	Endpoint  string
	URL       string
	Namespace string
	Transport console.Transport

	// Done is closed when the connection drops and Err then says why. Both
	// are nil for in-process transports.
	Done <-chan struct{}
	Err  func() error

	// Close releases the transport
	Close func()
}

// DisconnectedMsg is sent when the connection is lost or could not be made
type DisconnectedMsg struct {
	Error string
}

// Connect dials an endpoint and reports the outcome as a ConnectedMsg or a
// DisconnectedMsg
func Connect(ctx context.Context, ep models.EndpointProfile, logger *slog.Logger) interface{} {
	c, err := Dial(ctx, ep.URL, WithNamespace(ep.Namespace), WithClientLogger(logger))
	if err != nil {
		return DisconnectedMsg{Error: err.Error()}
	}
	return ConnectedMsg{
		Endpoint:  ep.Name,
		URL:       ep.URL,
		Namespace: ep.Namespace,
		Transport: c,
		Done:      c.Done(),
		Err:       c.Err,
		Close:     func() { _ = c.Close() },
	}
}

// ConnectMock starts a simulated engine and serves it in process
func ConnectMock(interval time.Duration, logger *slog.Logger) interface{} {
	engine := NewMockEngine()
	engine.Start(interval)
	svc := NewService(interval, logger, engine.Consoles()...)
	return ConnectedMsg{
		Endpoint:  "Mock Engine",
		URL:       "in-process",
		Namespace: DefaultNamespace,
		Transport: NewLocalTransport(svc),
		Close: func() {
			svc.Close()
			engine.Close()
		},
	}
}
