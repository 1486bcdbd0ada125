package console

import (
	"context"

	"github.com/lazycamel/lazycamel/internal/models"
)

// Transport is the remote side of a subscription: the engine's dev console
// endpoint, reached over JSON-RPC or in-process.
type Transport interface {
	// Fetch returns the current state of a console
	Fetch(ctx context.Context, id models.ConsoleID, opts models.Options) (models.ConsoleResult, error)

	// Stream opens a push channel for a console. ctx only bounds the setup call;
	// the stream lives until Cancel is called or the remote side ends it.
	Stream(ctx context.Context, id models.ConsoleID, opts models.Options) (Stream, error)

	// UpdateOptions replaces the options the remote side applies to a live stream
	UpdateOptions(ctx context.Context, id models.ConsoleID, opts models.Options) error

	// Deactivate tells the remote side the consumer is done with a console
	Deactivate(ctx context.Context, id models.ConsoleID) error
}

// Stream is a cancellable handle on a console push channel
type Stream interface {
	// Events yields pushes in arrival order. It is closed when the stream ends.
	Events() <-chan models.ConsoleResult

	// Err reports why the stream ended; nil after Cancel or while still open
	Err() error

	// Cancel terminates the stream. Safe to call more than once.
	Cancel()
}
