package gateway

import (
	"context"

	"github.com/lazycamel/lazycamel/internal/console"
	"github.com/lazycamel/lazycamel/internal/models"
)

// LocalTransport serves subscriptions straight from an in-process Service
type LocalTransport struct {
	svc *Service
}

var _ console.Transport = (*LocalTransport)(nil)

// NewLocalTransport wraps a Service
func NewLocalTransport(svc *Service) *LocalTransport {
	return &LocalTransport{svc: svc}
}

func (t *LocalTransport) Fetch(ctx context.Context, id models.ConsoleID, opts models.Options) (models.ConsoleResult, error) {
	if err := ctx.Err(); err != nil {
		return models.ConsoleResult{}, err
	}
	return models.ConsoleResult{Result: t.svc.GetConsoleJSON(id, opts)}, nil
}

func (t *LocalTransport) Stream(ctx context.Context, id models.ConsoleID, opts models.Options) (console.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return t.svc.StreamConsole(id, opts), nil
}

func (t *LocalTransport) UpdateOptions(_ context.Context, id models.ConsoleID, opts models.Options) error {
	t.svc.UpdateConsoleOptions(id, opts)
	return nil
}

func (t *LocalTransport) Deactivate(_ context.Context, id models.ConsoleID) error {
	t.svc.DeactivateConsoleStream(id)
	return nil
}
