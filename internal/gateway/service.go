package gateway

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/lazycamel/lazycamel/internal/models"
)

// DefaultUpdateInterval is how often a streamed console is re-evaluated
const DefaultUpdateInterval = time.Second

// Console is a dev console the service can evaluate. The returned value must
// marshal to a JSON object.
type Console interface {
	ID() models.ConsoleID
	Call(opts models.Options) (any, error)
}

// ConsoleFunc adapts a function to the Console interface
type ConsoleFunc struct {
	Name models.ConsoleID
	Fn   func(opts models.Options) (any, error)
}

func (c ConsoleFunc) ID() models.ConsoleID { return c.Name }

func (c ConsoleFunc) Call(opts models.Options) (any, error) { return c.Fn(opts) }

// Service serves dev console data, once or as a periodic stream. Streamed
// consoles are tracked per console id: the first caller's options create the
// subscription, later callers share it, and updates replace its options.
type Service struct {
	interval time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	consoles map[models.ConsoleID]Console
	subs     map[models.ConsoleID]*serviceSubscription
}

// NewService creates a service evaluating the given consoles every interval
func NewService(interval time.Duration, logger *slog.Logger, consoles ...Console) *Service {
	if interval <= 0 {
		interval = DefaultUpdateInterval
	}
	s := &Service{
		interval: interval,
		logger:   logger,
		consoles: make(map[models.ConsoleID]Console),
		subs:     make(map[models.ConsoleID]*serviceSubscription),
	}
	for _, c := range consoles {
		s.Register(c)
	}
	return s
}

// Register adds or replaces a console
func (s *Service) Register(c Console) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consoles[c.ID()] = c
}

// GetConsoleJSON evaluates a console and returns its JSON text. Missing or
// failing consoles yield "{}".
func (s *Service) GetConsoleJSON(id models.ConsoleID, opts models.Options) string {
	return s.getOrCreate(id, opts).call()
}

// StreamConsole returns a listener receiving the console JSON every interval
func (s *Service) StreamConsole(id models.ConsoleID, opts models.Options) *Listener {
	return s.getOrCreate(id, opts).listen()
}

// UpdateConsoleOptions replaces the options of a live console subscription.
// It reports false when the console has no subscription.
func (s *Service) UpdateConsoleOptions(id models.ConsoleID, opts models.Options) bool {
	s.mu.Lock()
	sub, ok := s.subs[id]
	s.mu.Unlock()
	if !ok {
		return false
	}
	sub.setOptions(opts)
	return true
}

// DeactivateConsoleStream stops a console subscription and ends its
// listeners. It reports false when there was nothing to stop.
func (s *Service) DeactivateConsoleStream(id models.ConsoleID) bool {
	s.mu.Lock()
	sub, ok := s.subs[id]
	delete(s.subs, id)
	s.mu.Unlock()
	if !ok {
		return false
	}
	sub.cancel()
	return true
}

// Active lists console ids with a live subscription
func (s *Service) Active() []models.ConsoleID {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]models.ConsoleID, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	return ids
}

// Close stops every subscription
func (s *Service) Close() {
	s.mu.Lock()
	subs := s.subs
	s.subs = make(map[models.ConsoleID]*serviceSubscription)
	s.mu.Unlock()
	for _, sub := range subs {
		sub.cancel()
	}
}

func (s *Service) getOrCreate(id models.ConsoleID, opts models.Options) *serviceSubscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub, ok := s.subs[id]; ok {
		return sub
	}
	sub := newServiceSubscription(s, id, opts)
	s.subs[id] = sub
	return sub
}

func (s *Service) lookup(id models.ConsoleID) (Console, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.consoles[id]
	return c, ok
}

// serviceSubscription evaluates one console on a ticker and fans the result
// out to its listeners
type serviceSubscription struct {
	svc *Service
	id  models.ConsoleID

	optMu   sync.Mutex
	options models.Options

	mu        sync.Mutex
	listeners map[*Listener]struct{}
	done      chan struct{}
	once      sync.Once
}

func newServiceSubscription(svc *Service, id models.ConsoleID, opts models.Options) *serviceSubscription {
	sub := &serviceSubscription{
		svc:       svc,
		id:        id,
		options:   opts.Clone(),
		listeners: make(map[*Listener]struct{}),
		done:      make(chan struct{}),
	}
	go sub.run(svc.interval)
	return sub
}

func (sub *serviceSubscription) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-sub.done:
			return
		case <-ticker.C:
			sub.broadcast()
		}
	}
}

func (sub *serviceSubscription) broadcast() {
	sub.mu.Lock()
	if len(sub.listeners) == 0 {
		sub.mu.Unlock()
		return
	}
	sub.mu.Unlock()

	res := models.ConsoleResult{Result: sub.call()}

	sub.mu.Lock()
	defer sub.mu.Unlock()
	for l := range sub.listeners {
		l.deliver(res)
	}
}

func (sub *serviceSubscription) call() string {
	result := "{}"
	c, ok := sub.svc.lookup(sub.id)
	if !ok {
		sub.svc.logger.Debug("console not registered", "console", sub.id)
		return result
	}

	sub.optMu.Lock()
	opts := sub.options.Clone()
	sub.optMu.Unlock()

	v, err := c.Call(opts)
	if err != nil {
		sub.svc.logger.Debug("error calling console", "console", sub.id, "err", err)
		return result
	}
	data, err := json.Marshal(v)
	if err != nil || len(data) == 0 || data[0] != '{' {
		sub.svc.logger.Debug("console returned a non-object", "console", sub.id, "err", err)
		return result
	}
	return string(data)
}

func (sub *serviceSubscription) setOptions(opts models.Options) {
	sub.optMu.Lock()
	defer sub.optMu.Unlock()
	sub.options = opts.Clone()
}

func (sub *serviceSubscription) listen() *Listener {
	l := &Listener{
		sub:    sub,
		events: make(chan models.ConsoleResult, listenerBuffer),
	}
	sub.mu.Lock()
	defer sub.mu.Unlock()
	select {
	case <-sub.done:
		l.closed = true
		l.err = ErrStreamDeactivated
		close(l.events)
	default:
		sub.listeners[l] = struct{}{}
	}
	return l
}

func (sub *serviceSubscription) remove(l *Listener) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	delete(sub.listeners, l)
}

func (sub *serviceSubscription) cancel() {
	sub.once.Do(func() {
		close(sub.done)
		sub.mu.Lock()
		defer sub.mu.Unlock()
		for l := range sub.listeners {
			l.finish(ErrStreamDeactivated)
		}
		sub.listeners = make(map[*Listener]struct{})
	})
}

const listenerBuffer = 64

// Listener receives the periodic output of a streamed console. It satisfies
// console.Stream, so in-process consumers can use it directly.
type Listener struct {
	sub *serviceSubscription

	mu     sync.Mutex
	events chan models.ConsoleResult
	closed bool
	err    error
}

// Events yields console results until the listener is cancelled or the
// console is deactivated
func (l *Listener) Events() <-chan models.ConsoleResult {
	return l.events
}

// Err is ErrStreamDeactivated when the console was deactivated under the listener
func (l *Listener) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Cancel detaches the listener. The console subscription keeps running until
// it is deactivated.
func (l *Listener) Cancel() {
	l.sub.remove(l)
	l.finish(nil)
}

// deliver hands a result over without blocking the broadcaster. A listener
// that fell a full buffer behind loses its oldest buffered result.
func (l *Listener) deliver(res models.ConsoleResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	if !pushLatest(l.events, res) {
		l.sub.svc.logger.Warn("console listener is behind, dropped oldest update", "console", l.sub.id)
	}
}

// pushLatest queues res, evicting the oldest queued result when the buffer is
// full. The caller must be the only sender. It reports false when something
// was evicted.
func pushLatest(ch chan models.ConsoleResult, res models.ConsoleResult) bool {
	select {
	case ch <- res:
		return true
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- res:
	default:
	}
	return false
}

func (l *Listener) finish(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.err = err
	close(l.events)
}
