// Package controller composes session, facts, connectivity and error
// notification into the single object the presentation layer talks to.
package controller

import (
	"context"
	"sync"
	"time"

	"github.com/and161185/factshare/internal/client/factstore"
	"github.com/and161185/factshare/internal/client/notify"
	"github.com/and161185/factshare/internal/client/probe"
	"github.com/and161185/factshare/internal/client/session"
	"github.com/and161185/factshare/internal/errs"
	"github.com/and161185/factshare/internal/model"
	"github.com/and161185/factshare/internal/platform"
	"github.com/gofrs/uuid/v5"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// MsgUnexpected is shown for failures that carry no user message.
const MsgUnexpected = "Something went wrong."

// State is an immutable snapshot for rendering.
type State struct {
	Session         *model.Session
	Facts           []model.Fact
	Connection      probe.Status
	ConnectionLabel string
	ErrorMessage    string
}

// Options configures New. Zero values pick defaults.
type Options struct {
	Logger         *zap.Logger
	ProbeAttempts  int
	ProbeBackoff   probe.BackoffFactory
	ProbeSleep     probe.SleepFunc
	AttemptTimeout time.Duration
	ErrorTTL       time.Duration
	Clock          clockwork.Clock
}

// Controller routes user intents to the components and turns every failure
// into one transient message.
type Controller struct {
	sessions *session.Manager
	facts    *factstore.Store
	probe    *probe.Probe
	notifier *notify.Notifier
	log      *zap.Logger
	attempts int

	mu      sync.Mutex
	subs    map[int]func(State)
	nextSub int
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New builds a controller and its components over the given backend.
func New(auth platform.Auth, facts platform.Facts, pinger platform.Pinger, o Options) *Controller {
	log := o.Logger
	if log == nil {
		log = zap.NewNop()
	}
	attempts := o.ProbeAttempts
	if attempts < 1 {
		attempts = probe.DefaultAttempts
	}

	popts := []probe.Option{probe.WithLogger(log.Named("probe"))}
	if o.ProbeBackoff != nil {
		popts = append(popts, probe.WithBackoff(o.ProbeBackoff))
	}
	if o.ProbeSleep != nil {
		popts = append(popts, probe.WithSleep(o.ProbeSleep))
	}
	if o.AttemptTimeout > 0 {
		popts = append(popts, probe.WithAttemptTimeout(o.AttemptTimeout))
	}
	nopts := []notify.Option{notify.WithTTL(o.ErrorTTL)}
	if o.Clock != nil {
		nopts = append(nopts, notify.WithClock(o.Clock))
	}

	sessions := session.New(auth, log.Named("session"))
	c := &Controller{
		sessions: sessions,
		facts:    factstore.New(facts, sessions, log.Named("facts")),
		probe:    probe.New(pinger, popts...),
		notifier: notify.New(nopts...),
		log:      log,
		attempts: attempts,
		subs:     map[int]func(State){},
	}
	c.sessions.OnChange(c.publish)
	c.facts.OnChange(c.publish)
	c.probe.OnChange(c.publish)
	c.notifier.OnChange(func(string) { c.publish() })
	return c
}

// Start launches the connectivity probe in the background, restores the
// session and loads facts when one exists. The probe never delays the rest.
// Subsequent calls are no-ops.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	pctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		res := c.probe.Check(pctx, c.attempts)
		c.log.Debug("initial connectivity check", zap.Bool("ok", res.Success), zap.Int("attempts", res.Attempts))
	}()

	if s := c.sessions.Restore(ctx); s != nil {
		_ = c.LoadFacts(ctx)
	}
}

// Close stops the background probe and waits for it.
func (c *Controller) Close() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}

// WaitProbe blocks until the probe started by Start has finished.
func (c *Controller) WaitProbe() { c.wg.Wait() }

// CheckConnection runs a probe synchronously.
func (c *Controller) CheckConnection(ctx context.Context, attempts int) probe.Result {
	if attempts < 1 {
		attempts = c.attempts
	}
	return c.probe.Check(ctx, attempts)
}

// Login clears the current error, authenticates and loads facts. The returned
// error reports authentication only; a failed load afterwards is surfaced as a message.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	c.notifier.Clear()
	if _, err := c.sessions.Login(ctx, email, password); err != nil {
		return c.fail(err)
	}
	_ = c.LoadFacts(ctx)
	return nil
}

// Signup clears the current error, registers, logs in and loads facts.
func (c *Controller) Signup(ctx context.Context, name, email, password string) error {
	c.notifier.Clear()
	if _, err := c.sessions.Signup(ctx, name, email, password); err != nil {
		return c.fail(err)
	}
	_ = c.LoadFacts(ctx)
	return nil
}

// Logout ends the session and clears the facts. It cannot fail.
func (c *Controller) Logout(ctx context.Context) {
	c.sessions.Logout(ctx)
	c.facts.Clear()
}

// LoadFacts reloads the collection.
func (c *Controller) LoadFacts(ctx context.Context) error {
	return c.fail(c.facts.Load(ctx))
}

// CreateFact posts a new fact.
func (c *Controller) CreateFact(ctx context.Context, d model.FactDraft) (model.Fact, error) {
	f, err := c.facts.Create(ctx, d)
	return f, c.fail(err)
}

// UpdateFact edits one of the session's facts.
func (c *Controller) UpdateFact(ctx context.Context, id uuid.UUID, p model.FactPatch) (model.Fact, error) {
	f, err := c.facts.Update(ctx, id, p)
	return f, c.fail(err)
}

// DeleteFact removes one of the session's facts.
func (c *Controller) DeleteFact(ctx context.Context, id uuid.UUID) error {
	return c.fail(c.facts.Delete(ctx, id))
}

// DismissError clears the current message.
func (c *Controller) DismissError() { c.notifier.Clear() }

// CanEdit reports whether the current session may edit or delete f.
func (c *Controller) CanEdit(f model.Fact) bool { return c.facts.CanEdit(f) }

// State returns a consistent-enough snapshot of all observable state.
func (c *Controller) State() State {
	st, label := c.probe.Status()
	return State{
		Session:         c.sessions.Current(),
		Facts:           c.facts.Facts(),
		Connection:      st,
		ConnectionLabel: label,
		ErrorMessage:    c.notifier.Message(),
	}
}

// Subscribe registers fn to receive a snapshot after every change and returns
// a function that removes it. fn may be called from any goroutine.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

func (c *Controller) publish() {
	c.mu.Lock()
	if len(c.subs) == 0 {
		c.mu.Unlock()
		return
	}
	fns := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	st := c.State()
	for _, fn := range fns {
		fn(st)
	}
}

// fail surfaces err through the notifier and returns it unchanged.
func (c *Controller) fail(err error) error {
	if err == nil {
		return nil
	}
	msg := errs.Message(err, MsgUnexpected)
	c.log.Debug("surfacing error", zap.String("message", msg), zap.Error(err))
	c.notifier.Show(msg)
	return err
}
