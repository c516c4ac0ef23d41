// Package probe checks backend reachability with a bounded number of attempts
// and reports a tri-state connection status.
package probe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/and161185/factshare/internal/errs"
	"github.com/and161185/factshare/internal/platform"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Status is the connection state shown to the user.
type Status int

const (
	StatusUnknown Status = iota
	StatusConnected
	StatusDisconnected
)

func (s Status) String() string {
	switch s {
	case StatusConnected:
		return "connected"
	case StatusDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Labels shown next to the status.
const (
	LabelIdle      = "Not checked"
	LabelChecking  = "Testing connection..."
	LabelConnected = "Connected"
	LabelFailed    = "Connection failed"
)

// Default policy values.
const (
	DefaultAttempts       = 3
	DefaultBaseDelay      = 500 * time.Millisecond
	DefaultMaxDelay       = 5 * time.Second
	DefaultAttemptTimeout = 5 * time.Second
)

// Result is the outcome of Check. Err is an errs.ErrConnectivity error when Success is false.
type Result struct {
	Success  bool
	Attempts int
	Err      error
}

// BackoffFactory returns a fresh backoff policy for one Check run.
type BackoffFactory func() retry.Backoff

// SleepFunc waits d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Exponential returns a factory for exponential backoff starting at base and capped at max.
func Exponential(base, max time.Duration) BackoffFactory {
	return func() retry.Backoff {
		return retry.WithCappedDuration(max, retry.NewExponential(base))
	}
}

// Probe runs connectivity checks against a Pinger.
type Probe struct {
	pinger         platform.Pinger
	newBackoff     BackoffFactory
	sleep          SleepFunc
	attemptTimeout time.Duration
	log            *zap.Logger

	mu       sync.Mutex
	status   Status
	label    string
	onChange func()
}

// Option configures a Probe.
type Option func(*Probe)

// WithBackoff sets the delay policy between attempts.
func WithBackoff(f BackoffFactory) Option { return func(p *Probe) { p.newBackoff = f } }

// WithSleep replaces the wait between attempts (tests record delays instead of sleeping).
func WithSleep(f SleepFunc) Option { return func(p *Probe) { p.sleep = f } }

// WithAttemptTimeout bounds each ping; zero disables the bound.
func WithAttemptTimeout(d time.Duration) Option { return func(p *Probe) { p.attemptTimeout = d } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(p *Probe) { p.log = l } }

// New constructs a Probe in StatusUnknown.
func New(pinger platform.Pinger, opts ...Option) *Probe {
	p := &Probe{
		pinger:         pinger,
		newBackoff:     Exponential(DefaultBaseDelay, DefaultMaxDelay),
		sleep:          sleepCtx,
		attemptTimeout: DefaultAttemptTimeout,
		log:            zap.NewNop(),
		status:         StatusUnknown,
		label:          LabelIdle,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// OnChange registers the single listener called after every status change.
func (p *Probe) OnChange(fn func()) {
	p.mu.Lock()
	p.onChange = fn
	p.mu.Unlock()
}

// Status returns the current status and its label.
func (p *Probe) Status() (Status, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status, p.label
}

// Check pings up to maxAttempts times (at least once), waiting per the backoff
// policy between failures. It never panics and never returns an error; the
// outcome is reported in Result and in the probe status.
func (p *Probe) Check(ctx context.Context, maxAttempts int) Result {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	p.set(StatusUnknown, LabelChecking)

	b := p.newBackoff()
	var (
		last     error
		attempts int
	)
	for attempts < maxAttempts {
		attempts++
		last = p.ping(ctx)
		if last == nil {
			p.log.Debug("backend reachable", zap.Int("attempt", attempts))
			p.set(StatusConnected, LabelConnected)
			return Result{Success: true, Attempts: attempts}
		}
		p.log.Debug("ping failed", zap.Int("attempt", attempts), zap.Int("max", maxAttempts), zap.Error(last))
		if attempts == maxAttempts || ctx.Err() != nil {
			break
		}
		delay, stop := b.Next()
		if stop {
			break
		}
		if err := p.sleep(ctx, delay); err != nil {
			last = err
			break
		}
	}

	p.log.Warn("backend unreachable", zap.Int("attempts", attempts), zap.Error(last))
	p.set(StatusDisconnected, LabelFailed)
	return Result{
		Attempts: attempts,
		Err:      errs.New(errs.ErrConnectivity, "probe.check", LabelFailed, last),
	}
}

// ping performs one bounded attempt; a panicking pinger counts as a failure.
func (p *Probe) ping(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ping panic: %v", r)
		}
	}()
	if p.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.attemptTimeout)
		defer cancel()
	}
	return p.pinger.Ping(ctx)
}

func (p *Probe) set(s Status, label string) {
	p.mu.Lock()
	changed := p.status != s || p.label != label
	p.status, p.label = s, label
	cb := p.onChange
	p.mu.Unlock()

	if changed && cb != nil {
		cb()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
