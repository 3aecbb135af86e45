package modal

import (
	"context"
	"errors"
	"image/draw"
	"log/slog"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/vakinha/checkout/internal/checkout"
	"github.com/vakinha/checkout/internal/clipboard"
	"github.com/vakinha/checkout/internal/countdown"
	"github.com/vakinha/checkout/internal/domain"
	"github.com/vakinha/checkout/internal/messages"
)

// PaymentTTL is how long a payment code is shown as valid.
const PaymentTTL = 30 * time.Minute

// CopyRevertDelay is how long the copied confirmation label stays up.
const CopyRevertDelay = clipboard.RevertDelay

var (
	// ErrBusy is returned when a submit arrives while the modal is open.
	ErrBusy = errors.New("modal: checkout already in progress")

	// ErrNotReady is returned by Copy outside the Ready state.
	ErrNotReady = errors.New("modal: no payment code to copy")
)

// Orchestrator validates and submits checkout requests.
type Orchestrator interface {
	Validate(req checkout.Request) error
	Submit(ctx context.Context, req checkout.Request) (*domain.PaymentPresentation, error)
}

// View is the presentation surface driven by the controller. Its methods
// are called with the controller's lock held and must not call back into it.
type View interface {
	ShowLoading()
	ShowPayment(p domain.PaymentPresentation)
	ShowError(message string)
	UpdateCountdown(display string)
	MarkExpired()
	MarkPaid()
	Hide()
	SetSubmitEnabled(enabled bool)
	SetCopyLabel(label string)

	// CodeSurface returns the surface the scannable code is drawn on, or
	// nil when the view has none.
	CodeSurface() draw.Image
	ShowCode()
	HideCode()
}

// CodeRenderer draws a payment code onto a surface.
type CodeRenderer interface {
	Render(code string, surface draw.Image) error
}

// Copier writes text to the clipboard. It reports success and never fails
// loudly.
type Copier interface {
	Copy(ctx context.Context, text string) bool
}

// Config holds the controller's collaborators.
type Config struct {
	Orchestrator Orchestrator
	View         View
	Renderer     CodeRenderer
	Copier       Copier
	Clock        clock.WithTicker
	Messages     *messages.Catalog
	Logger       *slog.Logger
	PaymentTTL   time.Duration
}

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	State        State
	Expired      bool
	Paid         bool
	Presentation *domain.PaymentPresentation
}

// Controller owns the modal state for one page lifetime.
type Controller struct {
	orch     Orchestrator
	view     View
	renderer CodeRenderer
	copier   Copier
	msgs     *messages.Catalog
	logger   *slog.Logger
	ttl      time.Duration

	countdown  *countdown.Timer
	copyRevert *countdown.Timer

	mu      sync.Mutex
	state   State
	expired bool
	paid    bool
	current *domain.PaymentPresentation
	// attempt changes on every transition into Idle or Ready so timer
	// callbacks from an earlier attempt are dropped.
	attempt uint64
}

// New creates a controller in the Idle state.
func New(cfg Config) *Controller {
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}
	if cfg.Messages == nil {
		cfg.Messages = messages.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.PaymentTTL <= 0 {
		cfg.PaymentTTL = PaymentTTL
	}
	return &Controller{
		orch:       cfg.Orchestrator,
		view:       cfg.View,
		renderer:   cfg.Renderer,
		copier:     cfg.Copier,
		msgs:       cfg.Messages,
		logger:     cfg.Logger,
		ttl:        cfg.PaymentTTL,
		countdown:  countdown.New(cfg.Clock),
		copyRevert: countdown.New(cfg.Clock, countdown.WithInterval(CopyRevertDelay)),
	}
}

// Submit runs one checkout attempt. A validation failure leaves the modal
// Idle and is returned as *validation.Errors. Otherwise the modal shows
// Loading until the orchestrator settles and ends in Ready or Errored; the
// orchestrator error, if any, is returned after the view shows it.
func (c *Controller) Submit(ctx context.Context, req checkout.Request) error {
	c.mu.Lock()
	if c.state != Idle {
		c.mu.Unlock()
		return ErrBusy
	}
	if err := c.orch.Validate(req); err != nil {
		c.mu.Unlock()
		return err
	}
	c.apply(SubmitRequested)
	c.view.SetSubmitEnabled(false)
	c.view.ShowLoading()
	c.mu.Unlock()

	p, err := c.orch.Submit(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.apply(NetworkFailed)
		c.countdown.Stop()
		c.view.ShowError(c.displayMessage(err))
		return err
	}

	c.apply(NetworkSucceeded)
	c.attempt++
	c.current = p
	c.expired = false
	c.paid = false

	c.view.ShowPayment(*p)
	c.drawCode(p.PixCode)

	total := int(c.ttl / time.Second)
	c.view.UpdateCountdown(countdown.Display(total))
	attempt := c.attempt
	c.countdown.Start(total,
		func(remaining int) { c.onTick(attempt, remaining) },
		func() { c.onExpire(attempt) },
	)
	return nil
}

// Close handles the explicit close control.
func (c *Controller) Close() error { return c.Fire(CloseRequested) }

// Dismiss handles an overlay click or escape key.
func (c *Controller) Dismiss() error { return c.Fire(Dismissed) }

// Retry returns an errored modal to Idle.
func (c *Controller) Retry() error { return c.Fire(RetryRequested) }

// Fire delivers a user event. Network and timer events are driven
// internally and are rejected here.
func (c *Controller) Fire(e Event) error {
	switch e {
	case SubmitRequested, NetworkSucceeded, NetworkFailed, TimerExpired:
		return &TransitionError{From: c.State(), Event: e}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	to, err := next(c.state, e)
	if err != nil {
		return err
	}
	c.state = to
	if to == Idle {
		c.reset()
	}
	return nil
}

// Copy puts the current payment code on the clipboard and flips the copy
// label for CopyRevertDelay. It reports whether the copy succeeded.
func (c *Controller) Copy(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.state != Ready || c.current == nil {
		c.mu.Unlock()
		return false, ErrNotReady
	}
	code := c.current.PixCode
	attempt := c.attempt
	c.mu.Unlock()

	if !c.copier.Copy(ctx, code) {
		return false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attempt != attempt {
		return true, nil
	}
	c.view.SetCopyLabel(c.msgs.Get(messages.ModalCopyDone))
	c.copyRevert.Start(1, nil, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.attempt == attempt {
			c.view.SetCopyLabel(c.msgs.Get(messages.ModalCopyLabel))
		}
	})
	return true, nil
}

// MarkPaid records a confirmed payment and stops the countdown.
func (c *Controller) MarkPaid() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Ready || c.paid {
		return
	}
	c.paid = true
	c.countdown.Stop()
	c.view.MarkPaid()
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a copy of the controller state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{State: c.state, Expired: c.expired, Paid: c.paid}
	if c.current != nil {
		p := *c.current
		s.Presentation = &p
	}
	return s
}

// apply performs an internal transition that the table must accept.
func (c *Controller) apply(e Event) {
	to, err := next(c.state, e)
	if err != nil {
		c.logger.Error("modal transition rejected", "state", c.state.String(), "event", e.String())
		return
	}
	c.logger.Debug("modal transition", "from", c.state.String(), "event", e.String(), "to", to.String())
	c.state = to
}

func (c *Controller) reset() {
	c.countdown.Stop()
	c.copyRevert.Stop()
	c.attempt++
	c.current = nil
	c.expired = false
	c.paid = false
	c.view.Hide()
	c.view.SetSubmitEnabled(true)
}

func (c *Controller) drawCode(code string) {
	surface := c.view.CodeSurface()
	if surface == nil || c.renderer == nil {
		c.view.HideCode()
		return
	}
	if err := c.renderer.Render(code, surface); err != nil {
		c.logger.Warn("payment code rendering failed", "err", err)
		c.view.HideCode()
		return
	}
	c.view.ShowCode()
}

func (c *Controller) onTick(attempt uint64, remaining int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attempt != attempt || c.state != Ready {
		return
	}
	c.view.UpdateCountdown(countdown.Display(remaining))
}

func (c *Controller) onExpire(attempt uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attempt != attempt || c.state != Ready {
		return
	}
	c.apply(TimerExpired)
	c.expired = true
	c.view.MarkExpired()
}

func (c *Controller) displayMessage(err error) string {
	var oerr *domain.OrchestratorError
	if errors.As(err, &oerr) && oerr.Message != "" {
		return oerr.Message
	}
	return c.msgs.Get(messages.ErrorGeneric)
}
