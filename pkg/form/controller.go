package form

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-orderform/pkg/order"
)

// Validator is the rule set the controller consults. pkg/validation.Rules
// satisfies it.
type Validator interface {
	// Field returns the violation message for a single field value, or "".
	Field(field, value string) string
	// Valid reports whether the whole order satisfies every rule.
	Valid(values order.Values) bool
}

// Submitter delivers an order and returns the confirmation message.
type Submitter interface {
	SubmitOrder(ctx context.Context, values order.Values) (string, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, values order.Values) (string, error)

// SubmitOrder calls f.
func (f SubmitterFunc) SubmitOrder(ctx context.Context, values order.Values) (string, error) {
	return f(ctx, values)
}

// State is an immutable snapshot of the form.
type State struct {
	Values        order.Values
	Errors        order.FieldErrors
	SubmitEnabled bool
	Feedback      order.Feedback
	Submitting    bool
}

// CanSubmit reports whether the submit control should be enabled.
func (s State) CanSubmit() bool {
	return s.SubmitEnabled && !s.Submitting
}

// Controller holds the form state and reacts to edits and submissions.
// Listeners registered with Subscribe may be invoked from validation
// goroutines. Deliveries are serialized and never go backwards: a listener
// sees each snapshot after the one before it. A listener must not edit the
// controller synchronously; reading State is fine.
type Controller struct {
	rules     Validator
	submitter Submitter
	logger    *zap.Logger

	mu        sync.Mutex
	state     State
	objectSeq uint64
	fieldSeq  map[string]uint64
	inFlight  bool

	pending int
	idle    chan struct{}

	listeners    map[int]func(State)
	nextListener int

	// version counts state changes; guarded by mu.
	version uint64
	// notifyMu orders snapshot and dispatch; delivered is guarded by it.
	notifyMu  sync.Mutex
	delivered uint64
}

// New constructs a controller over the given rule set. submitter may be nil
// for surfaces that never submit; Submit then fails with ErrNoSubmitter.
func New(rules Validator, submitter Submitter, options ...Option) *Controller {
	c := &Controller{
		rules:     rules,
		submitter: submitter,
		logger:    zap.NewNop(),
		state:     State{Values: order.Defaults()},
		fieldSeq:  make(map[string]uint64),
		idle:      closedChan(),
		listeners: make(map[int]func(State)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.state.Values.Toppings == nil {
		c.state.Values.Toppings = []string{}
	}
	c.state.SubmitEnabled = c.rules.Valid(c.state.Values.Clone())
	return c
}

// State returns a snapshot of the current form state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// ChangeField sets a text or select field and re-validates that field only.
// The whole order is re-validated asynchronously for the submit gate.
func (c *Controller) ChangeField(field, value string) error {
	c.mu.Lock()
	switch field {
	case order.FieldFullName:
		c.state.Values.FullName = value
	case order.FieldSize:
		c.state.Values.Size = order.Size(value)
	default:
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	c.fieldSeq[field]++
	c.validateFieldLocked(field, value, c.fieldSeq[field])
	c.validateObjectLocked()
	c.version++
	c.mu.Unlock()

	c.notify()
	return nil
}

// ToggleTopping checks or unchecks a single topping. Selection is owned by
// the controller and kept in catalog order.
func (c *Controller) ToggleTopping(id string, checked bool) error {
	if _, ok := order.LookupTopping(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTopping, id)
	}

	c.mu.Lock()
	current := c.state.Values.Toppings
	next := make([]string, 0, len(current)+1)
	for _, existing := range current {
		if existing != id {
			next = append(next, existing)
		}
	}
	if checked {
		next = append(next, id)
	}
	c.state.Values.Toppings = order.SortToppings(next)
	c.validateObjectLocked()
	c.version++
	c.mu.Unlock()

	c.notify()
	return nil
}

// SetToppings replaces the selection with exactly the given checked ids.
// Order and duplicates are ignored; any unknown id rejects the whole call.
func (c *Controller) SetToppings(ids []string) error {
	for _, id := range ids {
		if _, ok := order.LookupTopping(id); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTopping, id)
		}
	}

	c.mu.Lock()
	c.state.Values.Toppings = order.SortToppings(ids)
	c.validateObjectLocked()
	c.version++
	c.mu.Unlock()

	c.notify()
	return nil
}

// Reset restores the empty order and clears errors and feedback.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.resetLocked()
	c.state.Feedback = order.Feedback{}
	c.version++
	c.mu.Unlock()

	c.notify()
}

// Submit sends the current values once. The submit gate is enforced by the
// surface; Submit does not re-validate. On success the form returns to the
// empty order and shows the confirmation; on failure the values are kept and
// the failure banner shows the extracted message. The submitter's error is
// returned unchanged.
func (c *Controller) Submit(ctx context.Context) error {
	if c.submitter == nil {
		return ErrNoSubmitter
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	c.inFlight = true
	c.state.Submitting = true
	c.state.Feedback = order.Feedback{}
	values := c.state.Values.Clone()
	c.version++
	c.mu.Unlock()
	c.notify()

	message, err := c.submitter.SubmitOrder(ctx, values)

	c.mu.Lock()
	c.inFlight = false
	c.state.Submitting = false
	if err != nil {
		c.state.Feedback = order.Failed(displayMessage(err))
		c.logger.Warn("order submission failed", zap.Error(err))
	} else {
		c.resetLocked()
		c.state.Feedback = order.Succeeded(message)
		c.logger.Info("order submitted", zap.String("message", message))
	}
	c.version++
	c.mu.Unlock()
	c.notify()

	return err
}

// Wait blocks until every validation scheduled so far has been applied, or
// ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers fn to receive a snapshot after every state change. The
// returned function removes the listener.
func (c *Controller) Subscribe(fn func(State)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

func (c *Controller) resetLocked() {
	c.state.Values = order.Defaults()
	c.state.Errors = order.FieldErrors{}
	// Results still in flight describe values that no longer exist.
	for field := range c.fieldSeq {
		c.fieldSeq[field]++
	}
	c.validateObjectLocked()
}

func (c *Controller) validateFieldLocked(field, value string, seq uint64) {
	c.beginLocked()
	go func() {
		defer c.done()
		message := c.rules.Field(field, value)

		c.mu.Lock()
		if c.fieldSeq[field] != seq {
			c.mu.Unlock()
			c.logger.Debug("discarding stale field validation", zap.String("field", field), zap.Uint64("seq", seq))
			return
		}
		c.state.Errors = c.state.Errors.With(field, message)
		c.version++
		c.mu.Unlock()
		c.notify()
	}()
}

func (c *Controller) validateObjectLocked() {
	c.objectSeq++
	seq := c.objectSeq
	values := c.state.Values.Clone()

	c.beginLocked()
	go func() {
		defer c.done()
		valid := c.rules.Valid(values)

		c.mu.Lock()
		if c.objectSeq != seq {
			c.mu.Unlock()
			c.logger.Debug("discarding stale form validation", zap.Uint64("seq", seq))
			return
		}
		c.state.SubmitEnabled = valid
		c.version++
		c.mu.Unlock()
		c.notify()
	}()
}

func (c *Controller) beginLocked() {
	if c.pending == 0 {
		c.idle = make(chan struct{})
	}
	c.pending++
}

func (c *Controller) done() {
	c.mu.Lock()
	c.pending--
	if c.pending == 0 {
		close(c.idle)
	}
	c.mu.Unlock()
}

func (c *Controller) snapshotLocked() State {
	snap := c.state
	snap.Values = c.state.Values.Clone()
	return snap
}

// notify hands listeners the state as of the call rather than as of the
// change that triggered it. Snapshots no newer than the last delivered one
// are dropped, so a late goroutine cannot overwrite a settled state.
func (c *Controller) notify() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if len(c.listeners) == 0 || c.version <= c.delivered {
		c.mu.Unlock()
		return
	}
	version := c.version
	snap := c.snapshotLocked()
	fns := make([]func(State), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	c.delivered = version
	for _, fn := range fns {
		fn(snap)
	}
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
