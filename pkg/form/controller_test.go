package form_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-orderform/pkg/form"
	"github.com/goliatone/go-orderform/pkg/order"
	"github.com/goliatone/go-orderform/pkg/validation"
)

func settle(t *testing.T, c *form.Controller) form.State {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
	return c.State()
}

func TestControllerShortNameScenario(t *testing.T) {
	c := form.New(validation.New(), nil)

	mustChange(t, c, order.FieldFullName, "Al")
	mustChange(t, c, order.FieldSize, "M")
	state := settle(t, c)

	if state.Errors.FullName != validation.MsgFullNameTooShort {
		t.Fatalf("fullName error: want %q, got %q", validation.MsgFullNameTooShort, state.Errors.FullName)
	}
	if state.Errors.Size != "" {
		t.Fatalf("size error should be clear, got %q", state.Errors.Size)
	}
	if state.SubmitEnabled {
		t.Fatalf("submit must be disabled")
	}
}

func TestControllerMissingSizeScenario(t *testing.T) {
	c := form.New(validation.New(), nil)

	mustChange(t, c, order.FieldFullName, "Alice Smith")
	mustChange(t, c, order.FieldSize, "L")
	mustChange(t, c, order.FieldSize, "")
	state := settle(t, c)

	if state.Errors.Size != validation.MsgSizeIncorrect {
		t.Fatalf("size error: want %q, got %q", validation.MsgSizeIncorrect, state.Errors.Size)
	}
	if state.SubmitEnabled {
		t.Fatalf("submit must be disabled")
	}
}

func TestControllerUntouchedFieldDisablesSubmitWithoutError(t *testing.T) {
	c := form.New(validation.New(), nil)

	mustChange(t, c, order.FieldFullName, "Alice Smith")
	state := settle(t, c)

	if !state.Errors.Empty() {
		t.Fatalf("no inline error expected for untouched size, got %+v", state.Errors)
	}
	if state.SubmitEnabled {
		t.Fatalf("submit must stay disabled until size is chosen")
	}
}

func TestControllerFieldErrorsOnlyTrackEditedField(t *testing.T) {
	c := form.New(validation.New(), nil)

	mustChange(t, c, order.FieldSize, "")
	mustChange(t, c, order.FieldFullName, "Alice Smith")
	state := settle(t, c)

	if state.Errors.Size != validation.MsgSizeIncorrect {
		t.Fatalf("size error must persist until size is edited, got %q", state.Errors.Size)
	}
	if state.Errors.FullName != "" {
		t.Fatalf("fullName error should be clear, got %q", state.Errors.FullName)
	}

	mustChange(t, c, order.FieldSize, "S")
	state = settle(t, c)
	if !state.Errors.Empty() || !state.SubmitEnabled {
		t.Fatalf("expected clean, submittable form: %+v", state)
	}
}

func TestControllerToppingsNeverAffectSubmitEnabled(t *testing.T) {
	c := form.New(validation.New(), nil)
	mustChange(t, c, order.FieldFullName, "Alice Smith")
	mustChange(t, c, order.FieldSize, "L")

	for _, ids := range [][]string{{"1", "3"}, {}, {"1", "2", "3", "4", "5"}} {
		if err := c.SetToppings(ids); err != nil {
			t.Fatalf("set toppings: %v", err)
		}
		if state := settle(t, c); !state.SubmitEnabled {
			t.Fatalf("toppings %v disabled submit", ids)
		}
	}
}

func TestControllerToppingSelection(t *testing.T) {
	c := form.New(validation.New(), nil)

	if err := c.ToggleTopping("3", true); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := c.ToggleTopping("1", true); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := c.ToggleTopping("1", true); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if diff := cmp.Diff([]string{"1", "3"}, c.State().Values.Toppings); diff != "" {
		t.Fatalf("toppings mismatch (-want +got):\n%s", diff)
	}

	if err := c.ToggleTopping("3", false); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if diff := cmp.Diff([]string{"1"}, c.State().Values.Toppings); diff != "" {
		t.Fatalf("toppings mismatch (-want +got):\n%s", diff)
	}

	if err := c.SetToppings([]string{"5", "2", "5"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	first := c.State().Values.Toppings
	if err := c.SetToppings([]string{"2", "5"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if diff := cmp.Diff(first, c.State().Values.Toppings); diff != "" {
		t.Fatalf("set toppings is not idempotent (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"2", "5"}, first); diff != "" {
		t.Fatalf("toppings mismatch (-want +got):\n%s", diff)
	}
}

func TestControllerRejectsUnknownInput(t *testing.T) {
	c := form.New(validation.New(), nil)

	if err := c.ChangeField("crust", "thin"); !errors.Is(err, form.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if err := c.ToggleTopping("9", true); !errors.Is(err, form.ErrUnknownTopping) {
		t.Fatalf("expected ErrUnknownTopping, got %v", err)
	}
	if err := c.SetToppings([]string{"1", "9"}); !errors.Is(err, form.ErrUnknownTopping) {
		t.Fatalf("expected ErrUnknownTopping, got %v", err)
	}
	if len(c.State().Values.Toppings) != 0 {
		t.Fatalf("rejected SetToppings must not change the selection")
	}
}

func TestControllerSubmitSuccessResetsForm(t *testing.T) {
	var sent order.Values
	submitter := form.SubmitterFunc(func(_ context.Context, v order.Values) (string, error) {
		sent = v
		return "Thank you for your order, Alice Smith!", nil
	})
	c := form.New(validation.New(), submitter)

	mustChange(t, c, order.FieldFullName, "Alice Smith")
	mustChange(t, c, order.FieldSize, "L")
	if err := c.SetToppings([]string{"1", "3"}); err != nil {
		t.Fatalf("set toppings: %v", err)
	}
	if !settle(t, c).SubmitEnabled {
		t.Fatalf("expected submit enabled")
	}

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	state := settle(t, c)

	wantSent := order.Values{FullName: "Alice Smith", Size: order.SizeLarge, Toppings: []string{"1", "3"}}
	if diff := cmp.Diff(wantSent, sent); diff != "" {
		t.Fatalf("submitted values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(order.Defaults(), state.Values); diff != "" {
		t.Fatalf("values not reset (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(order.Succeeded("Thank you for your order, Alice Smith!"), state.Feedback); diff != "" {
		t.Fatalf("feedback mismatch (-want +got):\n%s", diff)
	}
	if state.SubmitEnabled || state.Submitting {
		t.Fatalf("empty form must not be submittable: %+v", state)
	}
}

type rejection struct{ msg string }

func (r rejection) Error() string   { return "rejected: " + r.msg }
func (r rejection) Display() string { return r.msg }

func TestControllerSubmitFailureKeepsValues(t *testing.T) {
	calls := 0
	submitter := form.SubmitterFunc(func(context.Context, order.Values) (string, error) {
		calls++
		if calls == 1 {
			return "", rejection{msg: "kitchen closed"}
		}
		return "ok", nil
	})
	c := form.New(validation.New(), submitter)
	mustChange(t, c, order.FieldFullName, "Alice Smith")
	mustChange(t, c, order.FieldSize, "M")
	settle(t, c)

	err := c.Submit(context.Background())
	var rej rejection
	if !errors.As(err, &rej) {
		t.Fatalf("expected submitter error returned, got %v", err)
	}
	state := settle(t, c)
	if diff := cmp.Diff(order.Failed("kitchen closed"), state.Feedback); diff != "" {
		t.Fatalf("feedback mismatch (-want +got):\n%s", diff)
	}
	want := order.Values{FullName: "Alice Smith", Size: order.SizeMedium, Toppings: []string{}}
	if diff := cmp.Diff(want, state.Values); diff != "" {
		t.Fatalf("values must survive a failure (-want +got):\n%s", diff)
	}
	if !state.SubmitEnabled {
		t.Fatalf("form should remain submittable after failure")
	}

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if got := c.State().Feedback; got.Failure != "" || got.Success != "ok" {
		t.Fatalf("success must clear failure: %+v", got)
	}
}

func TestControllerSubmitPlainErrorUsesErrorText(t *testing.T) {
	c := form.New(validation.New(), form.SubmitterFunc(func(context.Context, order.Values) (string, error) {
		return "", errors.New("network down")
	}))
	_ = c.Submit(context.Background())
	if got := c.State().Feedback.Failure; got != "network down" {
		t.Fatalf("unexpected failure banner %q", got)
	}
}

func TestControllerSubmitWithoutSubmitter(t *testing.T) {
	c := form.New(validation.New(), nil)
	if err := c.Submit(context.Background()); !errors.Is(err, form.ErrNoSubmitter) {
		t.Fatalf("expected ErrNoSubmitter, got %v", err)
	}
}

func TestControllerRejectsConcurrentSubmit(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	c := form.New(validation.New(), form.SubmitterFunc(func(context.Context, order.Values) (string, error) {
		close(started)
		<-release
		return "ok", nil
	}))

	errCh := make(chan error, 1)
	go func() { errCh <- c.Submit(context.Background()) }()
	<-started

	if !c.State().Submitting || c.State().CanSubmit() {
		t.Fatalf("expected submitting state")
	}
	if err := c.Submit(context.Background()); !errors.Is(err, form.ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}
	close(release)
	if err := <-errCh; err != nil {
		t.Fatalf("first submit: %v", err)
	}
}

// gatedRules delays whole-object validation of one specific snapshot until
// released, so a newer edit can resolve first.
type gatedRules struct {
	*validation.Rules
	gate    chan struct{}
	blocked func(order.Values) bool
	once    sync.Once
	reached chan struct{}
}

func (g *gatedRules) Valid(v order.Values) bool {
	if g.blocked != nil && g.blocked(v) {
		g.once.Do(func() { close(g.reached) })
		<-g.gate
	}
	return g.Rules.Valid(v)
}

func TestControllerDiscardsStaleFormValidation(t *testing.T) {
	rules := &gatedRules{
		Rules:   validation.New(),
		gate:    make(chan struct{}),
		reached: make(chan struct{}),
		blocked: func(v order.Values) bool {
			return v.FullName == "Alice Smith" && v.Size == ""
		},
	}
	c := form.New(rules, nil)

	mustChange(t, c, order.FieldFullName, "Alice Smith")
	<-rules.reached
	mustChange(t, c, order.FieldSize, "L")

	deadline := time.After(2 * time.Second)
	for !c.State().SubmitEnabled {
		select {
		case <-deadline:
			t.Fatalf("latest validation never applied")
		case <-time.After(5 * time.Millisecond):
		}
	}

	close(rules.gate)
	if state := settle(t, c); !state.SubmitEnabled {
		t.Fatalf("stale validation overwrote the latest result")
	}
}

type slowFieldRules struct {
	*validation.Rules
	gate    chan struct{}
	reached chan struct{}
}

func (s *slowFieldRules) Field(field, value string) string {
	if value == "Al" {
		close(s.reached)
		<-s.gate
	}
	return s.Rules.Field(field, value)
}

func TestControllerDiscardsStaleFieldValidation(t *testing.T) {
	rules := &slowFieldRules{
		Rules:   validation.New(),
		gate:    make(chan struct{}),
		reached: make(chan struct{}),
	}
	c := form.New(rules, nil)

	mustChange(t, c, order.FieldFullName, "Al")
	<-rules.reached
	mustChange(t, c, order.FieldFullName, "Alice")

	close(rules.gate)
	if state := settle(t, c); state.Errors.FullName != "" {
		t.Fatalf("stale too-short message shown for %q: %q", state.Values.FullName, state.Errors.FullName)
	}
}

func TestControllerSubscribe(t *testing.T) {
	c := form.New(validation.New(), nil)

	var (
		mu   sync.Mutex
		seen []form.State
	)
	cancel := c.Subscribe(func(s form.State) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	mustChange(t, c, order.FieldFullName, "Alice Smith")
	mustChange(t, c, order.FieldSize, "S")
	settle(t, c)

	mu.Lock()
	count := len(seen)
	last := seen[len(seen)-1]
	mu.Unlock()
	if count < 2 {
		t.Fatalf("expected notifications, got %d", count)
	}
	if !last.SubmitEnabled {
		t.Fatalf("last notification should reflect the settled state")
	}

	cancel()
	cancel()
	mustChange(t, c, order.FieldSize, "M")
	settle(t, c)
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != count {
		t.Fatalf("listener called after cancel")
	}
}

func TestControllerSubscribeLastSnapshotMatchesState(t *testing.T) {
	for run := 0; run < 200; run++ {
		c := form.New(validation.New(), nil)

		var (
			mu    sync.Mutex
			last  form.State
			calls int
		)
		c.Subscribe(func(s form.State) {
			mu.Lock()
			last = s
			calls++
			mu.Unlock()
		})

		mustChange(t, c, order.FieldFullName, "Alice Smith")
		mustChange(t, c, order.FieldSize, "S")
		want := settle(t, c)

		mu.Lock()
		got := last
		n := calls
		mu.Unlock()
		if n == 0 {
			t.Fatalf("run %d: listener never called", run)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("run %d: last snapshot differs from settled state (-want +got):\n%s", run, diff)
		}
	}
}

func TestControllerSubscribeListenerMayReadState(t *testing.T) {
	c := form.New(validation.New(), nil)

	var (
		mu   sync.Mutex
		read []form.State
	)
	c.Subscribe(func(form.State) {
		s := c.State()
		mu.Lock()
		read = append(read, s)
		mu.Unlock()
	})

	mustChange(t, c, order.FieldFullName, "Alice Smith")
	settle(t, c)

	mu.Lock()
	defer mu.Unlock()
	if len(read) == 0 {
		t.Fatalf("listener never called")
	}
}

func TestControllerInitialValuesAndReset(t *testing.T) {
	c := form.New(validation.New(), nil, form.WithInitial(order.Values{FullName: "Bob Builder", Size: order.SizeSmall}))
	state := c.State()
	if !state.SubmitEnabled {
		t.Fatalf("valid initial values should enable submit")
	}
	if state.Values.Toppings == nil {
		t.Fatalf("toppings must never be nil")
	}

	c.Reset()
	state = settle(t, c)
	if diff := cmp.Diff(order.Defaults(), state.Values); diff != "" {
		t.Fatalf("reset mismatch (-want +got):\n%s", diff)
	}
	if state.SubmitEnabled {
		t.Fatalf("empty form must not be submittable")
	}
}

func TestControllerWaitHonoursContext(t *testing.T) {
	rules := &gatedRules{
		Rules:   validation.New(),
		gate:    make(chan struct{}),
		reached: make(chan struct{}),
		blocked: func(v order.Values) bool { return v.FullName == "stuck" },
	}
	c := form.New(rules, nil)
	mustChange(t, c, order.FieldFullName, "stuck")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := c.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	close(rules.gate)
	settle(t, c)
}

func mustChange(t *testing.T, c *form.Controller, field, value string) {
	t.Helper()
	if err := c.ChangeField(field, value); err != nil {
		t.Fatalf("change %s: %v", field, err)
	}
}
