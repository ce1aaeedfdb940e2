package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-orderform/pkg/form"
	"github.com/goliatone/go-orderform/pkg/order"
)

// Session walks a user through the order form in the terminal. The
// controller owns all state; the session only translates prompts into
// controller edits and prints what the controller reports back.
type Session struct {
	controller *form.Controller
	driver     PromptDriver
	theme      Theme
	logger     *zap.Logger
}

// NewSession constructs a session over controller. Without WithPromptDriver
// or WithStdio the session prompts through survey on stdin/stdout.
func NewSession(controller *form.Controller, options ...Option) (*Session, error) {
	if controller == nil {
		return nil, fmt.Errorf("tui: controller is required")
	}
	s := &Session{
		controller: controller,
		driver:     NewSurveyDriver(nil, nil),
		theme:      DefaultTheme(),
		logger:     zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s, nil
}

// Run prompts for every field, offers to place the order once the form is
// valid and reports the outcome. A rejected order may be retried with the
// same input. The final controller state is returned alongside any error.
func (s *Session) Run(ctx context.Context) (form.State, error) {
	if err := s.promptFullName(ctx); err != nil {
		return s.controller.State(), err
	}
	if err := s.promptSize(ctx); err != nil {
		return s.controller.State(), err
	}
	if err := s.promptToppings(ctx); err != nil {
		return s.controller.State(), err
	}
	if err := s.controller.Wait(ctx); err != nil {
		return s.controller.State(), err
	}

	state := s.controller.State()
	if !state.CanSubmit() {
		// The field prompts loop until valid, so this only triggers when a
		// custom rule set rejects the combined order.
		return state, fmt.Errorf("tui: order is incomplete")
	}
	if err := s.driver.Info(ctx, "Order: "+Summary(state.Values)); err != nil {
		return state, err
	}

	confirmed, err := s.driver.Confirm(ctx, ConfirmConfig{
		Message: "Place order?",
		Default: true,
	})
	if err != nil {
		return s.controller.State(), err
	}
	if !confirmed {
		return s.controller.State(), ErrDeclined
	}
	return s.submit(ctx)
}

func (s *Session) promptFullName(ctx context.Context) error {
	for {
		current := s.controller.State().Values.FullName
		value, err := s.driver.Input(ctx, InputConfig{
			Message: "Full Name",
			Default: current,
			Help:    "Type full name",
		})
		if err != nil {
			return err
		}
		if err := s.change(ctx, order.FieldFullName, value); err != nil {
			return err
		}
		msg := s.controller.State().Errors.FullName
		if msg == "" {
			return nil
		}
		if err := s.driver.Info(ctx, s.theme.ErrorPrefix+msg); err != nil {
			return err
		}
	}
}

func (s *Session) promptSize(ctx context.Context) error {
	labels := []string{order.SizePlaceholder}
	values := []order.Size{order.SizeNone}
	for _, option := range order.Sizes() {
		labels = append(labels, option.Label)
		values = append(values, option.Value)
	}

	for {
		current := s.controller.State().Values.Size
		defaultIndex := 0
		for i, v := range values {
			if v == current {
				defaultIndex = i
			}
		}
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:      "Size",
			Options:      labels,
			DefaultIndex: defaultIndex,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(values) {
			idx = 0
		}
		if err := s.change(ctx, order.FieldSize, string(values[idx])); err != nil {
			return err
		}
		msg := s.controller.State().Errors.Size
		if msg == "" {
			return nil
		}
		if err := s.driver.Info(ctx, s.theme.ErrorPrefix+msg); err != nil {
			return err
		}
	}
}

func (s *Session) promptToppings(ctx context.Context) error {
	catalog := order.Toppings()
	labels := make([]string, len(catalog))
	var defaults []int
	current := s.controller.State().Values
	for i, topping := range catalog {
		labels[i] = topping.Label
		if current.HasTopping(topping.ID) {
			defaults = append(defaults, i)
		}
	}

	picked, err := s.driver.MultiSelect(ctx, SelectConfig{
		Message:  "Toppings",
		Options:  labels,
		Defaults: defaults,
		PageSize: len(labels),
	})
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(picked))
	for _, idx := range picked {
		if idx >= 0 && idx < len(catalog) {
			ids = append(ids, catalog[idx].ID)
		}
	}
	if err := s.controller.SetToppings(ids); err != nil {
		return err
	}
	return nil
}

func (s *Session) submit(ctx context.Context) (form.State, error) {
	for {
		err := s.controller.Submit(ctx)
		state := s.controller.State()
		if err == nil {
			s.logger.Info("order placed", zap.String("message", state.Feedback.Success))
			return state, s.driver.Info(ctx, s.theme.SuccessPrefix+state.Feedback.Success)
		}
		if errors.Is(err, form.ErrSubmitInFlight) || errors.Is(err, form.ErrNoSubmitter) {
			return state, err
		}
		if infoErr := s.driver.Info(ctx, s.theme.FailurePrefix+state.Feedback.Failure); infoErr != nil {
			return state, infoErr
		}

		retry, promptErr := s.driver.Confirm(ctx, ConfirmConfig{
			Message: "Try again?",
			Default: false,
		})
		if promptErr != nil {
			return state, promptErr
		}
		if !retry {
			return state, err
		}
		s.logger.Debug("retrying order submission")
	}
}

func (s *Session) change(ctx context.Context, field, value string) error {
	if err := s.controller.ChangeField(field, value); err != nil {
		return err
	}
	return s.controller.Wait(ctx)
}

// Summary renders values as a single human readable line.
func Summary(values order.Values) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(values.FullName))
	b.WriteString(", ")
	if values.Size.Valid() {
		b.WriteString(values.Size.Label())
	} else {
		b.WriteString("no size")
	}
	b.WriteString(", toppings: ")
	if len(values.Toppings) == 0 {
		b.WriteString("none")
		return b.String()
	}
	names := make([]string, 0, len(values.Toppings))
	for _, id := range order.SortToppings(values.Toppings) {
		topping, _ := order.LookupTopping(id)
		names = append(names, topping.Label)
	}
	b.WriteString(strings.Join(names, ", "))
	return b.String()
}
