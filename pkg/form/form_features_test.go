package form_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/goliatone/go-orderform/pkg/client"
	"github.com/goliatone/go-orderform/pkg/form"
	"github.com/goliatone/go-orderform/pkg/order"
	"github.com/goliatone/go-orderform/pkg/validation"
)

type formTestContext struct {
	server     *httptest.Server
	mu         sync.Mutex
	status     int
	message    string
	controller *form.Controller
	submitErr  error
}

func (f *formTestContext) reset() {
	f.close()
	f.respond(http.StatusCreated, "ok")
	f.controller = nil
	f.submitErr = nil
}

func (f *formTestContext) close() {
	if f.server != nil {
		f.server.Close()
		f.server = nil
	}
}

func (f *formTestContext) anEmptyOrderForm() error {
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		status, message := f.status, f.message
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
	}))
	c, err := client.New(f.server.URL)
	if err != nil {
		return err
	}
	f.controller = form.New(validation.New(), c)
	return nil
}

func (f *formTestContext) respond(status int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.message = status, message
}

func (f *formTestContext) theServiceAccepts(message string) error {
	f.respond(http.StatusCreated, message)
	return nil
}

func (f *formTestContext) theServiceRejects(status int, message string) error {
	f.respond(status, message)
	return nil
}

func (f *formTestContext) iEnterFullName(value string) error {
	return f.controller.ChangeField(order.FieldFullName, value)
}

func (f *formTestContext) iChooseSize(value string) error {
	return f.controller.ChangeField(order.FieldSize, value)
}

func (f *formTestContext) iCheckToppings(list string) error {
	for _, id := range strings.Split(list, ",") {
		if err := f.controller.ToggleTopping(strings.TrimSpace(id), true); err != nil {
			return err
		}
	}
	return nil
}

func (f *formTestContext) iSubmitTheOrder() error {
	if err := f.settle(); err != nil {
		return err
	}
	f.submitErr = f.controller.Submit(context.Background())
	return nil
}

func (f *formTestContext) settle() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return f.controller.Wait(ctx)
}

func (f *formTestContext) state() (form.State, error) {
	if err := f.settle(); err != nil {
		return form.State{}, err
	}
	return f.controller.State(), nil
}

func (f *formTestContext) theFieldErrorIs(field string) func(string) error {
	return func(want string) error {
		s, err := f.state()
		if err != nil {
			return err
		}
		if got := s.Errors.Get(field); got != want {
			return fmt.Errorf("%s error: want %q, got %q", field, want, got)
		}
		return nil
	}
}

func (f *formTestContext) submittingIs(enabled bool) func() error {
	return func() error {
		s, err := f.state()
		if err != nil {
			return err
		}
		if s.CanSubmit() != enabled {
			return fmt.Errorf("submit enabled: want %v, got %v", enabled, s.CanSubmit())
		}
		return nil
	}
}

func (f *formTestContext) theSuccessBannerReads(want string) error {
	s, err := f.state()
	if err != nil {
		return err
	}
	if f.submitErr != nil {
		return fmt.Errorf("unexpected submit error: %w", f.submitErr)
	}
	if s.Feedback.Success != want || s.Feedback.Failure != "" {
		return fmt.Errorf("feedback: %+v", s.Feedback)
	}
	return nil
}

func (f *formTestContext) theFailureBannerReads(want string) error {
	s, err := f.state()
	if err != nil {
		return err
	}
	if f.submitErr == nil {
		return fmt.Errorf("expected submit error")
	}
	if s.Feedback.Failure != want || s.Feedback.Success != "" {
		return fmt.Errorf("feedback: %+v", s.Feedback)
	}
	return nil
}

func (f *formTestContext) theFormIsEmpty() error {
	s, err := f.state()
	if err != nil {
		return err
	}
	if s.Values.FullName != "" || s.Values.Size != order.SizeNone || len(s.Values.Toppings) != 0 {
		return fmt.Errorf("form not reset: %+v", s.Values)
	}
	return nil
}

func (f *formTestContext) theFullNameIs(want string) error {
	s, err := f.state()
	if err != nil {
		return err
	}
	if s.Values.FullName != want {
		return fmt.Errorf("full name: want %q, got %q", want, s.Values.FullName)
	}
	return nil
}

func (f *formTestContext) theSizeIs(want string) error {
	s, err := f.state()
	if err != nil {
		return err
	}
	if string(s.Values.Size) != want {
		return fmt.Errorf("size: want %q, got %q", want, s.Values.Size)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &formTestContext{}

	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})
	ctx.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		tc.close()
		return ctx, err
	})

	ctx.Step(`^an empty order form$`, tc.anEmptyOrderForm)
	ctx.Step(`^the order service accepts orders with message "([^"]*)"$`, tc.theServiceAccepts)
	ctx.Step(`^the order service rejects orders with status (\d+) and message "([^"]*)"$`, tc.theServiceRejects)
	ctx.Step(`^I enter "([^"]*)" as full name$`, tc.iEnterFullName)
	ctx.Step(`^I choose size "([^"]*)"$`, tc.iChooseSize)
	ctx.Step(`^I check toppings "([^"]*)"$`, tc.iCheckToppings)
	ctx.Step(`^I submit the order$`, tc.iSubmitTheOrder)
	ctx.Step(`^the full name error is "([^"]*)"$`, tc.theFieldErrorIs(order.FieldFullName))
	ctx.Step(`^the size error is "([^"]*)"$`, tc.theFieldErrorIs(order.FieldSize))
	ctx.Step(`^submitting is disabled$`, tc.submittingIs(false))
	ctx.Step(`^submitting is enabled$`, tc.submittingIs(true))
	ctx.Step(`^the success banner reads "([^"]*)"$`, tc.theSuccessBannerReads)
	ctx.Step(`^the failure banner reads "([^"]*)"$`, tc.theFailureBannerReads)
	ctx.Step(`^the form is empty$`, tc.theFormIsEmpty)
	ctx.Step(`^the full name is "([^"]*)"$`, tc.theFullNameIs)
	ctx.Step(`^the size is "([^"]*)"$`, tc.theSizeIs)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
