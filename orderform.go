package orderform

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-orderform/pkg/client"
	"github.com/goliatone/go-orderform/pkg/form"
	"github.com/goliatone/go-orderform/pkg/order"
	"github.com/goliatone/go-orderform/pkg/validation"
)

// Values aliases order.Values for callers that only import the root package.
type Values = order.Values

// State aliases form.State.
type State = form.State

// Controller aliases form.Controller.
type Controller = form.Controller

// Config wires a controller to a remote order endpoint.
type Config struct {
	// BaseURL of the order service. Defaults to client.DefaultBaseURL.
	BaseURL string
	// Timeout bounds a single submission. Zero means no timeout.
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewController returns a controller backed by the standard rule set and an
// HTTP client for cfg.BaseURL.
func NewController(cfg Config, options ...form.Option) (*Controller, error) {
	factory, err := NewControllerFactory(cfg, options...)
	if err != nil {
		return nil, err
	}
	return factory(), nil
}

// NewControllerFactory is NewController for surfaces that need one controller
// per visitor. Every controller shares the rule set and HTTP client.
func NewControllerFactory(cfg Config, options ...form.Option) (func() *Controller, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = client.DefaultBaseURL
	}

	orders, err := client.New(baseURL,
		client.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		client.WithLogger(logger.Named("client")),
	)
	if err != nil {
		return nil, fmt.Errorf("orderform: %w", err)
	}
	rules := validation.New()

	opts := append([]form.Option{form.WithLogger(logger.Named("form"))}, options...)
	return func() *Controller {
		return form.New(rules, orders, opts...)
	}, nil
}
