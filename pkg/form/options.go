package form

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-orderform/pkg/order"
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger attaches a logger. Controllers are silent by default.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithInitial seeds the form with values other than the empty order. Reset
// and successful submissions still return to the empty order.
func WithInitial(values order.Values) Option {
	return func(c *Controller) {
		c.state.Values = values.Clone()
	}
}
