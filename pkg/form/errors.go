package form

import (
	"errors"
	"strings"
)

var (
	// ErrUnknownField is returned when an edit names a field the form lacks.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrUnknownTopping is returned for topping ids outside the catalog.
	ErrUnknownTopping = errors.New("form: unknown topping")
	// ErrSubmitInFlight is returned when Submit is called while a previous
	// submission has not finished.
	ErrSubmitInFlight = errors.New("form: submission already in flight")
	// ErrNoSubmitter is returned by Submit when no Submitter was configured.
	ErrNoSubmitter = errors.New("form: no submitter configured")
)

func displayMessage(err error) string {
	var displayer interface{ Display() string }
	if errors.As(err, &displayer) {
		if msg := strings.TrimSpace(displayer.Display()); msg != "" {
			return msg
		}
	}
	return err.Error()
}
