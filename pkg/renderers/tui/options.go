package tui

import (
	"github.com/AlecAivazis/survey/v2/terminal"
	"go.uber.org/zap"
)

// Theme captures optional prefixes applied to banners and inline errors. Keep
// minimal to avoid coupling session logic to ANSI specifics.
type Theme struct {
	ErrorPrefix   string
	SuccessPrefix string
	FailurePrefix string
}

// DefaultTheme returns plain text prefixes.
func DefaultTheme() Theme {
	return Theme{
		ErrorPrefix:   "  ! ",
		SuccessPrefix: "✓ ",
		FailurePrefix: "✗ ",
	}
}

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver used by the session.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithStdio prompts and prints through in and out instead of the process
// streams.
func WithStdio(in terminal.FileReader, out terminal.FileWriter) Option {
	return func(s *Session) {
		s.driver = NewSurveyDriver(in, out)
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}
