package html

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"strings"

	"github.com/flosch/pongo2/v6"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-orderform/pkg/form"
	"github.com/goliatone/go-orderform/pkg/order"
)

//go:embed templates/*.tpl
var templatesFS embed.FS

const pageTemplate = "templates/order.tpl"

// Option configures a Renderer.
type Option func(*config)

type config struct {
	title     string
	action    string
	manifests []*theme.Manifest
	provider  theme.ThemeProvider
	themeName string
	variant   string
}

// WithTitle overrides the page title.
func WithTitle(title string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(title); trimmed != "" {
			cfg.title = trimmed
		}
	}
}

// WithAction sets the form's post target.
func WithAction(action string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(action); trimmed != "" {
			cfg.action = trimmed
		}
	}
}

// WithTheme selects the manifest and variant used for banner styling. A nil
// manifest keeps the built-in theme.
func WithTheme(manifest *theme.Manifest, variant string) Option {
	return func(cfg *config) {
		if manifest != nil {
			cfg.provider = nil
			cfg.themeName = manifest.Name
			cfg.manifests = []*theme.Manifest{manifest}
		}
		cfg.variant = variant
	}
}

// WithThemeProvider resolves the theme from an existing go-theme provider.
// Unknown theme names fall back to the built-in theme name.
func WithThemeProvider(provider theme.ThemeProvider, name, variant string) Option {
	return func(cfg *config) {
		if provider != nil {
			cfg.provider = provider
			cfg.themeName = name
			cfg.manifests = nil
		}
		cfg.variant = variant
	}
}

// Renderer turns a form state into the order page.
type Renderer struct {
	template *pongo2.Template
	theme    *theme.RendererConfig
	title    string
	action   string
}

// New parses the embedded page template and resolves the theme.
func New(options ...Option) (*Renderer, error) {
	cfg := &config{
		title:     "Order Pizza",
		action:    "/",
		themeName: DefaultThemeName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	provider := cfg.provider
	if provider == nil {
		registry, err := NewThemeRegistry(cfg.manifests...)
		if err != nil {
			return nil, err
		}
		provider = registry
	}
	selector := theme.Selector{Registry: provider, DefaultTheme: DefaultThemeName}
	themeCfg, err := ResolveTheme(selector, cfg.themeName, cfg.variant)
	if err != nil {
		return nil, err
	}

	set := pongo2.NewSet("orderform", pongo2.NewFSLoader(templatesFS))
	tpl, err := set.FromFile(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("html: parse %s: %w", pageTemplate, err)
	}

	return &Renderer{
		template: tpl,
		theme:    themeCfg,
		title:    cfg.title,
		action:   cfg.action,
	}, nil
}

// Render writes the page for state to w.
func (r *Renderer) Render(w io.Writer, state form.State) error {
	if err := r.template.ExecuteWriter(r.context(state), w); err != nil {
		return fmt.Errorf("html: execute %s: %w", pageTemplate, err)
	}
	return nil
}

// RenderString returns the page for state.
func (r *Renderer) RenderString(state form.State) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, state); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *Renderer) context(state form.State) pongo2.Context {
	values := state.Values

	sizes := []map[string]any{{
		"value":    "",
		"label":    order.SizePlaceholder,
		"selected": !values.Size.Valid(),
	}}
	for _, option := range order.Sizes() {
		sizes = append(sizes, map[string]any{
			"value":    string(option.Value),
			"label":    option.Label,
			"selected": values.Size == option.Value,
		})
	}

	catalog := order.Toppings()
	toppings := make([]map[string]any, 0, len(catalog))
	for _, topping := range catalog {
		toppings = append(toppings, map[string]any{
			"id":      topping.ID,
			"label":   topping.Label,
			"checked": values.HasTopping(topping.ID),
		})
	}

	variant := r.theme.Variant
	if variant == "" {
		variant = "light"
	}

	return pongo2.Context{
		"title":  r.title,
		"action": r.action,
		"values": map[string]any{
			order.FieldFullName: values.FullName,
		},
		"errors": map[string]any{
			order.FieldFullName: state.Errors.FullName,
			order.FieldSize:     state.Errors.Size,
		},
		"sizes":          sizes,
		"toppings":       toppings,
		"submit_enabled": state.CanSubmit(),
		"feedback": map[string]any{
			"success": state.Feedback.Success,
			"failure": state.Feedback.Failure,
		},
		"classes": map[string]any{
			"success": tokenOr(r.theme, TokenSuccessClass, "banner banner--success"),
			"failure": tokenOr(r.theme, TokenFailureClass, "banner banner--failure"),
			"error":   tokenOr(r.theme, TokenErrorClass, "field-error"),
		},
		"theme_variant": variant,
		"theme_style":   cssVarsStyle(r.theme.CSSVars),
	}
}
