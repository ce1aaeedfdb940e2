package html

import (
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// Theme token keys consumed by the order page.
const (
	TokenSuccess = "success"
	TokenFailure = "failure"
	TokenError   = "error"
)

// Class token keys. Values are CSS class names rather than colours.
const (
	TokenSuccessClass = "success-class"
	TokenFailureClass = "failure-class"
	TokenErrorClass   = "error-class"
)

// DefaultThemeName names the built-in manifest.
const DefaultThemeName = "orderform"

// DefaultManifest returns the built-in theme with a light base and a dark
// variant.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			TokenSuccess:      "#1a7f37",
			TokenFailure:      "#cf222e",
			TokenError:        "#bc4c00",
			TokenSuccessClass: "banner banner--success",
			TokenFailureClass: "banner banner--failure",
			TokenErrorClass:   "field-error",
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					TokenSuccess: "#3fb950",
					TokenFailure: "#f85149",
					TokenError:   "#db6d28",
				},
			},
		},
	}
}

// NewThemeRegistry registers the manifests with an in-memory go-theme
// registry. With no manifests the built-in theme is registered.
func NewThemeRegistry(manifests ...*theme.Manifest) (*theme.MemoryRegistry, error) {
	if len(manifests) == 0 {
		manifests = []*theme.Manifest{DefaultManifest()}
	}
	registry := theme.NewRegistry()
	for _, manifest := range manifests {
		if manifest == nil {
			continue
		}
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("html: register theme %q: %w", manifest.Name, err)
		}
	}
	return registry, nil
}

// ResolveTheme selects name and variant and returns the renderer
// configuration. An empty variant selects the base tokens; a variant the
// manifest does not declare is an error.
func ResolveTheme(selector theme.ThemeSelector, name, variant string) (*theme.RendererConfig, error) {
	if selector == nil {
		return nil, fmt.Errorf("html: theme selector is required")
	}
	selection, err := selector.Select(name, strings.TrimSpace(variant))
	if err != nil {
		return nil, fmt.Errorf("html: %w", err)
	}
	if selection.Variant != "" {
		if _, ok := selection.Manifest.Variants[selection.Variant]; !ok {
			return nil, fmt.Errorf("html: theme %q has no variant %q", selection.Manifest.Name, selection.Variant)
		}
	}
	cfg := selection.RendererTheme(nil)
	return &cfg, nil
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+vars[key]+";")
	}
	return strings.Join(parts, " ")
}

func tokenOr(cfg *theme.RendererConfig, key, fallback string) string {
	if cfg != nil {
		if value := strings.TrimSpace(cfg.Tokens[key]); value != "" {
			return value
		}
	}
	return fallback
}
