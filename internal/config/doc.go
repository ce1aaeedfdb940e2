// Package config loads orderform settings from a YAML file, defaults and
// environment overrides.
package config
