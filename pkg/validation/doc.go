// Package validation holds the order form rule set. Rules are declared once as
// go-playground/validator struct tags; per-field checks and whole-object checks
// both read from that declaration so the inline messages and the submit gate
// can never disagree about what a valid order is.
package validation
