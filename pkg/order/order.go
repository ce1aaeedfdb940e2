package order

import (
	"encoding/json"
	"slices"
)

// Field identifiers used by surfaces and the controller.
const (
	FieldFullName = "fullName"
	FieldSize     = "size"
	FieldToppings = "toppings"
)

// Size is the pizza size selection. The zero value means nothing was chosen.
type Size string

const (
	SizeNone   Size = ""
	SizeSmall  Size = "S"
	SizeMedium Size = "M"
	SizeLarge  Size = "L"
)

// SizePlaceholder labels the empty option shown ahead of the selectable sizes.
const SizePlaceholder = "----Choose Size----"

// SizeOption pairs a selectable size with its display label.
type SizeOption struct {
	Value Size   `json:"value"`
	Label string `json:"label"`
}

var sizeOptions = []SizeOption{
	{Value: SizeSmall, Label: "Small"},
	{Value: SizeMedium, Label: "Medium"},
	{Value: SizeLarge, Label: "Large"},
}

// Sizes returns the selectable sizes in display order (placeholder excluded).
func Sizes() []SizeOption {
	return slices.Clone(sizeOptions)
}

// Valid reports whether the size is one of the selectable values.
func (s Size) Valid() bool {
	for _, opt := range sizeOptions {
		if opt.Value == s {
			return true
		}
	}
	return false
}

// Label returns the display label for the size, or the placeholder when unset
// or unknown.
func (s Size) Label() string {
	for _, opt := range sizeOptions {
		if opt.Value == s {
			return opt.Label
		}
	}
	return SizePlaceholder
}

// Values is the order payload edited by the customer. The JSON form is the
// request body sent to the order endpoint.
type Values struct {
	FullName string   `json:"fullName"`
	Size     Size     `json:"size"`
	Toppings []string `json:"toppings"`
}

// Defaults returns an empty order.
func Defaults() Values {
	return Values{Toppings: []string{}}
}

// Clone returns a copy that shares no slices with v.
func (v Values) Clone() Values {
	out := v
	out.Toppings = append([]string{}, v.Toppings...)
	return out
}

// HasTopping reports whether the topping id is selected.
func (v Values) HasTopping(id string) bool {
	return slices.Contains(v.Toppings, id)
}

// MarshalJSON keeps toppings an array even when nothing is selected.
func (v Values) MarshalJSON() ([]byte, error) {
	type alias Values
	out := alias(v)
	if out.Toppings == nil {
		out.Toppings = []string{}
	}
	return json.Marshal(out)
}

// FieldErrors holds the inline message for each validated field. An empty
// string means the field currently shows no error.
type FieldErrors struct {
	FullName string `json:"fullName,omitempty"`
	Size     string `json:"size,omitempty"`
}

// Get returns the message for the field identifier.
func (e FieldErrors) Get(field string) string {
	switch field {
	case FieldFullName:
		return e.FullName
	case FieldSize:
		return e.Size
	default:
		return ""
	}
}

// With returns a copy with the field's message replaced. Unknown fields leave
// the errors untouched.
func (e FieldErrors) With(field, message string) FieldErrors {
	switch field {
	case FieldFullName:
		e.FullName = message
	case FieldSize:
		e.Size = message
	}
	return e
}

// Empty reports whether no field error is shown.
func (e FieldErrors) Empty() bool {
	return e.FullName == "" && e.Size == ""
}

// Feedback is the outcome banner of the last submission attempt. At most one
// of Success and Failure is set.
type Feedback struct {
	Success string `json:"success,omitempty"`
	Failure string `json:"failure,omitempty"`
}

// Succeeded builds feedback for an accepted order.
func Succeeded(message string) Feedback {
	return Feedback{Success: message}
}

// Failed builds feedback for a rejected order.
func Failed(message string) Feedback {
	return Feedback{Failure: message}
}

// Empty reports whether no banner is shown.
func (f Feedback) Empty() bool {
	return f.Success == "" && f.Failure == ""
}
