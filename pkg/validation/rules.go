package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-orderform/pkg/order"
)

// Violation messages shown inline next to the offending field.
const (
	MsgFullNameRequired = "full name is required"
	MsgFullNameTooShort = "full name must be at least 3 characters"
	MsgFullNameTooLong  = "full name must be at most 20 characters"
	MsgSizeIncorrect    = "size must be S or M or L"
)

// Length bounds for the full name, counted in characters after trimming.
const (
	FullNameMinLength = 3
	FullNameMaxLength = 20
)

// candidate is the declared rule set. Toppings carry no rule on purpose: any
// subset, including none, is acceptable.
type candidate struct {
	FullName string   `json:"fullName" validate:"required,min=3,max=20"`
	Size     string   `json:"size" validate:"required,oneof=S M L"`
	Toppings []string `json:"toppings"`
}

// Issue is a single rule violation.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result captures whole-object validation outcomes.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Message returns the issue message for field, or "" when the field passed.
func (r Result) Message(field string) string {
	for _, issue := range r.Issues {
		if issue.Field == field {
			return issue.Message
		}
	}
	return ""
}

// Rules evaluates order values against the declared rule set. It is safe for
// concurrent use.
type Rules struct {
	validate  *validator.Validate
	fieldTags map[string]string
	order     []string
}

// New builds the rule set from the declared struct tags.
func New() *Rules {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)

	r := &Rules{
		validate:  v,
		fieldTags: make(map[string]string),
	}

	t := reflect.TypeOf(candidate{})
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}
		name := jsonName(field)
		r.fieldTags[name] = tag
		r.order = append(r.order, name)
	}
	return r
}

// Field validates a single candidate value for the named field and returns
// the violation message, or "" when the value satisfies the field's rule.
// Fields without a rule always pass.
func (r *Rules) Field(field, value string) string {
	tag, ok := r.fieldTags[field]
	if !ok {
		return ""
	}
	value = normalize(field, value)
	err := r.validate.Var(value, tag)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fallbackMessage(field)
	}
	return message(field, verrs[0].Tag())
}

// Valid reports whether the whole order satisfies the rule set.
func (r *Rules) Valid(values order.Values) bool {
	return r.validate.Struct(toCandidate(values)) == nil
}

// Check validates the whole order and reports every violation in field
// declaration order.
func (r *Rules) Check(values order.Values) Result {
	result := Result{Valid: true}
	err := r.validate.Struct(toCandidate(values))
	if err == nil {
		return result
	}
	result.Valid = false

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		for _, field := range r.order {
			result.Issues = append(result.Issues, Issue{Field: field, Message: fallbackMessage(field)})
		}
		return result
	}

	byField := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := byField[fe.Field()]; seen {
			continue
		}
		byField[fe.Field()] = message(fe.Field(), fe.Tag())
	}
	for _, field := range r.order {
		if msg, ok := byField[field]; ok {
			result.Issues = append(result.Issues, Issue{Field: field, Message: msg})
		}
	}
	return result
}

// Fields lists the validated field identifiers in declaration order.
func (r *Rules) Fields() []string {
	return append([]string(nil), r.order...)
}

func toCandidate(values order.Values) candidate {
	return candidate{
		FullName: normalize(order.FieldFullName, values.FullName),
		Size:     normalize(order.FieldSize, string(values.Size)),
		Toppings: values.Toppings,
	}
}

func normalize(field, value string) string {
	if field == order.FieldFullName {
		return strings.TrimSpace(value)
	}
	return value
}

func message(field, tag string) string {
	switch field {
	case order.FieldFullName:
		switch tag {
		case "min":
			return MsgFullNameTooShort
		case "max":
			return MsgFullNameTooLong
		default:
			return MsgFullNameRequired
		}
	case order.FieldSize:
		return MsgSizeIncorrect
	default:
		return fallbackMessage(field)
	}
}

func fallbackMessage(field string) string {
	switch field {
	case order.FieldFullName:
		return MsgFullNameRequired
	case order.FieldSize:
		return MsgSizeIncorrect
	default:
		return field + " is invalid"
	}
}

func jsonName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}
