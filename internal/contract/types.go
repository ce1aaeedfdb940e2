package contract

// Operation is the subset of OpenAPI operation metadata the order client and
// the form surfaces need.
type Operation struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	RequestBody Schema
	Responses   map[string]Schema
}

// Schema is a trimmed view of an OpenAPI schema tree.
type Schema struct {
	Ref         string
	Type        string
	Format      string
	Description string
	Required    []string
	Properties  map[string]Schema
	Items       *Schema
	Enum        []any
	MinLength   *int
	MaxLength   *int
}

// IsRequired reports whether the property name is listed as required.
func (s Schema) IsRequired(name string) bool {
	for _, req := range s.Required {
		if req == name {
			return true
		}
	}
	return false
}
