// Package validate checks request payloads against JSON schemas before they
// reach the store.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// FieldError is one schema violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error lists every violated field of a payload.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "Validation error: " + strings.Join(parts, "; ")
}

// Schema is a compiled JSON schema.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// MustCompile compiles a schema or panics. For package-level schemas.
func MustCompile(name, src string) *Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compiling %s schema: %v", name, err))
	}
	return &Schema{name: name, schema: s}
}

// Validate checks doc against the schema. It returns *Error for schema
// violations and a plain error when doc is not JSON at all.
func (s *Schema) Validate(doc []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return &Error{Fields: []FieldError{{Field: "(root)", Message: "body must be a JSON object"}}}
	}
	if result.Valid() {
		return nil
	}

	fields := make([]FieldError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if desc.Type() == "required" {
			if prop, ok := desc.Details()["property"].(string); ok {
				field = prop
				if parent := desc.Field(); parent != "(root)" {
					field = parent + "." + prop
				}
			}
		}
		fields = append(fields, FieldError{Field: field, Message: desc.Description()})
	}
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })

	return &Error{Fields: fields}
}

func (s *Schema) String() string {
	return s.name
}
