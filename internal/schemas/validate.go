// Package schemas provides JSON Schema validation for provider responses.
package schemas

import (
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Schema string
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	if ve.Schema != "" {
		sb.WriteString(fmt.Sprintf("validation against %s failed: ", ve.Schema))
	} else {
		sb.WriteString("validation failed: ")
	}
	for i, err := range ve.Errors {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// Validator validates documents against named schemas read from a filesystem.
// Compiled schemas are cached; a Validator is safe for concurrent use.
type Validator struct {
	fsys fs.FS

	mu       sync.RWMutex
	compiled map[string]*gojsonschema.Schema
}

// NewValidator creates a Validator that reads schema files from fsys.
func NewValidator(fsys fs.FS) *Validator {
	return &Validator{
		fsys:     fsys,
		compiled: make(map[string]*gojsonschema.Schema),
	}
}

// Validate checks doc against the schema stored under name.
// It returns a *ValidationError when the document does not conform
// (including when it is not JSON at all) and a *SchemaLoadError when the schema is broken.
func (v *Validator) Validate(name string, doc []byte) error {
	schema, err := v.schema(name)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return &ValidationError{
			Schema: name,
			Errors: []FieldError{{Field: "(root)", Message: fmt.Sprintf("document is not valid JSON: %v", err)}},
		}
	}

	return toValidationError(name, result)
}

func (v *Validator) schema(name string) (*gojsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[name]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}

	data, err := fs.ReadFile(v.fsys, name)
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "schema file not readable", Cause: err}
	}

	schema, err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "schema did not compile", Cause: err}
	}

	v.mu.Lock()
	v.compiled[name] = schema
	v.mu.Unlock()

	return schema, nil
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	return toValidationError("", result)
}

func toValidationError(name string, result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Schema: name,
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
