package validation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// JSONSchema is the subset of JSON Schema draft 4 used for form documents.
type JSONSchema struct {
	Type                 string              `json:"type"`
	Properties           map[string]Property `json:"properties"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties *bool               `json:"additionalProperties,omitempty"`
}

type Property struct {
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Minimum     *float64  `json:"minimum,omitempty"`
	Maximum     *float64  `json:"maximum,omitempty"`
	Enum        []string  `json:"enum,omitempty"`
	Pattern     *string   `json:"pattern,omitempty"`
	MinLength   *int      `json:"minLength,omitempty"`
	MaxLength   *int      `json:"maxLength,omitempty"`
	MinItems    *int      `json:"minItems,omitempty"`
	UniqueItems bool      `json:"uniqueItems,omitempty"`
	Items       *Property `json:"items,omitempty"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

const (
	CodeRequired   = "REQUIRED_FIELD_MISSING"
	CodeMinLength  = "MIN_LENGTH_VIOLATION"
	CodeMaxLength  = "MAX_LENGTH_VIOLATION"
	CodePattern    = "PATTERN_MISMATCH"
	CodeMinItems   = "MIN_ITEMS_VIOLATION"
	CodeUnique     = "DUPLICATE_ITEMS"
	CodeType       = "INVALID_TYPE"
	CodeEnum       = "INVALID_ENUM_VALUE"
	CodeExtraField = "EXTRA_FIELD"
	CodeRange      = "RANGE_VIOLATION"
	CodeSchema     = "SCHEMA_VIOLATION"
)

// Validator holds a compiled schema. It is safe for concurrent use.
type Validator struct {
	schema *gojsonschema.Schema
}

func NewValidator(schema JSONSchema) (*Validator, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// Validate checks document against the compiled schema. Errors are ordered by
// field name so results are stable across runs.
func (v *Validator) Validate(document interface{}) (*ValidationResult, error) {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return toResult(result), nil
}

// ValidateInput validates input against a schema in one shot.
func ValidateInput(input map[string]interface{}, schema JSONSchema) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(input))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return toResult(result), nil
}

func toResult(result *gojsonschema.Result) *ValidationResult {
	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, ValidationError{
			Field:   fieldOf(desc),
			Message: desc.Description(),
			Code:    codeOf(desc.Type()),
		})
	}
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })

	return &ValidationResult{
		Valid:  result.Valid(),
		Errors: errs,
	}
}

func fieldOf(desc gojsonschema.ResultError) string {
	if desc.Type() == "required" || desc.Type() == "additional_property_not_allowed" {
		if prop, ok := desc.Details()["property"].(string); ok {
			return prop
		}
	}
	return desc.Field()
}

func codeOf(errType string) string {
	switch errType {
	case "required":
		return CodeRequired
	case "string_gte":
		return CodeMinLength
	case "string_lte":
		return CodeMaxLength
	case "pattern":
		return CodePattern
	case "array_min_items":
		return CodeMinItems
	case "unique":
		return CodeUnique
	case "invalid_type":
		return CodeType
	case "enum":
		return CodeEnum
	case "additional_property_not_allowed":
		return CodeExtraField
	case "number_gte", "number_lte", "number_gt", "number_lt":
		return CodeRange
	default:
		return CodeSchema
	}
}

// GetSchemaFromJSON parses JSON schema from string
func GetSchemaFromJSON(schemaJSON string) (JSONSchema, error) {
	var schema JSONSchema
	err := json.Unmarshal([]byte(schemaJSON), &schema)
	return schema, err
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// Fields returns the distinct invalid field names in order.
func (vr *ValidationResult) Fields() []string {
	var fields []string
	seen := make(map[string]bool)
	for _, err := range vr.Errors {
		if !seen[err.Field] {
			seen[err.Field] = true
			fields = append(fields, err.Field)
		}
	}
	return fields
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a specific field
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

func IntPtr(v int) *int { return &v }

func StringPtr(v string) *string { return &v }
