package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contactSchema() JSONSchema {
	return JSONSchema{
		Type: "object",
		Properties: map[string]Property{
			"name":  {Type: "string", MinLength: IntPtr(1), Pattern: StringPtr(`\S`)},
			"email": {Type: "string", MinLength: IntPtr(1)},
			"items": {
				Type:        "array",
				MinItems:    IntPtr(1),
				UniqueItems: true,
				Items:       &Property{Type: "integer"},
			},
		},
		Required: []string{"name", "email", "items"},
	}
}

func TestValidator_Valid(t *testing.T) {
	v, err := NewValidator(contactSchema())
	require.NoError(t, err)

	result, err := v.Validate(map[string]interface{}{
		"name":  "Ecoponto",
		"email": "contato@eco.org",
		"items": []int{1, 3},
	})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidator_Violations(t *testing.T) {
	v, err := NewValidator(contactSchema())
	require.NoError(t, err)

	tests := []struct {
		name      string
		document  map[string]interface{}
		wantField string
		wantCode  string
	}{
		{
			name:      "missing field",
			document:  map[string]interface{}{"name": "x", "items": []int{1}},
			wantField: "email",
			wantCode:  CodeRequired,
		},
		{
			name:      "empty string",
			document:  map[string]interface{}{"name": "x", "email": "", "items": []int{1}},
			wantField: "email",
			wantCode:  CodeMinLength,
		},
		{
			name:      "whitespace only",
			document:  map[string]interface{}{"name": "   ", "email": "a@b.c", "items": []int{1}},
			wantField: "name",
			wantCode:  CodePattern,
		},
		{
			name:      "too few items",
			document:  map[string]interface{}{"name": "x", "email": "a@b.c", "items": []int{}},
			wantField: "items",
			wantCode:  CodeMinItems,
		},
		{
			name:      "wrong type",
			document:  map[string]interface{}{"name": 42, "email": "a@b.c", "items": []int{1}},
			wantField: "name",
			wantCode:  CodeType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := v.Validate(tt.document)
			require.NoError(t, err)
			assert.False(t, result.Valid)
			require.True(t, result.HasErrors(tt.wantField), "errors: %v", result.GetErrorMessages())
			assert.Equal(t, tt.wantCode, result.GetErrorsForField(tt.wantField)[0].Code)
		})
	}
}

func TestValidateInput_ReportsEveryField(t *testing.T) {
	result, err := ValidateInput(map[string]interface{}{}, contactSchema())
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"email", "items", "name"}, result.Fields())
	assert.Len(t, result.GetErrorMessages(), 3)
}

func TestGetSchemaFromJSON(t *testing.T) {
	schema, err := GetSchemaFromJSON(`{"type":"object","properties":{"uf":{"type":"string","minLength":2}},"required":["uf"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"uf"}, schema.Required)
	require.NotNil(t, schema.Properties["uf"].MinLength)
	assert.Equal(t, 2, *schema.Properties["uf"].MinLength)

	result, err := ValidateInput(map[string]interface{}{"uf": "S"}, schema)
	require.NoError(t, err)
	assert.True(t, result.HasErrors("uf"))
}
