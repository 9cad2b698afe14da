// internal/workflow/create-point/validation.go
package createpoint

import (
	"collection-points/internal/common/errors"
	"collection-points/internal/common/validation"
)

var requiredText = []string{"name", "email", "whatsapp", "uf", "city"}

// submissionSchema requires every text field to carry at least one
// non-space character.
func submissionSchema(minItems int) validation.JSONSchema {
	props := make(map[string]validation.Property, len(requiredText)+1)
	for _, field := range requiredText {
		props[field] = validation.Property{
			Type:      "string",
			MinLength: validation.IntPtr(1),
			Pattern:   validation.StringPtr(`\S`),
		}
	}
	items := validation.Property{
		Type:        "array",
		UniqueItems: true,
		Items:       &validation.Property{Type: "integer"},
	}
	if minItems > 0 {
		items.MinItems = validation.IntPtr(minItems)
	}
	props["items"] = items

	return validation.JSONSchema{
		Type:       "object",
		Properties: props,
		Required:   append(append([]string(nil), requiredText...), "items"),
	}
}

func newSubmissionValidator(minItems int) (*validation.Validator, error) {
	return validation.NewValidator(submissionSchema(minItems))
}

func submissionDocument(snap Snapshot) map[string]interface{} {
	items := snap.Items
	if items == nil {
		items = []int{}
	}
	return map[string]interface{}{
		"name":     snap.Profile.Name,
		"email":    snap.Profile.Email,
		"whatsapp": snap.Profile.Phone,
		"uf":       snap.Region.StateCode,
		"city":     snap.Region.CityName,
		"items":    items,
	}
}

// validate returns VALIDATION_FAILED listing every invalid field.
func (s *Session) validate(snap Snapshot) error {
	result, err := s.validator.Validate(submissionDocument(snap))
	if err != nil {
		return errors.NewValidationFailedError([]errors.FieldError{{Field: "*", Message: err.Error()}})
	}
	if result.Valid {
		return nil
	}

	fields := make([]errors.FieldError, 0, len(result.Errors))
	seen := make(map[string]bool)
	for _, e := range result.Errors {
		if seen[e.Field] {
			continue
		}
		seen[e.Field] = true
		fields = append(fields, errors.FieldError{Field: e.Field, Message: e.Message, Code: e.Code})
	}
	return errors.NewValidationFailedError(fields)
}
