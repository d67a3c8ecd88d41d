// Package validation validates inputs before any network activity.
//
// Struct tag validation runs go-playground/validator and reports fields by
// their json names:
//
//	type Request struct {
//	    Prompt string `json:"prompt" validate:"required,notblank"`
//	}
//	err := validation.Validate(req)
//
// Programmatic validation collects errors:
//
//	err := validation.New().Required("id", id).Validate()
package validation
