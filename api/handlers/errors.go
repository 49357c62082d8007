package handlers

import "errors"

var (
	errMissingDocumentType = errors.New("document_type is required")
	errBadExpectedValues   = errors.New("expected must be a JSON array of strings")
	errBadValidationMode   = errors.New("mode must be runtime, type_echo or values")
)
