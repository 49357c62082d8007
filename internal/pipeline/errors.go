package pipeline

import (
	"errors"
	"fmt"
)

// Stage errors. All of them are fatal for the run in which they occur; the
// orchestrator never retries a stage. A mismatched verdict is not represented
// here because a rejection is a business outcome, not a failure.
var (
	// ErrInvalidArtifact marks an upload that is not a genuine image or PDF.
	ErrInvalidArtifact = errors.New("invalid artifact")

	// ErrInvalidImage marks a payload that does not decode as an image. It is
	// a kind of ErrInvalidArtifact, so errors.Is matches both.
	ErrInvalidImage = fmt.Errorf("%w: payload does not decode as an image", ErrInvalidArtifact)

	// ErrRasterization marks a PDF that could not be rendered to page images,
	// including an unavailable rendering toolchain.
	ErrRasterization = errors.New("pdf rasterization failed")

	// ErrExtractionService marks a network or service failure of the OCR or
	// LLM service, including timeouts.
	ErrExtractionService = errors.New("extraction service failure")

	// ErrSchemaExtractionParse marks an extraction response that is not a
	// well-formed array literal.
	ErrSchemaExtractionParse = errors.New("malformed extraction response")

	// ErrMalformedResult marks an extraction array whose length does not match
	// the schema length plus the document-type slot.
	ErrMalformedResult = errors.New("extraction result does not match schema shape")
)

// IsClientError reports whether the error was caused by the uploaded artifact
// rather than by the system, so handlers can answer 4xx instead of 5xx.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidArtifact)
}
