package models

import (
	"time"
)

// MediaType of an uploaded artifact
type MediaType string

const (
	MediaTypePNG  MediaType = "image/png"
	MediaTypeJPEG MediaType = "image/jpeg"
	MediaTypePDF  MediaType = "application/pdf"
)

// IsImage reports whether the media type is a supported raster image.
func (m MediaType) IsImage() bool {
	return m == MediaTypePNG || m == MediaTypeJPEG
}

// Supported reports whether the pipeline accepts the media type at all.
func (m MediaType) Supported() bool {
	return m.IsImage() || m == MediaTypePDF
}

// Ext returns the file extension used when the artifact is written to disk.
func (m MediaType) Ext() string {
	switch m {
	case MediaTypePNG:
		return ".png"
	case MediaTypeJPEG:
		return ".jpg"
	case MediaTypePDF:
		return ".pdf"
	default:
		return ""
	}
}

// Artifact is an uploaded file submitted for extraction. Immutable once received.
type Artifact struct {
	Data      []byte
	MediaType MediaType
	Filename  string
}

// PageImage is one rasterized PDF page, numbered from 1 in page order.
type PageImage struct {
	Number int
	Path   string
}

// FieldValue pairs an extracted value with the schema position it was decoded
// from, so values never travel through the core as a bare positional array.
type FieldValue struct {
	Name  string `json:"name"`
	Hint  string `json:"hint"`
	Value string `json:"value"`
}

// VerdictStatus of a validation outcome
type VerdictStatus string

const (
	StatusMatched    VerdictStatus = "matched"
	StatusMismatched VerdictStatus = "mismatched"
)

// Mismatch records one position where the extracted value diverged.
type Mismatch struct {
	Index    int    `json:"index"`
	Field    string `json:"field,omitempty"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// Verdict is the outcome of validating an extraction array. A mismatched
// verdict is a normal business result, not a system error.
type Verdict struct {
	Status     VerdictStatus `json:"status"`
	Mismatches []Mismatch    `json:"mismatches"`
}

// Matched reports whether the verdict accepted the document.
func (v *Verdict) Matched() bool {
	return v.Status == StatusMatched
}

// ValidationMode selects how an extraction array is validated.
type ValidationMode string

const (
	// ModeRuntime compares extracted values against caller-supplied values,
	// case-insensitively, collecting every mismatch.
	ModeRuntime ValidationMode = "runtime"
	// ModeTypeEcho checks that the extractor echoed the expected document-type
	// label and the declared type hints. It does not compare data values.
	ModeTypeEcho ValidationMode = "type_echo"
	// ModeValues compares the document-type label and extracted values against
	// caller-supplied expectations, case-insensitively.
	ModeValues ValidationMode = "values"
)

// VerificationJob is the payload of an asynchronous verification task.
type VerificationJob struct {
	RunKey       string         `json:"runKey"`
	Filename     string         `json:"filename"`
	MediaType    MediaType      `json:"mediaType"`
	DocumentType string         `json:"documentType"`
	Expected     []string       `json:"expected,omitempty"`
	Mode         ValidationMode `json:"mode"`
	EnqueuedAt   time.Time      `json:"enqueuedAt"`
}
