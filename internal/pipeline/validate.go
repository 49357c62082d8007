package pipeline

import (
	"fmt"
	"strings"

	"github.com/rajesh096/InsightVerify/internal/models"
	"github.com/rajesh096/InsightVerify/pkg/logger"
)

// Validator compares extracted field values against expectations.
type Validator struct {
	logger logger.Logger
}

func NewValidator(log logger.Logger) *Validator {
	return &Validator{logger: log}
}

// BindFields checks the extraction array against the schema shape and binds
// each value to its field name. The array contract is one document-type label
// at index 0 followed by exactly one value per schema key, in schema order.
func (v *Validator) BindFields(schema models.FieldSchema, values []string) (string, []models.FieldValue, error) {
	if len(values) != len(schema)+1 {
		return "", nil, fmt.Errorf("%w: got %d values for %d fields", ErrMalformedResult, len(values), len(schema))
	}

	label := values[0]
	fields := make([]models.FieldValue, len(schema))
	for i, f := range schema {
		fields[i] = models.FieldValue{
			Name:  f.Name,
			Hint:  f.Hint,
			Value: values[i+1],
		}
	}
	return label, fields, nil
}

// CompareRuntime compares extracted values against caller-supplied expected
// values position by position, case-insensitively, and collects every
// mismatch rather than stopping at the first.
func (v *Validator) CompareRuntime(fields []models.FieldValue, expected []string) (models.Verdict, error) {
	if len(expected) != len(fields) {
		return models.Verdict{}, fmt.Errorf("%w: got %d expected values for %d fields", ErrMalformedResult, len(expected), len(fields))
	}

	var mismatches []models.Mismatch
	for i, f := range fields {
		if !strings.EqualFold(strings.TrimSpace(f.Value), strings.TrimSpace(expected[i])) {
			mismatches = append(mismatches, models.Mismatch{
				Index:    i,
				Field:    f.Name,
				Expected: expected[i],
				Actual:   f.Value,
			})
		}
	}

	if len(mismatches) > 0 {
		v.logger.Info("Verification found mismatches",
			logger.Int("mismatches", len(mismatches)),
		)
		return models.Verdict{Status: models.StatusMismatched, Mismatches: mismatches}, nil
	}
	return models.Verdict{Status: models.StatusMatched}, nil
}

// VerifyTypeEcho checks each extracted value against the schema's stored type
// hint and stops at the first mismatch. It confirms the extraction echoed the
// declared shape, not that the values match a real record; use
// CompareRuntime or VerifyValues for that.
func (v *Validator) VerifyTypeEcho(fields []models.FieldValue) models.Verdict {
	for i, f := range fields {
		if !strings.EqualFold(strings.TrimSpace(f.Value), strings.TrimSpace(f.Hint)) {
			return models.Verdict{
				Status: models.StatusMismatched,
				Mismatches: []models.Mismatch{{
					Index:    i,
					Field:    f.Name,
					Expected: f.Hint,
					Actual:   f.Value,
				}},
			}
		}
	}
	return models.Verdict{Status: models.StatusMatched}
}

// VerifyValues compares extracted values against stored reference values,
// collecting all mismatches. Identical semantics to CompareRuntime with the
// reference record as the expectation.
func (v *Validator) VerifyValues(fields []models.FieldValue, reference []string) (models.Verdict, error) {
	return v.CompareRuntime(fields, reference)
}
