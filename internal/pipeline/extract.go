package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rajesh096/InsightVerify/internal/models"
	"github.com/rajesh096/InsightVerify/pkg/logger"
)

// SchemaExtractor asks the external extraction service to pull typed field
// values out of recognized document text. The service answers with a textual
// array literal: document-type label at index 0, then one value per schema
// key in schema order, empty string for values not found in the text.
type SchemaExtractor struct {
	endpoint   string
	httpClient *http.Client
	logger     logger.Logger
}

func NewSchemaExtractor(endpoint string, timeout time.Duration, log logger.Logger) *SchemaExtractor {
	return &SchemaExtractor{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log,
	}
}

type extractRequest struct {
	Schema  models.FieldSchema `json:"schema"`
	RawText string             `json:"raw_text"`
}

type extractResponse struct {
	Result string `json:"result"`
}

// Extract sends the schema and aggregated text to the extraction service and
// returns the decoded array values. The array is parsed strictly: the service
// output-format contract is non-negotiable, so anything that is not a
// well-formed array literal fails the run. The length check against the
// schema is left to the validator.
func (e *SchemaExtractor) Extract(ctx context.Context, schema models.FieldSchema, rawText string) ([]string, error) {
	reqData, err := json.Marshal(extractRequest{Schema: schema, RawText: rawText})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extraction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"/process-data", bytes.NewReader(reqData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: extraction service returned %d: %s", ErrExtractionService, resp.StatusCode, msg)
	}

	var envelope extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: undecodable extraction envelope: %v", ErrExtractionService, err)
	}

	values, err := ParseArrayLiteral(envelope.Result)
	if err != nil {
		return nil, err
	}

	e.logger.Info("Schema extraction completed",
		logger.Int("values", len(values)),
	)

	return values, nil
}

// ParseArrayLiteral decodes a strict array literal of strings and numbers into
// string values. Numbers keep their literal text. Prose around the array,
// nested structures, booleans, nulls, or trailing content all fail: model
// output is data, never something to evaluate or repair heuristically.
func ParseArrayLiteral(s string) ([]string, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var raw []interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaExtractionParse, err)
	}

	// Reject trailing tokens after the closing bracket.
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing content after array", ErrSchemaExtractionParse)
	}

	values := make([]string, len(raw))
	for i, v := range raw {
		switch elem := v.(type) {
		case string:
			values[i] = elem
		case json.Number:
			values[i] = elem.String()
		default:
			return nil, fmt.Errorf("%w: element %d is not a string or number", ErrSchemaExtractionParse, i)
		}
	}

	return values, nil
}
