package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajesh096/InsightVerify/internal/models"
	"github.com/rajesh096/InsightVerify/pkg/logger"
)

var testSchema = models.FieldSchema{
	{Name: "name", Hint: "String"},
	{Name: "date_of_birth", Hint: "String format: DD-MM-YYYY"},
}

func TestExtractSendsSchemaAndParsesResult(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/process-data", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotBody, _ = io.ReadAll(r.Body)
		json.NewEncoder(w).Encode(map[string]string{
			"result": `["aadhaar", "Asha Rao", "01-02-1999"]`,
		})
	}))
	defer server.Close()

	extractor := NewSchemaExtractor(server.URL, 5*time.Second, logger.NewTestLogger())

	values, err := extractor.Extract(context.Background(), testSchema, "some recognized text")
	require.NoError(t, err)
	assert.Equal(t, []string{"aadhaar", "Asha Rao", "01-02-1999"}, values)

	// The schema travels as an object with keys in declaration order.
	var req struct {
		RawText string `json:"raw_text"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &req))
	assert.Equal(t, "some recognized text", req.RawText)
	assert.Contains(t, string(gotBody), `{"name":"String","date_of_birth":"String format: DD-MM-YYYY"}`)
}

func TestExtractRejectsNonArrayResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"result": `Sure! Here is the array you asked for: ["aadhaar", "Asha Rao"]`,
		})
	}))
	defer server.Close()

	extractor := NewSchemaExtractor(server.URL, 5*time.Second, logger.NewTestLogger())

	_, err := extractor.Extract(context.Background(), testSchema, "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaExtractionParse)
}

func TestExtractServiceFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	extractor := NewSchemaExtractor(server.URL, 5*time.Second, logger.NewTestLogger())

	_, err := extractor.Extract(context.Background(), testSchema, "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtractionService)
}

func TestExtractTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	extractor := NewSchemaExtractor(server.URL, 20*time.Millisecond, logger.NewTestLogger())

	_, err := extractor.Extract(context.Background(), testSchema, "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtractionService)
}

func TestParseArrayLiteral(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{
			name:  "strings",
			input: `["aadhaar", "Asha Rao", "01-02-1999"]`,
			want:  []string{"aadhaar", "Asha Rao", "01-02-1999"},
		},
		{
			name:  "numbers keep their literal text",
			input: `["gate_score_card", 2023, 78.25]`,
			want:  []string{"gate_score_card", "2023", "78.25"},
		},
		{
			name:  "empty values survive",
			input: `["aadhaar", "", ""]`,
			want:  []string{"aadhaar", "", ""},
		},
		{
			name:  "empty array",
			input: `[]`,
			want:  []string{},
		},
		{
			name:    "prose around the array",
			input:   `here you go: ["aadhaar"]`,
			wantErr: true,
		},
		{
			name:    "trailing content",
			input:   `["aadhaar"] and that is all`,
			wantErr: true,
		},
		{
			name:    "nested structures",
			input:   `["aadhaar", {"name": "Asha"}]`,
			wantErr: true,
		},
		{
			name:    "null element",
			input:   `["aadhaar", null]`,
			wantErr: true,
		},
		{
			name:    "not an array",
			input:   `{"result": "aadhaar"}`,
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   ``,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArrayLiteral(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrSchemaExtractionParse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
