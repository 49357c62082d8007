package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajesh096/InsightVerify/internal/models"
	"github.com/rajesh096/InsightVerify/internal/schema"
	"github.com/rajesh096/InsightVerify/pkg/logger"
)

// stubOCR echoes the payload back as recognized text. failOn makes it fail
// for any payload containing that substring.
type stubOCR struct {
	failOn string
}

func (s *stubOCR) ExtractText(ctx context.Context, imageData []byte) (OCRResult, error) {
	if s.failOn != "" && strings.Contains(string(imageData), s.failOn) {
		return OCRResult{}, fmt.Errorf("%w: recognition refused", ErrExtractionService)
	}
	return OCRResult{Text: string(imageData), ExecutionTime: 0.01}, nil
}

// fixedResultServer answers every extraction request with the same result
// array literal.
func fixedResultServer(t *testing.T, result string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"result": result})
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestOrchestrator(t *testing.T, ocr OCRClient, extractorURL string) (*Orchestrator, string) {
	t.Helper()
	log := logger.NewTestLogger()
	root := t.TempDir()
	ws := NewWorkspace(root, log)
	rast := NewRasterizerWithRenderer(200, 2, &recordingRenderer{}, log)
	extractor := NewSchemaExtractor(extractorURL, 5*time.Second, log)
	return NewOrchestratorWith(ws, rast, ocr, extractor, schema.NewRegistry(log), 2, log), root
}

func assertWorkspaceEmpty(t *testing.T, root string) {
	t.Helper()
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "run scratch files must be released")
}

func TestVerifyImageMatched(t *testing.T) {
	server := fixedResultServer(t, `["proof_of_class", "Asha Rao", "First"]`)
	orch, root := newTestOrchestrator(t, &stubOCR{}, server.URL)

	artifact := models.Artifact{
		Data:      []byte("NAME Asha Rao CLASS First"),
		MediaType: models.MediaTypeJPEG,
		Filename:  "class_cert.jpg",
	}

	result, err := orch.Verify(context.Background(), artifact, "proof_of_class",
		[]string{"asha rao", "first"}, models.ModeRuntime)
	require.NoError(t, err)

	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, "proof_of_class", result.DocumentType)
	require.Len(t, result.Fields, 2)
	assert.Equal(t, "Asha Rao", result.Fields[0].Value)
	assert.Equal(t, "First", result.Fields[1].Value)
	require.NotNil(t, result.Verdict)
	assert.True(t, result.Verdict.Matched())

	assertWorkspaceEmpty(t, root)
}

func TestVerifyImageMismatched(t *testing.T) {
	server := fixedResultServer(t, `["proof_of_class", "Asha Rao", "Second"]`)
	orch, root := newTestOrchestrator(t, &stubOCR{}, server.URL)

	artifact := models.Artifact{Data: []byte("scan"), MediaType: models.MediaTypePNG}

	result, err := orch.Verify(context.Background(), artifact, "proof_of_class",
		[]string{"Asha Rao", "First"}, models.ModeRuntime)
	require.NoError(t, err)

	assert.Equal(t, StateDone, result.State)
	require.NotNil(t, result.Verdict)
	assert.False(t, result.Verdict.Matched())
	require.Len(t, result.Verdict.Mismatches, 1)
	assert.Equal(t, "class", result.Verdict.Mismatches[0].Field)
	assert.Equal(t, "First", result.Verdict.Mismatches[0].Expected)
	assert.Equal(t, "Second", result.Verdict.Mismatches[0].Actual)

	assertWorkspaceEmpty(t, root)
}

func TestVerifyValuesFlagsLabelMismatch(t *testing.T) {
	server := fixedResultServer(t, `["aadhaar", "Asha Rao", "First"]`)
	orch, root := newTestOrchestrator(t, &stubOCR{}, server.URL)

	artifact := models.Artifact{Data: []byte("scan"), MediaType: models.MediaTypePNG}

	result, err := orch.Verify(context.Background(), artifact, "proof_of_class",
		[]string{"Asha Rao", "First"}, models.ModeValues)
	require.NoError(t, err)

	require.NotNil(t, result.Verdict)
	assert.False(t, result.Verdict.Matched())
	require.NotEmpty(t, result.Verdict.Mismatches)
	assert.Equal(t, "document_type", result.Verdict.Mismatches[0].Field)
	assert.Equal(t, "proof_of_class", result.Verdict.Mismatches[0].Expected)
	assert.Equal(t, "aadhaar", result.Verdict.Mismatches[0].Actual)

	assertWorkspaceEmpty(t, root)
}

func TestVerifyTypeEchoMode(t *testing.T) {
	server := fixedResultServer(t, `["proof_of_class", "String", "string"]`)
	orch, _ := newTestOrchestrator(t, &stubOCR{}, server.URL)

	artifact := models.Artifact{Data: []byte("scan"), MediaType: models.MediaTypePNG}

	result, err := orch.Verify(context.Background(), artifact, "proof_of_class",
		nil, models.ModeTypeEcho)
	require.NoError(t, err)
	require.NotNil(t, result.Verdict)
	assert.True(t, result.Verdict.Matched())
}

func TestVerifyUnknownDocumentType(t *testing.T) {
	server := fixedResultServer(t, `["x"]`)
	orch, root := newTestOrchestrator(t, &stubOCR{}, server.URL)

	artifact := models.Artifact{Data: []byte("scan"), MediaType: models.MediaTypePNG}

	result, err := orch.Verify(context.Background(), artifact, "library_card",
		nil, models.ModeRuntime)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArtifact)
	assert.True(t, IsClientError(err))
	assert.Equal(t, StateFailed, result.State)

	assertWorkspaceEmpty(t, root)
}

func TestVerifyRejectsUnsupportedMediaType(t *testing.T) {
	server := fixedResultServer(t, `["x"]`)
	orch, root := newTestOrchestrator(t, &stubOCR{}, server.URL)

	artifact := models.Artifact{Data: []byte("GIF89a"), MediaType: "image/gif"}

	result, err := orch.Verify(context.Background(), artifact, "proof_of_class",
		nil, models.ModeRuntime)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArtifact)
	assert.Equal(t, StateFailed, result.State)

	assertWorkspaceEmpty(t, root)
}

func TestVerifyFailsOnMalformedExtraction(t *testing.T) {
	server := fixedResultServer(t, `["proof_of_class", "Asha Rao"]`)
	orch, root := newTestOrchestrator(t, &stubOCR{}, server.URL)

	artifact := models.Artifact{Data: []byte("scan"), MediaType: models.MediaTypePNG}

	result, err := orch.Verify(context.Background(), artifact, "proof_of_class",
		[]string{"Asha Rao", "First"}, models.ModeRuntime)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedResult)
	assert.Equal(t, StateFailed, result.State)

	assertWorkspaceEmpty(t, root)
}

func TestExtractTextJoinsPDFPagesInOrder(t *testing.T) {
	server := fixedResultServer(t, `[]`)
	orch, root := newTestOrchestrator(t, &stubOCR{}, server.URL)

	artifact := models.Artifact{
		Data:      makePDF(3),
		MediaType: models.MediaTypePDF,
		Filename:  "statement.pdf",
	}

	result, err := orch.ExtractText(context.Background(), artifact)
	require.NoError(t, err)

	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, "rendered page 1\n\nrendered page 2\n\nrendered page 3", result.Text)

	assertWorkspaceEmpty(t, root)
}

func TestExtractTextFailsWhenOnePageFails(t *testing.T) {
	server := fixedResultServer(t, `[]`)
	orch, root := newTestOrchestrator(t, &stubOCR{failOn: "page 2"}, server.URL)

	artifact := models.Artifact{Data: makePDF(3), MediaType: models.MediaTypePDF}

	result, err := orch.ExtractText(context.Background(), artifact)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtractionService)
	assert.Equal(t, StateFailed, result.State)

	assertWorkspaceEmpty(t, root)
}
