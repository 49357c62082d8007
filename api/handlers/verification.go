package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajesh096/InsightVerify/internal/models"
	"github.com/rajesh096/InsightVerify/internal/pipeline"
	"github.com/rajesh096/InsightVerify/internal/service/verification"
	"github.com/rajesh096/InsightVerify/pkg/logger"
)

type VerificationHandler struct {
	service verification.Service
	logger  logger.Logger
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
}

func NewVerificationHandler(svc verification.Service, log logger.Logger) *VerificationHandler {
	return &VerificationHandler{
		service: svc,
		logger:  log,
	}
}

// ExtractText handles POST /documents/extract: recognition only, no schema
// extraction or validation.
func (h *VerificationHandler) ExtractText(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.clientError(c, "Invalid file upload", err)
		return
	}
	defer file.Close()

	result, err := h.service.ExtractText(c.Request.Context(), file, header)
	if err != nil {
		h.runError(c, "Text extraction failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runId":          result.RunID,
		"extracted_text": result.Text,
	})
}

// Verify handles POST /documents/verify: the full synchronous pipeline. A
// mismatched document answers 422 with the verdict; only run failures are
// errors.
func (h *VerificationHandler) Verify(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.clientError(c, "Invalid file upload", err)
		return
	}
	defer file.Close()

	documentType, expected, mode, err := verifyParams(c)
	if err != nil {
		h.clientError(c, "Invalid verification request", err)
		return
	}

	result, err := h.service.Verify(c.Request.Context(), file, header, documentType, expected, mode)
	if err != nil {
		h.runError(c, "Verification failed", err)
		return
	}

	status := http.StatusOK
	if !result.Verdict.Matched() {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}

// VerifyAsync handles POST /documents/verify/async: archives the upload,
// queues the run and answers immediately with the task ID.
func (h *VerificationHandler) VerifyAsync(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.clientError(c, "Invalid file upload", err)
		return
	}
	defer file.Close()

	documentType, expected, mode, err := verifyParams(c)
	if err != nil {
		h.clientError(c, "Invalid verification request", err)
		return
	}

	taskID, err := h.service.EnqueueVerification(c.Request.Context(), file, header, documentType, expected, mode)
	if err != nil {
		h.runError(c, "Failed to queue verification", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"taskId": taskID,
		"status": "pending",
	})
}

// GetStatus handles GET /documents/status/:taskId.
func (h *VerificationHandler) GetStatus(c *gin.Context) {
	taskID := c.Param("taskId")
	if taskID == "" {
		h.clientError(c, "Task ID is required", nil)
		return
	}

	status, err := h.service.GetStatus(c.Request.Context(), taskID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Task not found"})
		return
	}

	c.JSON(http.StatusOK, status)
}

// ListDocumentTypes handles GET /documents/types.
func (h *VerificationHandler) ListDocumentTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"documentTypes": h.service.DocumentTypes(),
	})
}

// Health handles GET /health.
func (h *VerificationHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// verifyParams reads the non-file fields of a verification form. Expected
// values arrive as a JSON array in the "expected" field.
func verifyParams(c *gin.Context) (string, []string, models.ValidationMode, error) {
	documentType := c.PostForm("document_type")
	if documentType == "" {
		// Older clients send the registered type under "schema".
		documentType = c.PostForm("schema")
	}
	if documentType == "" {
		return "", nil, "", errMissingDocumentType
	}

	var expected []string
	if raw := c.PostForm("expected"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &expected); err != nil {
			return "", nil, "", errBadExpectedValues
		}
	}

	// Without expected values there is nothing to compare against, so
	// schema-only requests default to the type-echo check.
	defaultMode := models.ModeTypeEcho
	if len(expected) > 0 {
		defaultMode = models.ModeRuntime
	}

	mode := models.ValidationMode(c.DefaultPostForm("mode", string(defaultMode)))
	switch mode {
	case models.ModeRuntime, models.ModeTypeEcho, models.ModeValues:
	default:
		return "", nil, "", errBadValidationMode
	}

	return documentType, expected, mode, nil
}

// clientError answers 400 for malformed requests.
func (h *VerificationHandler) clientError(c *gin.Context, message string, err error) {
	h.logger.Warn(message,
		logger.String("path", c.Request.URL.Path),
		logger.Error(err),
	)

	response := ErrorResponse{Message: message}
	if err != nil {
		response.Error = err.Error()
	}
	c.JSON(http.StatusBadRequest, response)
}

// runError classifies a pipeline error: artifact problems are the client's
// fault and carry detail, everything else answers a generic 500 with the
// detail kept in the log.
func (h *VerificationHandler) runError(c *gin.Context, message string, err error) {
	if pipeline.IsClientError(err) {
		h.clientError(c, message, err)
		return
	}

	h.logger.Error(message,
		logger.String("path", c.Request.URL.Path),
		logger.Error(err),
	)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Message: message})
}
