package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/disintegration/imaging"

	"github.com/rajesh096/InsightVerify/config"
	"github.com/rajesh096/InsightVerify/pkg/logger"
)

// OCRResult is the text recognized from one image plus the service-side
// processing time in seconds.
type OCRResult struct {
	Text          string  `json:"extracted_text"`
	ExecutionTime float64 `json:"execution_time"`
}

// OCRClient recognizes text in a single image.
type OCRClient interface {
	ExtractText(ctx context.Context, imageData []byte) (OCRResult, error)
}

// NewOCRClient builds the OCR backend selected by configuration.
func NewOCRClient(log logger.Logger) (OCRClient, error) {
	services := config.GetServicesConfig()
	pipe := config.GetPipelineConfig()

	switch services.OCRBackend {
	case "remote":
		return NewRemoteOCRClient(services.OCREndpoint, pipe.MaxImageBound, pipe.OCRTimeout, log), nil
	case "textract":
		return NewTextractOCRClient(context.Background(), config.GetTextractConfig(), log)
	case "tesseract":
		return NewTesseractOCRClient(log), nil
	default:
		return nil, fmt.Errorf("unsupported OCR backend: %s", services.OCRBackend)
	}
}

// RemoteOCRClient talks to the external text-recognition service over HTTP.
type RemoteOCRClient struct {
	endpoint   string
	maxBound   int
	httpClient *http.Client
	logger     logger.Logger
}

func NewRemoteOCRClient(endpoint string, maxBound int, timeout time.Duration, log logger.Logger) *RemoteOCRClient {
	return &RemoteOCRClient{
		endpoint: endpoint,
		maxBound: maxBound,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log,
	}
}

// ExtractText validates that the payload decodes as an image, downsamples it
// to the configured bounding box, and sends it to the recognition service.
func (c *RemoteOCRClient) ExtractText(ctx context.Context, imageData []byte) (OCRResult, error) {
	payload, err := prepareImage(imageData, c.maxBound)
	if err != nil {
		return OCRResult{}, err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "page.png")
	if err != nil {
		return OCRResult{}, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := part.Write(payload); err != nil {
		return OCRResult{}, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return OCRResult{}, fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/extract-text", &body)
	if err != nil {
		return OCRResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return OCRResult{}, fmt.Errorf("%w: %v", ErrExtractionService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return OCRResult{}, fmt.Errorf("%w: text recognition returned %d: %s", ErrExtractionService, resp.StatusCode, msg)
	}

	var result OCRResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return OCRResult{}, fmt.Errorf("%w: undecodable recognition response: %v", ErrExtractionService, err)
	}

	c.logger.Debug("OCR completed",
		logger.Int("textLength", len(result.Text)),
		logger.Float64("executionTime", result.ExecutionTime),
	)

	return result, nil
}

// sniffImage verifies the payload decodes as a supported image format.
// Format detection, never filename trust.
func sniffImage(imageData []byte) (image.Config, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return cfg, nil
}

// prepareImage sniffs the payload and downsamples anything larger than the
// bounding box, preserving aspect ratio, to bound recognition latency and
// payload size.
func prepareImage(imageData []byte, maxBound int) ([]byte, error) {
	cfg, err := sniffImage(imageData)
	if err != nil {
		return nil, err
	}

	if cfg.Width <= maxBound && cfg.Height <= maxBound {
		return imageData, nil
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	fitted := imaging.Fit(img, maxBound, maxBound, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode downsampled image: %w", err)
	}
	return buf.Bytes(), nil
}
