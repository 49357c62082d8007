package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/otiai10/gosseract/v2"

	"github.com/rajesh096/InsightVerify/pkg/logger"
)

// TesseractOCRClient runs recognition locally with Tesseract. Useful when no
// network recognition service is reachable.
type TesseractOCRClient struct {
	logger logger.Logger
}

func NewTesseractOCRClient(log logger.Logger) *TesseractOCRClient {
	return &TesseractOCRClient{logger: log}
}

func (c *TesseractOCRClient) ExtractText(ctx context.Context, imageData []byte) (OCRResult, error) {
	if _, err := sniffImage(imageData); err != nil {
		return OCRResult{}, err
	}

	// A fresh client per call: gosseract clients are not safe for concurrent
	// page fan-out.
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage("eng"); err != nil {
		return OCRResult{}, fmt.Errorf("%w: tesseract: %v", ErrExtractionService, err)
	}
	if err := client.SetImageFromBytes(imageData); err != nil {
		return OCRResult{}, fmt.Errorf("%w: tesseract: %v", ErrExtractionService, err)
	}

	start := time.Now()
	text, err := client.Text()
	if err != nil {
		return OCRResult{}, fmt.Errorf("%w: tesseract: %v", ErrExtractionService, err)
	}

	return OCRResult{
		Text:          text,
		ExecutionTime: time.Since(start).Seconds(),
	}, nil
}
