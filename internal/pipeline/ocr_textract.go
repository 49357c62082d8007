package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/rajesh096/InsightVerify/config"
	"github.com/rajesh096/InsightVerify/pkg/logger"
)

// TextractOCRClient recognizes text through AWS Textract instead of the
// self-hosted recognition service.
type TextractOCRClient struct {
	client *textract.Client
	logger logger.Logger
}

func NewTextractOCRClient(ctx context.Context, cfg *config.TextractConfig, log logger.Logger) (*TextractOCRClient, error) {
	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	return &TextractOCRClient{
		client: textract.NewFromConfig(awsCfg),
		logger: log,
	}, nil
}

func (c *TextractOCRClient) ExtractText(ctx context.Context, imageData []byte) (OCRResult, error) {
	if _, err := sniffImage(imageData); err != nil {
		return OCRResult{}, err
	}

	start := time.Now()
	out, err := c.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: imageData},
	})
	if err != nil {
		return OCRResult{}, fmt.Errorf("%w: textract: %v", ErrExtractionService, err)
	}

	var lines []string
	for _, block := range out.Blocks {
		if block.BlockType == types.BlockTypeLine && block.Text != nil {
			lines = append(lines, *block.Text)
		}
	}

	return OCRResult{
		Text:          strings.Join(lines, "\n"),
		ExecutionTime: time.Since(start).Seconds(),
	}, nil
}
