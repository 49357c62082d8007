package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rajesh096/InsightVerify/config"
	"github.com/rajesh096/InsightVerify/internal/models"
	"github.com/rajesh096/InsightVerify/internal/schema"
	"github.com/rajesh096/InsightVerify/pkg/logger"
)

// RunState of a pipeline run. Transitions are strictly forward; a run that
// enters StateFailed or StateDone never leaves it.
type RunState string

const (
	StateReceived    RunState = "received"
	StateRasterizing RunState = "rasterizing"
	StateOCR         RunState = "ocr"
	StateAggregating RunState = "aggregating"
	StateExtracting  RunState = "extracting"
	StateValidating  RunState = "validating"
	StateDone        RunState = "done"
	StateFailed      RunState = "failed"
)

// RunResult is the terminal outcome of one pipeline run.
type RunResult struct {
	RunID        string              `json:"runId"`
	State        RunState            `json:"state"`
	Text         string              `json:"text,omitempty"`
	DocumentType string              `json:"documentType,omitempty"`
	Fields       []models.FieldValue `json:"fields,omitempty"`
	Verdict      *models.Verdict     `json:"verdict,omitempty"`
}

// Orchestrator drives an artifact through rasterization, recognition,
// aggregation, extraction and validation. Scratch files of a run are released
// exactly once, on entry to the terminal state, whether the run succeeded,
// failed or was cancelled.
type Orchestrator struct {
	workspace  *Workspace
	rasterizer *Rasterizer
	ocr        OCRClient
	extractor  *SchemaExtractor
	validator  *Validator
	registry   *schema.Registry
	maxWorkers int
	ocrTimeout time.Duration
	llmTimeout time.Duration
	logger     logger.Logger
}

// NewOrchestrator wires the orchestrator from configuration. The workspace
// must already be initialized by the caller.
func NewOrchestrator(ws *Workspace, registry *schema.Registry, log logger.Logger) (*Orchestrator, error) {
	cfg := config.GetPipelineConfig()
	services := config.GetServicesConfig()

	ocr, err := NewOCRClient(log)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		workspace:  ws,
		rasterizer: NewRasterizer(cfg.RasterDPI, cfg.MaxWorkers, log),
		ocr:        ocr,
		extractor:  NewSchemaExtractor(services.LLMEndpoint, cfg.LLMTimeout, log),
		validator:  NewValidator(log),
		registry:   registry,
		maxWorkers: cfg.MaxWorkers,
		ocrTimeout: cfg.OCRTimeout,
		llmTimeout: cfg.LLMTimeout,
		logger:     log,
	}, nil
}

// NewOrchestratorWith assembles an orchestrator from explicit components.
// Used by tests.
func NewOrchestratorWith(ws *Workspace, rast *Rasterizer, ocr OCRClient, extractor *SchemaExtractor, registry *schema.Registry, maxWorkers int, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		workspace:  ws,
		rasterizer: rast,
		ocr:        ocr,
		extractor:  extractor,
		validator:  NewValidator(log),
		registry:   registry,
		maxWorkers: maxWorkers,
		ocrTimeout: time.Minute,
		llmTimeout: time.Minute,
		logger:     log,
	}
}

// ExtractText runs the artifact through recognition only and returns the
// aggregated text.
func (o *Orchestrator) ExtractText(ctx context.Context, artifact models.Artifact) (*RunResult, error) {
	runID := uuid.New().String()
	log := o.logger.With(logger.String("run_id", runID))

	result := &RunResult{RunID: runID, State: StateReceived}

	run, err := o.workspace.Begin(runID)
	if err != nil {
		result.State = StateFailed
		return result, err
	}
	defer run.Release()

	text, err := o.recognize(ctx, artifact, run, result, log)
	if err != nil {
		log.Error("Text extraction failed", logger.Error(err))
		result.State = StateFailed
		return result, err
	}

	log.Info("Text extraction completed", logger.Int("textLength", len(text)))
	result.State = StateDone
	result.Text = text
	return result, nil
}

// Verify runs the full pipeline: recognition, schema extraction and
// validation against the registered schema for documentType. A mismatched
// verdict is returned with a nil error; errors mean the run itself failed.
func (o *Orchestrator) Verify(ctx context.Context, artifact models.Artifact, documentType string, expected []string, mode models.ValidationMode) (*RunResult, error) {
	runID := uuid.New().String()
	log := o.logger.With(logger.String("run_id", runID))
	result := &RunResult{RunID: runID, State: StateReceived}

	fieldSchema, ok := o.registry.Get(documentType)
	if !ok {
		result.State = StateFailed
		return result, fmt.Errorf("%w: unknown document type %q", ErrInvalidArtifact, documentType)
	}

	run, err := o.workspace.Begin(runID)
	if err != nil {
		result.State = StateFailed
		return result, err
	}
	defer run.Release()

	text, err := o.recognize(ctx, artifact, run, result, log)
	if err != nil {
		log.Error("Recognition failed", logger.Error(err))
		result.State = StateFailed
		return result, err
	}
	result.Text = text

	result.State = StateExtracting
	llmCtx, cancel := context.WithTimeout(ctx, o.llmTimeout)
	defer cancel()
	values, err := o.extractor.Extract(llmCtx, fieldSchema, text)
	if err != nil {
		log.Error("Schema extraction failed", logger.Error(err))
		result.State = StateFailed
		return result, err
	}

	result.State = StateValidating
	label, fields, err := o.validator.BindFields(fieldSchema, values)
	if err != nil {
		log.Error("Extraction result rejected", logger.Error(err))
		result.State = StateFailed
		return result, err
	}
	result.DocumentType = label
	result.Fields = fields

	verdict, err := o.validate(documentType, label, fields, expected, mode)
	if err != nil {
		result.State = StateFailed
		return result, err
	}
	result.Verdict = &verdict
	result.State = StateDone

	log.Info("Verification run completed",
		logger.String("documentType", documentType),
		logger.String("verdict", string(verdict.Status)),
	)
	return result, nil
}

func (o *Orchestrator) validate(documentType, label string, fields []models.FieldValue, expected []string, mode models.ValidationMode) (models.Verdict, error) {
	labelMismatch := func() *models.Mismatch {
		if strings.EqualFold(strings.TrimSpace(label), documentType) {
			return nil
		}
		return &models.Mismatch{Index: 0, Field: "document_type", Expected: documentType, Actual: label}
	}

	switch mode {
	case models.ModeTypeEcho:
		if m := labelMismatch(); m != nil {
			return models.Verdict{Status: models.StatusMismatched, Mismatches: []models.Mismatch{*m}}, nil
		}
		return o.validator.VerifyTypeEcho(fields), nil

	case models.ModeValues:
		verdict, err := o.validator.VerifyValues(fields, expected)
		if err != nil {
			return models.Verdict{}, err
		}
		if m := labelMismatch(); m != nil {
			verdict.Status = models.StatusMismatched
			verdict.Mismatches = append([]models.Mismatch{*m}, verdict.Mismatches...)
		}
		return verdict, nil

	case models.ModeRuntime, "":
		return o.validator.CompareRuntime(fields, expected)

	default:
		return models.Verdict{}, fmt.Errorf("unsupported validation mode: %s", mode)
	}
}

// recognize stores the artifact, rasterizes it when it is a PDF, recognizes
// every page and aggregates the text in page order. Progress is recorded on
// the run result as each stage is entered.
func (o *Orchestrator) recognize(ctx context.Context, artifact models.Artifact, run *RunDir, result *RunResult, log logger.Logger) (string, error) {
	if !artifact.MediaType.Supported() {
		return "", fmt.Errorf("%w: unsupported media type %s", ErrInvalidArtifact, artifact.MediaType)
	}

	if artifact.MediaType.IsImage() {
		result.State = StateOCR
		ocrCtx, cancel := context.WithTimeout(ctx, o.ocrTimeout)
		defer cancel()
		ocrResult, err := o.ocr.ExtractText(ocrCtx, artifact.Data)
		if err != nil {
			return "", err
		}
		return ocrResult.Text, nil
	}

	pdfPath, err := run.Save("source.pdf", artifact.Data)
	if err != nil {
		return "", err
	}

	result.State = StateRasterizing
	log.Info("Rasterizing document", logger.String("filename", artifact.Filename))
	pages, err := o.rasterizer.Rasterize(ctx, pdfPath, run)
	if err != nil {
		return "", err
	}

	result.State = StateOCR

	texts := make([]string, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, o.maxWorkers)

	for _, page := range pages {
		page := page
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}

			data, err := os.ReadFile(page.Path)
			if err != nil {
				return fmt.Errorf("failed to read page %d: %w", page.Number, err)
			}

			ocrCtx, cancel := context.WithTimeout(gctx, o.ocrTimeout)
			defer cancel()
			ocrResult, err := o.ocr.ExtractText(ocrCtx, data)
			if err != nil {
				return fmt.Errorf("page %d: %w", page.Number, err)
			}

			texts[page.Number-1] = ocrResult.Text

			// The page image is consumed; drop it early instead of waiting for
			// the run release, so long documents do not accumulate page files.
			if err := os.Remove(page.Path); err != nil {
				log.Warn("Failed to remove consumed page image",
					logger.String("path", page.Path),
					logger.Error(err),
				)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", err
	}

	result.State = StateAggregating
	return JoinPages(texts), nil
}
