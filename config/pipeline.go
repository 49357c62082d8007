package config

import (
	"sync"
	"time"
)

var (
	pipelineOnce   sync.Once
	pipelineConfig *PipelineConfig
)

// PipelineConfig carries the tunables of a document verification run.
type PipelineConfig struct {
	WorkspaceRoot string
	RasterDPI     int
	MaxWorkers    int
	MaxImageBound int
	OCRTimeout    time.Duration
	LLMTimeout    time.Duration
	SchemaFile    string
}

func GetPipelineConfig() *PipelineConfig {
	pipelineOnce.Do(func() {
		loadEnv()

		pipelineConfig = &PipelineConfig{
			WorkspaceRoot: envString("WORKSPACE_ROOT", "data/workspace"),
			RasterDPI:     envInt("RASTER_DPI", 200),
			MaxWorkers:    envInt("PIPELINE_WORKERS", 4),
			MaxImageBound: envInt("OCR_MAX_DIMENSION", 1024),
			OCRTimeout:    envSeconds("OCR_TIMEOUT_SECONDS", 30*time.Second),
			LLMTimeout:    envSeconds("LLM_TIMEOUT_SECONDS", 30*time.Second),
			SchemaFile:    envString("SCHEMA_REGISTRY_FILE", ""),
		}
	})
	return pipelineConfig
}
