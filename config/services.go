package config

import (
	"sync"
)

var (
	servicesOnce   sync.Once
	servicesConfig *ServicesConfig
)

// ServicesConfig points at the external recognition and extraction services.
type ServicesConfig struct {
	OCREndpoint string
	LLMEndpoint string
	OCRBackend  string // "remote", "textract" or "tesseract"
}

func GetServicesConfig() *ServicesConfig {
	servicesOnce.Do(func() {
		loadEnv()

		servicesConfig = &ServicesConfig{
			OCREndpoint: envString("OCR_SERVICE_URL", "http://localhost:8001"),
			LLMEndpoint: envString("LLM_SERVICE_URL", "http://localhost:8002"),
			OCRBackend:  envString("OCR_BACKEND", "remote"),
		}
	})
	return servicesConfig
}
