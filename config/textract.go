package config

import (
	"sync"
)

var (
	textractOnce   sync.Once
	textractConfig *TextractConfig
)

type TextractConfig struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

func GetTextractConfig() *TextractConfig {
	textractOnce.Do(func() {
		loadEnv()

		textractConfig = &TextractConfig{
			Region:    envString("AWS_REGION", ""),
			Endpoint:  envString("AWS_ENDPOINT", ""),
			AccessKey: envString("AWS_ACCESS_KEY", ""),
			SecretKey: envString("AWS_SECRET_KEY", ""),
		}
	})
	return textractConfig
}
