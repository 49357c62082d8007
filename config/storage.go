package config

import (
	"sync"
)

var (
	storageOnce   sync.Once
	storageConfig *StorageConfig

	minioOnce   sync.Once
	minioConfig *MinioConfig

	s3Once   sync.Once
	s3Config *S3Config
)

// StorageConfig selects the artifact archive backend.
type StorageConfig struct {
	Backend string // "minio" or "s3"
}

type MinioConfig struct {
	AccessKey  string
	SecretKey  string
	Endpoint   string
	UseSSL     bool
	Region     string
	BucketName string
}

type S3Config struct {
	BucketName string
	Region     string
	Endpoint   string
	AccessKey  string
	SecretKey  string
}

func GetStorageConfig() *StorageConfig {
	storageOnce.Do(func() {
		loadEnv()

		storageConfig = &StorageConfig{
			Backend: envString("STORAGE_BACKEND", "minio"),
		}
	})
	return storageConfig
}

func GetMinioConfig() *MinioConfig {
	minioOnce.Do(func() {
		loadEnv()

		minioConfig = &MinioConfig{
			AccessKey:  envString("MINIO_ACCESS_KEY", ""),
			SecretKey:  envString("MINIO_SECRET_KEY", ""),
			Endpoint:   envString("MINIO_ENDPOINT", "localhost:9000"),
			UseSSL:     envBool("MINIO_USE_SSL", false),
			Region:     envString("MINIO_REGION", ""),
			BucketName: envString("MINIO_BUCKET_NAME", "insight-verify"),
		}
	})
	return minioConfig
}

func GetS3Config() *S3Config {
	s3Once.Do(func() {
		loadEnv()

		s3Config = &S3Config{
			BucketName: envString("AWS_S3_BUCKET_NAME", ""),
			Region:     envString("AWS_REGION", ""),
			Endpoint:   envString("AWS_ENDPOINT", ""),
			AccessKey:  envString("AWS_ACCESS_KEY", ""),
			SecretKey:  envString("AWS_SECRET_KEY", ""),
		}
	})
	return s3Config
}
