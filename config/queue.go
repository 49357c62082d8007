package config

import (
	"sync"
)

var (
	queueOnce   sync.Once
	queueConfig *QueueConfig
)

type QueueConfig struct {
	RedisAddr   string
	RedisDB     int
	Concurrency int
}

func GetQueueConfig() *QueueConfig {
	queueOnce.Do(func() {
		loadEnv()

		queueConfig = &QueueConfig{
			RedisAddr:   envString("REDIS_ADDR", "localhost:6379"),
			RedisDB:     envInt("REDIS_DB", 0),
			Concurrency: envInt("WORKER_CONCURRENCY", 10),
		}
	})
	return queueConfig
}
