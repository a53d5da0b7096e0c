package core

import (
	"time"
)

type Config struct {
	API    APIConfig
	Stream StreamConfig
	Login  LoginConfig
	Server ServerConfig
	Log    LogConfig
}

// APIConfig points at the third-party cloud-music REST service.
type APIConfig struct {
	BaseURL string
	Cookie  string
	Timeout time.Duration
}

type StreamConfig struct {
	Quality       string
	RescueSources []string
}

type LoginConfig struct {
	PollInterval time.Duration
	MaxAttempts  int
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Timeout: 15 * time.Second,
		},
		Stream: StreamConfig{
			Quality:       "exhigh",
			RescueSources: []string{"kuwo", "kugou", "migu", "bilibili"},
		},
		Login: LoginConfig{
			PollInterval: 2 * time.Second,
			MaxAttempts:  60,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
