package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	OpenAI struct {
		APIKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"openai"`

	Analysis struct {
		Concurrency    int `yaml:"concurrency"`
		TimeoutSeconds int `yaml:"timeoutSeconds"`
		RetryAttempts  int `yaml:"retryAttempts"`
	} `yaml:"analysis"`

	Security struct {
		// APIKeys maps tenant name to its API key; empty disables auth.
		APIKeys             map[string]string `yaml:"apiKeys"`
		RateLimitCapacity   int               `yaml:"rateLimitCapacity"`
		RateLimitRefillRate int               `yaml:"rateLimitRefillRate"`
	} `yaml:"security"`
}

// Load reads the config.yaml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MySQLDSN builds the MySQL connection string.
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// AnalysisTimeout returns the per-unit AI call timeout, defaulting to 60s.
func (c *Config) AnalysisTimeout() time.Duration {
	if c.Analysis.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Analysis.TimeoutSeconds) * time.Second
}
