package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed models.yaml
var modelsYAML []byte

type Config struct {
	Auth     AuthConfig
	Database DatabaseConfig
	Detector DetectorConfig
	Matching MatchingConfig
	Models   ModelsConfig
}

type AuthConfig struct {
	Token string // shared API bearer token
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type DetectorConfig struct {
	URL            string // face analysis service base URL (defaults to http://localhost:8000)
	TimeoutSeconds int    // per-request timeout (default 120, detection is slow on CPU)
}

type MatchingConfig struct {
	MinConfidence float64 // detections below this are dropped (default 0.9)
	Threshold     float64 // maximum cosine distance for a cluster match (default 0.85)
	EmbeddingDim  int     // face/image embedding dimension (default 128, Facenet)
}

type ModelsConfig struct {
	Models map[string]EmbeddingModel `yaml:"models"`
}

// EmbeddingModel describes a known face embedding model.
type EmbeddingModel struct {
	Dim       int     `yaml:"dim"`
	Threshold float64 `yaml:"threshold"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a float in (0, 1].
// Returns the default value if the env var is unset, empty, or out of range.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 && f <= 1 {
		return f
	}
	return defaultVal
}

func Load() *Config {
	var models ModelsConfig
	if err := yaml.Unmarshal(modelsYAML, &models); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded models.yaml: " + err.Error())
	}

	cfg := &Config{
		Auth: AuthConfig{
			Token: os.Getenv("AUTH_TOKEN"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Detector: DetectorConfig{
			URL:            os.Getenv("DETECTOR_URL"),
			TimeoutSeconds: envInt("DETECTOR_TIMEOUT_SECONDS", 120),
		},
		Models: models,
	}

	// The embedding model picks the vector dimension and the matching
	// threshold; explicit env overrides still win.
	modelName := os.Getenv("EMBEDDING_MODEL")
	if modelName == "" {
		modelName = DefaultEmbeddingModel
	}
	model := cfg.GetModel(modelName)
	cfg.Matching = MatchingConfig{
		MinConfidence: envFloat("MATCHING_MIN_CONFIDENCE", DefaultMinFaceConfidence),
		Threshold:     envFloat("MATCHING_THRESHOLD", model.Threshold),
		EmbeddingDim:  envInt("EMBEDDING_DIM", model.Dim),
	}
	return cfg
}

// GetModel returns the embedding model description for the given name.
// Unknown models fall back to the default dimension and threshold.
func (c *Config) GetModel(name string) EmbeddingModel {
	if m, ok := c.Models.Models[name]; ok {
		return m
	}
	return EmbeddingModel{
		Dim:       DefaultEmbeddingDim,
		Threshold: DefaultSimilarityThreshold,
	}
}
