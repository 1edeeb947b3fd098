// Package config loads the pipeline configuration: defaults, then an
// optional YAML file, then environment variable overrides. No package
// state is mutated; every Load returns a fresh Config.
package config

import (
	"fmt"
	"time"
)

// Config is the full pipeline configuration.
type Config struct {
	Input      InputConfig      `yaml:"input" env:"INPUT"`
	Cluster    ClusterConfig    `yaml:"cluster" env:"CLUSTER"`
	Persona    PersonaConfig    `yaml:"persona" env:"PERSONA"`
	Ideation   IdeationConfig   `yaml:"ideation" env:"IDEATION"`
	Discussion DiscussionConfig `yaml:"discussion" env:"DISCUSSION"`
	LLM        LLMConfig        `yaml:"llm" env:"LLM"`
	Redis      RedisConfig      `yaml:"redis" env:"REDIS"`
	Artifacts  ArtifactsConfig  `yaml:"artifacts" env:"ARTIFACTS"`
	Log        LogConfig        `yaml:"log" env:"LOG"`
}

// InputConfig locates the review corpus.
type InputConfig struct {
	// CSVPath points at the review export (review_id, content, score).
	CSVPath string `yaml:"csv_path" env:"CSV_PATH"`
}

// ClusterConfig tunes vectorization and the k-search.
type ClusterConfig struct {
	MinK           int     `yaml:"min_k" env:"MIN_K"`
	MaxK           int     `yaml:"max_k" env:"MAX_K"`
	Seed           int64   `yaml:"seed" env:"SEED"`
	NInit          int     `yaml:"n_init" env:"N_INIT"`
	MaxIterations  int     `yaml:"max_iterations" env:"MAX_ITERATIONS"`
	MaxFeatures    int     `yaml:"max_features" env:"MAX_FEATURES"`
	MinDF          int     `yaml:"min_df" env:"MIN_DF"`
	MaxDFRatio     float64 `yaml:"max_df_ratio" env:"MAX_DF_RATIO"`
	MinClusterSize int     `yaml:"min_cluster_size" env:"MIN_CLUSTER_SIZE"`
}

// PersonaConfig bounds persona synthesis.
type PersonaConfig struct {
	MaxPersonas    int `yaml:"max_personas" env:"MAX_PERSONAS"`
	MinClusterSize int `yaml:"min_cluster_size" env:"MIN_CLUSTER_SIZE"`
}

// IdeationConfig bounds the feature proposal batch.
type IdeationConfig struct {
	MinFeatures int `yaml:"min_features" env:"MIN_FEATURES"`
	MaxFeatures int `yaml:"max_features" env:"MAX_FEATURES"`
}

// DiscussionConfig shapes the simulated board session.
type DiscussionConfig struct {
	Rounds             int    `yaml:"rounds" env:"ROUNDS"`
	FollowupCap        int    `yaml:"followup_cap" env:"FOLLOWUP_CAP"`
	OnAgentFailure     string `yaml:"on_agent_failure" env:"ON_AGENT_FAILURE"` // skip | abort
	HistoryTokenBudget int    `yaml:"history_token_budget" env:"HISTORY_TOKEN_BUDGET"`
}

// LLMConfig configures the provider and client wrapper.
type LLMConfig struct {
	APIKey            string        `yaml:"api_key" env:"API_KEY"`
	BaseURL           string        `yaml:"base_url" env:"BASE_URL"`
	Model             string        `yaml:"model" env:"MODEL"`
	MaxTokens         int           `yaml:"max_tokens" env:"MAX_TOKENS"`
	Temperature       float64       `yaml:"temperature" env:"TEMPERATURE"`
	RequestTimeout    time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"REQUESTS_PER_SECOND"`
	Burst             int           `yaml:"burst" env:"BURST"`
	MaxRetries        int           `yaml:"max_retries" env:"MAX_RETRIES"`
}

// RedisConfig enables the completion cache.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled" env:"ENABLED"`
	Addr     string        `yaml:"addr" env:"ADDR"`
	Password string        `yaml:"password" env:"PASSWORD"`
	DB       int           `yaml:"db" env:"DB"`
	TTL      time.Duration `yaml:"ttl" env:"TTL"`
}

// ArtifactsConfig locates run outputs.
type ArtifactsConfig struct {
	Dir        string `yaml:"dir" env:"DIR"`
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`
}

// LogConfig tunes zap.
type LogConfig struct {
	Level       string `yaml:"level" env:"LEVEL"`
	Development bool   `yaml:"development" env:"DEVELOPMENT"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Input: InputConfig{CSVPath: "reviews.csv"},
		Cluster: ClusterConfig{
			MinK:           3,
			MaxK:           15,
			Seed:           42,
			NInit:          10,
			MaxIterations:  100,
			MaxFeatures:    1000,
			MinDF:          3,
			MaxDFRatio:     0.85,
			MinClusterSize: 10,
		},
		Persona: PersonaConfig{
			MaxPersonas:    5,
			MinClusterSize: 20,
		},
		Ideation: IdeationConfig{
			MinFeatures: 3,
			MaxFeatures: 5,
		},
		Discussion: DiscussionConfig{
			Rounds:         3,
			FollowupCap:    1,
			OnAgentFailure: "skip",
		},
		LLM: LLMConfig{
			Model:             "gpt-4o-mini",
			MaxTokens:         1024,
			Temperature:       0.7,
			RequestTimeout:    60 * time.Second,
			RequestsPerSecond: 2,
			Burst:             4,
			MaxRetries:        3,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			TTL:  time.Hour,
		},
		Artifacts: ArtifactsConfig{
			Dir:        "artifacts",
			SQLitePath: "userboard.db",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Cluster.MinK < 2 {
		return fmt.Errorf("cluster.min_k must be at least 2, got %d", c.Cluster.MinK)
	}
	if c.Cluster.MaxK < c.Cluster.MinK {
		return fmt.Errorf("cluster.max_k (%d) must not be below cluster.min_k (%d)",
			c.Cluster.MaxK, c.Cluster.MinK)
	}
	if c.Cluster.MaxDFRatio <= 0 || c.Cluster.MaxDFRatio > 1 {
		return fmt.Errorf("cluster.max_df_ratio must be in (0, 1], got %v", c.Cluster.MaxDFRatio)
	}
	if c.Ideation.MinFeatures < 1 || c.Ideation.MaxFeatures < c.Ideation.MinFeatures {
		return fmt.Errorf("ideation feature range [%d, %d] is invalid",
			c.Ideation.MinFeatures, c.Ideation.MaxFeatures)
	}
	if c.Discussion.Rounds < 1 {
		return fmt.Errorf("discussion.rounds must be at least 1, got %d", c.Discussion.Rounds)
	}
	switch c.Discussion.OnAgentFailure {
	case "skip", "abort":
	default:
		return fmt.Errorf("discussion.on_agent_failure must be skip or abort, got %q",
			c.Discussion.OnAgentFailure)
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must not be negative, got %d", c.LLM.MaxRetries)
	}
	return nil
}
