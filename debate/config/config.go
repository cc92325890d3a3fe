// Copyright 2025 Agora Labs
// SPDX-License-Identifier: BUSL-1.1
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the debate engine configuration from a YAML file with
// environment variable overrides. The collection routing table lives here so
// that retrieval policy is an auditable configuration input, not code.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Retrieval modes for a collection.
const (
	ModeDirect = "direct"
	ModeVector = "vector"
)

// CollectionConfig describes how one collection is retrieved.
type CollectionConfig struct {
	// Mode is "direct" (bounded fetch, no semantic search) or "vector".
	Mode string `yaml:"mode"`

	// Limit bounds direct fetches. Ignored for vector collections.
	Limit int `yaml:"limit,omitempty"`

	// Field is the document field carrying the text that was embedded.
	// Required for vector collections; it is also the field projected
	// into prompts and the field ingestion backfills embeddings from.
	Field string `yaml:"field,omitempty"`
}

// VectorConfig holds the ANN search parameters shared by all vector
// collections.
type VectorConfig struct {
	Dimensions    int    `yaml:"dimensions"`     // Embedding dimensionality (default: 768)
	CandidatePool int    `yaml:"candidate_pool"` // ANN candidates considered (default: 10)
	TopK          int    `yaml:"top_k"`          // Results returned (default: 2)
	IndexName     string `yaml:"index_name"`     // Search index name (default: vector_index)
	Path          string `yaml:"path"`           // Embedding field path (default: embedding)
}

// PromptConfig bounds prompt construction.
type PromptConfig struct {
	PreviewDocs int `yaml:"preview_docs"` // Documents previewed per collection (default: 2)
	WordLimit   int `yaml:"word_limit"`   // Advisory response length (default: 50)
}

// ProviderConfig holds the generation/embedding provider settings.
type ProviderConfig struct {
	APIKey         string `yaml:"api_key,omitempty"`
	BaseURL        string `yaml:"base_url,omitempty"`
	EmbeddingModel string `yaml:"embedding_model,omitempty"`
}

// Config is the root configuration for the debate engine.
type Config struct {
	Port            int                         `yaml:"port"`
	RequestTimeout  time.Duration               `yaml:"request_timeout"`
	MongoURI        string                      `yaml:"mongo_uri,omitempty"`
	Database        string                      `yaml:"database,omitempty"`
	RedisURL        string                      `yaml:"redis_url,omitempty"`
	DataDir         string                      `yaml:"data_dir"`
	PersonaCacheTTL time.Duration               `yaml:"persona_cache_ttl"`
	EmbedCacheTTL   time.Duration               `yaml:"embed_cache_ttl"`
	Provider        ProviderConfig              `yaml:"provider"`
	Collections     map[string]CollectionConfig `yaml:"collections"`
	Vector          VectorConfig                `yaml:"vector"`
	Prompt          PromptConfig                `yaml:"prompt"`
}

// Default returns the baseline configuration: the three collections the
// system ships with and the documented retrieval parameters.
func Default() *Config {
	return &Config{
		Port:            8000,
		RequestTimeout:  120 * time.Second,
		DataDir:         "util",
		PersonaCacheTTL: 5 * time.Minute,
		EmbedCacheTTL:   time.Hour,
		Collections: map[string]CollectionConfig{
			"sales_data":        {Mode: ModeDirect, Limit: 10},
			"customer_feedback": {Mode: ModeVector, Field: "feedback"},
			"performance_logs":  {Mode: ModeVector, Field: "summary"},
		},
		Vector: VectorConfig{
			Dimensions:    768,
			CandidatePool: 10,
			TopK:          2,
			IndexName:     "vector_index",
			Path:          "embedding",
		},
		Prompt: PromptConfig{
			PreviewDocs: 2,
			WordLimit:   50,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variable overrides, in that order of precedence (env wins).
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides file values with environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RequestTimeout = d
		}
	}
	if v := os.Getenv("MONGODB_URI"); v != "" {
		c.MongoURI = v
	}
	if v := os.Getenv("DATABASE_NAME"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("TOGETHER_API_KEY"); v != "" {
		c.Provider.APIKey = v
	}
	if v := os.Getenv("TOGETHER_BASE_URL"); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		c.Provider.EmbeddingModel = v
	}
}

// Validate checks invariants that would otherwise surface as confusing
// runtime failures.
func (c *Config) Validate() error {
	if len(c.Collections) == 0 {
		return fmt.Errorf("config: at least one collection must be defined")
	}

	for name, col := range c.Collections {
		switch col.Mode {
		case ModeDirect:
			if col.Limit <= 0 {
				return fmt.Errorf("config: direct collection %q requires a positive limit", name)
			}
		case ModeVector:
			if col.Field == "" {
				return fmt.Errorf("config: vector collection %q requires a field", name)
			}
		default:
			return fmt.Errorf("config: collection %q has unknown mode %q", name, col.Mode)
		}
	}

	if c.Vector.Dimensions <= 0 {
		return fmt.Errorf("config: vector dimensions must be positive")
	}
	if c.Vector.TopK <= 0 || c.Vector.CandidatePool < c.Vector.TopK {
		return fmt.Errorf("config: candidate pool (%d) must be >= top_k (%d) and top_k positive",
			c.Vector.CandidatePool, c.Vector.TopK)
	}
	if c.Prompt.PreviewDocs <= 0 {
		return fmt.Errorf("config: preview_docs must be positive")
	}

	return nil
}

// EmbeddingTargets returns the (collection, field) pairs ingestion must
// index and backfill: every vector-mode collection.
func (c *Config) EmbeddingTargets() map[string]string {
	targets := make(map[string]string)
	for name, col := range c.Collections {
		if col.Mode == ModeVector {
			targets[name] = col.Field
		}
	}
	return targets
}
