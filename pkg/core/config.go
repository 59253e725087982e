package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/crystallen/memchat/pkg/prompt"
)

// Memory backends.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Config contains the complete configuration for a memchat client.
//
// Example:
//
//	config := &core.Config{
//	    LLM: core.LLMConfig{
//	        Provider: "openai",
//	        APIKey:   "sk-...",
//	    },
//	    Embedder: core.EmbedderConfig{
//	        Provider: "openai",
//	        APIKey:   "sk-...",
//	    },
//	    VectorStore: core.VectorStoreConfig{
//	        Provider: "sqlite",
//	        Config: map[string]interface{}{
//	            "db_path": "./memchat.db",
//	        },
//	    },
//	}
type Config struct {
	// LLM contains the generation backend configuration.
	LLM LLMConfig `json:"llm" yaml:"llm"`

	// Embedder is used by the local memory backend.
	Embedder EmbedderConfig `json:"embedder" yaml:"embedder"`

	// VectorStore is used by the local memory backend.
	VectorStore VectorStoreConfig `json:"vector_store" yaml:"vector_store"`

	// MemoryService selects the local or remote memory backend.
	MemoryService MemoryServiceConfig `json:"memory_service" yaml:"memory_service"`

	// Budget bounds the prompt.
	Budget BudgetConfig `json:"budget" yaml:"budget"`
}

// LLMConfig contains configuration for the LLM provider.
//
// Supported providers: openai, deepseek, anthropic, ollama
type LLMConfig struct {
	Provider string `json:"provider" yaml:"provider"`
	APIKey   string `json:"api_key" yaml:"api_key"`

	// Model is the model name; empty uses the provider default.
	Model string `json:"model" yaml:"model"`

	// BaseURL overrides the provider's endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxTokens and Temperature are sent with every request when non-zero.
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
}

// EmbedderConfig contains configuration for the embedding provider.
//
// Supported providers: openai
type EmbedderConfig struct {
	Provider   string `json:"provider" yaml:"provider"`
	APIKey     string `json:"api_key" yaml:"api_key"`
	Model      string `json:"model" yaml:"model"`
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Dimensions int    `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`

	// CacheSize is the number of embeddings kept in an LRU cache; 0 disables it.
	CacheSize int `json:"cache_size,omitempty" yaml:"cache_size,omitempty"`
}

// VectorStoreConfig contains configuration for the vector store.
//
// Supported providers: sqlite, postgres, oceanbase
type VectorStoreConfig struct {
	Provider string `json:"provider" yaml:"provider"`

	// Config contains provider-specific configuration.
	// For SQLite: db_path, collection_name
	// For PostgreSQL: host, port, user, password, db_name, collection_name, embedding_model_dims, ssl_mode
	// For OceanBase: host, port, user, password, db_name, collection_name, embedding_model_dims
	Config map[string]interface{} `json:"config" yaml:"config"`
}

// MemoryServiceConfig selects where memories live.
type MemoryServiceConfig struct {
	// Backend is "local" (embedder + vector store) or "remote" (vector service).
	Backend string `json:"backend" yaml:"backend"`

	// URL is the vector service address for the remote backend.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// TimeoutSeconds bounds each call to the vector service.
	TimeoutSeconds int `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`

	// NodeID is the snowflake node of this process for the local backend.
	NodeID int64 `json:"node_id,omitempty" yaml:"node_id,omitempty"`
}

// Timeout returns TimeoutSeconds as a duration.
func (m MemoryServiceConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// A .env or .env.example file found by FindEnvFile is loaded first; variables
// already set in the process win.
//
// Supported environment variables:
//   - LLM_PROVIDER, LLM_API_KEY, LLM_MODEL, LLM_BASE_URL, LLM_MAX_TOKENS, LLM_TEMPERATURE
//   - PROMPT_MAX_TOKENS, PROMPT_STRATEGY, PROMPT_MAX_USER_INPUT_LENGTH
//   - MEMORY_BACKEND, VECTOR_SERVICE_URL, VECTOR_SERVICE_TIMEOUT, MEMORY_NODE_ID
//   - DATABASE_PROVIDER (sqlite, postgres, oceanbase)
//   - SQLITE_PATH, SQLITE_COLLECTION
//   - POSTGRES_HOST, POSTGRES_PORT, POSTGRES_USER, POSTGRES_PASSWORD, etc.
//   - OCEANBASE_HOST, OCEANBASE_PORT, OCEANBASE_USER, OCEANBASE_PASSWORD, etc.
//   - EMBEDDING_PROVIDER, EMBEDDING_API_KEY, EMBEDDING_MODEL, EMBEDDING_BASE_URL,
//     EMBEDDING_DIMS, EMBEDDING_CACHE_SIZE
func LoadConfigFromEnv() (*Config, error) {
	if envPath, found := FindEnvFile(); found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}
	return configFromEnv()
}

// LoadConfigFromEnvFile loads configuration from a specific .env file.
func LoadConfigFromEnvFile(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		return nil, NewMemoryError("LoadConfigFromEnvFile", err)
	}
	return configFromEnv()
}

func configFromEnv() (*Config, error) {
	dims, err := envInt("EMBEDDING_DIMS", 1536)
	if err != nil {
		return nil, err
	}

	provider := getEnvOrDefault("DATABASE_PROVIDER", "sqlite")
	var storeConfig map[string]interface{}
	switch provider {
	case "oceanbase":
		port, err := envInt("OCEANBASE_PORT", 2881)
		if err != nil {
			return nil, err
		}
		storeConfig = map[string]interface{}{
			"host":                 getEnvOrDefault("OCEANBASE_HOST", "127.0.0.1"),
			"port":                 port,
			"user":                 getEnvOrDefault("OCEANBASE_USER", "root@sys"),
			"password":             os.Getenv("OCEANBASE_PASSWORD"),
			"db_name":              getEnvOrDefault("OCEANBASE_DATABASE", "memchat"),
			"collection_name":      getEnvOrDefault("OCEANBASE_COLLECTION", "memories"),
			"embedding_model_dims": dims,
		}
	case "postgres":
		port, err := envInt("POSTGRES_PORT", 5432)
		if err != nil {
			return nil, err
		}
		storeConfig = map[string]interface{}{
			"host":                 getEnvOrDefault("POSTGRES_HOST", "localhost"),
			"port":                 port,
			"user":                 getEnvOrDefault("POSTGRES_USER", "postgres"),
			"password":             os.Getenv("POSTGRES_PASSWORD"),
			"db_name":              getEnvOrDefault("POSTGRES_DATABASE", "memchat"),
			"collection_name":      getEnvOrDefault("POSTGRES_COLLECTION", "memories"),
			"embedding_model_dims": dims,
			"ssl_mode":             getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		}
	default:
		storeConfig = map[string]interface{}{
			"db_path":         getEnvOrDefault("SQLITE_PATH", "./memchat.db"),
			"collection_name": getEnvOrDefault("SQLITE_COLLECTION", "memories"),
		}
	}

	llmProvider := getEnvOrDefault("LLM_PROVIDER", "openai")
	maxTokens, err := envInt("LLM_MAX_TOKENS", 1000)
	if err != nil {
		return nil, err
	}
	temperature, err := envFloat("LLM_TEMPERATURE", 0.7)
	if err != nil {
		return nil, err
	}

	promptTokens, err := envInt("PROMPT_MAX_TOKENS", DefaultMaxPromptTokens)
	if err != nil {
		return nil, err
	}
	inputChars, err := envInt("PROMPT_MAX_USER_INPUT_LENGTH", DefaultMaxUserInputChars)
	if err != nil {
		return nil, err
	}
	timeout, err := envInt("VECTOR_SERVICE_TIMEOUT", 30)
	if err != nil {
		return nil, err
	}
	nodeID, err := envInt("MEMORY_NODE_ID", 1)
	if err != nil {
		return nil, err
	}
	cacheSize, err := envInt("EMBEDDING_CACHE_SIZE", 0)
	if err != nil {
		return nil, err
	}

	return &Config{
		LLM: LLMConfig{
			Provider:    llmProvider,
			APIKey:      os.Getenv("LLM_API_KEY"),
			Model:       getEnvOrDefault("LLM_MODEL", DefaultLLMModel(llmProvider)),
			BaseURL:     os.Getenv("LLM_BASE_URL"),
			MaxTokens:   maxTokens,
			Temperature: temperature,
		},
		Embedder: EmbedderConfig{
			Provider:   getEnvOrDefault("EMBEDDING_PROVIDER", "openai"),
			APIKey:     os.Getenv("EMBEDDING_API_KEY"),
			Model:      getEnvOrDefault("EMBEDDING_MODEL", "text-embedding-ada-002"),
			BaseURL:    os.Getenv("EMBEDDING_BASE_URL"),
			Dimensions: dims,
			CacheSize:  cacheSize,
		},
		VectorStore: VectorStoreConfig{
			Provider: provider,
			Config:   storeConfig,
		},
		MemoryService: MemoryServiceConfig{
			Backend:        getEnvOrDefault("MEMORY_BACKEND", BackendLocal),
			URL:            os.Getenv("VECTOR_SERVICE_URL"),
			TimeoutSeconds: timeout,
			NodeID:         int64(nodeID),
		},
		Budget: BudgetConfig{
			MaxUserInputChars: inputChars,
			MaxPromptTokens:   promptTokens,
			Strategy:          prompt.ParseStrategy(os.Getenv("PROMPT_STRATEGY")),
		},
	}, nil
}

// DefaultLLMModel returns the model used when none is configured.
func DefaultLLMModel(provider string) string {
	switch provider {
	case "deepseek":
		return "deepseek-chat"
	case "anthropic":
		return "claude-3-5-sonnet-20240620"
	case "ollama":
		return "llama3.1:8b"
	default:
		return "gpt-3.5-turbo"
	}
}

// LoadConfigFromJSON loads configuration from a JSON file.
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewMemoryError("LoadConfigFromJSON", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, NewMemoryError("LoadConfigFromJSON", err)
	}
	return &config, nil
}

// LoadConfigFromYAML loads configuration from a YAML file.
func LoadConfigFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewMemoryError("LoadConfigFromYAML", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, NewMemoryError("LoadConfigFromYAML", err)
	}
	return &config, nil
}

// LoadConfigFromFile picks the loader from the file extension:
// .json, .yaml/.yml, anything else is read as a .env file.
func LoadConfigFromFile(path string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadConfigFromJSON(path)
	case ".yaml", ".yml":
		return LoadConfigFromYAML(path)
	default:
		return LoadConfigFromEnvFile(path)
	}
}

// Validate checks that the selected backends are fully specified.
//
// Budget.Strategy is not checked: unknown names select prompt.SlidingWindow.
func (c *Config) Validate() error {
	if c.LLM.Provider == "" {
		return NewMemoryError("Validate", fmt.Errorf("%w: llm provider is required", ErrInvalidConfig))
	}

	switch c.MemoryService.Backend {
	case "", BackendLocal:
		if c.Embedder.Provider == "" {
			return NewMemoryError("Validate", fmt.Errorf("%w: embedder provider is required", ErrInvalidConfig))
		}
		if c.VectorStore.Provider == "" {
			return NewMemoryError("Validate", fmt.Errorf("%w: vector store provider is required", ErrInvalidConfig))
		}
	case BackendRemote:
		if c.MemoryService.URL == "" {
			return NewMemoryError("Validate", fmt.Errorf("%w: vector service url is required", ErrInvalidConfig))
		}
	default:
		return NewMemoryError("Validate", fmt.Errorf("%w: unknown memory backend %q", ErrInvalidConfig, c.MemoryService.Backend))
	}

	return nil
}

// getEnvOrDefault gets an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, NewMemoryError("LoadConfigFromEnv", fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, raw))
	}
	return v, nil
}

func envFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, NewMemoryError("LoadConfigFromEnv", fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, key, raw))
	}
	return v, nil
}

// FindEnvFile searches the current directory and up to 5 parents for .env
// or .env.example and returns the first one found.
func FindEnvFile() (string, bool) {
	if _, err := os.Stat(".env"); err == nil {
		return ".env", true
	}
	if _, err := os.Stat(".env.example"); err == nil {
		return ".env.example", true
	}

	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		envExamplePath := filepath.Join(dir, ".env.example")

		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}
		if _, err := os.Stat(envExamplePath); err == nil {
			return envExamplePath, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

// configString reads a string from a provider config map.
func configString(m map[string]interface{}, key, defaultValue string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return defaultValue
}

// configInt reads an int from a provider config map. JSON and YAML decode
// numbers differently, so int, int64, float64 and numeric strings are accepted.
func configInt(m map[string]interface{}, key string, defaultValue int) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
