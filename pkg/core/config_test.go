package core_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crystallen/memchat/pkg/core"
	"github.com/crystallen/memchat/pkg/prompt"
)

var configEnvKeys = []string{
	"LLM_PROVIDER", "LLM_API_KEY", "LLM_MODEL", "LLM_BASE_URL", "LLM_MAX_TOKENS", "LLM_TEMPERATURE",
	"PROMPT_MAX_TOKENS", "PROMPT_STRATEGY", "PROMPT_MAX_USER_INPUT_LENGTH",
	"MEMORY_BACKEND", "VECTOR_SERVICE_URL", "VECTOR_SERVICE_TIMEOUT", "MEMORY_NODE_ID",
	"DATABASE_PROVIDER", "SQLITE_PATH", "SQLITE_COLLECTION",
	"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD",
	"POSTGRES_DATABASE", "POSTGRES_COLLECTION", "POSTGRES_SSLMODE",
	"OCEANBASE_HOST", "OCEANBASE_PORT", "OCEANBASE_USER", "OCEANBASE_PASSWORD",
	"OCEANBASE_DATABASE", "OCEANBASE_COLLECTION",
	"EMBEDDING_PROVIDER", "EMBEDDING_API_KEY", "EMBEDDING_MODEL", "EMBEDDING_BASE_URL",
	"EMBEDDING_DIMS", "EMBEDDING_CACHE_SIZE",
}

// isolateEnv unsets every config variable and moves into an empty directory
// so no stray .env file is picked up. Both are restored after the test.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadConfigFromEnvDefaults(t *testing.T) {
	isolateEnv(t)

	config, err := core.LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "openai", config.LLM.Provider)
	assert.Equal(t, "gpt-3.5-turbo", config.LLM.Model)
	assert.Equal(t, 1000, config.LLM.MaxTokens)
	assert.InDelta(t, 0.7, config.LLM.Temperature, 1e-9)
	assert.Equal(t, "sqlite", config.VectorStore.Provider)
	assert.Equal(t, "./memchat.db", config.VectorStore.Config["db_path"])
	assert.Equal(t, core.BackendLocal, config.MemoryService.Backend)
	assert.Equal(t, 30, config.MemoryService.TimeoutSeconds)
	assert.Equal(t, int64(1), config.MemoryService.NodeID)
	assert.Equal(t, core.DefaultMaxPromptTokens, config.Budget.MaxPromptTokens)
	assert.Equal(t, core.DefaultMaxUserInputChars, config.Budget.MaxUserInputChars)
	assert.Equal(t, prompt.SlidingWindow, config.Budget.Strategy)
	assert.Equal(t, 0, config.Embedder.CacheSize)
	assert.Equal(t, "text-embedding-ada-002", config.Embedder.Model)
}

func TestLoadConfigFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		check   func(t *testing.T, config *core.Config)
	}{
		{
			name: "deepseek with remote memory",
			envVars: map[string]string{
				"LLM_PROVIDER":           "deepseek",
				"LLM_API_KEY":            "test-key",
				"MEMORY_BACKEND":         "remote",
				"VECTOR_SERVICE_URL":     "http://vectors:8000",
				"VECTOR_SERVICE_TIMEOUT": "5",
				"PROMPT_STRATEGY":        "IMPORTANCE_RANKING",
				"PROMPT_MAX_TOKENS":      "1500",
			},
			check: func(t *testing.T, config *core.Config) {
				assert.Equal(t, "deepseek-chat", config.LLM.Model)
				assert.Equal(t, "test-key", config.LLM.APIKey)
				assert.Equal(t, core.BackendRemote, config.MemoryService.Backend)
				assert.Equal(t, "http://vectors:8000", config.MemoryService.URL)
				assert.Equal(t, 5, config.MemoryService.TimeoutSeconds)
				assert.Equal(t, prompt.ImportanceRanking, config.Budget.Strategy)
				assert.Equal(t, 1500, config.Budget.MaxPromptTokens)
			},
		},
		{
			name: "postgres store",
			envVars: map[string]string{
				"DATABASE_PROVIDER": "postgres",
				"POSTGRES_HOST":     "db",
				"POSTGRES_PORT":     "6543",
				"EMBEDDING_DIMS":    "768",
			},
			check: func(t *testing.T, config *core.Config) {
				assert.Equal(t, "postgres", config.VectorStore.Provider)
				assert.Equal(t, "db", config.VectorStore.Config["host"])
				assert.Equal(t, 6543, config.VectorStore.Config["port"])
				assert.Equal(t, 768, config.VectorStore.Config["embedding_model_dims"])
				assert.Equal(t, 768, config.Embedder.Dimensions)
			},
		},
		{
			name: "oceanbase store",
			envVars: map[string]string{
				"DATABASE_PROVIDER":    "oceanbase",
				"OCEANBASE_HOST":       "ob",
				"OCEANBASE_COLLECTION": "turns",
			},
			check: func(t *testing.T, config *core.Config) {
				assert.Equal(t, "ob", config.VectorStore.Config["host"])
				assert.Equal(t, 2881, config.VectorStore.Config["port"])
				assert.Equal(t, "turns", config.VectorStore.Config["collection_name"])
			},
		},
		{
			name: "ollama default model",
			envVars: map[string]string{
				"LLM_PROVIDER":         "ollama",
				"EMBEDDING_CACHE_SIZE": "256",
				"MEMORY_NODE_ID":       "7",
			},
			check: func(t *testing.T, config *core.Config) {
				assert.Equal(t, "llama3.1:8b", config.LLM.Model)
				assert.Equal(t, 256, config.Embedder.CacheSize)
				assert.Equal(t, int64(7), config.MemoryService.NodeID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			config, err := core.LoadConfigFromEnv()
			require.NoError(t, err)
			tt.check(t, config)
		})
	}
}

func TestLoadConfigFromEnvInvalidNumber(t *testing.T) {
	for _, key := range []string{"LLM_MAX_TOKENS", "LLM_TEMPERATURE", "PROMPT_MAX_TOKENS", "VECTOR_SERVICE_TIMEOUT"} {
		t.Run(key, func(t *testing.T) {
			isolateEnv(t)
			t.Setenv(key, "lots")

			config, err := core.LoadConfigFromEnv()

			assert.Nil(t, config)
			assert.ErrorIs(t, err, core.ErrInvalidConfig)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	isolateEnv(t)
	t.Cleanup(func() {
		for _, key := range configEnvKeys {
			_ = os.Unsetenv(key)
		}
	})

	path := filepath.Join(t.TempDir(), "memchat.env")
	content := "LLM_PROVIDER=anthropic\nLLM_API_KEY=ant-key\nPROMPT_STRATEGY=recent_first\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	config, err := core.LoadConfigFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", config.LLM.Provider)
	assert.Equal(t, "ant-key", config.LLM.APIKey)
	assert.Equal(t, "claude-3-5-sonnet-20240620", config.LLM.Model)
	assert.Equal(t, prompt.RecentFirst, config.Budget.Strategy)
}

func TestLoadConfigFromEnvFileMissing(t *testing.T) {
	_, err := core.LoadConfigFromEnvFile(filepath.Join(t.TempDir(), "missing.env"))

	var memErr *core.MemoryError
	require.ErrorAs(t, err, &memErr)
	assert.Equal(t, "LoadConfigFromEnvFile", memErr.Op)
}

func TestLoadConfigFromJSONAndYAML(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
  "llm": {"provider": "openai", "api_key": "sk-test", "model": "gpt-4o-mini"},
  "embedder": {"provider": "openai", "api_key": "sk-test", "cache_size": 64},
  "vector_store": {"provider": "sqlite", "config": {"db_path": "/tmp/m.db"}},
  "memory_service": {"backend": "local", "node_id": 3},
  "budget": {"max_user_input_chars": 500, "max_prompt_tokens": 800, "strategy": "summary_compression"}
}`), 0o600))

	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`llm:
  provider: openai
  api_key: sk-test
  model: gpt-4o-mini
embedder:
  provider: openai
  api_key: sk-test
  cache_size: 64
vector_store:
  provider: sqlite
  config:
    db_path: /tmp/m.db
memory_service:
  backend: local
  node_id: 3
budget:
  max_user_input_chars: 500
  max_prompt_tokens: 800
  strategy: SUMMARY_COMPRESSION
`), 0o600))

	for _, path := range []string{jsonPath, yamlPath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			config, err := core.LoadConfigFromFile(path)
			require.NoError(t, err)

			assert.Equal(t, "gpt-4o-mini", config.LLM.Model)
			assert.Equal(t, 64, config.Embedder.CacheSize)
			assert.Equal(t, "/tmp/m.db", config.VectorStore.Config["db_path"])
			assert.Equal(t, int64(3), config.MemoryService.NodeID)
			assert.Equal(t, 500, config.Budget.MaxUserInputChars)
			assert.Equal(t, 800, config.Budget.MaxPromptTokens)
			assert.Equal(t, prompt.SummaryCompression, prompt.ParseStrategy(string(config.Budget.Strategy)))
			assert.NoError(t, config.Validate())
		})
	}
}

func TestLoadConfigFromJSONInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	config, err := core.LoadConfigFromJSON(path)

	assert.Nil(t, config)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	local := func() *core.Config {
		return &core.Config{
			LLM:         core.LLMConfig{Provider: "openai", APIKey: "k"},
			Embedder:    core.EmbedderConfig{Provider: "openai", APIKey: "k"},
			VectorStore: core.VectorStoreConfig{Provider: "sqlite"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *core.Config)
		wantErr bool
	}{
		{name: "valid local", mutate: func(c *core.Config) {}},
		{name: "missing llm provider", mutate: func(c *core.Config) { c.LLM.Provider = "" }, wantErr: true},
		{name: "missing embedder", mutate: func(c *core.Config) { c.Embedder.Provider = "" }, wantErr: true},
		{name: "missing vector store", mutate: func(c *core.Config) { c.VectorStore.Provider = "" }, wantErr: true},
		{
			name: "remote without embedder",
			mutate: func(c *core.Config) {
				c.MemoryService = core.MemoryServiceConfig{Backend: core.BackendRemote, URL: "http://v"}
				c.Embedder.Provider = ""
				c.VectorStore.Provider = ""
			},
		},
		{
			name:    "remote without url",
			mutate:  func(c *core.Config) { c.MemoryService.Backend = core.BackendRemote },
			wantErr: true,
		},
		{name: "unknown backend", mutate: func(c *core.Config) { c.MemoryService.Backend = "cloud" }, wantErr: true},
		{name: "unknown strategy", mutate: func(c *core.Config) { c.Budget.Strategy = "RANDOM" }},
		{name: "known strategy", mutate: func(c *core.Config) { c.Budget.Strategy = prompt.RecentFirst }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := local()
			tt.mutate(config)

			err := config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUnknownStrategyInConfigFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "llm": {"provider": "ollama", "base_url": "http://localhost:11434"},
  "memory_service": {"backend": "remote", "url": "http://localhost:8000"},
  "budget": {"strategy": "bogus"}
}`), 0o600))

	config, err := core.LoadConfigFromJSON(path)
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	client, err := core.NewClient(config)
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, prompt.SlidingWindow, client.Budget().Strategy)
}
