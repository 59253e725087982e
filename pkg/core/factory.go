package core

import (
	"github.com/crystallen/memchat/pkg/embedder"
	openaiEmbedder "github.com/crystallen/memchat/pkg/embedder/openai"
	"github.com/crystallen/memchat/pkg/llm"
	anthropicLLM "github.com/crystallen/memchat/pkg/llm/anthropic"
	ollamaLLM "github.com/crystallen/memchat/pkg/llm/ollama"
	openaiLLM "github.com/crystallen/memchat/pkg/llm/openai"
	"github.com/crystallen/memchat/pkg/memstore"
	"github.com/crystallen/memchat/pkg/storage"
	"github.com/crystallen/memchat/pkg/storage/oceanbase"
	postgresStore "github.com/crystallen/memchat/pkg/storage/postgres"
	sqliteStore "github.com/crystallen/memchat/pkg/storage/sqlite"
)

// initLLM initializes the LLM provider.
func initLLM(cfg LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return openaiLLM.NewClient(&openaiLLM.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	case "deepseek":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = openaiLLM.DeepSeekBaseURL
		}
		return openaiLLM.NewClient(&openaiLLM.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: baseURL,
		})
	case "anthropic":
		return anthropicLLM.NewClient(&anthropicLLM.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	case "ollama":
		return ollamaLLM.NewClient(&ollamaLLM.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	default:
		return nil, NewMemoryError("initLLM", ErrInvalidConfig)
	}
}

// initEmbedder initializes the embedder provider, wrapped in a cache when configured.
func initEmbedder(cfg EmbedderConfig) (embedder.Provider, error) {
	var provider embedder.Provider
	switch cfg.Provider {
	case "openai":
		client, err := openaiEmbedder.NewClient(&openaiEmbedder.Config{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			Dimensions: cfg.Dimensions,
		})
		if err != nil {
			return nil, NewMemoryError("initEmbedder", err)
		}
		provider = client
	default:
		return nil, NewMemoryError("initEmbedder", ErrInvalidConfig)
	}

	cached, err := embedder.NewCachedProvider(provider, cfg.CacheSize)
	if err != nil {
		return nil, NewMemoryError("initEmbedder", err)
	}
	return cached, nil
}

// initStorage initializes the storage backend.
func initStorage(cfg VectorStoreConfig, dims int) (storage.VectorStore, error) {
	c := cfg.Config
	switch cfg.Provider {
	case "sqlite":
		return sqliteStore.NewClient(&sqliteStore.Config{
			DBPath:         configString(c, "db_path", "./memchat.db"),
			CollectionName: configString(c, "collection_name", "memories"),
		})
	case "postgres":
		return postgresStore.NewClient(&postgresStore.Config{
			Host:               configString(c, "host", "localhost"),
			Port:               configInt(c, "port", 5432),
			User:               configString(c, "user", "postgres"),
			Password:           configString(c, "password", ""),
			DBName:             configString(c, "db_name", "memchat"),
			CollectionName:     configString(c, "collection_name", "memories"),
			EmbeddingModelDims: configInt(c, "embedding_model_dims", dims),
			SSLMode:            configString(c, "ssl_mode", "disable"),
		})
	case "oceanbase":
		return oceanbase.NewClient(&oceanbase.Config{
			Host:               configString(c, "host", "127.0.0.1"),
			Port:               configInt(c, "port", 2881),
			User:               configString(c, "user", "root@sys"),
			Password:           configString(c, "password", ""),
			DBName:             configString(c, "db_name", "memchat"),
			CollectionName:     configString(c, "collection_name", "memories"),
			EmbeddingModelDims: configInt(c, "embedding_model_dims", dims),
		})
	default:
		return nil, NewMemoryError("initStorage", ErrInvalidConfig)
	}
}

// initMemoryStore builds the local or remote memory backend.
func initMemoryStore(cfg *Config) (memstore.Store, error) {
	if cfg.MemoryService.Backend == BackendRemote {
		remote, err := memstore.NewRemote(&memstore.RemoteConfig{
			BaseURL: cfg.MemoryService.URL,
			Timeout: cfg.MemoryService.Timeout(),
		})
		if err != nil {
			return nil, NewMemoryError("initMemoryStore", err)
		}
		return remote, nil
	}

	emb, err := initEmbedder(cfg.Embedder)
	if err != nil {
		return nil, err
	}
	vs, err := initStorage(cfg.VectorStore, emb.Dimensions())
	if err != nil {
		_ = emb.Close()
		return nil, NewMemoryError("initMemoryStore", err)
	}
	local, err := memstore.NewLocal(emb, vs, cfg.MemoryService.NodeID)
	if err != nil {
		_ = vs.Close()
		_ = emb.Close()
		return nil, NewMemoryError("initMemoryStore", err)
	}
	return local, nil
}
