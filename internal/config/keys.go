package config

const (
	KeyPostgresURL     = "postgres_url"
	KeyOllamaURL       = "ollama_url"
	KeyLogLevel        = "log_level"
	KeyEmbeddingModel  = "embedding_model_name"
	KeyLLMModel        = "llm_model_name"
	KeyLLMCallTimeout  = "llm_call_timeout"
	KeyMailboxDir      = "mailbox_dir"
	KeyExecutionMode   = "execution_mode"
	KeyMaxEmbedBatch   = "max_embed_batch"
	KeyTopK            = "top_k"
	KeyContextBudget   = "context_budget"
	KeyGitHubToken     = "github_token"
	KeyAutoMigrate     = "auto_migrate"
	KeyMigrationsDir   = "db_migrations_dir"
	KeyDBDebug         = "db_debug"
	KeyMCPListenAddr   = "mcp_listen_addr"
	KeyHistoryFile     = "history_file"
	KeyTagRulesFile    = "tag_rules_file"
	KeyTagThreshold    = "tag_similarity_threshold"
	KeyTagUseEmbedding = "tag_use_embedding"
)
