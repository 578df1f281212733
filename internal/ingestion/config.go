// Package ingestion turns mailbox exports into merged, embedded records in
// the store. It runs in three modes: PARSE stores merge results only,
// EMBED drains the embedding backlog, FULL does both.
package ingestion

import (
	"fmt"
	"strings"
	"time"

	"github.com/debaditya-mohankudo/prmailhub/internal/config"
)

type Config struct {
	PostgresURL    string
	OllamaURL      string
	EmbeddingModel string
	MailboxDir     string
	ExecutionMode  string // FULL, PARSE, or EMBED
	MaxEmbedBatch  int    // Maximum records to embed per run
	GitHubToken    string
	AutoMigrate    bool
	MigrationsDir  string
	DBDebug        bool
	LLMCallTimeout time.Duration
}

func LoadConfig() (Config, error) {
	cfg := Config{
		PostgresURL:    config.PostgresURL(),
		OllamaURL:      config.OllamaURL(),
		EmbeddingModel: config.EmbeddingModel(),
		MailboxDir:     config.MailboxDir(),
		ExecutionMode:  strings.ToUpper(config.ExecutionMode()),
		MaxEmbedBatch:  config.MaxEmbedBatch(),
		GitHubToken:    config.GitHubToken(),
		AutoMigrate:    config.AutoMigrate(),
		MigrationsDir:  config.MigrationsDir(),
		DBDebug:        config.DBDebug(),
	}

	timeout, err := parseDuration(config.LLMCallTimeout(), 2*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid llm_call_timeout: %w", err)
	}
	cfg.LLMCallTimeout = timeout

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, err
	}
	return d, nil
}
