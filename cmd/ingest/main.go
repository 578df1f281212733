package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/debaditya-mohankudo/prmailhub/internal/config"
	"github.com/debaditya-mohankudo/prmailhub/internal/db"
	"github.com/debaditya-mohankudo/prmailhub/internal/ingestion"
	"github.com/debaditya-mohankudo/prmailhub/internal/llm"
	"github.com/debaditya-mohankudo/prmailhub/internal/logging"
	"github.com/debaditya-mohankudo/prmailhub/internal/tags"
)

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Parse mailbox exports into merged records and embed them",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := ingestion.LoadConfig()
		if err != nil {
			return err
		}

		baseLogger := logging.New(logging.ForLevel(config.LogLevel()))

		database, err := db.NewDatabase(db.Config{DSN: cfg.PostgresURL, Debug: cfg.DBDebug})
		if err != nil {
			return err
		}
		defer database.Close()

		repo := db.NewSearchRepository(database)
		embedClient, err := llm.NewEmbeddingsClient(cfg.OllamaURL, cfg.EmbeddingModel, cfg.LLMCallTimeout, baseLogger.WithName("embeddings"))
		if err != nil {
			return err
		}

		var enricher *ingestion.Enricher
		if cfg.GitHubToken != "" {
			enricher = ingestion.NewEnricher(ingestion.NewGitHubClient(cfg.GitHubToken), baseLogger.WithName("github"))
		}

		classifier := tags.Default()
		if path := config.TagRulesFile(); path != "" {
			classifier, err = tags.FromFile(path)
			if err != nil {
				return err
			}
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		var embTags *tags.EmbeddingClassifier
		if config.TagUseEmbedding() {
			embTags, err = tags.NewEmbeddingClassifier(ctx, embedClient, classifier.Vocabulary(), float32(config.TagThreshold()))
			if err != nil {
				return err
			}
		}

		generator := ingestion.NewGenerator(cfg, database, repo, embedClient, classifier, embTags, enricher, baseLogger.WithName("ingest"))

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		go func() { <-sigs; cancel() }()

		return generator.Run(ctx)
	},
}

func main() {
	config.Init(rootCmd)

	rootCmd.PersistentFlags().String("mailbox-dir", "./mailboxes", "Directory containing .mbox exports")
	rootCmd.PersistentFlags().String("mode", "FULL", "Execution mode: FULL, PARSE, or EMBED")
	_ = viper.BindPFlag(config.KeyMailboxDir, rootCmd.PersistentFlags().Lookup("mailbox-dir"))
	_ = viper.BindPFlag(config.KeyExecutionMode, rootCmd.PersistentFlags().Lookup("mode"))

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("ingest: %v", err)
	}
}
