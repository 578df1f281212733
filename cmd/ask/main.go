package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/debaditya-mohankudo/prmailhub/internal/config"
	"github.com/debaditya-mohankudo/prmailhub/internal/db"
	"github.com/debaditya-mohankudo/prmailhub/internal/ingestion"
	"github.com/debaditya-mohankudo/prmailhub/internal/llm"
	"github.com/debaditya-mohankudo/prmailhub/internal/logging"
	"github.com/debaditya-mohankudo/prmailhub/internal/query"
	"github.com/debaditya-mohankudo/prmailhub/internal/tags"
)

var rootCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question over the merged notification records",
	Args:  cobra.MinimumNArgs(1),
	RunE:  run,
}

func run(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

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
	genClient, err := llm.NewGenerationClient(cfg.OllamaURL, config.LLMModel(), cfg.LLMCallTimeout, baseLogger.WithName("llm"))
	if err != nil {
		return err
	}

	classifier := tags.Default()
	if path := config.TagRulesFile(); path != "" {
		classifier, err = tags.FromFile(path)
		if err != nil {
			return err
		}
	}

	engine := query.NewEngine(repo, repo, embedClient, genClient, classifier,
		query.Options{TopK: config.TopK(), ContextBudget: config.ContextBudget()},
		baseLogger.WithName("query"))

	var history []llm.Turn
	historyFile := config.HistoryFile()
	if historyFile != "" {
		history, err = llm.LoadHistory(historyFile)
		if err != nil {
			return err
		}
	}

	result, err := engine.Ask(cmd.Context(), question, history)
	if err != nil {
		if errors.Is(err, query.ErrNoMatches) {
			fmt.Fprintln(cmd.OutOrStdout(), err.Error())
			return nil
		}
		return err
	}

	if result.Ambiguous {
		fmt.Fprintf(cmd.OutOrStdout(), "Note: this PR number exists in several repositories: %s\n\n",
			strings.Join(result.Repos, ", "))
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Answer)

	if historyFile != "" {
		history = append(history,
			llm.Turn{Role: "user", Content: question},
			llm.Turn{Role: "assistant", Content: result.Answer},
		)
		if err := llm.SaveHistory(historyFile, history); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	config.Init(rootCmd)

	rootCmd.PersistentFlags().String("history", "", "Path to a JSON conversation history file")
	_ = viper.BindPFlag(config.KeyHistoryFile, rootCmd.PersistentFlags().Lookup("history"))

	if err := rootCmd.Execute(); err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("ask: %v", err)
	}
}
