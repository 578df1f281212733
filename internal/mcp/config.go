package mcp

import (
	"log"

	"github.com/mark3labs/mcp-go/server"

	"github.com/debaditya-mohankudo/prmailhub/internal/config"
	"github.com/debaditya-mohankudo/prmailhub/internal/db"
	"github.com/debaditya-mohankudo/prmailhub/internal/ingestion"
	"github.com/debaditya-mohankudo/prmailhub/internal/llm"
	"github.com/debaditya-mohankudo/prmailhub/internal/logging"
	"github.com/debaditya-mohankudo/prmailhub/internal/mcp/tools"
	"github.com/debaditya-mohankudo/prmailhub/internal/query"
	"github.com/debaditya-mohankudo/prmailhub/internal/tags"
)

type Config struct {
	ToolAdapters map[string]ToolAdapter
	Options      []server.StreamableHTTPOption
	Database     *db.Database
}

func DefaultConfig() Config {
	ingestionCfg, err := ingestion.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	database, err := db.NewDatabase(db.Config{DSN: ingestionCfg.PostgresURL, Debug: ingestionCfg.DBDebug})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	baseLogger := logging.New(logging.ForLevel(config.LogLevel()))
	repo := db.NewSearchRepository(database)

	embedClient, err := llm.NewEmbeddingsClient(ingestionCfg.OllamaURL, ingestionCfg.EmbeddingModel, ingestionCfg.LLMCallTimeout, baseLogger.WithName("embeddings"))
	if err != nil {
		log.Fatalf("failed to init embeddings client: %v", err)
	}
	genClient, err := llm.NewGenerationClient(ingestionCfg.OllamaURL, config.LLMModel(), ingestionCfg.LLMCallTimeout, baseLogger.WithName("llm"))
	if err != nil {
		log.Fatalf("failed to init generation client: %v", err)
	}

	classifier := tags.Default()
	if path := config.TagRulesFile(); path != "" {
		classifier, err = tags.FromFile(path)
		if err != nil {
			log.Fatalf("failed to load tag rules: %v", err)
		}
	}

	engine := query.NewEngine(repo, repo, embedClient, genClient, classifier,
		query.Options{TopK: config.TopK(), ContextBudget: config.ContextBudget()},
		baseLogger.WithName("query"))

	return Config{
		ToolAdapters: map[string]ToolAdapter{
			"search_records": &tools.SearchRecordsHandler{Service: engine},
			"get_pr_details": &tools.GetPRDetailsHandler{Service: tools.NewDBDetailsService(repo)},
			"ask":            &tools.AskHandler{Service: engine},
		},
		Options: []server.StreamableHTTPOption{
			server.WithEndpointPath("/mcp/jsonrpc"),
			server.WithStateLess(true),
		},
		Database: database,
	}
}
