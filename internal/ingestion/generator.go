package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/debaditya-mohankudo/prmailhub/internal/db"
	dbmigrate "github.com/debaditya-mohankudo/prmailhub/internal/db/migrate"
	"github.com/debaditya-mohankudo/prmailhub/internal/llm"
	"github.com/debaditya-mohankudo/prmailhub/internal/logging"
	"github.com/debaditya-mohankudo/prmailhub/internal/mailbox"
	"github.com/debaditya-mohankudo/prmailhub/internal/record"
	"github.com/debaditya-mohankudo/prmailhub/internal/tags"
)

type Generator struct {
	cfg        Config
	db         *db.Database
	repo       *db.SearchRepository
	embed      *llm.EmbeddingsClient
	classifier *tags.RuleClassifier
	embTags    *tags.EmbeddingClassifier // nil disables similarity tagging
	enricher   *Enricher                 // nil disables GitHub enrichment
	log        logging.Logger
}

func NewGenerator(cfg Config, database *db.Database, repo *db.SearchRepository, embed *llm.EmbeddingsClient, classifier *tags.RuleClassifier, embTags *tags.EmbeddingClassifier, enricher *Enricher, log logging.Logger) *Generator {
	return &Generator{
		cfg:        cfg,
		db:         database,
		repo:       repo,
		embed:      embed,
		classifier: classifier,
		embTags:    embTags,
		enricher:   enricher,
		log:        log,
	}
}

func (g *Generator) Run(ctx context.Context) error {
	if err := dbmigrate.EnsureCurrent(ctx, g.db.Bun(), g.cfg.MigrationsDir, g.cfg.AutoMigrate); err != nil {
		return err
	}

	switch strings.ToUpper(g.cfg.ExecutionMode) {
	case "PARSE":
		return g.RunParse(ctx)
	case "EMBED":
		return g.RunEmbed(ctx)
	case "FULL", "":
		return g.RunFull(ctx)
	default:
		return fmt.Errorf("invalid execution mode: %s (must be FULL, PARSE, or EMBED)", g.cfg.ExecutionMode)
	}
}

func (g *Generator) RunFull(ctx context.Context) error {
	g.log.Info("full mode: parsing mailboxes, then embedding")

	if err := g.RunParse(ctx); err != nil {
		return fmt.Errorf("parse phase: %w", err)
	}
	if err := g.RunEmbed(ctx); err != nil {
		return fmt.Errorf("embed phase: %w", err)
	}
	return nil
}

// RunParse reads every mailbox file under the configured directory, builds
// one record fragment per message, merges fragments within the file and
// against what the store already holds, and persists the result. Rows
// touched by a merge lose their embedding and re-enter the embed backlog.
func (g *Generator) RunParse(ctx context.Context) error {
	files, err := findMailboxes(g.cfg.MailboxDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		g.log.Info("parse: no mailbox files found", "dir", g.cfg.MailboxDir)
		return nil
	}

	stored := 0
	for _, path := range files {
		messages, err := mailbox.ReadMbox(path, g.log)
		if err != nil {
			g.log.Error(err, "parse: skipping unreadable mailbox", "path", path)
			continue
		}

		parts := make([]record.Record, 0, len(messages))
		for _, msg := range messages {
			parts = append(parts, mailbox.ToRecord(msg, g.classifier))
		}

		merged, err := record.MergeAll(parts)
		if err != nil {
			return fmt.Errorf("merge records from %s: %w", path, err)
		}

		for _, rec := range merged {
			if err := g.storeMerged(ctx, rec, path); err != nil {
				return fmt.Errorf("store record from %s: %w", path, err)
			}
			stored++
		}
		g.log.Info("parse: mailbox done", "path", path, "messages", len(messages), "records", len(merged))
	}

	g.log.Info("parse: complete", "mailboxes", len(files), "records", stored)
	return nil
}

func (g *Generator) storeMerged(ctx context.Context, rec record.Record, sourcePath string) error {
	if g.enricher != nil {
		g.enricher.Enrich(ctx, &rec)
	}
	if g.embTags != nil && rec.Title != "" {
		extra, err := g.embTags.Classify(ctx, rec.Title)
		if err != nil {
			g.log.Debug("parse: similarity tagging skipped", "title", rec.Title, "error", err.Error())
		} else if len(extra) > 0 {
			rec.Tags = append(rec.Tags, extra...)
			rec = record.Normalize(rec)
		}
	}

	key, ok := rec.Key()
	if !ok {
		exists, err := g.repo.HasKeyless(ctx, sourcePath, rec.Title)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		return g.repo.Insert(ctx, db.ToDoc(rec, sourcePath))
	}

	existing, err := g.repo.GetByKey(ctx, key)
	if err != nil {
		return err
	}
	if existing == nil {
		return g.repo.Insert(ctx, db.ToDoc(rec, sourcePath))
	}

	prev := db.ToRecord(existing)
	merged, err := record.Merge(&prev, rec)
	if err != nil {
		return err
	}
	if reflect.DeepEqual(merged, prev) {
		// Duplicate delivery of an already-merged fragment. Leaving the row
		// untouched keeps its embedding valid.
		return nil
	}

	doc := db.ToDoc(merged, sourcePath)
	doc.ID = existing.ID
	return g.repo.UpdateMerged(ctx, doc)
}

// RunEmbed drains a batch of rows that still lack an embedding.
func (g *Generator) RunEmbed(ctx context.Context) error {
	backlog, err := g.repo.CountUnprocessed(ctx)
	if err != nil {
		return fmt.Errorf("count unprocessed records: %w", err)
	}

	limit := g.cfg.MaxEmbedBatch
	g.log.Info("embed mode", "backlog", backlog, "batch", limit)
	if backlog == 0 {
		return nil
	}

	docs, err := g.repo.GetUnprocessed(ctx, limit)
	if err != nil {
		return fmt.Errorf("get unprocessed records: %w", err)
	}

	embedded := 0
	for _, doc := range docs {
		text := BuildDocument(db.ToRecord(doc))
		g.log.Debug("embed: document built", "id", doc.ID, "tokens", llm.EstimateTokens(text))

		vectors, err := g.embed.EmbedTexts(ctx, []string{text})
		if err != nil {
			g.log.Error(err, "embed: failed, leaving record in backlog", "id", doc.ID)
			continue
		}
		if len(vectors) == 0 {
			g.log.Info("embed: empty vector, leaving record in backlog", "id", doc.ID)
			continue
		}

		if err := g.repo.UpdateProcessing(ctx, doc.ID, pgvector.NewVector(vectors[0]), text); err != nil {
			return fmt.Errorf("update record %d: %w", doc.ID, err)
		}
		embedded++
	}

	g.log.Info("embed: complete", "embedded", embedded, "batch", len(docs))
	return nil
}

func findMailboxes(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".mbox") || strings.HasSuffix(path, ".mbx") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan mailbox dir %s: %w", dir, err)
	}
	return files, nil
}
