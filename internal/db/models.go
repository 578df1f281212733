package db

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"

	"github.com/debaditya-mohankudo/prmailhub/internal/record"
)

// RecordDoc is the stored form of a merged notification record. One row per
// merge key; keyless fragments are stored with a NULL pr_number and never
// merged. List fields live in jsonb so merge results round-trip without a
// schema change per field.
type RecordDoc struct {
	bun.BaseModel `bun:"table:record_docs"`

	ID           int64             `bun:"id,pk,autoincrement"`
	PRNumber     *int              `bun:"pr_number"`
	Repo         string            `bun:"repo"`
	Title        string            `bun:"title"`
	Tickets      []string          `bun:"tickets,type:jsonb"`
	Commits      []record.Commit   `bun:"commits,type:jsonb"`
	CommitShorts []string          `bun:"commit_shorts,array"` // first 7 chars of each hash, for prefix lookup
	Files        []string          `bun:"files,type:jsonb"`
	Contributors []string          `bun:"contributors,type:jsonb"`
	Tags         []string          `bun:"tags,type:jsonb"`
	Headings     []string          `bun:"headings,type:jsonb"`
	ListItems    []string          `bun:"list_items,type:jsonb"`
	CodeBlocks   []string          `bun:"code_blocks,type:jsonb"`
	BodyExcerpts []string          `bun:"body_excerpts,type:jsonb"`
	SourcePath   string            `bun:"source_path"`
	Embedding    *pgvector.Vector  `bun:"embedding"` // NULL = not embedded yet
	EmbeddingDoc string            `bun:"embedding_doc"`
	ProcessedAt  *time.Time        `bun:"processed_at"` // NULL = needs embedding
	CreatedAt    time.Time         `bun:"created_at,nullzero,default:now()"`
}
