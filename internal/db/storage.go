package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	pgvector "github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"

	"github.com/debaditya-mohankudo/prmailhub/internal/record"
)

// SearchRepository is the shared data-access layer. The query engine uses
// it as corpus and vector index; the ingestion pipeline uses it to persist
// merge results and to drain the embedding backlog.
type SearchRepository struct {
	db *bun.DB
}

type recordSearchRow struct {
	RecordDoc `bun:",extend"`
	Distance  float64 `bun:"distance"`
}

func NewSearchRepository(database *Database) *SearchRepository {
	return &SearchRepository{db: database.Bun()}
}

// GetByKey fetches the row for a merge key, or nil when none exists.
func (r *SearchRepository) GetByKey(ctx context.Context, key record.Key) (*RecordDoc, error) {
	doc := new(RecordDoc)
	err := r.db.NewSelect().Model(doc).
		Where("pr_number = ?", key.PRNumber).
		Where("repo = ?", key.Repo).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return doc, nil
}

// Insert stores a new row.
func (r *SearchRepository) Insert(ctx context.Context, doc *RecordDoc) error {
	_, err := r.db.NewInsert().Model(doc).Exec(ctx)
	return err
}

// UpdateMerged replaces the content fields of an existing row after a merge
// and clears the embedding so the processing pass re-embeds it.
func (r *SearchRepository) UpdateMerged(ctx context.Context, doc *RecordDoc) error {
	_, err := r.db.NewUpdate().Model(doc).
		Column("title", "tickets", "commits", "commit_shorts", "files",
			"contributors", "tags", "headings", "list_items", "code_blocks",
			"body_excerpts", "source_path").
		Set("embedding = NULL").
		Set("embedding_doc = ''").
		Set("processed_at = NULL").
		WherePK().
		Exec(ctx)
	return err
}

// HasKeyless reports whether a keyless fragment from the same source file
// with the same title is already stored. Keyless rows have no merge key, so
// this is the only duplicate guard re-ingestion gets.
func (r *SearchRepository) HasKeyless(ctx context.Context, sourcePath, title string) (bool, error) {
	count, err := r.db.NewSelect().Model((*RecordDoc)(nil)).
		Where("pr_number IS NULL").
		Where("source_path = ?", sourcePath).
		Where("title = ?", title).
		Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ByPRNumber returns every record carrying the PR number, across all repos.
func (r *SearchRepository) ByPRNumber(ctx context.Context, number int) ([]record.Record, error) {
	var docs []*RecordDoc
	err := r.db.NewSelect().Model(&docs).
		Where("pr_number = ?", number).
		Order("repo ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return ToRecords(docs), nil
}

// ByCommitPrefix returns records whose commit list matches the hex token.
// The indexed commit_shorts column narrows candidates to the first seven
// characters; the full prefix rule is re-checked in memory because either
// side may be the longer hash.
func (r *SearchRepository) ByCommitPrefix(ctx context.Context, token string) ([]record.Record, error) {
	token = strings.ToLower(token)
	short := record.ShortenCommit(token)

	var docs []*RecordDoc
	err := r.db.NewSelect().Model(&docs).
		Where("? = ANY(commit_shorts)", short).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	var out []record.Record
	for _, doc := range docs {
		rec := ToRecord(doc)
		if rec.HasCommitPrefix(token) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// SearchSimilar runs cosine-distance nearest neighbors over embedded rows.
func (r *SearchRepository) SearchSimilar(ctx context.Context, embedding []float32, k int) ([]record.Record, error) {
	if k <= 0 {
		k = 5
	}
	var rows []recordSearchRow
	err := r.db.NewSelect().Model(&rows).
		Column("id", "pr_number", "repo", "title", "tickets", "commits",
			"commit_shorts", "files", "contributors", "tags", "headings",
			"list_items", "code_blocks", "body_excerpts", "source_path").
		ColumnExpr("embedding <=> ? AS distance", pgvector.NewVector(embedding)).
		Where("embedding IS NOT NULL").
		OrderExpr("distance").
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]record.Record, 0, len(rows))
	for i := range rows {
		out = append(out, ToRecord(&rows[i].RecordDoc))
	}
	return out, nil
}

// GetUnprocessed returns rows still waiting for an embedding.
func (r *SearchRepository) GetUnprocessed(ctx context.Context, limit int) ([]*RecordDoc, error) {
	if limit <= 0 {
		limit = 100
	}
	var docs []*RecordDoc
	err := r.db.NewSelect().Model(&docs).
		Where("processed_at IS NULL").
		Order("id ASC").
		Limit(limit).
		Scan(ctx)
	return docs, err
}

// UpdateProcessing records the embedding result for a row.
func (r *SearchRepository) UpdateProcessing(ctx context.Context, id int64, embedding pgvector.Vector, docText string) error {
	now := time.Now()
	_, err := r.db.NewUpdate().Model((*RecordDoc)(nil)).
		Set("embedding = ?", embedding).
		Set("embedding_doc = ?", docText).
		Set("processed_at = ?", now).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// Count returns the total number of stored records.
func (r *SearchRepository) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*RecordDoc)(nil)).Count(ctx)
}

// CountUnprocessed returns how many rows still lack an embedding.
func (r *SearchRepository) CountUnprocessed(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*RecordDoc)(nil)).
		Where("processed_at IS NULL").
		Count(ctx)
}
