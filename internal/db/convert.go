package db

import (
	"strings"

	"github.com/debaditya-mohankudo/prmailhub/internal/record"
)

// ToDoc maps a merged record onto its stored row. The embedding fields are
// left empty; the processing pass fills them later.
func ToDoc(r record.Record, sourcePath string) *RecordDoc {
	doc := &RecordDoc{
		PRNumber:     r.PRNumber,
		Repo:         r.Repo,
		Title:        r.Title,
		Tickets:      r.Tickets,
		Commits:      r.Commits,
		Files:        r.Files,
		Contributors: r.Contributors,
		Tags:         r.Tags,
		Headings:     r.Markdown.Headings,
		ListItems:    r.Markdown.ListItems,
		CodeBlocks:   r.Markdown.CodeBlocks,
		BodyExcerpts: r.BodyExcerpts,
		SourcePath:   sourcePath,
	}
	for _, c := range r.Commits {
		doc.CommitShorts = append(doc.CommitShorts, strings.ToLower(record.ShortenCommit(c.Short)))
	}
	return doc
}

// ToRecord rebuilds the in-memory record from its row.
func ToRecord(doc *RecordDoc) record.Record {
	return record.Record{
		PRNumber:     doc.PRNumber,
		Repo:         doc.Repo,
		Title:        doc.Title,
		Tickets:      doc.Tickets,
		Commits:      doc.Commits,
		Files:        doc.Files,
		Contributors: doc.Contributors,
		Tags:         doc.Tags,
		Markdown: record.Markdown{
			Headings:   doc.Headings,
			ListItems:  doc.ListItems,
			CodeBlocks: doc.CodeBlocks,
		},
		BodyExcerpts: doc.BodyExcerpts,
	}
}

// ToRecords converts rows in order.
func ToRecords(docs []*RecordDoc) []record.Record {
	out := make([]record.Record, 0, len(docs))
	for _, doc := range docs {
		out = append(out, ToRecord(doc))
	}
	return out
}
