package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"qa-search-orchestrator/internal/domain"
)

// PgxDocumentRepository implements domain.DocumentRepository on PostgreSQL.
// Connections are acquired from the pool per query and released on every
// exit path by pgx itself.
type PgxDocumentRepository struct {
	pool *pgxpool.Pool
}

// NewPgxDocumentRepository constructs a repository around the given pool.
func NewPgxDocumentRepository(pool *pgxpool.Pool) *PgxDocumentRepository {
	return &PgxDocumentRepository{pool: pool}
}

var _ domain.DocumentRepository = (*PgxDocumentRepository)(nil)

// documentVector is the weighted tsvector used for both the index and the
// query; title outweighs body.
const documentVector = `setweight(to_tsvector('english', coalesce(title, '')), 'A') ||
		setweight(to_tsvector('english', coalesce(body, '')), 'B')`

// FullTextSearch runs a ranked full-text query over title and body.
func (r *PgxDocumentRepository) FullTextSearch(ctx context.Context, query string, limit int) ([]domain.ScoredDocument, error) {
	sql := fmt.Sprintf(`
		SELECT id, title, body,
		       ts_rank(%s, plainto_tsquery('english', $1)) AS score
		FROM documents
		WHERE (%s) @@ plainto_tsquery('english', $1)
		ORDER BY score DESC, id ASC
		LIMIT $2`, documentVector, documentVector)

	rows, err := r.pool.Query(ctx, sql, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to run full-text query: %w", err)
	}
	defer rows.Close()

	var docs []domain.ScoredDocument
	for rows.Next() {
		var doc domain.ScoredDocument
		var score float32
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Body, &score); err != nil {
			return nil, fmt.Errorf("failed to scan full-text row: %w", err)
		}
		doc.LexicalScore = float64(score)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read full-text rows: %w", err)
	}
	return docs, nil
}

// SearchByKeywords runs a case-insensitive containment query requiring every
// keyword in title or body. Results are ordered by id so positional scoring
// downstream is stable.
func (r *PgxDocumentRepository) SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]domain.Document, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	conditions := make([]string, len(keywords))
	args := make([]any, 0, len(keywords)+1)
	for i, keyword := range keywords {
		conditions[i] = fmt.Sprintf("(title ILIKE $%d OR body ILIKE $%d)", i+1, i+1)
		args = append(args, "%"+keyword+"%")
	}
	args = append(args, limit)

	sql := fmt.Sprintf(`
		SELECT id, title, body
		FROM documents
		WHERE %s
		ORDER BY id ASC
		LIMIT $%d`, strings.Join(conditions, " AND "), len(keywords)+1)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run keyword query: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Body); err != nil {
			return nil, fmt.Errorf("failed to scan keyword row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read keyword rows: %w", err)
	}
	return docs, nil
}

// EnsureTextIndex creates the weighted GIN full-text index if missing.
// CREATE INDEX IF NOT EXISTS makes it idempotent and safe to leave
// in-flight on cancellation.
func (r *PgxDocumentRepository) EnsureTextIndex(ctx context.Context) error {
	sql := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS documents_fts_idx ON documents USING GIN ((%s))`, documentVector)
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to ensure text index: %w", err)
	}
	return nil
}

// ListEmbedded returns every document carrying a stored embedding vector.
func (r *PgxDocumentRepository) ListEmbedded(ctx context.Context) ([]domain.Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, body, embedding
		FROM documents
		WHERE embedding IS NOT NULL
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var doc domain.Document
		var embedding pgvector.Vector
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Body, &embedding); err != nil {
			return nil, fmt.Errorf("failed to scan embedded row: %w", err)
		}
		doc.Embedding = embedding.Slice()
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read embedded rows: %w", err)
	}
	return docs, nil
}

// Stats reports document counts for diagnostics.
func (r *PgxDocumentRepository) Stats(ctx context.Context) (*domain.DocumentStats, error) {
	var stats domain.DocumentStats
	err := r.pool.QueryRow(ctx, `
		SELECT count(*), count(embedding)
		FROM documents`).Scan(&stats.TotalDocuments, &stats.EmbeddedDocuments)
	if err != nil {
		return nil, fmt.Errorf("failed to read document stats: %w", err)
	}
	return &stats, nil
}
