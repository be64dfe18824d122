package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/rvaldezm/docscope/internal/core/domain"
)

// DocumentCatalog persists grounding document records keyed by scope.
type DocumentCatalog struct {
	db *sql.DB
}

func NewDocumentCatalog(db *sql.DB) *DocumentCatalog {
	return &DocumentCatalog{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentCatalog) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082701)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS grounding_documents (
	id TEXT PRIMARY KEY,
	original_name TEXT NOT NULL,
	scope TEXT NOT NULL,
	chunk_count INTEGER NOT NULL DEFAULT 0,
	uploaded_by TEXT,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_grounding_documents_scope ON grounding_documents(scope);
CREATE INDEX IF NOT EXISTS idx_grounding_documents_created_at ON grounding_documents(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DocumentCatalog) Create(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO grounding_documents (id, original_name, scope, chunk_count, uploaded_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`,
		doc.ID, doc.OriginalName, string(doc.Scope), doc.ChunkCount, doc.UploadedBy, doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentCatalog) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, original_name, scope, chunk_count, uploaded_by, created_at
FROM grounding_documents
WHERE id = $1
`, id)

	var doc domain.Document
	var scope string

	err := row.Scan(&doc.ID, &doc.OriginalName, &scope, &doc.ChunkCount, &doc.UploadedBy, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "catalog.GetByID", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	doc.Scope = domain.Scope(scope)
	return &doc, nil
}

func (r *DocumentCatalog) ListByScope(ctx context.Context, scope domain.Scope) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, original_name, scope, chunk_count, uploaded_by, created_at
FROM grounding_documents
WHERE scope = $1
ORDER BY created_at ASC
`, string(scope))
	if err != nil {
		return nil, fmt.Errorf("query documents by scope: %w", err)
	}
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		var doc domain.Document
		var s string
		if err := rows.Scan(&doc.ID, &doc.OriginalName, &s, &doc.ChunkCount, &doc.UploadedBy, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		doc.Scope = domain.Scope(s)
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document rows: %w", err)
	}
	return out, nil
}

func (r *DocumentCatalog) CountByScope(ctx context.Context, scope domain.Scope) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM grounding_documents WHERE scope = $1
`, string(scope)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count documents by scope: %w", err)
	}
	return count, nil
}

func (r *DocumentCatalog) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM grounding_documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "catalog.Delete", fmt.Errorf("id %s", id))
	}
	return nil
}
