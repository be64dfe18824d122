package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rvaldezm/docscope/internal/core/domain"
)

// SessionStore keeps chat sessions, their per-category document
// attachments, and the conversation transcript.
type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (r *SessionStore) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082702)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	active_category TEXT NOT NULL,
	search_global BOOLEAN NOT NULL DEFAULT FALSE,
	global_write BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS session_documents (
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	category TEXT NOT NULL,
	document_id TEXT NOT NULL,
	original_name TEXT NOT NULL,
	chunk_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (session_id, document_id)
);

CREATE TABLE IF NOT EXISTS session_messages (
	id BIGSERIAL PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	sender TEXT NOT NULL,
	body TEXT NOT NULL,
	is_error BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_session_documents_category ON session_documents(session_id, category);
CREATE INDEX IF NOT EXISTS idx_session_messages_session ON session_messages(session_id, created_at);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// Create inserts a new session row with the scoping flags the caller seeded.
func (r *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (id, active_category, search_global, global_write, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, session.ID, string(session.ActiveCategory), session.SearchGlobal, session.GlobalWrite, now, now)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, active_category, search_global, global_write
FROM sessions
WHERE id = $1
`, sessionID)

	var session domain.Session
	var category string
	if err := row.Scan(&session.ID, &category, &session.SearchGlobal, &session.GlobalWrite); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrSessionNotFound, "sessions.Get", fmt.Errorf("id %s", sessionID))
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	session.ActiveCategory = domain.Category(category)

	rows, err := r.db.QueryContext(ctx, `
SELECT category, document_id, original_name, chunk_count, created_at
FROM session_documents
WHERE session_id = $1
ORDER BY created_at ASC
`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session documents: %w", err)
	}
	defer rows.Close()

	session.Documents = make(map[domain.Category][]domain.Document)
	for rows.Next() {
		var category string
		var doc domain.Document
		if err := rows.Scan(&category, &doc.ID, &doc.OriginalName, &doc.ChunkCount, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan session document: %w", err)
		}
		cat := domain.Category(category)
		doc.Scope = cat.Scope()
		session.Documents[cat] = append(session.Documents[cat], doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session documents: %w", err)
	}
	return &session, nil
}

func (r *SessionStore) SetActiveCategory(ctx context.Context, sessionID string, category domain.Category) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE sessions
SET active_category = $2, updated_at = $3
WHERE id = $1
`, sessionID, string(category), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update active category: %w", err)
	}
	return r.requireSession(res, "sessions.SetActiveCategory", sessionID)
}

func (r *SessionStore) AppendDocument(ctx context.Context, sessionID string, category domain.Category, doc domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO session_documents (session_id, category, document_id, original_name, chunk_count, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (session_id, document_id) DO NOTHING
`, sessionID, string(category), doc.ID, doc.OriginalName, doc.ChunkCount, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert session document: %w", err)
	}
	return nil
}

func (r *SessionStore) RemoveDocument(ctx context.Context, sessionID string, documentID string) error {
	_, err := r.db.ExecContext(ctx, `
DELETE FROM session_documents
WHERE session_id = $1 AND document_id = $2
`, sessionID, documentID)
	if err != nil {
		return fmt.Errorf("delete session document: %w", err)
	}
	return nil
}

func (r *SessionStore) AppendMessage(ctx context.Context, sessionID string, msg domain.Message) error {
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO session_messages (session_id, sender, body, is_error, created_at)
VALUES ($1,$2,$3,$4,$5)
`, sessionID, string(msg.Sender), msg.Text, msg.IsError, ts)
	if err != nil {
		return fmt.Errorf("insert session message: %w", err)
	}
	return nil
}

func (r *SessionStore) requireSession(res sql.Result, op, sessionID string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrSessionNotFound, op, fmt.Errorf("id %s", sessionID))
	}
	return nil
}
