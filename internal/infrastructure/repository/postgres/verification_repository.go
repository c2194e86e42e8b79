package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
)

type VerificationRepository struct {
	db *sql.DB
}

func NewVerificationRepository(db *sql.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
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

func (r *VerificationRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS verifications (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	storage_key TEXT NOT NULL,
	document_type TEXT NOT NULL,
	status TEXT NOT NULL,
	score INTEGER NOT NULL DEFAULT 0,
	report JSONB,
	summary TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_verifications_status ON verifications(status);
CREATE INDEX IF NOT EXISTS idx_verifications_created_at ON verifications(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *VerificationRepository) Create(ctx context.Context, v *domain.Verification) error {
	reportJSON, err := marshalReport(v.Report)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO verifications (
	id, filename, mime_type, storage_key, document_type, status, score, report, summary, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
		v.ID, v.Filename, v.MimeType, v.StorageKey, string(v.DocumentType), string(v.Status), v.Score,
		reportJSON, v.Summary, v.Error, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert verification: %w", err)
	}
	return nil
}

func (r *VerificationRepository) GetByID(ctx context.Context, id string) (*domain.Verification, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, mime_type, storage_key, document_type, status, score, report, summary, error_message, created_at, updated_at
FROM verifications
WHERE id = $1
`, id)

	var v domain.Verification
	var docType, status string
	var reportRaw []byte

	err := row.Scan(
		&v.ID, &v.Filename, &v.MimeType, &v.StorageKey, &docType, &status, &v.Score,
		&reportRaw, &v.Summary, &v.Error, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrVerificationNotFound, "get verification", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan verification: %w", err)
	}

	if len(reportRaw) > 0 {
		var report domain.VerificationReport
		if err := json.Unmarshal(reportRaw, &report); err != nil {
			return nil, fmt.Errorf("unmarshal report: %w", err)
		}
		v.Report = &report
	}
	v.DocumentType = domain.DocumentType(docType)
	v.Status = domain.VerificationStatus(status)
	return &v, nil
}

func (r *VerificationRepository) List(ctx context.Context, limit int) ([]domain.Verification, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, filename, mime_type, storage_key, document_type, status, score, summary, error_message, created_at, updated_at
FROM verifications
ORDER BY created_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Verification, 0)
	for rows.Next() {
		var v domain.Verification
		var docType, status string
		if err := rows.Scan(
			&v.ID, &v.Filename, &v.MimeType, &v.StorageKey, &docType, &status, &v.Score,
			&v.Summary, &v.Error, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan verification: %w", err)
		}
		v.DocumentType = domain.DocumentType(docType)
		v.Status = domain.VerificationStatus(status)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verifications: %w", err)
	}
	return out, nil
}

func (r *VerificationRepository) UpdateStatus(ctx context.Context, id string, status domain.VerificationStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE verifications
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update verification status: %w", err)
	}
	return ensureAffected(res, "update verification status", id)
}

func (r *VerificationRepository) SaveReport(ctx context.Context, id string, status domain.VerificationStatus, report domain.VerificationReport) error {
	reportJSON, err := marshalReport(&report)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE verifications
SET status = $2, score = $3, report = $4, summary = $5, error_message = '', updated_at = $6
WHERE id = $1
`, id, string(status), domain.StoredScore(report.Score), reportJSON, report.Summary, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save verification report: %w", err)
	}
	return ensureAffected(res, "save verification report", id)
}

func (r *VerificationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM verifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete verification: %w", err)
	}
	return ensureAffected(res, "delete verification", id)
}

func ensureAffected(res sql.Result, operation, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if n == 0 {
		return domain.WrapError(domain.ErrVerificationNotFound, operation, fmt.Errorf("id %s", id))
	}
	return nil
}

func marshalReport(report *domain.VerificationReport) ([]byte, error) {
	if report == nil {
		return nil, nil
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return raw, nil
}
