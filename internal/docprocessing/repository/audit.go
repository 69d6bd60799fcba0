package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/domain"
	"github.com/mrzscan/mrzscan-backend/pkg/database"
	"github.com/mrzscan/mrzscan-backend/pkg/errors"
)

// Schema creates the audit table. Statements are idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS mrz_scan_audit (
		id                     UUID PRIMARY KEY,
		job_id                 TEXT NOT NULL,
		status                 TEXT NOT NULL,
		document_type          TEXT NOT NULL DEFAULT 'auto',
		mrz_type               TEXT NOT NULL DEFAULT '',
		method                 TEXT NOT NULL DEFAULT '',
		valid_score            INTEGER NOT NULL DEFAULT 0,
		fields_extracted       TEXT[] NOT NULL DEFAULT '{}',
		processing_duration_ms BIGINT NOT NULL DEFAULT 0,
		requested_by           TEXT NOT NULL DEFAULT '',
		image_deleted_at       TIMESTAMPTZ,
		created_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT mrz_scan_audit_job_id_key UNIQUE (job_id),
		CONSTRAINT mrz_scan_audit_valid_score_range CHECK (valid_score BETWEEN 0 AND 100),
		CONSTRAINT mrz_scan_audit_status_valid CHECK (status IN ('completed', 'failed'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_mrz_scan_audit_created_at ON mrz_scan_audit (created_at DESC)`,
}

const auditColumns = `id, job_id, status, document_type, mrz_type, method, valid_score,
	fields_extracted, processing_duration_ms, requested_by, image_deleted_at, created_at`

// AuditRepository persists scan audit entries. Entries are append-only.
type AuditRepository struct {
	db *database.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *database.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create inserts an audit entry and fills in ID and CreatedAt
func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.FieldsExtracted == nil {
		entry.FieldsExtracted = []string{}
	}

	query := `
		INSERT INTO mrz_scan_audit (
			id, job_id, status, document_type, mrz_type, method, valid_score,
			fields_extracted, processing_duration_ms, requested_by, image_deleted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		entry.ID, entry.JobID, entry.Status, entry.DocumentType, entry.MRZType,
		entry.Method, entry.ValidScore, entry.FieldsExtracted,
		entry.ProcessingDurationMs, entry.RequestedBy, entry.ImageDeletedAt,
	).Scan(&entry.CreatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// GetByJobID returns the audit entry of a scan job
func (r *AuditRepository) GetByJobID(ctx context.Context, jobID string) (*domain.AuditEntry, error) {
	var entry domain.AuditEntry
	query := `SELECT ` + auditColumns + ` FROM mrz_scan_audit WHERE job_id = $1`
	if err := r.db.GetContext(ctx, &entry, query, jobID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundWithKey("scan_job")
		}
		return nil, fmt.Errorf("get audit entry: %w", err)
	}
	return &entry, nil
}

// ListRecent returns the newest entries first
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]*domain.AuditEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var entries []*domain.AuditEntry
	query := `SELECT ` + auditColumns + ` FROM mrz_scan_audit ORDER BY created_at DESC LIMIT $1`
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}
