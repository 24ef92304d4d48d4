package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BradenHooton/realty/internal/database"
	"github.com/BradenHooton/realty/internal/models"
	"github.com/BradenHooton/realty/internal/store"
)

const auditLogColumns = `id, event_type, actor_id, target_id, resource_type, resource_id,
	action, success, failure_reason, ip_address, metadata, created_at`

// AuditLogRepository handles audit log data access
type AuditLogRepository struct {
	pool *pgxpool.Pool
}

// NewAuditLogRepository creates a new AuditLogRepository
func NewAuditLogRepository(db *database.DB) *AuditLogRepository {
	return &AuditLogRepository{pool: db.Pool}
}

var _ store.AuditLogs = (*AuditLogRepository)(nil)

// scanAuditLogRow handles nullable fields and populates an AuditLog model from a database row
func scanAuditLogRow(row rowScanner) (*models.AuditLog, error) {
	var log models.AuditLog

	err := row.Scan(
		&log.ID, &log.EventType, &log.ActorID, &log.TargetID,
		&log.ResourceType, &log.ResourceID, &log.Action, &log.Success,
		&log.FailureReason, &log.IPAddress, &log.Metadata,
		&log.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &log, nil
}

// scanAuditLogRows iterates through rows and scans each into AuditLog models
func scanAuditLogRows(rows pgx.Rows) ([]*models.AuditLog, error) {
	defer rows.Close()

	logs := make([]*models.AuditLog, 0)

	for rows.Next() {
		log, err := scanAuditLogRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit log rows: %w", err)
	}

	return logs, nil
}

// Create creates a new audit log entry
func (r *AuditLogRepository) Create(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error) {
	query := `
		INSERT INTO audit_logs (
			event_type, actor_id, target_id, resource_type, resource_id,
			action, success, failure_reason, ip_address, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + auditLogColumns

	metadata := log.Metadata
	if metadata == nil {
		metadata = models.AuditMetadata{}
	}

	result, err := scanAuditLogRow(r.pool.QueryRow(
		ctx, query,
		log.EventType, log.ActorID, log.TargetID, log.ResourceType, log.ResourceID,
		log.Action, log.Success, log.FailureReason, log.IPAddress, metadata,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create audit log: %w", err)
	}

	return result, nil
}

// List returns audit logs newest first, with the total matching the filter
func (r *AuditLogRepository) List(ctx context.Context, filter models.AuditLogFilter) ([]*models.AuditLog, int64, error) {
	q := &listingQuery{}
	if filter.EventType != "" {
		q.where("event_type = " + q.arg(filter.EventType))
	}
	if filter.ActorID != nil {
		q.where("actor_id = " + q.arg(*filter.ActorID))
	}
	where := q.clause()

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs`+where, q.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	query := `SELECT ` + auditLogColumns + ` FROM audit_logs` + where +
		` ORDER BY created_at DESC, id LIMIT ` + q.arg(filter.Limit) + ` OFFSET ` + q.arg(filter.Offset)

	rows, err := r.pool.Query(ctx, query, q.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query audit logs: %w", err)
	}

	logs, err := scanAuditLogRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
