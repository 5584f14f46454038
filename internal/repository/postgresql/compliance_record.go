package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/yuadm/first-step-greet/internal/domain/compliance"
	"github.com/yuadm/first-step-greet/internal/pkg/database"
)

type complianceRecordRepositoryImpl struct {
	db *database.DB
}

func NewComplianceRecordRepository(db *database.DB) compliance.RecordRepository {
	return &complianceRecordRepositoryImpl{db: db}
}

// recordColumns selects a record row, aliasing the table's entity column.
func recordColumns(target compliance.TargetTable) string {
	return `id, compliance_type_id, ` + target.EntityColumn() + `, period_identifier, completion_date,
		status, is_overdue, notes, evidence_path, completed_by, created_at, updated_at`
}

func scanRecord(row interface{ Scan(...any) error }) (compliance.Record, error) {
	var rec compliance.Record
	err := row.Scan(
		&rec.ID,
		&rec.ComplianceTypeID,
		&rec.EntityID,
		&rec.PeriodIdentifier,
		&rec.CompletionDate,
		&rec.Status,
		&rec.IsOverdue,
		&rec.Notes,
		&rec.EvidencePath,
		&rec.CompletedBy,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	return rec, err
}

func validTarget(target compliance.TargetTable) error {
	if !target.Valid() {
		return fmt.Errorf("unknown compliance target %q", target)
	}
	return nil
}

// List implements compliance.RecordRepository.
func (r *complianceRecordRepositoryImpl) List(ctx context.Context, target compliance.TargetTable, typeID string, filter compliance.RecordFilter) ([]compliance.Record, error) {
	if err := validTarget(target); err != nil {
		return nil, err
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + recordColumns(target) + ` FROM ` + target.RecordTable() + ` WHERE compliance_type_id = $1`
	args := []interface{}{typeID}
	argIdx := 2

	if filter.PeriodIdentifier != "" {
		query += fmt.Sprintf(" AND period_identifier = $%d", argIdx)
		args = append(args, filter.PeriodIdentifier)
		argIdx++
	}

	if filter.PeriodPrefix != "" {
		query += fmt.Sprintf(" AND period_identifier LIKE $%d", argIdx)
		args = append(args, strings.ReplaceAll(filter.PeriodPrefix, "%", "")+"%")
		argIdx++
	}

	if len(filter.EntityIDs) > 0 {
		query += fmt.Sprintf(" AND %s = ANY($%d)", target.EntityColumn(), argIdx)
		args = append(args, filter.EntityIDs)
	}

	query += " ORDER BY period_identifier ASC, created_at ASC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list compliance records: %w", err)
	}
	defer rows.Close()

	var records []compliance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan compliance record: %w", err)
		}
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}

// GetByID implements compliance.RecordRepository.
func (r *complianceRecordRepositoryImpl) GetByID(ctx context.Context, target compliance.TargetTable, id string) (compliance.Record, error) {
	if err := validTarget(target); err != nil {
		return compliance.Record{}, err
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + recordColumns(target) + ` FROM ` + target.RecordTable() + ` WHERE id = $1`

	rec, err := scanRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return compliance.Record{}, compliance.ErrRecordNotFound
		}
		return compliance.Record{}, fmt.Errorf("failed to get compliance record: %w", err)
	}
	return rec, nil
}

// Upsert implements compliance.RecordRepository. The evidence path survives
// a replace; it is only changed through UpdateEvidence.
func (r *complianceRecordRepositoryImpl) Upsert(ctx context.Context, target compliance.TargetTable, rec compliance.Record) (compliance.Record, error) {
	if err := validTarget(target); err != nil {
		return compliance.Record{}, err
	}
	q := GetQuerier(ctx, r.db)

	entity := target.EntityColumn()
	query := `
		INSERT INTO ` + target.RecordTable() + ` (
			compliance_type_id, ` + entity + `, period_identifier, completion_date,
			status, is_overdue, notes, completed_by, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (compliance_type_id, ` + entity + `, period_identifier) DO UPDATE SET
			completion_date = EXCLUDED.completion_date,
			status          = EXCLUDED.status,
			is_overdue      = EXCLUDED.is_overdue,
			notes           = EXCLUDED.notes,
			completed_by    = EXCLUDED.completed_by,
			updated_at      = NOW()
		RETURNING ` + recordColumns(target)

	saved, err := scanRecord(q.QueryRow(ctx, query,
		rec.ComplianceTypeID,
		rec.EntityID,
		rec.PeriodIdentifier,
		rec.CompletionDate,
		rec.Status,
		rec.IsOverdue,
		rec.Notes,
		rec.CompletedBy,
	))
	if err != nil {
		return compliance.Record{}, fmt.Errorf("failed to upsert compliance record: %w", err)
	}
	return saved, nil
}

// UpdateEvidence implements compliance.RecordRepository.
func (r *complianceRecordRepositoryImpl) UpdateEvidence(ctx context.Context, target compliance.TargetTable, id string, path string) error {
	if err := validTarget(target); err != nil {
		return err
	}
	q := GetQuerier(ctx, r.db)

	query := `UPDATE ` + target.RecordTable() + ` SET evidence_path = $1, updated_at = NOW() WHERE id = $2`

	commandTag, err := q.Exec(ctx, query, path, id)
	if err != nil {
		if isNotFound(err) {
			return compliance.ErrRecordNotFound
		}
		return fmt.Errorf("failed to update evidence path: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return compliance.ErrRecordNotFound
	}
	return nil
}

// Delete implements compliance.RecordRepository.
func (r *complianceRecordRepositoryImpl) Delete(ctx context.Context, target compliance.TargetTable, id string) error {
	if err := validTarget(target); err != nil {
		return err
	}
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM `+target.RecordTable()+` WHERE id = $1`, id)
	if err != nil {
		if isNotFound(err) {
			return compliance.ErrRecordNotFound
		}
		return fmt.Errorf("failed to delete compliance record: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return compliance.ErrRecordNotFound
	}
	return nil
}
