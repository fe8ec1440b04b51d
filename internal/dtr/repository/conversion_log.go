// Package repository persists the conversion history: one row per
// successfully produced report artifact.
package repository

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dtrkit/dtr-backend/pkg/database"
	"github.com/dtrkit/dtr-backend/pkg/errors"
)

// Conversion is one append-only history entry.
type Conversion struct {
	ID             uuid.UUID `db:"id" json:"id"`
	SourceFilename string    `db:"source_filename" json:"source_filename"`
	OutputPath     string    `db:"output_path" json:"output_path"`
	ActiveMonth    string    `db:"active_month" json:"active_month"`
	EmployeeCount  int       `db:"employee_count" json:"employee_count"`
	EventCount     int       `db:"event_count" json:"event_count"`
	DroppedRows    int       `db:"dropped_rows" json:"dropped_rows"`
	ConvertedAt    time.Time `db:"converted_at" json:"converted_at"`
}

// ConversionLogRepository records and lists conversion history entries.
type ConversionLogRepository struct {
	db *database.DB
}

// NewConversionLogRepository creates a new repository
func NewConversionLogRepository(db *database.DB) *ConversionLogRepository {
	return &ConversionLogRepository{db: db}
}

const insertConversionQuery = `
	INSERT INTO conversions (id, source_filename, output_path, active_month, employee_count, event_count, dropped_rows, converted_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// Record appends one history entry. The entry's ID and ConvertedAt are
// assigned here when unset.
func (r *ConversionLogRepository) Record(ctx context.Context, entry *Conversion) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.ConvertedAt.IsZero() {
		entry.ConvertedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, insertConversionQuery,
		entry.ID,
		entry.SourceFilename,
		entry.OutputPath,
		entry.ActiveMonth,
		entry.EmployeeCount,
		entry.EventCount,
		entry.DroppedRows,
		entry.ConvertedAt,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return errors.WriteFailed(err)
	}

	return nil
}

const listConversionsQuery = `
	SELECT id, source_filename, output_path, active_month, employee_count, event_count, dropped_rows, converted_at
	FROM conversions
	ORDER BY converted_at DESC
	LIMIT $1`

// List returns the newest entries first, capped at limit.
func (r *ConversionLogRepository) List(ctx context.Context, limit int) ([]Conversion, error) {
	if limit <= 0 {
		limit = 50
	}

	var entries []Conversion
	if err := r.db.SelectContext(ctx, &entries, listConversionsQuery, limit); err != nil {
		return nil, errors.Wrap(err, "HISTORY_LIST_FAILED", "failed to list conversions", http.StatusInternalServerError)
	}

	return entries, nil
}

const getConversionQuery = `
	SELECT id, source_filename, output_path, active_month, employee_count, event_count, dropped_rows, converted_at
	FROM conversions
	WHERE id = $1`

// Get returns one history entry by id.
func (r *ConversionLogRepository) Get(ctx context.Context, id uuid.UUID) (*Conversion, error) {
	var entry Conversion
	if err := r.db.GetContext(ctx, &entry, getConversionQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("conversion")
		}
		return nil, errors.Wrap(err, "HISTORY_GET_FAILED", "failed to get conversion", http.StatusInternalServerError)
	}

	return &entry, nil
}
