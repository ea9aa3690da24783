package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const resumeColumns = `id, owner_id, file_name, file_type, file_size, file_path, file_url, raw_text, parsed_data, status, created_at, updated_at`

// Create inserts a new resume record after checking the required fields.
func (r *PGRepo) Create(ctx context.Context, res Resume) error {
	if err := validateForCreate(res); err != nil {
		return err
	}
	const query = `
INSERT INTO resumes (
    id,
    owner_id,
    file_name,
    file_type,
    file_size,
    file_path,
    file_url,
    raw_text,
    parsed_data,
    status,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		res.ID,
		res.OwnerID,
		res.FileName,
		res.FileType,
		res.FileSize,
		nullString(res.FilePath),
		nullString(res.FileURL),
		nullString(res.RawText),
		nullRaw(res.ParsedData),
		res.Status,
		res.CreatedAt,
		res.UpdatedAt,
	)
	return err
}

// GetByID fetches a resume by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Resume, error) {
	const query = `
SELECT ` + resumeColumns + `
FROM resumes
WHERE id = $1
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, id)
	res, err := scanResume(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return res, nil
}

// ListByOwner lists resumes for an owner with pagination, optional status
// filter, and a whitelisted sort column.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]Resume, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	direction := "DESC"
	if opts.Asc {
		direction = "ASC"
	}
	orderBy := normalizeOrderBy(opts.OrderBy)

	query := `
SELECT ` + resumeColumns + `
FROM resumes
WHERE owner_id = $1`
	args := []any{ownerID}
	if opts.Status != "" {
		query += ` AND status = $2`
		args = append(args, opts.Status)
	}
	query += ` ORDER BY ` + orderBy + ` ` + direction
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectResumes(rows)
}

// Update rewrites the mutable columns for an existing resume.
func (r *PGRepo) Update(ctx context.Context, res Resume) error {
	const query = `
UPDATE resumes
SET file_name = $1,
    file_type = $2,
    file_size = $3,
    file_path = $4,
    file_url = $5,
    raw_text = $6,
    parsed_data = $7,
    status = $8,
    updated_at = $9
WHERE id = $10`
	result, err := r.DB.ExecContext(
		ctx,
		query,
		res.FileName,
		res.FileType,
		res.FileSize,
		nullString(res.FilePath),
		nullString(res.FileURL),
		nullString(res.RawText),
		nullRaw(res.ParsedData),
		res.Status,
		res.UpdatedAt,
		res.ID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a resume row.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM resumes WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListForExport returns resumes matching the filter, newest-first.
func (r *PGRepo) ListForExport(ctx context.Context, filter ExportFilter) ([]Resume, error) {
	query := `
SELECT ` + resumeColumns + `
FROM resumes`
	var conditions []string
	var args []any
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if !filter.StartDate.IsZero() {
		args = append(args, filter.StartDate)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if !filter.EndDate.IsZero() {
		args = append(args, filter.EndDate)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectResumes(rows)
}

// ListExpired returns resumes older than the cutoff. Rows without a stored
// file expire too; the sweeper only deletes files that exist.
func (r *PGRepo) ListExpired(ctx context.Context, cutoff time.Time) ([]Resume, error) {
	const query = `
SELECT ` + resumeColumns + `
FROM resumes
WHERE created_at < $1
ORDER BY created_at ASC`
	rows, err := r.DB.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectResumes(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (Resume, error) {
	var res Resume
	var filePath sql.NullString
	var fileURL sql.NullString
	var rawText sql.NullString
	var parsedData []byte
	if err := row.Scan(
		&res.ID,
		&res.OwnerID,
		&res.FileName,
		&res.FileType,
		&res.FileSize,
		&filePath,
		&fileURL,
		&rawText,
		&parsedData,
		&res.Status,
		&res.CreatedAt,
		&res.UpdatedAt,
	); err != nil {
		return Resume{}, err
	}
	if filePath.Valid {
		res.FilePath = filePath.String
	}
	if fileURL.Valid {
		res.FileURL = fileURL.String
	}
	if rawText.Valid {
		res.RawText = rawText.String
	}
	if len(parsedData) > 0 {
		res.ParsedData = json.RawMessage(parsedData)
	}
	return res, nil
}

func collectResumes(rows *sql.Rows) ([]Resume, error) {
	var out []Resume
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullRaw(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

var _ Repo = (*PGRepo)(nil)
