package resumes

import (
	"context"
	"time"
)

// ListOptions controls pagination, ordering, and filtering for owner
// listings. OrderBy values outside the sortable column set fall back to
// creation time.
type ListOptions struct {
	Limit   int
	Offset  int
	OrderBy string
	Asc     bool
	Status  string
}

// Sortable columns for listings.
const (
	OrderByCreatedAt = "created_at"
	OrderByFileName  = "file_name"
	OrderByFileSize  = "file_size"
	OrderByStatus    = "status"
)

func normalizeOrderBy(orderBy string) string {
	switch orderBy {
	case OrderByFileName, OrderByFileSize, OrderByStatus:
		return orderBy
	default:
		return OrderByCreatedAt
	}
}

// ExportFilter narrows the export result set. Zero values mean no filter;
// an empty OwnerID exports every owner (admin export). Both date bounds are
// inclusive on created_at.
type ExportFilter struct {
	OwnerID   string
	Status    string
	StartDate time.Time
	EndDate   time.Time
}

// validateForCreate rejects a record missing any column a new row must
// carry. Fields are checked in a fixed order so the first gap is the one
// reported.
func validateForCreate(r Resume) error {
	switch {
	case r.FileName == "":
		return &MissingFieldError{Field: "file_name"}
	case r.FileType == "":
		return &MissingFieldError{Field: "file_type"}
	case r.FileSize <= 0:
		return &MissingFieldError{Field: "file_size"}
	case len(r.ParsedData) == 0:
		return &MissingFieldError{Field: "parsed_data"}
	case r.RawText == "":
		return &MissingFieldError{Field: "raw_text"}
	}
	return nil
}

// Repo defines persistence for resume records.
type Repo interface {
	Create(ctx context.Context, r Resume) error
	GetByID(ctx context.Context, id string) (Resume, error)
	ListByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]Resume, error)
	// Update rewrites the mutable columns (raw_text, parsed_data, status,
	// file metadata) and bumps updated_at.
	Update(ctx context.Context, r Resume) error
	Delete(ctx context.Context, id string) error
	// ListForExport returns resumes matching the filter, newest-first.
	ListForExport(ctx context.Context, filter ExportFilter) ([]Resume, error)
	// ListExpired returns resumes created before the cutoff, whether or not
	// a stored file remains.
	ListExpired(ctx context.Context, cutoff time.Time) ([]Resume, error)
}
