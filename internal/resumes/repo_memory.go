package resumes

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo for local development and tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]Resume
}

// NewMemoryRepo constructs an empty in-memory repo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]Resume)}
}

// Create stores a new resume after checking the required fields.
func (m *MemoryRepo) Create(ctx context.Context, r Resume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateForCreate(r); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[r.ID] = r
	return nil
}

// GetByID fetches a resume by ID.
func (m *MemoryRepo) GetByID(ctx context.Context, id string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.items[id]
	if !ok {
		return Resume{}, ErrNotFound
	}
	return r, nil
}

// ListByOwner lists resumes for an owner with pagination, ordering, and an
// optional status filter.
func (m *MemoryRepo) ListByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	var out []Resume
	for _, r := range m.items {
		if r.OwnerID != ownerID {
			continue
		}
		if opts.Status != "" && r.Status != opts.Status {
			continue
		}
		out = append(out, r)
	}
	m.mu.RUnlock()

	sortResumes(out, normalizeOrderBy(opts.OrderBy), opts.Asc)

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
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

// Update rewrites an existing resume.
func (m *MemoryRepo) Update(ctx context.Context, r Resume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[r.ID]; !ok {
		return ErrNotFound
	}
	m.items[r.ID] = r
	return nil
}

// Delete removes a resume.
func (m *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

// ListForExport returns resumes matching the filter, newest-first.
func (m *MemoryRepo) ListForExport(ctx context.Context, filter ExportFilter) ([]Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Resume
	for _, r := range m.items {
		if filter.OwnerID != "" && r.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if !filter.StartDate.IsZero() && r.CreatedAt.Before(filter.StartDate) {
			continue
		}
		if !filter.EndDate.IsZero() && r.CreatedAt.After(filter.EndDate) {
			continue
		}
		out = append(out, r)
	}
	sortNewestFirst(out)
	return out, nil
}

// ListExpired returns resumes created before the cutoff, with or without a
// stored file.
func (m *MemoryRepo) ListExpired(ctx context.Context, cutoff time.Time) ([]Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Resume
	for _, r := range m.items {
		if r.CreatedAt.Before(cutoff) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func sortNewestFirst(rs []Resume) {
	sortResumes(rs, OrderByCreatedAt, false)
}

func sortResumes(rs []Resume, orderBy string, asc bool) {
	less := func(a, b Resume) bool {
		switch orderBy {
		case OrderByFileName:
			if a.FileName != b.FileName {
				return a.FileName < b.FileName
			}
		case OrderByFileSize:
			if a.FileSize != b.FileSize {
				return a.FileSize < b.FileSize
			}
		case OrderByStatus:
			if a.Status != b.Status {
				return a.Status < b.Status
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	}
	sort.Slice(rs, func(i, j int) bool {
		if asc {
			return less(rs[i], rs[j])
		}
		return less(rs[j], rs[i])
	})
}

var _ Repo = (*MemoryRepo)(nil)
