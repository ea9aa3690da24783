package resumes

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yel-hadr/resume-parser/internal/extract"
	"github.com/yel-hadr/resume-parser/internal/llm"
	"github.com/yel-hadr/resume-parser/internal/shared/metrics"
	"github.com/yel-hadr/resume-parser/internal/shared/storage/object"
	"github.com/yel-hadr/resume-parser/internal/shared/telemetry"
)

// extensionMIME maps allowed extensions to the declared MIME types
// accepted for them. Browsers are inconsistent, so each extension admits
// a small set of spellings plus the generic octet-stream fallback.
var extensionMIME = map[string][]string{
	"pdf": {
		"application/pdf",
		"application/x-pdf",
	},
	"docx": {
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/zip",
	},
}

// ServiceConfig carries the pipeline knobs the service needs.
type ServiceConfig struct {
	MaxFileSize    int64
	AllowedTypes   []string
	MaxPromptChars int
	RetainUploads  bool
}

// Service runs the ingestion pipeline and owns resume CRUD.
type Service struct {
	Repo   Repo
	Store  object.ObjectStore
	LLM    llm.CompletionClient
	Hooks  *Hooks
	Config ServiceConfig

	now func() time.Time
}

// NewService constructs the resume service.
func NewService(repo Repo, store object.ObjectStore, client llm.CompletionClient, hooks *Hooks, cfg ServiceConfig) *Service {
	if hooks == nil {
		hooks = &Hooks{}
	}
	return &Service{
		Repo:   repo,
		Store:  store,
		LLM:    client,
		Hooks:  hooks,
		Config: cfg,
		now:    time.Now,
	}
}

// Upload runs the full ingestion pipeline: validate, store, extract,
// complete, validate output, persist. A failure at any stage after the
// file is written removes it again; no record is persisted for a failed
// run.
func (s *Service) Upload(ctx context.Context, ownerID, fileName, declaredMIME string, file io.Reader) (Resume, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Resume{}, ErrAuthenticationRequired
	}
	if fileName == "" || file == nil {
		return Resume{}, ErrNoFile
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if !s.typeAllowed(ext) {
		return Resume{}, ErrInvalidFileType
	}
	if !mimeMatches(ext, declaredMIME) {
		return Resume{}, ErrInvalidFileType
	}

	data, err := io.ReadAll(io.LimitReader(file, s.Config.MaxFileSize+1))
	if err != nil {
		return Resume{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return Resume{}, ErrNoFile
	}
	if int64(len(data)) > s.Config.MaxFileSize {
		return Resume{}, ErrFileTooLarge
	}

	metrics.IncParseStarted()
	start := s.now()

	storageKey, size, _, err := s.Store.Save(ctx, ownerID, fileName, bytes.NewReader(data))
	if err != nil {
		metrics.IncParseFailed()
		return Resume{}, fmt.Errorf("store upload: %w", err)
	}

	res, err := s.runParse(ctx, ownerID, fileName, ext, storageKey, size, data)
	metrics.ObserveParseDurationMs(float64(s.now().Sub(start)) / float64(time.Millisecond))
	if err != nil {
		metrics.IncParseFailed()
		s.rollbackFile(ctx, storageKey)
		return Resume{}, err
	}

	metrics.IncParseCompleted()
	s.Hooks.Emit(ctx, EventParsed, res)
	return res, nil
}

func (s *Service) runParse(ctx context.Context, ownerID, fileName, ext, storageKey string, size int64, data []byte) (Resume, error) {
	text, err := extract.Extract(ctx, data, ext)
	if err != nil {
		return Resume{}, err
	}

	parsed, err := s.complete(ctx, text)
	if err != nil {
		return Resume{}, err
	}

	now := s.now().UTC()
	res := Resume{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		FileName:   fileName,
		FileType:   ext,
		FileSize:   size,
		FilePath:   storageKey,
		RawText:    text,
		ParsedData: parsed,
		Status:     StatusCompleted,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if !s.Config.RetainUploads {
		s.rollbackFile(ctx, storageKey)
		res.FilePath = ""
	}

	if err := s.Repo.Create(ctx, res); err != nil {
		return Resume{}, fmt.Errorf("persist resume: %w", err)
	}
	return res, nil
}

func (s *Service) complete(ctx context.Context, text string) ([]byte, error) {
	if s.Config.MaxPromptChars > 0 && len(text) > s.Config.MaxPromptChars {
		telemetry.Info("prompt.truncated", map[string]any{
			"text_chars": len(text),
			"max_chars":  s.Config.MaxPromptChars,
		})
	}
	prompt := llm.BuildParsePrompt(text, s.Config.MaxPromptChars)
	content, err := s.LLM.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	parsed, err := ValidateParsedOutput(content)
	if err != nil {
		return nil, err
	}
	return parsed, nil
}

// Get fetches a resume after an ownership check.
func (s *Service) Get(ctx context.Context, ownerID string, isAdmin bool, id string) (Resume, error) {
	res, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Resume{}, err
	}
	if err := authorize(res, ownerID, isAdmin); err != nil {
		return Resume{}, err
	}
	return res, nil
}

// List returns a page of the caller's resumes.
func (s *Service) List(ctx context.Context, ownerID string, opts ListOptions) ([]ListItem, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrAuthenticationRequired
	}
	rs, err := s.Repo.ListByOwner(ctx, ownerID, opts)
	if err != nil {
		return nil, err
	}
	items := make([]ListItem, 0, len(rs))
	for _, r := range rs {
		items = append(items, r.ToListItem())
	}
	return items, nil
}

// Delete removes the stored file (ignoring a missing file) then the row.
func (s *Service) Delete(ctx context.Context, ownerID string, isAdmin bool, id string) error {
	res, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(res, ownerID, isAdmin); err != nil {
		return err
	}

	if res.FilePath != "" {
		if err := s.Store.Delete(ctx, res.FilePath); err != nil {
			return fmt.Errorf("delete stored file: %w", err)
		}
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.Hooks.Emit(ctx, EventDeleted, res)
	return nil
}

// Reparse reruns the completion stage against the stored raw text and
// replaces the structured data. When the raw text is gone but the file is
// retained, the text is re-extracted first. A failed reparse marks the
// record failed and keeps the previous structured data.
func (s *Service) Reparse(ctx context.Context, ownerID string, isAdmin bool, id string) (Resume, error) {
	res, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Resume{}, err
	}
	if err := authorize(res, ownerID, isAdmin); err != nil {
		return Resume{}, err
	}

	text := res.RawText
	if text == "" {
		if res.FilePath == "" {
			return Resume{}, fmt.Errorf("resume %s has no raw text and no stored file", id)
		}
		text, err = s.reExtract(ctx, res)
		if err != nil {
			return Resume{}, err
		}
		res.RawText = text
	}

	parsed, err := s.complete(ctx, text)
	if err != nil {
		res.Status = StatusFailed
		res.UpdatedAt = s.now().UTC()
		if updateErr := s.Repo.Update(ctx, res); updateErr != nil {
			telemetry.Error("resume.reparse.mark_failed", map[string]any{
				"resume_id": res.ID,
				"error":     updateErr.Error(),
			})
		}
		return Resume{}, err
	}

	res.ParsedData = parsed
	res.Status = StatusCompleted
	res.UpdatedAt = s.now().UTC()
	if err := s.Repo.Update(ctx, res); err != nil {
		return Resume{}, fmt.Errorf("persist reparse: %w", err)
	}

	s.Hooks.Emit(ctx, EventReparsed, res)
	return res, nil
}

// ExportCSV renders resumes as CSV, optionally filtered by status and
// creation-date range. Admins export every record; other principals export
// only their own, whatever OwnerID the filter carries.
func (s *Service) ExportCSV(ctx context.Context, ownerID string, isAdmin bool, filter ExportFilter) ([]byte, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrAuthenticationRequired
	}
	filter.OwnerID = ownerID
	if isAdmin {
		filter.OwnerID = ""
	}
	rs, err := s.Repo.ListForExport(ctx, filter)
	if err != nil {
		return nil, err
	}
	return WriteCSV(rs)
}

func (s *Service) reExtract(ctx context.Context, res Resume) (string, error) {
	rc, err := s.Store.Open(ctx, res.FilePath)
	if err != nil {
		return "", fmt.Errorf("open stored file: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read stored file: %w", err)
	}
	return extract.Extract(ctx, data, res.FileType)
}

func (s *Service) rollbackFile(ctx context.Context, storageKey string) {
	// Rollback must not be canceled by a dead request context.
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	if err := s.Store.Delete(ctx, storageKey); err != nil {
		telemetry.Error("resume.rollback_file", map[string]any{
			"storage_key": storageKey,
			"error":       err.Error(),
		})
	}
}

func (s *Service) typeAllowed(ext string) bool {
	for _, allowed := range s.Config.AllowedTypes {
		if ext == allowed {
			return true
		}
	}
	return false
}

func mimeMatches(ext, declared string) bool {
	declared = strings.ToLower(strings.TrimSpace(strings.Split(declared, ";")[0]))
	if declared == "" || declared == "application/octet-stream" {
		return true
	}
	for _, accepted := range extensionMIME[ext] {
		if declared == accepted {
			return true
		}
	}
	return false
}

func authorize(res Resume, ownerID string, isAdmin bool) error {
	if strings.TrimSpace(ownerID) == "" {
		return ErrAuthenticationRequired
	}
	if isAdmin || res.OwnerID == ownerID {
		return nil
	}
	return ErrAuthorizationDenied
}
