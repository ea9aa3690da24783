package resumes_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yel-hadr/resume-parser/internal/llm"
	"github.com/yel-hadr/resume-parser/internal/resumes"
	"github.com/yel-hadr/resume-parser/internal/shared/auth"
	"github.com/yel-hadr/resume-parser/internal/shared/config"
	"github.com/yel-hadr/resume-parser/internal/shared/server"
)

type stubStore struct {
	objects map[string][]byte
}

func (s *stubStore) Save(ctx context.Context, ownerID, fileName string, r io.Reader) (string, int64, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	key := ownerID + "/" + fileName
	s.objects[key] = data
	return key, int64(len(data)), "application/octet-stream", nil
}

func (s *stubStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *stubStore) Delete(ctx context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

type stubLLM struct {
	response string
	err      error
}

func (s *stubLLM) Complete(ctx context.Context, p llm.Prompt) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubLLM) TestKey(ctx context.Context) error { return s.err }

func newTestRouter(t *testing.T, client llm.CompletionClient) (http.Handler, *resumes.MemoryRepo) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	repo := resumes.NewMemoryRepo()
	store := &stubStore{objects: make(map[string][]byte)}
	svc := resumes.NewService(repo, store, client, &resumes.Hooks{}, resumes.ServiceConfig{
		MaxFileSize:    1 << 20,
		AllowedTypes:   []string{"pdf", "docx"},
		MaxPromptChars: 24000,
		RetainUploads:  true,
	})

	cfg := config.Config{
		Env:          "dev",
		RequireLogin: true,
	}
	router := server.NewRouter(server.RouterDeps{
		Config:        cfg,
		ResumeHandler: resumes.NewHandler(svc),
	})
	return router, repo
}

func bearerToken(t *testing.T, sub string, admin bool) string {
	t.Helper()
	token, err := auth.SignJWT(auth.Claims{
		Sub:   sub,
		Admin: admin,
		Exp:   time.Now().Add(time.Hour).Unix(),
		Iat:   time.Now().Unix(),
	})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + token
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func doRequest(t *testing.T, router http.Handler, method, path, token string, body io.Reader, contentType string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
		}
	}
	return rec, env
}

func multipartBody(t *testing.T, fieldName, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(fieldName, fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func seedRecord(t *testing.T, repo *resumes.MemoryRepo, id, ownerID string) {
	t.Helper()
	now := time.Now().UTC()
	err := repo.Create(context.Background(), resumes.Resume{
		ID:         id,
		OwnerID:    ownerID,
		FileName:   "resume.pdf",
		FileType:   "pdf",
		FileSize:   100,
		RawText:    "raw text",
		ParsedData: json.RawMessage(`{"personal_info":{"name":"Jane"},"education":[],"experience":[],"skills":{}}`),
		Status:     resumes.StatusCompleted,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func docxPayload(t *testing.T, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fw, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	doc := `<?xml version="1.0"?><w:document xmlns:w="ns"><w:body><w:p><w:r><w:t>` +
		text + `</w:t></w:r></w:p></w:body></w:document>`
	if _, err := fw.Write([]byte(doc)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestUploadEndpoint_Success(t *testing.T) {
	client := &stubLLM{response: `{"personal_info":{"name":"Jane Doe"},"education":[],"experience":[],"skills":[]}`}
	router, repo := newTestRouter(t, client)

	body, contentType := multipartBody(t, "file", "resume.docx", docxPayload(t, "Jane Doe, Engineer"))
	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/resumes", bearerToken(t, "user-1", false), body, contentType)

	if rec.Code != http.StatusCreated || !env.Success {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	var created resumes.Resume
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if created.Status != resumes.StatusCompleted {
		t.Errorf("status = %q", created.Status)
	}
	if !strings.Contains(string(created.ParsedData), "Jane Doe") {
		t.Errorf("parsed data = %s", created.ParsedData)
	}

	if _, err := repo.GetByID(context.Background(), created.ID); err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
}

func TestUploadEndpoint_RequiresAuth(t *testing.T) {
	router, _ := newTestRouter(t, &stubLLM{})

	body, contentType := multipartBody(t, "file", "resume.pdf", []byte("%PDF-1.4"))
	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/resumes", "", body, contentType)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if env.Success {
		t.Fatal("expected failure envelope")
	}
}

func TestUploadEndpoint_RejectsWrongFieldName(t *testing.T) {
	router, _ := newTestRouter(t, &stubLLM{})

	body, contentType := multipartBody(t, "document", "resume.pdf", []byte("%PDF-1.4"))
	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/resumes", bearerToken(t, "user-1", false), body, contentType)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if env.Error == "" {
		t.Fatal("expected error message")
	}
}

func TestUploadEndpoint_RejectsBadType(t *testing.T) {
	router, _ := newTestRouter(t, &stubLLM{})

	body, contentType := multipartBody(t, "file", "resume.txt", []byte("plain text"))
	rec, _ := doRequest(t, router, http.MethodPost, "/api/v1/resumes", bearerToken(t, "user-1", false), body, contentType)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGetEndpoint_OwnerAndStranger(t *testing.T) {
	router, repo := newTestRouter(t, &stubLLM{})
	seedRecord(t, repo, "res-1", "user-1")

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/resumes/res-1", bearerToken(t, "user-1", false), nil, "")
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("owner read: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/api/v1/resumes/res-1", bearerToken(t, "user-2", false), nil, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("stranger read: status=%d", rec.Code)
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/api/v1/resumes/res-1", bearerToken(t, "admin", true), nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin read: status=%d", rec.Code)
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/api/v1/resumes/missing", bearerToken(t, "user-1", false), nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing read: status=%d", rec.Code)
	}
}

func TestListEndpoint_Paginates(t *testing.T) {
	router, repo := newTestRouter(t, &stubLLM{})
	seedRecord(t, repo, "res-1", "user-1")
	seedRecord(t, repo, "res-2", "user-1")
	seedRecord(t, repo, "res-3", "user-2")

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/resumes?perPage=1&page=2", bearerToken(t, "user-1", false), nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var payload struct {
		Items   []resumes.ListItem `json:"items"`
		Page    int                `json:"page"`
		PerPage int                `json:"perPage"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(payload.Items) != 1 || payload.Page != 2 || payload.PerPage != 1 {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestDeleteEndpoint(t *testing.T) {
	router, repo := newTestRouter(t, &stubLLM{})
	seedRecord(t, repo, "res-1", "user-1")

	rec, _ := doRequest(t, router, http.MethodDelete, "/api/v1/resumes/res-1", bearerToken(t, "user-2", false), nil, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("stranger delete: status=%d", rec.Code)
	}

	rec, env := doRequest(t, router, http.MethodDelete, "/api/v1/resumes/res-1", bearerToken(t, "user-1", false), nil, "")
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("owner delete: status=%d body=%s", rec.Code, rec.Body.String())
	}

	if _, err := repo.GetByID(context.Background(), "res-1"); !errors.Is(err, resumes.ErrNotFound) {
		t.Fatal("row should be gone")
	}
}

func TestReparseEndpoint(t *testing.T) {
	client := &stubLLM{response: `{"personal_info":{"name":"Updated"},"education":[],"experience":[],"skills":{}}`}
	router, repo := newTestRouter(t, client)
	seedRecord(t, repo, "res-1", "user-1")

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/resumes/res-1/reparse", bearerToken(t, "user-1", false), nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(string(env.Data), "Updated") {
		t.Fatalf("data = %s", env.Data)
	}
}

func TestExportEndpoint_ReturnsCSVAttachment(t *testing.T) {
	router, repo := newTestRouter(t, &stubLLM{})
	seedRecord(t, repo, "res-1", "user-1")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes/export", nil)
	req.Header.Set("Authorization", bearerToken(t, "user-1", false))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/csv") {
		t.Fatalf("content type = %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "attachment") || !strings.Contains(got, "resumes-export-") {
		t.Fatalf("content disposition = %q", got)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "res-1") || !strings.Contains(body, "Jane") {
		t.Fatalf("csv body = %q", body)
	}
}

func TestExportEndpoint_DateFilter(t *testing.T) {
	router, repo := newTestRouter(t, &stubLLM{})
	seedRecord(t, repo, "res-1", "user-1")

	rec, _ := doRequest(t, router, http.MethodGet, "/api/v1/resumes/export?startDate=2099-01-01", bearerToken(t, "user-1", false), nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "res-1") {
		t.Error("record before startDate should be excluded")
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/api/v1/resumes/export?endDate=not-a-date", bearerToken(t, "user-1", false), nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid date: status = %d", rec.Code)
	}
}

func TestUploadEndpoint_RejectsOversizedFile(t *testing.T) {
	router, _ := newTestRouter(t, &stubLLM{})

	payload := bytes.Repeat([]byte("a"), (1<<20)+1)
	body, contentType := multipartBody(t, "file", "resume.pdf", payload)
	rec, _ := doRequest(t, router, http.MethodPost, "/api/v1/resumes", bearerToken(t, "user-1", false), body, contentType)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &stubLLM{})
	rec, env := doRequest(t, router, http.MethodGet, "/health", "", nil, "")
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &stubLLM{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "resume_parse_started_total") {
		t.Fatal("expected parse counter in metrics output")
	}
}
