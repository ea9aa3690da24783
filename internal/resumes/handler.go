package resumes

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yel-hadr/resume-parser/internal/extract"
	"github.com/yel-hadr/resume-parser/internal/shared/server/middleware"
	"github.com/yel-hadr/resume-parser/internal/shared/server/respond"
)

// multipartOverhead is the body allowance above the file size ceiling for
// multipart boundaries and part headers.
const multipartOverhead = 1 << 20

const exportDateLayout = "2006-01-02"

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.upload)
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/export", h.export)
	rg.GET("/resumes/:id", h.get)
	rg.DELETE("/resumes/:id", h.remove)
	rg.POST("/resumes/:id/reparse", h.reparse)
}

func (h *Handler) upload(c *gin.Context) {
	ownerID := middleware.OwnerIDFromContext(c)

	// The service enforces the file size ceiling; the reader cap only guards
	// against unbounded request bodies.
	limit := h.Svc.Config.MaxFileSize + multipartOverhead
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", ErrFileTooLarge.Error())
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", ErrNoFile.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file")
		return
	}
	defer file.Close()

	declaredMIME := fileHeader.Header.Get("Content-Type")
	res, err := h.Svc.Upload(c.Request.Context(), ownerID, fileHeader.Filename, declaredMIME, file)
	if err != nil {
		h.writeError(c, err)
		return
	}

	respond.Success(c, http.StatusCreated, res)
}

func (h *Handler) get(c *gin.Context) {
	ownerID := middleware.OwnerIDFromContext(c)
	isAdmin := middleware.IsAdminFromContext(c)
	c.Set("resumeId", c.Param("id"))

	res, err := h.Svc.Get(c.Request.Context(), ownerID, isAdmin, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, res)
}

func (h *Handler) list(c *gin.Context) {
	ownerID := middleware.OwnerIDFromContext(c)

	perPage := queryInt(c, "perPage", 20)
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}

	opts := ListOptions{
		Limit:   perPage,
		Offset:  (page - 1) * perPage,
		OrderBy: c.Query("orderBy"),
		Asc:     strings.EqualFold(c.Query("order"), "asc"),
		Status:  c.Query("status"),
	}

	items, err := h.Svc.List(c.Request.Context(), ownerID, opts)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if items == nil {
		items = []ListItem{}
	}

	respond.OK(c, gin.H{
		"items":   items,
		"page":    page,
		"perPage": perPage,
	})
}

func (h *Handler) remove(c *gin.Context) {
	ownerID := middleware.OwnerIDFromContext(c)
	isAdmin := middleware.IsAdminFromContext(c)
	c.Set("resumeId", c.Param("id"))

	if err := h.Svc.Delete(c.Request.Context(), ownerID, isAdmin, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"deleted": true})
}

func (h *Handler) reparse(c *gin.Context) {
	ownerID := middleware.OwnerIDFromContext(c)
	isAdmin := middleware.IsAdminFromContext(c)
	c.Set("resumeId", c.Param("id"))

	res, err := h.Svc.Reparse(c.Request.Context(), ownerID, isAdmin, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, res)
}

func (h *Handler) export(c *gin.Context) {
	ownerID := middleware.OwnerIDFromContext(c)
	isAdmin := middleware.IsAdminFromContext(c)

	filter := ExportFilter{Status: c.Query("status")}
	if raw := c.Query("startDate"); raw != "" {
		start, err := time.Parse(exportDateLayout, raw)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid startDate, expected YYYY-MM-DD")
			return
		}
		filter.StartDate = start
	}
	if raw := c.Query("endDate"); raw != "" {
		end, err := time.Parse(exportDateLayout, raw)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid endDate, expected YYYY-MM-DD")
			return
		}
		// The end date covers its whole day.
		filter.EndDate = end.Add(24*time.Hour - time.Nanosecond)
	}

	csvData, err := h.Svc.ExportCSV(c.Request.Context(), ownerID, isAdmin, filter)
	if err != nil {
		h.writeError(c, err)
		return
	}

	fileName := fmt.Sprintf("resumes-export-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", csvData)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var missing *MissingFieldError
	switch {
	case errors.Is(err, ErrAuthenticationRequired):
		respond.Error(c, http.StatusUnauthorized, "unauthorized", ErrAuthenticationRequired.Error())
	case errors.Is(err, ErrAuthorizationDenied):
		respond.Error(c, http.StatusForbidden, "forbidden", ErrAuthorizationDenied.Error())
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", ErrNotFound.Error())
	case errors.Is(err, ErrNoFile), errors.Is(err, ErrInvalidFileType):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, ErrFileTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", err.Error())
	case errors.Is(err, extract.ErrUnsupportedType), errors.Is(err, extract.ErrExtractionFailed), errors.Is(err, extract.ErrNoText):
		respond.Error(c, http.StatusUnprocessableEntity, "extraction_error", "Could not extract text from the file.")
	case errors.Is(err, ErrInvalidJSON), errors.As(err, &missing):
		respond.Error(c, http.StatusBadGateway, "parsing_error", err.Error())
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Processing failed.")
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if raw := c.Query(key); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			return parsed
		}
	}
	return fallback
}
