package resumes

import (
	"encoding/json"
	"time"
)

// Parse lifecycle states.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Resume is a stored resume record with its extracted text and the
// structured data returned by the completion API.
type Resume struct {
	ID         string          `json:"id"`
	OwnerID    string          `json:"ownerId"`
	FileName   string          `json:"fileName"`
	FileType   string          `json:"fileType"`
	FileSize   int64           `json:"fileSize"`
	FilePath   string          `json:"-"`
	FileURL    string          `json:"fileUrl,omitempty"`
	RawText    string          `json:"-"`
	ParsedData json.RawMessage `json:"parsedData,omitempty"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// ListItem is the trimmed projection returned by list endpoints. Raw text
// and parsed payloads stay out of listings to keep responses small.
type ListItem struct {
	ID        string    `json:"id"`
	FileName  string    `json:"fileName"`
	FileType  string    `json:"fileType"`
	FileSize  int64     `json:"fileSize"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToListItem projects a resume for listing.
func (r Resume) ToListItem() ListItem {
	return ListItem{
		ID:        r.ID,
		FileName:  r.FileName,
		FileType:  r.FileType,
		FileSize:  r.FileSize,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
}
