package domain

import "time"

type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

type Document struct {
	ID          string         `json:"id"`
	TenantID    string         `json:"tenant_id"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	Text        string         `json:"-"`
	Size        int64          `json:"size"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Chunk is a contiguous slice of its document's extracted text. Immutable
// once written; removed only when the owning document is deleted.
type Chunk struct {
	ID         string `json:"id"`
	TenantID   string `json:"tenant_id"`
	DocumentID string `json:"document_id"`
	Index      int    `json:"index"`
	Page       *int   `json:"page,omitempty"`
	Text       string `json:"text"`
}

// Section is one extracted unit of a source file. PDF extraction yields one
// section per page; plain text, markdown and spreadsheets yield a single
// section without a page number.
type Section struct {
	Page *int
	Text string
}
