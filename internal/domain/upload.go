package domain

import "time"

// Upload is a stored file (campaign images, receipts, press material).
// Name is the sanitized original filename; StoredName is the on-disk name.
type Upload struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	StoredName  string    `json:"stored_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	SHA256      string    `json:"sha256"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}
