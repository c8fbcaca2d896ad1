package model

import "time"

// FileInfo describes a stored upload. The content itself lives in the blob store.
type FileInfo struct {
	ID          string    `json:"file_id"`
	Filename    string    `json:"filename"`
	Length      int64     `json:"length"`
	UploadDate  time.Time `json:"uploadDate"`
	ContentType string    `json:"contentType"`
	Description string    `json:"description"`
}
