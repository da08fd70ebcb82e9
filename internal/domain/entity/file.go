package entity

import "time"

// Uploader values for project files
const (
	FileUploadedByAdmin  = "admin"
	FileUploadedByClient = "client"
)

// ProjectFile is stored file metadata; the bytes themselves live outside
// this system. Clients are only notified about admin-uploaded public files.
type ProjectFile struct {
	ID         int64
	ProjectID  int64
	FileName   string
	FilePath   string
	FileSize   int64
	UploadedBy string
	IsPublic   bool
	CreatedAt  time.Time
}
