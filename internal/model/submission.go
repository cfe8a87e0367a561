package model

import "time"

// AnonymousUploader marks submissions made without an authenticated session.
const AnonymousUploader = "anonymous"

// Submission represents one uploaded pitch deck plus its metadata.
// Rows are written once on upload and never mutated.
type Submission struct {
	ID               string    `json:"id"`
	UploaderIdentity string    `json:"uploaderIdentity"`
	StoragePath      string    `json:"storagePath"`
	CreatedAt        time.Time `json:"createdAt"`
}

// UploadDeckResponse is returned after a successful deck upload.
type UploadDeckResponse struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	StoragePath string    `json:"storagePath"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}
