package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/pitchroast/api/internal/client"
	"github.com/pitchroast/api/internal/model"
)

// MaxDeckSize is the upload ceiling for pitch decks.
const MaxDeckSize = 10 << 20 // 10 MiB

const deckContentType = "application/pdf"

var (
	// ErrInvalidFileType means the upload was not declared as a PDF.
	ErrInvalidFileType = errors.New("only PDF files are accepted")
	// ErrFileTooLarge means the upload exceeds MaxDeckSize.
	ErrFileTooLarge = errors.New("file exceeds the 10MB limit")
)

// SubmissionStore is the persistence surface the upload pipeline needs.
type SubmissionStore interface {
	InsertSubmission(ctx context.Context, sub *model.Submission) error
	GetSubmission(ctx context.Context, id string) (*model.Submission, error)
}

// UploadService handles pitch-deck intake: validation, blob storage and
// the submission record.
type UploadService struct {
	storage client.StorageClient
	store   SubmissionStore
}

// NewUploadService creates a new upload service.
func NewUploadService(storage client.StorageClient, store SubmissionStore) *UploadService {
	return &UploadService{
		storage: storage,
		store:   store,
	}
}

// UploadDeck validates and stores a pitch deck, then records the submission.
// Validation failures happen before any storage or database call. A storage
// failure aborts before the database insert; there is no cross-rollback.
func (s *UploadService) UploadDeck(ctx context.Context, identity, fileName, contentType string, size int64, file io.Reader) (*model.UploadDeckResponse, error) {
	if contentType != deckContentType {
		return nil, ErrInvalidFileType
	}
	if size > MaxDeckSize {
		return nil, ErrFileTooLarge
	}
	if identity == "" {
		identity = model.AnonymousUploader
	}

	submissionID := uuid.New().String()
	key := fmt.Sprintf("%s-%s", uuid.New().String(), fileName)

	if s.storage != nil {
		if err := s.storage.Upload(ctx, key, file, contentType); err != nil {
			return nil, fmt.Errorf("failed to store deck: %w", err)
		}
	} else {
		log.Printf("[Upload] storage not configured, skipping object write for %s", key)
	}

	sub := &model.Submission{
		ID:               submissionID,
		UploaderIdentity: identity,
		StoragePath:      key,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.store.InsertSubmission(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to record submission: %w", err)
	}

	return &model.UploadDeckResponse{
		ID:          sub.ID,
		FileName:    fileName,
		StoragePath: key,
		Size:        size,
		CreatedAt:   sub.CreatedAt,
	}, nil
}

// RemoveDeck deletes the stored object for a submission. The submission row
// stays; uploads are never deleted from the database.
func (s *UploadService) RemoveDeck(ctx context.Context, submissionID string) error {
	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return err
	}

	if s.storage == nil {
		return nil
	}
	return s.storage.Delete(ctx, sub.StoragePath)
}
