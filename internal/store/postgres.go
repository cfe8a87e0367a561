package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/pitchroast/api/internal/model"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned on unique-constraint violations.
	ErrDuplicate = errors.New("already exists")
)

// uniqueViolation is the Postgres error code for unique-constraint violations.
const uniqueViolation = "23505"

// Store persists submissions, roasts, stories, signups and users in Postgres.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres with the given DSN.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// New constructs a Postgres-backed store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Ping verifies connectivity to Postgres.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InsertSubmission persists a Submission row.
func (s *Store) InsertSubmission(ctx context.Context, sub *model.Submission) error {
	q := `
		INSERT INTO submissions (id, uploader_identity, storage_path, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, q, sub.ID, sub.UploaderIdentity, sub.StoragePath, sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// GetSubmission fetches a Submission by id.
func (s *Store) GetSubmission(ctx context.Context, id string) (*model.Submission, error) {
	q := `SELECT id, uploader_identity, storage_path, created_at FROM submissions WHERE id = $1`

	var sub model.Submission
	err := s.db.QueryRowContext(ctx, q, id).Scan(&sub.ID, &sub.UploaderIdentity, &sub.StoragePath, &sub.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return &sub, nil
}

// InsertRoast persists one structured roast for a submission and returns the
// new row id. Retries produce additional rows; existing roasts are never
// overwritten.
func (s *Store) InsertRoast(ctx context.Context, submissionID string, content model.RoastResult) (string, error) {
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return "", fmt.Errorf("marshal roast content: %w", err)
	}

	id := uuid.New().String()
	q := `
		INSERT INTO roasts (id, submission_id, content, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := s.db.ExecContext(ctx, q, id, submissionID, contentJSON, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("insert roast: %w", err)
	}
	return id, nil
}

// GetLatestRoast fetches the most recent roast for a submission.
func (s *Store) GetLatestRoast(ctx context.Context, submissionID string) (*model.StoredRoast, error) {
	q := `
		SELECT id, submission_id, content, created_at
		FROM roasts
		WHERE submission_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var (
		roast       model.StoredRoast
		contentJSON []byte
	)
	err := s.db.QueryRowContext(ctx, q, submissionID).Scan(&roast.ID, &roast.SubmissionID, &contentJSON, &roast.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get roast: %w", err)
	}

	if err := json.Unmarshal(contentJSON, &roast.Content); err != nil {
		return nil, fmt.Errorf("unmarshal roast content: %w", err)
	}
	return &roast, nil
}

// ListStories returns rejection stories, newest first.
func (s *Store) ListStories(ctx context.Context, limit int) ([]model.Story, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT id, author, story, likes, created_at FROM stories ORDER BY created_at DESC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	defer rows.Close()

	stories := make([]model.Story, 0, limit)
	for rows.Next() {
		var st model.Story
		if err := rows.Scan(&st.ID, &st.Author, &st.Story, &st.Likes, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan story: %w", err)
		}
		stories = append(stories, st)
	}
	return stories, rows.Err()
}

// InsertStory persists a new rejection story and returns it with its id.
func (s *Store) InsertStory(ctx context.Context, author, story string) (*model.Story, error) {
	q := `
		INSERT INTO stories (author, story, likes, created_at)
		VALUES ($1, $2, 0, $3)
		RETURNING id
	`
	st := model.Story{
		Author:    author,
		Story:     story,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.QueryRowContext(ctx, q, st.Author, st.Story, st.CreatedAt).Scan(&st.ID); err != nil {
		return nil, fmt.Errorf("insert story: %w", err)
	}
	return &st, nil
}

// LikeStory increments a story's like counter and returns the new count.
func (s *Store) LikeStory(ctx context.Context, id int64) (int, error) {
	q := `UPDATE stories SET likes = likes + 1 WHERE id = $1 RETURNING likes`

	var likes int
	err := s.db.QueryRowContext(ctx, q, id).Scan(&likes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("like story: %w", err)
	}
	return likes, nil
}

// InsertSignup records an email for the investor-feedback list.
// Repeat signups are not an error.
func (s *Store) InsertSignup(ctx context.Context, email string) error {
	q := `
		INSERT INTO signups (email, created_at)
		VALUES ($1, $2)
		ON CONFLICT (email) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, q, email, time.Now().UTC()); err != nil {
		return fmt.Errorf("insert signup: %w", err)
	}
	return nil
}

// CreateUser persists a new account.
func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	q := `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, q, u.ID, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUserByEmail fetches an account by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	q := `SELECT id, email, password_hash, created_at FROM users WHERE email = $1`

	var u model.User
	err := s.db.QueryRowContext(ctx, q, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
