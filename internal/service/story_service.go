package service

import (
	"context"
	"strings"

	"github.com/pitchroast/api/internal/model"
)

// StoryStore is the persistence surface for rejection stories and signups.
type StoryStore interface {
	ListStories(ctx context.Context, limit int) ([]model.Story, error)
	InsertStory(ctx context.Context, author, story string) (*model.Story, error)
	LikeStory(ctx context.Context, id int64) (int, error)
	InsertSignup(ctx context.Context, email string) error
}

// StoryService handles the Ego Dump rejection stories and the
// investor-feedback signup list.
type StoryService struct {
	store StoryStore
}

// NewStoryService creates a new story service.
func NewStoryService(st StoryStore) *StoryService {
	return &StoryService{store: st}
}

// List returns stories, newest first.
func (s *StoryService) List(ctx context.Context, limit int) ([]model.Story, error) {
	return s.store.ListStories(ctx, limit)
}

// Create posts a new story. A blank author becomes Anonymous.
func (s *StoryService) Create(ctx context.Context, req *model.CreateStoryRequest) (*model.Story, error) {
	author := strings.TrimSpace(req.Author)
	if author == "" {
		author = "Anonymous"
	}
	return s.store.InsertStory(ctx, author, strings.TrimSpace(req.Story))
}

// Like increments a story's like counter and returns the new count.
func (s *StoryService) Like(ctx context.Context, id int64) (int, error) {
	return s.store.LikeStory(ctx, id)
}

// Signup records an email for the investor-feedback list.
func (s *StoryService) Signup(ctx context.Context, email string) error {
	return s.store.InsertSignup(ctx, strings.ToLower(strings.TrimSpace(email)))
}
