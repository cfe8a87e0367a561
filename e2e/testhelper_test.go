package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/pitchroast/api/internal/auth"
	"github.com/pitchroast/api/internal/client"
	"github.com/pitchroast/api/internal/handler"
	"github.com/pitchroast/api/internal/middleware"
	"github.com/pitchroast/api/internal/model"
	"github.com/pitchroast/api/internal/service"
	"github.com/pitchroast/api/internal/store"
)

const testJWTSecret = "test-secret-for-e2e"

// canned assistant output with all six section headings.
const stubRoastText = `Executive Summary: Reads like a fortune cookie with a cap table.
Pro Tip: Lead with traction, not adjectives.

Market Size: Another trillion-dollar TAM. Bold.
Tip: Bottom-up or it didn't happen.

Competitive Analysis: "No competitors" means no market or no research.

Go-to-Market Strategy: Hope is not a channel.
Tip: Pick one channel and prove it converts.

Financial Projections: The hockey stick has left the rink.

Team: Four visionaries, zero operators.
Pro Tip: Someone has to answer support tickets.`

// memStore is an in-memory stand-in for the Postgres store, satisfying
// every persistence interface the services need.
type memStore struct {
	mu          sync.Mutex
	submissions map[string]*model.Submission
	roasts      map[string][]*model.StoredRoast
	stories     []model.Story
	signups     map[string]bool
	users       map[string]*model.User
	nextStory   int64
}

func newMemStore() *memStore {
	return &memStore{
		submissions: make(map[string]*model.Submission),
		roasts:      make(map[string][]*model.StoredRoast),
		signups:     make(map[string]bool),
		users:       make(map[string]*model.User),
	}
}

func (m *memStore) InsertSubmission(ctx context.Context, sub *model.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions[sub.ID] = sub
	return nil
}

func (m *memStore) GetSubmission(ctx context.Context, id string) (*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.submissions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return sub, nil
}

func (m *memStore) InsertRoast(ctx context.Context, submissionID string, content model.RoastResult) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	roast := &model.StoredRoast{
		ID:           "roast-" + submissionID,
		SubmissionID: submissionID,
		Content:      content,
		CreatedAt:    time.Now().UTC(),
	}
	m.roasts[submissionID] = append(m.roasts[submissionID], roast)
	return roast.ID, nil
}

func (m *memStore) GetLatestRoast(ctx context.Context, submissionID string) (*model.StoredRoast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.roasts[submissionID]
	if len(list) == 0 {
		return nil, store.ErrNotFound
	}
	return list[len(list)-1], nil
}

func (m *memStore) ListStories(ctx context.Context, limit int) ([]model.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Story, 0, limit)
	for i := len(m.stories) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.stories[i])
	}
	return out, nil
}

func (m *memStore) InsertStory(ctx context.Context, author, story string) (*model.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextStory++
	st := model.Story{
		ID:        m.nextStory,
		Author:    author,
		Story:     story,
		CreatedAt: time.Now().UTC(),
	}
	m.stories = append(m.stories, st)
	return &st, nil
}

func (m *memStore) LikeStory(ctx context.Context, id int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.stories {
		if m.stories[i].ID == id {
			m.stories[i].Likes++
			return m.stories[i].Likes, nil
		}
	}
	return 0, store.ErrNotFound
}

func (m *memStore) InsertSignup(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signups[email] = true
	return nil
}

func (m *memStore) CreateUser(ctx context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[u.Email]; exists {
		return store.ErrDuplicate
	}
	m.users[u.Email] = u
	return nil
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

// stubAssistant completes instantly with the canned roast text.
type stubAssistant struct{}

func (stubAssistant) CreateThread(ctx context.Context) (string, error) { return "thread_e2e", nil }
func (stubAssistant) CreateMessage(ctx context.Context, threadID, content string) error {
	return nil
}
func (stubAssistant) CreateRun(ctx context.Context, threadID string) (*client.Run, error) {
	return &client.Run{ID: "run_e2e", Status: "queued"}, nil
}
func (stubAssistant) PollRun(ctx context.Context, threadID, runID string) (*client.Run, error) {
	return &client.Run{ID: runID, Status: client.RunStatusCompleted}, nil
}
func (stubAssistant) LatestAssistantMessage(ctx context.Context, threadID string) (string, error) {
	return stubRoastText, nil
}

// testApp holds all components needed for testing.
type testApp struct {
	app   *fiber.App
	store *memStore
}

// setupApp creates a Fiber app identical to main.go but backed by an
// in-memory store, a stub assistant and no object storage.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	mem := newMemStore()

	// Redis (localhost — rate limiting degrades to allow-all when absent)
	redisClient := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // use DB 15 for tests to avoid collision
	})

	validate := validator.New()

	// Services — nil storage triggers mock fallbacks, nil analyzer skips analysis
	uploadService := service.NewUploadService(nil, mem)
	roastService := service.NewRoastService(mem, stubAssistant{}, nil, service.NewRegexStructurer())
	storyService := service.NewStoryService(mem)
	authService := service.NewAuthService(mem, testJWTSecret, time.Hour)

	// Handlers
	uploadHandler := handler.NewUploadHandler(uploadService)
	roastHandler := handler.NewRoastHandler(roastService, validate)
	chartHandler := handler.NewChartHandler()
	storyHandler := handler.NewStoryHandler(storyService, validate)
	authHandler := handler.NewAuthHandler(authService, validate, testJWTSecret)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	app := fiber.New(fiber.Config{
		BodyLimit: service.MaxDeckSize + 1024*1024,
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"timestamp": time.Now().Unix()})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"postgres":  true,
				"openai":    false,
				"assistant": false,
				"storage":   false,
				"analysis":  false,
			},
		})
	})

	authGroup := app.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/verify", authHandler.Verify)

	api := app.Group("/api", authMiddleware.Optional())

	// Use very high rate limits so tests don't get blocked
	upload := api.Group("/upload", rateLimiter.UploadLimit(10000))
	upload.Post("/deck", uploadHandler.Deck)
	upload.Delete("/deck/:submissionId", uploadHandler.Remove)

	api.Post("/roast", rateLimiter.RoastLimit(10000), roastHandler.Roast)
	api.Get("/roast/:submissionId", roastHandler.Get)

	api.Get("/chart", chartHandler.Get)

	api.Get("/stories", storyHandler.List)
	api.Post("/stories", rateLimiter.StoryLimit(10000), storyHandler.Create)
	api.Post("/stories/:storyId/like", rateLimiter.StoryLimit(10000), storyHandler.Like)

	api.Post("/signup", storyHandler.Signup)

	return &testApp{app: app, store: mem}
}

// generateToken creates an HMAC JWT token for test requests.
func generateToken(t *testing.T) string {
	t.Helper()
	token, _, err := auth.IssueToken("test-user-123", "test@example.com", testJWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return token
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}
