package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/pitchroast/api/internal/client"
	"github.com/pitchroast/api/internal/model"
	"github.com/pitchroast/api/internal/store"
)

// ErrSubmissionNotFound means the pitchdeck id has no submission row.
var ErrSubmissionNotFound = errors.New("pitch deck not found")

// RoastStore is the persistence surface the roast pipeline needs.
type RoastStore interface {
	GetSubmission(ctx context.Context, id string) (*model.Submission, error)
	InsertRoast(ctx context.Context, submissionID string, content model.RoastResult) (string, error)
	GetLatestRoast(ctx context.Context, submissionID string) (*model.StoredRoast, error)
}

// RoastService orchestrates the roast pipeline: submission lookup, optional
// deck analysis, the assistant conversation, feedback structuring and
// persistence. Everything runs synchronously inside the calling request.
type RoastService struct {
	store      RoastStore
	assistant  client.AssistantClient
	analyzer   *AnalysisService
	structurer FeedbackStructurer
}

// NewRoastService creates a new roast service. analyzer may be nil; the
// analysis stage is skipped when it is absent or unconfigured.
func NewRoastService(st RoastStore, assistant client.AssistantClient, analyzer *AnalysisService, structurer FeedbackStructurer) *RoastService {
	return &RoastService{
		store:      st,
		assistant:  assistant,
		analyzer:   analyzer,
		structurer: structurer,
	}
}

// Roast runs the full pipeline for one submission. The submission lookup
// happens before any AI traffic; an unknown id never reaches the assistant.
func (s *RoastService) Roast(ctx context.Context, pitchdeckID string) (*model.RoastResponse, error) {
	sub, err := s.store.GetSubmission(ctx, pitchdeckID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to fetch submission: %w", err)
	}

	deckName := deckFileName(sub.StoragePath)

	var analyses []model.PageAnalysis
	if s.analyzer.Configured() {
		analyses, err = s.analyzer.AnalyzeDeck(ctx, sub.StoragePath)
		if err != nil {
			// Analysis is optional; the roast proceeds on the deck name alone.
			log.Printf("[Roast] deck analysis skipped (submission=%s): %v", sub.ID, err)
			analyses = nil
		}
	}

	raw, err := s.runAssistant(ctx, deckName, analyses)
	if err != nil {
		return nil, err
	}

	result := s.structurer.Structure(raw)

	id, err := s.store.InsertRoast(ctx, sub.ID, result)
	if err != nil {
		return nil, fmt.Errorf("failed to save roast: %w", err)
	}

	return &model.RoastResponse{
		Success: true,
		Roast:   result,
		ID:      id,
	}, nil
}

// GetRoast returns the most recent stored roast for a submission.
func (s *RoastService) GetRoast(ctx context.Context, submissionID string) (*model.StoredRoast, error) {
	roast, err := s.store.GetLatestRoast(ctx, submissionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return roast, nil
}

// runAssistant drives the thread → message → run → poll → fetch sequence
// and returns the raw roast text.
func (s *RoastService) runAssistant(ctx context.Context, deckName string, analyses []model.PageAnalysis) (string, error) {
	threadID, err := s.assistant.CreateThread(ctx)
	if err != nil {
		return "", err
	}
	log.Printf("[Roast] created thread %s", threadID)

	if err := s.assistant.CreateMessage(ctx, threadID, buildRoastPrompt(deckName, analyses)); err != nil {
		return "", err
	}

	run, err := s.assistant.CreateRun(ctx, threadID)
	if err != nil {
		return "", err
	}
	log.Printf("[Roast] started run %s", run.ID)

	if _, err := s.assistant.PollRun(ctx, threadID, run.ID); err != nil {
		return "", err
	}

	return s.assistant.LatestAssistantMessage(ctx, threadID)
}

// buildRoastPrompt assembles the user message for the assistant, optionally
// appending the per-page analyses.
func buildRoastPrompt(deckName string, analyses []model.PageAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I need you to roast my pitch deck for %q.\n", deckName)
	b.WriteString("Please provide brutally honest feedback on these key areas:\n")
	for _, name := range model.SectionNames {
		fmt.Fprintf(&b, "- %s\n", name)
	}
	b.WriteString("\nEach area should have a critique and a tip for improvement.")

	if len(analyses) > 0 {
		b.WriteString("\n\nPage-by-page notes from the deck:\n")
		for _, a := range analyses {
			fmt.Fprintf(&b, "Page %d: %s\n", a.Page, a.Description)
		}
	}

	return b.String()
}

// deckFileName recovers the original file name from a storage key of the
// form "<uuid>-<fileName>".
func deckFileName(storagePath string) string {
	if len(storagePath) > 37 && storagePath[36] == '-' {
		if _, err := uuid.Parse(storagePath[:36]); err == nil {
			return storagePath[37:]
		}
	}
	return "Unknown Startup"
}
