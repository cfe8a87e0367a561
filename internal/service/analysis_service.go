package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/unidoc/unipdf/v3/extractor"
	pdf "github.com/unidoc/unipdf/v3/model"

	"github.com/pitchroast/api/internal/client"
	"github.com/pitchroast/api/internal/model"
)

// maxAnalyzedPages bounds per-deck model cost and latency.
const maxAnalyzedPages = 10

const pageSystemPrompt = "You are a pitch deck analyst. Given the text content of one slide, " +
	"describe in one short paragraph what the slide is trying to communicate."

// AnalysisService produces per-page descriptions of an uploaded deck.
// It is an optional pipeline stage: the roast proceeds without it when
// storage or the model is unavailable.
type AnalysisService struct {
	storage client.StorageClient
	ai      client.ChatCompleter
}

// NewAnalysisService creates a new deck analysis service.
func NewAnalysisService(storage client.StorageClient, ai client.ChatCompleter) *AnalysisService {
	return &AnalysisService{
		storage: storage,
		ai:      ai,
	}
}

// Configured reports whether the stage can run at all.
func (s *AnalysisService) Configured() bool {
	return s != nil && s.storage != nil && s.ai != nil
}

// AnalyzeDeck downloads the stored PDF and describes a bounded prefix of
// its pages. Page descriptions are requested in parallel; a failure on one
// page becomes an inline error description for that page, never an abort
// of the whole batch.
func (s *AnalysisService) AnalyzeDeck(ctx context.Context, storagePath string) ([]model.PageAnalysis, error) {
	data, err := s.storage.Download(ctx, storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deck: %w", err)
	}

	texts, err := extractPageTexts(data, maxAnalyzedPages)
	if err != nil {
		return nil, err
	}

	analyses := make([]model.PageAnalysis, len(texts))
	var wg sync.WaitGroup
	for i, text := range texts {
		wg.Add(1)
		go func(page int, pageText string) {
			defer wg.Done()
			analyses[page-1] = s.describePage(ctx, page, pageText)
		}(i+1, text)
	}
	wg.Wait()

	return analyses, nil
}

// extractPageTexts pulls the text layer of up to maxPages pages.
// A page that cannot be read yields an empty string for that slot.
func extractPageTexts(data []byte, maxPages int) ([]string, error) {
	reader, err := pdf.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}
	if numPages > maxPages {
		numPages = maxPages
	}

	texts := make([]string, numPages)
	for i := 1; i <= numPages; i++ {
		page, err := reader.GetPage(i)
		if err != nil {
			continue
		}
		ex, err := extractor.New(page)
		if err != nil {
			continue
		}
		pageText, err := ex.ExtractText()
		if err != nil {
			continue
		}
		texts[i-1] = strings.TrimSpace(pageText)
	}
	return texts, nil
}

func (s *AnalysisService) describePage(ctx context.Context, page int, pageText string) model.PageAnalysis {
	if pageText == "" {
		return model.PageAnalysis{
			Page:        page,
			Description: fmt.Sprintf("Page %d has no extractable text.", page),
		}
	}

	user := fmt.Sprintf("Slide %d of the pitch deck contains:\n\n%s", page, pageText)
	desc, err := s.ai.ChatCompletion(ctx, pageSystemPrompt, user)
	if err != nil {
		return model.PageAnalysis{
			Page:        page,
			Description: fmt.Sprintf("Page %d could not be analyzed: %v", page, err),
		}
	}

	return model.PageAnalysis{
		Page:        page,
		Description: strings.TrimSpace(desc),
	}
}
