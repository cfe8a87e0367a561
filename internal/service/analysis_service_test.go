package service

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeChat struct {
	err   error
	reply string
}

func (f *fakeChat) ChatCompletion(ctx context.Context, system, user string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestAnalysisConfigured(t *testing.T) {
	var nilSvc *AnalysisService
	if nilSvc.Configured() {
		t.Error("nil service must report unconfigured")
	}

	if NewAnalysisService(nil, &fakeChat{}).Configured() {
		t.Error("missing storage must report unconfigured")
	}
	if NewAnalysisService(&memStorage{}, nil).Configured() {
		t.Error("missing model must report unconfigured")
	}
	if !NewAnalysisService(&memStorage{}, &fakeChat{}).Configured() {
		t.Error("expected configured service")
	}
}

func TestDescribePage(t *testing.T) {
	svc := NewAnalysisService(&memStorage{}, &fakeChat{reply: "  A team slide.  "})

	got := svc.describePage(context.Background(), 3, "Our team: four CEOs")
	if got.Page != 3 {
		t.Errorf("expected page 3, got %d", got.Page)
	}
	if got.Description != "A team slide." {
		t.Errorf("expected trimmed description, got %q", got.Description)
	}
}

func TestDescribePageEmptyText(t *testing.T) {
	svc := NewAnalysisService(&memStorage{}, &fakeChat{reply: "unused"})

	got := svc.describePage(context.Background(), 2, "")
	if !strings.Contains(got.Description, "no extractable text") {
		t.Errorf("expected no-text placeholder, got %q", got.Description)
	}
}

func TestDescribePageModelFailure(t *testing.T) {
	svc := NewAnalysisService(&memStorage{}, &fakeChat{err: errors.New("model down")})

	got := svc.describePage(context.Background(), 1, "some slide text")
	if !strings.Contains(got.Description, "could not be analyzed") {
		t.Errorf("expected inline failure description, got %q", got.Description)
	}
	if !strings.Contains(got.Description, "model down") {
		t.Errorf("expected cause in description, got %q", got.Description)
	}
}

func TestAnalyzeDeckDownloadFailure(t *testing.T) {
	svc := NewAnalysisService(&memStorage{}, &fakeChat{reply: "x"})

	_, err := svc.AnalyzeDeck(context.Background(), "missing-key")
	if err == nil {
		t.Fatal("expected error when the object is missing")
	}
}
