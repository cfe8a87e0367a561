package model

import "time"

// SectionNames is the canonical ordered list of pitch-deck evaluation
// categories. Structured feedback always contains exactly these six
// sections in this order.
var SectionNames = []string{
	"Executive Summary",
	"Market Size",
	"Competitive Analysis",
	"Go-to-Market Strategy",
	"Financial Projections",
	"Team",
}

// SectionFeedback is the critique and improvement tip for one section.
type SectionFeedback struct {
	Section  string `json:"section"`
	Feedback string `json:"feedback"`
	Tip      string `json:"tip"`
}

// RoastResult is the structured form of one assistant roast.
type RoastResult struct {
	Summary   string            `json:"summary"`
	FullRoast string            `json:"fullRoast"`
	Sections  []SectionFeedback `json:"sections"`
}

// StoredRoast is a persisted roast row. Retries insert new rows rather
// than overwriting; the submission keeps every roast it ever received.
type StoredRoast struct {
	ID           string      `json:"id"`
	SubmissionID string      `json:"submissionId"`
	Content      RoastResult `json:"content"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// PageAnalysis is the model's description of a single deck page.
// A failed page carries an inline error description instead.
type PageAnalysis struct {
	Page        int    `json:"page"`
	Description string `json:"description"`
}

// RoastRequest is the body for POST /api/roast.
type RoastRequest struct {
	PitchdeckID string `json:"pitchdeckId" validate:"required"`
}

// RoastResponse mirrors the original edge-function success payload.
type RoastResponse struct {
	Success bool        `json:"success"`
	Roast   RoastResult `json:"roast"`
	ID      string      `json:"id"`
}
