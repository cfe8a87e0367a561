package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pitchroast/api/internal/model"
)

// FeedbackStructurer splits a raw roast into the six canonical sections.
// Structuring is best-effort text segmentation, never an error: a section
// whose heading cannot be found gets the documented placeholder critique,
// and a critique without an embedded tip gets a generic fallback tip.
// Out-of-order or duplicated headings in the model output remain undefined
// behavior and may produce empty or misattributed captures.
type FeedbackStructurer interface {
	Structure(rawText string) model.RoastResult
}

// summaryLen is the length of the preview prefix taken from the raw roast.
const summaryLen = 200

// RegexStructurer implements FeedbackStructurer with heading-boundary
// regex matching.
type RegexStructurer struct {
	headingRe *regexp.Regexp
	tipRe     *regexp.Regexp
	tipLineRe *regexp.Regexp
}

// NewRegexStructurer compiles the section and tip patterns.
func NewRegexStructurer() *RegexStructurer {
	alternatives := make([]string, len(model.SectionNames))
	for i, name := range model.SectionNames {
		alternatives[i] = regexp.QuoteMeta(name)
	}
	headings := strings.Join(alternatives, "|")

	return &RegexStructurer{
		// Heading match is case-insensitive and tolerates an optional
		// colon plus surrounding whitespace.
		headingRe: regexp.MustCompile(`(?i)(` + headings + `)[:\s]*`),
		tipRe:     regexp.MustCompile(`(?:Pro [Tt]ip|Tip):?[ \t]*(.*)`),
		tipLineRe: regexp.MustCompile(`(?m)^.*(?:Pro [Tt]ip|Tip):?.*$`),
	}
}

// Structure segments the raw roast text into exactly six SectionFeedback
// entries in canonical order.
func (r *RegexStructurer) Structure(rawText string) model.RoastResult {
	summary := rawText
	if len(summary) > summaryLen {
		summary = summary[:summaryLen]
	}
	summary += "..."

	blocks := r.splitSections(rawText)

	sections := make([]model.SectionFeedback, 0, len(model.SectionNames))
	for _, name := range model.SectionNames {
		feedback, found := blocks[name]
		if !found {
			feedback = fmt.Sprintf("No specific feedback for %s", name)
		}

		tip := ""
		if feedback != "" {
			if m := r.tipRe.FindStringSubmatch(feedback); m != nil {
				tip = strings.TrimSpace(m[1])
			} else {
				tip = fmt.Sprintf("Improve your %s with more concrete data and clear explanations.", strings.ToLower(name))
			}
			feedback = strings.TrimSpace(r.tipLineRe.ReplaceAllString(feedback, ""))
		}

		sections = append(sections, model.SectionFeedback{
			Section:  name,
			Feedback: feedback,
			Tip:      tip,
		})
	}

	return model.RoastResult{
		Summary:   summary,
		FullRoast: rawText,
		Sections:  sections,
	}
}

// splitSections maps each recognized heading to the text between it and the
// next recognized heading (or end of text). Only the first occurrence of a
// heading is kept.
func (r *RegexStructurer) splitSections(rawText string) map[string]string {
	matches := r.headingRe.FindAllStringSubmatchIndex(rawText, -1)
	blocks := make(map[string]string, len(model.SectionNames))

	for i, m := range matches {
		heading := rawText[m[2]:m[3]]
		name, ok := canonicalSection(heading)
		if !ok {
			continue
		}
		if _, seen := blocks[name]; seen {
			continue
		}

		end := len(rawText)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		blocks[name] = strings.TrimSpace(rawText[m[1]:end])
	}

	return blocks
}

func canonicalSection(heading string) (string, bool) {
	for _, name := range model.SectionNames {
		if strings.EqualFold(heading, name) {
			return name, true
		}
	}
	return "", false
}
