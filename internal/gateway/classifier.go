// Package gateway – classifier
//
// This file implements the fail-soft classification contract: four prompts
// (disaster type, priority score, priority reason, emergency tips) issued per
// report, each independently recoverable. A failed or unparseable field is
// substituted with its documented default, so a degraded classification can
// never block ticket creation.
package gateway

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-sos-backend/internal/domain"
)

// Fallbacks applied when the corresponding field degrades.
const (
	FallbackDisasterType   = "unknown"
	FallbackPriorityReason = "Standard emergency assessment"
)

// Prompt templates. The %s placeholder receives the report text, except for
// the explanation prompt which receives the already-classified disaster type.
const (
	promptDisasterType = "You are a disaster type classifier. " +
		"Given the following user report (in any language), identify the type of disaster present in a single word or short phrase. " +
		"Possible disaster types include: fire, flood, earthquake, landslide, cyclone, drought, tsunami, pandemic, accident, explosion, tornado, hailstorm, storm, volcanic eruption, etc. " +
		"If none detected, answer 'none'.\n" +
		"Text: %s\n" +
		"Disaster type:"

	promptPriorityScore = "Given the following SOS report, assign a numeric priority score from 1 to 1000.\n" +
		"A higher number means more urgent or life-threatening.\n" +
		"Text: %s\n" +
		"Only reply with the number."

	promptPriorityReason = "Give a short reason (1-2 lines) explaining the priority score of the following SOS report:\n\n%s"

	promptExplanation = "Give some emergency tips based on situation given: %s"
)

// Classification is the assembled per-field result of classifying one report.
// Every field is always populated: either the model's answer or the
// documented fallback. Degraded reports whether any fallback was used.
type Classification struct {
	DisasterType   string
	PriorityScore  int
	PriorityReason string
	Explanation    string
	Degraded       bool
}

// Classifier turns report text into a Classification. Implementations never
// fail: degradation is absorbed into fallback values.
type Classifier interface {
	Classify(ctx context.Context, text string) Classification
}

// GeminiClassifier implements Classifier on top of a TextGenerator.
type GeminiClassifier struct {
	Gen TextGenerator
}

// NewGeminiClassifier wraps the given text generator.
func NewGeminiClassifier(gen TextGenerator) *GeminiClassifier {
	return &GeminiClassifier{Gen: gen}
}

// Classify runs the four field prompts sequentially and assembles the result.
// The explanation prompt uses the classified (or fallback) disaster label,
// matching the intake contract: tips describe the situation, not the raw text.
func (c *GeminiClassifier) Classify(ctx context.Context, text string) Classification {
	out := Classification{}

	out.DisasterType = c.disasterType(ctx, text, &out.Degraded)
	out.PriorityScore = c.priorityScore(ctx, text, &out.Degraded)
	out.PriorityReason = c.priorityReason(ctx, text, &out.Degraded)
	out.Explanation = c.explanation(ctx, out.DisasterType, &out.Degraded)

	return out
}

// generate issues one prompt and records metrics. ok is false when the field
// must fall back (call error or empty reply).
func (c *GeminiClassifier) generate(ctx context.Context, field, prompt string) (reply string, ok bool) {
	start := time.Now()
	reply, err := c.Gen.GenerateText(ctx, prompt)
	observeClassifierCall(field, err, time.Since(start))

	if err != nil {
		log.Warn().Err(err).Str("field", field).Msg("classifier call degraded")
		return "", false
	}
	reply = strings.TrimSpace(reply)
	return reply, reply != ""
}

func (c *GeminiClassifier) disasterType(ctx context.Context, text string, degraded *bool) string {
	reply, ok := c.generate(ctx, "disaster_type", fmt.Sprintf(promptDisasterType, text))
	if !ok {
		*degraded = true
		return FallbackDisasterType
	}
	return reply
}

func (c *GeminiClassifier) priorityScore(ctx context.Context, text string, degraded *bool) int {
	reply, ok := c.generate(ctx, "priority_score", fmt.Sprintf(promptPriorityScore, text))
	if !ok {
		*degraded = true
		return domain.DefaultPriorityScore
	}
	score, parsed := ParseScore(reply)
	if !parsed {
		*degraded = true
		return domain.DefaultPriorityScore
	}
	return score
}

func (c *GeminiClassifier) priorityReason(ctx context.Context, text string, degraded *bool) string {
	reply, ok := c.generate(ctx, "priority_reason", fmt.Sprintf(promptPriorityReason, text))
	if !ok {
		*degraded = true
		return FallbackPriorityReason
	}
	return reply
}

func (c *GeminiClassifier) explanation(ctx context.Context, disasterType string, degraded *bool) string {
	reply, ok := c.generate(ctx, "explanation", fmt.Sprintf(promptExplanation, disasterType))
	if !ok {
		*degraded = true
		return fmt.Sprintf("Information about %s", disasterType)
	}
	return reply
}

// digitsRE extracts the first run of digits from a free-text model reply.
var digitsRE = regexp.MustCompile(`\d+`)

// ParseScore extracts a priority score from a model reply and clamps it into
// [MinPriorityScore, MaxPriorityScore]. It reports false when the reply
// contains no digits at all, in which case the caller applies the default.
func ParseScore(reply string) (int, bool) {
	m := digitsRE.FindString(reply)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		// Longer than an int; clamp to the maximum rather than falling back.
		return domain.MaxPriorityScore, true
	}
	return ClampScore(n), true
}

// ClampScore bounds n into the valid priority range.
func ClampScore(n int) int {
	if n < domain.MinPriorityScore {
		return domain.MinPriorityScore
	}
	if n > domain.MaxPriorityScore {
		return domain.MaxPriorityScore
	}
	return n
}
