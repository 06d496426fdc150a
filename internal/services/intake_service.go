// Package services – IntakeService
//
// This file implements IntakeService, the application-level component that
// owns SOS submission: it validates the report, invokes the classifier
// gateway, normalizes the resulting label, and persists the ticket. The
// classifier runs strictly before any store operation, so a slow upstream
// call can never stall readers of the store.
//
// Idempotent retries: when a client supplies an Idempotency-Key, a receipt is
// recorded for the created ticket; a retry within the TTL returns the original
// ticket without calling the gateway or inserting again.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// the ticket id and degradation flag.
package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-sos-backend/internal/domain"
	"github.com/tbourn/go-sos-backend/internal/gateway"
	"github.com/tbourn/go-sos-backend/internal/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// IntakeService coordinates validation, classification, and persistence of
// new SOS reports.
type IntakeService struct {
	Store      store.Store
	Classifier gateway.Classifier

	// IdempotencyTTL bounds how long a submission receipt can be replayed.
	IdempotencyTTL time.Duration
}

// NewIntakeService constructs an IntakeService with the given collaborators.
func NewIntakeService(s store.Store, c gateway.Classifier, ttl time.Duration) *IntakeService {
	return &IntakeService{Store: s, Classifier: c, IdempotencyTTL: ttl}
}

// Submit validates the report, classifies it, and persists a new ticket.
// It returns the stored ticket and whether the result was replayed from a
// previous submission with the same idempotency key (idemKey may be empty).
//
// Gateway degradation never fails a submission: every classification field
// falls back to its documented default instead.
func (s *IntakeService) Submit(ctx context.Context, text, location, idemKey string) (*domain.Ticket, bool, error) {
	tr := otel.Tracer("services/IntakeService")
	ctx, span := tr.Start(ctx, "Submit")
	defer span.End()

	text = strings.TrimSpace(text)
	location = strings.TrimSpace(location)
	if text == "" || location == "" {
		return nil, false, ErrMissingFields
	}

	// Replay a previous submission before touching the gateway.
	if idemKey != "" {
		if sub, err := s.Store.GetSubmission(ctx, idemKey, time.Now().UTC()); err == nil {
			if ticket, err := s.Store.Get(ctx, sub.TicketID); err == nil {
				span.SetAttributes(attribute.Bool("sos.replayed", true))
				return ticket, true, nil
			}
			// Receipt without a ticket: treat as a fresh submission.
		}
	}

	// Slow path: classification happens before any store mutation and never
	// while a store lock is held (store methods lock internally).
	cls := s.Classifier.Classify(ctx, text)

	ticket := &domain.Ticket{
		Text:           text,
		Location:       location,
		DisasterType:   NormalizeLabel(cls.DisasterType),
		PriorityScore:  gateway.ClampScore(cls.PriorityScore),
		PriorityReason: cls.PriorityReason,
		Explanation:    cls.Explanation,
		Status:         domain.StatusOpen,
		CreatedAt:      time.Now().UTC(),
	}

	stored, err := s.Store.Insert(ctx, ticket)
	if err != nil {
		return nil, false, err
	}
	span.SetAttributes(
		attribute.Int64("ticket.id", stored.ID),
		attribute.String("ticket.disaster_type", stored.DisasterType),
		attribute.Bool("classification.degraded", cls.Degraded),
	)

	if cls.Degraded {
		log.Warn().
			Int64("ticket_id", stored.ID).
			Msg("ticket created with degraded classification")
	}

	if idemKey != "" {
		now := time.Now().UTC()
		sub := &domain.Submission{
			ID:        uuid.NewString(),
			Key:       idemKey,
			TicketID:  stored.ID,
			CreatedAt: now,
			ExpiresAt: now.Add(s.ttl()),
		}
		// A receipt failure must not undo the created ticket; the retry
		// would classify again, which is acceptable.
		if err := s.Store.PutSubmission(ctx, sub); err != nil {
			log.Warn().Err(err).Int64("ticket_id", stored.ID).Msg("failed to record submission receipt")
		}
	}

	return stored, false, nil
}

// ttl returns the configured receipt lifetime or a day by default.
func (s *IntakeService) ttl() time.Duration {
	if s.IdempotencyTTL > 0 {
		return s.IdempotencyTTL
	}
	return 24 * time.Hour
}

// labelWhitespaceRE collapses consecutive whitespace to a single space.
var labelWhitespaceRE = regexp.MustCompile(`\s+`)

// labelCaser lower-cases labels with language-aware folding so "Fire" and
// "fire" group into one histogram bucket.
var labelCaser = cases.Lower(language.English)

// NormalizeLabel canonicalizes a classifier-produced disaster label: trimmed,
// inner whitespace collapsed, lower-cased. Blank labels normalize to the
// gateway fallback so the histogram never grows an empty bucket.
func NormalizeLabel(label string) string {
	label = labelWhitespaceRE.ReplaceAllString(strings.TrimSpace(label), " ")
	if label == "" {
		return gateway.FallbackDisasterType
	}
	return labelCaser.String(label)
}
