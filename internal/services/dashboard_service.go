// Package services – DashboardService
//
// This file implements DashboardService, the read-only views over the ticket
// store used by the response dashboard: the priority-ranked open list, the
// stats aggregation, keyword search, and the close operation. All methods are
// thin coordinators; ordering and aggregation guarantees live in the store.
package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/tbourn/go-sos-backend/internal/domain"
	"github.com/tbourn/go-sos-backend/internal/search"
	"github.com/tbourn/go-sos-backend/internal/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TicketStats aggregates ticket counts for the dashboard.
type TicketStats struct {
	TotalTickets  int64                      `json:"total_tickets"`
	OpenTickets   int64                      `json:"open_tickets"`
	ClosedTickets int64                      `json:"closed_tickets"`
	DisasterTypes []domain.DisasterTypeCount `json:"disaster_types"`
}

// TicketMatch pairs a ticket with its search relevance score.
type TicketMatch struct {
	Ticket domain.Ticket `json:"ticket"`
	Score  float64       `json:"score"`
}

// DashboardService provides the dashboard read paths and the close operation.
type DashboardService struct {
	Store store.Store
}

// NewDashboardService constructs a DashboardService over the given store.
func NewDashboardService(s store.Store) *DashboardService {
	return &DashboardService{Store: s}
}

// ListOpen returns open tickets sorted by priority descending, insertion
// order on ties. A positive limit caps the result; limit <= 0 returns all.
func (d *DashboardService) ListOpen(ctx context.Context, limit int) ([]domain.Ticket, error) {
	tr := otel.Tracer("services/DashboardService")
	ctx, span := tr.Start(ctx, "ListOpen",
		trace.WithAttributes(attribute.Int("limit", limit)),
	)
	defer span.End()

	tickets, err := d.Store.OpenByPriority(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(tickets) > limit {
		tickets = tickets[:limit]
	}
	return tickets, nil
}

// Stats returns total/open/closed counts and the disaster-type histogram
// sorted by count descending. The counts come from one store snapshot, so
// total always equals open plus closed even while submissions land.
func (d *DashboardService) Stats(ctx context.Context) (*TicketStats, error) {
	tr := otel.Tracer("services/DashboardService")
	ctx, span := tr.Start(ctx, "Stats")
	defer span.End()

	tl, err := d.Store.Totals(ctx)
	if err != nil {
		return nil, err
	}
	types := tl.ByType
	if types == nil {
		types = []domain.DisasterTypeCount{}
	}

	return &TicketStats{
		TotalTickets:  tl.Total,
		OpenTickets:   tl.Open,
		ClosedTickets: tl.Total - tl.Open,
		DisasterTypes: types,
	}, nil
}

// CloseTicket transitions the identified ticket to closed. It returns
// ErrTicketNotFound for unparseable ids, unknown ids, and already-closed
// tickets alike: all three mean "nothing was modified".
func (d *DashboardService) CloseTicket(ctx context.Context, rawID string) error {
	tr := otel.Tracer("services/DashboardService")
	ctx, span := tr.Start(ctx, "CloseTicket",
		trace.WithAttributes(attribute.String("ticket.id", rawID)),
	)
	defer span.End()

	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil || id <= 0 {
		return ErrTicketNotFound
	}
	modified, err := d.Store.Close(ctx, id)
	if err != nil {
		return err
	}
	if !modified {
		return ErrTicketNotFound
	}
	return nil
}

// Search ranks all tickets by keyword relevance against the query and returns
// up to k matches, best first. Tickets with no token overlap are omitted.
func (d *DashboardService) Search(ctx context.Context, query string, k int) ([]TicketMatch, error) {
	tr := otel.Tracer("services/DashboardService")
	ctx, span := tr.Start(ctx, "Search",
		trace.WithAttributes(attribute.String("query", query)),
	)
	defer span.End()

	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	tickets, err := d.Store.All(ctx)
	if err != nil {
		return nil, err
	}

	ranked := search.Rank(query, tickets, k)
	out := make([]TicketMatch, 0, len(ranked))
	for _, m := range ranked {
		out = append(out, TicketMatch{Ticket: tickets[m.Index], Score: m.Score})
	}
	return out, nil
}
