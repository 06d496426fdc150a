// SOS HTTP handlers.
//
// This file exposes REST endpoints for the emergency intake and dashboard API:
//   - POST /sos_new            (submit a new SOS report)
//   - GET  /available-sos      (list open tickets, highest priority first)
//   - POST /close-ticket/{id}  (close a ticket, idempotent one-way)
//   - GET  /ticket-stats       (aggregate counts and disaster histogram)
//   - GET  /search-sos         (keyword search across all tickets)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-sos-backend/internal/domain"
	"github.com/tbourn/go-sos-backend/internal/services"
	"github.com/tbourn/go-sos-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// IntakeService defines the SOS submission operation consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type IntakeService interface {
	// Submit validates, classifies, and stores a new SOS report. The returned
	// bool reports whether an idempotent retry was replayed (idemKey may be
	// empty).
	Submit(ctx context.Context, text, location, idemKey string) (*domain.Ticket, bool, error)
}

// DashboardService defines the read paths and the close operation consumed by
// HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type DashboardService interface {
	// ListOpen returns open tickets sorted by priority descending; a positive
	// limit caps the result.
	ListOpen(ctx context.Context, limit int) ([]domain.Ticket, error)
	// Stats aggregates ticket counts and the disaster-type histogram.
	Stats(ctx context.Context) (*services.TicketStats, error)
	// CloseTicket transitions an open ticket to closed.
	CloseTicket(ctx context.Context, rawID string) error
	// Search ranks tickets by keyword relevance against the query.
	Search(ctx context.Context, query string, k int) ([]services.TicketMatch, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for SOS intake and the dashboard.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	intakeSvc IntakeService
	dashSvc   DashboardService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(intakeSvc IntakeService, dashSvc DashboardService) *Handlers {
	return &Handlers{intakeSvc: intakeSvc, dashSvc: dashSvc}
}

//
// DTOs
//

// SubmitSOSRequest is the JSON payload for submitting an SOS report.
type SubmitSOSRequest struct {
	// Text is the free-text description of the emergency.
	Text string `json:"text" example:"Water is rising fast, family trapped on the roof"`
	// Location describes where help is needed.
	Location string `json:"location" example:"Riverside district, block 12"`
}

// SubmitSOSResponse wraps the created ticket.
type SubmitSOSResponse struct {
	Message string        `json:"message" example:"SOS received and processed"`
	Entry   domain.Ticket `json:"entry"`
}

// TicketView is the list representation of a ticket on the dashboard wire.
type TicketView struct {
	TicketID       string              `json:"ticket_id" example:"17"`
	Location       string              `json:"location"`
	Text           string              `json:"text"`
	DisasterType   string              `json:"disaster_type" example:"flood"`
	PriorityScore  int                 `json:"priority_score" example:"870"`
	PriorityReason string              `json:"priority_reason"`
	Explanation    string              `json:"explanation"`
	Status         domain.TicketStatus `json:"status" example:"open"`
	Timestamp      string              `json:"timestamp" example:"2025-06-01T12:30:45Z"`
	Msg            string              `json:"msg" example:"Available"`
}

// AvailableSOSResponse wraps the open-ticket listing.
type AvailableSOSResponse struct {
	Tickets []TicketView `json:"tickets"`
	Count   int          `json:"count" example:"3"`
}

// NoTicketsResponse is returned when no tickets are currently open.
type NoTicketsResponse struct {
	Msg     string       `json:"msg" example:"No tickets currently open"`
	Tickets []TicketView `json:"tickets"`
}

// CloseTicketResponse confirms a successful close.
type CloseTicketResponse struct {
	Message string `json:"message" example:"Ticket closed successfully"`
}

// SearchSOSResponse wraps ranked search results.
type SearchSOSResponse struct {
	Matches []services.TicketMatch `json:"matches"`
	Count   int                    `json:"count" example:"2"`
}

// toView converts a stored ticket into its dashboard list representation.
func toView(t domain.Ticket) TicketView {
	return TicketView{
		TicketID:       utils.FormatID(t.ID),
		Location:       t.Location,
		Text:           t.Text,
		DisasterType:   t.DisasterType,
		PriorityScore:  t.PriorityScore,
		PriorityReason: t.PriorityReason,
		Explanation:    t.Explanation,
		Status:         t.Status,
		Timestamp:      t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Msg:            "Available",
	}
}

//
// Handlers
//

// SubmitSOS godoc
// @ID          submitSOS
// @Summary     Submit a new SOS report
// @Description Classifies the report, assigns a priority score, and stores an open ticket.
// @Tags        SOS
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Safe-retry key; a repeat within the TTL returns the original ticket"
// @Param       body             body    handlers.SubmitSOSRequest  true  "SOS report payload"
//
// @Success     201  {object}  handlers.SubmitSOSResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing text or location"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sos_new [post]
func (h *Handlers) SubmitSOS(c *gin.Context) {
	var req SubmitSOSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	ticket, replayed, err := h.intakeSvc.Submit(c.Request.Context(), req.Text, req.Location, idemKey)
	if err != nil {
		if errors.Is(err, services.ErrMissingFields) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Missing text or location")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeSubmitFailed, "Failed to process SOS report")
		return
	}

	if replayed {
		c.Header("Idempotency-Replayed", "true")
	}
	ok(c, http.StatusCreated, SubmitSOSResponse{
		Message: "SOS received and processed",
		Entry:   *ticket,
	})
}

// AvailableSOS godoc
// @ID          availableSOS
// @Summary     List open SOS tickets
// @Description Returns all open tickets sorted by priority score descending; ties keep submission order.
// @Tags        SOS
// @Produce     json
//
// @Param       limit  query  int  false "Cap the number of returned tickets"  minimum(1)
//
// @Success     200  {object}  handlers.AvailableSOSResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /available-sos [get]
func (h *Handlers) AvailableSOS(c *gin.Context) {
	limit := utils.ParseLimit(c.Query("limit"), 0)
	tickets, err := h.dashSvc.ListOpen(c.Request.Context(), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "Failed to fetch tickets")
		return
	}

	if len(tickets) == 0 {
		ok(c, http.StatusOK, NoTicketsResponse{
			Msg:     "No tickets currently open",
			Tickets: []TicketView{},
		})
		return
	}

	views := make([]TicketView, 0, len(tickets))
	for _, t := range tickets {
		views = append(views, toView(t))
	}
	ok(c, http.StatusOK, AvailableSOSResponse{Tickets: views, Count: len(views)})
}

// CloseTicket godoc
// @ID          closeTicket
// @Summary     Close a ticket
// @Description Transitions an open ticket to closed. Closing is one-way: unknown ids and already-closed tickets both return 404.
// @Tags        SOS
// @Produce     json
//
// @Param       id  path  string  true  "Ticket ID"  example(17)
//
// @Success     200  {object}  handlers.CloseTicketResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Ticket not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /close-ticket/{id} [post]
func (h *Handlers) CloseTicket(c *gin.Context) {
	if err := h.dashSvc.CloseTicket(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, services.ErrTicketNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "Ticket not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCloseFailed, "Failed to close ticket")
		return
	}
	ok(c, http.StatusOK, CloseTicketResponse{Message: "Ticket closed successfully"})
}

// TicketStats godoc
// @ID          ticketStats
// @Summary     Ticket statistics
// @Description Returns total/open/closed counts and the disaster-type distribution sorted by count descending.
// @Tags        SOS
// @Produce     json
//
// @Success     200  {object}  services.TicketStats
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /ticket-stats [get]
func (h *Handlers) TicketStats(c *gin.Context) {
	stats, err := h.dashSvc.Stats(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeStatsFailed, "Failed to get statistics")
		return
	}
	ok(c, http.StatusOK, stats)
}

// SearchSOS godoc
// @ID          searchSOS
// @Summary     Search tickets by keyword
// @Description Ranks all tickets (open and closed) by keyword relevance against the query.
// @Tags        SOS
// @Produce     json
//
// @Param       q      query  string  true  "Search query"  example(flood riverside)
// @Param       limit  query  int     false "Cap the number of returned matches"  minimum(1)
//
// @Success     200  {object}  handlers.SearchSOSResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing query"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /search-sos [get]
func (h *Handlers) SearchSOS(c *gin.Context) {
	query := c.Query("q")
	limit := utils.ParseLimit(c.Query("limit"), 0)

	matches, err := h.dashSvc.Search(c.Request.Context(), query, limit)
	if err != nil {
		if errors.Is(err, services.ErrEmptyQuery) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Missing search query")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeSearchFailed, "Failed to search tickets")
		return
	}
	if matches == nil {
		matches = []services.TicketMatch{}
	}
	ok(c, http.StatusOK, SearchSOSResponse{Matches: matches, Count: len(matches)})
}
