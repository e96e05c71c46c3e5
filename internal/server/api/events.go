package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/saiyan/internal/store"
)

// DefaultEventLimit is the number of events returned without ?limit=.
const DefaultEventLimit = 50

// EventsHandler serves the gesture event journal.
type EventsHandler struct {
	store *store.Store
}

// NewEventsHandler creates a new EventsHandler with the given store.
func NewEventsHandler(s *store.Store) *EventsHandler {
	return &EventsHandler{store: s}
}

type eventsResponse struct {
	Events []*store.Event `json:"events"`
	Total  int            `json:"total"`
}

// ServeHTTP handles GET /api/events?limit=N&kind=K. Events come newest
// first; limit=0 returns the whole journal.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := DefaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	kind := r.URL.Query().Get("kind")

	events, err := h.store.Events().ListKind(kind, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	total, err := h.store.Events().Count(kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count events")
		return
	}

	if events == nil {
		events = []*store.Event{}
	}

	writeJSON(w, http.StatusOK, eventsResponse{Events: events, Total: total})
}
