package api

import (
	"encoding/json"
	"net/http"
)

// Tuner owns the live tunables. Validate rejects unknown keys and values
// that do not parse; Apply persists and schedules them for the next tick.
type Tuner interface {
	Settings() map[string]string
	Validate(values map[string]string) error
	Apply(values map[string]string) error
}

// SettingsHandler handles GET and PUT on /api/settings.
type SettingsHandler struct {
	tuner Tuner
}

// NewSettingsHandler creates a new SettingsHandler backed by tuner.
func NewSettingsHandler(tuner Tuner) *SettingsHandler {
	return &SettingsHandler{tuner: tuner}
}

type settingsResponse struct {
	Settings map[string]string `json:"settings"`
}

// ServeHTTP implements the http.Handler interface.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, settingsResponse{Settings: h.tuner.Settings()})
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// update handles PUT /api/settings with a flat JSON object of key/value
// strings. Either every value is applied or none is.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(values) == 0 {
		writeError(w, http.StatusBadRequest, "no settings given")
		return
	}

	if err := h.tuner.Validate(values); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.tuner.Apply(values); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to apply settings")
		return
	}

	writeJSON(w, http.StatusOK, settingsResponse{Settings: h.tuner.Settings()})
}
