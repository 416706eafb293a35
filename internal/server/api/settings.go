package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/Lokesh983/Gesture-Control/internal/config"
	"github.com/Lokesh983/Gesture-Control/internal/store"
)

// SettingsHandler reads and persists tunable settings. Persisted values take
// effect on the next start; explicit command-line flags still win.
type SettingsHandler struct {
	base  config.Config
	store *store.Store
}

// NewSettingsHandler creates a SettingsHandler. base is the configuration
// before stored settings are applied.
func NewSettingsHandler(base config.Config, s *store.Store) *SettingsHandler {
	return &SettingsHandler{base: base, store: s}
}

type settingsResponse struct {
	Settings        map[string]string `json:"settings"`
	RestartRequired bool              `json:"restart_required,omitempty"`
}

func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// effective returns base with the stored settings applied. Stored values
// that no longer validate are ignored.
func (h *SettingsHandler) effective() (config.Config, error) {
	stored, err := h.store.Settings().All()
	if err != nil {
		return h.base, err
	}
	cfg, err := h.base.Apply(stored, nil)
	if err != nil {
		log.Printf("ignoring stored settings: %v", err)
		return h.base, nil
	}
	return cfg, nil
}

// get handles GET /api/settings.
func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.effective()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Settings: cfg.Settings()})
}

// put handles PUT /api/settings with a JSON object of flag names to values.
// The whole update is validated before anything is stored.
func (h *SettingsHandler) put(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(values) == 0 {
		writeError(w, http.StatusBadRequest, "No settings given")
		return
	}

	current, err := h.effective()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	updated, err := current.Apply(values, nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Settings().SetMany(values); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}

	writeJSON(w, http.StatusOK, settingsResponse{Settings: updated.Settings(), RestartRequired: true})
}
