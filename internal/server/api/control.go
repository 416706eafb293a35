package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Lokesh983/Gesture-Control/internal/app"
	"github.com/Lokesh983/Gesture-Control/internal/control"
	"github.com/Lokesh983/Gesture-Control/internal/painter"
	"github.com/Lokesh983/Gesture-Control/internal/store"
)

// Controller is the part of the running application the control endpoints
// drive. *app.App implements it.
type Controller interface {
	State() app.State
	SetEnabled(enabled bool)
	SetMode(mode control.Mode) error
	SelectTool(name string) error
	ClearCanvas() error
	SaveDrawing() (*store.Capture, error)
	Screenshot() (*store.Capture, error)
}

// ControlHandler exposes the manual buttons: mode, tool, canvas and
// screenshot, plus the live state.
type ControlHandler struct {
	ctl Controller
}

// NewControlHandler creates a ControlHandler for ctl.
func NewControlHandler(ctl Controller) *ControlHandler {
	return &ControlHandler{ctl: ctl}
}

// Routes returns the control endpoints keyed by path.
func (h *ControlHandler) Routes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"/api/state":        h.state,
		"/api/enabled":      post(h.enabled),
		"/api/mode":         post(h.mode),
		"/api/tool":         post(h.tool),
		"/api/canvas/clear": post(h.clear),
		"/api/canvas/save":  post(h.save),
		"/api/screenshot":   post(h.screenshot),
	}
}

func post(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		fn(w, r)
	}
}

// state handles GET /api/state.
func (h *ControlHandler) state(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.ctl.State())
}

type enabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// enabled handles POST /api/enabled.
func (h *ControlHandler) enabled(w http.ResponseWriter, r *http.Request) {
	var req enabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled is required")
		return
	}

	h.ctl.SetEnabled(*req.Enabled)
	writeJSON(w, http.StatusOK, h.ctl.State())
}

type modeRequest struct {
	Mode string `json:"mode"`
}

// mode handles POST /api/mode.
func (h *ControlHandler) mode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	mode, err := control.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.ctl.SetMode(mode); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to set mode")
		return
	}

	writeJSON(w, http.StatusOK, h.ctl.State())
}

type toolRequest struct {
	Tool string `json:"tool"`
}

// tool handles POST /api/tool.
func (h *ControlHandler) tool(w http.ResponseWriter, r *http.Request) {
	var req toolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.ctl.SelectTool(req.Tool); err != nil {
		if errors.Is(err, painter.ErrUnknownTool) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to select tool")
		return
	}

	writeJSON(w, http.StatusOK, h.ctl.State())
}

// clear handles POST /api/canvas/clear.
func (h *ControlHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.ctl.ClearCanvas(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear canvas")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// save handles POST /api/canvas/save.
func (h *ControlHandler) save(w http.ResponseWriter, r *http.Request) {
	c, err := h.ctl.SaveDrawing()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save drawing")
		return
	}
	writeJSON(w, http.StatusCreated, toCaptureResponse(c))
}

// screenshot handles POST /api/screenshot.
func (h *ControlHandler) screenshot(w http.ResponseWriter, r *http.Request) {
	c, err := h.ctl.Screenshot()
	if err != nil {
		if errors.Is(err, app.ErrNoFrame) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to take screenshot")
		return
	}
	writeJSON(w, http.StatusCreated, toCaptureResponse(c))
}
