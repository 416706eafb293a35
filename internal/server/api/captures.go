// Package api provides the JSON HTTP handlers: live control, stored
// captures and settings.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/Lokesh983/Gesture-Control/internal/store"
)

// DefaultListLimit caps capture listings when no limit is given.
const DefaultListLimit = 50

// CaptureHandler serves the screenshot and drawing catalog.
type CaptureHandler struct {
	store *store.Store
}

// NewCaptureHandler creates a new CaptureHandler with the given store.
func NewCaptureHandler(s *store.Store) *CaptureHandler {
	return &CaptureHandler{store: s}
}

// ServeHTTP routes /api/captures, /api/captures/{id} and
// /api/captures/{id}/image.
func (h *CaptureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/captures")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	id, rest, _ := strings.Cut(path, "/")
	switch {
	case rest == "image" && r.Method == http.MethodGet:
		h.image(w, r, id)
	case rest != "":
		http.NotFound(w, r)
	case r.Method == http.MethodGet:
		h.get(w, r, id)
	case r.Method == http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type captureResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Path      string `json:"path"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	CreatedAt string `json:"created_at"`
}

type listCapturesResponse struct {
	Captures []captureResponse `json:"captures"`
}

func toCaptureResponse(c *store.Capture) captureResponse {
	return captureResponse{
		ID:        c.ID,
		Kind:      string(c.Kind),
		Path:      c.Path,
		Width:     c.Width,
		Height:    c.Height,
		CreatedAt: c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// list handles GET /api/captures?kind=screenshot&limit=20.
func (h *CaptureHandler) list(w http.ResponseWriter, r *http.Request) {
	kind := store.CaptureKind(r.URL.Query().Get("kind"))
	switch kind {
	case "", store.CaptureScreenshot, store.CaptureDrawing:
	default:
		writeError(w, http.StatusBadRequest, "Invalid capture kind")
		return
	}

	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	captures, err := h.store.Captures().List(kind, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list captures")
		return
	}

	response := listCapturesResponse{
		Captures: make([]captureResponse, 0, len(captures)),
	}
	for _, c := range captures {
		response.Captures = append(response.Captures, toCaptureResponse(c))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *CaptureHandler) lookup(w http.ResponseWriter, id string) (*store.Capture, bool) {
	c, err := h.store.Captures().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Capture not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to get capture")
		return nil, false
	}
	return c, true
}

// get handles GET /api/captures/{id}.
func (h *CaptureHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	if c, ok := h.lookup(w, id); ok {
		writeJSON(w, http.StatusOK, toCaptureResponse(c))
	}
}

// image handles GET /api/captures/{id}/image and serves the PNG.
func (h *CaptureHandler) image(w http.ResponseWriter, r *http.Request, id string) {
	c, ok := h.lookup(w, id)
	if !ok {
		return
	}
	if _, err := os.Stat(c.Path); err != nil {
		writeError(w, http.StatusNotFound, "Capture file missing")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, c.Path)
}

// delete handles DELETE /api/captures/{id}. The file is removed with the
// record; a file that is already gone is not an error.
func (h *CaptureHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	c, ok := h.lookup(w, id)
	if !ok {
		return
	}

	if err := h.store.Captures().Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete capture")
		return
	}
	if err := os.Remove(c.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to remove %s: %v", c.Path, err)
	}

	w.WriteHeader(http.StatusNoContent)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
