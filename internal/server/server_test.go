package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Lokesh983/Gesture-Control/internal/app"
	"github.com/Lokesh983/Gesture-Control/internal/control"
	"github.com/Lokesh983/Gesture-Control/internal/store"
)

// fakeController implements Controller without a camera.
type fakeController struct {
	mu     sync.Mutex
	state  app.State
	jpeg   []byte
	events chan app.Event
}

func newFakeController() *fakeController {
	return &fakeController{
		state:  app.State{Enabled: true, Running: true},
		jpeg:   []byte{0xFF, 0xD8, 0xFF, 0xD9},
		events: make(chan app.Event, 4),
	}
}

func (f *fakeController) State() app.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeController) SetEnabled(enabled bool) {
	f.mu.Lock()
	f.state.Enabled = enabled
	f.mu.Unlock()
}

func (f *fakeController) SetMode(mode control.Mode) error {
	f.mu.Lock()
	f.state.Mode = mode
	f.mu.Unlock()
	f.events <- app.Event{Time: time.Now(), Action: control.Action{Kind: control.ModeChange, Mode: mode}}
	return nil
}

func (f *fakeController) SelectTool(name string) error { return nil }
func (f *fakeController) ClearCanvas() error           { return nil }

func (f *fakeController) SaveDrawing() (*store.Capture, error) { return nil, app.ErrNoFrame }
func (f *fakeController) Screenshot() (*store.Capture, error)  { return nil, app.ErrNoFrame }

func (f *fakeController) LatestJPEG() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jpeg
}

func (f *fakeController) Subscribe() (<-chan app.Event, func()) {
	return f.events, func() {}
}

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	t.Run("returns 200 with JSON response", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		contentType := rec.Header().Get("Content-Type")
		if contentType != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", contentType)
		}

		var response map[string]interface{}
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response["status"] != "ok" {
			t.Errorf("expected status 'ok', got %v", response["status"])
		}

		if _, exists := response["uptime"]; !exists {
			t.Error("expected 'uptime' field in response")
		}
		if _, exists := response["running"]; exists {
			t.Error("'running' should be absent without a controller")
		}
	})

	t.Run("only allows GET method", func(t *testing.T) {
		methods := []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch}

		for _, method := range methods {
			req := httptest.NewRequest(method, "/api/health", nil)
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})

	t.Run("reports controller state", func(t *testing.T) {
		ctl := newFakeController()
		ctl.SetEnabled(false)
		s := New(Config{Controller: ctl})

		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		var response map[string]interface{}
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response["running"] != true || response["enabled"] != false {
			t.Errorf("health = %v", response)
		}
	})
}

func TestServer_NotFound(t *testing.T) {
	s := New(Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/nonexistent", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestServer_OptionalRoutes(t *testing.T) {
	s := New(Config{})

	for _, path := range []string{"/api/state", "/api/captures", "/api/settings", "/api/stream"} {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s without backing: status %d, want %d", path, rec.Code, http.StatusNotFound)
		}
	}
}

func TestServer_StaticFiles(t *testing.T) {
	tmpDir := t.TempDir()

	testContent := "<html><body>Gesture Control</body></html>"
	if err := os.WriteFile(filepath.Join(tmpDir, "index.html"), []byte(testContent), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	cssContent := "body { color: red; }"
	if err := os.WriteFile(filepath.Join(tmpDir, "style.css"), []byte(cssContent), 0644); err != nil {
		t.Fatalf("failed to create test CSS file: %v", err)
	}

	s := New(Config{StaticDir: tmpDir})

	t.Run("serves index.html at root path", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		if rec.Body.String() != testContent {
			t.Errorf("expected body %q, got %q", testContent, rec.Body.String())
		}
	})

	t.Run("serves static files from configured directory", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/style.css", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		if rec.Body.String() != cssContent {
			t.Errorf("expected body %q, got %q", cssContent, rec.Body.String())
		}
	})

	t.Run("returns 404 for non-existent static files", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/nonexistent.html", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestServer_NoStaticDir(t *testing.T) {
	s := New(Config{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestServer_State(t *testing.T) {
	ctl := newFakeController()
	s := New(Config{Controller: ctl})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/mode", strings.NewReader(`{"mode": "painter"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/mode status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))

	var state map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if state["mode"] != "painter" {
		t.Errorf("mode = %v, want painter", state["mode"])
	}
}

func TestStreamHandler(t *testing.T) {
	ctl := newFakeController()
	s := New(Config{Controller: ctl})

	ctx, cancel := context.WithTimeout(context.Background(), 3*StreamInterval)
	defer cancel()

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stream", nil).WithContext(ctx))

	if ct := rec.Header().Get("Content-Type"); ct != "multipart/x-mixed-replace; boundary=frame" {
		t.Errorf("Content-Type = %q", ct)
	}

	// The buffer never changes, so exactly one part is written.
	body := rec.Body.String()
	if n := strings.Count(body, "--frame"); n != 1 {
		t.Errorf("parts = %d, want 1", n)
	}
	if !strings.Contains(body, "Content-Length: 4") {
		t.Errorf("part header missing length: %q", body)
	}
}

func TestStreamHandler_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	NewStreamHandler(newFakeController()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/stream", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestSameBuffer(t *testing.T) {
	a := []byte{1, 2, 3}
	b := []byte{1, 2, 3}

	if !sameBuffer(a, a) {
		t.Error("a slice should match itself")
	}
	if sameBuffer(a, b) {
		t.Error("equal contents in different buffers should not match")
	}
	if sameBuffer(a, nil) {
		t.Error("nil should not match")
	}
}

func TestNew(t *testing.T) {
	t.Run("creates server with config", func(t *testing.T) {
		cfg := Config{StaticDir: "/some/path"}
		s := New(cfg)

		if s == nil {
			t.Fatal("expected non-nil server")
		}

		if s.config.StaticDir != cfg.StaticDir {
			t.Errorf("expected StaticDir %s, got %s", cfg.StaticDir, s.config.StaticDir)
		}
	})

	t.Run("server implements http.Handler", func(t *testing.T) {
		s := New(Config{})
		var _ http.Handler = s
	})

	t.Run("http server carries the handler", func(t *testing.T) {
		s := New(Config{})
		hs := s.HTTPServer("127.0.0.1:0")
		if hs.Handler != s || hs.Addr != "127.0.0.1:0" {
			t.Errorf("HTTPServer = %+v", hs)
		}
	})
}
