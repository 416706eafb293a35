package e2e

import (
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Lokesh983/Gesture-Control/internal/app"
	"github.com/Lokesh983/Gesture-Control/internal/capture"
	"github.com/Lokesh983/Gesture-Control/internal/config"
	"github.com/Lokesh983/Gesture-Control/internal/detector"
	"github.com/Lokesh983/Gesture-Control/internal/server"
	"github.com/Lokesh983/Gesture-Control/internal/store"
	"github.com/gorilla/websocket"
)

type countingPointer struct {
	mu    sync.Mutex
	moves int
}

func (p *countingPointer) Move(x, y int) error {
	p.mu.Lock()
	p.moves++
	p.mu.Unlock()
	return nil
}

func (p *countingPointer) Click(button string) error { return nil }
func (p *countingPointer) Scroll(delta int) error    { return nil }

func (p *countingPointer) ScreenSize() (image.Point, error) {
	return image.Pt(1280, 720), nil
}

func (p *countingPointer) Moves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.moves
}

type env struct {
	app      *app.App
	detector *detector.MockDetector
	pointer  *countingPointer
	store    *store.Store
	ts       *httptest.Server
}

func setup(t *testing.T) *env {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	settings := config.Default()
	settings.DataDir = tmpDir
	settings.OutputDir = filepath.Join(tmpDir, "Screenshots")
	settings.IconDir = filepath.Join(tmpDir, "Icons")
	settings.ToolIconDir = filepath.Join(tmpDir, "PainterIcons")
	settings.IdleTimeout = time.Minute

	mockDetector := detector.NewMockDetector()
	pointer := &countingPointer{}
	application, err := app.New(app.Config{
		Settings: settings,
		Store:    s,
		Camera:   capture.NewBlankCamera(settings.FrameWidth, settings.FrameHeight),
		Detector: mockDetector,
		Pointer:  pointer,
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	t.Cleanup(func() { application.Close() })

	if err := application.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	ts := httptest.NewServer(server.New(server.Config{
		Store:      s,
		Controller: application,
		Settings:   settings,
	}))
	t.Cleanup(ts.Close)

	return &env{app: application, detector: mockDetector, pointer: pointer, store: s, ts: ts}
}

func (e *env) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := e.ts.Client().Post(e.ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s error = %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *env) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := e.ts.Client().Get(e.ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s error = %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestE2E_CompleteWorkflow(t *testing.T) {
	e := setup(t)

	waitFor(t, "first frame", func() bool { return len(e.app.LatestJPEG()) > 0 })

	t.Run("Health", func(t *testing.T) {
		var health map[string]any
		json.NewDecoder(e.get(t, "/api/health").Body).Decode(&health)
		if health["running"] != true {
			t.Errorf("health = %v, want running", health)
		}
	})

	t.Run("PointerFollowsHand", func(t *testing.T) {
		e.detector.SetHands([]detector.HandLandmarks{detector.PointingLandmarks()})
		waitFor(t, "pointer moves", func() bool { return e.pointer.Moves() > 0 })
		e.detector.SetHands(nil)
	})

	t.Run("SwitchToPainter", func(t *testing.T) {
		if resp := e.post(t, "/api/mode", `{"mode": "painter"}`); resp.StatusCode != http.StatusOK {
			t.Fatalf("POST /api/mode status = %d", resp.StatusCode)
		}

		var state struct {
			Mode string `json:"mode"`
			Tool string `json:"tool"`
		}
		json.NewDecoder(e.get(t, "/api/state").Body).Decode(&state)
		if state.Mode != "painter" || state.Tool != "red" {
			t.Errorf("state = %+v, want painter with red", state)
		}
	})

	t.Run("SaveDrawingAndScreenshot", func(t *testing.T) {
		if resp := e.post(t, "/api/canvas/save", ""); resp.StatusCode != http.StatusCreated {
			t.Fatalf("save status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}
		if resp := e.post(t, "/api/screenshot", ""); resp.StatusCode != http.StatusCreated {
			t.Fatalf("screenshot status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}

		var listed struct {
			Captures []struct {
				ID   string `json:"id"`
				Kind string `json:"kind"`
			} `json:"captures"`
		}
		json.NewDecoder(e.get(t, "/api/captures").Body).Decode(&listed)
		if len(listed.Captures) != 2 {
			t.Fatalf("captures = %+v, want 2", listed.Captures)
		}

		for _, c := range listed.Captures {
			resp := e.get(t, "/api/captures/"+c.ID+"/image")
			if resp.StatusCode != http.StatusOK {
				t.Errorf("image %s status = %d", c.ID, resp.StatusCode)
			}
		}
	})
}

func TestE2E_EventsFollowCommands(t *testing.T) {
	e := setup(t)

	url := "ws" + strings.TrimPrefix(e.ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	// The subscription is registered once the upgrade completes; give the
	// handler a moment before issuing the command.
	time.Sleep(100 * time.Millisecond)
	e.post(t, "/api/mode", `{"mode": "scroll"}`)

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var ev struct {
			Action struct {
				Kind string `json:"kind"`
				Mode string `json:"mode"`
			} `json:"action"`
		}
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		if ev.Action.Kind == "mode_change" {
			if ev.Action.Mode != "scroll" {
				t.Errorf("mode = %s, want scroll", ev.Action.Mode)
			}
			return
		}
	}
}

func TestE2E_SettingsPersist(t *testing.T) {
	e := setup(t)

	req, _ := http.NewRequest(http.MethodPut, e.ts.URL+"/api/settings", strings.NewReader(`{"scroll-amount": "60"}`))
	resp, err := e.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("PUT /api/settings error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	stored, err := e.store.Settings().All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}

	next, err := config.Default().Apply(stored, nil)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if next.ScrollAmount != 60 {
		t.Errorf("ScrollAmount = %d, want 60", next.ScrollAmount)
	}
}
