package actuator

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Lokesh983/Gesture-Control/internal/control"
	"github.com/Lokesh983/Gesture-Control/internal/plugin"
)

type fakePointer struct {
	calls []string
	panic bool
	err   error
}

func (f *fakePointer) Move(x, y int) error {
	if f.panic {
		panic("display gone")
	}
	f.calls = append(f.calls, "move")
	return f.err
}

func (f *fakePointer) Click(button string) error {
	f.calls = append(f.calls, "click:"+button)
	return f.err
}

func (f *fakePointer) Scroll(delta int) error {
	if delta > 0 {
		f.calls = append(f.calls, "scroll:up")
	} else {
		f.calls = append(f.calls, "scroll:down")
	}
	return f.err
}

func (f *fakePointer) ScreenSize() (image.Point, error) {
	return image.Pt(1920, 1080), nil
}

type fakeVolume struct {
	levels []float64
}

func (f *fakeVolume) SetVolume(level float64) error {
	f.levels = append(f.levels, level)
	return nil
}

func TestDispatcher_Apply(t *testing.T) {
	tests := []struct {
		name   string
		action control.Action
		want   []string
	}{
		{name: "move", action: control.Action{Kind: control.PointerMove, X: 10, Y: 20}, want: []string{"move"}},
		{name: "left click", action: control.Action{Kind: control.LeftClick}, want: []string{"click:left"}},
		{name: "right click", action: control.Action{Kind: control.RightClick}, want: []string{"click:right"}},
		{name: "scroll up", action: control.Action{Kind: control.Scroll, Delta: 40}, want: []string{"scroll:up"}},
		{name: "scroll down", action: control.Action{Kind: control.Scroll, Delta: -40}, want: []string{"scroll:down"}},
		{name: "screenshot is not driven", action: control.Action{Kind: control.Screenshot}, want: nil},
		{name: "mode change is not driven", action: control.Action{Kind: control.ModeChange}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePointer{}
			NewDispatcher(p, nil).Apply(tt.action)
			if len(p.calls) != len(tt.want) {
				t.Fatalf("calls = %v, want %v", p.calls, tt.want)
			}
			for i := range tt.want {
				if p.calls[i] != tt.want[i] {
					t.Errorf("call %d = %q, want %q", i, p.calls[i], tt.want[i])
				}
			}
		})
	}
}

func TestDispatcher_Volume(t *testing.T) {
	v := &fakeVolume{}
	d := NewDispatcher(nil, v)
	if !d.HasVolume() {
		t.Fatal("HasVolume() = false")
	}

	d.Apply(control.Action{Kind: control.SetVolume, Level: 42})
	d.Apply(control.Action{Kind: control.PointerMove})

	if len(v.levels) != 1 || v.levels[0] != 42 {
		t.Errorf("levels = %v, want [42]", v.levels)
	}
}

func TestDispatcher_SwallowsFailures(t *testing.T) {
	t.Run("panic", func(t *testing.T) {
		d := NewDispatcher(&fakePointer{panic: true}, nil)
		d.Apply(control.Action{Kind: control.PointerMove})
	})

	t.Run("error", func(t *testing.T) {
		p := &fakePointer{err: errors.New("denied")}
		d := NewDispatcher(p, nil)
		d.Apply(control.Action{Kind: control.LeftClick})
		if len(p.calls) != 1 {
			t.Errorf("calls = %v, want one attempt without retry", p.calls)
		}
	})

	t.Run("nil actuators", func(t *testing.T) {
		d := NewDispatcher(nil, nil)
		if d.HasVolume() {
			t.Error("HasVolume() = true without a volume actuator")
		}
		d.Apply(control.Action{Kind: control.SetVolume, Level: 10})
		d.Apply(control.Action{Kind: control.Scroll, Delta: 1})
	})
}

type blockingRunner struct {
	mu      sync.Mutex
	levels  []int
	release chan struct{}
	first   sync.Once
	started chan struct{}
	refuse  bool
}

func (r *blockingRunner) Execute(ctx context.Context, p *plugin.Plugin, req *plugin.Request) (*plugin.Response, error) {
	var params struct {
		Level int `json:"level"`
	}
	json.Unmarshal(req.Params, &params)

	r.mu.Lock()
	r.levels = append(r.levels, params.Level)
	r.mu.Unlock()

	r.first.Do(func() {
		close(r.started)
		<-r.release
	})
	if r.refuse {
		return &plugin.Response{Success: false, Error: "no mixer"}, nil
	}
	return &plugin.Response{Success: true}, nil
}

func (r *blockingRunner) seen() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.levels...)
}

func volumeManager(t *testing.T) *plugin.Manager {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "system-control")
	os.MkdirAll(dir, 0755)
	manifest := `{"name":"system-control","executable":"system-control","actions":["set-volume"]}`
	if err := os.WriteFile(filepath.Join(dir, "plugin.json"), []byte(manifest), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	mgr := plugin.NewManager(root)
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	return mgr
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for condition")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPluginVolume_Coalesces(t *testing.T) {
	runner := &blockingRunner{release: make(chan struct{}), started: make(chan struct{})}
	v, err := NewPluginVolume(volumeManager(t), runner)
	if err != nil {
		t.Fatalf("NewPluginVolume() error = %v", err)
	}
	defer v.Close()

	v.SetVolume(10)
	<-runner.started

	// The worker is busy; only the last of these survives.
	for _, level := range []float64{20, 30, 40.4} {
		if err := v.SetVolume(level); err != nil {
			t.Fatalf("SetVolume(%v) error = %v", level, err)
		}
	}
	close(runner.release)

	waitFor(t, func() bool { return v.Applied() == 40 })

	got := runner.seen()
	if len(got) != 2 || got[0] != 10 || got[1] != 40 {
		t.Errorf("plugin saw %v, want [10 40]", got)
	}
}

func TestPluginVolume_SkipsUnchangedLevel(t *testing.T) {
	runner := &blockingRunner{release: make(chan struct{}), started: make(chan struct{})}
	close(runner.release)

	v, err := NewPluginVolume(volumeManager(t), runner)
	if err != nil {
		t.Fatalf("NewPluginVolume() error = %v", err)
	}
	defer v.Close()

	v.SetVolume(55)
	waitFor(t, func() bool { return v.Applied() == 55 })
	v.SetVolume(55.2)
	v.SetVolume(60)
	waitFor(t, func() bool { return v.Applied() == 60 })

	if got := runner.seen(); len(got) != 2 {
		t.Errorf("plugin saw %v, want two calls", got)
	}
}

func TestPluginVolume_Refused(t *testing.T) {
	runner := &blockingRunner{release: make(chan struct{}), started: make(chan struct{}), refuse: true}
	close(runner.release)

	v, err := NewPluginVolume(volumeManager(t), runner)
	if err != nil {
		t.Fatalf("NewPluginVolume() error = %v", err)
	}

	v.SetVolume(30)
	waitFor(t, func() bool { return len(runner.seen()) == 1 })
	v.Close()

	if v.Applied() != -1 {
		t.Errorf("Applied() = %d after refusal, want -1", v.Applied())
	}
	if err := v.SetVolume(10); err == nil {
		t.Error("SetVolume after Close should fail")
	}
}

func TestNewPluginVolume_NoPlugin(t *testing.T) {
	mgr := plugin.NewManager(t.TempDir())
	mgr.Discover()

	_, err := NewPluginVolume(mgr, &blockingRunner{})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("NewPluginVolume() error = %v, want ErrUnavailable", err)
	}
}
