package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/Lokesh983/Gesture-Control/internal/actuator"
	"github.com/Lokesh983/Gesture-Control/internal/app"
	"github.com/Lokesh983/Gesture-Control/internal/config"
	"github.com/Lokesh983/Gesture-Control/internal/control"
	"github.com/Lokesh983/Gesture-Control/internal/plugin"
	"github.com/Lokesh983/Gesture-Control/internal/server"
	"github.com/Lokesh983/Gesture-Control/internal/store"
	"github.com/Lokesh983/Gesture-Control/internal/tray"
)

func main() {
	fmt.Println("Gesture Control - hand gestures for mouse, volume and painter")

	cfg := config.Default()
	fs := flag.NewFlagSet("gesturectl", flag.ExitOnError)
	cfg.RegisterFlags(fs)
	fs.Parse(os.Args[1:])

	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	// Initialize the store
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	st, err := store.New(cfg.DBPath())
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Stored settings fill in whatever was not given on the command line.
	base := cfg
	if stored, err := st.Settings().All(); err != nil {
		log.Printf("Failed to load settings: %v", err)
	} else if applied, err := cfg.Apply(stored, explicit); err != nil {
		log.Printf("Ignoring stored settings: %v", err)
	} else {
		cfg = applied
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	acfg := app.Config{Settings: cfg, Store: st}

	desktop := actuator.NewDesktop()
	acfg.Screen = desktop
	var volume *actuator.PluginVolume
	if !cfg.NoInput {
		acfg.Pointer = desktop
		volume = loadVolume(cfg)
		if volume != nil {
			acfg.Volume = volume
		}
	}

	quit := make(chan struct{})
	var quitOnce sync.Once
	requestQuit := func() { quitOnce.Do(func() { close(quit) }) }
	acfg.OnQuit = requestQuit

	a, err := app.New(acfg)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}
	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start camera: %v", err)
	}

	var httpServer *http.Server
	if cfg.Addr != "" {
		staticDir := cfg.StaticDir
		if staticDir == "" {
			staticDir = findWebDir(cfg.DataDir)
		}
		if staticDir != "" {
			fmt.Printf("Serving static files from: %s\n", staticDir)
		}

		srv := server.New(server.Config{
			StaticDir:  staticDir,
			Store:      st,
			Controller: a,
			Settings:   base,
		})
		httpServer = srv.HTTPServer(cfg.Addr)

		go func() {
			fmt.Printf("Starting server on %s\n", cfg.Addr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Server failed: %v", err)
				requestQuit()
			}
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	if cfg.Tray {
		mode, _ := control.ParseMode(cfg.InitialMode)
		t := tray.New(a, mode)
		t.OnQuit(requestQuit)
		t.OnSettings(func() {
			fmt.Printf("Settings are served at http://localhost%s/\n", cfg.Addr)
		})

		events, unsubscribe := a.Subscribe()
		go followMode(events, t)

		go func() {
			select {
			case <-sig:
			case <-quit:
			}
			t.Quit()
		}()
		// systray needs the main goroutine.
		t.Run()
		unsubscribe()
	} else {
		select {
		case <-sig:
		case <-quit:
		}
	}

	fmt.Println("Shutting down")
	if httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown: %v", err)
		}
		cancel()
	}
	if err := a.Close(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	if volume != nil {
		volume.Close()
	}
}

// loadVolume returns the plugin-backed volume actuator, or nil when no
// plugin handles volume.
func loadVolume(cfg config.Config) *actuator.PluginVolume {
	mgr := plugin.NewManager(cfg.PluginDir)
	if err := mgr.Discover(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
		return nil
	}
	for _, p := range mgr.List() {
		log.Printf("plugin %s %s: %v", p.Manifest.Name, p.Manifest.Version, p.Manifest.Actions)
	}
	v, err := actuator.NewPluginVolume(mgr, plugin.NewExecutor(cfg.PluginTimeout))
	if err != nil {
		log.Printf("Volume control disabled: %v", err)
		return nil
	}
	return v
}

// followMode keeps the tray's mode label in step with gesture mode changes.
func followMode(events <-chan app.Event, t *tray.Tray) {
	for ev := range events {
		if ev.Action.Kind == control.ModeChange {
			t.SetMode(ev.Action.Mode)
		}
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	// Check relative paths from current working directory
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	dataWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}
