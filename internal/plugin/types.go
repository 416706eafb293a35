// Package plugin runs out-of-process actuator plugins. A plugin is a
// directory holding a plugin.json manifest and an executable that reads one
// JSON Request on stdin and writes one JSON Response on stdout.
package plugin

import (
	"encoding/json"
	"errors"
	"path/filepath"
)

// ManifestFile is the manifest name inside a plugin directory.
const ManifestFile = "plugin.json"

// Manifest describes a plugin's metadata and the actions it handles.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Actions     []string `json:"actions"`
}

// Validate checks that the manifest names the plugin and an executable
// inside the plugin directory.
func (m Manifest) Validate() error {
	if m.Name == "" {
		return errors.New("manifest has no name")
	}
	if m.Executable == "" {
		return errors.New("manifest has no executable")
	}
	if filepath.Base(m.Executable) != m.Executable || m.Executable == ".." {
		return errors.New("executable must be a file in the plugin directory")
	}
	return nil
}

// Request is sent to a plugin on stdin.
type Request struct {
	Action string          `json:"action"`
	Mode   string          `json:"mode,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is read from a plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered plugin and its location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Supports reports whether the manifest lists action.
func (p *Plugin) Supports(action string) bool {
	for _, a := range p.Manifest.Actions {
		if a == action {
			return true
		}
	}
	return false
}
