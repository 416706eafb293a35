// Package main is the system-control plugin. It sets and reads the master
// output volume through osascript on macOS and pactl or amixer on Linux.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

// Request is read from stdin.
type Request struct {
	Action string          `json:"action"`
	Mode   string          `json:"mode,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is written to stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type volumeParams struct {
	Level *float64 `json:"level"`
}

type actionHandler func(params json.RawMessage) (any, error)

var actionHandlers = map[string]actionHandler{
	"set-volume": setVolume,
	"get-volume": getVolume,
	"mute":       mute,
}

var errUnsupported = errors.New("unsupported platform " + runtime.GOOS)

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(nil, fmt.Errorf("failed to decode request: %w", err))
		return
	}

	handler, ok := actionHandlers[req.Action]
	if !ok {
		writeResponse(nil, fmt.Errorf("unknown action: %s", req.Action))
		return
	}

	data, err := handler(req.Params)
	if err != nil {
		err = fmt.Errorf("action %s failed: %w", req.Action, err)
	}
	writeResponse(data, err)
}

func writeResponse(data any, err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	if data != nil {
		if raw, mErr := json.Marshal(data); mErr == nil {
			resp.Data = raw
		}
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

func run(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}

// setVolume sets the output volume to params.level percent (0-100).
func setVolume(params json.RawMessage) (any, error) {
	var p volumeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
	}
	if p.Level == nil {
		return nil, errors.New("missing level")
	}
	level := int(*p.Level + 0.5)
	if level < 0 || level > 100 {
		return nil, fmt.Errorf("level %d out of range 0-100", level)
	}

	var err error
	switch runtime.GOOS {
	case "darwin":
		_, err = run("osascript", "-e", fmt.Sprintf("set volume output volume %d", level))
	case "linux":
		if _, err = run("pactl", "set-sink-volume", "@DEFAULT_SINK@", fmt.Sprintf("%d%%", level)); err != nil {
			_, err = run("amixer", "-q", "sset", "Master", fmt.Sprintf("%d%%", level))
		}
	default:
		err = errUnsupported
	}
	if err != nil {
		return nil, err
	}
	return map[string]int{"level": level}, nil
}

func getVolume(json.RawMessage) (any, error) {
	switch runtime.GOOS {
	case "darwin":
		out, err := run("osascript", "-e", "output volume of (get volume settings)")
		if err != nil {
			return nil, err
		}
		level, err := strconv.Atoi(out)
		if err != nil {
			return nil, fmt.Errorf("parse volume %q: %w", out, err)
		}
		return map[string]int{"level": level}, nil
	case "linux":
		out, err := run("pactl", "get-sink-volume", "@DEFAULT_SINK@")
		if err != nil {
			return nil, err
		}
		return map[string]int{"level": firstPercent(out)}, nil
	}
	return nil, errUnsupported
}

func mute(json.RawMessage) (any, error) {
	var err error
	switch runtime.GOOS {
	case "darwin":
		_, err = run("osascript", "-e", "set volume output muted (not (output muted of (get volume settings)))")
	case "linux":
		_, err = run("pactl", "set-sink-mute", "@DEFAULT_SINK@", "toggle")
	default:
		err = errUnsupported
	}
	return nil, err
}

// firstPercent extracts the first "NN%" token from pactl output.
func firstPercent(s string) int {
	for _, field := range strings.Fields(s) {
		if !strings.HasSuffix(field, "%") {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSuffix(field, "%")); err == nil {
			return n
		}
	}
	return -1
}
