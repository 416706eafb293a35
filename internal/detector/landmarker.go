package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// ScriptName is the MediaPipe landmark service shipped next to the binary.
const ScriptName = "hand_landmarker.py"

// idleShutdown is how long the service may sit unused before it is stopped.
const idleShutdown = 30 * time.Second

// ErrServiceNotFound is returned when the landmark service script is missing.
var ErrServiceNotFound = errors.New(ScriptName + " not found")

// LandmarkService implements Detector with a Python MediaPipe subprocess.
// Frames go out as length-prefixed JPEG on stdin, one JSON line per frame
// comes back on stdout.
type LandmarkService struct {
	config    Config
	script    string
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	idleTimer *time.Timer
}

// NewLandmarkService locates the service script. The Python process itself is
// started lazily on the first Detect call.
func NewLandmarkService(config Config) (*LandmarkService, error) {
	script := findServiceScript()
	if script == "" {
		return nil, ErrServiceNotFound
	}
	if config.MaxHands <= 0 {
		config.MaxHands = 1
	}

	return &LandmarkService{
		config: config,
		script: script,
	}, nil
}

// Detect sends one frame to the service and returns at most MaxHands hands.
func (s *LandmarkService) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if frame == nil || frame.Empty() {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureStarted(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(len(data)))

	if _, err := s.stdin.Write(header); err != nil {
		s.shutdown()
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := s.stdin.Write(data); err != nil {
		s.shutdown()
		return nil, fmt.Errorf("write frame: %w", err)
	}

	line, err := s.stdout.ReadBytes('\n')
	if err != nil {
		s.shutdown()
		return nil, fmt.Errorf("read response: %w", err)
	}

	hands, err := parseResponse(line, s.config.MaxHands)
	if err != nil {
		return nil, err
	}

	s.resetIdleTimer()
	return hands, nil
}

// Close shuts down the Python process.
func (s *LandmarkService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown()
}

func (s *LandmarkService) ensureStarted() error {
	if s.started {
		return nil
	}

	python := findVenvPython()
	if python == "" {
		python = "python3"
	}

	s.cmd = exec.Command(python, s.script,
		"--max-hands", strconv.Itoa(s.config.MaxHands),
		"--min-detection", strconv.FormatFloat(s.config.MinConfidence, 'f', 2, 64),
		"--min-tracking", strconv.FormatFloat(s.config.MinTrackingConf, 'f', 2, 64),
	)

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	s.cmd.Stderr = os.Stderr

	if err := s.cmd.Start(); err != nil {
		return fmt.Errorf("start landmark service: %w", err)
	}

	s.stdin = stdin
	s.stdout = bufio.NewReader(stdout)
	s.started = true

	return nil
}

func (s *LandmarkService) shutdown() error {
	if !s.started {
		return nil
	}

	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}

	if s.stdin != nil {
		s.stdin.Close()
	}

	err := s.cmd.Wait()
	s.started = false
	s.cmd = nil
	s.stdin = nil
	s.stdout = nil

	return err
}

func (s *LandmarkService) resetIdleTimer() {
	if s.idleTimer != nil {
		s.idleTimer.Stop()
	}
	s.idleTimer = time.AfterFunc(idleShutdown, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.shutdown()
	})
}

type serviceResponse struct {
	Hands []serviceHand `json:"hands"`
}

type serviceHand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

// parseResponse decodes one service line, keeping at most maxHands hands.
func parseResponse(line []byte, maxHands int) ([]HandLandmarks, error) {
	var resp serviceResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	n := len(resp.Hands)
	if maxHands > 0 && n > maxHands {
		n = maxHands
	}

	hands := make([]HandLandmarks, n)
	for i := 0; i < n; i++ {
		hands[i] = resp.Hands[i].toHandLandmarks()
	}
	return hands, nil
}

func (h serviceHand) toHandLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	n := copy(lm.Points[:], h.Points)
	lm.Count = n
	return lm
}

func findServiceScript() string {
	var execDir string
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		filepath.Join("scripts", ScriptName),
		filepath.Join("..", "scripts", ScriptName),
		filepath.Join(execDir, "scripts", ScriptName),
		filepath.Join(os.Getenv("HOME"), ".gesturectl", "scripts", ScriptName),
	}

	return firstExisting(candidates)
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".gesturectl/venv/bin/python"),
	}

	return firstExisting(candidates)
}

func firstExisting(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}
