package server

import (
	"fmt"
	"net/http"
	"time"
)

// StreamInterval paces the MJPEG stream at roughly 15 FPS.
const StreamInterval = 66 * time.Millisecond

// FrameSource supplies the latest rendered frame as JPEG.
type FrameSource interface {
	LatestJPEG() []byte
}

// StreamHandler serves the rendered frames as MJPEG.
type StreamHandler struct {
	source   FrameSource
	interval time.Duration
}

// NewStreamHandler creates a new StreamHandler reading from source.
func NewStreamHandler(source FrameSource) *StreamHandler {
	return &StreamHandler{source: source, interval: StreamInterval}
}

// ServeHTTP streams frames until the client goes away. A frame that has not
// changed since the last write is not sent again.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var last []byte
	for {
		if buf := h.source.LatestJPEG(); len(buf) > 0 && !sameBuffer(buf, last) {
			if err := writePart(w, buf); err != nil {
				return
			}
			last = buf
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

// sameBuffer reports whether a and b share backing storage. Each frame is
// published as a fresh slice, so identity means nothing new.
func sameBuffer(a, b []byte) bool {
	return len(a) > 0 && len(b) > 0 && len(a) == len(b) && &a[0] == &b[0]
}

func writePart(w http.ResponseWriter, buf []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(buf)); err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "\r\n"); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
