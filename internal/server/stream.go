package server

import (
	"fmt"
	"net/http"
	"time"
)

// StreamInterval is the pause between MJPEG parts (~15 FPS).
const StreamInterval = 66 * time.Millisecond

// StreamHandler serves the composited preview as MJPEG.
type StreamHandler struct {
	frames FrameSource
}

// NewStreamHandler creates a new StreamHandler reading from frames.
func NewStreamHandler(frames FrameSource) *StreamHandler {
	return &StreamHandler{frames: frames}
}

// ServeHTTP streams MJPEG frames to connected clients. A frame is only
// sent once; the loop idles until the pipeline publishes the next one.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var sent uint64
	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		jpeg, seq := h.frames.LatestJPEG()
		if len(jpeg) == 0 || seq == sent {
			time.Sleep(StreamInterval)
			continue
		}
		sent = seq

		if err := writePart(w, jpeg); err != nil {
			return
		}

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		time.Sleep(StreamInterval)
	}
}

// writePart writes one multipart JPEG section.
func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\r\n")
	return err
}
