package notify

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SSEStream writes hub signals to a text/event-stream response.
type SSEStream struct {
	mu sync.Mutex
	w  io.Writer
	rc *http.ResponseController
}

func NewSSEStream(w http.ResponseWriter) (*SSEStream, error) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	s := &SSEStream{w: w, rc: http.NewResponseController(w)}
	if err := s.send(": connected\n\n"); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SSEStream) Notify(context.Context) error {
	return s.send("data: update\n\n")
}

func (s *SSEStream) Ping() error {
	return s.send(": ping\n\n")
}

func (s *SSEStream) send(frame string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := io.WriteString(s.w, frame); err != nil {
		return err
	}
	return s.rc.Flush()
}

// ServeSSE holds the request open until the client goes away, relaying
// every broadcast as one "update" event.
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, heartbeat time.Duration, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}

	stream, err := NewSSEStream(w)
	if err != nil {
		log.Warn("sse stream setup failed", zap.Error(err))
		return
	}

	sub := hub.Subscribe(stream)
	defer hub.Unsubscribe(sub)

	var tick <-chan time.Time
	if heartbeat > 0 {
		t := time.NewTicker(heartbeat)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-sub.Done():
			return
		case <-tick:
			if err := stream.Ping(); err != nil {
				return
			}
		}
	}
}
