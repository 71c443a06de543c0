// Package preview serves a live JPEG preview of a video track over websockets.
package preview

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lanikai/mediacore/internal/capture"
	"github.com/lanikai/mediacore/internal/logging"
)

var log = logging.DefaultLogger.WithTag("preview")

type Config struct {
	// Address to listen on, e.g. ":8000".
	Addr string

	// Maximum frames per second sent to clients. Zero means every frame.
	MaxFPS int

	// JPEG quality, 1-100. Defaults to 75.
	Quality int

	// Frames buffered per client before the oldest is dropped. Defaults to 2.
	Backlog int
}

// Server is a video renderer that encodes frames as JPEG and pushes them to
// every connected websocket client. Frames are encoded on the server's own
// goroutine, so RenderFrame never blocks the capture path.
type Server struct {
	cfg         Config
	broadcaster *Broadcaster
	http        *http.Server
	upgrader    websocket.Upgrader

	// Most recent frame not yet encoded.
	latest chan *capture.VideoFrame
	quit   chan struct{}
	done   chan struct{}

	mu       sync.Mutex
	lastSent time.Time
	width    int
	height   int
}

func NewServer(cfg Config) *Server {
	if cfg.Quality <= 0 || cfg.Quality > 100 {
		cfg.Quality = 75
	}
	if cfg.Backlog <= 0 {
		cfg.Backlog = 2
	}

	s := &Server{
		cfg:         cfg,
		broadcaster: NewBroadcaster(),
		latest:      make(chan *capture.VideoFrame, 1),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	s.http = &http.Server{
		Addr:    cfg.Addr,
		Handler: s.Handler(),
	}
	go s.encodeLoop()
	return s
}

// Handler returns the HTTP handler serving the viewer page and the websocket.
func (s *Server) Handler() http.Handler {
	router := http.NewServeMux()
	router.HandleFunc("/", s.handleIndex)
	router.HandleFunc("/ws", s.handleWebsocket)
	return router
}

// ListenAndServe blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	log.Info("Preview available at http://%s/", s.cfg.Addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the HTTP server, disconnects clients and stops encoding.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	s.Close()
	return err
}

// Close disconnects clients and stops encoding. It does not stop a running
// HTTP server; use Shutdown for that.
func (s *Server) Close() {
	select {
	case <-s.quit:
		return
	default:
	}
	close(s.quit)
	<-s.done
	s.broadcaster.Close()
}

func (s *Server) SetSize(width, height int) {
	s.mu.Lock()
	s.width, s.height = width, height
	s.mu.Unlock()
	log.Debug("Frame size %dx%d", width, height)
}

// Size returns the most recent frame size.
func (s *Server) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// RenderFrame queues a copy of f for encoding, replacing any frame still
// waiting. Frames beyond MaxFPS are skipped.
func (s *Server) RenderFrame(f *capture.VideoFrame) {
	if s.broadcaster.Len() == 0 {
		return
	}

	s.mu.Lock()
	if s.cfg.MaxFPS > 0 {
		now := time.Now()
		if now.Sub(s.lastSent) < time.Second/time.Duration(s.cfg.MaxFPS) {
			s.mu.Unlock()
			return
		}
		s.lastSent = now
	}
	s.mu.Unlock()

	frame := f.Clone()
	for {
		select {
		case s.latest <- frame:
			return
		default:
		}
		select {
		case <-s.latest:
		default:
		}
	}
}

func (s *Server) encodeLoop() {
	defer close(s.done)

	var buf bytes.Buffer
	for {
		select {
		case <-s.quit:
			return
		case f := <-s.latest:
			buf.Reset()
			if err := jpeg.Encode(&buf, f.Image, &jpeg.Options{Quality: s.cfg.Quality}); err != nil {
				log.Warn("encode: %v", err)
				continue
			}
			s.broadcaster.Write(append([]byte(nil), buf.Bytes()...))
		}
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("upgrade: %v", err)
		return
	}
	defer ws.Close()

	frames := s.broadcaster.Subscribe(s.cfg.Backlog)
	defer s.broadcaster.Unsubscribe(frames)
	log.Info("Preview client connected from %s", r.RemoteAddr)

	// Clients send nothing; reading detects when they go away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := ws.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			log.Info("Preview client %s disconnected", r.RemoteAddr)
			return
		case p, ok := <-frames:
			if !ok {
				ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := ws.WriteMessage(websocket.BinaryMessage, p); err != nil {
				log.Warn("write to %s: %v", r.RemoteAddr, err)
				return
			}
		}
	}
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>Preview</title></head>
<body style="margin:0;background:#000">
<img id="frame" style="display:block;margin:auto;max-width:100%">
<script>
const img = document.getElementById("frame");
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.binaryType = "blob";
ws.onmessage = (e) => {
  const url = URL.createObjectURL(e.data);
  img.onload = () => URL.revokeObjectURL(url);
  img.src = url;
};
</script>
</body>
</html>
`
