// Package web provides the real-time dashboard server: REST status
// endpoints plus websocket streams for poses and rendered viewport
// frames.
package web

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/dgavriloff/go-portal/internal/log"
	"github.com/dgavriloff/go-portal/pkg/headtrack"
	"github.com/dgavriloff/go-portal/pkg/hub"
	"github.com/dgavriloff/go-portal/pkg/viewport"
)

// frameJPEGQuality balances stream bandwidth against artifacting on the
// thin wireframe lines.
const frameJPEGQuality = 80

// view couples a viewport with its frame stream hub.
type view struct {
	vp     *viewport.Viewport
	frames *hub.Hub
}

// Server is the dashboard server.
type Server struct {
	app         *fiber.App
	port        string
	broadcaster *headtrack.Broadcaster

	poseHub *hub.Hub

	mu    sync.RWMutex
	views map[string]*view

	unsubscribe func()
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewServer creates a dashboard server bound to one broadcaster. Stream
// hubs run from the moment they exist, so viewports may be attached
// before or after Start.
func NewServer(port string, broadcaster *headtrack.Broadcaster) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		port:        port,
		broadcaster: broadcaster,
		poseHub:     hub.New("pose"),
		views:       make(map[string]*view),
		ctx:         ctx,
		cancel:      cancel,
	}
	go s.poseHub.Run(ctx)

	app := fiber.New(fiber.Config{
		AppName:               "go-portal",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/viewports", s.handleViewports)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/pose", websocket.New(s.handlePoseWS))
	app.Get("/ws/view/:id", websocket.New(s.handleViewWS))

	s.app = app
	return s
}

// AttachViewport registers a viewport and wires its surface so every
// presented frame is JPEG-encoded and broadcast to stream clients. The
// frame hub starts immediately; attaching while the server is already
// serving is fine.
func (s *Server) AttachViewport(vp *viewport.Viewport, surface *viewport.ImageSurface) {
	frames := hub.New("view:" + vp.Name())
	go frames.Run(s.ctx)

	surface.SetHandler(func(img *image.RGBA) {
		if frames.ClientCount() == 0 {
			return
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: frameJPEGQuality}); err != nil {
			log.Warn("frame encode failed", "viewport", vp.Name(), "error", err)
			return
		}
		frames.BroadcastBinary(buf.Bytes())
	})

	s.mu.Lock()
	s.views[vp.ID()] = &view{vp: vp, frames: frames}
	s.mu.Unlock()
}

// Start subscribes the pose stream and serves until the listener fails
// or Shutdown is called.
func (s *Server) Start() error {
	s.unsubscribe = s.broadcaster.Subscribe(func(p headtrack.Pose) {
		s.poseHub.BroadcastJSON(p)
	})

	log.Info("dashboard listening", "addr", "http://localhost:"+s.port)
	return s.app.Listen(":" + s.port)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("dashboard server stopped", "error", err)
		}
	}()
}

// Shutdown stops the listener and all stream hubs.
func (s *Server) Shutdown() error {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return s.app.Shutdown()
}
