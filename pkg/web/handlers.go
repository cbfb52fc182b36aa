package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/dgavriloff/go-portal/pkg/hub"
)

// viewportInfo is the dashboard summary of one viewport.
type viewportInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	StreamClients int    `json:"stream_clients"`
	Disposed      bool   `json:"disposed"`
}

// handleStatus reports tracking state and the current pose.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.mu.RLock()
	count := len(s.views)
	s.mu.RUnlock()

	return c.JSON(fiber.Map{
		"tracking":     s.broadcaster.Running(),
		"pose":         s.broadcaster.Last(),
		"viewports":    count,
		"pose_clients": s.poseHub.ClientCount(),
	})
}

// handleViewports lists attached viewports.
func (s *Server) handleViewports(c *fiber.Ctx) error {
	s.mu.RLock()
	infos := make([]viewportInfo, 0, len(s.views))
	for id, v := range s.views {
		infos = append(infos, viewportInfo{
			ID:            id,
			Name:          v.vp.Name(),
			StreamClients: v.frames.ClientCount(),
			Disposed:      v.vp.Disposed(),
		})
	}
	s.mu.RUnlock()

	return c.JSON(infos)
}

// handlePoseWS streams pose updates as JSON messages.
func (s *Server) handlePoseWS(c *websocket.Conn) {
	client := hub.NewClient(s.poseHub, c)
	client.Run()
}

// handleViewWS streams one viewport's rendered frames as binary JPEG.
func (s *Server) handleViewWS(c *websocket.Conn) {
	id := c.Params("id")

	s.mu.RLock()
	v, ok := s.views[id]
	s.mu.RUnlock()
	if !ok {
		c.Close()
		return
	}

	client := hub.NewClient(v.frames, c)
	client.Run()
}
