package gateway

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/go-pepper/internal/log"
	"github.com/teslashibe/go-pepper/pkg/protocol"
)

// Server exposes the teleop websocket endpoint and a health probe.
type Server struct {
	app    *fiber.App
	router *Router
}

// NewServer builds the fiber app around the router.
func NewServer(router *Router) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	s := &Server{app: app, router: router}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/teleop", websocket.New(s.handleTeleop))

	return s
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	log.Info("gateway listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// handleTeleop runs one operator session: read, parse, route. When the
// socket drops for any reason the robot is halted.
func (s *Server) handleTeleop(c *websocket.Conn) {
	logger := log.With("session", uuid.NewString())
	logger.Info("operator connected", "remote", c.RemoteAddr().String())

	defer func() {
		logger.Info("operator disconnected")
		s.router.OnDisconnect()
	}()

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			logger.Debug("operator read ended", "error", err)
			return
		}
		msg, err := protocol.ParseMessage(data)
		if err != nil {
			logger.Warn("unparseable command", "error", err)
			continue
		}
		s.router.Handle(msg)
	}
}
