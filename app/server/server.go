// Package server exposes the chat workflow over HTTP.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/config"
	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/service/chat"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/samber/do"
)

const shutdownTimeout = 5 * time.Second

type ChatProcessor interface {
	ProcessMessage(ctx context.Context, conversationID, message string) *chat.Result
}

type Service struct {
	app     *fiber.App
	chatSvc ChatProcessor
	listen  string
}

type chatRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

type chatResponse struct {
	ConversationID string              `json:"conversation_id"`
	Response       string              `json:"response"`
	DetectedTerms  map[string][]string `json:"detected_terms,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)
	chatSvc := do.MustInvoke[*chat.Service](di)

	return newService(cfg.Server.Listen, chatSvc), nil
}

func newService(listen string, chatSvc ChatProcessor) *Service {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Service{
		app:     app,
		chatSvc: chatSvc,
		listen:  listen,
	}

	app.Get("/health", s.handleHealth)
	app.Post("/api/chat", s.handleChat)

	return s
}

func (s *Service) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Service) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{
			Error: "invalid request body",
		})
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	result := s.chatSvc.ProcessMessage(c.UserContext(), conversationID, req.Message)

	if result.ErrorMessage != "" {
		status := fiber.StatusBadGateway
		if result.ErrorKind == chat.KindMalformedInput {
			status = fiber.StatusBadRequest
		}

		return c.Status(status).JSON(errorResponse{
			Error: result.ErrorMessage,
			Kind:  string(result.ErrorKind),
		})
	}

	return c.JSON(chatResponse{
		ConversationID: result.ConversationID,
		Response:       result.Response,
		DetectedTerms:  result.DetectedTerms,
	})
}

// Run serves until the context is cancelled, then shuts the listener down
// gracefully.
func (s *Service) Run(ctx context.Context) {
	go func() {
		if err := s.app.Listen(s.listen); err != nil {
			slog.Error("HTTP server stopped", "error", err)
		}
	}()

	slog.Info("HTTP server listening", "addr", s.listen)

	<-ctx.Done()

	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}
}
