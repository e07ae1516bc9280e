package handlers

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tribehq/tribemail/internal/mail"
	"github.com/tribehq/tribemail/internal/pipeline"
)

// SignatureHeader carries the HMAC-SHA256 hex digest of the raw request
// body, computed by the inbound-parse provider with the shared secret.
const SignatureHeader = "X-Webhook-Signature"

const requestTimeout = 30 * time.Second

// InboundWebhookHandler receives inbound-parse webhook calls and feeds
// them through the processing pipeline.
type InboundWebhookHandler struct {
	verifier *mail.Verifier
	router   *pipeline.Router
	logger   *slog.Logger
}

func NewInboundWebhookHandler(log *slog.Logger, verifier *mail.Verifier, router *pipeline.Router) *InboundWebhookHandler {
	return &InboundWebhookHandler{
		verifier: verifier,
		router:   router,
		logger:   log.With(slog.String("handler", "inbound_webhook")),
	}
}

func (h *InboundWebhookHandler) Register(e *echo.Echo) {
	e.POST("/webhooks/inbound-email", h.Handle)
	e.OPTIONS("/webhooks/inbound-email", h.HandlePreflight)
}

type webhookResponse struct {
	Success  bool   `json:"success"`
	Type     string `json:"type,omitempty"`
	EntityID string `json:"entity_id,omitempty"`
	Error    string `json:"error,omitempty"`
	Details  string `json:"details,omitempty"`
}

// HandlePreflight answers CORS preflight with permissive headers.
func (h *InboundWebhookHandler) HandlePreflight(c echo.Context) error {
	header := c.Response().Header()
	header.Set(echo.HeaderAccessControlAllowOrigin, "*")
	header.Set(echo.HeaderAccessControlAllowMethods, "POST, OPTIONS")
	header.Set(echo.HeaderAccessControlAllowHeaders, "Content-Type, "+SignatureHeader)
	return c.NoContent(http.StatusOK)
}

// Handle godoc
// @Summary Inbound email webhook
// @Description Receives parsed inbound email, creating a memory or threading a response
// @Tags inbound
// @Accept multipart/form-data
// @Success 200 {object} webhookResponse
// @Failure 400 {object} webhookResponse
// @Failure 401 {object} webhookResponse
// @Failure 500 {object} webhookResponse
// @Router /webhooks/inbound-email [post]
func (h *InboundWebhookHandler) Handle(c echo.Context) error {
	req := c.Request()

	// The signature covers the raw body, so it is read and verified
	// before any business parsing happens.
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, webhookResponse{
			Success: false,
			Error:   "Unreadable request body",
			Type:    string(pipeline.KindUnknown),
		})
	}
	if err := h.verifier.Verify(body, req.Header.Get(SignatureHeader)); err != nil {
		h.logger.Warn("webhook signature rejected", slog.Any("error", err))
		return c.JSON(http.StatusUnauthorized, webhookResponse{
			Success: false,
			Error:   "Invalid signature",
		})
	}

	req.Body = io.NopCloser(bytes.NewReader(body))
	if err := req.ParseMultipartForm(64 << 20); err != nil {
		if err := req.ParseForm(); err != nil {
			return c.JSON(http.StatusBadRequest, webhookResponse{
				Success: false,
				Error:   "Unparseable form body",
				Type:    string(pipeline.KindUnknown),
			})
		}
	}

	in := mail.ParseForm(h.logger, req.Form)
	if in.To == "" || in.From == "" {
		return c.JSON(http.StatusBadRequest, webhookResponse{
			Success: false,
			Error:   "Missing to or from address",
			Type:    string(pipeline.KindUnknown),
		})
	}

	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	outcome, err := h.router.Route(ctx, in)
	if err != nil {
		h.logger.Error("pipeline failure",
			slog.String("to", in.To),
			slog.String("from", in.From),
			slog.Any("error", err))
		return c.JSON(http.StatusInternalServerError, webhookResponse{
			Success: false,
			Error:   "Internal server error",
			Details: "pipeline_failure",
		})
	}
	if !outcome.Success {
		return c.JSON(http.StatusBadRequest, webhookResponse{
			Success: false,
			Error:   outcome.Reason,
			Type:    string(outcome.Kind),
		})
	}

	return c.JSON(http.StatusOK, webhookResponse{
		Success:  true,
		Type:     string(outcome.Kind),
		EntityID: outcome.EntityID,
	})
}
