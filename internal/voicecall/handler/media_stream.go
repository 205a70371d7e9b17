package handler

import (
	"errors"

	"voice-bridge/internal/callregistry"
	"voice-bridge/internal/observability"
	"voice-bridge/internal/voice/wsconn"

	"github.com/gin-gonic/gin"
)

// HandleMediaStream upgrades the provider's media stream connection and
// bridges it until the call ends.
func (h *Handler) HandleMediaStream(c *gin.Context) {
	ctx := c.Request.Context()

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written an HTTP error
		h.logger.Error(ctx, "media stream upgrade failed", err)
		return
	}

	h.logger.Info(ctx, "media stream connection accepted",
		observability.Field{Key: "remote_addr", Value: observability.GetRealClientIP(c)})

	conn := wsconn.New(ws, wsconn.Options{ReadTimeout: h.opts.ReadTimeout})
	if err := h.processor.ServeMediaStream(ctx, conn); err != nil {
		if errors.Is(err, callregistry.ErrCapacityReached) {
			return
		}
		h.logger.Error(ctx, "media stream ended with error", err)
	}
}
