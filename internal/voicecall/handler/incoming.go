package handler

import (
	"fmt"
	"net/http"
	"strings"

	"voice-bridge/internal/apierrors"
	"voice-bridge/internal/observability"
	"voice-bridge/internal/voicecall/twilio"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// IncomingCallRequest is the subset of the call webhook parameters the
// bridge uses. Twilio sends them as a form on POST and a query on GET.
type IncomingCallRequest struct {
	CallSid    string `form:"CallSid" binding:"omitempty,startswith=CA"`
	AccountSid string `form:"AccountSid" binding:"omitempty,startswith=AC"`
	From       string `form:"From" binding:"omitempty,max=64"`
	To         string `form:"To" binding:"omitempty,max=64"`
}

// HandleIncomingCall answers the call-control webhook with markup that
// connects the call's audio to the media stream endpoint.
func (h *Handler) HandleIncomingCall(c *gin.Context) {
	ctx := c.Request.Context()

	var req IncomingCallRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}

	if req.CallSid != "" {
		ctx = observability.WithFields(ctx, observability.Field{Key: "call_sid", Value: req.CallSid})
	}

	parameters := map[string]string{}
	if req.CallSid != "" {
		parameters["callSid"] = req.CallSid
	}
	if req.From != "" {
		parameters["from"] = req.From
	}

	markup, err := twilio.BuildStreamTwiML(h.opts.Greeting, h.opts.StreamURL, parameters)
	if err != nil {
		apierrors.RespondWithError(c, fmt.Errorf("failed to build twiml: %w", err))
		return
	}

	h.logger.Info(ctx, "answering incoming call", observability.Field{Key: "stream_url", Value: h.opts.StreamURL})
	c.Data(http.StatusOK, "text/xml; charset=utf-8", []byte(markup))
}

// ValidateSignature rejects webhook requests and media stream upgrades that
// are not signed with the account auth token. It is a no-op when validation
// is disabled.
func (h *Handler) ValidateSignature(c *gin.Context) {
	if h.opts.Signatures == nil {
		c.Next()
		return
	}

	if err := c.Request.ParseForm(); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}
	params := make(map[string]string, len(c.Request.PostForm))
	for k, v := range c.Request.PostForm {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}

	url := h.signedBaseURL(c.Request) + c.Request.URL.RequestURI()
	if err := h.opts.Signatures.Validate(url, params, c.GetHeader("X-Twilio-Signature")); err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	c.Next()
}

// signedBaseURL is the base Twilio computed the signature over. Stream
// upgrades are signed against the websocket URL, webhooks against PublicURL.
func (h *Handler) signedBaseURL(r *http.Request) string {
	base := h.opts.PublicURL
	if !websocket.IsWebSocketUpgrade(r) {
		return base
	}
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base
}
