package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/open-dream-studios/dev-cms-sub001/internal/calls"
	"github.com/open-dream-studios/dev-cms-sub001/internal/routing"
	"github.com/open-dream-studios/dev-cms-sub001/internal/telephony"
	"github.com/open-dream-studios/dev-cms-sub001/pkg/logger"
)

// Provider webhook handlers.
//
// The contract with the provider is strict: these endpoints ALWAYS
// acknowledge. A failed inbound webhook would play an error tone to a live
// caller, and a failed status webhook would be retried forever. Internal
// problems are logged, never surfaced.

const twimlContentType = "text/xml; charset=utf-8"

// webhookAuthorized rejects forged webhooks when a signature validator is
// configured. A rejection is the one case where a webhook endpoint does not
// return 200: the request did not come from the provider at all.
func (h Handlers) webhookAuthorized(c *gin.Context) bool {
	if h.ValidateWebhook == nil || h.ValidateWebhook(c.Request) {
		return true
	}
	logger.FromGin(c).Warn("webhook signature rejected", "path", c.Request.URL.Path)
	c.AbortWithStatus(http.StatusForbidden)
	return false
}

// InboundVoice answers the provider's new-call webhook with a call-control
// document.
func (h Handlers) InboundVoice(c *gin.Context) {
	if !h.webhookAuthorized(c) {
		return
	}
	log := logger.FromGin(c)
	ctx := logger.With(c.Request.Context(), log)

	form, err := telephony.ParseInboundCall(c.Request)
	if err != nil {
		log.Warn("malformed inbound-voice webhook", "err", err)
		c.Data(http.StatusOK, twimlContentType,
			[]byte(h.Router.Provider.UnavailableDocument("An application error has occurred. Goodbye.")))
		return
	}

	doc := h.Router.RouteInboundCall(ctx, routing.InboundCall{
		CallSID: form.CallSID,
		From:    form.From,
		To:      form.To,
	})
	c.Data(http.StatusOK, twimlContentType, []byte(doc))
}

// StatusCallback feeds per-leg call-status events into the state machine.
func (h Handlers) StatusCallback(c *gin.Context) {
	if !h.webhookAuthorized(c) {
		return
	}
	log := logger.FromGin(c)
	ctx := logger.With(c.Request.Context(), log)

	form, err := telephony.ParseStatusCallback(c.Request)
	if err != nil {
		log.Warn("malformed status webhook", "err", err)
		c.String(http.StatusOK, "ok")
		return
	}

	h.Lifecycle.HandleStatus(ctx, calls.StatusEvent{
		LegSID:       form.CallSID,
		ParentSID:    form.ParentCallSID,
		Status:       form.CallStatus,
		From:         form.From,
		To:           form.To,
		Called:       form.Called,
		RecordingURL: form.RecordingURL,
	})
	c.String(http.StatusOK, "ok")
}

// RecordingCallback acknowledges recording notifications. The recording URL
// that matters for clients arrives on the terminal status event; this hook
// exists so the provider has somewhere to deliver, and for audit logs.
func (h Handlers) RecordingCallback(c *gin.Context) {
	if !h.webhookAuthorized(c) {
		return
	}
	log := logger.FromGin(c)
	if err := c.Request.ParseForm(); err == nil {
		log.Info("call recording available",
			"call_sid", c.Request.PostFormValue("CallSid"),
			"recording_sid", c.Request.PostFormValue("RecordingSid"),
			"recording_url", c.Request.PostFormValue("RecordingUrl"),
			"duration", c.Request.PostFormValue("RecordingDuration"),
		)
	}
	c.String(http.StatusOK, "ok")
}
