package controllers

import (
	"net/http"

	"commentflow/engine"

	"github.com/gin-gonic/gin"
)

// GET /api/webhook
func WebhookVerify(gw *engine.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		challenge, err := gw.VerifySubscription(
			c.Query("hub.mode"),
			c.Query("hub.verify_token"),
			c.Query("hub.challenge"),
		)
		if err != nil {
			RespondErr(c, err)
			return
		}
		c.String(http.StatusOK, "%s", challenge)
	}
}

// POST /api/webhook
// Answers as soon as the payload is accepted; matched automations run on
// the gateway's runner.
func WebhookUpdate(gw *engine.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Read raw body once so we can validate the signature.
		raw, err := c.GetRawData()
		if err != nil {
			RespondError(c, "failed to read body", http.StatusBadRequest)
			return
		}

		if err := gw.VerifySignature(c.GetHeader(engine.SignatureHeader), raw); err != nil {
			RespondErr(c, err)
			return
		}

		status, err := gw.HandlePayload(c.Request.Context(), raw)
		if err != nil {
			RespondErr(c, err)
			return
		}
		c.String(status, "EVENT_RECEIVED")
	}
}
