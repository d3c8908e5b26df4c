package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SSEHandler streams bulk progress for one request as "progress" events.
func (h *Handler) SSEHandler(c *gin.Context) {
	requestID := c.Param("request_id")
	if requestID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "request_id is required",
		})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	client := h.Hub.Register(requestID)
	defer h.Hub.Unregister(requestID, client)

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-client.Channel:
			if !ok {
				return false
			}
			c.SSEvent("progress", msg)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
