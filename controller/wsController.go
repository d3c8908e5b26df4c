package controllers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"webdl/wsconn"
)

// WebSocketHandler mirrors SSEHandler over a websocket. The socket is closed
// normally once the bulk run for request_id has finished.
func (h *Handler) WebSocketHandler(c *gin.Context) {
	requestID := c.Param("request_id")
	if requestID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request_id is required"})
		return
	}

	ws, err := wsconn.Upgrade(c.Writer, c.Request)
	if err != nil {
		log.Printf("[WsController] Upgrade failed: %v", err)
		return
	}

	client := h.Hub.Register(requestID)
	defer h.Hub.Unregister(requestID, client)

	gone := make(chan struct{})
	go ws.Listen(requestID, gone)

	pingTicker := time.NewTicker(wsconn.PingPeriod)
	defer pingTicker.Stop()

	log.Printf("[WsController] Connected | %s", requestID)

	for {
		select {
		case msg, ok := <-client.Channel:
			if !ok {
				ws.GracefulClose()
				log.Printf("[WsController] Bulk finished, connection closed | %s", requestID)
				return
			}
			if err := ws.SendJSON(msg); err != nil {
				ws.Close()
				return
			}
		case <-pingTicker.C:
			if err := ws.Ping(); err != nil {
				ws.Close()
				return
			}
		case <-gone:
			ws.Close()
			log.Printf("[WsController] Client left | %s", requestID)
			return
		}
	}
}
