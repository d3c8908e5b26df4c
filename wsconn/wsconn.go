package wsconn

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	PingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSConnection serializes writes to a gorilla connection.
type WSConnection struct {
	Conn *websocket.Conn
	Lock sync.Mutex
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	return &WSConnection{Conn: conn}
}

func Upgrade(w http.ResponseWriter, r *http.Request) (*WSConnection, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	return NewWSConnection(conn), nil
}

func (ws *WSConnection) SendJSON(data interface{}) error {
	ws.Lock.Lock()
	defer ws.Lock.Unlock()

	ws.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := ws.Conn.WriteJSON(data)
	if err != nil {
		log.Printf("Error sending JSON over WebSocket: %v", err)
	}
	return err
}

func (ws *WSConnection) Ping() error {
	ws.Lock.Lock()
	defer ws.Lock.Unlock()
	return ws.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait))
}

func (ws *WSConnection) Close() {
	ws.Lock.Lock()
	defer ws.Lock.Unlock()
	if ws.Conn != nil {
		_ = ws.Conn.Close()
	}
}

// GracefulClose sends a normal closure frame before closing.
func (ws *WSConnection) GracefulClose() {
	ws.Lock.Lock()
	_ = ws.Conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(2*time.Second),
	)
	ws.Lock.Unlock()
	ws.Close()
}

// Listen drains client frames until the peer goes away, then closes gone.
func (ws *WSConnection) Listen(requestID string, gone chan<- struct{}) {
	defer close(gone)

	for {
		_, p, err := ws.Conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("WebSocket closed by client | RequestID: %s", requestID)
			} else {
				log.Printf("WebSocket read stopped | RequestID: %s | Error: %v", requestID, err)
			}
			return
		}

		log.Printf("Message from client [%s]: %s", requestID, string(p))
	}
}
