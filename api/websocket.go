package api

import (
	"net/http"
	"slices"
	"sync"
	"time"
	
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/katatrina/gundam-notification/internal/gateway"
	"github.com/rs/zerolog/log"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	
	maxMessageSize = 4096
)

// wsTransport adapts a gorilla connection to gateway.Transport and keeps it
// alive with pings.
type wsTransport struct {
	conn      *websocket.Conn
	done      chan struct{}
	closeOnce sync.Once
}

func newWSTransport(conn *websocket.Conn) *wsTransport {
	t := &wsTransport{
		conn: conn,
		done: make(chan struct{}),
	}
	
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	
	go t.pingLoop()
	return t
}

func (t *wsTransport) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	
	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			// WriteControl may run concurrently with WriteMessage.
			if err := t.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				t.Close()
				return
			}
		}
	}
}

func (t *wsTransport) ReadMessage() ([]byte, error) {
	_, data, err := t.conn.ReadMessage()
	return data, err
}

func (t *wsTransport) WriteMessage(data []byte) error {
	t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *wsTransport) RemoteAddr() string {
	return t.conn.RemoteAddr().String()
}

func (t *wsTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		t.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		err = t.conn.Close()
	})
	return err
}

var _ gateway.Transport = (*wsTransport)(nil)

//	@Summary		Open the realtime notification connection
//	@Description	Upgrades to a WebSocket. The first message must be {"type":"authenticate","data":{"recipientId":"...","token":"..."}}.
//	@Tags			notifications
//	@Success		101	"Switching protocols"
//	@Router			/v1/ws [get]
func (server *Server) serveWebSocket(c *gin.Context) {
	conn, err := server.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	
	transport := newWSTransport(conn)
	defer transport.Close()
	
	server.gateway.Serve(c.Request.Context(), transport)
}

func (server *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return slices.Contains(server.config.AllowedOrigins, "*") || slices.Contains(server.config.AllowedOrigins, origin)
}
