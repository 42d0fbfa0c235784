package gateway

import (
	"context"
	"encoding/json"
	"sync/atomic"
	
	db "github.com/katatrina/gundam-notification/internal/db/sqlc"
	"github.com/katatrina/gundam-notification/internal/event"
	"github.com/katatrina/gundam-notification/internal/util"
	"github.com/rs/zerolog/log"
)

// State is the lifecycle stage of a connection.
type State int32

const (
	StateConnecting State = iota
	StateAuthenticating
	StateAuthenticated
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateDisconnected:
		return "disconnected"
	}
	return "unknown"
}

// Transport is one live, message-oriented connection to a client.
// ReadMessage is only called from one goroutine, WriteMessage from another.
type Transport interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	RemoteAddr() string
	Close() error
}

// Client is the gateway's view of one connection. Only the read loop
// changes recipientID; only the write loop touches the transport for writes.
type Client struct {
	id          string
	transport   Transport
	state       atomic.Int32
	recipientID string
	
	events  chan event.Event // pushes from the broker
	replies chan []byte      // responses from the read loop
}

func newClient(transport Transport, bufferSize int) *Client {
	c := &Client{
		id:        util.GenerateConnectionID(),
		transport: transport,
		events:    make(chan event.Event, bufferSize),
		replies:   make(chan []byte, bufferSize),
	}
	c.setState(StateConnecting)
	return c
}

func (c *Client) State() State {
	return State(c.state.Load())
}

func (c *Client) setState(s State) {
	c.state.Store(int32(s))
}

// reply queues a response. It gives up when the connection is gone, in which
// case the response is discarded.
func (c *Client) reply(ctx context.Context, msgType string, data interface{}) {
	payload, err := json.Marshal(outboundMessage{Type: msgType, Data: data})
	if err != nil {
		log.Error().Err(err).Str("conn_id", c.id).Str("type", msgType).Msg("failed to encode response")
		return
	}
	
	select {
	case c.replies <- payload:
	case <-ctx.Done():
	}
}

func (c *Client) replyError(ctx context.Context, message string) {
	c.reply(ctx, ResponseError, ErrorPayload{Message: message})
}

// writeLoop drains replies and pushes into the transport until ctx is done
// or a write fails.
func (c *Client) writeLoop(ctx context.Context) {
	events := c.events
	
	for {
		var payload []byte
		
		select {
		case <-ctx.Done():
			return
		case payload = <-c.replies:
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			payload = c.encodePush(ev)
			if payload == nil {
				continue
			}
		}
		
		if err := c.transport.WriteMessage(payload); err != nil {
			log.Debug().Err(err).Str("conn_id", c.id).Msg("failed to write to connection")
			return
		}
	}
}

func (c *Client) encodePush(ev event.Event) []byte {
	if ev.Type != event.EventTypeNewNotification {
		return nil
	}
	
	notification, ok := ev.Data.(db.Notification)
	if !ok {
		log.Warn().Str("conn_id", c.id).Msgf("unexpected event data %T", ev.Data)
		return nil
	}
	
	payload, err := json.Marshal(outboundMessage{
		Type: ResponseNewNotification,
		Data: NewNotificationPayload{Item: NewNotificationItem(notification)},
	})
	if err != nil {
		log.Error().Err(err).Str("conn_id", c.id).Msg("failed to encode push")
		return nil
	}
	return payload
}
