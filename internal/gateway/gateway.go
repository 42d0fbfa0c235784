package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	
	db "github.com/katatrina/gundam-notification/internal/db/sqlc"
	"github.com/katatrina/gundam-notification/internal/event"
	"github.com/katatrina/gundam-notification/internal/notification"
	"github.com/katatrina/gundam-notification/internal/token"
	"github.com/rs/zerolog/log"
)

var (
	ErrAuth             = errors.New("authentication failed")
	ErrValidation       = errors.New("invalid request")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrTooManyAttempts  = errors.New("too many failed authentication attempts")
)

const defaultSendBufferSize = 32

// NotificationService is what the gateway needs from the notification layer.
type NotificationService interface {
	ListForRecipient(ctx context.Context, recipientID string, limit, offset int32) ([]db.Notification, error)
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, recipientID string, notificationID int64) (db.Notification, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
}

// AuthLimiter throttles failed authenticate attempts per remote host.
type AuthLimiter interface {
	Allow(ctx context.Context, identifier string) (bool, error)
	RecordFailure(ctx context.Context, identifier string) error
	Reset(ctx context.Context, identifier string) error
}

// Gateway runs the authenticate/request/push protocol over live connections.
type Gateway struct {
	service        NotificationService
	verifier       token.Verifier
	broker         event.EventSender
	limiter        AuthLimiter
	sendBufferSize int
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithAuthLimiter enables throttling of failed authenticate attempts.
func WithAuthLimiter(limiter AuthLimiter) Option {
	return func(g *Gateway) {
		g.limiter = limiter
	}
}

// WithSendBufferSize sets how many outbound messages a connection may queue.
func WithSendBufferSize(size int) Option {
	return func(g *Gateway) {
		if size > 0 {
			g.sendBufferSize = size
		}
	}
}

func New(service NotificationService, verifier token.Verifier, broker event.EventSender, opts ...Option) *Gateway {
	g := &Gateway{
		service:        service,
		verifier:       verifier,
		broker:         broker,
		sendBufferSize: defaultSendBufferSize,
	}
	
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Serve runs one connection until the transport closes or ctx is cancelled.
// Requests are handled in arrival order.
func (g *Gateway) Serve(ctx context.Context, transport Transport) {
	c := newClient(transport, g.sendBufferSize)
	
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writeLoop(ctx)
		// Unblocks ReadMessage when the writer stops first.
		cancel()
		transport.Close()
	}()
	
	c.setState(StateAuthenticating)
	log.Debug().Str("conn_id", c.id).Str("remote_addr", transport.RemoteAddr()).Msg("connection opened")
	
	for {
		data, err := transport.ReadMessage()
		if err != nil {
			break
		}
		g.handleMessage(ctx, c, data)
	}
	
	g.disconnect(c)
	cancel()
	<-writerDone
}

func (g *Gateway) disconnect(c *Client) {
	if c.recipientID != "" {
		g.broker.Unregister(event.RecipientTopic(c.recipientID), c.events)
	}
	c.setState(StateDisconnected)
	
	log.Debug().Str("conn_id", c.id).Str("recipient_id", c.recipientID).Msg("connection closed")
}

func (g *Gateway) handleMessage(ctx context.Context, c *Client, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
		c.replyError(ctx, fmt.Sprintf("%s: malformed message", ErrValidation))
		return
	}
	
	if msg.Type == RequestAuthenticate {
		g.handleAuthenticate(ctx, c, msg.Data)
		return
	}
	
	if c.State() != StateAuthenticated {
		c.replyError(ctx, ErrNotAuthenticated.Error())
		return
	}
	
	switch msg.Type {
	case RequestGetNotifications:
		g.handleGetNotifications(ctx, c, msg.Data)
	case RequestMarkRead:
		g.handleMarkRead(ctx, c, msg.Data)
	case RequestMarkAllRead:
		g.handleMarkAllRead(ctx, c)
	default:
		c.replyError(ctx, fmt.Sprintf("%s: unknown message type %q", ErrValidation, msg.Type))
	}
}

func decodeData(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}
	return nil
}

func (g *Gateway) handleAuthenticate(ctx context.Context, c *Client, raw json.RawMessage) {
	req := new(AuthenticateRequest)
	if err := decodeData(raw, req); err != nil {
		c.replyError(ctx, err.Error())
		return
	}
	if req.Token == "" {
		c.replyError(ctx, fmt.Sprintf("%s: token is required", ErrValidation))
		return
	}
	
	host := remoteHost(c.transport.RemoteAddr())
	if !g.allowAttempt(ctx, host) {
		c.replyError(ctx, ErrTooManyAttempts.Error())
		return
	}
	
	recipientID, err := g.verifier.VerifyRecipient(ctx, req.Token)
	if err == nil && req.RecipientID != "" && req.RecipientID != recipientID {
		err = errors.New("token does not belong to the claimed recipient")
	}
	if err == nil && c.recipientID != "" && c.recipientID != recipientID {
		err = errors.New("connection is already authenticated as another recipient")
	}
	if err != nil {
		g.recordFailure(ctx, host)
		log.Info().Err(err).Str("conn_id", c.id).Str("remote_addr", host).Msg("authentication rejected")
		c.replyError(ctx, fmt.Sprintf("%s: %s", ErrAuth, err))
		return
	}
	
	g.resetAttempts(ctx, host)
	
	if c.recipientID == "" {
		c.recipientID = recipientID
		g.broker.Register(event.RecipientTopic(recipientID), c.events)
		c.setState(StateAuthenticated)
		log.Info().Str("conn_id", c.id).Str("recipient_id", recipientID).Msg("connection authenticated")
	}
	
	g.replyUnreadCount(ctx, c)
}

func (g *Gateway) allowAttempt(ctx context.Context, host string) bool {
	if g.limiter == nil {
		return true
	}
	
	allowed, err := g.limiter.Allow(ctx, host)
	if err != nil {
		log.Error().Err(err).Str("remote_addr", host).Msg("failed to check authentication attempts")
		return true
	}
	return allowed
}

func (g *Gateway) recordFailure(ctx context.Context, host string) {
	if g.limiter == nil {
		return
	}
	if err := g.limiter.RecordFailure(ctx, host); err != nil {
		log.Error().Err(err).Str("remote_addr", host).Msg("failed to record authentication failure")
	}
}

func (g *Gateway) resetAttempts(ctx context.Context, host string) {
	if g.limiter == nil {
		return
	}
	if err := g.limiter.Reset(ctx, host); err != nil {
		log.Error().Err(err).Str("remote_addr", host).Msg("failed to reset authentication attempts")
	}
}

func (g *Gateway) replyUnreadCount(ctx context.Context, c *Client) {
	count, err := g.service.UnreadCount(ctx, c.recipientID)
	if err != nil {
		log.Error().Err(err).Str("conn_id", c.id).Msg("failed to count unread notifications")
		c.replyError(ctx, "failed to count unread notifications")
		return
	}
	
	c.reply(ctx, ResponseUnreadCount, UnreadCountPayload{Count: count})
}

func (g *Gateway) handleGetNotifications(ctx context.Context, c *Client, raw json.RawMessage) {
	req := new(GetNotificationsRequest)
	if err := decodeData(raw, req); err != nil {
		c.replyError(ctx, err.Error())
		return
	}
	
	limit, offset := int32(notification.DefaultPageSize), int32(0)
	if req.Limit != nil {
		if *req.Limit <= 0 || *req.Limit > notification.MaxPageSize {
			c.replyError(ctx, fmt.Sprintf("%s: limit must be between 1 and %d", ErrValidation, notification.MaxPageSize))
			return
		}
		limit = *req.Limit
	}
	if req.Offset != nil {
		if *req.Offset < 0 {
			c.replyError(ctx, fmt.Sprintf("%s: offset must not be negative", ErrValidation))
			return
		}
		offset = *req.Offset
	}
	
	notifications, err := g.service.ListForRecipient(ctx, c.recipientID, limit, offset)
	if err != nil {
		log.Error().Err(err).Str("conn_id", c.id).Msg("failed to list notifications")
		c.replyError(ctx, "failed to list notifications")
		return
	}
	
	c.reply(ctx, ResponseNotificationsList, NotificationsListPayload{Items: NewNotificationItems(notifications)})
}

func (g *Gateway) handleMarkRead(ctx context.Context, c *Client, raw json.RawMessage) {
	req := new(MarkReadRequest)
	if err := decodeData(raw, req); err != nil {
		c.replyError(ctx, err.Error())
		return
	}
	if req.NotificationID <= 0 {
		c.replyError(ctx, fmt.Sprintf("%s: notificationId is required", ErrValidation))
		return
	}
	
	_, err := g.service.MarkRead(ctx, c.recipientID, req.NotificationID)
	if err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			c.replyError(ctx, err.Error())
			return
		}
		log.Error().Err(err).Str("conn_id", c.id).Int64("notification_id", req.NotificationID).Msg("failed to mark notification as read")
		c.replyError(ctx, "failed to mark notification as read")
		return
	}
	
	c.reply(ctx, ResponseMarkedRead, MarkedReadPayload{NotificationID: req.NotificationID})
	g.replyUnreadCount(ctx, c)
}

func (g *Gateway) handleMarkAllRead(ctx context.Context, c *Client) {
	if _, err := g.service.MarkAllRead(ctx, c.recipientID); err != nil {
		log.Error().Err(err).Str("conn_id", c.id).Msg("failed to mark all notifications as read")
		c.replyError(ctx, "failed to mark all notifications as read")
		return
	}
	
	c.reply(ctx, ResponseAllMarkedRead, AllMarkedReadPayload{})
	c.reply(ctx, ResponseUnreadCount, UnreadCountPayload{Count: 0})
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
