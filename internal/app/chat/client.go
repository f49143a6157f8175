/*
Package chat contains the core logic of the presence and delivery subsystem.

This file defines the Client struct, representing one authenticated WebSocket
connection. It manages the connection's lifecycle, the message communication
loops (ReadPump and WritePump), and the presence bookkeeping on disconnect.
*/
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"pairchat/internal/app/user"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 8192

	// MaxContentBytes is the maximum allowed size (in bytes) for message text.
	MaxContentBytes = 5000
)

// Client represents an active WebSocket connection and its authenticated user.
type Client struct {
	// connID uniquely identifies this connection; presence entries are keyed
	// against it so stale disconnects cannot clear a successor's entry.
	connID string

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// the verified identity this connection belongs to.
	user user.User

	// delivery runs the send pipeline for inbound messages.
	delivery *Delivery

	// presence is the registry this connection registers with.
	presence Registry

	// a buffered channel used to queue frames waiting to be sent to the client.
	send chan []byte

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded, authenticated connection.
func NewClient(connID string, wsConn *websocket.Conn, u user.User, delivery *Delivery, presence Registry) *Client {
	clientLogger := logx.Logger().With().
		Str("user_id", u.ID).
		Str("connection_id", connID).
		Logger()

	return &Client{
		connID:   connID,
		conn:     wsConn,
		user:     u,
		delivery: delivery,
		presence: presence,
		send:     make(chan []byte, 256),
		logger:   clientLogger,
	}
}

// ConnectionID implements Conn.
func (c *Client) ConnectionID() string {
	return c.connID
}

// Enqueue implements Conn. It queues a frame without blocking; a full queue
// drops the frame and returns an error.
func (c *Client) Enqueue(frame []byte) error {
	select {
	case c.send <- frame:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping frame")
		return fmt.Errorf("client send queue full")
	}
}

// ReadPump handles reading events from the WebSocket connection.
// Events from a single connection are processed sequentially in arrival order,
// which preserves the per-connection send ordering guarantee. It handles
// heartbeats (Pong) and performs presence cleanup upon connection closure.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		c.processInboundFrame(frame)
	}
}

// cleanupOnDisconnect clears the presence entry (only if this connection still
// owns it) and closes the underlying connection.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.presence.ClearConnection(c.user.ID, c.connID)

	if err := c.conn.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Client connection close error")
	}
}

// processInboundFrame handles one raw frame received from the client.
func (c *Client) processInboundFrame(frame []byte) {
	var envelope Envelope
	if err := json.Unmarshal(frame, &envelope); err != nil {
		c.logger.Warn().Err(err).
			Bytes("frame", frame).
			Msg("Client sent invalid JSON")
		return
	}

	switch envelope.Type {
	case TypeSendMessage:
		c.handleSendMessage(envelope.Payload)

	default:
		c.logger.Warn().Str("event_type", string(envelope.Type)).Msg("Client sent unsupported event type")
	}
}

// handleSendMessage validates an inbound send and hands it to the delivery engine.
func (c *Client) handleSendMessage(payloadBytes json.RawMessage) {
	var payload SendPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid sendMessage payload")
		return
	}

	if len(payload.Text) > MaxContentBytes {
		c.SendError(errs.NewError(errs.ErrMessageContentTooLong))
		return
	}

	c.delivery.Send(context.Background(), c, c.user.ID, payload)
}

// SendError constructs and sends a TypeError event to the client.
func (c *Client) SendError(err error) {
	var code int
	var message string

	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		code = customErr.Code
		message = customErr.Message
	} else {
		code = errs.ErrUnknown
		message = fmt.Sprintf("Internal server error: %v", err)
	}

	frame, buildErr := NewEvent(TypeError, ErrorPayload{
		Code:    code,
		Message: message,
	})
	if buildErr != nil {
		c.logger.Error().Err(buildErr).Msg("Failed to build error event")
		return
	}

	if err := c.Enqueue(frame); err != nil {
		c.logger.Error().Err(err).Msg("Failed to queue error event")
	}
}

// WritePump handles writing frames from the Client.send channel to the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueuedFrame(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one frame pulled from the send channel to the WebSocket.
// Returns true if the WritePump loop should continue, false if it should terminate.
func (c *Client) writeQueuedFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Error().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Error().Err(err).Msg("Error writing frame")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the connection heartbeat.
// Returns false if the WritePump loop should terminate due to write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// CloseGracefully sends a WebSocket Close frame with the given reason and closes
// the connection. Used during server shutdown.
func (c *Client) CloseGracefully(reason string) {
	closeMessage := websocket.FormatCloseMessage(websocket.CloseGoingAway, reason)

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(websocket.CloseMessage, closeMessage); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to send close frame during shutdown.")
	}

	if err := c.conn.Close(); err != nil {
		c.logger.Warn().Err(err).Msg("Connection close error during shutdown.")
	}
}
