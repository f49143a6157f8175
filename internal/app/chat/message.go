/*
Package chat contains the core logic of the presence and delivery subsystem:
the presence registry, the per-socket client, and the delivery engine.

This file defines the WebSocket wire protocol: the event envelope exchanged on
an established connection and the payload structures for each event type.
*/
package chat

import (
	"encoding/json"
	"fmt"

	"pairchat/internal/app/store"
)

// EventType identifies the kind of event carried by an Envelope.
type EventType string

const (
	// TypeSendMessage is the inbound event a client emits to send a text to another user.
	TypeSendMessage EventType = "sendMessage"

	// TypeReceiveMessage is the outbound event carrying a persisted message.
	// It is pushed to the receiver (if reachable) and echoed to the sender, so
	// the sender's view updates from the authoritative stored record.
	TypeReceiveMessage EventType = "receiveMessage"

	// TypeError is the outbound event carrying a business error to the client.
	TypeError EventType = "error"
)

// Envelope is the frame exchanged on a WebSocket connection.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SendPayload is the inbound payload of a TypeSendMessage event. The receiver
// is addressed either by identity or by contact phone number; when both are
// present the identity wins.
type SendPayload struct {
	ReceiverID    string `json:"receiverId,omitempty"`
	ReceiverPhone string `json:"receiverPhone,omitempty"`
	Text          string `json:"text"`
}

// ErrorPayload is the outbound payload of a TypeError event.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewEvent marshals an outbound event into its wire representation.
// The payload of a TypeReceiveMessage event is the store.Message record itself.
func NewEvent(eventType EventType, payload any) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	return json.Marshal(Envelope{
		Type:    eventType,
		Payload: payloadBytes,
	})
}

// NewMessageEvent builds the TypeReceiveMessage frame for a persisted message.
func NewMessageEvent(m store.Message) ([]byte, error) {
	return NewEvent(TypeReceiveMessage, m)
}
