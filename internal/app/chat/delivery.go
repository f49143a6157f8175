/*
Package chat contains the core logic of the presence and delivery subsystem.

This file defines the Delivery engine, which runs the full pipeline for one
inbound send: resolve the receiver, persist the message, push it to the
receiver's connection if one is active, and echo it back to the sender.
*/
package chat

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"pairchat/internal/app/store"
	"pairchat/internal/app/user"
	"pairchat/internal/pkg/logx"
)

// Directory is the receiver-resolution view of the user directory.
type Directory interface {
	GetUserByID(ctx context.Context, id string) (user.User, error)
	GetUserByPhone(ctx context.Context, phone string) (user.User, error)
}

// Appender is the write side of the message store used by the delivery path.
type Appender interface {
	Append(ctx context.Context, senderID, receiverID, text string) (store.Message, error)
}

// Delivery orchestrates the send pipeline. All failures inside the pipeline are
// absorbed and logged; the sender receives no error, only the echoed record
// when persistence succeeded. That contract is deliberate: a dropped message
// yields neither echo nor error.
type Delivery struct {
	directory Directory
	messages  Appender
	presence  Registry
	logger    zerolog.Logger
}

// NewDelivery constructs a Delivery engine over the given collaborators.
func NewDelivery(directory Directory, messages Appender, presence Registry) *Delivery {
	return &Delivery{
		directory: directory,
		messages:  messages,
		presence:  presence,
		logger:    logx.Logger().With().Str("component", "delivery").Logger(),
	}
}

// Send processes one inbound text from the sender connection.
//
// Pipeline: resolve receiver (unknown receiver: silent drop) -> append to the
// store (storage failure: silent drop) -> push to the receiver's connection if
// present -> echo the authoritative record to the sender. Two sends issued on
// the same connection are processed sequentially by the connection's read loop,
// so their persistence and delivery order matches the issue order.
func (d *Delivery) Send(ctx context.Context, sender Conn, senderID string, in SendPayload) {
	receiver, err := d.resolveReceiver(ctx, in)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			d.logger.Warn().
				Str("sender_id", senderID).
				Str("receiver_id", in.ReceiverID).
				Str("receiver_phone", in.ReceiverPhone).
				Msg("Dropping message for unresolvable receiver.")
			return
		}

		d.logger.Error().Err(err).
			Str("sender_id", senderID).
			Msg("Receiver lookup failed. Dropping message.")
		return
	}

	message, err := d.messages.Append(ctx, senderID, receiver.ID, in.Text)
	if err != nil {
		d.logger.Error().Err(err).
			Str("sender_id", senderID).
			Str("receiver_id", receiver.ID).
			Msg("Message store append failed. Message lost.")
		return
	}

	frame, err := NewMessageEvent(message)
	if err != nil {
		d.logger.Error().Err(err).
			Str("message_id", message.ID).
			Msg("Failed to build receiveMessage event.")
		return
	}

	// Absence means the receiver is offline; the message stays durably stored
	// and is retrievable through the history endpoint. A self-send gets the
	// echo only.
	if receiverConn, online := d.presence.Lookup(receiver.ID); online && receiver.ID != senderID {
		if err := receiverConn.Enqueue(frame); err != nil {
			d.logger.Warn().Err(err).
				Str("message_id", message.ID).
				Str("receiver_id", receiver.ID).
				Msg("Failed to push message to receiver connection.")
		}
	}

	if err := sender.Enqueue(frame); err != nil {
		d.logger.Warn().Err(err).
			Str("message_id", message.ID).
			Str("sender_id", senderID).
			Msg("Failed to echo message to sender connection.")
	}
}

// resolveReceiver maps the inbound addressing fields to a user record.
// The identity field wins over the phone field when both are set.
func (d *Delivery) resolveReceiver(ctx context.Context, in SendPayload) (user.User, error) {
	if in.ReceiverID != "" {
		return d.directory.GetUserByID(ctx, in.ReceiverID)
	}

	if in.ReceiverPhone != "" {
		return d.directory.GetUserByPhone(ctx, in.ReceiverPhone)
	}

	return user.User{}, store.ErrNotFound
}
