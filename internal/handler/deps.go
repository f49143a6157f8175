package handler

import (
	"pairchat/internal/app/chat"
	"pairchat/internal/app/store"
	"pairchat/internal/configs"
)

// AppDeps bundles the collaborators the HTTP and WebSocket handlers depend on.
// The store fields are interfaces so handler tests can substitute in-memory fakes.
type AppDeps struct {
	Config   *configs.AppConfig
	Presence chat.Registry
	Delivery *chat.Delivery
	Users    store.UserDirectory
	Messages store.MessageStore
}
